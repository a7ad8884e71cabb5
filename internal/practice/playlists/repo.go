package playlists

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Motzart/exercises-app/internal/practice"
	"github.com/Motzart/exercises-app/internal/telemetry/tracing"
	"github.com/Motzart/exercises-app/pkg"
)

const playlistColumns = `id::text, user_id, name, description, exercise_ids::text[], created_at`

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, in NewPlaylist) (_ *Playlist, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.playlists.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := in.Validate(); err != nil {
		return nil, err
	}
	ids := in.ExerciseIDs
	if ids == nil {
		ids = []string{}
	}

	row := r.db.QueryRow(
		ctx,
		`INSERT INTO playlist (user_id, name, description, exercise_ids)
			VALUES ($1, $2, $3, $4::text[]::uuid[])
		RETURNING `+playlistColumns+`;`,
		in.UserID, in.Name, in.Description, ids,
	)
	p, err := scanPlaylist(row)
	if err != nil {
		if pkg.IsInvalidInputError(err) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidPlaylist, err)
		}
		return nil, practice.StoreError("playlists.add", err)
	}

	span.SetAttributes(attribute.String("playlist.id", p.ID))
	return p, nil
}

func (r *Repo) Get(ctx context.Context, userID, id string) (_ *Playlist, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.playlists.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("playlist.id", id))

	row := r.db.QueryRow(
		ctx,
		`SELECT `+playlistColumns+` FROM playlist WHERE id::text = $1 AND user_id = $2;`,
		id, userID,
	)
	p, err := scanPlaylist(row)
	if err != nil {
		return nil, notFoundOr("playlists.get", err)
	}
	return p, nil
}

// List returns the user's playlists, newest first.
func (r *Repo) List(ctx context.Context, userID string) (_ []Playlist, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.playlists.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT `+playlistColumns+` FROM playlist WHERE user_id = $1 ORDER BY created_at DESC, id;`,
		userID,
	)
	if err != nil {
		return nil, practice.StoreError("playlists.list", err)
	}
	defer rows.Close()

	list := []Playlist{}
	for rows.Next() {
		p, err := scanPlaylist(rows)
		if err != nil {
			return nil, practice.StoreError("playlists.list", err)
		}
		list = append(list, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, practice.StoreError("playlists.list", err)
	}
	return list, nil
}

func (r *Repo) Update(ctx context.Context, userID, id string, patch Patch) (_ *Playlist, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.playlists.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("playlist.id", id))

	if err := patch.Validate(); err != nil {
		return nil, err
	}
	var ids []string
	if patch.ExerciseIDs != nil {
		ids = *patch.ExerciseIDs
		if ids == nil {
			ids = []string{}
		}
	}

	row := r.db.QueryRow(
		ctx,
		`UPDATE playlist SET
			name = COALESCE($3::varchar, name),
			description = COALESCE($4::text, description),
			exercise_ids = COALESCE($5::text[]::uuid[], exercise_ids)
		WHERE id::text = $1 AND user_id = $2
		RETURNING `+playlistColumns+`;`,
		id, userID, patch.Name, patch.Description, ids,
	)
	p, err := scanPlaylist(row)
	if err != nil {
		if pkg.IsInvalidInputError(err) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidPlaylist, err)
		}
		return nil, notFoundOr("playlists.update", err)
	}
	return p, nil
}

func (r *Repo) Delete(ctx context.Context, userID, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.playlists.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("playlist.id", id))

	tag, err := r.db.Exec(ctx, `DELETE FROM playlist WHERE id::text = $1 AND user_id = $2;`, id, userID)
	if err != nil {
		return practice.StoreError("playlists.delete", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPlaylistNotFound
	}
	return nil
}

func scanPlaylist(row pgx.Row) (*Playlist, error) {
	var p Playlist
	if err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.ExerciseIDs, &p.CreatedAt); err != nil {
		return nil, err
	}
	if p.ExerciseIDs == nil {
		p.ExerciseIDs = []string{}
	}
	p.ExerciseCount = len(p.ExerciseIDs)
	return &p, nil
}

func notFoundOr(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrPlaylistNotFound
	}
	return practice.StoreError(op, err)
}
