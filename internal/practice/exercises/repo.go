package exercises

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

const exerciseColumns = `id::text, user_id, name, author, description, estimated_time_seconds, favorite, created_at`

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, in NewExercise) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := in.Validate(); err != nil {
		return nil, err
	}

	row := r.db.QueryRow(
		ctx,
		`INSERT INTO exercise (user_id, name, author, description, estimated_time_seconds, favorite)
			VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+exerciseColumns+`;`,
		in.UserID, in.Name, in.Author, in.Description, in.EstimatedTimeSeconds, in.Favorite,
	)

	ex, err := scanExercise(row)
	if err != nil {
		if pkg.IsCheckViolationError(err) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidExercise, err)
		}
		return nil, practice.StoreError("exercises.add", err)
	}

	span.SetAttributes(attribute.String("exercise.id", ex.ID))
	return ex, nil
}

func (r *Repo) Get(ctx context.Context, userID, id string) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("exercise.id", id))

	row := r.db.QueryRow(
		ctx,
		`SELECT `+exerciseColumns+` FROM exercise WHERE id::text = $1 AND user_id = $2;`,
		id, userID,
	)
	ex, err := scanExercise(row)
	if err != nil {
		return nil, notFoundOr("exercises.get", err)
	}
	return ex, nil
}

// GetByIDs returns the user's exercises in the order of ids. Unknown ids are
// skipped, repeated ids repeat the exercise.
func (r *Repo) GetByIDs(ctx context.Context, userID string, ids []string) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.get_by_ids")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("exercises.requested", len(ids)))

	if len(ids) == 0 {
		return []Exercise{}, nil
	}

	rows, err := r.db.Query(
		ctx,
		`SELECT `+exerciseColumns+` FROM exercise WHERE user_id = $1 AND id::text = ANY($2);`,
		userID, ids,
	)
	if err != nil {
		return nil, practice.StoreError("exercises.get_by_ids", err)
	}
	defer rows.Close()

	found, err := rows2exercises(rows)
	if err != nil {
		return nil, practice.StoreError("exercises.get_by_ids", err)
	}

	byID := make(map[string]Exercise, len(found))
	for _, ex := range found {
		byID[ex.ID] = ex
	}
	ordered := make([]Exercise, 0, len(ids))
	for _, id := range ids {
		if ex, ok := byID[id]; ok {
			ordered = append(ordered, ex)
		}
	}
	return ordered, nil
}

// List returns the user's exercises, newest first.
func (r *Repo) List(ctx context.Context, userID string, params ListParams) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.Bool("favorites.only", params.FavoritesOnly),
		attribute.String("search", params.Search),
	)

	rows, err := r.db.Query(
		ctx,
		`SELECT `+exerciseColumns+` FROM exercise
			WHERE user_id = $1
			AND (NOT $2::boolean OR favorite)
			AND ($3::text = '' OR name ILIKE '%' || $3 || '%' OR author ILIKE '%' || $3 || '%')
			ORDER BY created_at DESC, id;`,
		userID, params.FavoritesOnly, params.Search,
	)
	if err != nil {
		return nil, practice.StoreError("exercises.list", err)
	}
	defer rows.Close()

	list, err := rows2exercises(rows)
	if err != nil {
		return nil, practice.StoreError("exercises.list", err)
	}
	return list, nil
}

func (r *Repo) Update(ctx context.Context, userID, id string, patch Patch) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("exercise.id", id))

	if err := patch.Validate(); err != nil {
		return nil, err
	}

	row := r.db.QueryRow(
		ctx,
		`UPDATE exercise SET
			name = COALESCE($3::varchar, name),
			author = COALESCE($4::varchar, author),
			description = COALESCE($5::text, description),
			estimated_time_seconds = COALESCE($6::integer, estimated_time_seconds),
			favorite = COALESCE($7::boolean, favorite)
		WHERE id::text = $1 AND user_id = $2
		RETURNING `+exerciseColumns+`;`,
		id, userID, patch.Name, patch.Author, patch.Description, patch.EstimatedTimeSeconds, patch.Favorite,
	)
	ex, err := scanExercise(row)
	if err != nil {
		if pkg.IsCheckViolationError(err) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidExercise, err)
		}
		return nil, notFoundOr("exercises.update", err)
	}
	return ex, nil
}

func (r *Repo) SetFavorite(ctx context.Context, userID, id string, favorite bool) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.set_favorite")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("exercise.id", id),
		attribute.Bool("favorite", favorite),
	)

	tag, err := r.db.Exec(
		ctx,
		`UPDATE exercise SET favorite = $3 WHERE id::text = $1 AND user_id = $2;`,
		id, userID, favorite,
	)
	if err != nil {
		return practice.StoreError("exercises.set_favorite", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrExerciseNotFound
	}
	return nil
}

// Delete removes the exercise; its sessions and notes go with it.
func (r *Repo) Delete(ctx context.Context, userID, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("exercise.id", id))

	tag, err := r.db.Exec(ctx, `DELETE FROM exercise WHERE id::text = $1 AND user_id = $2;`, id, userID)
	if err != nil {
		return practice.StoreError("exercises.delete", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrExerciseNotFound
	}
	return nil
}

func (r *Repo) Count(ctx context.Context, userID string) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.count")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM exercise WHERE user_id = $1;`, userID).Scan(&count); err != nil {
		return 0, practice.StoreError("exercises.count", err)
	}
	return count, nil
}

func scanExercise(row pgx.Row) (*Exercise, error) {
	var ex Exercise
	if err := row.Scan(
		&ex.ID, &ex.UserID, &ex.Name, &ex.Author, &ex.Description,
		&ex.EstimatedTimeSeconds, &ex.Favorite, &ex.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &ex, nil
}

func rows2exercises(rows pgx.Rows) ([]Exercise, error) {
	list := []Exercise{}
	for rows.Next() {
		ex, err := scanExercise(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *ex)
	}
	return list, rows.Err()
}

func notFoundOr(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrExerciseNotFound
	}
	return practice.StoreError(op, err)
}
