package notes

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Motzart/exercises-app/internal/practice"
	"github.com/Motzart/exercises-app/internal/telemetry/tracing"
	"github.com/Motzart/exercises-app/pkg"
)

const noteColumns = `id::text, user_id, COALESCE(exercise_id::text, ''), content, created_at`

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, in NewNote) (_ *Note, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.notes.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := in.Validate(); err != nil {
		return nil, err
	}

	row := r.db.QueryRow(
		ctx,
		`INSERT INTO note (user_id, exercise_id, content)
			VALUES ($1, NULLIF($2, '')::uuid, $3)
		RETURNING `+noteColumns+`;`,
		in.UserID, in.ExerciseID, in.Content,
	)
	note, err := scanNote(row)
	if err != nil {
		if pkg.IsForeignKeyViolationError(err) || pkg.IsInvalidInputError(err) {
			return nil, fmt.Errorf("%w: unknown exercise %s", ErrInvalidNote, in.ExerciseID)
		}
		return nil, practice.StoreError("notes.add", err)
	}

	span.SetAttributes(attribute.String("note.id", note.ID))
	return note, nil
}

// List returns the user's notes of one exercise, newest first. An empty
// exerciseID lists the general notes.
func (r *Repo) List(ctx context.Context, userID, exerciseID string) (_ []Note, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.notes.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("exercise.id", exerciseID))

	rows, err := r.db.Query(
		ctx,
		`SELECT `+noteColumns+` FROM note
			WHERE user_id = $1
			AND (($2 = '' AND exercise_id IS NULL) OR exercise_id::text = $2)
			ORDER BY created_at DESC, id;`,
		userID, exerciseID,
	)
	if err != nil {
		return nil, practice.StoreError("notes.list", err)
	}
	defer rows.Close()

	list := []Note{}
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, practice.StoreError("notes.list", err)
		}
		list = append(list, *note)
	}
	if err := rows.Err(); err != nil {
		return nil, practice.StoreError("notes.list", err)
	}
	return list, nil
}

func (r *Repo) Delete(ctx context.Context, userID, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.notes.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("note.id", id))

	tag, err := r.db.Exec(ctx, `DELETE FROM note WHERE id::text = $1 AND user_id = $2;`, id, userID)
	if err != nil {
		return practice.StoreError("notes.delete", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNoteNotFound
	}
	return nil
}

func scanNote(row pgx.Row) (*Note, error) {
	var note Note
	if err := row.Scan(&note.ID, &note.UserID, &note.ExerciseID, &note.Content, &note.CreatedAt); err != nil {
		return nil, err
	}
	return &note, nil
}
