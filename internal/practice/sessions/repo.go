package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Motzart/exercises-app/internal/practice"
	"github.com/Motzart/exercises-app/internal/telemetry/tracing"
	"github.com/Motzart/exercises-app/pkg"
)

// Repo is the postgres Session Store. Besides listing it answers sums and
// distinct-day counts in the database.
type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Insert(ctx context.Context, in Input) (_ *Record, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sessions.insert")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("exercise.id", in.ExerciseID),
		attribute.Int64("duration.seconds", in.DurationSeconds),
	)

	if err := in.Validate(); err != nil {
		return nil, err
	}

	// the exercise must exist and belong to the same user
	row := r.db.QueryRow(
		ctx,
		`INSERT INTO session (exercise_id, user_id, started_at, ended_at, duration_seconds)
			SELECT e.id, $2, $3, $4, $5 FROM exercise e WHERE e.id = $1 AND e.user_id = $2
		RETURNING id::text, created_at, (SELECT name FROM exercise WHERE id = $1);`,
		in.ExerciseID, in.UserID, in.StartedAt, in.EndedAt, in.DurationSeconds,
	)

	record := &Record{
		ExerciseID:      in.ExerciseID,
		UserID:          in.UserID,
		StartedAt:       in.StartedAt,
		EndedAt:         in.EndedAt,
		DurationSeconds: in.DurationSeconds,
	}
	if err := row.Scan(&record.ID, &record.CreatedAt, &record.ExerciseName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) || pkg.IsForeignKeyViolationError(err) || pkg.IsInvalidInputError(err) {
			return nil, ErrUnknownExercise
		}
		return nil, practice.StoreError("sessions.insert", err)
	}

	span.SetAttributes(attribute.String("session.id", record.ID))
	return record, nil
}

const filterClause = `
	s.user_id = $1
	AND ($2::text = '' OR s.exercise_id::text = $2)
	AND ($3::timestamptz IS NULL OR s.created_at >= $3)
	AND ($4::timestamptz IS NULL OR s.created_at <= $4)`

func (r *Repo) List(ctx context.Context, userID string, filter Filter) (_ []Record, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sessions.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("exercise.id", filter.ExerciseID))

	rows, err := r.db.Query(
		ctx,
		`SELECT s.id::text, s.exercise_id::text, e.name, s.user_id, s.started_at, s.ended_at, s.duration_seconds, s.created_at
			FROM session s
			JOIN exercise e ON e.id = s.exercise_id
			WHERE `+filterClause+`
			ORDER BY s.created_at ASC, s.id ASC;`,
		userID, filter.ExerciseID, filter.From, filter.To,
	)
	if err != nil {
		return nil, practice.StoreError("sessions.list", err)
	}
	defer rows.Close()

	records, err := rows2records(rows)
	if err != nil {
		return nil, practice.StoreError("sessions.list", err)
	}

	span.SetAttributes(attribute.Int("sessions.count", len(records)))
	return records, nil
}

func (r *Repo) SumDuration(ctx context.Context, userID string, filter Filter) (_ int64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sessions.sum")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var total int64
	if err := r.db.QueryRow(
		ctx,
		`SELECT COALESCE(SUM(s.duration_seconds), 0)::bigint FROM session s WHERE `+filterClause+`;`,
		userID, filter.ExerciseID, filter.From, filter.To,
	).Scan(&total); err != nil {
		return 0, practice.StoreError("sessions.sum", err)
	}

	return total, nil
}

func (r *Repo) CountDistinctDays(ctx context.Context, userID string, filter Filter, loc *time.Location) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sessions.distinct_days")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	if loc == nil {
		loc = time.UTC
	}
	span.SetAttributes(attribute.String("timezone", loc.String()))

	var days int
	if err := r.db.QueryRow(
		ctx,
		`SELECT COUNT(DISTINCT (s.created_at AT TIME ZONE $5)::date) FROM session s WHERE `+filterClause+`;`,
		userID, filter.ExerciseID, filter.From, filter.To, loc.String(),
	).Scan(&days); err != nil {
		return 0, practice.StoreError("sessions.distinct_days", err)
	}

	return days, nil
}

// LastSessions returns the most recent session of every exercise of the user.
func (r *Repo) LastSessions(ctx context.Context, userID string) (_ map[string]LastSession, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sessions.last")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT DISTINCT ON (exercise_id) exercise_id::text, started_at, duration_seconds
			FROM session
			WHERE user_id = $1
			ORDER BY exercise_id, created_at DESC;`,
		userID,
	)
	if err != nil {
		return nil, practice.StoreError("sessions.last", err)
	}
	defer rows.Close()

	last := map[string]LastSession{}
	for rows.Next() {
		var ls LastSession
		if err := rows.Scan(&ls.ExerciseID, &ls.StartedAt, &ls.DurationSeconds); err != nil {
			return nil, practice.StoreError("sessions.last", err)
		}
		last[ls.ExerciseID] = ls
	}
	if err := rows.Err(); err != nil {
		return nil, practice.StoreError("sessions.last", err)
	}

	return last, nil
}

func rows2records(rows pgx.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(
			&rec.ID, &rec.ExerciseID, &rec.ExerciseName, &rec.UserID,
			&rec.StartedAt, &rec.EndedAt, &rec.DurationSeconds, &rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
