// Package localstore keeps an offline practice journal in SQLite. It holds
// exercises and session records only and answers aggregations by listing.
package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/Motzart/exercises-app/internal/practice"
	"github.com/Motzart/exercises-app/internal/practice/exercises"
	"github.com/Motzart/exercises-app/internal/practice/sessions"

	_ "modernc.org/sqlite"
)

// fixed width so text comparison orders like time
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type Store struct {
	db  *sql.DB
	now func() time.Time
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Open opens or creates the journal at path and applies the schema.
func Open(path string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	// one writer, sqlite serializes anyway
	db.SetMaxOpenConns(1)

	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.migrate(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Errorf("close journal after failed migration: %s", closeErr)
		}
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS exercise (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			author TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			estimated_time_seconds INTEGER NOT NULL DEFAULT 0,
			favorite INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS session (
			id TEXT PRIMARY KEY,
			exercise_id TEXT NOT NULL REFERENCES exercise (id) ON DELETE CASCADE,
			user_id TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			duration_seconds INTEGER NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS ix_session_user_created_at ON session (user_id, created_at);`,
		`CREATE INDEX IF NOT EXISTS ix_exercise_user_created_at ON exercise (user_id, created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate journal: %w", err)
		}
	}
	return nil
}

func (s *Store) AddExercise(ctx context.Context, in exercises.NewExercise) (*exercises.Exercise, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	ex := &exercises.Exercise{
		ID:                   uuid.NewString(),
		UserID:               in.UserID,
		Name:                 strings.TrimSpace(in.Name),
		Author:               in.Author,
		Description:          in.Description,
		EstimatedTimeSeconds: in.EstimatedTimeSeconds,
		Favorite:             in.Favorite,
		CreatedAt:            s.now().UTC(),
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO exercise (id, user_id, name, author, description, estimated_time_seconds, favorite, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ex.ID, ex.UserID, ex.Name, ex.Author, ex.Description, ex.EstimatedTimeSeconds, ex.Favorite, formatTime(ex.CreatedAt),
	); err != nil {
		return nil, practice.StoreError("localstore.add_exercise", err)
	}
	return ex, nil
}

func (s *Store) GetExercise(ctx context.Context, userID, id string) (*exercises.Exercise, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, author, description, estimated_time_seconds, favorite, created_at
		 FROM exercise WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	ex, err := scanExercise(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, exercises.ErrExerciseNotFound
		}
		return nil, practice.StoreError("localstore.get_exercise", err)
	}
	return ex, nil
}

// ListExercises returns the user's exercises, newest first.
func (s *Store) ListExercises(ctx context.Context, userID string) (_ []exercises.Exercise, err error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, author, description, estimated_time_seconds, favorite, created_at
		 FROM exercise WHERE user_id = ? ORDER BY created_at DESC, id`,
		userID,
	)
	if err != nil {
		return nil, practice.StoreError("localstore.list_exercises", err)
	}
	defer closeRows(rows)

	list := []exercises.Exercise{}
	for rows.Next() {
		ex, err := scanExercise(rows)
		if err != nil {
			return nil, practice.StoreError("localstore.list_exercises", err)
		}
		list = append(list, *ex)
	}
	if err := rows.Err(); err != nil {
		return nil, practice.StoreError("localstore.list_exercises", err)
	}
	return list, nil
}

// Insert appends a session record. created_at is the insertion time.
func (s *Store) Insert(ctx context.Context, in sessions.Input) (*sessions.Record, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	ex, err := s.GetExercise(ctx, in.UserID, in.ExerciseID)
	if err != nil {
		if errors.Is(err, exercises.ErrExerciseNotFound) {
			return nil, sessions.ErrUnknownExercise
		}
		return nil, err
	}

	record := &sessions.Record{
		ID:              uuid.NewString(),
		ExerciseID:      in.ExerciseID,
		ExerciseName:    ex.Name,
		UserID:          in.UserID,
		StartedAt:       in.StartedAt.UTC(),
		EndedAt:         in.EndedAt.UTC(),
		DurationSeconds: in.DurationSeconds,
		CreatedAt:       s.now().UTC(),
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO session (id, exercise_id, user_id, started_at, ended_at, duration_seconds, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.ExerciseID, record.UserID,
		formatTime(record.StartedAt), formatTime(record.EndedAt),
		record.DurationSeconds, formatTime(record.CreatedAt),
	); err != nil {
		return nil, practice.StoreError("localstore.insert", err)
	}
	return record, nil
}

// List returns the user's records matching filter, oldest first, with the
// exercise name filled in.
func (s *Store) List(ctx context.Context, userID string, filter sessions.Filter) (_ []sessions.Record, err error) {
	clauses := []string{"s.user_id = ?"}
	args := []any{userID}
	if filter.ExerciseID != "" {
		clauses = append(clauses, "s.exercise_id = ?")
		args = append(args, filter.ExerciseID)
	}
	if filter.From != nil {
		clauses = append(clauses, "s.created_at >= ?")
		args = append(args, formatTime(*filter.From))
	}
	if filter.To != nil {
		clauses = append(clauses, "s.created_at <= ?")
		args = append(args, formatTime(*filter.To))
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT s.id, s.exercise_id, e.name, s.user_id, s.started_at, s.ended_at, s.duration_seconds, s.created_at
		 FROM session s JOIN exercise e ON e.id = s.exercise_id
		 WHERE `+strings.Join(clauses, " AND ")+`
		 ORDER BY s.created_at, s.id`,
		args...,
	)
	if err != nil {
		return nil, practice.StoreError("localstore.list", err)
	}
	defer closeRows(rows)

	records := []sessions.Record{}
	for rows.Next() {
		var (
			r                             sessions.Record
			startedAt, endedAt, createdAt string
		)
		if err := rows.Scan(&r.ID, &r.ExerciseID, &r.ExerciseName, &r.UserID, &startedAt, &endedAt, &r.DurationSeconds, &createdAt); err != nil {
			return nil, practice.StoreError("localstore.list", err)
		}
		if r.StartedAt, err = parseTime(startedAt); err != nil {
			return nil, practice.StoreError("localstore.list", err)
		}
		if r.EndedAt, err = parseTime(endedAt); err != nil {
			return nil, practice.StoreError("localstore.list", err)
		}
		if r.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, practice.StoreError("localstore.list", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, practice.StoreError("localstore.list", err)
	}
	return records, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExercise(row scanner) (*exercises.Exercise, error) {
	var (
		ex        exercises.Exercise
		createdAt string
	)
	if err := row.Scan(
		&ex.ID, &ex.UserID, &ex.Name, &ex.Author, &ex.Description,
		&ex.EstimatedTimeSeconds, &ex.Favorite, &createdAt,
	); err != nil {
		return nil, err
	}
	var err error
	if ex.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &ex, nil
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		log.Debugf("localstore: close rows: %s", err)
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}
