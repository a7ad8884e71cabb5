//go:build integration_test || all_tests

package test

import (
	"context"
	"net/http"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Motzart/exercises-app/internal/practice/exercises"
	"github.com/Motzart/exercises-app/internal/practice/notes"
	"github.com/Motzart/exercises-app/internal/practice/playlists"
	"github.com/Motzart/exercises-app/internal/practice/sessions"
	"github.com/Motzart/exercises-app/internal/practice/stats"
	"github.com/Motzart/exercises-app/internal/practice/timer"
)

func (s *IntegrationTestSuite) addExercise(ctx context.Context, name string, estimate int64) exercises.Exercise {
	var ex exercises.Exercise
	code := s.do(ctx, "POST", "/exercises", exercises.NewExercise{
		Name:                 name,
		Author:               "Czerny",
		EstimatedTimeSeconds: estimate,
	}, &ex)
	require.Equal(s.T(), http.StatusCreated, code)
	require.NotEmpty(s.T(), ex.ID)
	return ex
}

func (s *IntegrationTestSuite) TestPracticeJournal() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	t := s.T()

	scales := s.addExercise(ctx, "Scales", 600)
	etude := s.addExercise(ctx, "Etude op. 599", 0)

	var before map[string]stats.DurationView
	require.Equal(t, http.StatusOK, s.do(ctx, "GET", "/stats/summary", nil, &before))

	now := time.Now().UTC()
	var rec sessions.Record
	code := s.do(ctx, "POST", "/sessions", sessions.Input{
		ExerciseID:      scales.ID,
		StartedAt:       now.Add(-15 * time.Minute),
		EndedAt:         now.Add(-5 * time.Minute),
		DurationSeconds: 600,
	}, &rec)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, int64(600), rec.DurationSeconds)

	// duration can not exceed the wall clock span
	code = s.do(ctx, "POST", "/sessions", sessions.Input{
		ExerciseID:      etude.ID,
		StartedAt:       now.Add(-time.Minute),
		EndedAt:         now,
		DurationSeconds: 120,
	}, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code = s.do(ctx, "POST", "/sessions", sessions.Input{
		ExerciseID:      etude.ID,
		StartedAt:       now.Add(-5 * time.Minute),
		EndedAt:         now,
		DurationSeconds: 125,
	}, nil)
	require.Equal(t, http.StatusCreated, code)

	var list sessions.ListResponse
	code = s.do(ctx, "GET", "/sessions?exercise_id="+scales.ID, nil, &list)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "Scales", list.Sessions[0].ExerciseName)

	var summary map[string]stats.DurationView
	code = s.do(ctx, "GET", "/stats/summary", nil, &summary)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(725), summary["today"].Seconds-before["today"].Seconds)
	assert.Equal(t, int64(725), summary["total"].Seconds-before["total"].Seconds)
	assert.Equal(t, summary["total"].Seconds, summary["thisMonth"].Seconds+summary["lastMonth"].Seconds)

	var streak map[string]int
	code = s.do(ctx, "GET", "/stats/streak", nil, &streak)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, streak["streak"])

	var statuses []exercises.StatusView
	code = s.do(ctx, "GET", "/exercises/status", nil, &statuses)
	require.Equal(t, http.StatusOK, code)
	byID := map[string]exercises.Status{}
	for _, v := range statuses {
		byID[v.ExerciseID] = v.Status
	}
	assert.Equal(t, exercises.StatusCompleted, byID[scales.ID])
	assert.Equal(t, exercises.StatusMissing, byID[etude.ID])

	var listed []exercises.Exercise
	code = s.do(ctx, "GET", "/exercises", nil, &listed)
	require.Equal(t, http.StatusOK, code)
	for _, ex := range listed {
		if ex.ID == scales.ID {
			require.NotNil(t, ex.LastSession)
			assert.Equal(t, int64(600), ex.LastSession.DurationSeconds)
		}
	}
}

func (s *IntegrationTestSuite) TestFavoriteToggle() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	t := s.T()

	ex := s.addExercise(ctx, "Arpeggios", 300)

	var resp map[string]any
	code := s.do(ctx, "PUT", "/exercises/"+ex.ID+"/favorite", nil, &resp)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, resp["favorite"])

	var favorites []exercises.Exercise
	code = s.do(ctx, "GET", "/exercises?favorites=true", nil, &favorites)
	require.Equal(t, http.StatusOK, code)
	found := false
	for _, f := range favorites {
		found = found || f.ID == ex.ID
	}
	assert.True(t, found)

	code = s.do(ctx, "PUT", "/exercises/"+ex.ID+"/favorite", map[string]bool{"favorite": false}, &resp)
	require.Equal(t, http.StatusOK, code)

	var got exercises.Exercise
	code = s.do(ctx, "GET", "/exercises/"+ex.ID, nil, &got)
	require.Equal(t, http.StatusOK, code)
	assert.False(t, got.Favorite)

	code = s.do(ctx, "DELETE", "/exercises/"+ex.ID, nil, nil)
	require.Equal(t, http.StatusOK, code)
	code = s.do(ctx, "GET", "/exercises/"+ex.ID, nil, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func (s *IntegrationTestSuite) TestTimerFinishPersists() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	t := s.T()

	ex := s.addExercise(ctx, "Sight reading", 0)

	var snap timer.Snapshot
	code := s.do(ctx, "POST", "/timers", map[string]string{"exerciseId": ex.ID}, &snap)
	require.Equal(t, http.StatusCreated, code)
	code = s.do(ctx, "POST", "/timers/"+snap.ID+"/start", nil, &snap)
	require.Equal(t, http.StatusOK, code)
	time.Sleep(1100 * time.Millisecond)

	var rec sessions.Record
	code = s.do(ctx, "POST", "/timers/"+snap.ID+"/finish", nil, &rec)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, ex.ID, rec.ExerciseID)
	assert.GreaterOrEqual(t, rec.DurationSeconds, int64(1))

	code = s.do(ctx, "POST", "/timers/"+snap.ID+"/finish", nil, nil)
	assert.Equal(t, http.StatusNotFound, code, "finished timers leave the registry")

	var list sessions.ListResponse
	code = s.do(ctx, "GET", "/sessions?exercise_id="+ex.ID, nil, &list)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, list.Total)
}

func (s *IntegrationTestSuite) TestNotesAndPlaylists() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	t := s.T()

	first := s.addExercise(ctx, "Hanon 1", 120)
	second := s.addExercise(ctx, "Hanon 2", 120)

	var note notes.Note
	code := s.do(ctx, "POST", "/notes", notes.NewNote{ExerciseID: first.ID, Content: "watch the 4th finger"}, &note)
	require.Equal(t, http.StatusCreated, code)
	code = s.do(ctx, "POST", "/notes", notes.NewNote{Content: "practice slowly"}, nil)
	require.Equal(t, http.StatusCreated, code)

	var notesList notes.ListResponse
	code = s.do(ctx, "GET", "/notes?exercise_id="+first.ID, nil, &notesList)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, 1, notesList.Total)
	assert.Equal(t, "watch the 4th finger", notesList.Notes[0].Content)

	code = s.do(ctx, "DELETE", "/notes/"+note.ID, nil, nil)
	assert.Equal(t, http.StatusOK, code)
	code = s.do(ctx, "DELETE", "/notes/"+note.ID, nil, nil)
	assert.Equal(t, http.StatusNotFound, code)

	var p playlists.Playlist
	code = s.do(ctx, "POST", "/playlists", playlists.NewPlaylist{
		Name:        "Warm up",
		ExerciseIDs: []string{second.ID, first.ID},
	}, &p)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, 2, p.ExerciseCount)

	var details playlists.Details
	code = s.do(ctx, "GET", "/playlists/"+p.ID, nil, &details)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, details.Exercises, 2)
	assert.Equal(t, "Hanon 2", details.Exercises[0].Name)
	assert.Equal(t, "Hanon 1", details.Exercises[1].Name)

	code = s.do(ctx, "DELETE", "/playlists/"+p.ID, nil, nil)
	assert.Equal(t, http.StatusOK, code)
}
