package stats_test

import (
	"context"
	"sort"
	"time"

	"github.com/Motzart/exercises-app/internal/practice/sessions"
)

// listOnlyStore answers List and nothing else, like the local journal.
type listOnlyStore struct {
	records []sessions.Record
}

func (s *listOnlyStore) List(_ context.Context, userID string, filter sessions.Filter) ([]sessions.Record, error) {
	var out []sessions.Record
	for _, r := range s.records {
		if r.UserID == userID && filter.Matches(r) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// aggregatingStore adds the server side aggregate queries.
type aggregatingStore struct {
	listOnlyStore
	sumCalls   int
	countCalls int
}

func (s *aggregatingStore) SumDuration(_ context.Context, userID string, filter sessions.Filter) (int64, error) {
	s.sumCalls++
	var total int64
	for _, r := range s.records {
		if r.UserID == userID && filter.Matches(r) {
			total += r.DurationSeconds
		}
	}
	return total, nil
}

func (s *aggregatingStore) CountDistinctDays(_ context.Context, userID string, filter sessions.Filter, loc *time.Location) (int, error) {
	s.countCalls++
	days := map[string]bool{}
	for _, r := range s.records {
		if r.UserID == userID && filter.Matches(r) {
			days[r.CreatedAt.In(loc).Format(time.DateOnly)] = true
		}
	}
	return len(days), nil
}

// aggregateCapable glues the two generated mocks into one store.
type aggregateCapable struct {
	*MocksessionsStore
	*MockaggregateStore
}
