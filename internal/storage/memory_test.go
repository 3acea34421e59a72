package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"tictacevo/internal/model"
)

func newTestStore(t *testing.T) *MemoryStore {
	t.Helper()
	s := NewMemoryStore()
	require.NoError(t, s.Init(context.Background()))
	return s
}

func TestMemoryStoreGenomes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, ok, err := s.GetGenome(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	genome := model.Genome{ID: "g1", Weights: []float64{1, 2, 3, 4, 5, 6, 7}}
	require.NoError(t, s.SaveGenome(ctx, genome))

	// Mutating the caller's slice must not leak into the store.
	genome.Weights[0] = 99

	loaded, ok, err := s.GetGenome(ctx, "g1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 1.0, loaded.Weights[0])

	// Nor the other way around.
	loaded.Weights[1] = 99
	again, _, err := s.GetGenome(ctx, "g1")
	require.NoError(t, err)
	require.Equal(t, 2.0, again.Weights[1])
}

func TestMemoryStoreRunsSortNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveRun(ctx, model.RunRecord{ID: "a", CreatedAtUTC: "2026-08-01T00:00:00Z"}))
	require.NoError(t, s.SaveRun(ctx, model.RunRecord{ID: "b", CreatedAtUTC: "2026-08-03T00:00:00Z"}))
	require.NoError(t, s.SaveRun(ctx, model.RunRecord{ID: "c", CreatedAtUTC: "2026-08-02T00:00:00Z"}))

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	require.Equal(t, "b", runs[0].ID)
	require.Equal(t, "c", runs[1].ID)
	require.Equal(t, "a", runs[2].ID)

	run, ok, err := s.GetRun(ctx, "c")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "2026-08-02T00:00:00Z", run.CreatedAtUTC)
}

func TestMemoryStoreHistory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, ok, err := s.GetHistory(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	history := []model.GenerationRecord{
		{Generation: 1, BestFitness: 10},
		{Generation: 2, BestFitness: 12},
	}
	require.NoError(t, s.SaveHistory(ctx, "run-1", history))

	history[0].BestFitness = 0

	loaded, ok, err := s.GetHistory(ctx, "run-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 10.0, loaded[0].BestFitness)
	require.Equal(t, 2, loaded[1].Generation)
}

func TestNewStoreFactory(t *testing.T) {
	s, err := NewStore("", "ignored")
	require.NoError(t, err)
	require.IsType(t, &MemoryStore{}, s)

	s, err = NewStore(KindMemory, "ignored")
	require.NoError(t, err)
	require.IsType(t, &MemoryStore{}, s)

	_, err = NewStore("cassandra", "ignored")
	require.Error(t, err)
	require.Contains(t, err.Error(), KindSQLite, "error names the supported kinds")

	require.NoError(t, CloseIfSupported(s))
}
