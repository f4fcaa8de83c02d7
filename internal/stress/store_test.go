package stress

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenStore(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStoreSaveAndList(t *testing.T) {
	s := newTestStore(t)

	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	want := []Result{
		{
			RunID:     uuid.NewString(),
			Scenario:  "mutex",
			Workers:   4,
			Ops:       2000,
			Errors:    0,
			Duration:  150 * time.Millisecond,
			StartedAt: base,
		},
		{
			RunID:     uuid.NewString(),
			Scenario:  "arc-churn",
			Workers:   8,
			Ops:       4000,
			Errors:    0,
			Duration:  90 * time.Millisecond,
			StartedAt: base.Add(time.Minute),
		},
	}
	for _, r := range want {
		require.NoError(t, s.Save(r))
	}

	got, err := s.List(10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Newest first.
	for i, w := range []Result{want[1], want[0]} {
		assert.Equal(t, w.RunID, got[i].RunID)
		assert.Equal(t, w.Scenario, got[i].Scenario)
		assert.Equal(t, w.Workers, got[i].Workers)
		assert.Equal(t, w.Ops, got[i].Ops)
		assert.Equal(t, w.Errors, got[i].Errors)
		assert.Equal(t, w.Duration, got[i].Duration)
		assert.True(t, w.StartedAt.Equal(got[i].StartedAt), "started_at mismatch")
	}
}

func TestStoreListRespectsLimit(t *testing.T) {
	s := newTestStore(t)

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Save(Result{
			RunID:     uuid.NewString(),
			Scenario:  "spin",
			Workers:   2,
			Ops:       int64(100 * (i + 1)),
			Duration:  time.Millisecond,
			StartedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	got, err := s.List(3)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, int64(500), got[0].Ops)
}

func TestStoreRejectsDuplicateRunID(t *testing.T) {
	s := newTestStore(t)

	r := Result{
		RunID:     uuid.NewString(),
		Scenario:  "mutex",
		Workers:   1,
		Ops:       1,
		Duration:  time.Millisecond,
		StartedAt: time.Now().UTC(),
	}
	require.NoError(t, s.Save(r))
	require.Error(t, s.Save(r))
}

func TestStoreEmptyList(t *testing.T) {
	s := newTestStore(t)

	got, err := s.List(10)
	require.NoError(t, err)
	assert.Empty(t, got)
}
