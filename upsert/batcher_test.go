package upsert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/poiesic/profindex/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingStore records every Upsert call and fails the calls listed in failOn.
type recordingStore struct {
	calls  [][]string
	ns     []string
	failOn map[int]error
}

func (s *recordingStore) Upsert(ctx context.Context, namespace string, vectors []storage.Vector) (int, error) {
	call := len(s.calls)
	ids := make([]string, len(vectors))
	for i, v := range vectors {
		ids[i] = v.ID
	}
	s.calls = append(s.calls, ids)
	s.ns = append(s.ns, namespace)
	if err, ok := s.failOn[call]; ok {
		return 0, err
	}
	return len(vectors), nil
}

func (s *recordingStore) DescribeIndexStats(ctx context.Context) (*storage.IndexStats, error) {
	return &storage.IndexStats{}, nil
}

func (s *recordingStore) Close() error { return nil }

func vectors(n int) []storage.Vector {
	out := make([]storage.Vector, n)
	for i := range out {
		out[i] = storage.Vector{ID: fmt.Sprintf("id-%03d", i), Values: []float32{float32(i)}}
	}
	return out
}

func TestUpsert_BatchCounts(t *testing.T) {
	tests := []struct {
		n, size   int
		wantCalls int
		wantLast  int
	}{
		{n: 0, size: 100, wantCalls: 0},
		{n: 1, size: 100, wantCalls: 1, wantLast: 1},
		{n: 100, size: 100, wantCalls: 1, wantLast: 100},
		{n: 101, size: 100, wantCalls: 2, wantLast: 1},
		{n: 250, size: 100, wantCalls: 3, wantLast: 50},
		{n: 3, size: 1, wantCalls: 3, wantLast: 1},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d by %d", tt.n, tt.size), func(t *testing.T) {
			store := &recordingStore{}
			report := Upsert(context.Background(), store, vectors(tt.n), "ns1", tt.size)

			require.Len(t, store.calls, tt.wantCalls)
			assert.Equal(t, tt.wantCalls, report.Batches)
			assert.Equal(t, tt.n, report.Accepted)
			assert.True(t, report.OK())
			assert.NoError(t, report.Err())
			if tt.wantCalls > 0 {
				assert.Len(t, store.calls[len(store.calls)-1], tt.wantLast)
			}
			for _, ns := range store.ns {
				assert.Equal(t, "ns1", ns)
			}
		})
	}
}

func TestUpsert_PreservesOrder(t *testing.T) {
	store := &recordingStore{}
	Upsert(context.Background(), store, vectors(250), "ns1", 100)

	var got []string
	for _, call := range store.calls {
		got = append(got, call...)
	}
	for i, id := range got {
		assert.Equal(t, fmt.Sprintf("id-%03d", i), id)
	}
}

func TestUpsert_DefaultBatchSize(t *testing.T) {
	store := &recordingStore{}
	report := Upsert(context.Background(), store, vectors(201), "ns1", 0)

	assert.Equal(t, 3, report.Batches)
	assert.Len(t, store.calls[0], DefaultBatchSize)
}

func TestUpsert_FailureContinues(t *testing.T) {
	boom := errors.New("boom")
	store := &recordingStore{failOn: map[int]error{1: boom}}

	report := Upsert(context.Background(), store, vectors(250), "ns1", 100)

	require.Len(t, store.calls, 3, "batches after a failure still run")
	assert.Equal(t, 3, report.Batches)
	assert.Equal(t, 250, report.Submitted)
	assert.Equal(t, 150, report.Accepted)
	assert.False(t, report.OK())

	require.Len(t, report.Failed, 1)
	failure := report.Failed[0]
	assert.Equal(t, 1, failure.Index)
	assert.Len(t, failure.IDs, 100)
	assert.Equal(t, "id-100", failure.IDs[0])
	assert.ErrorIs(t, failure, boom)
	assert.Len(t, report.FailedIDs(), 100)

	err := report.Err()
	assert.ErrorIs(t, err, ErrBatchFailed)
	assert.ErrorIs(t, err, boom)
}

func TestUpsert_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := &recordingStore{}
	report := Upsert(ctx, store, vectors(10), "ns1", 5)

	assert.Empty(t, store.calls)
	assert.ErrorIs(t, report.Interrupted, context.Canceled)
	assert.False(t, report.OK())
	assert.ErrorIs(t, report.Err(), context.Canceled)
	assert.NotErrorIs(t, report.Err(), ErrBatchFailed)
}

func TestBatcher_Streaming(t *testing.T) {
	store := &recordingStore{}
	var progress bytes.Buffer
	tracker := NewProgressTracker(&progress, 0, 1)
	tracker.Start()

	b, err := NewBatcher(store, "ns1", 2, WithProgress(tracker))
	require.NoError(t, err)
	ctx := context.Background()

	vs := vectors(5)
	require.NoError(t, b.Add(ctx, vs[0]))
	assert.Empty(t, store.calls, "nothing written until a batch fills")
	assert.Equal(t, 1, b.Pending())

	require.NoError(t, b.Add(ctx, vs[1:]...))
	assert.Len(t, store.calls, 2)
	assert.Equal(t, 1, b.Pending())

	require.NoError(t, b.Flush(ctx))
	require.NoError(t, b.Flush(ctx), "flushing an empty batcher is a no-op")
	assert.Len(t, store.calls, 3)
	assert.Equal(t, 0, b.Pending())

	report := b.Report()
	assert.Equal(t, 5, report.Accepted)
	assert.Contains(t, progress.String(), "Upserted: 5 in 3 batches")
}

func TestBatcher_ReportIsSnapshot(t *testing.T) {
	store := &recordingStore{failOn: map[int]error{0: errors.New("x"), 1: errors.New("y")}}
	b, err := NewBatcher(store, "ns1", 1)
	require.NoError(t, err)

	require.NoError(t, b.Add(context.Background(), vectors(1)...))
	first := b.Report()
	require.NoError(t, b.Add(context.Background(), vectors(1)...))

	assert.Len(t, first.Failed, 1)
	assert.Len(t, b.Report().Failed, 2)
}

func TestNewBatcher_InvalidSize(t *testing.T) {
	_, err := NewBatcher(&recordingStore{}, "ns1", 0)
	assert.ErrorIs(t, err, ErrInvalidBatchSize)
}
