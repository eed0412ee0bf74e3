package badger

import (
	"context"
	"testing"

	"github.com/poiesic/profindex/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vec(id string, values ...float32) storage.Vector {
	return storage.Vector{
		ID:       id,
		Values:   values,
		Metadata: map[string]any{"type": "review", "tags": []string{"Tough"}},
	}
}

func TestStore_UpsertAndFetch(t *testing.T) {
	s, err := NewMemoryStore(3)
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	n, err := s.Upsert(ctx, "ns1", []storage.Vector{vec("a", 1, 2, 3), vec("b", 4, 5, 6)})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := s.Fetch(ctx, "ns1", "b", "missing", "a")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, vec("b", 4, 5, 6), got[0])
	assert.Equal(t, vec("a", 1, 2, 3), got[1])

	other, err := s.Fetch(ctx, "ns2", "a")
	require.NoError(t, err)
	assert.Empty(t, other, "namespaces are isolated")
}

func TestStore_UpsertReplaces(t *testing.T) {
	s, err := NewMemoryStore(2)
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	_, err = s.Upsert(ctx, "ns1", []storage.Vector{vec("a", 1, 1)})
	require.NoError(t, err)
	_, err = s.Upsert(ctx, "ns1", []storage.Vector{vec("a", 2, 2)})
	require.NoError(t, err)

	stats, err := s.DescribeIndexStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalVectorCount)

	got, err := s.Fetch(ctx, "ns1", "a")
	require.NoError(t, err)
	assert.Equal(t, []float32{2, 2}, got[0].Values)
}

func TestStore_DimensionMismatch(t *testing.T) {
	s, err := NewMemoryStore(3)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Upsert(context.Background(), "ns1", []storage.Vector{vec("a", 1, 2, 3), vec("b", 1)})
	assert.ErrorIs(t, err, storage.ErrDimensionMismatch)

	stats, err := s.DescribeIndexStats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalVectorCount, "a rejected batch writes nothing")
}

func TestStore_AdoptsDimension(t *testing.T) {
	s, err := NewMemoryStore(0)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, 0, s.Dimension())

	_, err = s.Upsert(context.Background(), "ns1", []storage.Vector{vec("a", 1, 2)})
	require.NoError(t, err)
	assert.Equal(t, 2, s.Dimension())
}

func TestStore_InvalidVector(t *testing.T) {
	s, err := NewMemoryStore(2)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Upsert(context.Background(), "ns1", []storage.Vector{{Values: []float32{1, 2}}})
	assert.ErrorIs(t, err, storage.ErrInvalidVector)
}

func TestStore_DescribeIndexStats(t *testing.T) {
	s, err := NewMemoryStore(1)
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	_, err = s.Upsert(ctx, "ns1", []storage.Vector{vec("a", 1), vec("b", 1)})
	require.NoError(t, err)
	_, err = s.Upsert(ctx, "ns2", []storage.Vector{vec("a", 1)})
	require.NoError(t, err)

	stats, err := s.DescribeIndexStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Dimension)
	assert.Equal(t, int64(3), stats.TotalVectorCount)
	assert.Equal(t, map[string]int64{"ns1": 2, "ns2": 1}, stats.Namespaces)
}

func TestStore_IndexManager(t *testing.T) {
	s, err := NewMemoryStore(0)
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	_, err = s.DescribeIndex(ctx, "rag")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = s.CreateIndex(ctx, storage.IndexSpec{Name: "rag"})
	assert.ErrorIs(t, err, storage.ErrInvalidIndexSpec)

	desc, err := s.CreateIndex(ctx, storage.IndexSpec{Name: "rag", Dimension: 384, Metric: "cosine"})
	require.NoError(t, err)
	assert.Equal(t, 384, desc.Dimension)
	assert.True(t, desc.Ready)

	again, err := s.CreateIndex(ctx, storage.IndexSpec{Name: "rag", Dimension: 384})
	require.NoError(t, err)
	assert.Equal(t, desc, again)

	_, err = s.CreateIndex(ctx, storage.IndexSpec{Name: "rag", Dimension: 768})
	assert.ErrorIs(t, err, storage.ErrIndexExists)
}

func TestStore_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := Open(dir, 2)
	require.NoError(t, err)
	_, err = store.Upsert(ctx, "ns1", []storage.Vector{vec("a", 1, 2)})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = Open(dir, 3)
	assert.ErrorIs(t, err, storage.ErrDimensionMismatch)

	store, err = Open(dir, 0)
	require.NoError(t, err)
	defer store.Close()

	stats, err := store.DescribeIndexStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Dimension)
	assert.Equal(t, int64(1), stats.TotalVectorCount)
}

func TestStore_Closed(t *testing.T) {
	s, err := NewMemoryStore(1)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.Upsert(context.Background(), "ns1", []storage.Vector{vec("a", 1)})
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}
