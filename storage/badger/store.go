package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/profindex/storage"
)

// Store implements storage.VectorStore on BadgerDB. One database holds one
// index with a fixed dimension and any number of namespaces.
type Store struct {
	backend   *Backend
	ownsDB    bool
	mu        sync.RWMutex
	dimension int
	logger    *slog.Logger
}

var (
	_ storage.VectorStore   = (*Store)(nil)
	_ storage.VectorFetcher = (*Store)(nil)
	_ storage.IndexManager  = (*Store)(nil)
)

// NewStore creates a Store on an open backend. The caller keeps ownership
// of the backend.
//
// dimension 0 adopts whatever dimension the database was created with. A
// non-zero dimension is recorded on first use and must match afterwards.
func NewStore(backend *Backend, dimension int) (*Store, error) {
	s := &Store{
		backend: backend,
		logger:  slog.Default().With("component", "badger-store"),
	}
	if err := s.loadDimension(dimension); err != nil {
		return nil, err
	}
	return s, nil
}

// Open opens (or creates) a store in directory path.
// Returns storage.VectorStore interface to enforce abstraction.
func Open(path string, dimension int) (storage.VectorStore, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	s, err := NewStore(backend, dimension)
	if err != nil {
		backend.Close()
		return nil, err
	}
	s.ownsDB = true
	return s, nil
}

func (s *Store) loadDimension(dimension int) error {
	stored, err := s.readDimension()
	if err != nil {
		return err
	}
	switch {
	case stored == 0 && dimension > 0:
		return s.CreateDimension(dimension)
	case stored != 0 && dimension != 0 && stored != dimension:
		return fmt.Errorf("%w: index has dimension %d, requested %d", storage.ErrDimensionMismatch, stored, dimension)
	case stored != 0:
		s.dimension = stored
	}
	return nil
}

func (s *Store) readDimension() (int, error) {
	var dim int
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(dimensionKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			dim, err = storage.UnmarshalDimension(val)
			return err
		})
	}, false)
	return dim, err
}

// CreateDimension records the index dimension.
func (s *Store) CreateDimension(dimension int) error {
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set([]byte(dimensionKey), storage.MarshalDimension(dimension)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.dimension = dimension
	s.mu.Unlock()
	return nil
}

// Dimension returns the index dimension, 0 if not yet known.
func (s *Store) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimension
}

// Upsert writes vectors in one transaction. Existing ids are replaced.
func (s *Store) Upsert(ctx context.Context, namespace string, vectors []storage.Vector) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s.backend.IsClosed() {
		return 0, storage.ErrStorageClosed
	}
	if len(vectors) == 0 {
		return 0, nil
	}

	dim := s.Dimension()
	if dim == 0 {
		dim = len(vectors[0].Values)
		if err := s.CreateDimension(dim); err != nil {
			return 0, err
		}
	}

	encoded := make([][]byte, len(vectors))
	for i, v := range vectors {
		if v.ID == "" || len(v.Values) == 0 {
			return 0, fmt.Errorf("%w: vector %d has no id or values", storage.ErrInvalidVector, i)
		}
		if len(v.Values) != dim {
			return 0, fmt.Errorf("%w: %s has %d values, index has %d", storage.ErrDimensionMismatch, v.ID, len(v.Values), dim)
		}
		data, err := storage.MarshalVector(v)
		if err != nil {
			return 0, err
		}
		encoded[i] = data
	}

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		for i, v := range vectors {
			if err := tx.Set(makeVectorKey(namespace, v.ID), encoded[i]); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, err
	}

	s.logger.Debug("upserted vectors", "namespace", namespace, "count", len(vectors))
	return len(vectors), nil
}

// Fetch returns the stored vectors among ids, in the order given.
func (s *Store) Fetch(ctx context.Context, namespace string, ids ...string) ([]storage.Vector, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var out []storage.Vector
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			item, err := tx.Get(makeVectorKey(namespace, id))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			err = item.Value(func(val []byte) error {
				v, err := storage.UnmarshalVector(val)
				if err != nil {
					return err
				}
				out = append(out, v)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	return out, err
}

// DescribeIndexStats counts vectors per namespace.
func (s *Store) DescribeIndexStats(ctx context.Context) (*storage.IndexStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	stats := &storage.IndexStats{
		Dimension:  s.Dimension(),
		Namespaces: make(map[string]int64),
	}
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(vectorPrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			ns, _, ok := parseVectorKey(iter.Item().Key())
			if !ok {
				continue
			}
			stats.Namespaces[ns]++
			stats.TotalVectorCount++
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// CreateIndex records the dimension of the local index. The name, cloud
// and region of spec are ignored; a database holds a single index. A store
// opened with a dimension already has its index, so creating it again with
// the same dimension succeeds.
func (s *Store) CreateIndex(ctx context.Context, spec storage.IndexSpec) (*storage.IndexDescription, error) {
	if spec.Dimension <= 0 {
		return nil, fmt.Errorf("%w: dimension must be positive", storage.ErrInvalidIndexSpec)
	}
	switch dim := s.Dimension(); {
	case dim == spec.Dimension:
		return s.DescribeIndex(ctx, spec.Name)
	case dim != 0:
		return nil, fmt.Errorf("%w: local index has dimension %d", storage.ErrIndexExists, dim)
	}
	if err := s.CreateDimension(spec.Dimension); err != nil {
		return nil, err
	}
	return s.DescribeIndex(ctx, spec.Name)
}

// DescribeIndex describes the local index. Returns storage.ErrNotFound until
// a dimension has been recorded.
func (s *Store) DescribeIndex(ctx context.Context, name string) (*storage.IndexDescription, error) {
	dim := s.Dimension()
	if dim == 0 {
		return nil, fmt.Errorf("%w: local index has no dimension yet", storage.ErrNotFound)
	}
	return &storage.IndexDescription{
		Name:      localIndexName,
		Dimension: dim,
		Metric:    defaultMetric,
		Ready:     true,
	}, nil
}

// Close closes the database if the store opened it.
func (s *Store) Close() error {
	if !s.ownsDB || s.backend.IsClosed() {
		return nil
	}
	return s.backend.Close()
}
