package badger

import "github.com/poiesic/profindex/storage"

// NewMemoryStore creates an in-memory store for testing.
// Closing the store closes its database.
func NewMemoryStore(dimension int) (*Store, error) {
	backend, err := OpenBackend("", true)
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

// NewMemoryVectorStore is NewMemoryStore returning the interface type.
func NewMemoryVectorStore(dimension int) (storage.VectorStore, error) {
	return NewMemoryStore(dimension)
}
