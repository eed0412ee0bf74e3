package storage

import "context"

// Vector is one embedded unit as stored in a vector index.
type Vector struct {
	ID       string
	Values   []float32
	Metadata map[string]any
}

// IndexStats summarises an index.
type IndexStats struct {
	Dimension        int
	TotalVectorCount int64
	// Namespaces maps namespace name to vector count.
	Namespaces map[string]int64
}

// IndexSpec describes an index to create.
type IndexSpec struct {
	Name      string
	Dimension int
	// Metric is the similarity metric: "cosine", "dotproduct" or "euclidean".
	Metric string
	// Cloud and Region place a serverless index, e.g. "aws" and "us-east-1".
	Cloud  string
	Region string
}

// IndexDescription is the control-plane view of an index.
type IndexDescription struct {
	Name      string
	Host      string
	Dimension int
	Metric    string
	Ready     bool
}

// VectorStore writes vectors into a namespaced index.
// Implementations must be thread-safe and support concurrent access.
type VectorStore interface {
	// Upsert inserts or replaces vectors by id within namespace. The call is
	// all-or-nothing from the caller's point of view: on error none of the
	// vectors should be assumed written. Returns the number accepted.
	Upsert(ctx context.Context, namespace string, vectors []Vector) (int, error)

	// DescribeIndexStats returns the vector counts of the index.
	DescribeIndexStats(ctx context.Context) (*IndexStats, error)

	// Close releases resources held by the store.
	Close() error
}

// VectorFetcher reads stored vectors back by id.
type VectorFetcher interface {
	// Fetch returns the vectors that exist among ids. Missing ids are skipped.
	Fetch(ctx context.Context, namespace string, ids ...string) ([]Vector, error)
}

// IndexManager administers indexes.
type IndexManager interface {
	// CreateIndex creates an index. Returns ErrIndexExists if one with the
	// same name already exists.
	CreateIndex(ctx context.Context, spec IndexSpec) (*IndexDescription, error)

	// DescribeIndex returns the description of the named index.
	// Returns ErrNotFound if it does not exist.
	DescribeIndex(ctx context.Context, name string) (*IndexDescription, error)
}
