package ai

import "context"

// Embedder generates vector embeddings from text.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedTexts generates vector embeddings for multiple text strings in a
	// single provider request. The returned slice contains embeddings in the
	// same order as the input texts.
	//
	// A throttled request returns an error matching ErrRateLimited so the
	// caller can decide whether to wait and retry.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the vector length the embedder is configured for.
	Dimension() int
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
