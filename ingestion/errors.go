package ingestion

import "errors"

var (
	// ErrEmbedderRequired is returned when no embedding adapter is provided.
	ErrEmbedderRequired = errors.New("embedding adapter required")

	// ErrStoreRequired is returned when no vector store is provided.
	ErrStoreRequired = errors.New("vector store required")

	// ErrNamespaceRequired is returned when the namespace is empty.
	ErrNamespaceRequired = errors.New("namespace required")

	// ErrSourceFailed is returned when a source stops with an error that is
	// not tied to a single row.
	ErrSourceFailed = errors.New("source failed")

	// ErrProfessorConflict marks a repeated professor row whose data differs
	// from the row that produced the professor unit.
	ErrProfessorConflict = errors.New("professor data differs from first occurrence")
)
