package profindex

import "errors"

var (
	// ErrInvalidConfig indicates a job configuration that failed validation.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnsupportedConfig indicates a config file with an unknown extension.
	ErrUnsupportedConfig = errors.New("unsupported config format")

	// ErrNoSources indicates an ingest request without any source.
	ErrNoSources = errors.New("no sources to ingest")

	// ErrIndexManagement indicates a store that cannot create or describe
	// indexes.
	ErrIndexManagement = errors.New("store does not support index management")
)
