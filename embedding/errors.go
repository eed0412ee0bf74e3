package embedding

import "errors"

var (
	// ErrProviderFatal wraps any provider failure that aborts the run:
	// everything except a rate limit that was eventually retried away.
	ErrProviderFatal = errors.New("embedding provider failed")

	// ErrDimensionMismatch indicates a vector whose length differs from the
	// configured dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrCountMismatch indicates the provider returned a different number of
	// vectors than texts sent.
	ErrCountMismatch = errors.New("embedding count mismatch")

	// ErrInvalidPolicy is returned for a RetryPolicy with invalid fields.
	ErrInvalidPolicy = errors.New("invalid retry policy")
)
