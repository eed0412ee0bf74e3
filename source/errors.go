package source

import (
	"errors"
	"fmt"
)

var (
	// ErrNoLocations indicates Open was called without any location.
	ErrNoLocations = errors.New("no source locations")

	// ErrUnsupportedSource indicates a location whose scheme or extension has
	// no matching source.
	ErrUnsupportedSource = errors.New("unsupported source")

	// ErrMissingColumn indicates a CSV header without a professor name column.
	ErrMissingColumn = errors.New("missing required column")

	// ErrFetchFailed indicates an HTML page that could not be retrieved.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrMalformedDocument indicates a JSON document that does not have the
	// expected shape.
	ErrMalformedDocument = errors.New("malformed document")
)

// RowError is a recoverable error tied to one row or page of a source. The
// rest of the source is still read after a RowError is yielded.
type RowError struct {
	Source string
	Line   int
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Source, e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}
