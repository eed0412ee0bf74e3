package core

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	// ErrMissingIdentity indicates a row without the professor name needed to
	// derive identifiers.
	ErrMissingIdentity = errors.New("missing professor name")

	// ErrInvalidUnit indicates an EmbeddableUnit failed validation.
	ErrInvalidUnit = errors.New("invalid embeddable unit")

	// ErrEmptyID indicates a unit without an identifier.
	ErrEmptyID = errors.New("unit id cannot be empty")

	// ErrEmptyText indicates a unit without text to embed.
	ErrEmptyText = errors.New("unit text cannot be empty")

	// ErrNestedMetadata indicates a metadata value that is not a primitive or
	// a list of strings.
	ErrNestedMetadata = errors.New("metadata values must be primitives or string lists")

	// ErrInvalidComposeMode indicates an unrecognised composition mode.
	ErrInvalidComposeMode = errors.New("invalid compose mode")

	// ErrInvalidTagPolicy indicates an unrecognised tag policy.
	ErrInvalidTagPolicy = errors.New("invalid tag policy")
)

// MissingIdentityError reports the source row that could not be identified.
type MissingIdentityError struct {
	Line int
}

func (e *MissingIdentityError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Line, ErrMissingIdentity)
}

func (e *MissingIdentityError) Unwrap() error {
	return ErrMissingIdentity
}
