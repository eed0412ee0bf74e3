package pinecone

import (
	"fmt"
	"net/http"

	"github.com/poiesic/profindex/storage"
)

// OperationError describes a failed Pinecone call. It unwraps to a storage
// sentinel chosen from the HTTP status.
type OperationError struct {
	Operation  string
	StatusCode int
	Message    string
	Cause      error
}

func (e *OperationError) Error() string {
	if e == nil {
		return "pinecone operation failed"
	}
	if e.StatusCode == 0 {
		return fmt.Sprintf("pinecone operation failed (op=%s): %v", e.Operation, e.Cause)
	}
	return fmt.Sprintf("pinecone operation failed (op=%s status=%d): %s", e.Operation, e.StatusCode, e.Message)
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func statusErr(op string, status int, body string) error {
	cause := storage.ErrRequestFailed
	switch status {
	case http.StatusNotFound:
		cause = storage.ErrNotFound
	case http.StatusConflict:
		cause = storage.ErrIndexExists
	}
	return &OperationError{Operation: op, StatusCode: status, Message: body, Cause: cause}
}

func transportErr(op string, err error) error {
	return &OperationError{Operation: op, Cause: fmt.Errorf("%w: %w", storage.ErrRequestFailed, err)}
}
