package upsert

import (
	"errors"
	"fmt"
)

// BatchFailure records a batch the store rejected.
type BatchFailure struct {
	// Index is the 0-based position of the batch within the run.
	Index int
	// IDs are the vector ids of the batch, in submission order.
	IDs []string
	Err error
}

func (f BatchFailure) Error() string {
	return fmt.Sprintf("batch %d (%d vectors): %v", f.Index, len(f.IDs), f.Err)
}

func (f BatchFailure) Unwrap() error {
	return f.Err
}

// Report summarises the upserts of a run.
type Report struct {
	// Submitted is the number of vectors handed to the store.
	Submitted int
	// Accepted is the number of vectors the store confirmed.
	Accepted int
	// Batches is the number of store calls made.
	Batches int
	Failed  []BatchFailure
	// Interrupted is set when the context ended before every batch was sent.
	Interrupted error
}

// OK reports whether every batch was sent and succeeded.
func (r *Report) OK() bool {
	return len(r.Failed) == 0 && r.Interrupted == nil
}

// FailedIDs returns the ids of all vectors in failed batches.
func (r *Report) FailedIDs() []string {
	var ids []string
	for _, f := range r.Failed {
		ids = append(ids, f.IDs...)
	}
	return ids
}

// Err joins the batch failures, or returns nil when there are none.
// The result matches ErrBatchFailed when a batch failed.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}
	var errs []error
	if len(r.Failed) > 0 {
		errs = append(errs, ErrBatchFailed)
	}
	for _, f := range r.Failed {
		errs = append(errs, f)
	}
	if r.Interrupted != nil {
		errs = append(errs, r.Interrupted)
	}
	return errors.Join(errs...)
}
