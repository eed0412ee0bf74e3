package upsert

import "errors"

var (
	// ErrBatchFailed is matched by Report.Err when any batch failed.
	ErrBatchFailed = errors.New("upsert batch failed")

	// ErrInvalidBatchSize indicates a batch size below 1.
	ErrInvalidBatchSize = errors.New("batch size must be greater than 0")
)
