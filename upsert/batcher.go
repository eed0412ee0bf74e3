// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package upsert

import (
	"context"
	"log/slog"

	"github.com/poiesic/profindex/storage"
)

// DefaultBatchSize is the number of vectors written per store call.
const DefaultBatchSize = 100

// Batcher groups vectors into contiguous batches and writes each batch with
// one store call. A failed batch is recorded and the next batch still runs.
// A Batcher is not safe for concurrent use.
type Batcher struct {
	store     storage.VectorStore
	namespace string
	size      int
	progress  *ProgressTracker
	logger    *slog.Logger

	pending []storage.Vector
	report  Report
}

// Option configures a Batcher.
type Option func(*Batcher)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Batcher) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithProgress reports each written batch to tracker.
func WithProgress(tracker *ProgressTracker) Option {
	return func(b *Batcher) {
		b.progress = tracker
	}
}

// NewBatcher creates a batcher writing to namespace. size must be at least 1.
func NewBatcher(store storage.VectorStore, namespace string, size int, opts ...Option) (*Batcher, error) {
	if size < 1 {
		return nil, ErrInvalidBatchSize
	}
	b := &Batcher{
		store:     store,
		namespace: namespace,
		size:      size,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.With("component", "upsert-batcher", "namespace", namespace)
	b.pending = make([]storage.Vector, 0, size)
	return b, nil
}

// Add queues vectors and writes every batch that fills up.
// Returns the context error if ctx is done; batch failures are only recorded.
func (b *Batcher) Add(ctx context.Context, vectors ...storage.Vector) error {
	for _, v := range vectors {
		b.pending = append(b.pending, v)
		if len(b.pending) == b.size {
			if err := b.flush(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

// Flush writes any queued vectors as a final, possibly short, batch.
func (b *Batcher) Flush(ctx context.Context) error {
	if len(b.pending) == 0 {
		return nil
	}
	return b.flush(ctx)
}

// Report returns a snapshot of the upserts so far.
func (b *Batcher) Report() *Report {
	r := b.report
	r.Failed = append([]BatchFailure(nil), b.report.Failed...)
	return &r
}

// Pending returns the number of queued vectors.
func (b *Batcher) Pending() int {
	return len(b.pending)
}

func (b *Batcher) flush(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		b.report.Interrupted = err
		return err
	}

	batch := b.pending
	b.pending = make([]storage.Vector, 0, b.size)
	index := b.report.Batches
	b.report.Batches++
	b.report.Submitted += len(batch)

	accepted, err := b.store.Upsert(ctx, b.namespace, batch)
	if err != nil {
		ids := make([]string, len(batch))
		for i, v := range batch {
			ids[i] = v.ID
		}
		b.report.Failed = append(b.report.Failed, BatchFailure{Index: index, IDs: ids, Err: err})
		b.logger.Error("batch upsert failed", "batch", index, "size", len(batch), "err", err)
	} else {
		b.report.Accepted += accepted
		b.logger.Debug("batch upserted", "batch", index, "size", len(batch), "accepted", accepted)
	}

	if b.progress != nil {
		b.progress.Record(len(batch), err == nil)
	}
	return nil
}

// Upsert writes vectors to namespace in contiguous batches of at most
// batchSize and returns the report. A batchSize below 1 means
// DefaultBatchSize.
func Upsert(ctx context.Context, store storage.VectorStore, vectors []storage.Vector, namespace string, batchSize int) *Report {
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}
	b, _ := NewBatcher(store, namespace, batchSize)
	if err := b.Add(ctx, vectors...); err == nil {
		b.Flush(ctx)
	}
	return b.Report()
}
