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


package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/profindex/core"
	"github.com/poiesic/profindex/embedding"
	"github.com/poiesic/profindex/source"
	"github.com/poiesic/profindex/storage"
	"github.com/poiesic/profindex/upsert"
)

// DefaultNamespace is the namespace used when none is configured.
const DefaultNamespace = "ns1"

// Pipeline turns source rows into upserted vectors.
type Pipeline struct {
	embedder  *embedding.Adapter
	store     storage.VectorStore
	namespace string
	composer  *core.Composer
	tagPolicy core.TagPolicy
	batchSize int
	chunkSize int
	progress  *upsert.ProgressTracker
	logger    *slog.Logger
	// parent of logger, handed to the batcher so it adds its own component
	baseLogger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithNamespace sets the namespace every vector is written to.
func WithNamespace(ns string) Option {
	return func(p *Pipeline) error {
		if ns == "" {
			return ErrNamespaceRequired
		}
		p.namespace = ns
		return nil
	}
}

// WithBatchSize sets the number of vectors per upsert call.
// Default is upsert.DefaultBatchSize.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			return upsert.ErrInvalidBatchSize
		}
		p.batchSize = size
		return nil
	}
}

// WithChunkSize sets how many units are embedded together before their
// vectors are queued. Default is the upsert batch size.
func WithChunkSize(size int) Option {
	return func(p *Pipeline) error {
		if size > 0 {
			p.chunkSize = size
		}
		return nil
	}
}

// WithComposeMode selects the professor text composition.
// Default is core.ComposeBasic.
func WithComposeMode(mode core.ComposeMode) Option {
	return func(p *Pipeline) error {
		c, err := core.NewComposer(mode)
		if err != nil {
			return err
		}
		p.composer = c
		return nil
	}
}

// WithTagPolicy sets the tag policy applied before records are built.
// Default is core.TagPolicyKeep.
func WithTagPolicy(policy core.TagPolicy) Option {
	return func(p *Pipeline) error {
		p.tagPolicy = policy
		return nil
	}
}

// WithProgress reports every upserted batch to tracker.
func WithProgress(tracker *upsert.ProgressTracker) Option {
	return func(p *Pipeline) error {
		p.progress = tracker
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a pipeline writing to store.
func NewPipeline(embedder *embedding.Adapter, store storage.VectorStore, opts ...Option) (*Pipeline, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if store == nil {
		return nil, ErrStoreRequired
	}

	composer, _ := core.NewComposer(core.ComposeBasic)
	p := &Pipeline{
		embedder:  embedder,
		store:     store,
		namespace: DefaultNamespace,
		composer:  composer,
		tagPolicy: core.TagPolicyKeep,
		batchSize: upsert.DefaultBatchSize,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	if p.chunkSize == 0 {
		p.chunkSize = p.batchSize
	}
	p.baseLogger = p.logger
	p.logger = p.logger.With("component", "ingestion", "namespace", p.namespace)
	return p, nil
}

// Namespace returns the namespace the pipeline writes to.
func (p *Pipeline) Namespace() string {
	return p.namespace
}

// run holds the state of a single Run call.
type run struct {
	*Pipeline
	report  *Report
	batcher *upsert.Batcher

	// professors already emitted in this run
	seen map[string]core.EmbeddableUnit

	// units waiting to be embedded, with their position by id
	pending []core.EmbeddableUnit
	index   map[string]int
}

// Run ingests every row of sources, in order.
//
// The returned report is never nil. The error is non-nil only when the run
// was aborted: a source failed as a whole, the embedding provider failed for
// a reason other than rate limiting, or ctx was cancelled. Failed upsert
// batches do not abort the run; check Report.OK.
func (p *Pipeline) Run(ctx context.Context, sources ...source.Source) (*Report, error) {
	r := &run{
		Pipeline: p,
		report: &Report{
			RunID:     uuid.NewString(),
			Namespace: p.namespace,
			StartedAt: time.Now().UTC(),
		},
		seen:  make(map[string]core.EmbeddableUnit),
		index: make(map[string]int),
	}

	opts := []upsert.Option{upsert.WithLogger(p.baseLogger.With("run", r.report.RunID))}
	if p.progress != nil {
		opts = append(opts, upsert.WithProgress(p.progress))
		p.progress.Start()
	}
	batcher, err := upsert.NewBatcher(p.store, p.namespace, p.batchSize, opts...)
	if err != nil {
		return r.report, err
	}
	r.batcher = batcher

	logger := p.logger.With("run", r.report.RunID)
	logger.Info("ingestion started", "sources", len(sources))

	err = r.ingest(ctx, sources)
	if err == nil {
		err = r.flushUnits(ctx)
	}
	if err == nil {
		err = r.batcher.Flush(ctx)
	}

	if p.progress != nil {
		p.progress.Finish()
	}
	r.report.Upsert = r.batcher.Report()
	r.report.FinishedAt = time.Now().UTC()

	if err != nil {
		logger.Error("ingestion aborted", "err", err, "rows", r.report.Rows)
		return r.report, err
	}
	logger.Info("ingestion finished",
		"rows", r.report.Rows,
		"professors", r.report.Professors,
		"reviews", r.report.Reviews,
		"accepted", r.report.Upsert.Accepted,
		"failed_batches", len(r.report.Upsert.Failed),
		"skipped", len(r.report.Skipped),
		"conflicts", len(r.report.Conflicts),
		"duration", r.report.Duration())
	return r.report, nil
}

func (r *run) ingest(ctx context.Context, sources []source.Source) error {
	for _, src := range sources {
		for row, err := range src.Rows(ctx) {
			if err != nil {
				var rowErr *source.RowError
				if errors.As(err, &rowErr) {
					r.skip(src.Name(), rowErr.Line, rowErr.Err)
					continue
				}
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return fmt.Errorf("%w: %s: %w", ErrSourceFailed, src.Name(), err)
			}

			r.report.Rows++
			r.row(src.Name(), row)

			if len(r.pending) >= r.chunkSize {
				if err := r.flushUnits(ctx); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (r *run) row(name string, raw core.RawRow) {
	normalized := r.tagPolicy.Apply(core.Normalize(raw))
	professor, review, err := core.BuildRecords(normalized)
	if err != nil {
		r.skip(name, raw.Line, err)
		return
	}

	unit := core.NewProfessorUnit(professor, r.composer)
	if first, ok := r.seen[unit.ID]; ok {
		if first.Text != unit.Text || !reflect.DeepEqual(first.Metadata, unit.Metadata) {
			r.logger.Warn("professor data differs from the first row, keeping the first",
				"id", unit.ID, "source", name, "line", raw.Line)
			r.report.Conflicts = append(r.report.Conflicts, SkippedRow{
				Source: name,
				Line:   raw.Line,
				Reason: fmt.Errorf("%w: %s", ErrProfessorConflict, unit.ID),
			})
		}
	} else if r.queue(name, raw.Line, unit) {
		r.seen[unit.ID] = unit
		r.report.Professors++
	}

	if review != nil {
		if r.queue(name, raw.Line, core.NewReviewUnit(review, r.composer)) {
			r.report.Reviews++
		}
	}
}

// queue adds a unit to the pending chunk and reports whether it is a new
// unit. A unit whose id is already pending replaces the earlier one.
func (r *run) queue(name string, line int, unit core.EmbeddableUnit) bool {
	if err := core.ValidateUnit(unit); err != nil {
		r.skip(name, line, err)
		return false
	}
	if i, ok := r.index[unit.ID]; ok {
		r.logger.Warn("duplicate unit id, keeping the later unit", "id", unit.ID, "source", name, "line", line)
		r.pending[i] = unit
		r.report.Collisions++
		return false
	}
	r.index[unit.ID] = len(r.pending)
	r.pending = append(r.pending, unit)
	return true
}

func (r *run) skip(name string, line int, reason error) {
	r.logger.Warn("row skipped", "source", name, "line", line, "reason", reason)
	r.report.Skipped = append(r.report.Skipped, SkippedRow{Source: name, Line: line, Reason: reason})
}

// flushUnits embeds the pending units and hands the vectors to the batcher.
func (r *run) flushUnits(ctx context.Context) error {
	if len(r.pending) == 0 {
		return nil
	}
	units := r.pending
	r.pending = nil
	clear(r.index)

	texts := make([]string, len(units))
	for i, u := range units {
		texts[i] = u.Text
	}
	values, err := r.embedder.Embed(ctx, texts)
	if err != nil {
		return err
	}
	r.report.Embedded += len(values)

	vectors := make([]storage.Vector, len(units))
	for i, u := range units {
		vectors[i] = storage.Vector{ID: u.ID, Values: values[i], Metadata: u.Metadata}
	}
	return r.batcher.Add(ctx, vectors...)
}
