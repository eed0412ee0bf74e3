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


package profindex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/profindex/ai"
	"github.com/poiesic/profindex/ai/cohere"
	"github.com/poiesic/profindex/ai/mock"
	"github.com/poiesic/profindex/ai/openai"
	"github.com/poiesic/profindex/embedding"
	"github.com/poiesic/profindex/ingestion"
	"github.com/poiesic/profindex/source"
	"github.com/poiesic/profindex/storage"
	"github.com/poiesic/profindex/storage/badger"
	"github.com/poiesic/profindex/storage/pinecone"
	"github.com/poiesic/profindex/upsert"
)

// Indexer owns the provider and store handles of a job. They are created
// once and handed to every pipeline the indexer builds.
type Indexer struct {
	config   *Config
	provider ai.AIProvider
	store    storage.VectorStore
	adapter  *embedding.Adapter
	progress io.Writer
	logger   *slog.Logger
	// baseLogger is the caller's logger, before the indexer's component key.
	baseLogger *slog.Logger
}

// IndexerOption configures an Indexer.
type IndexerOption func(*indexerOptions)

type indexerOptions struct {
	provider ai.AIProvider
	store    storage.VectorStore
	progress io.Writer
	logger   *slog.Logger
}

// WithProvider uses provider instead of building one from the configuration.
// The indexer closes it.
func WithProvider(provider ai.AIProvider) IndexerOption {
	return func(o *indexerOptions) {
		o.provider = provider
	}
}

// WithStore uses store instead of opening one from the configuration.
// The indexer closes it.
func WithStore(store storage.VectorStore) IndexerOption {
	return func(o *indexerOptions) {
		o.store = store
	}
}

// WithProgressWriter prints upsert progress lines to w.
func WithProgressWriter(w io.Writer) IndexerOption {
	return func(o *indexerOptions) {
		o.progress = w
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) IndexerOption {
	return func(o *indexerOptions) {
		o.logger = logger
	}
}

// NewIndexer validates cfg and opens the provider and the store.
func NewIndexer(cfg *Config, opts ...IndexerOption) (*Indexer, error) {
	options := &indexerOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := cfg.validateFields(); err != nil {
		return nil, err
	}
	policy, err := cfg.RetryPolicy()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	aiConfig := cfg.AIConfig()

	provider := options.provider
	if provider == nil {
		if err := aiConfig.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		provider, err = NewProvider(aiConfig)
		if err != nil {
			return nil, err
		}
	}

	store := options.store
	if store == nil {
		if err := cfg.validateStoreCredentials(); err != nil {
			provider.Close()
			return nil, err
		}
		store, err = OpenStore(cfg, provider.Embedder().Dimension())
		if err != nil {
			provider.Close()
			return nil, err
		}
	}

	logger := options.logger.With("component", "indexer")
	adapter := embedding.NewAdapter(provider.Embedder(),
		embedding.WithRetryPolicy(policy),
		embedding.WithBatchSize(aiConfig.BatchSize),
		embedding.WithRequestRate(cfg.Embedding.RequestsPerSecond),
		embedding.WithLogger(options.logger),
	)

	return &Indexer{
		config:     cfg,
		provider:   provider,
		store:      store,
		adapter:    adapter,
		progress:   options.progress,
		logger:     logger,
		baseLogger: options.logger,
	}, nil
}

// NewProvider builds the embedding provider named by config.Provider.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	config.Normalize()
	switch config.Provider {
	case ai.ProviderCohere:
		return cohere.NewProvider(config)
	case ai.ProviderOpenAI:
		return openai.NewProvider(config)
	case ai.ProviderMock:
		return mock.NewProvider(config)
	}
	return nil, fmt.Errorf("%w: %q", ai.ErrUnknownProvider, config.Provider)
}

// OpenStore opens the vector store named by cfg.Store.Kind. dimension is
// the expected vector length of the local store.
func OpenStore(cfg *Config, dimension int) (storage.VectorStore, error) {
	switch cfg.Store.Kind {
	case StoreBadger:
		return badger.Open(cfg.Store.Path, dimension)
	case StorePinecone:
		timeout, _ := time.ParseDuration(cfg.Embedding.Timeout)
		s, err := pinecone.New(pinecone.Config{
			APIKey:     cfg.Store.APIKey,
			APIVersion: cfg.Store.APIVersion,
			BaseURL:    cfg.Store.BaseURL,
			IndexName:  cfg.Store.IndexName,
			IndexHost:  cfg.Store.IndexHost,
			Timeout:    timeout,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("%w: unknown store %q", ErrInvalidConfig, cfg.Store.Kind)
}

// Config returns the job configuration.
func (ix *Indexer) Config() *Config {
	return ix.config
}

// Store returns the vector store.
func (ix *Indexer) Store() storage.VectorStore {
	return ix.store
}

// Adapter returns the embedding adapter shared by all runs.
func (ix *Indexer) Adapter() *embedding.Adapter {
	return ix.adapter
}

// NewPipeline builds an ingestion pipeline from the configuration. opts are
// applied after the configured options.
func (ix *Indexer) NewPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	base, err := ix.config.PipelineOptions()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	base = append(base, ingestion.WithLogger(ix.baseLogger))
	if ix.progress != nil {
		base = append(base, ingestion.WithProgress(upsert.NewProgressTracker(ix.progress, 0, 1)))
	}
	return ingestion.NewPipeline(ix.adapter, ix.store, append(base, opts...)...)
}

// Ingest runs one ingestion over locations, or over the configured sources
// when locations is empty.
func (ix *Indexer) Ingest(ctx context.Context, locations ...string) (*ingestion.Report, error) {
	if len(locations) == 0 {
		locations = ix.config.Sources
	}
	if len(locations) == 0 {
		return nil, ErrNoSources
	}

	if err := ix.checkDimension(ctx); err != nil {
		return nil, err
	}

	sources, err := source.Open(locations, append(ix.config.SourceOptions(), source.WithLogger(ix.baseLogger))...)
	if err != nil {
		return nil, err
	}
	pipeline, err := ix.NewPipeline()
	if err != nil {
		return nil, err
	}
	return pipeline.Run(ctx, sources...)
}

// checkDimension fails when the index holds vectors of a different length
// than the embedder produces. A store that knows its dimension is asked
// directly; otherwise the index is described.
func (ix *Indexer) checkDimension(ctx context.Context) error {
	want := ix.adapter.Dimension()
	if want <= 0 {
		return nil
	}

	var have int
	switch s := ix.store.(type) {
	case interface{ Dimension() int }:
		have = s.Dimension()
	case storage.IndexManager:
		desc, err := s.DescribeIndex(ctx, ix.config.Store.IndexName)
		if err != nil {
			return fmt.Errorf("describe index %s: %w", ix.config.Store.IndexName, err)
		}
		have = desc.Dimension
	default:
		return nil
	}

	if have > 0 && have != want {
		return fmt.Errorf("%w: %w: index %s has dimension %d, embedder produces %d",
			embedding.ErrProviderFatal, embedding.ErrDimensionMismatch, ix.config.Store.IndexName, have, want)
	}
	return nil
}

// CreateIndex creates the configured index with the provider's dimension.
func (ix *Indexer) CreateIndex(ctx context.Context) (*storage.IndexDescription, error) {
	manager, ok := ix.store.(storage.IndexManager)
	if !ok {
		return nil, ErrIndexManagement
	}
	return manager.CreateIndex(ctx, storage.IndexSpec{
		Name:      ix.config.Store.IndexName,
		Dimension: ix.adapter.Dimension(),
		Metric:    ix.config.Store.Metric,
		Cloud:     ix.config.Store.Cloud,
		Region:    ix.config.Store.Region,
	})
}

// DescribeIndex describes the configured index.
func (ix *Indexer) DescribeIndex(ctx context.Context) (*storage.IndexDescription, error) {
	manager, ok := ix.store.(storage.IndexManager)
	if !ok {
		return nil, ErrIndexManagement
	}
	return manager.DescribeIndex(ctx, ix.config.Store.IndexName)
}

// Stats returns the vector counts of the store.
func (ix *Indexer) Stats(ctx context.Context) (*storage.IndexStats, error) {
	return ix.store.DescribeIndexStats(ctx)
}

// Close releases the store and the provider.
func (ix *Indexer) Close() error {
	var errs []error
	if err := ix.store.Close(); err != nil {
		ix.logger.Error("error closing vector store", "err", err)
		errs = append(errs, err)
	}
	if err := ix.provider.Close(); err != nil {
		ix.logger.Error("error closing embedding provider", "err", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
