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


package embedding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/profindex/ai"
	"golang.org/x/time/rate"
)

// DefaultBatchSize is used when no batch size is configured. It matches the
// Cohere per-request limit.
const DefaultBatchSize = ai.DefaultCohereBatchSize

// Adapter wraps an ai.Embedder with chunking, rate-limit retry and
// dimension checks.
type Adapter struct {
	embedder  ai.Embedder
	policy    RetryPolicy
	batchSize int
	dimension int
	limiter   *rate.Limiter
	logger    *slog.Logger

	requests int
	retries  int
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithRetryPolicy sets the policy applied to rate-limited calls.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(a *Adapter) {
		a.policy = p
	}
}

// WithBatchSize sets the most texts sent in one provider call.
func WithBatchSize(n int) Option {
	return func(a *Adapter) {
		if n > 0 {
			a.batchSize = n
		}
	}
}

// WithDimension overrides the expected vector length. By default the
// embedder's Dimension is used.
func WithDimension(dim int) Option {
	return func(a *Adapter) {
		a.dimension = dim
	}
}

// WithRequestRate paces provider calls to rps requests per second.
// A value <= 0 disables pacing.
func WithRequestRate(rps float64) Option {
	return func(a *Adapter) {
		if rps <= 0 {
			a.limiter = nil
			return
		}
		a.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAdapter creates an adapter around embedder. Without options it uses
// RateLimitPolicy and DefaultBatchSize.
func NewAdapter(embedder ai.Embedder, opts ...Option) *Adapter {
	a := &Adapter{
		embedder:  embedder,
		policy:    RateLimitPolicy(),
		batchSize: DefaultBatchSize,
		dimension: embedder.Dimension(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With("component", "embedding-adapter")
	return a
}

// Embed returns one vector per text, in input order.
//
// Texts are sent in chunks of the configured batch size. A rate-limited
// chunk is retried according to the retry policy and blocks the caller while
// it waits; any other provider error is returned at once wrapped in
// ErrProviderFatal. Every vector must have the configured dimension.
func (a *Adapter) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += a.batchSize {
		end := min(start+a.batchSize, len(texts))
		vecs, err := a.embedChunk(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (a *Adapter) embedChunk(ctx context.Context, texts []string) ([][]float32, error) {
	var vecs [][]float32
	attempt := 0
	err := a.policy.Do(ctx, func() error {
		attempt++
		if a.limiter != nil {
			if err := a.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		a.requests++

		var err error
		vecs, err = a.embedder.EmbedTexts(ctx, texts)
		if errors.Is(err, ai.ErrRateLimited) {
			a.retries++
			a.logger.Warn("provider rate limited request, backing off",
				"attempt", attempt, "texts", len(texts), "wait", a.policy.Backoff(attempt))
		}
		return err
	}, isRateLimited)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w", ErrProviderFatal, err)
	}

	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("%w: %w: expected %d, got %d", ErrProviderFatal, ErrCountMismatch, len(texts), len(vecs))
	}
	if a.dimension > 0 {
		for i, v := range vecs {
			if len(v) != a.dimension {
				return nil, fmt.Errorf("%w: %w: vector %d has length %d, expected %d",
					ErrProviderFatal, ErrDimensionMismatch, i, len(v), a.dimension)
			}
		}
	}
	return vecs, nil
}

// Dimension returns the expected vector length.
func (a *Adapter) Dimension() int {
	return a.dimension
}

// Requests returns the number of provider calls made, throttled ones included.
func (a *Adapter) Requests() int {
	return a.requests
}

// Retries returns the number of calls that were rate limited.
func (a *Adapter) Retries() int {
	return a.retries
}

func isRateLimited(err error) bool {
	return errors.Is(err, ai.ErrRateLimited)
}
