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


package ai

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ProviderName identifies an embedding provider implementation.
type ProviderName string

const (
	// ProviderCohere uses the Cohere embed API.
	ProviderCohere ProviderName = "cohere"
	// ProviderOpenAI uses an OpenAI-compatible embeddings API (OpenAI, Ollama, LocalAI, vLLM).
	ProviderOpenAI ProviderName = "openai"
	// ProviderMock produces deterministic vectors without network access.
	ProviderMock ProviderName = "mock"
)

// Cohere defaults.
const (
	DefaultCohereHost      = "https://api.cohere.com"
	DefaultCohereModel     = "embed-english-v3.0"
	DefaultCohereDimension = 1024
	// DefaultCohereBatchSize is the most texts Cohere accepts in one embed call.
	DefaultCohereBatchSize = 96
	// DefaultInputType marks texts as documents to be searched over.
	DefaultInputType = "search_document"
)

// OpenAI-compatible defaults, targeting a local Ollama server.
const (
	DefaultOpenAIHost      = "http://localhost:11434/v1"
	DefaultOpenAIModel     = "all-minilm"
	DefaultOpenAIDimension = 384
	DefaultOpenAIBatchSize = 100
)

// Config holds configuration for an embedding provider.
// Zero fields are filled with the provider's defaults by Normalize.
type Config struct {
	// Provider selects the implementation. Default: cohere.
	Provider ProviderName

	// Host is the base URL of the provider API.
	// Example: "https://api.cohere.com", "http://localhost:11434/v1"
	Host string

	// Model is the embedding model identifier.
	// Example: "embed-english-v3.0", "all-minilm", "text-embedding-3-small"
	Model string

	// APIKey authenticates against the provider. Required for cohere.
	APIKey string

	// InputType is passed to providers that distinguish documents from
	// queries. Default: "search_document".
	InputType string

	// Dimension is the expected vector length. Every returned vector is
	// checked against it.
	Dimension int

	// BatchSize is the most texts sent in one request.
	BatchSize int

	// Timeout bounds a single HTTP request.
	Timeout time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithProvider selects the provider implementation.
func WithProvider(p ProviderName) ConfigOption {
	return func(c *Config) {
		c.Provider = p
	}
}

// WithHost sets the provider base URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithModel sets the embedding model identifier.
func WithModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

// WithAPIKey sets the provider API key.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithInputType sets the input type hint.
func WithInputType(inputType string) ConfigOption {
	return func(c *Config) {
		c.InputType = inputType
	}
}

// WithDimension sets the expected vector length.
func WithDimension(dim int) ConfigOption {
	return func(c *Config) {
		c.Dimension = dim
	}
}

// WithBatchSize sets the request batch limit.
func WithBatchSize(n int) ConfigOption {
	return func(c *Config) {
		c.BatchSize = n
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = d
	}
}

// DefaultConfig returns a Config for Cohere's embed-english-v3.0 model.
// The API key still has to be supplied.
func DefaultConfig() *Config {
	return NewConfig()
}

// NewConfig creates a Config from the provided options and fills the
// remaining fields with the selected provider's defaults.
//
// Example:
//
//	cfg := NewConfig(
//	    WithProvider(ProviderOpenAI),
//	    WithHost("http://localhost:11434"),
//	    WithModel("all-minilm"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := &Config{Provider: ProviderCohere}
	for _, opt := range opts {
		opt(cfg)
	}
	cfg.Normalize()
	return cfg
}

// Normalize puts the configuration in canonical form and applies provider
// defaults to unset fields. OpenAI-compatible hosts get a /v1 suffix, which
// Ollama, LocalAI and vLLM all require.
func (c *Config) Normalize() {
	c.Provider = ProviderName(strings.ToLower(strings.TrimSpace(string(c.Provider))))
	if c.Provider == "" {
		c.Provider = ProviderCohere
	}
	if c.InputType == "" {
		c.InputType = DefaultInputType
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}

	switch c.Provider {
	case ProviderCohere:
		setDefaults(c, DefaultCohereHost, DefaultCohereModel, DefaultCohereDimension, DefaultCohereBatchSize)
	case ProviderOpenAI:
		setDefaults(c, DefaultOpenAIHost, DefaultOpenAIModel, DefaultOpenAIDimension, DefaultOpenAIBatchSize)
	case ProviderMock:
		setDefaults(c, "", "mock", DefaultOpenAIDimension, DefaultCohereBatchSize)
	}

	c.Host = strings.TrimSuffix(strings.TrimSpace(c.Host), "/")
	if c.Provider == ProviderOpenAI && c.Host != "" && !strings.HasSuffix(c.Host, "/v1") {
		c.Host = c.Host + "/v1"
	}
}

func setDefaults(c *Config, host, model string, dim, batch int) {
	if c.Host == "" {
		c.Host = host
	}
	if c.Model == "" {
		c.Model = model
	}
	if c.Dimension == 0 {
		c.Dimension = dim
	}
	if c.BatchSize == 0 {
		c.BatchSize = batch
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	switch c.Provider {
	case ProviderCohere, ProviderOpenAI, ProviderMock:
	default:
		return fmt.Errorf("ai config: %w: %q", ErrUnknownProvider, c.Provider)
	}
	if c.Provider != ProviderMock && c.Host == "" {
		return errors.New("ai config: Host is required")
	}
	if c.Model == "" {
		return errors.New("ai config: Model is required")
	}
	if c.Provider == ProviderCohere && c.APIKey == "" {
		return errors.New("ai config: APIKey is required for cohere")
	}
	if c.Dimension <= 0 {
		return errors.New("ai config: Dimension must be positive")
	}
	if c.BatchSize <= 0 {
		return errors.New("ai config: BatchSize must be positive")
	}
	if c.Provider == ProviderCohere && c.BatchSize > DefaultCohereBatchSize {
		return errors.New("ai config: BatchSize must not exceed 96 for cohere")
	}
	return nil
}
