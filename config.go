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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/poiesic/profindex/ai"
	"github.com/poiesic/profindex/core"
	"github.com/poiesic/profindex/embedding"
	"github.com/poiesic/profindex/ingestion"
	"github.com/poiesic/profindex/source"
	"github.com/poiesic/profindex/upsert"
)

// Store kinds.
const (
	StorePinecone = "pinecone"
	StoreBadger   = "badger"
)

const (
	// DefaultIndexName is the Pinecone index used when none is configured.
	DefaultIndexName = "rag"

	// DefaultBadgerPath is the directory of the local store.
	DefaultBadgerPath = "profindex.db"
)

// Config describes one indexing job. It can be loaded from a TOML or YAML
// file and overridden from the command line.
type Config struct {
	Sources   []string `toml:"sources" yaml:"sources" validate:"dive,required"`
	Namespace string   `toml:"namespace" yaml:"namespace" validate:"required"`
	BatchSize int      `toml:"batch_size" yaml:"batch_size" validate:"gte=1"`
	Compose   string   `toml:"compose" yaml:"compose" validate:"oneof=basic detailed"`
	TagPolicy string   `toml:"tag_policy" yaml:"tag_policy" validate:"oneof=keep unique"`

	Embedding EmbeddingConfig `toml:"embedding" yaml:"embedding"`
	Store     StoreConfig     `toml:"store" yaml:"store"`
	HTML      HTMLConfig      `toml:"html" yaml:"html"`
}

// EmbeddingConfig selects and tunes the embedding provider.
type EmbeddingConfig struct {
	Provider  string `toml:"provider" yaml:"provider" validate:"oneof=cohere openai mock"`
	Host      string `toml:"host" yaml:"host" validate:"omitempty,url"`
	Model     string `toml:"model" yaml:"model"`
	APIKey    string `toml:"api_key" yaml:"api_key"`
	InputType string `toml:"input_type" yaml:"input_type"`
	Dimension int    `toml:"dimension" yaml:"dimension" validate:"gte=0"`
	BatchSize int    `toml:"batch_size" yaml:"batch_size" validate:"gte=0"`
	Timeout   string `toml:"timeout" yaml:"timeout"`

	// RequestsPerSecond paces provider calls; 0 disables pacing.
	RequestsPerSecond float64 `toml:"requests_per_second" yaml:"requests_per_second" validate:"gte=0"`

	Retry RetryConfig `toml:"retry" yaml:"retry"`
}

// RetryConfig is the rate-limit retry policy. MaxAttempts 0 retries forever.
type RetryConfig struct {
	MaxAttempts int     `toml:"max_attempts" yaml:"max_attempts" validate:"gte=0"`
	Delay       string  `toml:"delay" yaml:"delay"`
	Multiplier  float64 `toml:"multiplier" yaml:"multiplier" validate:"gte=0"`
	MaxDelay    string  `toml:"max_delay" yaml:"max_delay"`
}

// StoreConfig selects the vector store.
type StoreConfig struct {
	Kind string `toml:"kind" yaml:"kind" validate:"oneof=pinecone badger"`

	// Badger
	Path string `toml:"path" yaml:"path"`

	// Pinecone
	APIKey     string `toml:"api_key" yaml:"api_key"`
	IndexName  string `toml:"index_name" yaml:"index_name"`
	IndexHost  string `toml:"index_host" yaml:"index_host"`
	BaseURL    string `toml:"base_url" yaml:"base_url" validate:"omitempty,url"`
	APIVersion string `toml:"api_version" yaml:"api_version"`
	Metric     string `toml:"metric" yaml:"metric" validate:"omitempty,oneof=cosine euclidean dotproduct"`
	Cloud      string `toml:"cloud" yaml:"cloud"`
	Region     string `toml:"region" yaml:"region"`
}

// HTMLConfig tunes page fetching.
type HTMLConfig struct {
	Concurrency int              `toml:"concurrency" yaml:"concurrency" validate:"gte=0"`
	UserAgent   string           `toml:"user_agent" yaml:"user_agent"`
	Selectors   source.Selectors `toml:"selectors" yaml:"selectors"`
}

// DefaultConfig returns the stock batch job:
// Cohere embeddings into the "rag" Pinecone index, namespace "ns1".
func DefaultConfig() *Config {
	c := &Config{}
	c.Normalize()
	return c
}

// LoadConfig reads a job file. The format follows the extension: .toml,
// .yaml or .yml. Unset fields get their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	c := &Config{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, c)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedConfig, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}

	c.Normalize()
	return c, nil
}

// Normalize fills unset fields with defaults.
func (c *Config) Normalize() {
	if c.Namespace == "" {
		c.Namespace = ingestion.DefaultNamespace
	}
	if c.BatchSize == 0 {
		c.BatchSize = upsert.DefaultBatchSize
	}
	c.Compose = strings.ToLower(strings.TrimSpace(c.Compose))
	if c.Compose == "" {
		c.Compose = string(core.ComposeBasic)
	}
	c.TagPolicy = strings.ToLower(strings.TrimSpace(c.TagPolicy))
	if c.TagPolicy == "" {
		c.TagPolicy = string(core.TagPolicyKeep)
	}

	c.Embedding.Provider = strings.ToLower(strings.TrimSpace(c.Embedding.Provider))
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = string(ai.ProviderCohere)
	}

	c.Store.Kind = strings.ToLower(strings.TrimSpace(c.Store.Kind))
	if c.Store.Kind == "" {
		c.Store.Kind = StorePinecone
	}
	if c.Store.Path == "" {
		c.Store.Path = DefaultBadgerPath
	}
	if c.Store.IndexName == "" {
		c.Store.IndexName = DefaultIndexName
	}
}

// Validate normalizes the configuration and checks it, credentials
// included.
func (c *Config) Validate() error {
	if err := c.validateFields(); err != nil {
		return err
	}
	if err := c.validateStoreCredentials(); err != nil {
		return err
	}
	if err := c.AIConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// validateFields checks everything that does not depend on credentials.
func (c *Config) validateFields() error {
	c.Normalize()

	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	var errs []error
	for name, d := range map[string]string{
		"embedding.timeout":         c.Embedding.Timeout,
		"embedding.retry.delay":     c.Embedding.Retry.Delay,
		"embedding.retry.max_delay": c.Embedding.Retry.MaxDelay,
	} {
		if d == "" {
			continue
		}
		if _, err := time.ParseDuration(d); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	if _, err := c.RetryPolicy(); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func (c *Config) validateStoreCredentials() error {
	if c.Store.Kind == StorePinecone && c.Store.APIKey == "" {
		return fmt.Errorf("%w: store.api_key is required for pinecone", ErrInvalidConfig)
	}
	return nil
}

// AIConfig returns the provider configuration.
func (c *Config) AIConfig() *ai.Config {
	e := c.Embedding
	timeout, _ := time.ParseDuration(e.Timeout)
	return ai.NewConfig(
		ai.WithProvider(ai.ProviderName(e.Provider)),
		ai.WithHost(e.Host),
		ai.WithModel(e.Model),
		ai.WithAPIKey(e.APIKey),
		ai.WithInputType(e.InputType),
		ai.WithDimension(e.Dimension),
		ai.WithBatchSize(e.BatchSize),
		ai.WithTimeout(timeout),
	)
}

// RetryPolicy returns the rate-limit retry policy. Unset fields keep the
// values of embedding.RateLimitPolicy.
func (c *Config) RetryPolicy() (embedding.RetryPolicy, error) {
	r := c.Embedding.Retry
	p := embedding.RateLimitPolicy()
	if r.MaxAttempts > 0 {
		p.MaxAttempts = r.MaxAttempts
	}
	if r.Multiplier > 0 {
		p.Multiplier = r.Multiplier
	}
	if r.Delay != "" {
		d, err := time.ParseDuration(r.Delay)
		if err != nil {
			return p, err
		}
		p.Delay = d
	}
	if r.MaxDelay != "" {
		d, err := time.ParseDuration(r.MaxDelay)
		if err != nil {
			return p, err
		}
		p.MaxDelay = d
	}
	return p, p.Validate()
}

// PipelineOptions returns the ingestion options for the job.
func (c *Config) PipelineOptions() ([]ingestion.Option, error) {
	mode, err := core.ParseComposeMode(c.Compose)
	if err != nil {
		return nil, err
	}
	policy, err := core.ParseTagPolicy(c.TagPolicy)
	if err != nil {
		return nil, err
	}
	return []ingestion.Option{
		ingestion.WithNamespace(c.Namespace),
		ingestion.WithBatchSize(c.BatchSize),
		ingestion.WithComposeMode(mode),
		ingestion.WithTagPolicy(policy),
	}, nil
}

// SourceOptions returns the options for opening the job's sources.
func (c *Config) SourceOptions() []source.Option {
	return []source.Option{
		source.WithConcurrency(c.HTML.Concurrency),
		source.WithUserAgent(c.HTML.UserAgent),
		source.WithSelectors(c.HTML.Selectors),
	}
}
