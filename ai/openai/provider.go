package openai

import (
	"log/slog"

	"github.com/poiesic/profindex/ai"
)

// Provider implements ai.AIProvider using OpenAI-compatible services.
type Provider struct {
	config   *ai.Config
	embedder *Embedder
	logger   *slog.Logger
}

// NewProvider builds the langchaingo embedder for config. The model and
// dimension are logged once so a mismatched index is easy to spot.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("component", "openai-provider")
	logger.Debug("embedder ready", "host", config.Host, "model", config.Model, "dimension", embedder.Dimension())

	return &Provider{
		config:   config,
		embedder: embedder,
		logger:   logger,
	}, nil
}

func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Close is a no-op; langchaingo holds no connections of its own.
func (p *Provider) Close() error {
	p.logger.Debug("closing provider", "model", p.config.Model)
	return nil
}
