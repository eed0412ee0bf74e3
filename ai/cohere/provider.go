package cohere

import (
	"log/slog"
	"net/http"

	"github.com/poiesic/profindex/ai"
)

// Provider implements ai.AIProvider for Cohere.
type Provider struct {
	embedder *Embedder
	logger   *slog.Logger
}

// NewProvider creates a Cohere provider. The config is validated and
// normalized before use.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	return NewProviderWithClient(config, nil)
}

// NewProviderWithClient is NewProvider with a caller-supplied HTTP client.
func NewProviderWithClient(config *ai.Config, client *http.Client) (ai.AIProvider, error) {
	embedder, err := newEmbedder(config, client)
	if err != nil {
		return nil, err
	}
	return &Provider{
		embedder: embedder,
		logger:   slog.Default().With("component", "cohere-provider"),
	}, nil
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Close releases idle connections.
func (p *Provider) Close() error {
	p.logger.Debug("closing Cohere provider")
	p.embedder.http.CloseIdleConnections()
	return nil
}
