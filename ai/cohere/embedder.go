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


package cohere

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/poiesic/profindex/ai"
)

type embedRequest struct {
	Texts     []string `json:"texts"`
	Model     string   `json:"model"`
	InputType string   `json:"input_type,omitempty"`
	Truncate  string   `json:"truncate,omitempty"`
}

type embedResponse struct {
	ID         string      `json:"id"`
	Embeddings [][]float32 `json:"embeddings"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// Embedder implements ai.Embedder against the Cohere embed endpoint.
type Embedder struct {
	endpoint  string
	apiKey    string
	model     string
	inputType string
	dim       int
	http      *http.Client
	logger    *slog.Logger
}

func newEmbedder(config *ai.Config, client *http.Client) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if client == nil {
		client = &http.Client{Timeout: config.Timeout}
	}
	return &Embedder{
		endpoint:  config.Host + "/v1/embed",
		apiKey:    config.APIKey,
		model:     config.Model,
		inputType: config.InputType,
		dim:       config.Dimension,
		http:      client,
		logger:    slog.Default().With("component", "cohere-embedder"),
	}, nil
}

// NewEmbedder creates a Cohere embedder using the provided configuration.
// Returns ai.Embedder interface to enforce abstraction.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(config, nil)
}

// EmbedTexts embeds texts in a single request. Cohere accepts at most 96
// texts per call; chunking is the caller's job.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	e.logger.Debug("generating embeddings for texts", "count", len(texts))

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(embedRequest{
		Texts:     texts,
		Model:     e.model,
		InputType: e.inputType,
		Truncate:  "END",
	}); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+e.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := e.http.Do(req)
	if err != nil {
		return nil, &ai.ProviderError{Provider: ai.ProviderCohere, Message: err.Error(), Err: ai.ErrProvider}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := string(raw)
		var er errorResponse
		if json.Unmarshal(raw, &er) == nil && er.Message != "" {
			msg = er.Message
		}
		e.logger.Warn("embed request failed", "status", resp.StatusCode, "message", msg)
		return nil, ai.NewStatusError(ai.ProviderCohere, resp.StatusCode, msg)
	}

	var out embedResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("cohere embed decode: %w", err)
	}
	if len(out.Embeddings) != len(texts) {
		return nil, &ai.ProviderError{
			Provider: ai.ProviderCohere,
			Message:  fmt.Sprintf("expected %d embeddings, got %d", len(texts), len(out.Embeddings)),
			Err:      ai.ErrProvider,
		}
	}
	return out.Embeddings, nil
}

// Dimension returns the configured vector length.
func (e *Embedder) Dimension() int {
	return e.dim
}
