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


package pinecone

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/poiesic/profindex/storage"
)

// Store implements storage.VectorStore, storage.VectorFetcher and
// storage.IndexManager against Pinecone.
type Store struct {
	client *client
	index  string

	mu   sync.Mutex
	host string

	logger *slog.Logger
}

var (
	_ storage.VectorStore   = (*Store)(nil)
	_ storage.VectorFetcher = (*Store)(nil)
	_ storage.IndexManager  = (*Store)(nil)
)

// New creates a Pinecone store. The index host is resolved on first use
// unless cfg.IndexHost is set.
func New(cfg Config) (*Store, error) {
	c, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Store{
		client: c,
		index:  cfg.IndexName,
		host:   cfg.IndexHost,
		logger: slog.Default().With("component", "pinecone-store", "index", cfg.IndexName),
	}, nil
}

// NewStore creates a Pinecone store and resolves the index host up front,
// so a missing index fails before any work is done.
// Returns storage.VectorStore interface to enforce abstraction.
func NewStore(ctx context.Context, cfg Config) (storage.VectorStore, error) {
	s, err := New(cfg)
	if err != nil {
		return nil, err
	}
	if _, err := s.resolveHost(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) resolveHost(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.host != "" {
		return s.host, nil
	}
	if strings.TrimSpace(s.index) == "" {
		return "", fmt.Errorf("%w: index name required", storage.ErrInvalidIndexSpec)
	}
	desc, err := s.client.describeIndex(ctx, s.index)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(desc.Host) == "" {
		return "", &OperationError{Operation: "describe_index", Cause: fmt.Errorf("%w: empty host", storage.ErrRequestFailed)}
	}
	s.host = desc.Host
	s.logger.Debug("resolved index host", "host", s.host)
	return s.host, nil
}

// Upsert writes vectors in one request.
func (s *Store) Upsert(ctx context.Context, namespace string, vectors []storage.Vector) (int, error) {
	host, err := s.resolveHost(ctx)
	if err != nil {
		return 0, err
	}

	req := upsertRequest{Namespace: namespace, Vectors: make([]vector, len(vectors))}
	for i, v := range vectors {
		req.Vectors[i] = vector{ID: v.ID, Values: v.Values, Metadata: v.Metadata}
	}

	resp, err := s.client.upsertVectors(ctx, host, req)
	if err != nil {
		return 0, err
	}
	return int(resp.UpsertedCount), nil
}

// Fetch reads vectors back by id. Results follow the order of ids.
func (s *Store) Fetch(ctx context.Context, namespace string, ids ...string) ([]storage.Vector, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	host, err := s.resolveHost(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.fetchVectors(ctx, host, namespace, ids)
	if err != nil {
		return nil, err
	}

	out := make([]storage.Vector, 0, len(resp.Vectors))
	for _, id := range ids {
		v, ok := resp.Vectors[id]
		if !ok {
			continue
		}
		out = append(out, storage.Vector{ID: v.ID, Values: v.Values, Metadata: decodeMetadata(v.Metadata)})
	}
	return out, nil
}

// DescribeIndexStats returns vector counts per namespace.
func (s *Store) DescribeIndexStats(ctx context.Context) (*storage.IndexStats, error) {
	host, err := s.resolveHost(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.describeIndexStats(ctx, host)
	if err != nil {
		return nil, err
	}

	stats := &storage.IndexStats{
		Dimension:        resp.Dimension,
		TotalVectorCount: resp.TotalVectorCount,
		Namespaces:       make(map[string]int64, len(resp.Namespaces)),
	}
	for ns, summary := range resp.Namespaces {
		stats.Namespaces[ns] = summary.VectorCount
	}
	return stats, nil
}

// CreateIndex creates a serverless index.
func (s *Store) CreateIndex(ctx context.Context, spec storage.IndexSpec) (*storage.IndexDescription, error) {
	if strings.TrimSpace(spec.Name) == "" || spec.Dimension <= 0 {
		return nil, fmt.Errorf("%w: name and positive dimension required", storage.ErrInvalidIndexSpec)
	}
	if spec.Metric == "" {
		spec.Metric = "cosine"
	}
	if spec.Cloud == "" {
		spec.Cloud = "aws"
	}
	if spec.Region == "" {
		spec.Region = "us-east-1"
	}

	model, err := s.client.createIndex(ctx, createIndexRequest{
		Name:      spec.Name,
		Dimension: spec.Dimension,
		Metric:    spec.Metric,
		Spec:      indexSpec{Serverless: serverlessSpec{Cloud: spec.Cloud, Region: spec.Region}},
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("created index", "name", spec.Name, "dimension", spec.Dimension, "metric", spec.Metric)
	return describe(model), nil
}

// DescribeIndex returns the control-plane description of the named index.
func (s *Store) DescribeIndex(ctx context.Context, name string) (*storage.IndexDescription, error) {
	model, err := s.client.describeIndex(ctx, name)
	if err != nil {
		return nil, err
	}
	return describe(model), nil
}

// Close releases idle connections.
func (s *Store) Close() error {
	s.client.http.CloseIdleConnections()
	return nil
}

func describe(m *indexModel) *storage.IndexDescription {
	return &storage.IndexDescription{
		Name:      m.Name,
		Host:      m.Host,
		Dimension: m.Dimension,
		Metric:    m.Metric,
		Ready:     m.Status.Ready,
	}
}

// decodeMetadata turns JSON string lists back into []string.
func decodeMetadata(md map[string]any) map[string]any {
	for k, v := range md {
		list, ok := v.([]any)
		if !ok {
			continue
		}
		strs := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				strs = nil
				break
			}
			strs = append(strs, s)
		}
		if strs != nil {
			md[k] = strs
		}
	}
	return md
}
