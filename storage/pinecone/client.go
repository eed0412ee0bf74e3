package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the Pinecone control plane.
	DefaultBaseURL = "https://api.pinecone.io"
	// DefaultAPIVersion is sent in the X-Pinecone-Api-Version header.
	DefaultAPIVersion = "2025-10"
)

// Config configures the Pinecone client.
type Config struct {
	APIKey     string
	APIVersion string
	BaseURL    string
	// IndexName is the index vectors are written to.
	IndexName string
	// IndexHost skips the DescribeIndex lookup when set.
	IndexHost string
	Timeout   time.Duration
	// HTTPClient overrides the default client.
	HTTPClient *http.Client
}

type client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func newClient(cfg Config) (*client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing Pinecone API key")
	}
	if strings.TrimSpace(cfg.APIVersion) == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &client{
		cfg:    cfg,
		http:   hc,
		logger: slog.Default().With("component", "pinecone-client"),
	}, nil
}

// -------------------- Control plane --------------------

type indexModel struct {
	Name      string `json:"name"`
	Host      string `json:"host"`
	Dimension int    `json:"dimension"`
	Metric    string `json:"metric"`
	Status    struct {
		Ready bool   `json:"ready"`
		State string `json:"state"`
	} `json:"status"`
}

type createIndexRequest struct {
	Name      string    `json:"name"`
	Dimension int       `json:"dimension"`
	Metric    string    `json:"metric"`
	Spec      indexSpec `json:"spec"`
}

type indexSpec struct {
	Serverless serverlessSpec `json:"serverless"`
}

type serverlessSpec struct {
	Cloud  string `json:"cloud"`
	Region string `json:"region"`
}

func (c *client) describeIndex(ctx context.Context, name string) (*indexModel, error) {
	u := strings.TrimRight(c.cfg.BaseURL, "/") + "/indexes/" + url.PathEscape(name)
	return doJSON[indexModel](c, ctx, "describe_index", http.MethodGet, u, nil)
}

func (c *client) createIndex(ctx context.Context, req createIndexRequest) (*indexModel, error) {
	u := strings.TrimRight(c.cfg.BaseURL, "/") + "/indexes"
	return doJSON[indexModel](c, ctx, "create_index", http.MethodPost, u, req)
}

// -------------------- Data plane --------------------

type vector struct {
	ID       string         `json:"id"`
	Values   []float32      `json:"values"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type upsertRequest struct {
	Vectors   []vector `json:"vectors"`
	Namespace string   `json:"namespace,omitempty"`
}

type upsertResponse struct {
	UpsertedCount int64 `json:"upsertedCount"`
}

type namespaceSummary struct {
	VectorCount int64 `json:"vectorCount"`
}

type indexStatsResponse struct {
	Namespaces       map[string]namespaceSummary `json:"namespaces"`
	Dimension        int                         `json:"dimension"`
	IndexFullness    float64                     `json:"indexFullness"`
	TotalVectorCount int64                       `json:"totalVectorCount"`
}

type fetchResponse struct {
	Vectors   map[string]vector `json:"vectors"`
	Namespace string            `json:"namespace"`
}

func (c *client) upsertVectors(ctx context.Context, host string, req upsertRequest) (*upsertResponse, error) {
	if len(req.Vectors) == 0 {
		return &upsertResponse{}, nil
	}
	return doJSON[upsertResponse](c, ctx, "upsert", http.MethodPost, dataURL(host, "/vectors/upsert"), req)
}

func (c *client) describeIndexStats(ctx context.Context, host string) (*indexStatsResponse, error) {
	return doJSON[indexStatsResponse](c, ctx, "describe_index_stats", http.MethodPost, dataURL(host, "/describe_index_stats"), struct{}{})
}

func (c *client) fetchVectors(ctx context.Context, host, namespace string, ids []string) (*fetchResponse, error) {
	q := url.Values{}
	for _, id := range ids {
		q.Add("ids", id)
	}
	if namespace != "" {
		q.Set("namespace", namespace)
	}
	return doJSON[fetchResponse](c, ctx, "fetch", http.MethodGet, dataURL(host, "/vectors/fetch")+"?"+q.Encode(), nil)
}

// -------------------- helpers --------------------

// dataURL builds a data-plane URL. Index hosts come back from the control
// plane without a scheme.
func dataURL(host, path string) string {
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	return host + path
}

func doJSON[T any](c *client, ctx context.Context, op, method, url string, body any) (*T, error) {
	var reader io.Reader
	if body != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, &OperationError{Operation: op, Cause: err}
		}
		reader = &buf
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, &OperationError{Operation: op, Cause: err}
	}
	req.Header.Set("Api-Key", c.cfg.APIKey)
	req.Header.Set("X-Pinecone-Api-Version", c.cfg.APIVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, transportErr(op, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Debug("pinecone request failed", "op", op, "status", resp.StatusCode)
		return nil, statusErr(op, resp.StatusCode, string(raw))
	}

	var out T
	if len(raw) == 0 {
		return &out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &OperationError{Operation: op, Cause: fmt.Errorf("decode: %w; raw=%s", err, string(raw))}
	}
	return &out, nil
}
