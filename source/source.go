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


package source

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/poiesic/profindex/core"
)

// Source produces raw rows in source order. A yielded *RowError concerns a
// single row and iteration continues; any other error ends the sequence.
type Source interface {
	// Name identifies the source in logs and reports.
	Name() string

	// Rows returns the rows of the source. The sequence can be ranged over
	// more than once; each range re-reads the underlying data.
	Rows(ctx context.Context) iter.Seq2[core.RawRow, error]
}

type openConfig struct {
	httpClient  *http.Client
	selectors   Selectors
	concurrency int
	userAgent   string
	logger      *slog.Logger
}

// Option configures the sources built by Open.
type Option func(*openConfig)

// WithHTTPClient sets the client used to fetch HTML pages.
func WithHTTPClient(client *http.Client) Option {
	return func(c *openConfig) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithSelectors overrides the HTML extraction selectors.
func WithSelectors(s Selectors) Option {
	return func(c *openConfig) {
		c.selectors = s
	}
}

// WithConcurrency sets how many HTML pages are fetched at once.
func WithConcurrency(n int) Option {
	return func(c *openConfig) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithUserAgent sets the User-Agent header sent with page requests.
func WithUserAgent(ua string) Option {
	return func(c *openConfig) {
		c.userAgent = ua
	}
}

// WithLogger sets the logger handed to the sources.
func WithLogger(logger *slog.Logger) Option {
	return func(c *openConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Kind names the source implementation a location maps to.
type Kind string

const (
	KindCSV  Kind = "csv"
	KindJSON Kind = "json"
	KindHTML Kind = "html"
)

// KindOf classifies a location: http(s) URLs and .html/.htm files are HTML
// pages, .csv files are CSV and .json files are pre-scraped JSON.
func KindOf(location string) (Kind, error) {
	if u, err := url.Parse(location); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return KindHTML, nil
	}
	switch strings.ToLower(filepath.Ext(location)) {
	case ".csv":
		return KindCSV, nil
	case ".json":
		return KindJSON, nil
	case ".html", ".htm":
		return KindHTML, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedSource, location)
}

// Open builds the sources for a list of locations. CSV and JSON files get one
// source each; all HTML locations share a single source so their pages are
// fetched through one pool. Sources are returned in the order their first
// location appears.
func Open(locations []string, opts ...Option) ([]Source, error) {
	if len(locations) == 0 {
		return nil, ErrNoLocations
	}

	cfg := openConfig{
		httpClient:  http.DefaultClient,
		selectors:   DefaultSelectors(),
		concurrency: DefaultConcurrency,
		userAgent:   DefaultUserAgent,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	var (
		sources []Source
		html    *HTML
	)
	for _, loc := range locations {
		kind, err := KindOf(loc)
		if err != nil {
			return nil, err
		}
		switch kind {
		case KindCSV:
			sources = append(sources, NewCSVFile(loc))
		case KindJSON:
			sources = append(sources, NewJSONFile(loc))
		case KindHTML:
			if html == nil {
				html = NewHTML(nil,
					WithPageClient(cfg.httpClient),
					WithPageSelectors(cfg.selectors),
					WithPoolSize(cfg.concurrency),
					WithPageUserAgent(cfg.userAgent),
					WithPageLogger(cfg.logger),
				)
				sources = append(sources, html)
			}
			html.locations = append(html.locations, loc)
		}
	}
	return sources, nil
}
