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


package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/poiesic/profindex"
	"github.com/poiesic/profindex/ingestion"
	"github.com/poiesic/profindex/storage"
	"github.com/urfave/cli/v2"
)

// Exit codes of the ingest command; 0 means every batch was written.
const (
	exitFatal         = 1
	exitPartialFailed = 2
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitFatal)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "profindex",
		Usage: "Build a vector index of professors and student reviews",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Job file (.toml, .yaml or .yml); flags override it",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Embed professor and review records and upsert them into the index",
				Action: ingestCommand,
				Flags: concat(
					[]cli.Flag{
						&cli.StringSliceFlag{
							Name:    "source",
							Aliases: []string{"s"},
							Usage:   "CSV file, JSON file, HTML file or page URL (repeatable)",
						},
						&cli.StringFlag{
							Name:    "namespace",
							Aliases: []string{"n"},
							Usage:   "Namespace to write vectors to",
							Value:   ingestion.DefaultNamespace,
						},
						&cli.IntFlag{
							Name:  "batch-size",
							Usage: "Number of vectors per upsert call",
							Value: 100,
						},
						&cli.StringFlag{
							Name:  "compose",
							Usage: "Professor text composition (basic, detailed)",
							Value: "basic",
						},
						&cli.StringFlag{
							Name:  "tag-policy",
							Usage: "Tag handling (keep, unique)",
							Value: "keep",
						},
						&cli.IntFlag{
							Name:  "concurrency",
							Usage: "Number of HTML pages fetched at once",
							Value: 4,
						},
						&cli.BoolFlag{
							Name:  "dry-run",
							Usage: "Write to the local Badger store instead of Pinecone",
						},
						&cli.BoolFlag{
							Name:    "quiet",
							Aliases: []string{"q"},
							Usage:   "Do not print upsert progress",
						},
					},
					providerFlags(),
					storeFlags(),
				),
			},
			{
				Name:   "create-index",
				Usage:  "Create the index with the embedding dimension",
				Action: createIndexCommand,
				Flags: concat(
					[]cli.Flag{
						&cli.StringFlag{
							Name:  "metric",
							Usage: "Similarity metric (cosine, euclidean, dotproduct)",
							Value: "cosine",
						},
						&cli.StringFlag{
							Name:  "cloud",
							Usage: "Serverless cloud",
							Value: "aws",
						},
						&cli.StringFlag{
							Name:  "region",
							Usage: "Serverless region",
							Value: "us-east-1",
						},
					},
					providerFlags(),
					storeFlags(),
				),
			},
			{
				Name:   "stats",
				Usage:  "Print vector counts per namespace",
				Action: statsCommand,
				Flags:  concat(providerFlags(), storeFlags()),
			},
		},
	}
}

func providerFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "provider",
			Usage: "Embedding provider (cohere, openai, mock)",
			Value: "cohere",
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL (provider default if empty)",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name (provider default if empty)",
		},
		&cli.StringFlag{
			Name:  "embedding-api-key",
			Usage: "Embedding provider API key (overrides the provider's variable)",
		},
		&cli.StringFlag{
			Name:    "cohere-api-key",
			Usage:   "Cohere API key, used with --provider cohere",
			EnvVars: []string{"COHERE_API_KEY"},
		},
		&cli.StringFlag{
			Name:    "openai-api-key",
			Usage:   "OpenAI API key, used with --provider openai",
			EnvVars: []string{"OPENAI_API_KEY"},
		},
		&cli.IntFlag{
			Name:  "dimension",
			Usage: "Embedding dimension (provider default if 0)",
		},
		&cli.Float64Flag{
			Name:  "requests-per-second",
			Usage: "Pace embedding calls (0 disables pacing)",
		},
		&cli.IntFlag{
			Name:  "max-retries",
			Usage: "Maximum attempts for a rate-limited call (0 retries forever)",
		},
		&cli.DurationFlag{
			Name:  "retry-delay",
			Usage: "Wait after a rate-limited call",
		},
	}
}

func storeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "store",
			Usage: "Vector store (pinecone, badger)",
			Value: profindex.StorePinecone,
		},
		&cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "Path to BadgerDB database directory",
			Value:   profindex.DefaultBadgerPath,
		},
		&cli.StringFlag{
			Name:  "index",
			Usage: "Pinecone index name",
			Value: profindex.DefaultIndexName,
		},
		&cli.StringFlag{
			Name:  "index-host",
			Usage: "Pinecone index host (looked up if empty)",
		},
		&cli.StringFlag{
			Name:    "pinecone-api-key",
			Usage:   "Pinecone API key",
			EnvVars: []string{"PINECONE_API_KEY"},
		},
	}
}

func concat(groups ...[]cli.Flag) []cli.Flag {
	var out []cli.Flag
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// loadConfig reads the job file, if any, and applies the flags that were set
// explicitly or through the environment.
func loadConfig(c *cli.Context) (*profindex.Config, error) {
	cfg := profindex.DefaultConfig()
	if path := c.String("config"); path != "" {
		loaded, err := profindex.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	setString := func(name string, dst *string) {
		if c.IsSet(name) {
			*dst = c.String(name)
		}
	}
	setInt := func(name string, dst *int) {
		if c.IsSet(name) {
			*dst = c.Int(name)
		}
	}

	if c.IsSet("source") {
		cfg.Sources = c.StringSlice("source")
	}
	setString("namespace", &cfg.Namespace)
	setInt("batch-size", &cfg.BatchSize)
	setString("compose", &cfg.Compose)
	setString("tag-policy", &cfg.TagPolicy)
	setInt("concurrency", &cfg.HTML.Concurrency)

	setString("provider", &cfg.Embedding.Provider)
	setString("embedding-host", &cfg.Embedding.Host)
	setString("embedding-model", &cfg.Embedding.Model)
	setString("embedding-api-key", &cfg.Embedding.APIKey)
	if cfg.Embedding.APIKey == "" {
		switch strings.ToLower(cfg.Embedding.Provider) {
		case "cohere":
			cfg.Embedding.APIKey = c.String("cohere-api-key")
		case "openai":
			cfg.Embedding.APIKey = c.String("openai-api-key")
		}
	}
	setInt("dimension", &cfg.Embedding.Dimension)
	if c.IsSet("requests-per-second") {
		cfg.Embedding.RequestsPerSecond = c.Float64("requests-per-second")
	}
	setInt("max-retries", &cfg.Embedding.Retry.MaxAttempts)
	if c.IsSet("retry-delay") {
		cfg.Embedding.Retry.Delay = c.Duration("retry-delay").String()
	}

	setString("store", &cfg.Store.Kind)
	setString("db", &cfg.Store.Path)
	setString("index", &cfg.Store.IndexName)
	setString("index-host", &cfg.Store.IndexHost)
	setString("pinecone-api-key", &cfg.Store.APIKey)
	setString("metric", &cfg.Store.Metric)
	setString("cloud", &cfg.Store.Cloud)
	setString("region", &cfg.Store.Region)

	if c.Bool("dry-run") {
		cfg.Store.Kind = profindex.StoreBadger
	}
	cfg.Normalize()
	return cfg, nil
}

func openIndexer(c *cli.Context, opts ...profindex.IndexerOption) (*profindex.Indexer, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	return profindex.NewIndexer(cfg, append(opts, profindex.WithLogger(slog.Default()))...)
}

func ingestCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts []profindex.IndexerOption
	if !c.Bool("quiet") {
		opts = append(opts, profindex.WithProgressWriter(c.App.ErrWriter))
	}
	ix, err := openIndexer(c, opts...)
	if err != nil {
		return cli.Exit(fmt.Sprintf("ingest: %v", err), exitFatal)
	}
	defer ix.Close()

	cfg := ix.Config()
	fmt.Fprintf(c.App.ErrWriter, "Provider: %s\n", cfg.Embedding.Provider)
	fmt.Fprintf(c.App.ErrWriter, "Store: %s\n", describeStore(cfg))
	fmt.Fprintf(c.App.ErrWriter, "Namespace: %s\n", cfg.Namespace)
	fmt.Fprintln(c.App.ErrWriter)

	report, err := ix.Ingest(ctx)
	if report != nil {
		printReport(c.App.Writer, report)
	}
	return ingestExit(report, err)
}

// ingestExit maps the outcome of a run to the process exit code.
func ingestExit(report *ingestion.Report, err error) error {
	switch {
	case err != nil:
		return cli.Exit(fmt.Sprintf("ingest: %v", err), exitFatal)
	case !report.OK():
		return cli.Exit(fmt.Sprintf("ingest: %v", report.Upsert.Err()), exitPartialFailed)
	}
	return nil
}

func createIndexCommand(c *cli.Context) error {
	ix, err := openIndexer(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("create-index: %v", err), exitFatal)
	}
	defer ix.Close()

	desc, err := ix.CreateIndex(c.Context)
	if errors.Is(err, storage.ErrIndexExists) {
		fmt.Fprintf(c.App.ErrWriter, "index %s already exists\n", ix.Config().Store.IndexName)
		desc, err = ix.DescribeIndex(c.Context)
	}
	if err != nil {
		return cli.Exit(fmt.Sprintf("create-index: %v", err), exitFatal)
	}

	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(c.App.Writer, "%s %s\n", bold("Index:"), desc.Name)
	fmt.Fprintf(c.App.Writer, "  dimension: %d\n", desc.Dimension)
	fmt.Fprintf(c.App.Writer, "  metric:    %s\n", desc.Metric)
	if desc.Host != "" {
		fmt.Fprintf(c.App.Writer, "  host:      %s\n", desc.Host)
	}
	fmt.Fprintf(c.App.Writer, "  ready:     %t\n", desc.Ready)
	return nil
}

func statsCommand(c *cli.Context) error {
	ix, err := openIndexer(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("stats: %v", err), exitFatal)
	}
	defer ix.Close()

	stats, err := ix.Stats(c.Context)
	if err != nil {
		return cli.Exit(fmt.Sprintf("stats: %v", err), exitFatal)
	}
	printStats(c.App.Writer, stats)
	return nil
}

func describeStore(cfg *profindex.Config) string {
	if cfg.Store.Kind == profindex.StoreBadger {
		return fmt.Sprintf("badger (%s)", cfg.Store.Path)
	}
	return fmt.Sprintf("pinecone (index %s)", cfg.Store.IndexName)
}

func printReport(w io.Writer, r *ingestion.Report) {
	bold := color.New(color.Bold).SprintFunc()
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed, color.Bold).SprintFunc()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %s (namespace %s) in %s\n", bold("Run"), r.RunID, r.Namespace, r.Duration().Round(time.Millisecond))
	fmt.Fprintf(w, "  rows read:       %d\n", r.Rows)
	fmt.Fprintf(w, "  professor units: %d\n", r.Professors)
	fmt.Fprintf(w, "  review units:    %d\n", r.Reviews)
	fmt.Fprintf(w, "  embedded:        %d\n", r.Embedded)
	if r.Collisions > 0 {
		fmt.Fprintf(w, "  id collisions:   %s\n", yellow(r.Collisions))
	}

	upserted, batches := 0, 0
	if r.Upsert != nil {
		upserted, batches = r.Upsert.Accepted, r.Upsert.Batches
	}
	fmt.Fprintf(w, "  upserted:        %s in %d batches\n", green(upserted), batches)

	if len(r.Skipped) > 0 {
		fmt.Fprintf(w, "  skipped rows:    %s\n", yellow(len(r.Skipped)))
		for _, s := range r.Skipped {
			fmt.Fprintf(w, "    %s:%d %v\n", s.Source, s.Line, s.Reason)
		}
	}

	if len(r.Conflicts) > 0 {
		fmt.Fprintf(w, "  conflicting professor rows: %s\n", yellow(len(r.Conflicts)))
		for _, s := range r.Conflicts {
			fmt.Fprintf(w, "    %s:%d %v\n", s.Source, s.Line, s.Reason)
		}
	}

	if r.Upsert != nil && len(r.Upsert.Failed) > 0 {
		fmt.Fprintf(w, "  failed batches:  %s\n", red(len(r.Upsert.Failed)))
		for _, f := range r.Upsert.Failed {
			fmt.Fprintf(w, "    batch %d (%d ids): %v\n", f.Index, len(f.IDs), f.Err)
			for _, id := range f.IDs {
				fmt.Fprintf(w, "      %s\n", id)
			}
		}
	}
}

func printStats(w io.Writer, stats *storage.IndexStats) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(w, "%s %d\n", bold("Dimension:"), stats.Dimension)
	fmt.Fprintf(w, "%s %d\n", bold("Total vectors:"), stats.TotalVectorCount)

	names := make([]string, 0, len(stats.Namespaces))
	for ns := range stats.Namespaces {
		names = append(names, ns)
	}
	sort.Strings(names)
	for _, ns := range names {
		fmt.Fprintf(w, "  %s: %d\n", ns, stats.Namespaces[ns])
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
