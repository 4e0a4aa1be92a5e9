// Copyright 2025 Tessara Labs
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
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	corpusd "github.com/tessara/corpusd"
	"github.com/tessara/corpusd/ai"
	"github.com/tessara/corpusd/cache"
	"github.com/tessara/corpusd/core"
	"github.com/tessara/corpusd/ingest"
)

func main() {
	app := &cli.App{
		Name:  "corpusd",
		Usage: "Document indexing pipeline with a content-addressed embedding cache",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:     "db",
				Aliases:  []string{"d"},
				Usage:    "Path to BadgerDB metadata directory",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "cache-root",
				Usage:    "Directory holding cached embedding artifacts",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "project-root",
				Usage:    "Directory holding per-project derived indexes",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "embedding-host",
				Usage: "Embedding service host URL",
				Value: "http://localhost:11434/v1",
			},
			&cli.StringFlag{
				Name:  "embedding-model",
				Usage: "Embedding model name",
				Value: "embeddinggemma",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Ingest a file or note into a project",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "project",
						Aliases:  []string{"p"},
						Usage:    "Project identifier",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to the file to ingest",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "kind",
						Usage: "Source kind (file, note)",
						Value: "file",
					},
					&cli.BoolFlag{
						Name:  "include",
						Usage: "Opt a note into the index (ignored for files)",
						Value: true,
					},
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Chunk size in characters",
						Value: 1024,
					},
					&cli.IntFlag{
						Name:  "chunk-overlap",
						Usage: "Chunk overlap in characters",
						Value: 128,
					},
				},
			},
			{
				Name:   "crawl",
				Usage:  "Crawl a site into a project",
				Action: crawlCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "project",
						Aliases:  []string{"p"},
						Usage:    "Project identifier",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "seed",
						Aliases:  []string{"s"},
						Usage:    "Seed URL to start crawling from",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "max-depth",
						Usage: "Maximum link depth from the seed",
						Value: 2,
					},
					&cli.IntFlag{
						Name:  "max-pages",
						Usage: "Maximum number of pages to process",
						Value: 50,
					},
					&cli.IntFlag{
						Name:  "min-text-length",
						Usage: "Skip pages with less extracted text than this",
						Value: 200,
					},
					&cli.StringSliceFlag{
						Name:  "include",
						Usage: "URL substring a page must match to be crawled (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:  "exclude",
						Usage: "URL substring that excludes a page (repeatable)",
					},
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Chunk size in characters",
						Value: 1024,
					},
					&cli.IntFlag{
						Name:  "chunk-overlap",
						Usage: "Chunk overlap in characters",
						Value: 128,
					},
				},
			},
			{
				Name:   "status",
				Usage:  "Report index staleness for a project",
				Action: statusCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "project",
						Aliases:  []string{"p"},
						Usage:    "Project identifier",
						Required: true,
					},
				},
			},
			{
				Name:   "reindex",
				Usage:  "Rebuild a project's index",
				Action: reindexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "project",
						Aliases:  []string{"p"},
						Usage:    "Project identifier",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Rebuild even when the index is fresh",
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Roll up cache statistics for a date",
				Action: statsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "date",
						Usage: "Date to roll up (YYYY-MM-DD, default today)",
					},
				},
			},
			{
				Name:   "prune",
				Usage:  "Remove aged and excess cache entries",
				Action: pruneCommand,
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "max-age",
						Usage: "Remove entries not used within this duration",
					},
					&cli.IntFlag{
						Name:  "max-entries",
						Usage: "Keep at most this many entries (least recently used evicted)",
					},
				},
			},
			{
				Name:   "cleanup",
				Usage:  "Remove orphaned artifacts with no cache entry",
				Action: cleanupCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openDatabase(c *cli.Context) (*corpusd.Database, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	db, err := corpusd.NewDatabase(
		c.String("db"),
		c.String("cache-root"),
		c.String("project-root"),
		corpusd.WithAIConfig(aiConfig),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	var kind core.SourceKind
	switch c.String("kind") {
	case "file":
		kind = core.SourceKindFile
	case "note":
		kind = core.SourceKindNote
	default:
		return fmt.Errorf("invalid kind %q: must be file or note", c.String("kind"))
	}

	content, err := os.ReadFile(c.String("file"))
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	result, err := pipeline.IngestDocument(ctx, c.String("project"), content,
		c.Int("chunk-size"), c.Int("chunk-overlap"), ingest.SourceMeta{
			Kind:    kind,
			Name:    c.String("file"),
			Include: c.Bool("include"),
		})
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	if result.Hit {
		fmt.Fprintf(os.Stderr, "Reused cached embedding (usage count %d)\n", result.Entry.UsageCount)
	} else {
		fmt.Fprintf(os.Stderr, "Computed new embedding (%d bytes)\n", result.Entry.ByteSize)
	}
	fmt.Fprintf(os.Stderr, "Item: %s\n", result.Item.ID)
	return nil
}

func crawlCommand(c *cli.Context) error {
	ctx := context.Background()

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	manager, err := db.NewCrawlManager()
	if err != nil {
		return fmt.Errorf("failed to create crawl manager: %w", err)
	}
	defer manager.Release()

	spec := core.CrawlSpec{
		SeedURL:         c.String("seed"),
		MaxDepth:        c.Int("max-depth"),
		MaxPages:        c.Int("max-pages"),
		MinTextLength:   c.Int("min-text-length"),
		IncludePatterns: c.StringSlice("include"),
		ExcludePatterns: c.StringSlice("exclude"),
	}
	sink := pipeline.CrawlSink(c.String("project"), c.Int("chunk-size"), c.Int("chunk-overlap"))

	jobID, err := manager.Start(ctx, spec, sink)
	if err != nil {
		return fmt.Errorf("failed to start crawl: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Crawl started: %s\n", jobID)

	// Poll until the job reaches a terminal state.
	for {
		time.Sleep(500 * time.Millisecond)
		snap, err := manager.Status(jobID)
		if err != nil {
			return fmt.Errorf("failed to query crawl status: %w", err)
		}
		fmt.Fprintf(os.Stderr, "\rProcessed %d pages, %d failed, %d discovered",
			snap.Processed, snap.Failed, len(snap.DiscoveredURLs))
		if snap.Status.Terminal() {
			fmt.Fprintf(os.Stderr, "\nCrawl %s after %s\n",
				snap.Status.String(), snap.FinishedAt.Sub(snap.StartedAt).Round(time.Millisecond))
			if snap.Status == core.CrawlStatusFailed {
				return fmt.Errorf("crawl failed")
			}
			return nil
		}
	}
}

func statusCommand(c *cli.Context) error {
	ctx := context.Background()

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	projectID := c.String("project")
	stale, reasons, snap, err := db.Tracker().IsStale(ctx, projectID)
	if err != nil {
		return fmt.Errorf("staleness check failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Project: %s\n", projectID)
	fmt.Fprintf(os.Stderr, "Tracked items: %d\n", snap.Count)
	if stale {
		fmt.Fprintln(os.Stderr, "Index: STALE")
		for _, reason := range reasons {
			fmt.Fprintf(os.Stderr, "  - %s\n", reason)
		}
	} else {
		fmt.Fprintln(os.Stderr, "Index: fresh")
	}
	return nil
}

func reindexCommand(c *cli.Context) error {
	ctx := context.Background()

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	projectID := c.String("project")
	if c.Bool("force") {
		if err := db.Rebuilder().Rebuild(ctx, projectID); err != nil {
			return fmt.Errorf("rebuild failed: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Index rebuilt: %s\n", db.Rebuilder().IndexDir(projectID))
		return nil
	}

	rebuilt, err := db.Rebuilder().RebuildIfStale(ctx, projectID)
	if err != nil {
		return fmt.Errorf("rebuild failed: %w", err)
	}
	if rebuilt {
		fmt.Fprintf(os.Stderr, "Index rebuilt: %s\n", db.Rebuilder().IndexDir(projectID))
	} else {
		fmt.Fprintln(os.Stderr, "Index is fresh, nothing to do")
	}
	return nil
}

func statsCommand(c *cli.Context) error {
	ctx := context.Background()

	asOf := time.Now()
	if dateStr := c.String("date"); dateStr != "" {
		parsed, err := time.Parse(time.DateOnly, dateStr)
		if err != nil {
			return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", dateStr)
		}
		asOf = parsed
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	aggregator, err := db.NewAggregator()
	if err != nil {
		return fmt.Errorf("failed to create aggregator: %w", err)
	}

	result, err := aggregator.Rollup(ctx, asOf)
	if err != nil {
		return fmt.Errorf("rollup failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Date: %s\n", result.Date)
	fmt.Fprintf(os.Stderr, "Entries: %d (%d bytes)\n", result.TotalEntries, result.TotalSizeBytes)
	fmt.Fprintf(os.Stderr, "Usage: %d, reuses: %d, hit rate: %.2f\n",
		result.TotalUsage, result.ReuseCount, result.HitRate())
	fmt.Fprintf(os.Stderr, "Estimated savings: %.4f\n", result.EstimatedSavings)
	for kind, count := range result.ByKind {
		fmt.Fprintf(os.Stderr, "  %s: %d\n", kind, count)
	}
	return nil
}

func pruneCommand(c *cli.Context) error {
	ctx := context.Background()

	policy := cache.PrunePolicy{
		MaxAge:     c.Duration("max-age"),
		MaxEntries: c.Int("max-entries"),
	}
	if policy.MaxAge <= 0 && policy.MaxEntries <= 0 {
		return fmt.Errorf("at least one of --max-age or --max-entries is required")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	result, err := db.CacheStore().Prune(ctx, policy)
	if err != nil {
		return fmt.Errorf("prune failed: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Removed %d entries (%d bytes), %d remain\n",
		result.Removed, result.BytesFreed, result.TotalRemains)
	return nil
}

func cleanupCommand(c *cli.Context) error {
	ctx := context.Background()

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	removed, err := db.CacheStore().SweepOrphans(ctx)
	if err != nil {
		return fmt.Errorf("orphan sweep failed: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Removed %d orphaned artifacts\n", removed)
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
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

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
