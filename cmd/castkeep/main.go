// Copyright 2025 Castkeep Authors
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

	"github.com/castkeep/castkeep"
	"github.com/castkeep/castkeep/ai"
	"github.com/castkeep/castkeep/core"
	"github.com/castkeep/castkeep/ingestion"
	"github.com/castkeep/castkeep/reindex"
	"github.com/castkeep/castkeep/search"
)

func main() {
	app := &cli.App{
		Name:  "castkeep",
		Usage: "Archive and search long-form spoken-word media",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Ingest one or more items by their source ids",
				ArgsUsage: "ITEM_ID [ITEM_ID...]",
				Action:    ingestCommand,
				Flags: append(aiFlags(),
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:  "hint",
						Usage: "Vocabulary hint for the transcriber (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:  "meta",
						Usage: "Metadata to attach to the item, as key=value (repeatable)",
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Re-process even if the item already has content",
					},
					&cli.IntFlag{
						Name:  "chunk-target",
						Usage: "Target segment length in characters",
						Value: 800,
					},
					&cli.IntFlag{
						Name:  "chunk-overlap",
						Usage: "Segment overlap in characters",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "concurrency",
						Usage: "Number of items to process in parallel",
						Value: 2,
					},
				),
			},
			{
				Name:      "search",
				Usage:     "Search ingested items",
				ArgsUsage: "[QUERY...]",
				Action:    searchCommand,
				Flags: append(aiFlags(),
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:  "speaker",
						Usage: "Restrict to items featuring this speaker (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:  "topic",
						Usage: "Restrict to items covering this topic (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:  "tag",
						Usage: "Restrict to items carrying this tag (repeatable)",
					},
					&cli.StringFlag{
						Name:  "summary-contains",
						Usage: "Restrict to items whose summary contains this phrase",
					},
					&cli.TimestampFlag{
						Name:   "after",
						Usage:  "Restrict to items created after this time",
						Layout: time.RFC3339,
					},
					&cli.TimestampFlag{
						Name:   "before",
						Usage:  "Restrict to items created before this time",
						Layout: time.RFC3339,
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Maximum number of results",
						Value: search.DefaultTopK,
					},
					&cli.BoolFlag{
						Name:    "verbose",
						Aliases: []string{"v"},
						Usage:   "Print per-stage search details to stderr",
					},
				),
			},
			{
				Name:   "reindex",
				Usage:  "Re-embed all segments with a new embedding model",
				Action: reindexCommand,
				Flags: append(aiFlags(),
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of segments to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N segments",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// aiFlags returns the flags shared by every command that talks to the AI
// services.
func aiFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "ai-host",
			Usage: "OpenAI-compatible host for embeddings and extraction",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "transcription-host",
			Usage: "OpenAI-compatible host for audio transcription",
			Value: "http://localhost:8000/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
		&cli.StringFlag{
			Name:  "extractor-model",
			Usage: "Insight extraction model name",
			Value: "qwen2.5:3b",
		},
		&cli.StringFlag{
			Name:  "transcription-model",
			Usage: "Transcription model name",
			Value: "whisper-1",
		},
	}
}

func aiConfigFromFlags(c *cli.Context) (*ai.Config, error) {
	cfg := ai.NewConfig(
		ai.WithHost(c.String("ai-host")),
		ai.WithTranscriptionHost(c.String("transcription-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithExtractorModel(c.String("extractor-model")),
		ai.WithTranscriptionModel(c.String("transcription-model")),
	)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}
	return cfg, nil
}

func openDatabase(c *cli.Context) (*castkeep.Database, error) {
	cfg, err := aiConfigFromFlags(c)
	if err != nil {
		return nil, err
	}
	db, err := castkeep.NewDatabase(c.String("db"), castkeep.WithAIConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func ingestCommand(c *cli.Context) error {
	ids := c.Args().Slice()
	if len(ids) == 0 {
		return fmt.Errorf("at least one item id is required")
	}

	metadata, err := parseMetadata(c.StringSlice("meta"))
	if err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline(
		ingestion.WithChunking(c.Int("chunk-target"), c.Int("chunk-overlap")),
	)
	if err != nil {
		return err
	}

	runner, err := ingestion.NewRunner(pipeline, c.Int("concurrency"))
	if err != nil {
		return err
	}
	defer runner.Release()

	opts := &ingestion.IngestOptions{
		KeywordHints: c.StringSlice("hint"),
		Metadata:     metadata,
		Force:        c.Bool("force"),
	}

	reports, err := runner.IngestAll(context.Background(), ids, opts)
	if err != nil {
		return err
	}

	failed := 0
	for _, report := range reports {
		if report.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "FAILED %s: %v\n", report.ItemID, report.Err)
			continue
		}
		status := "ingested"
		if report.Result.Reused {
			status = "up to date"
		}
		fmt.Printf("%s: %s (%d segments)\n",
			report.ItemID, status, report.Result.SegmentsCreated)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d items failed", failed, len(reports))
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	searcher, err := db.NewSearcher()
	if err != nil {
		return err
	}

	req := &search.Request{
		Query: strings.Join(c.Args().Slice(), " "),
		TopK:  c.Int("top-k"),
		Filter: search.Filter{
			Speakers:        c.StringSlice("speaker"),
			Topics:          c.StringSlice("topic"),
			Tags:            c.StringSlice("tag"),
			SummaryContains: c.String("summary-contains"),
		},
	}
	if t := c.Timestamp("after"); t != nil {
		req.Filter.CreatedAfter = *t
	}
	if t := c.Timestamp("before"); t != nil {
		req.Filter.CreatedBefore = *t
	}

	var monitor search.SearchMonitor
	if c.Bool("verbose") {
		monitor = &stderrMonitor{}
	}

	resp, err := searcher.SearchWithMonitor(context.Background(), req, monitor)
	if err != nil {
		return err
	}

	if len(resp.Hits) == 0 && len(resp.Items) == 0 {
		fmt.Println("no results")
		return nil
	}

	for _, item := range resp.Items {
		fmt.Printf("%s  %s\n", item.Id, item.Insights.Summary)
	}
	for i, hit := range resp.Hits {
		fmt.Printf("%2d. [%.3f] %s #%d/%d\n", i+1, hit.Score,
			hit.Item.Id, hit.Segment.Index+1, hit.Segment.TotalSegments)
		fmt.Printf("    %s\n", excerpt(hit.Segment.Content, 160))
	}
	return nil
}

func reindexCommand(c *cli.Context) error {
	config := &reindex.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	reindexer, err := db.NewReindexer(config, os.Stderr)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("ai-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	if err := reindexer.Run(context.Background()); err != nil {
		return fmt.Errorf("reindexing failed: %w", err)
	}
	return nil
}

// stderrMonitor prints search stage progress for the --verbose flag.
type stderrMonitor struct{}

func (m *stderrMonitor) Start(req *search.Request) {
	fmt.Fprintf(os.Stderr, "search: query=%q filtered=%v\n", req.Query, !req.Filter.IsZero())
}

func (m *stderrMonitor) AfterFilter(itemIDs []string) {
	if itemIDs == nil {
		fmt.Fprintln(os.Stderr, "search: no filter, vector search unrestricted")
		return
	}
	fmt.Fprintf(os.Stderr, "search: filter matched %d items: %s\n",
		len(itemIDs), strings.Join(itemIDs, ", "))
}

func (m *stderrMonitor) AfterEmbedding(vector []float32) {
	fmt.Fprintf(os.Stderr, "search: query embedded, dim=%d\n", len(vector))
}

func (m *stderrMonitor) AfterVectorSearch(matches []*core.VectorMatch) {
	fmt.Fprintf(os.Stderr, "search: vector search returned %d matches\n", len(matches))
}

func (m *stderrMonitor) Finish(resp *search.Response) {
	fmt.Fprintf(os.Stderr, "search: %d hits, %d items\n", len(resp.Hits), len(resp.Items))
}

// parseMetadata converts key=value pairs into a map.
func parseMetadata(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	metadata := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid metadata %q: expected key=value", pair)
		}
		metadata[key] = value
	}
	return metadata, nil
}

// excerpt trims text to at most n runes for display.
func excerpt(text string, n int) string {
	text = strings.ReplaceAll(text, "\n", " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "…"
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
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
