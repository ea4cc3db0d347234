package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/castkeep/castkeep"
	"github.com/castkeep/castkeep/ai/mock"
	"github.com/castkeep/castkeep/core"
	"github.com/castkeep/castkeep/ingestion"
)

// seedEpisode is one canned episode. The transcript is served by a mock
// transcriber so the seeder runs without any AI services or network access.
type seedEpisode struct {
	id         string
	transcript string
	insights   core.Insights
	metadata   map[string]string
}

var episodes = []seedEpisode{
	{
		id: "ep-garbage-collection",
		transcript: "Welcome back to the show. Today we are digging into garbage " +
			"collection, and specifically how modern runtimes balance pause times " +
			"against throughput. Our guest spent six years working on a concurrent " +
			"mark-and-sweep collector, and she starts by explaining why generational " +
			"hypotheses hold for some workloads and fall apart for others. We talk " +
			"about write barriers, tri-color invariants, and the practical cost of " +
			"tuning heap targets in production. Toward the end she shares war " +
			"stories about a leak that only appeared during leap seconds, and why " +
			"observability into allocation profiles matters more than any single " +
			"collector setting.",
		insights: core.Insights{
			Summary:   "A runtime engineer explains concurrent garbage collection trade-offs, from write barriers to heap tuning in production.",
			KeyTopics: []string{"garbage collection", "runtime internals", "performance tuning"},
			Speakers:  []string{"Ada Reyes"},
			Tags:      []string{"programming", "systems"},
		},
		metadata: map[string]string{"source": "seed", "channel": "systems-talk"},
	},
	{
		id: "ep-fermentation",
		transcript: "This week the kitchen table turns into a chemistry lab. Our " +
			"guest runs a small fermentation studio and walks us through the " +
			"basics of lacto-fermentation: salt ratios, anaerobic environments, " +
			"and why cabbage is the forgiving beginner's vegetable. We taste three " +
			"batches of kimchi at different ages and talk about how temperature " +
			"shapes sourness. The second half covers sourdough starters, the myth " +
			"of hundred-year-old cultures, and a simple schedule for keeping a " +
			"starter alive in a busy household.",
		insights: core.Insights{
			Summary:   "A fermentation teacher covers lacto-fermentation fundamentals, kimchi aging, and low-effort sourdough starter care.",
			KeyTopics: []string{"fermentation", "kimchi", "sourdough"},
			Speakers:  []string{"Jun Park"},
			Tags:      []string{"cooking", "food science"},
		},
		metadata: map[string]string{"source": "seed", "channel": "kitchen-hours"},
	},
	{
		id: "ep-deep-sea",
		transcript: "Most of the planet's habitable volume is deep ocean, and " +
			"almost none of it has been seen by human eyes. Our guest pilots " +
			"remotely operated vehicles for a research fleet and describes what " +
			"it is like to discover a species on a Tuesday morning. We cover " +
			"hydrothermal vents, the chemistry of life without sunlight, and the " +
			"engineering headaches of keeping electronics alive at six thousand " +
			"meters. She closes with an argument for why exploration funding " +
			"should treat the ocean floor the way earlier generations treated " +
			"the Moon.",
		insights: core.Insights{
			Summary:   "An ROV pilot describes deep-sea exploration, hydrothermal vent ecosystems, and the case for ocean-floor funding.",
			KeyTopics: []string{"deep sea", "marine biology", "exploration"},
			Speakers:  []string{"Mara Okafor"},
			Tags:      []string{"science", "ocean"},
		},
		metadata: map[string]string{"source": "seed", "channel": "field-notes"},
	},
	{
		id: "ep-typography",
		transcript: "Typography is invisible until it fails. Our guest has " +
			"designed typefaces for road signage and e-readers, and we spend the " +
			"hour on legibility: x-heights, counters, and why letters that look " +
			"identical in print can blur together on a dashboard at night. He " +
			"explains hinting, variable fonts, and the slow death of the pixel " +
			"grid. We finish with a debate about whether anyone should ever set " +
			"body text in a geometric sans.",
		insights: core.Insights{
			Summary:   "A type designer on legibility in signage and screens, variable fonts, and choosing typefaces for body text.",
			KeyTopics: []string{"typography", "design", "legibility"},
			Speakers:  []string{"Theo Lindqvist"},
			Tags:      []string{"design"},
		},
		metadata: map[string]string{"source": "seed", "channel": "makers-desk"},
	},
}

// seedFetcher satisfies media.Fetcher by writing a placeholder audio file per
// item, so the pipeline's acquire and cleanup steps run against real paths.
type seedFetcher struct {
	dir string
}

func (f *seedFetcher) Fetch(ctx context.Context, itemID string) (string, error) {
	path := filepath.Join(f.dir, itemID+".m4a")
	if err := os.WriteFile(path, []byte("seed audio"), 0o644); err != nil {
		return "", fmt.Errorf("failed to write seed audio for %s: %w", itemID, err)
	}
	return path, nil
}

var dbPath = flag.String("db", "./castkeep_db", "database directory")

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// seedTranscriber builds a mock transcriber that replays the canned
// transcript for each episode id.
func seedTranscriber() *mock.MockTranscriber {
	byAudio := make(map[string]string, len(episodes))
	for _, ep := range episodes {
		byAudio[ep.id] = ep.transcript
	}

	transcriber := mock.NewMockTranscriber()
	transcriber.TranscribeFunc = func(ctx context.Context, audioPath string, vocabularyHints []string) (string, error) {
		id := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
		transcript, ok := byAudio[id]
		if !ok {
			return "", fmt.Errorf("no seed transcript for %s", id)
		}
		return transcript, nil
	}
	return transcriber
}

func main() {
	audioDir, err := os.MkdirTemp("", "castkeep-seed-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(audioDir)

	insightsByTranscript := make(map[string]core.Insights, len(episodes))
	for _, ep := range episodes {
		insightsByTranscript[ep.transcript] = ep.insights
	}
	extractor := mock.NewMockInsightExtractor()
	extractor.ExtractFunc = func(ctx context.Context, transcript string) (*core.Insights, error) {
		insights, ok := insightsByTranscript[transcript]
		if !ok {
			return nil, fmt.Errorf("no seed insights for transcript")
		}
		return &insights, nil
	}

	provider := mock.NewMockProviderWithServices(
		mock.NewMockEmbedder(), seedTranscriber(), extractor)

	db, err := castkeep.NewDatabase(*dbPath,
		castkeep.WithAIProvider(provider),
		castkeep.WithFetcher(&seedFetcher{dir: audioDir}),
	)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline(ingestion.WithChunking(240, 40))
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	for _, ep := range episodes {
		result, err := pipeline.Ingest(ctx, ep.id, &ingestion.IngestOptions{
			Metadata: ep.metadata,
		})
		if err != nil {
			panic(err)
		}
		slog.Info("seeded episode",
			"item", ep.id,
			"segments", len(result.Segments),
			"reused", result.Reused)
	}
}
