package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/WiDayn/AutoTopicSum/internal/aggregator"
	"github.com/WiDayn/AutoTopicSum/internal/config"
	"github.com/WiDayn/AutoTopicSum/internal/embedding"
	"github.com/WiDayn/AutoTopicSum/internal/keywords"
	"github.com/WiDayn/AutoTopicSum/internal/profile"
	"github.com/WiDayn/AutoTopicSum/internal/similarity"
	"github.com/WiDayn/AutoTopicSum/internal/sources"
	"github.com/WiDayn/AutoTopicSum/internal/store"
	"github.com/WiDayn/AutoTopicSum/internal/timeline"
)

// buildProvider creates the embedding provider, or returns nil when no API
// key is configured. Callers degrade to heuristic-only similarity.
func buildProvider(ctx context.Context) embedding.Provider {
	cfg := config.Get()
	if cfg.Embedding.APIKey == "" {
		fmt.Fprintln(os.Stderr, "Warning: no GEMINI_API_KEY set, semantic similarity disabled")
		return nil
	}
	provider, err := embedding.NewGeminiProvider(ctx, cfg.Embedding.APIKey, cfg.Embedding.Model, cfg.Embedding.Dimensions)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: embedding provider unavailable: %v\n", err)
		return nil
	}
	return provider
}

func buildEngine(ctx context.Context) *similarity.Engine {
	return similarity.NewEngine(buildProvider(ctx))
}

func buildStore() (*store.Store, error) {
	return store.NewStore(config.Get().Cache.Directory)
}

func buildEncoder(ctx context.Context, engine *similarity.Engine, s *store.Store) *keywords.Encoder {
	opts := []keywords.Option{
		keywords.WithThreshold(config.Get().Similarity.Threshold),
	}
	if s != nil {
		opts = append(opts, keywords.WithPersistence(s))
	}
	encoder := keywords.NewEncoder(engine, opts...)
	if s != nil {
		// Rules or the threshold may have changed since the mapping was
		// persisted; re-encode the stored originals so stale entries are
		// rewritten before the encoder is used.
		encoder.Reconcile(ctx)
	}
	return encoder
}

func buildAggregator(engine *similarity.Engine) *aggregator.Aggregator {
	cfg := config.Get()
	return aggregator.New(engine, similarity.NewPreprocessor(nil)).
		WithRelevanceThreshold(cfg.Aggregator.RelevanceThreshold).
		WithMaxConcurrency(cfg.Aggregator.MaxConcurrency)
}

func buildConnectors() []sources.Connector {
	return []sources.Connector{
		sources.NewGoogleNews(),
		sources.NewDuckDuckGo(),
	}
}

func searchOptions() sources.Options {
	cfg := config.Get()
	return sources.Options{
		Language: cfg.Sources.Language,
		Region:   cfg.Sources.Region,
		Limit:    cfg.Sources.Limit,
	}
}

func buildTimeline(provider embedding.Provider) *timeline.Generator {
	cfg := config.Get()
	return timeline.NewGenerator(provider,
		timeline.WithDistanceThreshold(cfg.Timeline.DistanceThreshold),
		timeline.WithMembersThreshold(cfg.Timeline.MembersThreshold),
		timeline.WithTimeWeight(cfg.Timeline.TimeWeight),
	)
}

// buildEnricher wires the profile generator, cache, and keyword encoder.
// Returns nil when profile generation is impossible (no API key).
func buildEnricher(ctx context.Context, engine *similarity.Engine, s *store.Store) *profile.Enricher {
	cfg := config.Get()
	if cfg.Embedding.APIKey == "" {
		return nil
	}
	profiler, err := profile.NewGeminiProfiler(ctx, cfg.Embedding.APIKey, cfg.Profile.Model)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: profile generator unavailable: %v\n", err)
		return nil
	}
	opts := []profile.EnricherOption{
		profile.WithEncoder(buildEncoder(ctx, engine, s)),
		profile.WithMaxConcurrency(int64(cfg.Profile.MaxConcurrency)),
	}
	if s != nil {
		opts = append(opts, profile.WithCache(s))
	}
	return profile.NewEnricher(profiler, opts...)
}
