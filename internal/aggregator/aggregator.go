// Package aggregator fans a query out to registered source connectors,
// merges and deduplicates their results, and ranks articles by recency and
// query relevance. Low-relevance articles are demoted, never dropped.
package aggregator

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/WiDayn/AutoTopicSum/internal/core"
	"github.com/WiDayn/AutoTopicSum/internal/logger"
	"github.com/WiDayn/AutoTopicSum/internal/similarity"
	"github.com/WiDayn/AutoTopicSum/internal/sources"
)

// DefaultRelevanceThreshold separates kept from demoted articles.
const DefaultRelevanceThreshold = 0.3

// DefaultMaxConcurrency bounds the source fan-out.
const DefaultMaxConcurrency = 3

// SourceResult is the outcome of one connector's search. Exactly one of
// Articles and Err is meaningful; a failed source contributes no articles
// but never fails the overall call.
type SourceResult struct {
	Source   string
	Articles []core.Article
	Err      error
}

// Aggregator merges multi-source search results.
type Aggregator struct {
	engine             *similarity.Engine
	preprocessor       *similarity.Preprocessor
	relevanceThreshold float64
	maxConcurrency     int
}

// New creates an aggregator. engine must be non-nil; preprocessor may be nil
// to skip text normalization before relevance scoring.
func New(engine *similarity.Engine, preprocessor *similarity.Preprocessor) *Aggregator {
	return &Aggregator{
		engine:             engine,
		preprocessor:       preprocessor,
		relevanceThreshold: DefaultRelevanceThreshold,
		maxConcurrency:     DefaultMaxConcurrency,
	}
}

// WithRelevanceThreshold overrides the demotion threshold.
func (a *Aggregator) WithRelevanceThreshold(threshold float64) *Aggregator {
	a.relevanceThreshold = threshold
	return a
}

// WithMaxConcurrency overrides the fan-out bound.
func (a *Aggregator) WithMaxConcurrency(n int) *Aggregator {
	if n > 0 {
		a.maxConcurrency = n
	}
	return a
}

// SearchAll invokes every connector concurrently, bounded by the configured
// concurrency. Each connector failure is isolated: it is logged and recorded
// as an empty result for that source. There are no retries and no per-call
// timeout at this layer; connectors manage their own I/O deadlines.
func (a *Aggregator) SearchAll(ctx context.Context, query string, connectors []sources.Connector, opts sources.Options) map[string]SourceResult {
	results := make(map[string]SourceResult, len(connectors))
	sem := semaphore.NewWeighted(int64(a.maxConcurrency))
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, connector := range connectors {
		if err := sem.Acquire(ctx, 1); err != nil {
			mu.Lock()
			results[connector.Name()] = SourceResult{Source: connector.Name(), Err: err}
			mu.Unlock()
			continue
		}

		wg.Add(1)
		go func(c sources.Connector) {
			defer wg.Done()
			defer sem.Release(1)

			articles, err := c.Search(ctx, query, opts)
			if err != nil {
				logger.Error("Source search failed", err, "source", c.Name(), "query", query)
				articles = nil
			} else {
				logger.Info("Source search done", "source", c.Name(), "query", query, "articles", len(articles))
			}

			mu.Lock()
			results[c.Name()] = SourceResult{Source: c.Name(), Articles: articles, Err: err}
			mu.Unlock()
		}(connector)
	}

	wg.Wait()
	return results
}

// AggregateResults merges per-source results into one deduplicated,
// relevance-ranked article list. Deduplication is by URL with the first
// occurrence winning; merge order follows map iteration and is therefore not
// deterministic when two sources return the same URL with different fields.
// Articles scoring below the relevance threshold against the query title are
// marked Filter=true and moved behind the relevant ones, preserving relative
// order within each group. Nothing is discarded.
func (a *Aggregator) AggregateResults(ctx context.Context, query string, results map[string]SourceResult) []core.Article {
	var merged []core.Article
	seen := make(map[string]struct{})

	for _, result := range results {
		for _, article := range result.Articles {
			if _, dup := seen[article.URL]; dup {
				continue
			}
			seen[article.URL] = struct{}{}
			merged = append(merged, article)
		}
	}

	// Newest first; articles without a timestamp sort as the oldest value.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].PublishedAt.After(merged[j].PublishedAt)
	})

	if len(merged) == 0 {
		return merged
	}

	cleanQuery := query
	titles := make([]string, len(merged))
	for i, article := range merged {
		titles[i] = article.Title
	}
	if a.preprocessor != nil {
		cleanQuery = a.preprocessor.Clean(ctx, query)
		for i, title := range titles {
			titles[i] = a.preprocessor.Clean(ctx, title)
		}
	}

	scores := a.engine.BatchScore(ctx, cleanQuery, titles)

	kept := make([]core.Article, 0, len(merged))
	demoted := make([]core.Article, 0)
	for i, article := range merged {
		article.Relevance = scores[i]
		if scores[i] >= a.relevanceThreshold {
			article.Filter = false
			kept = append(kept, article)
		} else {
			article.Filter = true
			demoted = append(demoted, article)
		}
	}

	logger.Debug("Aggregated results", "query", query,
		"total", len(merged), "relevant", len(kept), "demoted", len(demoted))
	return append(kept, demoted...)
}
