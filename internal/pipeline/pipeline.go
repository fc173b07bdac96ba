// Package pipeline orchestrates the end-to-end topic aggregation workflow:
// fan out the query to every source connector, merge and rank the results,
// and assemble the event record, reporting progress along the way.
package pipeline

import (
	"context"
	"fmt"

	"github.com/WiDayn/AutoTopicSum/internal/aggregator"
	"github.com/WiDayn/AutoTopicSum/internal/core"
	"github.com/WiDayn/AutoTopicSum/internal/logger"
	"github.com/WiDayn/AutoTopicSum/internal/profile"
	"github.com/WiDayn/AutoTopicSum/internal/sources"
	"github.com/WiDayn/AutoTopicSum/internal/timeline"
)

// ProgressFunc receives progress updates at stage boundaries.
type ProgressFunc func(core.Progress)

// Result contains everything one pipeline run produced.
type Result struct {
	Event    core.Event
	Articles []core.Article
	Sources  map[string]aggregator.SourceResult
}

// Pipeline wires the aggregation components together. Timeline generation
// and profile enrichment are optional stages.
type Pipeline struct {
	aggregator *aggregator.Aggregator
	connectors []sources.Connector
	timeline   *timeline.Generator
	enricher   *profile.Enricher
	progress   ProgressFunc
	searchOpts sources.Options
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithTimeline enables timeline generation.
func WithTimeline(g *timeline.Generator) Option {
	return func(p *Pipeline) { p.timeline = g }
}

// WithEnricher enables media profile enrichment.
func WithEnricher(e *profile.Enricher) Option {
	return func(p *Pipeline) { p.enricher = e }
}

// WithProgress registers a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(p *Pipeline) { p.progress = fn }
}

// WithSearchOptions sets the options passed to every connector.
func WithSearchOptions(opts sources.Options) Option {
	return func(p *Pipeline) { p.searchOpts = opts }
}

// New creates a pipeline over the given aggregator and connectors.
func New(agg *aggregator.Aggregator, connectors []sources.Connector, opts ...Option) *Pipeline {
	p := &Pipeline{aggregator: agg, connectors: connectors}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

const runSteps = 3

// Run executes a full aggregation for the query: search, merge and rank,
// assemble the event. Individual source failures are tolerated; Run errors
// only when there is nothing to search.
func (p *Pipeline) Run(ctx context.Context, query string) (Result, error) {
	if len(p.connectors) == 0 {
		return Result{}, fmt.Errorf("pipeline: no source connectors configured")
	}

	p.report(1, runSteps, "Searching sources")
	results := p.aggregator.SearchAll(ctx, query, p.connectors, p.searchOpts)

	p.report(2, runSteps, "Merging and ranking articles")
	articles := p.aggregator.AggregateResults(ctx, query, results)
	logger.Info("Aggregation complete", "query", query, "articles", len(articles))

	p.report(3, runSteps, "Assembling event")
	event := buildEvent(query, articles)

	return Result{Event: event, Articles: articles, Sources: results}, nil
}

// Timeline builds the timeline for a set of articles, usually a prior Run's
// output.
func (p *Pipeline) Timeline(ctx context.Context, articles []core.Article) ([]core.TimelineNode, error) {
	if p.timeline == nil {
		return nil, fmt.Errorf("pipeline: timeline generation not configured")
	}
	nodes, err := p.timeline.Generate(ctx, articles)
	if err != nil {
		return nil, err
	}
	p.report(1, 1, "Timeline generated")
	return nodes, nil
}

// Profiles resolves media profiles for every distinct source among the
// articles.
func (p *Pipeline) Profiles(ctx context.Context, articles []core.Article) ([]profile.Result, error) {
	if p.enricher == nil {
		return nil, fmt.Errorf("pipeline: profile enrichment not configured")
	}
	names := make([]string, 0, len(articles))
	for _, a := range articles {
		names = append(names, a.Source)
	}
	results := p.enricher.Profiles(ctx, names)
	p.report(1, 1, "Media profiles resolved")
	return results, nil
}

func (p *Pipeline) report(current, total int, message string) {
	if p.progress == nil {
		return
	}
	p.progress(core.Progress{Current: current, Total: total, Message: message})
}
