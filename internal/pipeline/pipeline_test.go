package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/WiDayn/AutoTopicSum/internal/aggregator"
	"github.com/WiDayn/AutoTopicSum/internal/core"
	"github.com/WiDayn/AutoTopicSum/internal/profile"
	"github.com/WiDayn/AutoTopicSum/internal/similarity"
	"github.com/WiDayn/AutoTopicSum/internal/sources"
	"github.com/WiDayn/AutoTopicSum/internal/timeline"
)

func newTestPipeline(connectors []sources.Connector, opts ...Option) *Pipeline {
	agg := aggregator.New(similarity.NewEngine(nil), similarity.NewPreprocessor(nil))
	return New(agg, connectors, opts...)
}

func TestRunAggregatesAcrossSources(t *testing.T) {
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	shared := core.Article{
		Title: "shared story", URL: "https://example.com/shared",
		Source: "alpha", PublishedAt: base, Summary: "the shared story",
	}
	dup := shared
	dup.Source = "beta"

	connectors := []sources.Connector{
		&sources.MockConnector{SourceName: "alpha", Articles: []core.Article{shared}},
		&sources.MockConnector{SourceName: "beta", Articles: []core.Article{
			dup,
			{Title: "beta only", URL: "https://example.com/beta", Source: "beta", PublishedAt: base.Add(time.Hour)},
		}},
	}

	result, err := newTestPipeline(connectors).Run(context.Background(), "shared story")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Articles) != 2 {
		t.Fatalf("got %d articles after dedup, want 2", len(result.Articles))
	}
	if result.Event.ID == "" {
		t.Error("event has no ID")
	}
	if result.Event.Title != "shared story" {
		t.Errorf("event title = %q", result.Event.Title)
	}
	if len(result.Sources) != 2 {
		t.Errorf("got %d source results, want 2", len(result.Sources))
	}
}

func TestRunToleratesSourceFailure(t *testing.T) {
	connectors := []sources.Connector{
		&sources.MockConnector{SourceName: "down", Err: errors.New("connection refused")},
		&sources.MockConnector{SourceName: "up", Articles: []core.Article{
			{Title: "story", URL: "https://example.com/1", Source: "up", Summary: "ok"},
		}},
	}

	result, err := newTestPipeline(connectors).Run(context.Background(), "story")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Articles) != 1 {
		t.Errorf("got %d articles, want 1 from the healthy source", len(result.Articles))
	}
	if result.Sources["down"].Err == nil {
		t.Error("failed source should carry its error in the result")
	}
}

func TestRunRequiresConnectors(t *testing.T) {
	if _, err := newTestPipeline(nil).Run(context.Background(), "anything"); err == nil {
		t.Error("expected error with no connectors")
	}
}

func TestRunReportsProgress(t *testing.T) {
	var seen []core.Progress
	connectors := []sources.Connector{
		&sources.MockConnector{SourceName: "a"},
	}
	p := newTestPipeline(connectors, WithProgress(func(pr core.Progress) {
		seen = append(seen, pr)
	}))

	if _, err := p.Run(context.Background(), "q"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(seen) != runSteps {
		t.Fatalf("got %d progress updates, want %d", len(seen), runSteps)
	}
	for i, pr := range seen {
		if pr.Current != i+1 || pr.Total != runSteps {
			t.Errorf("progress[%d] = %d/%d, want %d/%d", i, pr.Current, pr.Total, i+1, runSteps)
		}
		if pr.Message == "" {
			t.Errorf("progress[%d] has no message", i)
		}
	}
}

type fixedProvider struct{}

func (fixedProvider) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	vectors := make([][]float64, len(texts))
	for i := range texts {
		vectors[i] = []float64{1, 0}
	}
	return vectors, nil
}

func (fixedProvider) Name() string { return "fixed" }

type stubProfiler struct{}

func (stubProfiler) Profile(ctx context.Context, source string) (core.MediaProfile, error) {
	return core.MediaProfile{Category: "新闻媒体"}, nil
}

func TestTimelineReportsProgress(t *testing.T) {
	var seen []core.Progress
	p := newTestPipeline(
		[]sources.Connector{&sources.MockConnector{SourceName: "a"}},
		WithTimeline(timeline.NewGenerator(fixedProvider{})),
		WithProgress(func(pr core.Progress) { seen = append(seen, pr) }),
	)

	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	articles := []core.Article{
		{Title: "t1", URL: "u1", Source: "s1", PublishedAt: base, Summary: "a"},
		{Title: "t2", URL: "u2", Source: "s2", PublishedAt: base, Summary: "b"},
	}
	nodes, err := p.Timeline(context.Background(), articles)
	if err != nil {
		t.Fatalf("Timeline: %v", err)
	}
	if len(nodes) != 1 {
		t.Fatalf("got %d nodes, want 1", len(nodes))
	}
	if len(seen) != 1 {
		t.Fatalf("got %d progress updates, want 1", len(seen))
	}
	if seen[0].Current != 1 || seen[0].Total != 1 || seen[0].Message == "" {
		t.Errorf("progress = %+v", seen[0])
	}
}

func TestProfilesReportsProgress(t *testing.T) {
	var seen []core.Progress
	p := newTestPipeline(
		[]sources.Connector{&sources.MockConnector{SourceName: "a"}},
		WithEnricher(profile.NewEnricher(stubProfiler{})),
		WithProgress(func(pr core.Progress) { seen = append(seen, pr) }),
	)

	articles := []core.Article{
		{Title: "t1", URL: "u1", Source: "alpha"},
		{Title: "t2", URL: "u2", Source: "beta"},
	}
	results, err := p.Profiles(context.Background(), articles)
	if err != nil {
		t.Fatalf("Profiles: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if len(seen) != 1 {
		t.Fatalf("got %d progress updates, want 1", len(seen))
	}
	if seen[0].Current != 1 || seen[0].Total != 1 || seen[0].Message == "" {
		t.Errorf("progress = %+v", seen[0])
	}
}

func TestTimelineNotConfigured(t *testing.T) {
	p := newTestPipeline([]sources.Connector{&sources.MockConnector{SourceName: "a"}})
	if _, err := p.Timeline(context.Background(), nil); err == nil {
		t.Error("expected error when timeline generator missing")
	}
}

func TestBuildEventMetadata(t *testing.T) {
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	articles := []core.Article{
		{Title: "t1", URL: "u1", Source: "s1", PublishedAt: base, Summary: "sum1", Tags: []string{"ai", "chips"}},
		{Title: "t2", URL: "u2", Source: "s2", PublishedAt: base.Add(-time.Hour), Summary: "sum2", Tags: []string{"ai", "policy"}},
		{Title: "t3", URL: "u3", Source: "s1", Summary: "sum3"},
		{Title: "t4", URL: "u4", Source: "s3", Summary: "sum4"},
	}

	event := buildEvent("query", articles)
	if event.SourceCount != 3 {
		t.Errorf("source count = %d, want 3 distinct", event.SourceCount)
	}
	if len(event.Sources) != 4 {
		t.Errorf("sources = %d, want 4", len(event.Sources))
	}
	if !event.Date.Equal(base) {
		t.Errorf("date = %v, want newest article time", event.Date)
	}
	wantTags := []string{"ai", "chips", "policy"}
	if fmt.Sprint(event.Tags) != fmt.Sprint(wantTags) {
		t.Errorf("tags = %v, want %v", event.Tags, wantTags)
	}
	if event.Summary != "sum1" {
		t.Errorf("summary = %q, want top article's", event.Summary)
	}
}

func TestBuildEventDateUsesNewestAnywhere(t *testing.T) {
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	// Ranking can push a low-relevance article behind the rest even when it
	// is the newest; the event date must still come from it.
	articles := []core.Article{
		{Title: "t1", URL: "u1", Source: "s1", PublishedAt: base},
		{Title: "t2", URL: "u2", Source: "s2", PublishedAt: base.Add(-time.Hour)},
		{Title: "t3", URL: "u3", Source: "s3", PublishedAt: base.Add(2 * time.Hour), Filter: true},
	}

	event := buildEvent("query", articles)
	if !event.Date.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("date = %v, want the newest article's time", event.Date)
	}
}

func TestBuildEventEmpty(t *testing.T) {
	event := buildEvent("query", nil)
	if event.ID == "" || event.Title != "query" {
		t.Errorf("empty event malformed: %+v", event)
	}
	if event.SourceCount != 0 || len(event.Sources) != 0 {
		t.Errorf("empty event has sources: %+v", event)
	}
}

func TestBuildContentTopSummaries(t *testing.T) {
	articles := []core.Article{
		{Title: "t1", URL: "u1", Source: "s1", Summary: "sum1"},
		{Title: "t2", URL: "u2", Source: "s2"}, // no summary, skipped
		{Title: "t3", URL: "u3", Source: "s3", Summary: "sum3"},
		{Title: "t4", URL: "u4", Source: "s4", Summary: "sum4"},
		{Title: "t5", URL: "u5", Source: "s5", Summary: "sum5"},
	}
	content := buildContent(articles)
	for _, want := range []string{"sum1", "sum3", "sum4"} {
		if !strings.Contains(content, want) {
			t.Errorf("content missing %q", want)
		}
	}
	if strings.Contains(content, "sum5") {
		t.Error("content should stop after three summaries")
	}
}
