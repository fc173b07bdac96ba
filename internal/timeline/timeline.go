// Package timeline groups a story's articles into key moments by clustering
// them jointly over semantic and temporal distance, then picks one
// representative article per cluster as the timeline node.
package timeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/WiDayn/AutoTopicSum/internal/core"
	"github.com/WiDayn/AutoTopicSum/internal/embedding"
	"github.com/WiDayn/AutoTopicSum/internal/logger"
)

const (
	// DefaultDistanceThreshold is the DBSCAN neighborhood radius over the
	// combined semantic plus time feature space.
	DefaultDistanceThreshold = 0.6
	// DefaultMembersThreshold is the minimum cluster size that becomes a
	// timeline node.
	DefaultMembersThreshold = 2
	// DefaultTimeWeight scales the time feature against the semantic
	// dimensions.
	DefaultTimeWeight = 0.7

	// minPoints is the DBSCAN core point requirement.
	minPoints = 2
	// summaryRunes caps how much of an article summary feeds the embedding.
	summaryRunes = 200
)

// ErrNoProvider is returned when timeline generation is attempted without an
// embedding provider. Unlike relevance scoring there is no heuristic
// fallback: the clustering space is the embedding space.
var ErrNoProvider = errors.New("timeline: embedding provider required")

// Generator builds timelines from article sets.
type Generator struct {
	provider         embedding.Provider
	eps              float64
	membersThreshold int
	timeWeight       float64
}

// Option configures a Generator.
type Option func(*Generator)

// WithDistanceThreshold overrides the clustering radius.
func WithDistanceThreshold(eps float64) Option {
	return func(g *Generator) { g.eps = eps }
}

// WithMembersThreshold overrides the minimum node size.
func WithMembersThreshold(n int) Option {
	return func(g *Generator) { g.membersThreshold = n }
}

// WithTimeWeight overrides the time feature weight.
func WithTimeWeight(w float64) Option {
	return func(g *Generator) { g.timeWeight = w }
}

// NewGenerator creates a timeline generator backed by the given embedding
// provider.
func NewGenerator(provider embedding.Provider, opts ...Option) *Generator {
	g := &Generator{
		provider:         provider,
		eps:              DefaultDistanceThreshold,
		membersThreshold: DefaultMembersThreshold,
		timeWeight:       DefaultTimeWeight,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate clusters the articles into timeline nodes, newest first. Articles
// without a publication time are excluded: the time feature is half the
// clustering signal and cannot be synthesized. Too few articles to form any
// cluster yields an empty timeline, not an error.
func (g *Generator) Generate(ctx context.Context, articles []core.Article) ([]core.TimelineNode, error) {
	if g.provider == nil {
		return nil, ErrNoProvider
	}

	usable := make([]core.Article, 0, len(articles))
	for _, a := range articles {
		if a.Valid() && !a.PublishedAt.IsZero() {
			usable = append(usable, a)
		}
	}
	if dropped := len(articles) - len(usable); dropped > 0 {
		logger.Debug("Excluded articles from timeline", "count", dropped)
	}
	if len(usable) < g.membersThreshold {
		return nil, nil
	}

	texts := make([]string, len(usable))
	for i, a := range usable {
		texts[i] = embeddingText(a)
	}
	vectors, err := g.provider.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("timeline: embedding articles: %w", err)
	}
	if len(vectors) != len(usable) {
		return nil, fmt.Errorf("timeline: got %d embeddings for %d articles", len(vectors), len(usable))
	}

	features := g.buildFeatures(usable, vectors)
	labels := dbscan(features, g.eps, minPoints)

	clusters := make(map[int][]int)
	for i, label := range labels {
		if label == noise {
			continue
		}
		clusters[label] = append(clusters[label], i)
	}

	var nodes []core.TimelineNode
	for _, members := range clusters {
		if len(members) < g.membersThreshold {
			continue
		}
		nodes = append(nodes, g.buildNode(usable, features, members))
	}

	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].Timestamp.After(nodes[j].Timestamp)
	})
	return nodes, nil
}

// buildFeatures appends the weighted, robust-scaled hours-since-start value
// to each article's semantic vector.
func (g *Generator) buildFeatures(articles []core.Article, vectors [][]float64) [][]float64 {
	earliest := articles[0].PublishedAt
	for _, a := range articles[1:] {
		if a.PublishedAt.Before(earliest) {
			earliest = a.PublishedAt
		}
	}

	hours := make([]float64, len(articles))
	for i, a := range articles {
		hours[i] = a.PublishedAt.Sub(earliest).Hours()
	}
	scaled := robustScale(hours)

	features := make([][]float64, len(articles))
	for i, vec := range vectors {
		row := make([]float64, len(vec)+1)
		copy(row, vec)
		row[len(vec)] = scaled[i] * g.timeWeight
		features[i] = row
	}
	return features
}

func (g *Generator) buildNode(articles []core.Article, features [][]float64, members []int) core.TimelineNode {
	centroid := make([]float64, len(features[members[0]]))
	for _, idx := range members {
		for d, v := range features[idx] {
			centroid[d] += v
		}
	}
	for d := range centroid {
		centroid[d] /= float64(len(members))
	}

	repIdx, best := members[0], euclidean(features[members[0]], centroid)
	for _, idx := range members[1:] {
		if d := euclidean(features[idx], centroid); d < best {
			repIdx, best = idx, d
		}
	}
	rep := articles[repIdx]

	sorted := append([]int{}, members...)
	sort.Slice(sorted, func(i, j int) bool {
		return articles[sorted[i]].PublishedAt.Before(articles[sorted[j]].PublishedAt)
	})

	refs := make([]core.SourceArticle, len(sorted))
	for i, idx := range sorted {
		a := articles[idx]
		refs[i] = core.SourceArticle{URL: a.URL, Source: a.Source, Title: a.Title}
	}

	return core.TimelineNode{
		Timestamp:      articles[sorted[0]].PublishedAt,
		KeyEvent:       rep.Title,
		Summary:        rep.Summary,
		SourceArticles: refs,
	}
}

// embeddingText is the article text fed to the encoder: title plus the
// leading part of the summary.
func embeddingText(a core.Article) string {
	summary := []rune(a.Summary)
	if len(summary) > summaryRunes {
		summary = summary[:summaryRunes]
	}
	if len(summary) == 0 {
		return a.Title
	}
	return a.Title + " " + strings.TrimSpace(string(summary))
}
