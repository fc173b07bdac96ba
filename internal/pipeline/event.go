package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/WiDayn/AutoTopicSum/internal/core"
)

const (
	maxTagArticles   = 5
	maxTags          = 10
	contentSummaries = 3
)

// buildEvent assembles the event record from the ranked article set. The
// article order is the aggregator's relevance ranking, so "first" means
// "most relevant".
func buildEvent(query string, articles []core.Article) core.Event {
	now := time.Now()

	event := core.Event{
		ID:        uuid.NewString(),
		Title:     query,
		Date:      now,
		CreatedAt: now,
	}

	if len(articles) == 0 {
		return event
	}

	distinct := make(map[string]struct{})
	refs := make([]core.SourceArticle, len(articles))
	for i, a := range articles {
		refs[i] = core.SourceArticle{URL: a.URL, Source: a.Source, Title: a.Title}
		distinct[a.Source] = struct{}{}
	}
	event.Sources = refs
	event.SourceCount = len(distinct)

	if latest := latestPublished(articles); !latest.IsZero() {
		event.Date = latest
	}
	event.Summary = articles[0].Summary
	event.Tags = collectTags(articles)
	event.Content = buildContent(articles)
	return event
}

// latestPublished returns the newest publication time across all articles.
// Ranking demotion can push the newest article behind more relevant ones, so
// the whole set is scanned rather than just the head.
func latestPublished(articles []core.Article) time.Time {
	var latest time.Time
	for _, a := range articles {
		if a.PublishedAt.After(latest) {
			latest = a.PublishedAt
		}
	}
	return latest
}

// collectTags gathers tags from the top articles, deduplicated, capped.
func collectTags(articles []core.Article) []string {
	seen := make(map[string]struct{})
	var tags []string
	for i, a := range articles {
		if i >= maxTagArticles {
			break
		}
		for _, tag := range a.Tags {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
			if len(tags) >= maxTags {
				return tags
			}
		}
	}
	return tags
}

// buildContent joins the top article summaries into the event body.
func buildContent(articles []core.Article) string {
	var b strings.Builder
	count := 0
	for _, a := range articles {
		if count >= contentSummaries {
			break
		}
		if a.Summary == "" {
			continue
		}
		if count > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "【%s】%s\n%s", a.Source, a.Title, a.Summary)
		count++
	}
	return b.String()
}
