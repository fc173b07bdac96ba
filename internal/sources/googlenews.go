package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/WiDayn/AutoTopicSum/internal/core"
	"github.com/WiDayn/AutoTopicSum/internal/logger"
)

const googleNewsBaseURL = "https://news.google.com"

// defaultGoogleNewsLimit caps how many article elements one search parses.
const defaultGoogleNewsLimit = 100

// GoogleNews is a connector that scrapes the Google News search page.
type GoogleNews struct {
	client    *http.Client
	baseURL   string
	userAgent string
}

// NewGoogleNews creates a Google News connector with a 15 second HTTP
// timeout, matching the politeness budget of the other scraping connectors.
func NewGoogleNews() *GoogleNews {
	return &GoogleNews{
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: googleNewsBaseURL,
		userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	}
}

// Name implements Connector.
func (g *GoogleNews) Name() string { return "Google News" }

// Search implements Connector by parsing the Google News search results page.
func (g *GoogleNews) Search(ctx context.Context, query string, opts Options) ([]core.Article, error) {
	language := opts.Language
	if language == "" {
		language = "zh-CN"
	}
	region := opts.Region
	if region == "" {
		region = "CN"
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultGoogleNewsLimit
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("hl", language)
	params.Set("gl", region)
	searchURL := g.baseURL + "/search?" + params.Encode()

	doc, err := g.fetch(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	var articles []core.Article
	doc.Find("article").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if article, ok := g.parseArticle(sel); ok && article.Valid() {
			articles = append(articles, article)
		}
		return len(articles) < limit
	})

	logger.Info("Google News search finished", "query", query, "articles", len(articles))
	return articles, nil
}

// Latest returns the current front-page articles.
func (g *GoogleNews) Latest(ctx context.Context, limit int) ([]core.Article, error) {
	if limit <= 0 {
		limit = 10
	}
	doc, err := g.fetch(ctx, g.baseURL+"?hl=zh-CN&gl=CN")
	if err != nil {
		return nil, err
	}

	var articles []core.Article
	doc.Find("article").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if article, ok := g.parseArticle(sel); ok && article.Valid() {
			articles = append(articles, article)
		}
		return len(articles) < limit
	})
	return articles, nil
}

func (g *GoogleNews) fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9,en;q=0.8")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google news returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return doc, nil
}

// parseArticle extracts one article from a Google News <article> element.
func (g *GoogleNews) parseArticle(sel *goquery.Selection) (core.Article, bool) {
	titleLink := sel.Find("a.gPFEn, a.JtKRv").First()
	if titleLink.Length() == 0 {
		titleLink = sel.Find("a").First()
	}
	if titleLink.Length() == 0 {
		return core.Article{}, false
	}

	title := strings.TrimSpace(titleLink.Text())
	if title == "" {
		return core.Article{}, false
	}

	href, _ := titleLink.Attr("href")
	articleURL := g.resolveURL(href)

	source := g.extractSource(sel)
	if source == "" {
		source = g.Name()
	}

	var publishedAt time.Time
	if timeElem := sel.Find("time").First(); timeElem.Length() > 0 {
		if datetimeAttr, ok := timeElem.Attr("datetime"); ok {
			if parsed, err := time.Parse(time.RFC3339, datetimeAttr); err == nil {
				publishedAt = parsed
			}
		}
		if publishedAt.IsZero() {
			publishedAt = parseRelativeTime(strings.TrimSpace(timeElem.Text()))
		}
	}

	summary := strings.TrimSpace(sel.Find("div.St8fe").First().Text())

	return core.Article{
		Title:       title,
		URL:         articleURL,
		Source:      source,
		PublishedAt: publishedAt,
		Summary:     summary,
	}, true
}

// resolveURL normalizes the relative links Google News emits ("./articles/...").
func (g *GoogleNews) resolveURL(href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http") {
		return href
	}
	base, err := url.Parse(g.baseURL + "/")
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

var sourceSuffixRe = regexp.MustCompile(`\s*[-|].*$`)

// extractSource pulls the media name out of the article element.
func (g *GoogleNews) extractSource(sel *goquery.Selection) string {
	source := strings.TrimSpace(sel.Find("div.vr1PYe").First().Text())
	if source == "" {
		return ""
	}
	source = strings.Join(strings.Fields(source), " ")
	source = sourceSuffixRe.ReplaceAllString(source, "")
	if len(source) > 100 {
		source = source[:100]
	}
	return source
}

var digitsRe = regexp.MustCompile(`(\d+)`)

// parseRelativeTime turns phrases like "3小时前" or "2 days ago" into a
// timestamp relative to now. Unrecognized phrases map to now.
func parseRelativeTime(text string) time.Time {
	now := time.Now()
	if text == "" {
		return now
	}

	match := digitsRe.FindString(text)
	n, err := strconv.Atoi(match)
	if err != nil {
		return now
	}

	lower := strings.ToLower(text)
	switch {
	case strings.Contains(text, "分钟") || strings.Contains(lower, "minute"):
		return now.Add(-time.Duration(n) * time.Minute)
	case strings.Contains(text, "小时") || strings.Contains(lower, "hour"):
		return now.Add(-time.Duration(n) * time.Hour)
	case strings.Contains(text, "天") || strings.Contains(lower, "day"):
		return now.AddDate(0, 0, -n)
	case strings.Contains(text, "周") || strings.Contains(lower, "week"):
		return now.AddDate(0, 0, -7*n)
	}
	return now
}
