package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/WiDayn/AutoTopicSum/internal/core"
	"github.com/WiDayn/AutoTopicSum/internal/logger"
)

const duckDuckGoBaseURL = "https://html.duckduckgo.com/html/"

// DuckDuckGo searches the DuckDuckGo HTML endpoint. Results carry no
// publication time, so they rank behind dated articles and are excluded
// from timelines.
type DuckDuckGo struct {
	client    *http.Client
	userAgent string

	// DuckDuckGo blocks aggressive clients, so calls are rate limited.
	rateLimit time.Duration
	mu        sync.Mutex
	lastCall  time.Time
}

// NewDuckDuckGo creates a DuckDuckGo connector.
func NewDuckDuckGo() *DuckDuckGo {
	return &DuckDuckGo{
		client:    &http.Client{Timeout: 30 * time.Second},
		userAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		rateLimit: 2 * time.Second,
	}
}

// Name returns the connector name used as the default article source.
func (d *DuckDuckGo) Name() string { return "DuckDuckGo" }

// Search queries DuckDuckGo and converts the result page into articles.
func (d *DuckDuckGo) Search(ctx context.Context, query string, opts Options) ([]core.Article, error) {
	d.throttle()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.searchURL(query, opts), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search request failed with status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse search results: %w", err)
	}
	if doc.Find("form[action*='captcha']").Length() > 0 {
		return nil, fmt.Errorf("search blocked by CAPTCHA, try again later")
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultGoogleNewsLimit
	}

	var articles []core.Article
	doc.Find("div.result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		article, ok := d.parseResult(sel)
		if ok && article.Valid() {
			articles = append(articles, article)
		}
		return len(articles) < limit
	})

	logger.Info("DuckDuckGo search completed", "query", query, "results", len(articles))
	return articles, nil
}

func (d *DuckDuckGo) throttle() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if elapsed := time.Since(d.lastCall); elapsed < d.rateLimit {
		time.Sleep(d.rateLimit - elapsed)
	}
	d.lastCall = time.Now()
}

func (d *DuckDuckGo) searchURL(query string, opts Options) string {
	params := url.Values{}
	params.Set("q", query)
	params.Set("b", "0")
	params.Set("kl", regionCode(opts))
	return duckDuckGoBaseURL + "?" + params.Encode()
}

// regionCode maps the connector options to DuckDuckGo's kl parameter,
// e.g. region CN + language zh-CN becomes cn-zh.
func regionCode(opts Options) string {
	if opts.Region == "" || opts.Language == "" {
		return "us-en"
	}
	lang := opts.Language
	if i := strings.IndexByte(lang, '-'); i > 0 {
		lang = lang[:i]
	}
	return strings.ToLower(opts.Region) + "-" + strings.ToLower(lang)
}

func (d *DuckDuckGo) parseResult(sel *goquery.Selection) (core.Article, bool) {
	link := sel.Find("a.result__a").First()
	href, ok := link.Attr("href")
	if !ok {
		return core.Article{}, false
	}
	finalURL := resolveRedirect(href)
	if finalURL == "" {
		return core.Article{}, false
	}

	title := strings.TrimSpace(link.Text())
	if title == "" {
		return core.Article{}, false
	}

	article := core.Article{
		Title:   title,
		URL:     finalURL,
		Source:  sourceDomain(finalURL),
		Summary: strings.TrimSpace(sel.Find("a.result__snippet").First().Text()),
	}
	return article, true
}

// resolveRedirect unwraps DuckDuckGo's /l/?uddg=... redirect URLs.
func resolveRedirect(href string) string {
	if !strings.Contains(href, "uddg=") {
		if strings.HasPrefix(href, "http") {
			return href
		}
		return ""
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	target := parsed.Query().Get("uddg")
	if target == "" {
		return ""
	}
	return target
}

func sourceDomain(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return "DuckDuckGo"
	}
	return strings.TrimPrefix(parsed.Host, "www.")
}
