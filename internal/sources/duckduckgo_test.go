package sources

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func TestResolveRedirect(t *testing.T) {
	tests := []struct {
		href string
		want string
	}{
		{"/l/?uddg=https%3A%2F%2Fexample.com%2Fstory&rut=abc", "https://example.com/story"},
		{"https://direct.example.com/page", "https://direct.example.com/page"},
		{"/relative/no-redirect", ""},
		{"/l/?rut=abc", ""},
	}
	for _, tt := range tests {
		if got := resolveRedirect(tt.href); got != tt.want {
			t.Errorf("resolveRedirect(%q) = %q, want %q", tt.href, got, tt.want)
		}
	}
}

func TestRegionCode(t *testing.T) {
	tests := []struct {
		opts Options
		want string
	}{
		{Options{Region: "CN", Language: "zh-CN"}, "cn-zh"},
		{Options{Region: "US", Language: "en-US"}, "us-en"},
		{Options{}, "us-en"},
		{Options{Region: "DE"}, "us-en"}, // language missing
	}
	for _, tt := range tests {
		if got := regionCode(tt.opts); got != tt.want {
			t.Errorf("regionCode(%+v) = %q, want %q", tt.opts, got, tt.want)
		}
	}
}

func TestSourceDomain(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.reuters.com/article/1", "reuters.com"},
		{"https://news.bbc.co.uk/story", "news.bbc.co.uk"},
		{"not a url", "DuckDuckGo"},
	}
	for _, tt := range tests {
		if got := sourceDomain(tt.url); got != tt.want {
			t.Errorf("sourceDomain(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestDuckDuckGoParseResult(t *testing.T) {
	html := `<div class="result">
		<a class="result__a" href="/l/?uddg=https%3A%2F%2Fexample.com%2Fchip-story">Chip export controls tighten</a>
		<a class="result__snippet">New restrictions on semiconductor exports were announced.</a>
	</div>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}

	d := NewDuckDuckGo()
	article, ok := d.parseResult(doc.Find("div.result").First())
	if !ok {
		t.Fatal("parseResult returned ok=false")
	}
	if article.Title != "Chip export controls tighten" {
		t.Errorf("title = %q", article.Title)
	}
	if article.URL != "https://example.com/chip-story" {
		t.Errorf("url = %q", article.URL)
	}
	if article.Source != "example.com" {
		t.Errorf("source = %q", article.Source)
	}
	if !strings.Contains(article.Summary, "semiconductor") {
		t.Errorf("summary = %q", article.Summary)
	}
	if !article.PublishedAt.IsZero() {
		t.Errorf("publishedAt = %v, want zero (web results carry no date)", article.PublishedAt)
	}
}

func TestDuckDuckGoParseResultRejectsAds(t *testing.T) {
	// Ad results have no unwrappable target URL.
	html := `<div class="result"><a class="result__a" href="/y.js?ad=1">Sponsored</a></div>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}
	d := NewDuckDuckGo()
	if _, ok := d.parseResult(doc.Find("div.result").First()); ok {
		t.Error("expected ok=false for ad result")
	}
}
