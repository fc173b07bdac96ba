package core

import "time"

// Article represents a news article retrieved from one source connector.
// Identity is the URL: two articles with the same URL are the same article
// regardless of which source returned them.
type Article struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
	Summary     string    `json:"summary"`
	Content     string    `json:"content"`
	Author      string    `json:"author"`
	ImageURL    string    `json:"image_url"`
	Tags        []string  `json:"tags"`

	// Derived fields, set by downstream stages. Filter marks an article as
	// demoted for low query relevance; it is never removed from results.
	Filter    bool    `json:"filter"`
	Relevance float64 `json:"relevance"`
	Sentiment string  `json:"sentiment,omitempty"`
}

// Valid reports whether the article carries the minimum identity fields.
// Connectors drop articles that fail this check before returning them.
func (a Article) Valid() bool {
	return a.Title != "" && a.URL != "" && a.Source != ""
}

// SourceArticle is the compact article reference attached to a TimelineNode.
type SourceArticle struct {
	URL    string `json:"url"`
	Source string `json:"source"`
	Title  string `json:"title"`
}

// TimelineNode is one key moment of a story, derived from a cluster of
// articles. Nodes are regenerated from scratch on every timeline request.
type TimelineNode struct {
	Timestamp      time.Time       `json:"timestamp"`
	KeyEvent       string          `json:"key_event"`
	Summary        string          `json:"summary"`
	SourceArticles []SourceArticle `json:"source_articles"`
}

// MediaProfile holds the free-text descriptive attributes of one media
// source. Each field is a '/'-delimited keyword list produced by the profile
// generator and canonicalized by the keyword encoder.
type MediaProfile struct {
	Ownership       string `json:"ownership"`
	Funding         string `json:"funding"`
	PoliticalStance string `json:"political_stance"`
	ContentDomain   string `json:"content_domain"`
	Location        string `json:"location"`
	TargetAudience  string `json:"target_audience"`
	Category        string `json:"category"`
}

// FieldNamespaces lists the profile namespaces subject to keyword encoding.
var FieldNamespaces = []string{
	"ownership", "funding", "political_stance",
	"content_domain", "location", "target_audience", "category",
}

// Field returns the value of the named namespace.
func (p MediaProfile) Field(namespace string) string {
	switch namespace {
	case "ownership":
		return p.Ownership
	case "funding":
		return p.Funding
	case "political_stance":
		return p.PoliticalStance
	case "content_domain":
		return p.ContentDomain
	case "location":
		return p.Location
	case "target_audience":
		return p.TargetAudience
	case "category":
		return p.Category
	}
	return ""
}

// SetField writes a canonicalized value back into the matching namespace.
func (p *MediaProfile) SetField(namespace, value string) {
	switch namespace {
	case "ownership":
		p.Ownership = value
	case "funding":
		p.Funding = value
	case "political_stance":
		p.PoliticalStance = value
	case "content_domain":
		p.ContentDomain = value
	case "location":
		p.Location = value
	case "target_audience":
		p.TargetAudience = value
	case "category":
		p.Category = value
	}
}

// Event is the aggregate produced by one pipeline run: the deduplicated,
// relevance-ranked article set plus summary metadata about the story.
type Event struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Summary     string          `json:"summary"`
	Content     string          `json:"content"`
	Date        time.Time       `json:"date"`
	SourceCount int             `json:"source_count"`
	Sources     []SourceArticle `json:"sources"`
	Tags        []string        `json:"tags"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Progress describes how far a pipeline run has advanced. It mirrors the
// progress payload reported to the external task executor.
type Progress struct {
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Message string `json:"message"`
}
