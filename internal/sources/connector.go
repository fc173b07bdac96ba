// Package sources defines the news source connector capability and its
// implementations. Connectors fail soft: a connector returns an error rather
// than panicking, and the aggregator isolates that error to the one source.
package sources

import (
	"context"

	"github.com/WiDayn/AutoTopicSum/internal/core"
)

// Options carries per-search parameters passed through to connectors.
type Options struct {
	Language string // e.g. "zh-CN"
	Region   string // e.g. "CN"
	Limit    int    // maximum articles to return, 0 means connector default
}

// Connector is a single news source. Implementations manage their own I/O
// timeouts and must validate articles before returning them.
type Connector interface {
	// Search returns articles matching the query.
	Search(ctx context.Context, query string, opts Options) ([]core.Article, error)
	// Name identifies the source; it becomes Article.Source.
	Name() string
}
