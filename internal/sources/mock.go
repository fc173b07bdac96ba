package sources

import (
	"context"

	"github.com/WiDayn/AutoTopicSum/internal/core"
)

// MockConnector implements Connector for testing. It returns the configured
// articles, or the configured error.
type MockConnector struct {
	SourceName string
	Articles   []core.Article
	Err        error
}

// NewMockConnector creates a mock connector that returns the given articles.
func NewMockConnector(name string, articles ...core.Article) *MockConnector {
	return &MockConnector{SourceName: name, Articles: articles}
}

// Name implements Connector.
func (m *MockConnector) Name() string { return m.SourceName }

// Search implements Connector.
func (m *MockConnector) Search(ctx context.Context, query string, opts Options) ([]core.Article, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	valid := make([]core.Article, 0, len(m.Articles))
	for _, article := range m.Articles {
		if article.Valid() {
			valid = append(valid, article)
		}
	}
	return valid, nil
}
