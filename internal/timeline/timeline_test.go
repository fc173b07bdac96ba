package timeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/WiDayn/AutoTopicSum/internal/core"
)

// stubProvider returns fixed vectors keyed by input text.
type stubProvider struct {
	vectors map[string][]float64
	err     error
}

func (p *stubProvider) Embed(_ context.Context, texts []string) ([][]float64, error) {
	if p.err != nil {
		return nil, p.err
	}
	out := make([][]float64, len(texts))
	for i, text := range texts {
		vec, ok := p.vectors[text]
		if !ok {
			return nil, fmt.Errorf("no stub vector for %q", text)
		}
		out[i] = vec
	}
	return out, nil
}

func (p *stubProvider) Name() string { return "stub" }

func article(title string, at time.Time) core.Article {
	return core.Article{
		Title:       title,
		URL:         "https://example.com/" + title,
		Source:      "test",
		PublishedAt: at,
	}
}

func TestGenerateClustersByTopicAndTime(t *testing.T) {
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	provider := &stubProvider{vectors: map[string][]float64{
		"a1": {1, 0}, "a2": {1, 0},
		"b1": {0, 1}, "b2": {0, 1},
		"c1": {-1, 0}, "c2": {-1, 0},
	}}
	articles := []core.Article{
		article("a1", base), article("a2", base),
		article("b1", base.Add(time.Hour)), article("b2", base.Add(time.Hour)),
		article("c1", base.Add(2*time.Hour)), article("c2", base.Add(2*time.Hour)),
	}

	nodes, err := NewGenerator(provider).Generate(context.Background(), articles)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(nodes) != 3 {
		t.Fatalf("got %d nodes, want 3", len(nodes))
	}
	// Newest first.
	for i := 1; i < len(nodes); i++ {
		if nodes[i].Timestamp.After(nodes[i-1].Timestamp) {
			t.Errorf("nodes not sorted newest first: %v before %v", nodes[i-1].Timestamp, nodes[i].Timestamp)
		}
	}
	if !nodes[0].Timestamp.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("first node timestamp = %v, want %v", nodes[0].Timestamp, base.Add(2*time.Hour))
	}
	for _, node := range nodes {
		if len(node.SourceArticles) != 2 {
			t.Errorf("node %q has %d sources, want 2", node.KeyEvent, len(node.SourceArticles))
		}
	}
}

func TestGenerateDropsSmallClusters(t *testing.T) {
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	provider := &stubProvider{vectors: map[string][]float64{
		"a1": {1, 0}, "a2": {1, 0},
		"lone": {0, 1},
	}}
	articles := []core.Article{
		article("a1", base), article("a2", base),
		article("lone", base.Add(time.Hour)),
	}

	nodes, err := NewGenerator(provider).Generate(context.Background(), articles)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(nodes) != 1 {
		t.Fatalf("got %d nodes, want 1", len(nodes))
	}
	if nodes[0].KeyEvent != "a1" && nodes[0].KeyEvent != "a2" {
		t.Errorf("node key event = %q, want one of the pair", nodes[0].KeyEvent)
	}
}

func TestGenerateExcludesUndatedArticles(t *testing.T) {
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	provider := &stubProvider{vectors: map[string][]float64{
		"a1": {1, 0}, "a2": {1, 0},
	}}
	articles := []core.Article{
		article("a1", base), article("a2", base),
		article("undated", time.Time{}),
	}

	nodes, err := NewGenerator(provider).Generate(context.Background(), articles)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(nodes) != 1 {
		t.Fatalf("got %d nodes, want 1", len(nodes))
	}
	for _, src := range nodes[0].SourceArticles {
		if src.Title == "undated" {
			t.Error("undated article leaked into timeline node")
		}
	}
}

func TestGenerateRepresentativeNearestCentroid(t *testing.T) {
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	provider := &stubProvider{vectors: map[string][]float64{
		"left": {1, 0}, "mid": {1, 0.1}, "right": {1, 0.2},
	}}
	articles := []core.Article{
		article("left", base), article("mid", base), article("right", base),
	}

	nodes, err := NewGenerator(provider).Generate(context.Background(), articles)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(nodes) != 1 {
		t.Fatalf("got %d nodes, want 1", len(nodes))
	}
	if nodes[0].KeyEvent != "mid" {
		t.Errorf("representative = %q, want mid", nodes[0].KeyEvent)
	}
}

func TestGenerateEmptyAndTiny(t *testing.T) {
	provider := &stubProvider{vectors: map[string][]float64{"a": {1, 0}}}
	g := NewGenerator(provider)

	nodes, err := g.Generate(context.Background(), nil)
	if err != nil || len(nodes) != 0 {
		t.Errorf("empty input: nodes=%v err=%v, want none", nodes, err)
	}

	nodes, err = g.Generate(context.Background(), []core.Article{article("a", time.Now())})
	if err != nil || len(nodes) != 0 {
		t.Errorf("single article: nodes=%v err=%v, want none", nodes, err)
	}
}

func TestGenerateRequiresProvider(t *testing.T) {
	_, err := NewGenerator(nil).Generate(context.Background(), nil)
	if !errors.Is(err, ErrNoProvider) {
		t.Errorf("err = %v, want ErrNoProvider", err)
	}
}

func TestGenerateEmbedFailure(t *testing.T) {
	provider := &stubProvider{err: errors.New("quota exceeded")}
	base := time.Now()
	_, err := NewGenerator(provider).Generate(context.Background(), []core.Article{
		article("a", base), article("b", base),
	})
	if err == nil {
		t.Error("expected error when embedding fails")
	}
}

func TestRobustScale(t *testing.T) {
	got := robustScale([]float64{0, 0, 1, 1, 2, 2})
	// median 1, IQR 1.5
	want := []float64{-2.0 / 3, -2.0 / 3, 0, 0, 2.0 / 3, 2.0 / 3}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("robustScale[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRobustScaleZeroIQR(t *testing.T) {
	got := robustScale([]float64{5, 5, 5})
	for i, v := range got {
		if v != 0 {
			t.Errorf("robustScale[%d] = %v, want 0", i, v)
		}
	}
}

func TestDBSCANNoise(t *testing.T) {
	points := [][]float64{
		{0, 0}, {0.1, 0}, // dense pair
		{10, 10}, // isolated
	}
	labels := dbscan(points, 0.5, 2)
	if labels[0] != labels[1] || labels[0] == noise {
		t.Errorf("dense pair labels = %v, want shared cluster", labels[:2])
	}
	if labels[2] != noise {
		t.Errorf("isolated point label = %d, want noise", labels[2])
	}
}
