package similarity

import (
	"context"
	"strings"
	"testing"
)

type fakeSegmenter struct {
	tokens []string
}

func (s *fakeSegmenter) Segment(_ context.Context, _ string) ([]string, error) {
	return s.tokens, nil
}

func TestCleanRemovesStopwordsAndPunctuation(t *testing.T) {
	p := NewPreprocessor(nil)
	got := p.Clean(context.Background(), "The chip, export controls!")
	if got != "chip export controls" {
		t.Errorf("Clean = %q, want %q", got, "chip export controls")
	}
}

func TestCleanUsesSegmenter(t *testing.T) {
	p := NewPreprocessor(&fakeSegmenter{tokens: []string{"芯片", "的", "出口"}})
	got := p.Clean(context.Background(), "芯片的出口")
	if got != "芯片 出口" {
		t.Errorf("Clean = %q, want segmented tokens without stopwords", got)
	}
}

func TestCleanKeepsCJK(t *testing.T) {
	p := NewPreprocessor(nil)
	got := p.Clean(context.Background(), "芯片出口管制，美国！")
	if !strings.Contains(got, "芯片出口管制") {
		t.Errorf("Clean = %q, CJK text lost", got)
	}
	if strings.ContainsAny(got, "，！") {
		t.Errorf("Clean = %q, punctuation kept", got)
	}
}

func TestCleanFallsBackWhenAllFiltered(t *testing.T) {
	p := NewPreprocessor(nil)
	// Every token is a stopword; the trimmed original comes back.
	got := p.Clean(context.Background(), "  the and of  ")
	if got != "the and of" {
		t.Errorf("Clean = %q, want trimmed original", got)
	}
}
