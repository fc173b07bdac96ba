package similarity

import (
	"context"
	"strings"
	"unicode"
)

// Segmenter is the external word-segmentation capability. Implementations
// split mixed-language text into tokens; the engine never depends on a
// specific segmentation backend and works without one.
type Segmenter interface {
	Segment(ctx context.Context, text string) ([]string, error)
}

// stopwords covers common Chinese and English function words stripped before
// relevance scoring.
var stopwords = map[string]struct{}{
	// Chinese
	"的": {}, "了": {}, "在": {}, "是": {}, "我": {}, "有": {}, "和": {}, "就": {},
	"不": {}, "人": {}, "都": {}, "一": {}, "一个": {}, "上": {}, "也": {}, "到": {},
	"说": {}, "要": {}, "去": {}, "你": {}, "会": {}, "着": {}, "没有": {}, "看": {},
	"好": {}, "自己": {}, "这": {}, "但": {}, "而": {},
	// English
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "is": {},
	"are": {}, "was": {}, "were": {}, "in": {}, "on": {}, "at": {}, "to": {},
	"of": {}, "for": {}, "with": {}, "as": {}, "by": {}, "i": {}, "you": {},
	"he": {}, "she": {}, "it": {}, "we": {}, "they": {}, "me": {}, "him": {},
	"her": {}, "us": {}, "them": {},
}

// Preprocessor normalizes mixed Chinese/English text before similarity
// scoring: punctuation is stripped, tokens are segmented (via the external
// segmenter when one is configured, whitespace otherwise), and stopwords are
// removed.
type Preprocessor struct {
	segmenter Segmenter
}

// NewPreprocessor creates a preprocessor. segmenter may be nil.
func NewPreprocessor(segmenter Segmenter) *Preprocessor {
	return &Preprocessor{segmenter: segmenter}
}

// Clean returns the normalized form of text. When everything is filtered
// away the original trimmed text is returned so that downstream scoring
// always has something to compare.
func (p *Preprocessor) Clean(ctx context.Context, text string) string {
	stripped := stripPunctuation(text)

	var tokens []string
	if p.segmenter != nil {
		if segmented, err := p.segmenter.Segment(ctx, stripped); err == nil {
			tokens = segmented
		}
	}
	if tokens == nil {
		tokens = strings.Fields(stripped)
	}

	kept := make([]string, 0, len(tokens))
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if _, stop := stopwords[strings.ToLower(token)]; stop {
			continue
		}
		kept = append(kept, token)
	}

	if len(kept) == 0 {
		return strings.TrimSpace(text)
	}
	return strings.Join(kept, " ")
}

// stripPunctuation keeps letters, digits, CJK characters and spaces.
func stripPunctuation(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r >= 0x4e00 && r <= 0x9fff:
			b.WriteRune(r)
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune(r)
		}
	}
	return b.String()
}
