// Package similarity computes pairwise text similarity using a layered
// policy: exact match, substring containment, semantic cosine similarity,
// and a character-overlap fallback. It is shared by the aggregator (query
// relevance) and the keyword clustering engine.
package similarity

import (
	"context"
	"math"
	"strings"

	"github.com/WiDayn/AutoTopicSum/internal/embedding"
	"github.com/WiDayn/AutoTopicSum/internal/logger"
)

// Engine scores text pairs. A nil embedding provider is valid: semantic
// scoring is skipped and the character-level fallback covers its cells.
type Engine struct {
	provider embedding.Provider
}

// NewEngine creates a similarity engine backed by the given provider.
// provider may be nil.
func NewEngine(provider embedding.Provider) *Engine {
	return &Engine{provider: provider}
}

// Score computes the similarity of a and b in [0,1]. Scoring never fails:
// an unavailable or erroring provider degrades to character-level overlap.
func (e *Engine) Score(ctx context.Context, a, b string) float64 {
	if a == b {
		return 1.0
	}

	if score, ok := containmentScore(a, b); ok {
		return score
	}

	if e.provider != nil {
		vectors, err := e.provider.Embed(ctx, []string{a, b})
		if err == nil && len(vectors) == 2 {
			return clamp01(cosine(vectors[0], vectors[1]))
		}
		logger.Debug("Semantic similarity unavailable, using character fallback", "error", errString(err))
	}

	return sequenceRatio(a, b)
}

// BatchScore computes similarity(query, text) for every text. Heuristic
// scores (exact, containment) are computed per pair; semantic scores come
// from a single embedding call over the whole batch, with the larger of the
// two winning per pair. Cells still at zero are filled with the character
// fallback. Semantics match Score applied pairwise.
func (e *Engine) BatchScore(ctx context.Context, query string, texts []string) []float64 {
	scores := make([]float64, len(texts))
	heuristic := make([]bool, len(texts))
	for i, text := range texts {
		if query == text {
			scores[i] = 1.0
			heuristic[i] = true
		} else if score, ok := containmentScore(query, text); ok {
			scores[i] = score
			heuristic[i] = true
		}
	}

	if e.provider != nil && len(texts) > 0 {
		batch := append([]string{query}, texts...)
		vectors, err := e.provider.Embed(ctx, batch)
		if err == nil && len(vectors) == len(batch) {
			for i := range texts {
				semantic := clamp01(cosine(vectors[0], vectors[i+1]))
				if !heuristic[i] || semantic > scores[i] {
					scores[i] = semantic
				}
			}
		} else {
			logger.Debug("Batch semantic scoring unavailable", "error", errString(err))
		}
	}

	for i, text := range texts {
		if scores[i] == 0.0 && !heuristic[i] {
			scores[i] = sequenceRatio(query, text)
		}
	}
	return scores
}

// Matrix builds the full pairwise similarity matrix for texts. Exact and
// containment scores are computed for all pairs first, then the semantic
// layer is applied with one embedding call and one pass over the matrix,
// keeping the larger of heuristic and semantic score per cell. Cells still
// at zero afterwards are filled with the character fallback.
func (e *Engine) Matrix(ctx context.Context, texts []string) *Matrix {
	m := newMatrix(texts)
	n := len(texts)

	// states marks cells already settled by the exact/containment layer.
	states := make([][]bool, n)
	for i := range states {
		states[i] = make([]bool, n)
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if texts[i] == texts[j] {
				m.set(i, j, 1.0)
				states[i][j] = true
				continue
			}
			if score, ok := containmentScore(texts[i], texts[j]); ok {
				m.set(i, j, score)
				states[i][j] = true
			}
		}
	}

	if e.provider != nil && n > 1 {
		vectors, err := e.provider.Embed(ctx, texts)
		if err == nil && len(vectors) == n {
			normalized := normalizeRows(vectors)
			for i := 0; i < n; i++ {
				for j := i + 1; j < n; j++ {
					semantic := clamp01(dot(normalized[i], normalized[j]))
					if !states[i][j] || semantic > m.At(i, j) {
						m.set(i, j, semantic)
					}
				}
			}
		} else {
			logger.Debug("Matrix semantic scoring unavailable", "error", errString(err))
		}
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if m.At(i, j) == 0.0 && !states[i][j] {
				m.set(i, j, sequenceRatio(texts[i], texts[j]))
			}
		}
	}

	return m
}

// containmentScore scores the substring relationship between a and b.
// Compound terms sharing a root are highly related, so a containment ratio
// above 0.5 maps into the 0.7..0.9 band; below that the ratio itself is the
// score. Returns ok=false when neither string contains the other.
func containmentScore(a, b string) (float64, bool) {
	if a == "" || b == "" {
		return 0, false
	}
	if !strings.Contains(a, b) && !strings.Contains(b, a) {
		return 0, false
	}
	la, lb := len([]rune(a)), len([]rune(b))
	shorter, longer := la, lb
	if shorter > longer {
		shorter, longer = longer, shorter
	}
	ratio := float64(shorter) / float64(longer)
	if ratio > 0.5 {
		return math.Min(0.9, 0.7+0.2*ratio), true
	}
	return ratio, true
}

func cosine(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func normalizeRows(vectors [][]float64) [][]float64 {
	out := make([][]float64, len(vectors))
	for i, vec := range vectors {
		var norm float64
		for _, v := range vec {
			norm += v * v
		}
		norm = math.Sqrt(norm)
		if norm == 0 {
			norm = 1
		}
		row := make([]float64, len(vec))
		for j, v := range vec {
			row[j] = v / norm
		}
		out[i] = row
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func errString(err error) string {
	if err == nil {
		return "unexpected result shape"
	}
	return err.Error()
}
