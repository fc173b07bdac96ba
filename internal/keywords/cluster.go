package keywords

import (
	"fmt"
	"math"
	"sort"
	"unicode/utf8"

	"github.com/WiDayn/AutoTopicSum/internal/similarity"
)

// hierarchicalGroups runs agglomerative clustering with average linkage over
// a precomputed similarity matrix. Pairs closer than maxDistance (distance is
// 1 - similarity) keep merging; everything else stays separate. Groups are
// returned ordered by the first appearance of any member in the input.
func hierarchicalGroups(m *similarity.Matrix, maxDistance float64) (groups [][]int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("hierarchical clustering panicked: %v", r)
		}
	}()

	n := m.Len()
	if n == 0 {
		return nil, nil
	}

	dist := make([][]float64, n)
	for i := 0; i < n; i++ {
		dist[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			d := 1 - m.At(i, j)
			if math.IsNaN(d) || math.IsInf(d, 0) {
				return nil, fmt.Errorf("similarity matrix has invalid entry at (%d,%d)", i, j)
			}
			dist[i][j] = d
		}
	}

	clusters := make([][]int, n)
	for i := range clusters {
		clusters[i] = []int{i}
	}

	for len(clusters) > 1 {
		best, bestA, bestB := math.Inf(1), -1, -1
		for a := 0; a < len(clusters); a++ {
			for b := a + 1; b < len(clusters); b++ {
				d := averageLinkage(dist, clusters[a], clusters[b])
				if d < best {
					best, bestA, bestB = d, a, b
				}
			}
		}
		if best > maxDistance {
			break
		}
		merged := append(append([]int{}, clusters[bestA]...), clusters[bestB]...)
		clusters = append(clusters[:bestB], clusters[bestB+1:]...)
		clusters[bestA] = merged
	}

	for _, c := range clusters {
		sort.Ints(c)
	}
	sort.Slice(clusters, func(a, b int) bool { return clusters[a][0] < clusters[b][0] })
	return clusters, nil
}

func averageLinkage(dist [][]float64, a, b []int) float64 {
	var sum float64
	for _, i := range a {
		for _, j := range b {
			sum += dist[i][j]
		}
	}
	return sum / float64(len(a)*len(b))
}

// greedyGroups is the fallback when hierarchical clustering fails. Each
// keyword either joins the first existing group whose center it matches at
// or above threshold, or starts a new group with itself as center.
func greedyGroups(m *similarity.Matrix, threshold float64) [][]int {
	var groups [][]int
	for i := 0; i < m.Len(); i++ {
		placed := false
		for g, members := range groups {
			center := members[0]
			if m.At(center, i) >= threshold {
				groups[g] = append(groups[g], i)
				placed = true
				break
			}
		}
		if !placed {
			groups = append(groups, []int{i})
		}
	}
	return groups
}

// chooseRepresentative picks the shortest member by rune count, breaking
// ties lexicographically.
func chooseRepresentative(members []string) string {
	if len(members) == 0 {
		return ""
	}
	best := members[0]
	bestLen := utf8.RuneCountInString(best)
	for _, candidate := range members[1:] {
		l := utf8.RuneCountInString(candidate)
		if l < bestLen || (l == bestLen && candidate < best) {
			best, bestLen = candidate, l
		}
	}
	return best
}
