package similarity

// sequenceRatio measures character-level overlap between two strings as
// 2*M / (len(a)+len(b)), where M is the total length of the longest matching
// blocks found by recursively splitting around the longest common substring.
// This mirrors difflib-style sequence matching and operates on runes so that
// multi-byte text compares by character, not by byte.
func sequenceRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	matched := matchingBlockSize(ra, rb)
	return 2.0 * float64(matched) / float64(total)
}

// matchingBlockSize sums the sizes of all matching blocks between a and b.
func matchingBlockSize(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	ai, bi, size := longestMatch(a, b)
	if size == 0 {
		return 0
	}
	// Recurse on the unmatched prefixes and suffixes around the block.
	return size +
		matchingBlockSize(a[:ai], b[:bi]) +
		matchingBlockSize(a[ai+size:], b[bi+size:])
}

// longestMatch finds the longest common contiguous block of a and b,
// preferring the earliest occurrence in a, then in b.
func longestMatch(a, b []rune) (bestA, bestB, bestSize int) {
	// b2j maps each rune to its positions in b.
	b2j := make(map[rune][]int, len(b))
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}

	// j2len[j] holds the length of the match ending at a[i-1], b[j-1].
	j2len := make(map[int]int)
	for i, r := range a {
		newJ2len := make(map[int]int)
		for _, j := range b2j[r] {
			k := j2len[j-1] + 1
			newJ2len[j] = k
			if k > bestSize {
				bestA, bestB, bestSize = i-k+1, j-k+1, k
			}
		}
		j2len = newJ2len
	}
	return bestA, bestB, bestSize
}
