// Package matching implements the review authenticity matching engine: a
// deterministic, stateless scorer that decides whether an externally observed
// review is the same event as a review previously submitted through the
// product's own collection flow.
//
// The engine is pure: no I/O, no shared state, identical inputs always
// produce identical outputs. It is safe to invoke concurrently across many
// reviews and candidate sets with zero coordination.
package matching

import "strings"

// Similarity computes a normalized edit-distance similarity between two
// strings. Comparison is case-insensitive and ignores leading/trailing
// whitespace.
//
// Returns 1.0 if both strings are empty after trimming, 0.0 if exactly one
// is empty, and otherwise (L - d) / L where d is the Levenshtein distance
// and L the length of the longer string.
func Similarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))

	if a == "" && b == "" {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	ra := []rune(a)
	rb := []rune(b)

	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}

	d := levenshtein(ra, rb)
	return float64(longest-d) / float64(longest)
}

// levenshtein computes the minimum number of single-character insertions,
// deletions and substitutions needed to turn a into b. It uses a rolling
// two-row buffer instead of the full dynamic-programming table, keeping
// space proportional to the shorter string.
func levenshtein(a, b []rune) int {
	// Keep b as the shorter string so the rows stay small.
	if len(b) > len(a) {
		a, b = b, a
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}

			deletion := prev[j] + 1
			insertion := curr[j-1] + 1
			substitution := prev[j-1] + cost

			m := deletion
			if insertion < m {
				m = insertion
			}
			if substitution < m {
				m = substitution
			}
			curr[j] = m
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}
