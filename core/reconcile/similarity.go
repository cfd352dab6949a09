package reconcile

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Similarity scores two labels between 0 and 1 using normalized Levenshtein distance.
// The comparison is case-insensitive. An empty input always scores 0.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}

	fold := cases.Lower(language.Und)
	s1 := []rune(fold.String(a))
	s2 := []rune(fold.String(b))

	if string(s1) == string(s2) {
		return 1
	}

	distance := levenshtein(s1, s2)
	maxLen := max(len(s1), len(s2))

	return 1 - float64(distance)/float64(maxLen)
}

// levenshtein returns the edit distance between two rune slices.
// Only two rows of the matrix are kept.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
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
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}
