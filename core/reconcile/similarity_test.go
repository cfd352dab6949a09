package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{"Identical", "Alien", "Alien", 1},
		{"CaseInsensitive", "ALIEN", "alien", 1},
		{"EmptyLeft", "", "Alien", 0},
		{"EmptyRight", "Alien", "", 0},
		{"BothEmpty", "", "", 0},
		{"OneEdit", "Alien", "Aliens", 1 - 1.0/6.0},
		{"Disjoint", "abc", "xyz", 0},
		{"Unicode", "千与千寻", "千与千寻2", 1 - 1.0/5.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Similarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestSimilarity_SymmetricAndBounded(t *testing.T) {
	words := []string{"", "a", "Alien", "Aliens", "The Matrix", "Matrix", "kitten", "sitting", "星际穿越", "Interstellar"}

	for _, a := range words {
		for _, b := range words {
			ab := Similarity(a, b)
			ba := Similarity(b, a)
			assert.Equal(t, ab, ba, "similarity(%q,%q) must be symmetric", a, b)
			assert.GreaterOrEqual(t, ab, 0.0)
			assert.LessOrEqual(t, ab, 1.0)
		}
		if a != "" {
			assert.Equal(t, 1.0, Similarity(a, a))
		}
	}
}

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 3, levenshtein([]rune("kitten"), []rune("sitting")))
	assert.Equal(t, 0, levenshtein([]rune("same"), []rune("same")))
	assert.Equal(t, 4, levenshtein(nil, []rune("four")))
	assert.Equal(t, 4, levenshtein([]rune("four"), nil))
}
