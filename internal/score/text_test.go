package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Local   Hiring\n\tProgram ", "local hiring program"},
		{"Café", "café"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "input %q", tt.in)
	}
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"take", "back", "low", "income", "2024"}, Tokenize("take-back, low-income (2024)"))
	assert.Empty(t, Tokenize(" -- "))
}

func TestStem(t *testing.T) {
	tests := map[string]string{
		"hiring":    "hir",
		"recycled":  "recycl",
		"boxes":     "box",
		"suppliers": "supplier",
		"water":     "water",
	}
	for in, want := range tests {
		assert.Equal(t, want, Stem(in), "stem %q", in)
	}
}

func TestCorpus_HitWeight(t *testing.T) {
	c := NewCorpus("We expanded Local Hiring across the region. Suppliers were trained.")

	assert.Equal(t, 1.0, c.HitWeight("local hiring"), "exact hit")
	assert.Equal(t, 0.5, c.HitWeight("trained supplier"), "bag-of-stems hit")
	assert.Equal(t, 0.5, c.HitWeight("hiring region"), "order independent")
	assert.Equal(t, 0.0, c.HitWeight("water stewardship"))
	assert.Equal(t, 0.0, c.HitWeight("  "))
}

func TestCorpus_HitWeightSkipsEmptyStems(t *testing.T) {
	c := NewCorpus("Packaging recycling expanded to every store.")

	assert.Equal(t, 0.5, c.HitWeight("s recycling store"))
	assert.Equal(t, 0.0, c.HitWeight("s es"), "a phrase of empty stems never matches")
}
