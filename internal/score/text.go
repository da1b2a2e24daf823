package score

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// stemSuffixes are stripped in order; the first match wins
var stemSuffixes = []string{"ing", "ed", "es", "s"}

// Normalize case-folds, NFC-normalizes and collapses whitespace
func Normalize(s string) string {
	s = strings.ToLower(norm.NFC.String(s))
	return strings.Join(strings.Fields(s), " ")
}

// Tokenize splits normalized text on runs of non-alphanumeric characters
func Tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Stem strips one common English suffix. It is deliberately crude.
func Stem(token string) string {
	for _, suffix := range stemSuffixes {
		if strings.HasSuffix(token, suffix) {
			return strings.TrimSuffix(token, suffix)
		}
	}
	return token
}

// Corpus is a normalized, tokenized view of the assembled entity text
type Corpus struct {
	text  string
	stems map[string]struct{}
}

// NewCorpus prepares raw corpus text for matching
func NewCorpus(raw string) *Corpus {
	text := Normalize(raw)
	stems := make(map[string]struct{})
	for _, tok := range Tokenize(text) {
		if st := Stem(tok); st != "" {
			stems[st] = struct{}{}
		}
	}
	return &Corpus{text: text, stems: stems}
}

// Text returns the normalized corpus
func (c *Corpus) Text() string {
	return c.text
}

// HitWeight returns 1 for an exact substring hit, 0.5 when every stemmed
// token of the phrase occurs somewhere in the corpus, else 0.
func (c *Corpus) HitWeight(phrase string) float64 {
	p := Normalize(phrase)
	if p == "" {
		return 0
	}
	if strings.Contains(c.text, p) {
		return 1
	}

	// tokens that stem to nothing ("s") are ignored
	matched := 0
	for _, part := range Tokenize(p) {
		stem := Stem(part)
		if stem == "" {
			continue
		}
		if _, ok := c.stems[stem]; !ok {
			return 0
		}
		matched++
	}
	if matched == 0 {
		return 0
	}
	return 0.5
}
