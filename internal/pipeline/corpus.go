package pipeline

import (
	"strings"

	"github.com/ppiankov/impactlens/internal/model"
	"github.com/ppiankov/impactlens/internal/taxonomy"
)

// corpusSeparator joins document contents
const corpusSeparator = "\n"

// Assembler turns acquired documents into scoring input
type Assembler struct {
	matcher       *taxonomy.AttributeMatcher
	snippetLength int
}

// NewAssembler creates an assembler deriving attributes with matcher
func NewAssembler(matcher *taxonomy.AttributeMatcher, snippetLength int) *Assembler {
	return &Assembler{matcher: matcher, snippetLength: snippetLength}
}

// Assemble concatenates document contents, derives attribute flags from the
// lowercase corpus and emits one unassigned evidence entry per document.
// The stored corpus keeps its original case.
func (a *Assembler) Assemble(name, officialSite string, docs []model.Document) model.RawEntityData {
	contents := make([]string, 0, len(docs))
	evidence := make([]model.Evidence, 0, len(docs))
	for _, d := range docs {
		contents = append(contents, d.Content)
		evidence = append(evidence, model.Evidence{
			FactorID:    model.FactorUnassigned,
			URL:         d.URL,
			Title:       d.Title,
			Snippet:     truncateRunes(d.Content, a.snippetLength),
			PublishedAt: d.PublishedAt,
		})
	}

	corpus := strings.Join(contents, corpusSeparator)

	return model.RawEntityData{
		Name:         name,
		OfficialSite: officialSite,
		Attributes:   a.matcher.Match(strings.ToLower(corpus)),
		Corpus:       corpus,
		Evidence:     evidence,
	}
}

// truncateRunes returns the first n runes of s (n <= 0 keeps all)
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
