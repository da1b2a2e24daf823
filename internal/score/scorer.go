package score

import (
	"math"
	"strings"
	"time"

	"github.com/ppiankov/impactlens/internal/model"
)

const (
	// hitUnit is the base score contributed per unit of hit weight
	hitUnit = 0.25

	// qualityFloor is the share of the base kept even with zero quality
	qualityFloor = 0.6
)

// Scorer scores single taxonomy factors against a corpus
type Scorer struct {
	provenance     *ProvenanceClassifier
	halfLifeMonths float64
	missingDate    float64
	maxCitations   int
	now            func() time.Time
}

// NewScorer creates a factor scorer
func NewScorer(cfg model.ScoringConfig, provenance *ProvenanceClassifier) *Scorer {
	if provenance == nil {
		provenance = NewProvenanceClassifier(nil)
	}
	defaults := model.DefaultConfig().Scoring
	if cfg.HalfLifeMonths <= 0 {
		cfg.HalfLifeMonths = defaults.HalfLifeMonths
	}
	if cfg.MaxCitations <= 0 {
		cfg.MaxCitations = defaults.MaxCitations
	}
	return &Scorer{
		provenance:     provenance,
		halfLifeMonths: cfg.HalfLifeMonths,
		missingDate:    cfg.MissingDateWeight,
		maxCitations:   cfg.MaxCitations,
		now:            time.Now,
	}
}

// WithClock replaces the clock used for recency
func (s *Scorer) WithClock(now func() time.Time) *Scorer {
	s.now = now
	return s
}

// ScoreFactor returns a 0-100 score and up to maxCitations citations
func (s *Scorer) ScoreFactor(corpus *Corpus, factor model.Factor, evidence []model.Evidence) (int, []model.Citation) {
	return s.scoreAt(corpus, factor, evidence, s.now())
}

func (s *Scorer) scoreAt(corpus *Corpus, factor model.Factor, evidence []model.Evidence, now time.Time) (int, []model.Citation) {
	hits := 0.0
	seen := make(map[string]bool, len(factor.Keywords))
	for _, kw := range factor.Keywords {
		key := Normalize(kw)
		if seen[key] {
			continue
		}
		seen[key] = true
		hits += corpus.HitWeight(kw)
	}
	base := math.Min(1, hits*hitUnit)

	matched := s.evidenceFor(factor, evidence)
	quality := 0.0
	for _, ev := range matched {
		quality += s.provenance.Weight(ev.URL) * RecencyWeight(ev.PublishedAt, now, s.halfLifeMonths, s.missingDate)
	}
	quality /= math.Max(1, float64(len(matched)))

	score := roundHalfUp(100 * base * (qualityFloor + (1-qualityFloor)*quality))

	citations := make([]model.Citation, 0, len(matched))
	for _, ev := range matched {
		citations = append(citations, model.Citation{
			URL:         ev.URL,
			Title:       ev.Title,
			PublishedAt: ev.PublishedAt,
		})
	}
	return clampScore(score), citations
}

// evidenceFor returns the first evidence items whose snippet contains any keyword
func (s *Scorer) evidenceFor(factor model.Factor, evidence []model.Evidence) []model.Evidence {
	keywords := make([]string, 0, len(factor.Keywords))
	for _, kw := range factor.Keywords {
		if n := Normalize(kw); n != "" {
			keywords = append(keywords, n)
		}
	}

	var out []model.Evidence
	for _, ev := range evidence {
		if len(out) >= s.maxCitations {
			break
		}
		snippet := Normalize(ev.Snippet)
		for _, kw := range keywords {
			if strings.Contains(snippet, kw) {
				out = append(out, ev)
				break
			}
		}
	}
	return out
}

func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
