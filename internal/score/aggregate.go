package score

import (
	"math"
	"strings"
	"time"

	"github.com/ppiankov/impactlens/internal/model"
	"github.com/ppiankov/impactlens/internal/taxonomy"
)

// Aggregator rolls factor scores into category and overall scores
type Aggregator struct {
	taxonomy *taxonomy.Taxonomy
	scorer   *Scorer
}

// NewAggregator creates an aggregator over a validated taxonomy
func NewAggregator(tax *taxonomy.Taxonomy, scorer *Scorer) *Aggregator {
	return &Aggregator{taxonomy: tax, scorer: scorer}
}

// Aggregate scores every factor of raw and builds the entity result.
// It is a pure function of raw and the scorer clock.
func (a *Aggregator) Aggregate(raw model.RawEntityData) model.EntityResult {
	now := a.scorer.now()
	corpus := NewCorpus(raw.Corpus)
	name := Normalize(raw.Name)

	result := model.EntityResult{
		Name:         raw.Name,
		OfficialSite: raw.OfficialSite,
		Attributes:   raw.Attributes,
		Factors:      make([]model.FactorScore, 0, a.taxonomy.FactorCount()),
	}

	overall := 0.0
	positive := 0
	for _, cat := range a.taxonomy.Categories {
		weighted := 0.0
		totalWeight := 0.0
		for _, f := range cat.Factors {
			fs := a.scoreFactor(corpus, name, cat.Key, f, raw, now)
			if fs.Score > 0 {
				positive++
			}
			weighted += float64(fs.Score) / 100 * f.Weight
			totalWeight += f.Weight
			result.Factors = append(result.Factors, fs)
		}

		catScore := 0
		if totalWeight > 0 {
			catScore = clampScore(roundHalfUp(100 * weighted / totalWeight))
		}
		result.Categories.Set(cat.Key, catScore)
		overall += float64(catScore) * cat.Weight
	}

	result.Overall = math.Min(100, roundTenth(overall))
	result.Tier = TierFor(result.Overall)
	result.LocalLabel = LocalLabelFor(result.Categories.Keystone)
	if total := len(result.Factors); total > 0 {
		result.DataAvailability = roundHalfUp(100 * float64(positive) / float64(total))
	}
	return result
}

func (a *Aggregator) scoreFactor(corpus *Corpus, name string, key model.CategoryKey, f model.Factor, raw model.RawEntityData, now time.Time) model.FactorScore {
	score, citations := a.scorer.scoreAt(corpus, f, raw.Evidence, now)
	fs := model.FactorScore{
		FactorID:   f.ID,
		FactorName: f.Name,
		Category:   key,
		Weight:     f.Weight,
		Score:      score,
		Citations:  citations,
	}

	if key == model.CategoryKeystone && f.Override != "" && raw.Attributes.Flag(f.Override) {
		fs.Score = 100
		fs.Overridden = true
	}
	if key == model.CategoryBuild && f.NameFloor != nil && nameMatches(name, f.NameFloor.Patterns) && fs.Score < f.NameFloor.Value {
		fs.Score = f.NameFloor.Value
		fs.Overridden = true
	}
	return fs
}

func nameMatches(name string, patterns []string) bool {
	for _, p := range patterns {
		if p = Normalize(p); p != "" && strings.Contains(name, p) {
			return true
		}
	}
	return false
}

// TierFor classifies an overall score; lower bounds are inclusive
func TierFor(overall float64) model.Tier {
	switch {
	case overall >= 75:
		return model.TierHigh
	case overall >= 50:
		return model.TierModerate
	default:
		return model.TierLow
	}
}

// LocalLabelFor derives the qualitative label from the keystone score
func LocalLabelFor(keystone int) string {
	switch {
	case keystone > 50:
		return model.LabelStrongLocal
	case keystone > 25:
		return model.LabelModerateLocal
	default:
		return model.LabelLimitedLocal
	}
}

func roundTenth(x float64) float64 {
	return math.Floor(x*10+0.5) / 10
}
