package model

import "time"

// Tier is the coarse overall classification
type Tier string

const (
	TierHigh     Tier = "High Alignment"
	TierModerate Tier = "Moderate Alignment"
	TierLow      Tier = "Low Alignment"
)

// Qualitative labels derived from the keystone score
const (
	LabelStrongLocal   = "Strong Local Alignment"
	LabelModerateLocal = "Moderate Local Ties"
	LabelLimitedLocal  = "Limited Local Connection"
)

// Citation is a supporting source for a factor score
type Citation struct {
	URL         string     `json:"url"`
	Title       string     `json:"title,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// FactorScore is the computed score of one factor
type FactorScore struct {
	FactorID   string      `json:"factor_id"`
	FactorName string      `json:"factor_name"`
	Category   CategoryKey `json:"category"`
	Weight     float64     `json:"weight"`
	Score      int         `json:"score"` // 0-100
	Overridden bool        `json:"overridden,omitempty"`
	Citations  []Citation  `json:"citations"`
}

// CategoryScores holds the four rolled-up category scores
type CategoryScores struct {
	Build    int `json:"build"`
	Thrive   int `json:"thrive"`
	Sustain  int `json:"sustain"`
	Keystone int `json:"keystone"`
}

// Get returns the score for a category key
func (c CategoryScores) Get(key CategoryKey) int {
	switch key {
	case CategoryBuild:
		return c.Build
	case CategoryThrive:
		return c.Thrive
	case CategorySustain:
		return c.Sustain
	case CategoryKeystone:
		return c.Keystone
	default:
		return 0
	}
}

// Set stores the score for a category key
func (c *CategoryScores) Set(key CategoryKey, score int) {
	switch key {
	case CategoryBuild:
		c.Build = score
	case CategoryThrive:
		c.Thrive = score
	case CategorySustain:
		c.Sustain = score
	case CategoryKeystone:
		c.Keystone = score
	}
}

// EntityResult is the terminal artifact of one analysis run
type EntityResult struct {
	Name             string         `json:"name"`
	OfficialSite     string         `json:"official_site,omitempty"`
	Categories       CategoryScores `json:"categories"`
	Overall          float64        `json:"overall"` // one decimal
	Tier             Tier           `json:"tier"`
	DataAvailability int            `json:"data_availability"` // percent of factors scoring above zero
	LocalLabel       string         `json:"local_label"`
	Attributes       Attributes     `json:"attributes"`
	Factors          []FactorScore  `json:"factors"`
}
