package model

import "time"

// FactorUnassigned marks evidence not yet tied to a factor
const FactorUnassigned = "*"

// CandidateURL is a URL proposed for fetching
type CandidateURL struct {
	URL    string `json:"url"`
	Source string `json:"source,omitempty"` // path, sitemap, encyclopedia, news
}

// Document is the extracted text of one fetched URL
type Document struct {
	URL         string     `json:"url"`
	Title       string     `json:"title,omitempty"`
	Content     string     `json:"content"` // whitespace-collapsed plain text
	PublishedAt *time.Time `json:"published_at,omitempty"`
	ContentType string     `json:"content_type,omitempty"`
}

// Evidence ties a document snippet to a factor
type Evidence struct {
	FactorID    string     `json:"factor_id"`
	URL         string     `json:"url"`
	Title       string     `json:"title,omitempty"`
	Snippet     string     `json:"snippet"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// Attributes are coarse entity flags derived from the corpus
type Attributes struct {
	HeadquartersLocalMatch bool `json:"headquarters_local_match"` // locale
	NamedPartnerMatch      bool `json:"named_partner_match"`      // partnership
	AllianceMatch          bool `json:"alliance_match"`           // alliance
}

// Flag returns the attribute bound to an override name
func (a Attributes) Flag(name string) bool {
	switch name {
	case AttributeLocale:
		return a.HeadquartersLocalMatch
	case AttributePartnership:
		return a.NamedPartnerMatch
	case AttributeAlliance:
		return a.AllianceMatch
	default:
		return false
	}
}

// Attribute names used by override bindings
const (
	AttributeLocale      = "locale"
	AttributePartnership = "partnership"
	AttributeAlliance    = "alliance"
)

// RawEntityData is the scoring input for one entity
type RawEntityData struct {
	Name         string     `json:"name"`
	OfficialSite string     `json:"official_site,omitempty"`
	Attributes   Attributes `json:"attributes"`
	Corpus       string     `json:"-"`
	Evidence     []Evidence `json:"evidence"`
}
