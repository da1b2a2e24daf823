package model

// SkipReason explains what happened to one candidate URL
type SkipReason string

const (
	ReasonFetched          SkipReason = "fetched"
	ReasonCached           SkipReason = "cached"
	ReasonPerDomainLimit   SkipReason = "per_domain_limit"
	ReasonRobotsDisallowed SkipReason = "robots_disallowed"
	ReasonTimeout          SkipReason = "timeout"
	ReasonFetchError       SkipReason = "fetch_error"
	ReasonTooLarge         SkipReason = "too_large"
	ReasonEmpty            SkipReason = "empty"
	ReasonTooShort         SkipReason = "too_short"
	ReasonInvalidURL       SkipReason = "invalid_url"
	ReasonCanceled         SkipReason = "canceled"
)

// FetchOutcome records the fate of one URL in a fetch run
type FetchOutcome struct {
	URL    string     `json:"url"`
	Reason SkipReason `json:"reason"`
	Err    error      `json:"-"`
}

// Acquired reports whether the URL produced a document
func (o FetchOutcome) Acquired() bool {
	return o.Reason == ReasonFetched || o.Reason == ReasonCached
}

// DiscoveryNote records a discovery source that produced nothing
type DiscoveryNote struct {
	Source string `json:"source"`
	Err    error  `json:"-"`
}
