package score

import (
	"net/url"
	"strings"

	"github.com/ppiankov/impactlens/internal/model"
)

// ProvenanceClassifier maps a citation URL to a trust weight by source domain
type ProvenanceClassifier struct {
	config model.ProvenanceConfig
	tiers  []domainTier
}

type domainTier struct {
	domains []string
	weight  float64
}

// NewProvenanceClassifier creates a classifier; nil uses the defaults
func NewProvenanceClassifier(config *model.ProvenanceConfig) *ProvenanceClassifier {
	if config == nil {
		defaults := model.DefaultConfig().Provenance
		config = &defaults
	}

	return &ProvenanceClassifier{
		config: *config,
		tiers: []domainTier{
			{domains: normalizeDomains(config.RegulatoryDomains), weight: config.RegulatoryWeight},
			{domains: normalizeDomains(config.FinancialDomains), weight: config.FinancialWeight},
			{domains: normalizeDomains(config.EditorialDomains), weight: config.EditorialWeight},
		},
	}
}

// Weight returns the provenance weight of a URL
func (p *ProvenanceClassifier) Weight(rawURL string) float64 {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return p.config.DefaultWeight
	}

	host := strings.TrimSuffix(strings.ToLower(parsed.Hostname()), ".")
	if host == "" {
		return p.config.DefaultWeight
	}

	for _, tier := range p.tiers {
		for _, domain := range tier.domains {
			if matchesDomain(host, domain) {
				return tier.weight
			}
		}
	}

	if strings.HasSuffix(host, ".com") {
		return p.config.CommercialWeight
	}

	return p.config.DefaultWeight
}

// matchesDomain reports whether host is domain or one of its subdomains
func matchesDomain(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}

func normalizeDomains(domains []string) []string {
	out := make([]string, 0, len(domains))
	for _, d := range domains {
		d = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(d)), ".")
		if d != "" {
			out = append(out, d)
		}
	}
	return out
}
