package model

import (
	"errors"
	"fmt"
	"time"
)

// Config holds all runtime settings for impactlens
type Config struct {
	HTTP         HTTPConfig         `mapstructure:"http" yaml:"http"`
	Fetch        FetchConfig        `mapstructure:"fetch" yaml:"fetch"`
	Robots       RobotsConfig       `mapstructure:"robots" yaml:"robots"`
	Discovery    DiscoveryConfig    `mapstructure:"discovery" yaml:"discovery"`
	RateLimiting RateLimitingConfig `mapstructure:"rate_limiting" yaml:"rate_limiting"`
	Cache        CacheConfig        `mapstructure:"cache" yaml:"cache"`
	Scoring      ScoringConfig      `mapstructure:"scoring" yaml:"scoring"`
	Provenance   ProvenanceConfig   `mapstructure:"provenance" yaml:"provenance"`
	Batch        BatchConfig        `mapstructure:"batch" yaml:"batch"`
	Server       ServerConfig       `mapstructure:"server" yaml:"server"`
	Logging      LoggingConfig      `mapstructure:"logging" yaml:"logging"`
	Output       OutputConfig       `mapstructure:"output" yaml:"output"`
}

// HTTPConfig controls the shared HTTP client
type HTTPConfig struct {
	UserAgent    string `mapstructure:"user_agent" yaml:"user_agent"`
	MaxBodyBytes int64  `mapstructure:"max_body_bytes" yaml:"max_body_bytes"` // HTML ceiling
	MaxRedirects int    `mapstructure:"max_redirects" yaml:"max_redirects"`
	HTTPProxy    string `mapstructure:"http_proxy" yaml:"http_proxy"`
	HTTPSProxy   string `mapstructure:"https_proxy" yaml:"https_proxy"`
	NoProxy      string `mapstructure:"no_proxy" yaml:"no_proxy"`
	InsecureTLS  bool   `mapstructure:"insecure_tls" yaml:"insecure_tls"`
}

// FetchConfig bounds the fetch scheduler
type FetchConfig struct {
	MaxConcurrency   int           `mapstructure:"max_concurrency" yaml:"max_concurrency"`
	PerDomainLimit   int           `mapstructure:"per_domain_limit" yaml:"per_domain_limit"`
	Timeout          time.Duration `mapstructure:"timeout" yaml:"timeout"` // per individual fetch
	PDFMaxBytes      int64         `mapstructure:"pdf_max_bytes" yaml:"pdf_max_bytes"`
	MinContentLength int           `mapstructure:"min_content_length" yaml:"min_content_length"`
}

// RobotsConfig controls robots.txt handling
type RobotsConfig struct {
	Respect bool          `mapstructure:"respect" yaml:"respect"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// DiscoveryConfig controls candidate URL discovery
type DiscoveryConfig struct {
	EncyclopediaAPI      string        `mapstructure:"encyclopedia_api" yaml:"encyclopedia_api"`
	DisambiguationSuffix string        `mapstructure:"disambiguation_suffix" yaml:"disambiguation_suffix"`
	Timeout              time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxCandidates        int           `mapstructure:"max_candidates" yaml:"max_candidates"`
	MaxChildSitemaps     int           `mapstructure:"max_child_sitemaps" yaml:"max_child_sitemaps"`
	ConventionalPaths    []string      `mapstructure:"conventional_paths" yaml:"conventional_paths"`
	SocialDomains        []string      `mapstructure:"social_domains" yaml:"social_domains"`
	NewsFeedEnabled      bool          `mapstructure:"news_feed_enabled" yaml:"news_feed_enabled"`
	NewsFeedURL          string        `mapstructure:"news_feed_url" yaml:"news_feed_url"` // %s is the escaped entity name
}

// RateLimitingConfig sets the per-host politeness rate
type RateLimitingConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second"` // 0 disables
	BurstSize         int     `mapstructure:"burst_size" yaml:"burst_size"`
}

// CacheConfig controls the in-memory document cache
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled" yaml:"enabled"`
	TTL     time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

// ScoringConfig controls factor scoring
type ScoringConfig struct {
	TaxonomyFile      string  `mapstructure:"taxonomy_file" yaml:"taxonomy_file"` // empty uses the built-in taxonomy
	HalfLifeMonths    float64 `mapstructure:"half_life_months" yaml:"half_life_months"`
	MissingDateWeight float64 `mapstructure:"missing_date_weight" yaml:"missing_date_weight"`
	MaxCitations      int     `mapstructure:"max_citations" yaml:"max_citations"`
	SnippetLength     int     `mapstructure:"snippet_length" yaml:"snippet_length"`
}

// ProvenanceConfig maps source domains to trust weights
type ProvenanceConfig struct {
	RegulatoryDomains []string `mapstructure:"regulatory_domains" yaml:"regulatory_domains"`
	FinancialDomains  []string `mapstructure:"financial_domains" yaml:"financial_domains"`
	EditorialDomains  []string `mapstructure:"editorial_domains" yaml:"editorial_domains"`
	RegulatoryWeight  float64  `mapstructure:"regulatory_weight" yaml:"regulatory_weight"`
	FinancialWeight   float64  `mapstructure:"financial_weight" yaml:"financial_weight"`
	EditorialWeight   float64  `mapstructure:"editorial_weight" yaml:"editorial_weight"`
	CommercialWeight  float64  `mapstructure:"commercial_weight" yaml:"commercial_weight"` // any other .com host
	DefaultWeight     float64  `mapstructure:"default_weight" yaml:"default_weight"`
}

// BatchConfig bounds multi-entity runs
type BatchConfig struct {
	MaxEntities int `mapstructure:"max_entities" yaml:"max_entities"`
}

// ServerConfig controls the HTTP endpoint
type ServerConfig struct {
	Addr           string        `mapstructure:"addr" yaml:"addr"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
}

// LoggingConfig controls the zap logger
type LoggingConfig struct {
	Development bool `mapstructure:"development" yaml:"development"`
}

// OutputConfig controls report output
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format"` // json, csv, text
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() Config {
	return Config{
		HTTP: HTTPConfig{
			UserAgent:    "ImpactLens/1.0 (+https://github.com/ppiankov/impactlens)",
			MaxBodyBytes: 5 << 20,
			MaxRedirects: 3,
		},
		Fetch: FetchConfig{
			MaxConcurrency:   4,
			PerDomainLimit:   2,
			Timeout:          20 * time.Second,
			PDFMaxBytes:      15 << 20,
			MinContentLength: 300,
		},
		Robots: RobotsConfig{
			Respect: true,
			Timeout: 5 * time.Second,
		},
		Discovery: DiscoveryConfig{
			EncyclopediaAPI:      "https://en.wikipedia.org/w/api.php",
			DisambiguationSuffix: " (company)",
			Timeout:              8 * time.Second,
			MaxCandidates:        20,
			MaxChildSitemaps:     3,
			ConventionalPaths: []string{
				"/sustainability",
				"/esg",
				"/impact",
				"/corporate-responsibility",
				"/responsibility",
				"/community",
				"/foundation",
				"/reports",
				"/sustainability/report",
				"/esg/report",
				"/about/sustainability",
				"/investors",
				"/news",
			},
			SocialDomains: []string{
				"facebook.com",
				"twitter.com",
				"x.com",
				"linkedin.com",
				"instagram.com",
				"youtube.com",
				"tiktok.com",
			},
			NewsFeedURL: "https://news.google.com/rss/search?q=%s",
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2,
			BurstSize:         2,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     time.Hour,
		},
		Scoring: ScoringConfig{
			HalfLifeMonths:    18,
			MissingDateWeight: 0.7,
			MaxCitations:      3,
			SnippetLength:     1000,
		},
		Provenance: ProvenanceConfig{
			RegulatoryDomains: []string{"sec.gov"},
			FinancialDomains:  []string{"ft.com", "wsj.com", "bloomberg.com"},
			EditorialDomains:  []string{"nytimes.com", "reuters.com", "apnews.com", "washingtonpost.com"},
			RegulatoryWeight:  1.0,
			FinancialWeight:   0.85,
			EditorialWeight:   0.8,
			CommercialWeight:  0.6,
			DefaultWeight:     0.5,
		},
		Batch: BatchConfig{
			MaxEntities: 25,
		},
		Server: ServerConfig{
			Addr:           ":8787",
			RequestTimeout: 3 * time.Minute,
		},
		Output: OutputConfig{
			Format: "text",
		},
	}
}

// Validate checks that the configuration is usable
func (c Config) Validate() error {
	var errs []error
	if c.Fetch.MaxConcurrency <= 0 {
		errs = append(errs, errors.New("fetch.max_concurrency must be positive"))
	}
	if c.Fetch.PerDomainLimit <= 0 {
		errs = append(errs, errors.New("fetch.per_domain_limit must be positive"))
	}
	if c.Fetch.Timeout <= 0 {
		errs = append(errs, errors.New("fetch.timeout must be positive"))
	}
	if c.Fetch.PDFMaxBytes <= 0 {
		errs = append(errs, errors.New("fetch.pdf_max_bytes must be positive"))
	}
	if c.Fetch.MinContentLength < 0 {
		errs = append(errs, errors.New("fetch.min_content_length must not be negative"))
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("http.max_body_bytes must be positive"))
	}
	if c.Discovery.MaxCandidates <= 0 {
		errs = append(errs, errors.New("discovery.max_candidates must be positive"))
	}
	if c.Scoring.HalfLifeMonths <= 0 {
		errs = append(errs, errors.New("scoring.half_life_months must be positive"))
	}
	if c.Scoring.MissingDateWeight < 0 || c.Scoring.MissingDateWeight > 1 {
		errs = append(errs, fmt.Errorf("scoring.missing_date_weight %.2f outside [0,1]", c.Scoring.MissingDateWeight))
	}
	if c.Scoring.MaxCitations <= 0 {
		errs = append(errs, errors.New("scoring.max_citations must be positive"))
	}
	if c.RateLimiting.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("rate_limiting.requests_per_second must not be negative"))
	}
	if c.Batch.MaxEntities <= 0 {
		errs = append(errs, errors.New("batch.max_entities must be positive"))
	}
	return errors.Join(errs...)
}
