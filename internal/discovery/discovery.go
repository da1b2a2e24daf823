// Package discovery proposes candidate source URLs for a named entity.
package discovery

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/ppiankov/impactlens/internal/model"
	"go.uber.org/zap"
)

// Candidate sources, in insertion order
const (
	SourcePath         = "path"
	SourceSitemap      = "sitemap"
	SourceEncyclopedia = "encyclopedia"
	SourceNews         = "news"
)

// maxDiscoveryBytes bounds any single discovery response body
const maxDiscoveryBytes = 10 << 20

var mediaFile = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|mp4|zip)$`)

// Discovery is everything found for one entity name
type Discovery struct {
	Origin          string                `json:"origin,omitempty"`
	EncyclopediaURL string                `json:"encyclopedia_url,omitempty"`
	Candidates      []model.CandidateURL  `json:"candidates"`
	Notes           []model.DiscoveryNote `json:"notes,omitempty"`
}

// URLs returns the candidate URLs in order
func (d Discovery) URLs() []string {
	urls := make([]string, 0, len(d.Candidates))
	for _, c := range d.Candidates {
		urls = append(urls, c.URL)
	}
	return urls
}

// Discoverer resolves an official site and candidate pages for an entity.
// Every network or parse failure degrades to "nothing from that source".
type Discoverer struct {
	client    *http.Client
	cfg       model.DiscoveryConfig
	userAgent string
	logger    *zap.Logger
}

// NewDiscoverer creates a discoverer using client for all lookups
func NewDiscoverer(client *http.Client, cfg model.DiscoveryConfig, userAgent string, logger *zap.Logger) *Discoverer {
	if client == nil {
		client = &http.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Discoverer{
		client:    client,
		cfg:       cfg,
		userAgent: userAgent,
		logger:    logger,
	}
}

// DiscoverOrigin returns the entity's official site origin, or "" if none was found
func (d *Discoverer) DiscoverOrigin(ctx context.Context, name string) string {
	page, err := d.resolvePage(ctx, name)
	if err != nil {
		d.logger.Debug("encyclopedia lookup failed", zap.String("entity", name), zap.Error(err))
		return ""
	}
	return d.originFromPage(page)
}

// DiscoverCandidates returns at most MaxCandidates URLs for name. origin may be empty.
func (d *Discoverer) DiscoverCandidates(ctx context.Context, name, origin string) []model.CandidateURL {
	page, _ := d.resolvePage(ctx, name)
	var notes []model.DiscoveryNote
	return d.candidates(ctx, name, origin, page, &notes)
}

// Discover resolves the origin and candidates with a single encyclopedia lookup
func (d *Discoverer) Discover(ctx context.Context, name string) Discovery {
	var out Discovery

	page, err := d.resolvePage(ctx, name)
	if err != nil {
		out.Notes = append(out.Notes, model.DiscoveryNote{Source: SourceEncyclopedia, Err: err})
	} else {
		out.Origin = d.originFromPage(page)
		out.EncyclopediaURL = page.FullURL
	}

	out.Candidates = d.candidates(ctx, name, out.Origin, page, &out.Notes)

	d.logger.Debug("discovery complete",
		zap.String("entity", name),
		zap.String("origin", out.Origin),
		zap.Int("candidates", len(out.Candidates)),
		zap.Int("notes", len(out.Notes)))
	return out
}

// candidates collects conventional paths, sitemap entries, the encyclopedia
// page and news links, then filters media files, dedupes and caps the list
func (d *Discoverer) candidates(ctx context.Context, name, origin string, page *encyclopediaPage, notes *[]model.DiscoveryNote) []model.CandidateURL {
	set := newCandidateSet(d.cfg.MaxCandidates)

	if origin != "" {
		origin = strings.TrimRight(origin, "/")
		for _, p := range d.cfg.ConventionalPaths {
			set.add(origin+p, SourcePath)
		}

		entries, err := d.sitemapEntries(ctx, origin)
		if len(entries) == 0 {
			*notes = append(*notes, model.DiscoveryNote{Source: SourceSitemap, Err: err})
		}
		for _, u := range entries {
			set.add(u, SourceSitemap)
		}
	}

	if page != nil && page.FullURL != "" {
		set.add(page.FullURL, SourceEncyclopedia)
	}

	if d.cfg.NewsFeedEnabled && d.cfg.NewsFeedURL != "" {
		links, err := d.newsLinks(ctx, name)
		if len(links) == 0 {
			*notes = append(*notes, model.DiscoveryNote{Source: SourceNews, Err: err})
		}
		for _, u := range links {
			set.add(u, SourceNews)
		}
	}

	return set.list()
}

// candidateSet keeps first-found order and drops media files and duplicates
type candidateSet struct {
	seen  map[string]bool
	items []model.CandidateURL
	limit int
}

func newCandidateSet(limit int) *candidateSet {
	return &candidateSet{seen: make(map[string]bool), limit: limit}
}

func (s *candidateSet) add(u, source string) {
	u = strings.TrimSpace(u)
	if u == "" || s.seen[u] || mediaFile.MatchString(u) {
		return
	}
	s.seen[u] = true
	s.items = append(s.items, model.CandidateURL{URL: u, Source: source})
}

func (s *candidateSet) list() []model.CandidateURL {
	if s.limit > 0 && len(s.items) > s.limit {
		return s.items[:s.limit]
	}
	return s.items
}

// get performs a bounded GET under the discovery timeout
func (d *Discoverer) get(ctx context.Context, rawURL string) ([]byte, error) {
	if d.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if d.userAgent != "" {
		req.Header.Set("User-Agent", d.userAgent)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDiscoveryBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rawURL, err)
	}
	return body, nil
}
