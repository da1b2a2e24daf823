package discovery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/antchfx/xmlquery"
)

// impactPath selects sitemap entries worth fetching
var impactPath = regexp.MustCompile(`(?i)(sustainab|esg|impact|responsib|community|philanthropy|report|csr)`)

var pdfPath = regexp.MustCompile(`(?i)\.pdf$`)

// sitemapNames are tried in order under the origin
var sitemapNames = []string{"/sitemap.xml", "/sitemap_index.xml"}

// sitemapEntries reads the origin's sitemaps, follows child sitemaps one
// level deep and returns the page URLs that look impact related
func (d *Discoverer) sitemapEntries(ctx context.Context, origin string) ([]string, error) {
	var (
		out      []string
		errs     []error
		children []string
	)
	seenChild := make(map[string]bool)

	for _, name := range sitemapNames {
		pages, childs, err := d.readSitemap(ctx, origin+name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, filterSitemapPages(pages)...)
		for _, c := range childs {
			if !seenChild[c] {
				seenChild[c] = true
				children = append(children, c)
			}
		}
	}

	for i, child := range children {
		if i >= d.cfg.MaxChildSitemaps {
			break
		}
		pages, _, err := d.readSitemap(ctx, child)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, filterSitemapPages(pages)...)
	}

	return out, errors.Join(errs...)
}

// readSitemap returns the page locations of a urlset and the child
// locations of a sitemap index
func (d *Discoverer) readSitemap(ctx context.Context, sitemapURL string) (pages, children []string, err error) {
	body, err := d.get(ctx, sitemapURL)
	if err != nil {
		return nil, nil, err
	}

	doc, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("parse sitemap %s: %w", sitemapURL, err)
	}

	for _, n := range xmlquery.Find(doc, "//urlset/url/loc") {
		if loc := strings.TrimSpace(n.InnerText()); loc != "" {
			pages = append(pages, loc)
		}
	}
	for _, n := range xmlquery.Find(doc, "//sitemapindex/sitemap/loc") {
		if loc := strings.TrimSpace(n.InnerText()); loc != "" {
			children = append(children, loc)
		}
	}
	return pages, children, nil
}

// filterSitemapPages keeps PDFs and pages whose path matches an impact keyword
func filterSitemapPages(locs []string) []string {
	var out []string
	for _, loc := range locs {
		path := loc
		if u, err := url.Parse(loc); err == nil {
			path = u.Path
		}
		if pdfPath.MatchString(path) || impactPath.MatchString(path) {
			out = append(out, loc)
		}
	}
	return out
}
