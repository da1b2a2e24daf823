package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// errPageMissing is returned when neither the name nor its disambiguated form has a page
var errPageMissing = errors.New("encyclopedia page missing")

// bareDomainLink matches an absolute link whose host looks like a registered domain
var bareDomainLink = regexp.MustCompile(`(?i)^https?://[a-z0-9.-]+\.[a-z]{2,}(/|$)`)

// encyclopediaResponse mirrors the MediaWiki query API
type encyclopediaResponse struct {
	Query struct {
		Pages map[string]encyclopediaPage `json:"pages"`
	} `json:"query"`
}

type encyclopediaPage struct {
	Title    string `json:"title"`
	FullURL  string `json:"fullurl"`
	ExtLinks []struct {
		URL string `json:"*"`
	} `json:"extlinks"`
	Missing json.RawMessage `json:"missing"`
	Invalid json.RawMessage `json:"invalid"`
}

func (p *encyclopediaPage) exists() bool {
	return p != nil && p.Missing == nil && p.Invalid == nil
}

// resolvePage looks up name, retrying once with the disambiguation suffix
// when the first lookup fails or reports the page missing
func (d *Discoverer) resolvePage(ctx context.Context, name string) (*encyclopediaPage, error) {
	name = strings.TrimSpace(name)
	if name == "" || d.cfg.EncyclopediaAPI == "" {
		return nil, errPageMissing
	}

	page, err := d.lookupPage(ctx, name)
	if err == nil && page.exists() {
		return page, nil
	}

	if d.cfg.DisambiguationSuffix != "" {
		page, retryErr := d.lookupPage(ctx, name+d.cfg.DisambiguationSuffix)
		if retryErr == nil && page.exists() {
			return page, nil
		}
		if retryErr != nil {
			err = retryErr
		}
	}

	if err != nil {
		return nil, err
	}
	return nil, errPageMissing
}

// lookupPage queries external links and the canonical URL of one title
func (d *Discoverer) lookupPage(ctx context.Context, title string) (*encyclopediaPage, error) {
	apiURL, err := url.Parse(d.cfg.EncyclopediaAPI)
	if err != nil {
		return nil, fmt.Errorf("parse encyclopedia api: %w", err)
	}
	q := apiURL.Query()
	q.Set("action", "query")
	q.Set("format", "json")
	q.Set("prop", "extlinks|info")
	q.Set("inprop", "url")
	q.Set("ellimit", "max")
	q.Set("titles", title)
	q.Set("redirects", "1")
	apiURL.RawQuery = q.Encode()

	body, err := d.get(ctx, apiURL.String())
	if err != nil {
		return nil, err
	}

	var resp encyclopediaResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode encyclopedia response: %w", err)
	}
	for _, page := range resp.Query.Pages {
		page := page
		return &page, nil
	}
	return nil, errPageMissing
}

// originFromPage returns scheme://host of the first bare-domain external
// link that is not a social network, or ""
func (d *Discoverer) originFromPage(page *encyclopediaPage) string {
	if page == nil {
		return ""
	}
	for _, link := range page.ExtLinks {
		if !bareDomainLink.MatchString(link.URL) {
			continue
		}
		u, err := url.Parse(link.URL)
		if err != nil || u.Host == "" {
			continue
		}
		if d.isSocial(u.Hostname()) {
			continue
		}
		return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host)
	}
	return ""
}

// isSocial reports whether host is a social domain or one of its subdomains
func (d *Discoverer) isSocial(host string) bool {
	host = strings.ToLower(host)
	for _, domain := range d.cfg.SocialDomains {
		domain = strings.ToLower(strings.TrimSpace(domain))
		if domain == "" {
			continue
		}
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}
