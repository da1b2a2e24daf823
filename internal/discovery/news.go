package discovery

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"
)

// newsLinks returns item links from the configured search feed for name
func (d *Discoverer) newsLinks(ctx context.Context, name string) ([]string, error) {
	feedURL := d.cfg.NewsFeedURL
	if strings.Contains(feedURL, "%s") {
		feedURL = fmt.Sprintf(feedURL, url.QueryEscape(name))
	}

	body, err := d.get(ctx, feedURL)
	if err != nil {
		return nil, err
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse news feed: %w", err)
	}

	links := make([]string, 0, len(feed.Items))
	for _, it := range feed.Items {
		if link := strings.TrimSpace(it.Link); link != "" {
			links = append(links, link)
		}
	}
	return links, nil
}
