package adapters

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ppiankov/impactlens/internal/model"
)

// wikipediaNoise holds article furniture that carries no prose
const wikipediaNoise = "style, sup.reference, .mw-editsection, .navbox, .vertical-navbox, .reflist, .mw-references-wrap, .hatnote, .metadata, #toc, .toc"

// WikipediaAdapter extracts article prose from encyclopedia pages
type WikipediaAdapter struct {
	BaseAdapter
	fallback *HTMLAdapter
}

// NewWikipediaAdapter creates a new Wikipedia adapter
func NewWikipediaAdapter() *WikipediaAdapter {
	return &WikipediaAdapter{fallback: NewHTMLAdapter()}
}

// Name returns the adapter name
func (a *WikipediaAdapter) Name() string {
	return "wikipedia"
}

// CanHandle checks if this is a Wikipedia article URL
func (a *WikipediaAdapter) CanHandle(rawURL string, contentType string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return (host == "wikipedia.org" || strings.HasSuffix(host, ".wikipedia.org")) &&
		strings.HasPrefix(u.Path, "/wiki/")
}

// Extract returns the parser output of the article, infobox included
func (a *WikipediaAdapter) Extract(rawURL string, body []byte) (model.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return model.Document{}, fmt.Errorf("parse html: %w", err)
	}

	content := doc.Find("#mw-content-text .mw-parser-output").First()
	if content.Length() == 0 {
		return a.fallback.Extract(rawURL, body)
	}
	content.Find(wikipediaNoise).Remove()

	title := CollapseWhitespace(doc.Find("#firstHeading").First().Text())
	if title == "" {
		title = strings.TrimSuffix(CollapseWhitespace(doc.Find("title").First().Text()), " - Wikipedia")
	}

	return model.Document{
		URL:     rawURL,
		Title:   title,
		Content: a.ExtractText(content.Get(0)),
	}, nil
}
