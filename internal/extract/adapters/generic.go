package adapters

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/ppiankov/impactlens/internal/model"
)

// minArticleChars is the shortest main-content text accepted before falling back to body text
const minArticleChars = 140

// HTMLAdapter extracts the main readable content of an HTML page
type HTMLAdapter struct {
	BaseAdapter
}

// NewHTMLAdapter creates the fallback HTML adapter
func NewHTMLAdapter() *HTMLAdapter {
	return &HTMLAdapter{}
}

// Name returns the adapter name
func (a *HTMLAdapter) Name() string {
	return "html"
}

// CanHandle always returns true (fallback adapter)
func (a *HTMLAdapter) CanHandle(url string, contentType string) bool {
	return true
}

// Extract runs readability over the page and falls back to body text
func (a *HTMLAdapter) Extract(rawURL string, body []byte) (model.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return model.Document{}, fmt.Errorf("parse html: %w", err)
	}

	article := a.readable(rawURL, body)
	out := model.Document{
		URL:         rawURL,
		Title:       a.title(doc, article.Title),
		PublishedAt: a.published(doc),
	}

	if text := CollapseWhitespace(article.TextContent); len(text) >= minArticleChars {
		out.Content = text
	} else {
		out.Content = a.bodyText(doc)
	}
	return out, nil
}

// readable returns the readability article, or a zero article when parsing fails
func (a *HTMLAdapter) readable(rawURL string, body []byte) (article readability.Article) {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		pageURL = &url.URL{}
	}
	defer func() {
		if r := recover(); r != nil {
			article = readability.Article{}
		}
	}()
	article, err = readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		return readability.Article{}
	}
	return article
}

// title prefers the article title, then the document <title>
func (a *HTMLAdapter) title(doc *goquery.Document, readable string) string {
	if og, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
		if og = CollapseWhitespace(og); og != "" {
			return og
		}
	}
	if h1 := CollapseWhitespace(doc.Find("article h1").First().Text()); h1 != "" {
		return h1
	}
	if readable = CollapseWhitespace(readable); readable != "" {
		return readable
	}
	return CollapseWhitespace(doc.Find("title").First().Text())
}

// published prefers article:published_time, then the first <time datetime>
func (a *HTMLAdapter) published(doc *goquery.Document) *time.Time {
	if v := strings.TrimSpace(doc.Find(`meta[property="article:published_time"]`).First().AttrOr("content", "")); v != "" {
		return ParsePublished(v)
	}
	if v := strings.TrimSpace(doc.Find("time[datetime]").First().AttrOr("datetime", "")); v != "" {
		return ParsePublished(v)
	}
	return nil
}

// bodyText returns all visible body text
func (a *HTMLAdapter) bodyText(doc *goquery.Document) string {
	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}
	var parts []string
	for _, n := range root.Nodes {
		parts = append(parts, a.ExtractText(n))
	}
	return CollapseWhitespace(strings.Join(parts, " "))
}
