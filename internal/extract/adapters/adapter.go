package adapters

import (
	"net/url"
	"path"
	"strings"

	"github.com/ppiankov/impactlens/internal/model"
	"golang.org/x/net/html"
)

// Adapter converts one kind of fetched body into a Document
type Adapter interface {
	// Name returns the adapter name
	Name() string

	// CanHandle checks if this adapter can handle the given URL/content
	CanHandle(url string, contentType string) bool

	// Extract turns the raw body into a document; Content may still contain
	// uncollapsed whitespace
	Extract(url string, body []byte) (model.Document, error)
}

// Registry manages content adapters
type Registry struct {
	adapters []Adapter
	generic  Adapter
}

// NewRegistry creates a registry with the PDF and encyclopedia adapters
// and the readability-style HTML adapter as fallback
func NewRegistry(pdfMaxBytes int64) *Registry {
	registry := &Registry{
		adapters: make([]Adapter, 0),
	}

	// PDF first: dispatch is by extension before any HTML heuristics
	registry.Register(NewPDFAdapter(pdfMaxBytes))
	registry.Register(NewWikipediaAdapter())

	registry.generic = NewHTMLAdapter()

	return registry
}

// Register registers a new adapter
func (r *Registry) Register(adapter Adapter) {
	r.adapters = append(r.adapters, adapter)
}

// FindAdapter finds the best adapter for the given URL and content type
func (r *Registry) FindAdapter(url string, contentType string) Adapter {
	for _, adapter := range r.adapters {
		if adapter.CanHandle(url, contentType) {
			return adapter
		}
	}

	return r.generic
}

// BaseAdapter provides common functionality for adapters
type BaseAdapter struct{}

// invisible elements never contribute text
var invisible = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"svg":      true,
	"iframe":   true,
	"head":     true,
}

// ExtractText extracts visible text content from a node, separating
// elements with spaces so adjacent words do not merge
func (b *BaseAdapter) ExtractText(n *html.Node) string {
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		switch node.Type {
		case html.TextNode:
			buf.WriteString(node.Data)
			return
		case html.ElementNode:
			if invisible[node.Data] {
				return
			}
		case html.CommentNode:
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if node.Type == html.ElementNode {
			buf.WriteString(" ")
		}
	}
	walk(n)
	return CollapseWhitespace(buf.String())
}

// CollapseWhitespace replaces whitespace runs with single spaces and trims
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// HasExtension reports whether the URL path ends in ext (case-insensitive)
func HasExtension(rawURL, ext string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return strings.HasSuffix(strings.ToLower(rawURL), ext)
	}
	return strings.EqualFold(path.Ext(u.Path), ext)
}

// FileName returns the unescaped last path segment of a URL
func FileName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	base := path.Base(u.Path)
	if base == "/" || base == "." {
		return ""
	}
	if unescaped, err := url.PathUnescape(base); err == nil {
		return unescaped
	}
	return base
}
