// Package extract converts fetched bodies into normalized plain-text documents.
package extract

import (
	"errors"

	"github.com/ppiankov/impactlens/internal/extract/adapters"
	"github.com/ppiankov/impactlens/internal/model"
)

// Extractor dispatches bodies to content adapters
type Extractor struct {
	registry     *adapters.Registry
	htmlMaxBytes int64
}

// NewExtractor creates an extractor with PDF and HTML size ceilings
func NewExtractor(pdfMaxBytes, htmlMaxBytes int64) *Extractor {
	return &Extractor{
		registry:     adapters.NewRegistry(pdfMaxBytes),
		htmlMaxBytes: htmlMaxBytes,
	}
}

// IsPDF reports whether url or contentType selects the PDF path
func IsPDF(url, contentType string) bool {
	return adapters.NewPDFAdapter(0).CanHandle(url, contentType)
}

// Extract returns a document with whitespace-collapsed content. It fails
// with a *model.ExtractionError when the body is too large, unparseable or
// empty after normalization.
func (e *Extractor) Extract(url string, body []byte, contentType string) (model.Document, error) {
	adapter := e.registry.FindAdapter(url, contentType)

	if adapter.Name() != "pdf" && e.htmlMaxBytes > 0 && int64(len(body)) > e.htmlMaxBytes {
		return model.Document{}, &model.ExtractionError{Kind: model.ExtractionTooLarge, URL: url}
	}

	doc, err := adapter.Extract(url, body)
	if err != nil {
		var extractErr *model.ExtractionError
		if errors.As(err, &extractErr) {
			return model.Document{}, err
		}
		return model.Document{}, &model.ExtractionError{Kind: model.ExtractionParse, URL: url, Err: err}
	}

	doc.URL = url
	doc.Title = adapters.CollapseWhitespace(doc.Title)
	doc.Content = adapters.CollapseWhitespace(doc.Content)
	if doc.ContentType == "" {
		doc.ContentType = contentType
	}
	if doc.Content == "" {
		return model.Document{}, &model.ExtractionError{Kind: model.ExtractionEmpty, URL: url}
	}
	return doc, nil
}
