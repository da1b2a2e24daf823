package adapters

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/ppiankov/impactlens/internal/model"
)

// PDFAdapter extracts plain text from PDF documents
type PDFAdapter struct {
	maxBytes int64
}

// NewPDFAdapter creates a PDF adapter with a byte ceiling
func NewPDFAdapter(maxBytes int64) *PDFAdapter {
	return &PDFAdapter{maxBytes: maxBytes}
}

// Name returns the adapter name
func (a *PDFAdapter) Name() string {
	return "pdf"
}

// CanHandle dispatches on the .pdf extension or a PDF content type
func (a *PDFAdapter) CanHandle(url string, contentType string) bool {
	return HasExtension(url, ".pdf") || strings.HasPrefix(strings.ToLower(contentType), "application/pdf")
}

// Extract rejects oversized bodies before parsing, then reads all page text
func (a *PDFAdapter) Extract(url string, body []byte) (doc model.Document, err error) {
	if a.maxBytes > 0 && int64(len(body)) > a.maxBytes {
		return model.Document{}, model.NewPDFTooLargeError(url, int64(len(body)), a.maxBytes)
	}

	// the parser panics on some malformed files
	defer func() {
		if r := recover(); r != nil {
			doc = model.Document{}
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return model.Document{}, fmt.Errorf("open pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return model.Document{}, fmt.Errorf("read pdf text: %w", err)
	}
	text, err := io.ReadAll(plain)
	if err != nil {
		return model.Document{}, fmt.Errorf("read pdf text: %w", err)
	}

	info := reader.Trailer().Key("Info")
	title := CollapseWhitespace(info.Key("Title").Text())
	if title == "" {
		title = FileName(url)
	}

	return model.Document{
		URL:         url,
		Title:       title,
		Content:     string(text),
		PublishedAt: ParsePDFDate(info.Key("CreationDate").Text()),
		ContentType: "application/pdf",
	}, nil
}
