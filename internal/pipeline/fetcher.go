package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ppiankov/impactlens/internal/extract"
	"github.com/ppiankov/impactlens/internal/metrics"
	"github.com/ppiankov/impactlens/internal/model"
)

// Fetcher retrieves raw bodies for the extractor
type Fetcher struct {
	httpClient   *http.Client
	userAgent    string
	htmlMaxBytes int64
	pdfMaxBytes  int64
}

// NewFetcher creates a fetcher with separate HTML and PDF body ceilings
func NewFetcher(client *http.Client, userAgent string, htmlMaxBytes, pdfMaxBytes int64) *Fetcher {
	if client == nil {
		client = &http.Client{}
	}
	return &Fetcher{
		httpClient:   client,
		userAgent:    userAgent,
		htmlMaxBytes: htmlMaxBytes,
		pdfMaxBytes:  pdfMaxBytes,
	}
}

// FetchResult contains the fetched body and metadata
type FetchResult struct {
	Body        []byte
	ContentType string
	FinalURL    string
	StatusCode  int
}

// Fetch retrieves rawURL. PDFs whose declared or actual size exceeds the
// ceiling fail with a too_large *model.ExtractionError before any parsing.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	start := time.Now()
	defer func() { metrics.ObserveFetchDuration(time.Since(start)) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/pdf;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: unexpected status %d", model.ErrFetch, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	isPDF := extract.IsPDF(rawURL, contentType)

	limit := f.htmlMaxBytes
	if isPDF {
		limit = f.pdfMaxBytes
		if limit > 0 && resp.ContentLength > limit {
			return nil, model.NewPDFTooLargeError(rawURL, resp.ContentLength, limit)
		}
	}

	reader := io.Reader(resp.Body)
	if limit > 0 {
		// one extra byte tells an exact-size body from an oversized one
		reader = io.LimitReader(resp.Body, limit+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if limit > 0 && int64(len(body)) > limit {
		if isPDF {
			return nil, model.NewPDFTooLargeError(rawURL, int64(len(body)), limit)
		}
		return nil, &model.ExtractionError{
			Kind: model.ExtractionTooLarge,
			URL:  rawURL,
			Err:  fmt.Errorf("body exceeds %d bytes", limit),
		}
	}

	return &FetchResult{
		Body:        body,
		ContentType: contentType,
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
	}, nil
}
