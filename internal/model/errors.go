package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNameRequired is returned when the entity name is missing or too short
	ErrNameRequired = errors.New("company_required")

	// ErrAnalysisFailed marks an unexpected failure of a whole analysis
	ErrAnalysisFailed = errors.New("analyze_failed")

	ErrRobotsDisallowed   = errors.New("disallowed by robots.txt")
	ErrFetchTimeout       = errors.New("fetch timed out")
	ErrFetch              = errors.New("fetch failed")
	ErrPerDomainLimit     = errors.New("per-domain limit reached")
	ErrExtractionTooLarge = errors.New("content exceeds size ceiling")
	ErrExtractionEmpty    = errors.New("content empty after normalization")
	ErrExtractionParse    = errors.New("content could not be parsed")
)

// ExtractionKind classifies extraction failures
type ExtractionKind string

const (
	ExtractionTooLarge ExtractionKind = "too_large"
	ExtractionEmpty    ExtractionKind = "empty"
	ExtractionParse    ExtractionKind = "parse"
)

// ExtractionError reports why a body could not become a Document
type ExtractionError struct {
	Kind ExtractionKind
	URL  string
	Err  error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extract %s (%s): %v", e.URL, e.Kind, e.Err)
	}
	return fmt.Sprintf("extract %s: %s", e.URL, e.Kind)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error kind
func (e *ExtractionError) Is(target error) bool {
	switch e.Kind {
	case ExtractionTooLarge:
		return target == ErrExtractionTooLarge
	case ExtractionEmpty:
		return target == ErrExtractionEmpty
	case ExtractionParse:
		return target == ErrExtractionParse
	}
	return false
}

// NewPDFTooLargeError reports a PDF over the byte ceiling
func NewPDFTooLargeError(url string, size, limit int64) *ExtractionError {
	return &ExtractionError{
		Kind: ExtractionTooLarge,
		URL:  url,
		Err:  fmt.Errorf("pdf is %d bytes, limit %d", size, limit),
	}
}

// AnalysisError is the single terminal error of a failed analysis
type AnalysisError struct {
	Entity string
	Err    error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analyze %q: %v", e.Entity, e.Err)
}

func (e *AnalysisError) Unwrap() []error {
	return []error{ErrAnalysisFailed, e.Err}
}
