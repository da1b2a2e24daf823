package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/impactlens/internal/model"
	"go.uber.org/zap"
)

// Analyzer defines the interface for analyzing one entity
type Analyzer interface {
	AnalyzeEntity(ctx context.Context, name string) (*model.EntityResult, error)
}

// ProgressKind labels a batch progress event
type ProgressKind string

const (
	ProgressStart ProgressKind = "start"
	ProgressDone  ProgressKind = "done"
	ProgressError ProgressKind = "error"
)

// ProgressEvent reports batch progress to the caller
type ProgressEvent struct {
	Kind   ProgressKind
	Index  int // 1-based position in the batch
	Total  int
	Entity string
	Result *model.EntityResult
	Err    error
}

// BatchRunner analyzes entities one after another
type BatchRunner struct {
	analyzer    Analyzer
	maxEntities int
	logger      *zap.Logger
}

// NewBatchRunner creates a new batch runner
func NewBatchRunner(analyzer Analyzer, maxEntities int, logger *zap.Logger) *BatchRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchRunner{
		analyzer:    analyzer,
		maxEntities: maxEntities,
		logger:      logger,
	}
}

// Run analyzes names sequentially. A failed entity is reported as an
// error event and skipped; cancellation stops before the next entity and
// returns the results gathered so far together with the context error.
func (b *BatchRunner) Run(ctx context.Context, names []string, onProgress func(ProgressEvent)) ([]model.EntityResult, error) {
	if onProgress == nil {
		onProgress = func(ProgressEvent) {}
	}

	names = PrepareNames(names, b.maxEntities)
	results := make([]model.EntityResult, 0, len(names))

	for i, name := range names {
		if err := ctx.Err(); err != nil {
			b.logger.Info("batch canceled", zap.Int("completed", len(results)), zap.Int("total", len(names)))
			return results, err
		}

		event := ProgressEvent{Index: i + 1, Total: len(names), Entity: name}
		event.Kind = ProgressStart
		onProgress(event)

		result, err := b.analyzer.AnalyzeEntity(ctx, name)
		if err != nil {
			b.logger.Warn("entity analysis failed", zap.String("entity", name), zap.Error(err))
			event.Kind = ProgressError
			event.Err = err
			onProgress(event)
			continue
		}

		results = append(results, *result)
		event.Kind = ProgressDone
		event.Result = result
		onProgress(event)
	}

	return results, nil
}

// PrepareNames trims names, drops blanks and caps the list at max (0 = no cap)
func PrepareNames(names []string, max int) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		out = append(out, name)
		if max > 0 && len(out) == max {
			break
		}
	}
	return out
}

// ReadNamesFromFile reads entity names from a file (one per line)
func ReadNamesFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var names []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key := strings.ToLower(line)
		if !seen[key] {
			seen[key] = true
			names = append(names, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return names, nil
}
