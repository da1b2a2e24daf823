// Package pipeline wires discovery, fetching, corpus assembly and scoring
// into one entity analysis.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/ppiankov/impactlens/internal/cache"
	"github.com/ppiankov/impactlens/internal/discovery"
	"github.com/ppiankov/impactlens/internal/extract"
	"github.com/ppiankov/impactlens/internal/metrics"
	"github.com/ppiankov/impactlens/internal/model"
	"github.com/ppiankov/impactlens/internal/score"
	"github.com/ppiankov/impactlens/internal/taxonomy"
	"github.com/ppiankov/impactlens/internal/util"
	"github.com/ppiankov/impactlens/internal/worker"
	"go.uber.org/zap"
)

// minNameLength is the shortest accepted entity name
const minNameLength = 2

// Discoverer proposes an origin and candidate URLs for a name
type Discoverer interface {
	Discover(ctx context.Context, name string) discovery.Discovery
}

// Analysis is one entity run with its intermediate artifacts
type Analysis struct {
	RunID     string
	Result    *model.EntityResult
	Discovery discovery.Discovery
	Outcomes  []model.FetchOutcome
	Documents int
	Duration  time.Duration
}

// Analyzer runs discovery, fetching, assembly and aggregation for one entity
type Analyzer struct {
	discoverer Discoverer
	scheduler  *Scheduler
	assembler  *Assembler
	aggregator *score.Aggregator
	logger     *zap.Logger
}

// NewAnalyzer composes an analyzer from its stages
func NewAnalyzer(discoverer Discoverer, scheduler *Scheduler, assembler *Assembler, aggregator *score.Aggregator, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		discoverer: discoverer,
		scheduler:  scheduler,
		assembler:  assembler,
		aggregator: aggregator,
		logger:     logger,
	}
}

// New builds an analyzer and its process-wide caches from cfg
func New(cfg *model.Config, logger *zap.Logger) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	tax, err := taxonomy.Load(cfg.Scoring.TaxonomyFile)
	if err != nil {
		return nil, err
	}

	client := util.NewHTTPClient(cfg.HTTP)

	fetcher := NewFetcher(client, cfg.HTTP.UserAgent, cfg.HTTP.MaxBodyBytes, cfg.Fetch.PDFMaxBytes)
	extractor := extract.NewExtractor(cfg.Fetch.PDFMaxBytes, cfg.HTTP.MaxBodyBytes)
	scheduler := NewScheduler(cfg.Fetch, fetcher, extractor, logger.Named("fetch")).
		WithLimiter(worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize))
	if cfg.Robots.Respect {
		scheduler.WithRobots(util.NewRobotsChecker(client, cfg.HTTP.UserAgent, cfg.Robots.Timeout, logger.Named("robots")))
	}
	if cfg.Cache.Enabled {
		scheduler.WithCache(cache.NewMemoryCache(cfg.Cache.TTL))
	}

	discoverer := discovery.NewDiscoverer(client, cfg.Discovery, cfg.HTTP.UserAgent, logger.Named("discovery"))
	scorer := score.NewScorer(cfg.Scoring, score.NewProvenanceClassifier(&cfg.Provenance))

	return NewAnalyzer(
		discoverer,
		scheduler,
		NewAssembler(tax.Matcher(), cfg.Scoring.SnippetLength),
		score.NewAggregator(tax, scorer),
		logger,
	), nil
}

// AnalyzeEntity returns the scored result for name. An empty corpus is a
// valid low-score result; only bad input or an internal failure errors.
func (a *Analyzer) AnalyzeEntity(ctx context.Context, name string) (*model.EntityResult, error) {
	analysis, err := a.Analyze(ctx, name)
	if err != nil {
		return nil, err
	}
	return analysis.Result, nil
}

// Analyze is AnalyzeEntity keeping discovery and fetch outcomes
func (a *Analyzer) Analyze(ctx context.Context, name string) (analysis *Analysis, err error) {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) < minNameLength {
		return nil, model.ErrNameRequired
	}

	analysis = &Analysis{RunID: uuid.NewString()}
	logger := a.logger.With(zap.String("run_id", analysis.RunID), zap.String("entity", name))
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("analysis panicked", zap.Any("panic", r))
			analysis, err = nil, &model.AnalysisError{Entity: name, Err: fmt.Errorf("panic: %v", r)}
		}
		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.ObserveAnalysis(status, time.Since(start), documentCount(analysis))
	}()

	logger.Info("analysis started")

	analysis.Discovery = a.discoverer.Discover(ctx, name)
	for _, note := range analysis.Discovery.Notes {
		logger.Debug("discovery source empty", zap.String("source", note.Source), zap.Error(note.Err))
	}

	docs, outcomes := a.scheduler.FetchAll(ctx, analysis.Discovery.URLs())
	analysis.Outcomes = outcomes
	analysis.Documents = len(docs)

	if err := ctx.Err(); err != nil {
		return nil, &model.AnalysisError{Entity: name, Err: err}
	}

	raw := a.assembler.Assemble(name, analysis.Discovery.Origin, docs)
	result := a.aggregator.Aggregate(raw)
	analysis.Result = &result
	analysis.Duration = time.Since(start)

	logger.Info("analysis complete",
		zap.Int("candidates", len(analysis.Discovery.Candidates)),
		zap.Int("documents", analysis.Documents),
		zap.Float64("overall", result.Overall),
		zap.String("tier", string(result.Tier)),
		zap.Duration("duration", analysis.Duration))

	return analysis, nil
}

func documentCount(a *Analysis) int {
	if a == nil {
		return 0
	}
	return a.Documents
}
