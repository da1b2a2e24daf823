package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net"
	"unicode/utf8"

	"github.com/ppiankov/impactlens/internal/extract"
	"github.com/ppiankov/impactlens/internal/metrics"
	"github.com/ppiankov/impactlens/internal/model"
	"github.com/ppiankov/impactlens/internal/util"
	"github.com/ppiankov/impactlens/internal/worker"
	"go.uber.org/zap"
)

// RobotsPolicy decides whether a URL may be fetched
type RobotsPolicy interface {
	Check(ctx context.Context, rawURL string) util.RobotsDecision
}

// DocumentLoader memoizes documents by URL with single-flight population
type DocumentLoader interface {
	Load(ctx context.Context, url string, fn func() (model.Document, error)) (model.Document, bool, error)
}

// Scheduler fetches and extracts candidate URLs under two composed gates:
// a fixed worker pool for global concurrency and a per-run hostname cap.
type Scheduler struct {
	cfg       model.FetchConfig
	fetcher   *Fetcher
	extractor *extract.Extractor
	robots    RobotsPolicy
	docs      DocumentLoader
	limiter   *worker.Limiter
	logger    *zap.Logger
}

// NewScheduler creates a scheduler; robots, cache and rate limiting are
// attached with the With* methods
func NewScheduler(cfg model.FetchConfig, fetcher *Fetcher, extractor *extract.Extractor, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cfg:       cfg,
		fetcher:   fetcher,
		extractor: extractor,
		logger:    logger,
	}
}

// WithRobots consults policy before every network fetch
func (s *Scheduler) WithRobots(policy RobotsPolicy) *Scheduler {
	s.robots = policy
	return s
}

// WithCache short-circuits fetch and extraction for cached URLs
func (s *Scheduler) WithCache(docs DocumentLoader) *Scheduler {
	s.docs = docs
	return s
}

// WithLimiter paces requests per host
func (s *Scheduler) WithLimiter(limiter *worker.Limiter) *Scheduler {
	s.limiter = limiter
	return s
}

// fetchJob is one candidate URL scheduled on the pool
type fetchJob struct {
	scheduler *Scheduler
	gate      *worker.DomainGate
	url       string
}

// fetchResult is the per-URL job result
type fetchResult struct {
	doc     *model.Document
	outcome model.FetchOutcome
}

func (r *fetchResult) GetError() error {
	return r.outcome.Err
}

func (j *fetchJob) Execute(ctx context.Context) worker.Result {
	return j.scheduler.fetchOne(ctx, j.gate, j.url)
}

// FetchAll fetches urls and returns the acquired documents (deduplicated by
// URL, in input order) with one outcome per distinct URL. A failure on one
// URL never aborts the batch; canceling ctx stops scheduling and keeps the
// documents already collected.
func (s *Scheduler) FetchAll(ctx context.Context, urls []string) ([]model.Document, []model.FetchOutcome) {
	urls = dedupe(urls)
	if len(urls) == 0 {
		return nil, nil
	}

	gate := worker.NewDomainGate(s.cfg.PerDomainLimit)
	pool := worker.NewPool(ctx, s.cfg.MaxConcurrency)
	pool.Start()

	for _, u := range urls {
		if !pool.Submit(&fetchJob{scheduler: s, gate: gate, url: u}) {
			break
		}
	}
	results := pool.Wait()

	docs := make(map[string]model.Document, len(results))
	outcomes := make(map[string]model.FetchOutcome, len(urls))
	for _, r := range results {
		res := r.(*fetchResult)
		outcomes[res.outcome.URL] = res.outcome
		if res.doc != nil {
			docs[res.doc.URL] = *res.doc
		}
	}

	var outDocs []model.Document
	outOutcomes := make([]model.FetchOutcome, 0, len(urls))
	for _, u := range urls {
		outcome, ok := outcomes[u]
		if !ok {
			outcome = model.FetchOutcome{URL: u, Reason: model.ReasonCanceled, Err: ctx.Err()}
			s.record(outcome)
		}
		outOutcomes = append(outOutcomes, outcome)
		if doc, ok := docs[u]; ok {
			outDocs = append(outDocs, doc)
		}
	}
	return outDocs, outOutcomes
}

// fetchOne runs the per-URL gates in order: URL check, hostname cap,
// cache, robots, rate limit, fetch, extract, minimum length
func (s *Scheduler) fetchOne(ctx context.Context, gate *worker.DomainGate, rawURL string) *fetchResult {
	parsed, err := util.ParseHTTPURL(rawURL)
	if err != nil {
		return s.done(rawURL, nil, model.ReasonInvalidURL, err)
	}

	if !gate.Acquire(parsed.Hostname()) {
		return s.done(rawURL, nil, model.ReasonPerDomainLimit, model.ErrPerDomainLimit)
	}

	load := func() (model.Document, error) {
		return s.acquire(ctx, rawURL)
	}

	var (
		doc model.Document
		hit bool
	)
	if s.docs != nil {
		doc, hit, err = s.docs.Load(ctx, rawURL, load)
	} else {
		doc, err = load()
	}
	if err != nil {
		return s.done(rawURL, nil, classify(ctx, err), err)
	}

	if utf8.RuneCountInString(doc.Content) < s.cfg.MinContentLength {
		return s.done(rawURL, nil, model.ReasonTooShort, nil)
	}

	reason := model.ReasonFetched
	if hit {
		reason = model.ReasonCached
	}
	return s.done(rawURL, &doc, reason, nil)
}

// acquire performs the network part for an uncached URL
func (s *Scheduler) acquire(ctx context.Context, rawURL string) (model.Document, error) {
	if s.robots != nil {
		if decision := s.robots.Check(ctx, rawURL); !decision.Allowed {
			return model.Document{}, model.ErrRobotsDisallowed
		}
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx, rawURL); err != nil {
			return model.Document{}, err
		}
	}

	fetchCtx := ctx
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	res, err := s.fetcher.Fetch(fetchCtx, rawURL)
	if err != nil {
		if ctx.Err() == nil && errors.Is(fetchCtx.Err(), context.DeadlineExceeded) {
			return model.Document{}, fmt.Errorf("%w: %v", model.ErrFetchTimeout, err)
		}
		return model.Document{}, err
	}

	return s.extractor.Extract(rawURL, res.Body, res.ContentType)
}

func (s *Scheduler) done(rawURL string, doc *model.Document, reason model.SkipReason, err error) *fetchResult {
	outcome := model.FetchOutcome{URL: rawURL, Reason: reason, Err: err}
	s.record(outcome)
	return &fetchResult{doc: doc, outcome: outcome}
}

func (s *Scheduler) record(o model.FetchOutcome) {
	metrics.ObserveFetchOutcome(string(o.Reason))
	if ce := s.logger.Check(zap.DebugLevel, "fetch outcome"); ce != nil {
		fields := []zap.Field{zap.String("url", o.URL), zap.String("reason", string(o.Reason))}
		if o.Err != nil {
			fields = append(fields, zap.Error(o.Err))
		}
		ce.Write(fields...)
	}
}

// classify maps a per-URL error to its skip reason
func classify(ctx context.Context, err error) model.SkipReason {
	var netErr net.Error
	switch {
	case errors.Is(err, model.ErrRobotsDisallowed):
		return model.ReasonRobotsDisallowed
	case errors.Is(err, model.ErrExtractionTooLarge):
		return model.ReasonTooLarge
	case errors.Is(err, model.ErrExtractionEmpty):
		return model.ReasonEmpty
	case ctx.Err() != nil:
		return model.ReasonCanceled
	case errors.Is(err, model.ErrFetchTimeout), errors.Is(err, context.DeadlineExceeded):
		return model.ReasonTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		return model.ReasonTimeout
	default:
		return model.ReasonFetchError
	}
}

// dedupe collapses exact duplicate URLs, keeping first-seen order
func dedupe(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}
