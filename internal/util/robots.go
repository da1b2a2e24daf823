package util

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ppiankov/impactlens/internal/metrics"
	"github.com/temoto/robotstxt"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// maxRobotsBytes bounds the robots.txt body read
const maxRobotsBytes = 512 << 10

// RobotsDecision is the outcome of one robots.txt check
type RobotsDecision struct {
	Allowed bool
	Reason  string // allowed, disallowed, unknown
}

// Robots decision reasons
const (
	RobotsAllowed    = "allowed"
	RobotsDisallowed = "disallowed"
	RobotsUnknown    = "unknown"
)

// RobotsChecker checks robots.txt compliance, caching one policy per origin.
// A nil cached policy means the origin's robots.txt could not be obtained.
type RobotsChecker struct {
	cache      map[string]*robotstxt.RobotsData
	mu         sync.RWMutex
	group      singleflight.Group
	httpClient *http.Client
	userAgent  string
	agent      string
	timeout    time.Duration
	logger     *zap.Logger
}

// NewRobotsChecker creates a new robots.txt checker
func NewRobotsChecker(client *http.Client, userAgent string, timeout time.Duration, logger *zap.Logger) *RobotsChecker {
	if client == nil {
		client = &http.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RobotsChecker{
		cache:      make(map[string]*robotstxt.RobotsData),
		httpClient: client,
		userAgent:  userAgent,
		agent:      NormalizeUserAgent(userAgent),
		timeout:    timeout,
		logger:     logger,
	}
}

// Check returns the robots decision for rawURL. It fails open: any
// failure to obtain or parse the policy yields an allow with reason unknown.
func (r *RobotsChecker) Check(ctx context.Context, rawURL string) RobotsDecision {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return r.decide(RobotsDecision{Allowed: true, Reason: RobotsUnknown})
	}

	origin := Origin(parsed)
	data, ok := r.policy(ctx, origin)
	if !ok || data == nil {
		return r.decide(RobotsDecision{Allowed: true, Reason: RobotsUnknown})
	}

	if data.TestAgent(robotsPath(parsed), r.agent) {
		return r.decide(RobotsDecision{Allowed: true, Reason: RobotsAllowed})
	}
	return r.decide(RobotsDecision{Allowed: false, Reason: RobotsDisallowed})
}

// IsAllowed is a convenience method that returns only the allowed status
func (r *RobotsChecker) IsAllowed(ctx context.Context, rawURL string) bool {
	return r.Check(ctx, rawURL).Allowed
}

func (r *RobotsChecker) decide(d RobotsDecision) RobotsDecision {
	metrics.ObserveRobotsDecision(d.Reason)
	return d
}

// policy returns the cached policy for origin, fetching it at most once.
// ok is false only when the caller's context ended first.
func (r *RobotsChecker) policy(ctx context.Context, origin string) (*robotstxt.RobotsData, bool) {
	r.mu.RLock()
	data, exists := r.cache[origin]
	r.mu.RUnlock()
	if exists {
		return data, true
	}

	ch := r.group.DoChan(origin, func() (interface{}, error) {
		r.mu.RLock()
		cached, exists := r.cache[origin]
		r.mu.RUnlock()
		if exists {
			return cached, nil
		}

		// detached so one caller's cancellation does not poison the shared result
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()

		data, err := r.fetch(fetchCtx, origin)
		if err != nil {
			r.logger.Warn("robots fetch failed; allowing access",
				zap.String("origin", origin), zap.Error(err))
			data = nil
		}

		r.mu.Lock()
		r.cache[origin] = data
		r.mu.Unlock()
		return data, nil
	})

	select {
	case res := <-ch:
		data, _ := res.Val.(*robotstxt.RobotsData)
		return data, true
	case <-ctx.Done():
		return nil, false
	}
}

func (r *RobotsChecker) fetch(ctx context.Context, origin string) (*robotstxt.RobotsData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin+"/robots.txt", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// a missing robots.txt allows everything; server errors stay unknown
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, nil)
		if err != nil {
			return nil, fmt.Errorf("parse robots.txt: %w", err)
		}
		return data, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("robots.txt status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBytes))
	if err != nil {
		return nil, fmt.Errorf("read robots.txt: %w", err)
	}
	data, err := robotstxt.FromBytes(body)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}
	return data, nil
}

// Clear clears the robots.txt cache
func (r *RobotsChecker) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string]*robotstxt.RobotsData)
}

// Origin returns scheme://host of a parsed URL
func Origin(u *url.URL) string {
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host)
}

func robotsPath(u *url.URL) string {
	p := u.EscapedPath()
	if p == "" {
		p = "/"
	}
	if u.RawQuery != "" {
		p += "?" + u.RawQuery
	}
	return p
}

// NormalizeUserAgent normalizes the user agent string for robots.txt matching
func NormalizeUserAgent(ua string) string {
	// Extract the product name (first token)
	parts := strings.Fields(ua)
	if len(parts) > 0 {
		// Remove version if present
		product := strings.Split(parts[0], "/")[0]
		return product
	}
	return ua
}
