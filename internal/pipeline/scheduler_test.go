package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/impactlens/internal/cache"
	"github.com/ppiankov/impactlens/internal/model"
	"github.com/ppiankov/impactlens/internal/util"
	"github.com/ppiankov/impactlens/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pageServer serves long neutral articles and counts non-robots requests
func pageServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		if hits != nil {
			hits.Add(1)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = fmt.Fprint(w, articleHTML("Page "+r.URL.Path, neutralText))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func reasons(outcomes []model.FetchOutcome) map[model.SkipReason]int {
	out := make(map[model.SkipReason]int)
	for _, o := range outcomes {
		out[o.Reason]++
	}
	return out
}

func TestFetchAll_PerDomainCap(t *testing.T) {
	var hits atomic.Int32
	srv := pageServer(t, &hits)

	urls := make([]string, 0, 5)
	for i := 1; i <= 5; i++ {
		urls = append(urls, fmt.Sprintf("%s/p%d", srv.URL, i))
	}

	cfg := testFetchConfig()
	cfg.PerDomainLimit = 2
	docs, outcomes := newTestScheduler(cfg).FetchAll(context.Background(), urls)

	assert.LessOrEqual(t, hits.Load(), int32(2))
	assert.Len(t, docs, 2)
	require.Len(t, outcomes, 5)
	assert.Equal(t, map[model.SkipReason]int{
		model.ReasonFetched:        2,
		model.ReasonPerDomainLimit: 3,
	}, reasons(outcomes))
}

func TestFetchAll_DedupesInput(t *testing.T) {
	var hits atomic.Int32
	srv := pageServer(t, &hits)

	docs, outcomes := newTestScheduler(testFetchConfig()).FetchAll(context.Background(),
		[]string{srv.URL + "/a", srv.URL + "/a", srv.URL + "/b"})

	assert.Len(t, docs, 2)
	assert.Len(t, outcomes, 2)
	assert.Equal(t, int32(2), hits.Load())
	assert.Equal(t, srv.URL+"/a", docs[0].URL)
}

func TestFetchAll_RobotsTimeoutAllows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
			return
		}
		_, _ = fmt.Fprint(w, articleHTML("Report", neutralText))
	}))
	defer srv.Close()

	robots := util.NewRobotsChecker(&http.Client{}, "test-agent", 50*time.Millisecond, nil)
	scheduler := newTestScheduler(testFetchConfig()).WithRobots(robots)

	docs, outcomes := scheduler.FetchAll(context.Background(), []string{srv.URL + "/report"})

	require.Len(t, docs, 1)
	assert.Equal(t, model.ReasonFetched, outcomes[0].Reason)
}

func TestFetchAll_RobotsDisallowedSkipped(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = fmt.Fprint(w, "User-agent: *\nDisallow: /private\n")
			return
		}
		hits.Add(1)
		_, _ = fmt.Fprint(w, articleHTML("Page", neutralText))
	}))
	defer srv.Close()

	robots := util.NewRobotsChecker(&http.Client{}, "test-agent", time.Second, nil)
	scheduler := newTestScheduler(testFetchConfig()).WithRobots(robots)

	docs, outcomes := scheduler.FetchAll(context.Background(), []string{srv.URL + "/private/x", srv.URL + "/public"})

	require.Len(t, docs, 1)
	assert.Equal(t, srv.URL+"/public", docs[0].URL)
	assert.Equal(t, model.ReasonRobotsDisallowed, outcomes[0].Reason)
	assert.True(t, errors.Is(outcomes[0].Err, model.ErrRobotsDisallowed))
	assert.Equal(t, int32(1), hits.Load())
}

func TestFetchAll_PDFContentLengthRejectedBeforeParse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Length", "2048")
		_, _ = w.Write(make([]byte, 2048))
	}))
	defer srv.Close()

	cfg := testFetchConfig()
	cfg.PDFMaxBytes = 1024
	docs, outcomes := newTestScheduler(cfg).FetchAll(context.Background(), []string{srv.URL + "/report.pdf"})

	assert.Empty(t, docs)
	require.Len(t, outcomes, 1)
	assert.Equal(t, model.ReasonTooLarge, outcomes[0].Reason)
	assert.ErrorIs(t, outcomes[0].Err, model.ErrExtractionTooLarge)
	assert.Contains(t, outcomes[0].Err.Error(), "pdf is 2048 bytes, limit 1024")
}

func TestFetchAll_ShortDocumentExcludedWithoutError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, articleHTML("Tiny", "Just a few words here."))
	}))
	defer srv.Close()

	docs, outcomes := newTestScheduler(testFetchConfig()).FetchAll(context.Background(), []string{srv.URL + "/tiny"})

	assert.Empty(t, docs)
	require.Len(t, outcomes, 1)
	assert.Equal(t, model.ReasonTooShort, outcomes[0].Reason)
	assert.NoError(t, outcomes[0].Err)
}

func TestFetchAll_FetchErrorsDropOnlyThatURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/gone":
			http.NotFound(w, r)
		case "/slow":
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		default:
			_, _ = fmt.Fprint(w, articleHTML("OK", neutralText))
		}
	}))
	defer srv.Close()

	cfg := testFetchConfig()
	cfg.PerDomainLimit = 10
	cfg.Timeout = 100 * time.Millisecond
	docs, outcomes := newTestScheduler(cfg).FetchAll(context.Background(),
		[]string{srv.URL + "/gone", srv.URL + "/slow", srv.URL + "/ok", "mailto:someone@example.com"})

	require.Len(t, docs, 1)
	assert.Equal(t, srv.URL+"/ok", docs[0].URL)
	require.Len(t, outcomes, 4)
	assert.Equal(t, model.ReasonFetchError, outcomes[0].Reason)
	assert.Equal(t, model.ReasonTimeout, outcomes[1].Reason)
	assert.Equal(t, model.ReasonFetched, outcomes[2].Reason)
	assert.Equal(t, model.ReasonInvalidURL, outcomes[3].Reason)
}

func TestFetchAll_CacheHitSkipsNetwork(t *testing.T) {
	var hits atomic.Int32
	srv := pageServer(t, &hits)

	scheduler := newTestScheduler(testFetchConfig()).WithCache(cache.NewMemoryCache(0))
	url := srv.URL + "/esg"

	_, first := scheduler.FetchAll(context.Background(), []string{url})
	docs, second := scheduler.FetchAll(context.Background(), []string{url})

	assert.Equal(t, model.ReasonFetched, first[0].Reason)
	assert.Equal(t, model.ReasonCached, second[0].Reason)
	require.Len(t, docs, 1)
	assert.Equal(t, int32(1), hits.Load())
}

func TestFetchAll_CanceledContext(t *testing.T) {
	var hits atomic.Int32
	srv := pageServer(t, &hits)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	docs, outcomes := newTestScheduler(testFetchConfig()).FetchAll(ctx, []string{srv.URL + "/a", srv.URL + "/b"})

	assert.Empty(t, docs)
	require.Len(t, outcomes, 2)
	for _, o := range outcomes {
		assert.Equal(t, model.ReasonCanceled, o.Reason)
	}
	assert.Equal(t, int32(0), hits.Load())
}

func TestFetchAll_RateLimiterWaits(t *testing.T) {
	srv := pageServer(t, nil)

	scheduler := newTestScheduler(testFetchConfig()).WithLimiter(worker.NewLimiter(10, 1))
	start := time.Now()
	docs, _ := scheduler.FetchAll(context.Background(), []string{srv.URL + "/a", srv.URL + "/b"})

	assert.Len(t, docs, 2)
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestFetchAll_Empty(t *testing.T) {
	docs, outcomes := newTestScheduler(testFetchConfig()).FetchAll(context.Background(), nil)
	assert.Nil(t, docs)
	assert.Nil(t, outcomes)
}

func TestFetcher_HTMLBodyCeiling(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, strings.Repeat("x", 2000))
	}))
	defer srv.Close()

	_, err := NewFetcher(nil, "test-agent", 1000, 1000).Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, model.ErrExtractionTooLarge)
}

func TestClassify(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	bg := context.Background()

	tests := []struct {
		name string
		ctx  context.Context
		err  error
		want model.SkipReason
	}{
		{"robots", bg, model.ErrRobotsDisallowed, model.ReasonRobotsDisallowed},
		{"too large", bg, model.NewPDFTooLargeError("u", 2, 1), model.ReasonTooLarge},
		{"empty", bg, &model.ExtractionError{Kind: model.ExtractionEmpty}, model.ReasonEmpty},
		{"parse", bg, &model.ExtractionError{Kind: model.ExtractionParse}, model.ReasonFetchError},
		{"timeout", bg, fmt.Errorf("%w: slow", model.ErrFetchTimeout), model.ReasonTimeout},
		{"deadline", bg, context.DeadlineExceeded, model.ReasonTimeout},
		{"canceled", canceled, errors.New("boom"), model.ReasonCanceled},
		{"other", bg, errors.New("boom"), model.ReasonFetchError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.ctx, tt.err))
		})
	}
}
