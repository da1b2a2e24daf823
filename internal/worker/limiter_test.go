package worker

import (
	"context"
	"testing"
	"time"
)

// waitBriefly reports whether a token for rawURL is available within 50ms
func waitBriefly(l *Limiter, rawURL string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	return l.Wait(ctx, rawURL) == nil
}

func TestNewLimiter_BurstFloor(t *testing.T) {
	if l := NewLimiter(10, 5); l.burst != 5 {
		t.Errorf("expected burst 5, got %d", l.burst)
	}
	if l := NewLimiter(10, -1); l.burst != 1 {
		t.Errorf("expected burst 1 for negative input, got %d", l.burst)
	}
}

func TestLimiter_HostsShareBuckets(t *testing.T) {
	limiter := NewLimiter(1, 1)

	if !waitBriefly(limiter, "http://example.com/a") {
		t.Fatal("first request should pass")
	}
	if waitBriefly(limiter, "http://EXAMPLE.com:8080/b") {
		t.Error("expected the same host to share its bucket across paths, case and port")
	}
	if !waitBriefly(limiter, "http://other.example/") {
		t.Error("expected a fresh bucket for another host")
	}
	if got := len(limiter.buckets); got != 2 {
		t.Errorf("expected 2 host buckets, got %d", got)
	}
}

func TestLimiter_WaitSpacesRequests(t *testing.T) {
	limiter := NewLimiter(20, 1)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := limiter.Wait(context.Background(), "http://example.com"); err != nil {
			t.Fatalf("wait %d failed: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Errorf("expected about 100ms of spacing, got %v", elapsed)
	}
}

func TestLimiter_WaitCanceled(t *testing.T) {
	limiter := NewLimiter(0.01, 1)
	if !waitBriefly(limiter, "http://example.com") {
		t.Fatal("first request should pass")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := limiter.Wait(ctx, "http://example.com/next"); err == nil {
		t.Error("expected wait to fail when the context ends first")
	}
}

func TestLimiter_Disabled(t *testing.T) {
	limiter := NewLimiter(0, 1)
	for i := 0; i < 100; i++ {
		if !waitBriefly(limiter, "http://example.com") {
			t.Fatalf("request %d refused with limiting disabled", i)
		}
	}
}

func TestLimiter_InvalidURL(t *testing.T) {
	limiter := NewLimiter(1, 1)
	if err := limiter.Wait(context.Background(), "::invalid"); err == nil {
		t.Error("expected error for unparseable URL")
	}
	if err := limiter.Wait(context.Background(), "/relative/path"); err == nil {
		t.Error("expected error for a URL without host")
	}
}

func TestHostOf(t *testing.T) {
	host, err := hostOf("https://Reports.Example.com:8443/esg.pdf")
	if err != nil {
		t.Fatalf("hostOf failed: %v", err)
	}
	if host != "reports.example.com" {
		t.Errorf("expected reports.example.com, got %s", host)
	}
}
