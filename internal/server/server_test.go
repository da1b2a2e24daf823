package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ppiankov/impactlens/internal/metrics"
	"github.com/ppiankov/impactlens/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAnalyzer struct {
	err    error
	panics bool
	got    string
}

func (s *stubAnalyzer) AnalyzeEntity(ctx context.Context, name string) (*model.EntityResult, error) {
	s.got = name
	if s.panics {
		panic("boom")
	}
	if s.err != nil {
		return nil, s.err
	}
	return &model.EntityResult{Name: name, Overall: 12.5, Tier: model.TierLow}, nil
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze-company", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestAnalyzeCompany_OK(t *testing.T) {
	analyzer := &stubAnalyzer{}
	h := NewServer(analyzer, model.DefaultConfig().Server, nil).Handler()

	rec := post(t, h, `{"company": "  Acme Corp "}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Acme Corp", analyzer.got)
	body := decode(t, rec)
	assert.Equal(t, "Acme Corp", body["name"])
	assert.Equal(t, "Low Alignment", body["tier"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestAnalyzeCompany_NameRequired(t *testing.T) {
	h := NewServer(&stubAnalyzer{}, model.DefaultConfig().Server, nil).Handler()

	for _, body := range []string{`{}`, `{"company": "a"}`, `{"company": "   "}`, `not json`} {
		rec := post(t, h, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, map[string]any{"error": "company_required"}, decode(t, rec), body)
	}
}

func TestAnalyzeCompany_Failure(t *testing.T) {
	analyzer := &stubAnalyzer{err: &model.AnalysisError{Entity: "Acme", Err: errors.New("disk on fire")}}
	h := NewServer(analyzer, model.DefaultConfig().Server, nil).Handler()

	rec := post(t, h, `{"company": "Acme"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "analyze_failed", body["error"])
	assert.Contains(t, body["message"], "disk on fire")
}

func TestAnalyzeCompany_PanicRecovered(t *testing.T) {
	h := NewServer(&stubAnalyzer{panics: true}, model.DefaultConfig().Server, nil).Handler()

	rec := post(t, h, `{"company": "Acme"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "analyze_failed", decode(t, rec)["error"])
}

func TestHealthzAndMetrics(t *testing.T) {
	metrics.Init()
	h := NewServer(&stubAnalyzer{}, model.DefaultConfig().Server, nil).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "impactlens_")
}

func TestAnalyzeCompany_MethodNotAllowed(t *testing.T) {
	h := NewServer(&stubAnalyzer{}, model.DefaultConfig().Server, nil).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analyze-company", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
