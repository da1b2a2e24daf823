package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/impactlens/internal/extract"
	"github.com/ppiankov/impactlens/internal/model"
)

// neutralText contains no taxonomy keyword, not even as a substring
var neutralText = strings.Repeat("zebra quartz jumbo orbit violin meteor tundra. ", 20)

func articleHTML(title, text string) string {
	return fmt.Sprintf(`<html><head><title>%s</title></head><body><article><p>%s</p></article></body></html>`, title, text)
}

func testFetchConfig() model.FetchConfig {
	cfg := model.DefaultConfig().Fetch
	cfg.Timeout = 2 * time.Second
	return cfg
}

func newTestScheduler(cfg model.FetchConfig) *Scheduler {
	const htmlMax = 1 << 20
	return NewScheduler(
		cfg,
		NewFetcher(nil, "test-agent", htmlMax, cfg.PDFMaxBytes),
		extract.NewExtractor(cfg.PDFMaxBytes, htmlMax),
		nil,
	)
}
