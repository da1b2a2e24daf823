package extract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/impactlens/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articlePage = `<!DOCTYPE html>
<html><head>
<title>Acme | Community Report</title>
<meta property="article:published_time" content="2024-03-15T10:00:00Z">
</head>
<body>
<nav class="site-nav"><a href="/">Home</a> <a href="/shop">Shop everything today</a></nav>
<div id="cookie-banner">We use cookies to improve your shopping experience on this site.</div>
<article class="post-content">
  <h1>Building   Stronger Neighborhoods</h1>
  <p>In 2023, Acme invested in community investment programs, capital projects, and public spaces across the region.</p>
  <p>Our local hiring initiative, together with workforce development partners, placed hundreds of residents into jobs.</p>
  <p>Employees logged thousands of volunteer hours, supporting schools, food banks, and neighborhood clean-ups.</p>
  <p>Our suppliers, including minority-owned and women-owned businesses, received mentoring, faster payment terms, and access to new contracts.</p>
  <p>We also expanded renewable energy purchasing, cut packaging waste, and funded tree planting with local conservation groups, parks, and watershed councils.</p>
</article>
<footer>Copyright Acme. All rights reserved. Privacy policy and terms of use apply.</footer>
</body></html>`

func TestExtract_HTMLMainContent(t *testing.T) {
	e := NewExtractor(15<<20, 5<<20)

	doc, err := e.Extract("https://acme.example.com/community", []byte(articlePage), "text/html; charset=utf-8")
	require.NoError(t, err)

	assert.Contains(t, doc.Content, "community investment programs, capital projects, and public spaces")
	assert.Contains(t, doc.Content, "volunteer hours")
	assert.Contains(t, doc.Content, "watershed councils")
	assert.NotContains(t, doc.Content, "Shop everything today")
	assert.NotContains(t, doc.Content, "We use cookies")
	assert.NotContains(t, doc.Content, "All rights reserved")
	assert.NotContains(t, doc.Content, "  ")

	assert.Equal(t, "Building Stronger Neighborhoods", doc.Title)
	require.NotNil(t, doc.PublishedAt)
	assert.True(t, doc.PublishedAt.Equal(time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)), "published %v", doc.PublishedAt)
	assert.Equal(t, "text/html; charset=utf-8", doc.ContentType)
}

func TestExtract_HTMLFallsBackToBodyText(t *testing.T) {
	e := NewExtractor(15<<20, 5<<20)
	page := `<html><head><title> Short  Page </title></head><body><div>Just a line.</div><span>Another</span><time datetime="2023-01-02">Jan 2</time></body></html>`

	doc, err := e.Extract("https://example.org/", []byte(page), "text/html")
	require.NoError(t, err)

	assert.Equal(t, "Just a line. Another Jan 2", doc.Content)
	assert.Equal(t, "Short Page", doc.Title)
	require.NotNil(t, doc.PublishedAt)
	assert.Equal(t, 2023, doc.PublishedAt.Year())
}

func TestExtract_HTMLUnparseableDate(t *testing.T) {
	e := NewExtractor(15<<20, 5<<20)
	page := `<html><head><meta property="article:published_time" content="last tuesday"></head><body><p>text</p></body></html>`

	doc, err := e.Extract("https://example.org/x", []byte(page), "text/html")
	require.NoError(t, err)
	assert.Nil(t, doc.PublishedAt)
}

func TestExtract_HTMLEmptyMetaDateFallsBackToTime(t *testing.T) {
	e := NewExtractor(15<<20, 5<<20)
	page := `<html><head><meta property="article:published_time" content=" "></head>
<body><p>Community day recap</p><time datetime="2024-01-02T00:00:00Z">January 2</time></body></html>`

	doc, err := e.Extract("https://example.org/news", []byte(page), "text/html")
	require.NoError(t, err)
	require.NotNil(t, doc.PublishedAt)
	assert.True(t, doc.PublishedAt.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)), "published %v", doc.PublishedAt)
}

func TestExtract_EmptyContent(t *testing.T) {
	e := NewExtractor(15<<20, 5<<20)

	_, err := e.Extract("https://example.org/empty", []byte(`<html><body><script>var x = 1;</script>   </body></html>`), "text/html")
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrExtractionEmpty), "got %v", err)

	var extractErr *model.ExtractionError
	require.True(t, errors.As(err, &extractErr))
	assert.Equal(t, model.ExtractionEmpty, extractErr.Kind)
}

func TestExtract_HTMLTooLarge(t *testing.T) {
	e := NewExtractor(15<<20, 64)

	_, err := e.Extract("https://example.org/big", []byte(strings.Repeat("a", 65)), "text/html")
	assert.ErrorIs(t, err, model.ErrExtractionTooLarge)
}

func TestExtract_PDFTooLarge(t *testing.T) {
	e := NewExtractor(1024, 5<<20)

	_, err := e.Extract("https://example.com/reports/esg-2024.PDF", make([]byte, 2048), "application/octet-stream")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrExtractionTooLarge)
	assert.Contains(t, err.Error(), "limit 1024")
}

func TestExtract_PDFMalformed(t *testing.T) {
	e := NewExtractor(1024, 5<<20)

	_, err := e.Extract("https://example.com/report.pdf", []byte("definitely not a pdf"), "application/pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrExtractionParse)
}

// onePagePDF builds a single-page PDF showing text, with an Info title when title is non-empty
func onePagePDF(text, title string) []byte {
	content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
	}
	if title != "" {
		objects = append(objects, fmt.Sprintf("<< /Title (%s) >>", title))
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	info := ""
	if title != "" {
		info = fmt.Sprintf(" /Info %d 0 R", len(objects))
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R%s >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, info, xref)
	return buf.Bytes()
}

func TestExtract_PDFWithInfoTitle(t *testing.T) {
	e := NewExtractor(1<<20, 5<<20)

	doc, err := e.Extract("https://acme.example.com/reports/esg-2024.pdf", onePagePDF("Community   investment report", "ESG Report"), "application/pdf")
	require.NoError(t, err)

	assert.Equal(t, "ESG Report", doc.Title)
	assert.Equal(t, "Community investment report", doc.Content)
	assert.Equal(t, "application/pdf", doc.ContentType)
}

func TestExtract_PDFTitleFromFileName(t *testing.T) {
	e := NewExtractor(1<<20, 5<<20)

	doc, err := e.Extract("https://acme.example.com/reports/esg-2024.pdf", onePagePDF("Community investment report", ""), "application/octet-stream")
	require.NoError(t, err)

	assert.Equal(t, "esg-2024.pdf", doc.Title)
	assert.Equal(t, "Community investment report", doc.Content)
}

func TestExtract_Wikipedia(t *testing.T) {
	e := NewExtractor(15<<20, 5<<20)
	page := `<html><head><title>Acme Corp - Wikipedia</title></head><body>
<div id="mw-navigation">Main page Contents Current events</div>
<h1 id="firstHeading">Acme Corp</h1>
<div id="mw-content-text"><div class="mw-parser-output">
<div class="hatnote">For other uses, see Acme.</div>
<table class="infobox"><tr><th>Headquarters</th><td>Philadelphia, Pennsylvania</td></tr></table>
<p>Acme Corp is a hardware retailer.<sup class="reference">[1]</sup> It sponsors the Philadelphia Eagles.</p>
<h2>History<span class="mw-editsection">[edit]</span></h2>
<div class="navbox">Retail companies navbox</div>
</div></div></body></html>`

	doc, err := e.Extract("https://en.wikipedia.org/wiki/Acme_Corp", []byte(page), "text/html")
	require.NoError(t, err)

	assert.Equal(t, "Acme Corp", doc.Title)
	assert.Contains(t, doc.Content, "Headquarters Philadelphia, Pennsylvania")
	assert.Contains(t, doc.Content, "Acme Corp is a hardware retailer. It sponsors the Philadelphia Eagles.")
	assert.NotContains(t, doc.Content, "[1]")
	assert.NotContains(t, doc.Content, "[edit]")
	assert.NotContains(t, doc.Content, "navbox")
	assert.NotContains(t, doc.Content, "For other uses")
	assert.NotContains(t, doc.Content, "Current events")
}

func TestIsPDF(t *testing.T) {
	assert.True(t, IsPDF("https://example.com/a/report.pdf", ""))
	assert.True(t, IsPDF("https://example.com/a/REPORT.PDF?v=2", ""))
	assert.True(t, IsPDF("https://example.com/download?id=3", "application/pdf"))
	assert.False(t, IsPDF("https://example.com/pdf-library", "text/html"))
}
