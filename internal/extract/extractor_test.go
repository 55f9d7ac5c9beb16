package extract

import (
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

const productHTML = `<!DOCTYPE html>
<html>
<head>
    <title>Chateau Margaux 2019 | Total Wine</title>
    <meta name="description" content="A legendary Bordeaux from the Margaux appellation.">
    <meta property="og:title" content="Chateau Margaux 2019 OG">
    <meta property="og:brand" content="Chateau Margaux">
</head>
<body>
    <nav aria-label="Breadcrumb">
        <a href="/">Home</a>
        <a href="/wine">Wine</a>
        <a href="/wine/red-wine">Red Wine</a>
    </nav>
    <h1 class="product-title">Chateau Margaux 2019</h1>
    <div class="brand-row">Winery</div>
    <div class="brand-value">Margaux Estate</div>
    <span class="price">Now $22.99, was $26.99</span>
    <div class="detail">SKU: WN-4421</div>
    <div class="detail">ABV: 13.5%</div>
    <img src="/images/logo.png">
    <img src="/images/margaux-2019.jpg?w=800">
    <div class="product-description">Full-bodied with notes of blackcurrant and cedar.</div>
</body>
</html>`

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func TestExtractSelector(t *testing.T) {
	e := NewExtractor(testLogger)
	doc := parseDoc(t, productHTML)

	got := e.Extract(doc, ParseSpec("h1.product-title"))
	if got != "Chateau Margaux 2019" {
		t.Errorf("expected product title, got %q", got)
	}
}

func TestExtractSelectorFirstMatchWins(t *testing.T) {
	e := NewExtractor(testLogger)
	doc := parseDoc(t, productHTML)

	got := e.Extract(doc, ParseSpec("div.detail"))
	if got != "SKU: WN-4421" {
		t.Errorf("expected first detail div, got %q", got)
	}
}

func TestExtractSelectorMiss(t *testing.T) {
	e := NewExtractor(testLogger)
	doc := parseDoc(t, productHTML)

	if got := e.Extract(doc, ParseSpec("h2.missing")); got != "" {
		t.Errorf("expected empty string on miss, got %q", got)
	}
}

func TestExtractMalformedSelector(t *testing.T) {
	e := NewExtractor(testLogger)
	doc := parseDoc(t, productHTML)

	// A selector goquery cannot compile must degrade to "", not panic.
	if got := e.Extract(doc, ParseSpec("div[unclosed")); got != "" {
		t.Errorf("expected empty string for malformed selector, got %q", got)
	}
}

func TestExtractEmptySpec(t *testing.T) {
	e := NewExtractor(testLogger)
	doc := parseDoc(t, productHTML)

	if got := e.Extract(doc, ParseSpec("")); got != "" {
		t.Errorf("expected empty string for empty spec, got %q", got)
	}
}

func TestExtractSibling(t *testing.T) {
	e := NewExtractor(testLogger)
	doc := parseDoc(t, productHTML)

	got := e.Extract(doc, ParseSpec("div.brand-row + "))
	if got != "Margaux Estate" {
		t.Errorf("expected sibling text, got %q", got)
	}
}

func TestExtractSiblingMiss(t *testing.T) {
	e := NewExtractor(testLogger)
	doc := parseDoc(t, productHTML)

	// Last element in body has no next sibling element.
	if got := e.Extract(doc, ParseSpec("div.product-description + ")); got != "" {
		t.Errorf("expected empty string when no sibling exists, got %q", got)
	}
}

func TestExtractTextPattern(t *testing.T) {
	e := NewExtractor(testLogger)
	doc := parseDoc(t, productHTML)

	got := e.Extract(doc, ParseSpec(`text*='SKU[:\s]+'`))
	if got != "SKU: WN-4421" {
		t.Errorf("expected SKU text, got %q", got)
	}
}

func TestExtractTextPatternCaseInsensitive(t *testing.T) {
	e := NewExtractor(testLogger)
	doc := parseDoc(t, productHTML)

	got := e.Extract(doc, ParseSpec(`text*='sku:'`))
	if got != "SKU: WN-4421" {
		t.Errorf("expected case-insensitive match, got %q", got)
	}
}

func TestExtractXPath(t *testing.T) {
	e := NewExtractor(testLogger)
	doc := parseDoc(t, productHTML)

	got := e.Extract(doc, ParseSpec(`xpath://div[contains(@class,'product-description')]`))
	if !strings.Contains(got, "blackcurrant") {
		t.Errorf("expected description via xpath, got %q", got)
	}
}

func TestExtractXPathMiss(t *testing.T) {
	e := NewExtractor(testLogger)
	doc := parseDoc(t, productHTML)

	if got := e.Extract(doc, ParseSpec("xpath://article")); got != "" {
		t.Errorf("expected empty string for xpath miss, got %q", got)
	}
}

func TestExtractIdempotent(t *testing.T) {
	e := NewExtractor(testLogger)
	doc := parseDoc(t, productHTML)
	spec := ParseSpec("span.price")

	first := e.Extract(doc, spec)
	second := e.Extract(doc, spec)
	if first != second {
		t.Errorf("extraction not idempotent: %q vs %q", first, second)
	}
	if first == "" {
		t.Error("expected a price value")
	}
}

func TestExtractValueWithTransform(t *testing.T) {
	e := NewExtractor(testLogger)
	doc := parseDoc(t, productHTML)

	spec := ParseSpec("span.price").WithTransform(&Transform{
		Pattern: mustCompile(t, `\$(\d+\.\d{2})`),
		Kind:    KindFloat,
	})
	got := e.ExtractValue(doc, spec)
	if got != 22.99 {
		t.Errorf("expected 22.99, got %v", got)
	}
}

func TestExtractValueTransformMissYieldsZero(t *testing.T) {
	e := NewExtractor(testLogger)
	doc := parseDoc(t, productHTML)

	// Selector hits but the configured pattern does not match the text.
	spec := ParseSpec("h1.product-title").WithTransform(&Transform{
		Pattern: mustCompile(t, `\$(\d+\.\d{2})`),
		Kind:    KindFloat,
	})
	got := e.ExtractValue(doc, spec)
	if got != 0.0 {
		t.Errorf("expected zero value on pattern miss, got %v", got)
	}
}

func BenchmarkExtractSelector(b *testing.B) {
	e := NewExtractor(testLogger)
	doc, _ := goquery.NewDocumentFromReader(strings.NewReader(productHTML))
	spec := ParseSpec("h1.product-title")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Extract(doc, spec)
	}
}

func BenchmarkExtractTextPattern(b *testing.B) {
	e := NewExtractor(testLogger)
	doc, _ := goquery.NewDocumentFromReader(strings.NewReader(productHTML))
	spec := ParseSpec(`text*='SKU[:\s]+'`)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Extract(doc, spec)
	}
}
