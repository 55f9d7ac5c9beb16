package extract

import (
	"log/slog"
	"regexp"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/vinecrawl/vinecrawl/internal/config"
	"github.com/vinecrawl/vinecrawl/internal/types"
)

// Builder assembles product records from fetched pages. Per field the
// precedence is: configured selector first, auto-detection as fallback.
// A field that both miss is simply absent from the record; building never
// fails on a per-field basis.
type Builder struct {
	extractor *Extractor
	detector  *Detector
	logger    *slog.Logger

	mu      sync.Mutex
	reCache map[string]*regexp.Regexp
}

// NewBuilder creates a record builder.
func NewBuilder(logger *slog.Logger) *Builder {
	return &Builder{
		extractor: NewExtractor(logger),
		detector:  NewDetector(logger),
		logger:    logger.With("component", "builder"),
		reCache:   make(map[string]*regexp.Regexp),
	}
}

// Build extracts one record from a fetched product page. The site config
// supplies selectors and transforms; the product config declares which
// fields the record carries. Returns an error only when the page body
// cannot be parsed as HTML.
func (b *Builder) Build(page *types.Page, site *config.SiteConfig, product *config.ProductConfig) (*types.Record, error) {
	doc, err := page.Document()
	if err != nil {
		return nil, &types.ParseError{URL: page.URL, Err: err}
	}

	rec := types.NewRecord(page.URL)
	rec.FetchedAt = page.FetchedAt

	for _, field := range product.Fields {
		if field.Disabled {
			continue
		}
		value := b.buildField(doc, page.URL, site, field)
		if value != nil && value != "" {
			rec.Set(field.Name, value)
		}
	}

	for _, name := range product.ExtraFields {
		if v := b.detector.Field(doc, name); v != "" {
			rec.Set(name, v)
		}
	}

	b.logger.Debug("record built", "url", page.URL, "fields", len(rec.Fields))
	return rec, nil
}

// buildField resolves one field's value: configured selector, then
// auto-detection, with the field's transform applied to whichever hit.
func (b *Builder) buildField(doc *goquery.Document, pageURL string, site *config.SiteConfig, field config.FieldConfig) any {
	transform := b.transformFor(site, field)

	if site.HasSelector(field.Name) {
		spec := ParseSpec(site.Selectors[field.Name])
		text := b.extractor.Extract(doc, spec)
		if text != "" {
			if transform != nil {
				return transform.Apply(text)
			}
			return text
		}
	}

	text := b.detect(doc, pageURL, field.Name)
	if text == "" {
		return nil
	}
	if transform != nil {
		return transform.Apply(text)
	}
	return text
}

// detect runs the auto-detection heuristic for a canonical field name, or
// generic label matching for anything else.
func (b *Builder) detect(doc *goquery.Document, pageURL, field string) string {
	switch field {
	case "title", "name":
		return b.detector.Title(doc)
	case "price":
		return b.detector.Price(doc)
	case "msrp", "compare_price":
		return b.detector.ComparePrice(doc)
	case "sku":
		return b.detector.SKU(doc, pageURL)
	case "brand":
		return b.detector.Brand(doc)
	case "image_url":
		return b.detector.Image(doc, pageURL)
	case "description":
		return b.detector.Description(doc)
	case "collection":
		return b.detector.Collection(doc, pageURL)
	default:
		return b.detector.Field(doc, field)
	}
}

// transformFor builds the Transform for a field from the site's
// transformation table, falling back to a pattern-less coercion when the
// product schema declares a numeric type.
func (b *Builder) transformFor(site *config.SiteConfig, field config.FieldConfig) *Transform {
	if tc, ok := site.Transformations[field.Name]; ok {
		t := &Transform{Kind: ParseValueKind(tc.Type)}
		if tc.Pattern != "" {
			t.Pattern = b.getOrCompile(tc.Pattern)
		}
		return t
	}

	if kind := ParseValueKind(field.Type); kind != KindString {
		return &Transform{Kind: kind}
	}
	return nil
}

// getOrCompile caches compiled transform patterns. Patterns are validated
// at config load time; one that still fails to compile disables itself.
func (b *Builder) getOrCompile(pattern string) *regexp.Regexp {
	b.mu.Lock()
	defer b.mu.Unlock()
	if re, ok := b.reCache[pattern]; ok {
		return re
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		b.logger.Warn("invalid transform pattern", "pattern", pattern, "error", err)
		b.reCache[pattern] = nil
		return nil
	}
	b.reCache[pattern] = re
	return re
}
