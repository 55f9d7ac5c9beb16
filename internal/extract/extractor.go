package extract

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// Extractor resolves FieldSpecs against a parsed document. Extraction is a
// total function: a miss, an absent element, or a malformed selector all
// yield "", never an error.
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor creates a new field extractor.
func NewExtractor(logger *slog.Logger) *Extractor {
	return &Extractor{
		logger: logger.With("component", "extractor"),
	}
}

// Extract returns the trimmed text located by the spec, or "".
func (e *Extractor) Extract(doc *goquery.Document, spec FieldSpec) string {
	switch spec.Kind {
	case SpecNone:
		return ""
	case SpecTextPattern:
		return e.extractTextPattern(doc, spec)
	case SpecSibling:
		return e.extractSibling(doc, spec)
	case SpecXPath:
		return e.extractXPath(doc, spec)
	default:
		return e.extractSelector(doc, spec)
	}
}

// ExtractValue extracts and applies the spec's transform, if any. Without
// a transform the raw string is returned.
func (e *Extractor) ExtractValue(doc *goquery.Document, spec FieldSpec) any {
	text := e.Extract(doc, spec)
	if spec.Transform == nil {
		return text
	}
	return spec.Transform.Apply(text)
}

// extractSelector resolves the first matching element's trimmed text.
func (e *Extractor) extractSelector(doc *goquery.Document, spec FieldSpec) string {
	sel := doc.Find(spec.Selector).First()
	if sel.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(sel.Text())
}

// extractSibling resolves the spec's selector and returns the trimmed text
// of the match's next sibling element.
func (e *Extractor) extractSibling(doc *goquery.Document, spec FieldSpec) string {
	first := doc.Find(spec.Selector).First()
	if first.Length() == 0 {
		return ""
	}
	sibling := first.Next()
	if sibling.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(sibling.Text())
}

// extractTextPattern searches all text nodes for a match and returns the
// trimmed text content of the matched node's parent element.
func (e *Extractor) extractTextPattern(doc *goquery.Document, spec FieldSpec) string {
	if spec.TextPattern == nil {
		return ""
	}

	var result string
	doc.Find("*").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if len(sel.Nodes) == 0 {
			return true
		}
		for child := sel.Nodes[0].FirstChild; child != nil; child = child.NextSibling {
			if child.Type == html.TextNode && spec.TextPattern.MatchString(child.Data) {
				result = strings.TrimSpace(sel.Text())
				return false
			}
		}
		return true
	})

	return result
}

// extractXPath evaluates an XPath expression and returns the first node's
// trimmed inner text.
func (e *Extractor) extractXPath(doc *goquery.Document, spec FieldSpec) string {
	root := doc.Get(0)
	if root == nil {
		return ""
	}
	node, err := htmlquery.Query(root, spec.Selector)
	if err != nil || node == nil {
		e.logger.Debug("xpath miss", "expr", spec.Selector, "error", err)
		return ""
	}
	return strings.TrimSpace(htmlquery.InnerText(node))
}
