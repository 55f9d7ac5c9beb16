package linkscan

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Scanner discovers product links on collection pages.
type Scanner struct {
	classifier *Classifier

	// selector narrows scanning to links under a container, e.g.
	// ".product-grid a". Empty means every anchor on the page.
	selector string
}

// NewScanner creates a scanner using the given classifier. An empty
// selector scans all anchors.
func NewScanner(classifier *Classifier, selector string) *Scanner {
	if selector == "" {
		selector = "a[href]"
	}
	return &Scanner{classifier: classifier, selector: selector}
}

// ScanLinks returns the product URLs found in the document, in discovery
// order, deduplicated. Relative hrefs are resolved against baseURL; query
// strings and fragments are stripped before deduplication so tracking
// parameters cannot produce duplicate visits.
func (s *Scanner) ScanLinks(doc *goquery.Document, baseURL string) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		base = nil
	}

	seen := make(map[string]struct{})
	var links []string

	doc.Find(s.selector).Each(func(i int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
			return
		}

		abs := Canonicalize(href, base)
		if abs == "" {
			return
		}
		if _, dup := seen[abs]; dup {
			return
		}
		if !s.classifier.IsProductURL(abs) {
			return
		}

		seen[abs] = struct{}{}
		links = append(links, abs)
	})

	return links
}

// Canonicalize resolves href against base and strips the query string and
// fragment. Returns "" for unparseable or non-HTTP hrefs.
func Canonicalize(href string, base *url.URL) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	if ref.Scheme != "http" && ref.Scheme != "https" {
		return ""
	}
	ref.RawQuery = ""
	ref.Fragment = ""
	return ref.String()
}
