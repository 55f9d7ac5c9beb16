// Package linkscan classifies URLs found on collection pages and extracts
// product identifiers from URL paths.
package linkscan

import (
	"net/url"
	"regexp"
)

// defaultProductPatterns recognize product detail pages across common
// retail URL schemes. A URL matching any one pattern is a product page.
var defaultProductPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/p/\d+`),
	regexp.MustCompile(`/dp/[A-Z0-9]+`),
	regexp.MustCompile(`/products/[\w-]+`),
	regexp.MustCompile(`/item/\d+`),
	regexp.MustCompile(`/shop/[\w-]+/[\w-]+/[\w-]+-\d+`),
}

// skuPatterns extract a product identifier from a URL path, tried in
// order. The first capture group of the first matching pattern wins. The
// final pattern is a loose fallback: any run of six or more digits.
var skuPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/p/([^/?]+)`),
	regexp.MustCompile(`/dp/([^/?]+)`),
	regexp.MustCompile(`/item/(\d+)`),
	regexp.MustCompile(`/products/[\w-]+-(\d+)`),
	regexp.MustCompile(`(\d{6,})`),
}

// Classifier decides whether a URL points at a product detail page.
// The zero-value pattern set covers common retail URL layouts; sites with
// unusual schemes supply their own patterns.
type Classifier struct {
	patterns []*regexp.Regexp
}

// NewClassifier creates a classifier with the built-in pattern set.
func NewClassifier() *Classifier {
	return &Classifier{patterns: defaultProductPatterns}
}

// NewClassifierWithPatterns creates a classifier from site-supplied
// patterns. Patterns that fail to compile are skipped; an empty or fully
// invalid set falls back to the built-ins.
func NewClassifierWithPatterns(patterns []string) *Classifier {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			continue
		}
		compiled = append(compiled, re)
	}
	if len(compiled) == 0 {
		return NewClassifier()
	}
	return &Classifier{patterns: compiled}
}

// IsProductURL reports whether the URL's path matches any product pattern.
func (c *Classifier) IsProductURL(rawURL string) bool {
	path := urlPath(rawURL)
	for _, re := range c.patterns {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

// SKUFromURL extracts a product identifier from a URL path, or "" when no
// pattern matches.
func SKUFromURL(rawURL string) string {
	path := urlPath(rawURL)
	for _, re := range skuPatterns {
		if m := re.FindStringSubmatch(path); m != nil {
			return m[1]
		}
	}
	return ""
}

// urlPath isolates the path component so query strings and fragments never
// influence classification. Unparseable input is matched as-is.
func urlPath(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Path
}
