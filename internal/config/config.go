package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// SiteConfig describes how to crawl and extract one retail site.
type SiteConfig struct {
	Site           SiteInfo                   `mapstructure:"site"            yaml:"site"`
	Fetcher        FetcherConfig              `mapstructure:"fetcher"         yaml:"fetcher"`
	CollectionPage CollectionPageConfig       `mapstructure:"collection_page" yaml:"collection_page"`
	// ProductURLPatterns overrides the built-in product detail URL patterns
	// used to classify links found on collection pages.
	ProductURLPatterns []string                   `mapstructure:"product_url_patterns" yaml:"product_url_patterns"`
	Selectors          map[string]string          `mapstructure:"selectors"            yaml:"selectors"`
	Transformations    map[string]TransformConfig `mapstructure:"transformations"      yaml:"transformations"`
	ErrorHandling      ErrorHandlingConfig        `mapstructure:"error_handling"       yaml:"error_handling"`
}

// SiteInfo holds the basic connection parameters for a site.
type SiteInfo struct {
	Name      string        `mapstructure:"name"       yaml:"name"`
	BaseURL   string        `mapstructure:"base_url"   yaml:"base_url"`
	UserAgent string        `mapstructure:"user_agent" yaml:"user_agent"`
	RateLimit time.Duration `mapstructure:"rate_limit" yaml:"rate_limit"`
	Timeout   time.Duration `mapstructure:"timeout"    yaml:"timeout"`
	// FetcherType selects the fetcher implementation: "http" or "browser".
	FetcherType string `mapstructure:"fetcher_type" yaml:"fetcher_type"`
}

// FetcherConfig controls transport-level behavior.
type FetcherConfig struct {
	FollowRedirects bool  `mapstructure:"follow_redirects" yaml:"follow_redirects"`
	MaxRedirects    int   `mapstructure:"max_redirects"    yaml:"max_redirects"`
	MaxBodySize     int64 `mapstructure:"max_body_size"    yaml:"max_body_size"`
	TLSInsecure     bool  `mapstructure:"tls_insecure"     yaml:"tls_insecure"`
}

// CollectionPageConfig controls product link discovery on listing pages.
type CollectionPageConfig struct {
	ProductLinkSelector string `mapstructure:"product_link_selector" yaml:"product_link_selector"`
	ProductLinkPattern  string `mapstructure:"product_link_pattern"  yaml:"product_link_pattern"`
}

// TransformConfig applies a capturing regex to an extracted value and
// coerces the first group to the declared type.
type TransformConfig struct {
	Pattern string `mapstructure:"pattern" yaml:"pattern"`
	Type    string `mapstructure:"type"    yaml:"type"` // string, float, int
}

// ErrorHandlingConfig controls retry behavior on fetch failure.
type ErrorHandlingConfig struct {
	MaxRetries  int           `mapstructure:"max_retries"   yaml:"max_retries"`
	RetryDelay  time.Duration `mapstructure:"retry_delay"   yaml:"retry_delay"`
	SkipOnError bool          `mapstructure:"skip_on_error" yaml:"skip_on_error"`
}

// ProductConfig describes a product type: which fields a record carries and
// which open-ended extra fields to attempt via label matching.
type ProductConfig struct {
	ProductType string        `mapstructure:"product_type" yaml:"product_type"`
	Fields      []FieldConfig `mapstructure:"fields"       yaml:"fields"`
	ExtraFields []string      `mapstructure:"extra_fields" yaml:"extra_fields"`
}

// FieldConfig declares one output field of a product type.
type FieldConfig struct {
	Name     string `mapstructure:"name"     yaml:"name"`
	Type     string `mapstructure:"type"     yaml:"type"`
	Required bool   `mapstructure:"required" yaml:"required"`
	Disabled bool   `mapstructure:"disabled" yaml:"disabled"`
}

// EnabledFieldNames returns the names of all fields not marked disabled,
// in declaration order. Used as the CSV column order.
func (p *ProductConfig) EnabledFieldNames() []string {
	names := make([]string, 0, len(p.Fields))
	for _, f := range p.Fields {
		if !f.Disabled {
			names = append(names, f.Name)
		}
	}
	return names
}

// HasSelector reports whether the site config carries an explicit selector
// for the given field. Fields without one fall back to auto-detection.
func (s *SiteConfig) HasSelector(field string) bool {
	spec, ok := s.Selectors[field]
	return ok && spec != ""
}

// LinkPatterns merges the site's product URL patterns with the collection
// page's link pattern, if set. An empty result means the built-in pattern
// set applies.
func (s *SiteConfig) LinkPatterns() []string {
	patterns := append([]string{}, s.ProductURLPatterns...)
	if p := s.CollectionPage.ProductLinkPattern; p != "" {
		patterns = append(patterns, p)
	}
	return patterns
}

// DefaultSiteConfig returns a SiteConfig with sensible defaults.
func DefaultSiteConfig() *SiteConfig {
	return &SiteConfig{
		Site: SiteInfo{
			UserAgent:   "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			RateLimit:   1 * time.Second,
			Timeout:     30 * time.Second,
			FetcherType: "http",
		},
		Fetcher: FetcherConfig{
			FollowRedirects: true,
			MaxRedirects:    10,
			MaxBodySize:     10 * 1024 * 1024, // 10MB
		},
		ErrorHandling: ErrorHandlingConfig{
			MaxRetries:  3,
			RetryDelay:  2 * time.Second,
			SkipOnError: true,
		},
	}
}

// DefaultProductConfig returns a generic product schema matching the
// canonical auto-detected fields.
func DefaultProductConfig() *ProductConfig {
	return &ProductConfig{
		ProductType: "generic",
		Fields: []FieldConfig{
			{Name: "title", Type: "string", Required: true},
			{Name: "price", Type: "money"},
			{Name: "collection", Type: "string"},
			{Name: "description", Type: "string"},
			{Name: "msrp", Type: "money"},
			{Name: "brand", Type: "string"},
			{Name: "sku", Type: "string"},
			{Name: "image_url", Type: "string"},
		},
	}
}
