package config

import (
	"fmt"
	"net/url"
	"regexp"
)

// ValidateSite checks a site configuration for invalid values.
func ValidateSite(cfg *SiteConfig) error {
	if cfg.Site.BaseURL != "" {
		u, err := url.Parse(cfg.Site.BaseURL)
		if err != nil {
			return fmt.Errorf("invalid site.base_url: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("site.base_url scheme must be http or https, got %q", u.Scheme)
		}
	}
	if cfg.Site.RateLimit < 0 {
		return fmt.Errorf("site.rate_limit must be >= 0")
	}
	if cfg.Site.Timeout <= 0 {
		return fmt.Errorf("site.timeout must be > 0")
	}
	if cfg.Site.FetcherType != "http" && cfg.Site.FetcherType != "browser" {
		return fmt.Errorf("site.fetcher_type must be 'http' or 'browser', got %q", cfg.Site.FetcherType)
	}
	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}
	if cfg.Fetcher.MaxRedirects < 0 {
		return fmt.Errorf("fetcher.max_redirects must be >= 0")
	}
	if cfg.ErrorHandling.MaxRetries < 0 {
		return fmt.Errorf("error_handling.max_retries must be >= 0")
	}

	if cfg.CollectionPage.ProductLinkPattern != "" {
		if _, err := regexp.Compile(cfg.CollectionPage.ProductLinkPattern); err != nil {
			return fmt.Errorf("invalid collection_page.product_link_pattern: %w", err)
		}
	}
	for _, pat := range cfg.ProductURLPatterns {
		if _, err := regexp.Compile(pat); err != nil {
			return fmt.Errorf("invalid product_url_patterns entry %q: %w", pat, err)
		}
	}

	for field, tr := range cfg.Transformations {
		if tr.Pattern != "" {
			if _, err := regexp.Compile(tr.Pattern); err != nil {
				return fmt.Errorf("invalid transformation pattern for %q: %w", field, err)
			}
		}
		switch tr.Type {
		case "", "string", "float", "money", "percent", "abv", "int":
		default:
			return fmt.Errorf("unknown transformation type %q for field %q", tr.Type, field)
		}
	}

	return nil
}

// ValidateProduct checks a product configuration for invalid values.
func ValidateProduct(cfg *ProductConfig) error {
	if cfg.ProductType == "" {
		return fmt.Errorf("product_type is required")
	}
	seen := make(map[string]bool, len(cfg.Fields))
	for _, f := range cfg.Fields {
		if f.Name == "" {
			return fmt.Errorf("field with empty name")
		}
		if seen[f.Name] {
			return fmt.Errorf("duplicate field %q", f.Name)
		}
		seen[f.Name] = true
	}
	return nil
}

// ValidateURL checks if a URL string is valid for crawling.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
