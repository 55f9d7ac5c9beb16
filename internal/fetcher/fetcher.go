// Package fetcher retrieves product pages over plain HTTP or through a
// headless browser for sites that render their catalog client-side.
package fetcher

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vinecrawl/vinecrawl/internal/config"
	"github.com/vinecrawl/vinecrawl/internal/types"
)

// Fetcher is the interface for all page fetcher implementations.
type Fetcher interface {
	// Fetch retrieves the page at the given URL.
	Fetch(ctx context.Context, url string) (*types.Page, error)

	// Close releases any resources held by the fetcher.
	Close() error

	// Type returns the fetcher type identifier.
	Type() string
}

// New creates the fetcher the site config asks for. An empty fetcher_type
// means plain HTTP.
func New(site *config.SiteConfig, logger *slog.Logger) (Fetcher, error) {
	switch site.Site.FetcherType {
	case "", "http":
		return NewHTTPFetcher(site, logger)
	case "browser":
		return NewBrowserFetcher(site, logger)
	default:
		return nil, fmt.Errorf("unknown fetcher type %q", site.Site.FetcherType)
	}
}
