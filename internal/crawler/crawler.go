// Package crawler drives the fetch/extract loop: it discovers product
// links on collection pages, fetches each product page under the site's
// rate limit, and assembles records.
package crawler

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/vinecrawl/vinecrawl/internal/config"
	"github.com/vinecrawl/vinecrawl/internal/extract"
	"github.com/vinecrawl/vinecrawl/internal/fetcher"
	"github.com/vinecrawl/vinecrawl/internal/linkscan"
	"github.com/vinecrawl/vinecrawl/internal/types"
)

// Stats counts crawl outcomes.
type Stats struct {
	Discovered int
	Visited    int
	Extracted  int
	Skipped    int
	Failed     int
}

// Crawler runs a sequential crawl of one site. Requests are spaced by the
// site's rate limit; failures on individual pages are logged and skipped
// so one bad page never aborts a run.
type Crawler struct {
	fetcher fetcher.Fetcher
	builder *extract.Builder
	scanner *linkscan.Scanner
	site    *config.SiteConfig
	product *config.ProductConfig
	logger  *slog.Logger

	stats     Stats
	lastFetch time.Time
}

// New creates a crawler for one site and product type.
func New(f fetcher.Fetcher, site *config.SiteConfig, product *config.ProductConfig, logger *slog.Logger) *Crawler {
	classifier := linkscan.NewClassifier()
	if patterns := site.LinkPatterns(); len(patterns) > 0 {
		classifier = linkscan.NewClassifierWithPatterns(patterns)
	}
	return &Crawler{
		fetcher: f,
		builder: extract.NewBuilder(logger),
		scanner: linkscan.NewScanner(classifier, site.CollectionPage.ProductLinkSelector),
		site:    site,
		product: product,
		logger:  logger.With("component", "crawler"),
	}
}

// Stats returns the counters accumulated so far.
func (c *Crawler) Stats() Stats {
	return c.stats
}

// CrawlCollection fetches a collection page, discovers product links on
// it, and crawls each one. Records extracted before a cancellation are
// returned alongside types.ErrCrawlCancel.
func (c *Crawler) CrawlCollection(ctx context.Context, collectionURL string) ([]*types.Record, error) {
	page, err := c.fetchWithRetry(ctx, collectionURL)
	if err != nil {
		return nil, err
	}
	doc, err := page.Document()
	if err != nil {
		return nil, &types.ParseError{URL: collectionURL, Err: err}
	}

	links := c.scanner.ScanLinks(doc, collectionURL)
	sort.Strings(links)
	c.stats.Discovered += len(links)
	c.logger.Info("collection scanned", "url", collectionURL, "products", len(links))

	return c.CrawlURLs(ctx, links)
}

// CrawlURLs fetches each product URL in order and extracts a record from
// it. Pages that fail to fetch, fail to parse, or yield a record with no
// title are skipped. On cancellation the records accumulated so far are
// returned with types.ErrCrawlCancel so partial output is never lost.
func (c *Crawler) CrawlURLs(ctx context.Context, urls []string) ([]*types.Record, error) {
	records := make([]*types.Record, 0, len(urls))

	for _, u := range urls {
		if err := c.waitRateLimit(ctx); err != nil {
			return records, types.ErrCrawlCancel
		}

		c.stats.Visited++
		page, err := c.fetchWithRetry(ctx, u)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return records, types.ErrCrawlCancel
			}
			c.stats.Failed++
			c.logger.Warn("fetch failed, skipping", "url", u, "error", err)
			if !c.site.ErrorHandling.SkipOnError {
				return records, err
			}
			continue
		}

		rec, err := c.builder.Build(page, c.site, c.product)
		if err != nil {
			c.stats.Failed++
			c.logger.Warn("parse failed, skipping", "url", u, "error", err)
			continue
		}
		if !rec.Valid() {
			c.stats.Skipped++
			c.logger.Debug("record has no title, skipping", "url", u)
			continue
		}

		c.stats.Extracted++
		records = append(records, rec)
		c.logger.Info("product extracted",
			"url", u,
			"title", rec.GetString("title"),
			"fields", len(rec.Fields),
		)
	}

	return records, nil
}

// fetchWithRetry fetches one URL with linearly increasing backoff. The
// delay before attempt n+1 is retry_delay * (n+1), or the server's
// Retry-After when a 429 supplied one.
func (c *Crawler) fetchWithRetry(ctx context.Context, url string) (*types.Page, error) {
	maxRetries := c.site.ErrorHandling.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		page, err := c.fetcher.Fetch(ctx, url)
		if err == nil {
			c.lastFetch = time.Now()
			return page, nil
		}
		lastErr = err

		var fe *types.FetchError
		if errors.As(err, &fe) && !fe.Retryable {
			break
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt == maxRetries-1 {
			break
		}

		delay := c.site.ErrorHandling.RetryDelay * time.Duration(attempt+1)
		if errors.As(err, &fe) && fe.RetryAfter > delay {
			delay = fe.RetryAfter
		}
		c.logger.Debug("retrying fetch", "url", url, "attempt", attempt+1, "delay", delay)
		if err := sleepCtx(ctx, delay); err != nil {
			return nil, err
		}
	}

	return nil, lastErr
}

// waitRateLimit spaces requests by the site's rate limit, measured from
// the end of the previous fetch.
func (c *Crawler) waitRateLimit(ctx context.Context) error {
	if c.site.Site.RateLimit <= 0 || c.lastFetch.IsZero() {
		return nil
	}
	wait := c.site.Site.RateLimit - time.Since(c.lastFetch)
	if wait <= 0 {
		return nil
	}
	return sleepCtx(ctx, wait)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
