package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vinecrawl/vinecrawl/internal/config"
	"github.com/vinecrawl/vinecrawl/internal/crawler"
	"github.com/vinecrawl/vinecrawl/internal/fetcher"
	"github.com/vinecrawl/vinecrawl/internal/linkscan"
	"github.com/vinecrawl/vinecrawl/internal/output"
	"github.com/vinecrawl/vinecrawl/internal/types"
)

var (
	configDir   string
	verbose     bool
	siteName    string
	productName string
	outputPath  string
	outputType  string
	rateLimit   string
	userAgent   string
	fetcherType string
	maxRetries  int
	urlList     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "vinecrawl",
		Short: "vinecrawl — product page extraction for retail sites",
		Long: `vinecrawl extracts structured product records from retail catalog sites.

Point it at a collection page and it discovers the product links, fetches
each product page, and writes one record per product. Sites with a config
use explicit selectors; unknown sites fall back to automatic detection of
title, price, SKU, brand, image, and description.`,
	}

	rootCmd.PersistentFlags().StringVarP(&configDir, "config-dir", "c", "", "config directory (default ./configs)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(crawlCmd())
	rootCmd.AddCommand(discoverCmd())
	rootCmd.AddCommand(autoCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// crawlCmd creates the "crawl" subcommand.
func crawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [collection-url...]",
		Short: "Crawl collection pages and extract product records",
		Long: `Crawl one or more collection pages for a configured site: discover the
product links, fetch each product page, and write extracted records.
Use --urls to extract from explicit product URLs instead.`,
		RunE: runCrawl,
	}

	cmd.Flags().StringVarP(&siteName, "site", "s", "", "site config name (required)")
	cmd.Flags().StringVarP(&productName, "product", "p", "", "product config name (default: generic schema)")
	cmd.Flags().StringVar(&urlList, "urls", "", "comma-separated product URLs to extract directly")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file path (default ./output/<site>_products.<format>)")
	cmd.Flags().StringVarP(&outputType, "format", "f", "csv", "output format: csv, jsonl")
	cmd.Flags().StringVar(&rateLimit, "rate-limit", "", "delay between requests, e.g. 500ms, 2s")
	cmd.Flags().StringVar(&userAgent, "user-agent", "", "custom User-Agent string")
	cmd.Flags().StringVar(&fetcherType, "fetcher", "", "fetcher type: http, browser")
	cmd.Flags().IntVar(&maxRetries, "max-retries", -1, "max fetch attempts per page (-1 = use config)")
	_ = cmd.MarkFlagRequired("site")

	return cmd
}

// runCrawl executes the crawl command.
func runCrawl(cmd *cobra.Command, args []string) error {
	logger := setupLogger()

	loader := config.NewLoader(configDir)
	site, err := loader.Site(siteName)
	if err != nil {
		return fmt.Errorf("load site config: %w", err)
	}
	product, err := loadProduct(loader)
	if err != nil {
		return err
	}

	applyCLIOverrides(site)
	if err := config.ValidateSite(site); err != nil {
		return fmt.Errorf("invalid site config: %w", err)
	}

	productURLs := splitList(urlList)
	if len(args) == 0 && len(productURLs) == 0 {
		return fmt.Errorf("nothing to crawl: pass collection URLs or --urls")
	}
	for _, u := range append(append([]string{}, args...), productURLs...) {
		if err := config.ValidateURL(u); err != nil {
			return fmt.Errorf("invalid URL %q: %w", u, err)
		}
	}

	f, err := fetcher.New(site, logger)
	if err != nil {
		return fmt.Errorf("create fetcher: %w", err)
	}
	defer f.Close()

	if outputPath == "" {
		outputPath = output.DefaultPath("./output", site.Site.Name, outputType)
	}
	writer, err := output.New(strings.ToLower(outputType), outputPath, product.EnabledFieldNames(), logger)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer writer.Close()

	ctx, cancel := signalContext(logger)
	defer cancel()

	c := crawler.New(f, site, product, logger)
	logger.Info("starting crawl",
		"site", site.Site.Name,
		"collections", len(args),
		"urls", len(productURLs),
		"output", outputPath,
	)

	start := time.Now()
	var records []*types.Record
	var crawlErr error

	for _, collectionURL := range args {
		recs, err := c.CrawlCollection(ctx, collectionURL)
		records = append(records, recs...)
		if err != nil {
			crawlErr = err
			break
		}
	}
	if crawlErr == nil && len(productURLs) > 0 {
		recs, err := c.CrawlURLs(ctx, productURLs)
		records = append(records, recs...)
		crawlErr = err
	}

	if err := writer.Write(records); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	stats := c.Stats()
	elapsed := time.Since(start)
	logger.Info("crawl complete",
		"elapsed", elapsed,
		"discovered", stats.Discovered,
		"visited", stats.Visited,
		"extracted", stats.Extracted,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
	)

	fmt.Printf("Crawl complete in %s\n", elapsed.Round(time.Millisecond))
	fmt.Printf("  Pages:    %d visited, %d failed\n", stats.Visited, stats.Failed)
	fmt.Printf("  Records:  %d extracted, %d skipped\n", stats.Extracted, stats.Skipped)
	fmt.Printf("  Output:   %s\n", outputPath)

	if crawlErr != nil && !errors.Is(crawlErr, types.ErrCrawlCancel) {
		return crawlErr
	}
	if errors.Is(crawlErr, types.ErrCrawlCancel) {
		fmt.Println("Interrupted; partial results were written.")
	}
	return nil
}

// discoverCmd creates the "discover" subcommand.
func discoverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discover [collection-url]",
		Short: "List product URLs found on a collection page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogger()

			site := config.DefaultSiteConfig()
			if siteName != "" {
				loaded, err := config.NewLoader(configDir).Site(siteName)
				if err != nil {
					return fmt.Errorf("load site config: %w", err)
				}
				site = loaded
			}
			applyCLIOverrides(site)

			if err := config.ValidateURL(args[0]); err != nil {
				return fmt.Errorf("invalid URL %q: %w", args[0], err)
			}

			f, err := fetcher.New(site, logger)
			if err != nil {
				return fmt.Errorf("create fetcher: %w", err)
			}
			defer f.Close()

			ctx, cancel := signalContext(logger)
			defer cancel()

			page, err := f.Fetch(ctx, args[0])
			if err != nil {
				return fmt.Errorf("fetch collection: %w", err)
			}
			doc, err := page.Document()
			if err != nil {
				return fmt.Errorf("parse collection: %w", err)
			}

			classifier := linkscan.NewClassifier()
			if patterns := site.LinkPatterns(); len(patterns) > 0 {
				classifier = linkscan.NewClassifierWithPatterns(patterns)
			}
			scanner := linkscan.NewScanner(classifier, site.CollectionPage.ProductLinkSelector)

			links := scanner.ScanLinks(doc, args[0])
			for _, link := range links {
				if sku := linkscan.SKUFromURL(link); sku != "" {
					fmt.Printf("%s\tsku=%s\n", link, sku)
				} else {
					fmt.Println(link)
				}
			}
			logger.Info("discovery complete", "url", args[0], "products", len(links))
			return nil
		},
	}

	cmd.Flags().StringVarP(&siteName, "site", "s", "", "site config name (optional)")
	return cmd
}

// autoCmd creates the "auto" subcommand: zero-config extraction.
func autoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auto [url...]",
		Short: "Extract product records with automatic detection only",
		Long: `Extract records without any site config. Every field is resolved by the
built-in heuristics. Collection URLs are scanned for product links first;
product URLs are extracted directly. Results print as CSV on stdout.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogger()

			site := config.DefaultSiteConfig()
			product := config.DefaultProductConfig()
			applyCLIOverrides(site)

			for _, u := range args {
				if err := config.ValidateURL(u); err != nil {
					return fmt.Errorf("invalid URL %q: %w", u, err)
				}
			}

			f, err := fetcher.New(site, logger)
			if err != nil {
				return fmt.Errorf("create fetcher: %w", err)
			}
			defer f.Close()

			ctx, cancel := signalContext(logger)
			defer cancel()

			classifier := linkscan.NewClassifier()
			var collections, products []string
			for _, u := range args {
				if classifier.IsProductURL(u) {
					products = append(products, u)
				} else {
					collections = append(collections, u)
				}
			}

			c := crawler.New(f, site, product, logger)
			var records []*types.Record
			for _, u := range collections {
				recs, err := c.CrawlCollection(ctx, u)
				records = append(records, recs...)
				if err != nil && !errors.Is(err, types.ErrCrawlCancel) {
					return err
				}
			}
			if len(products) > 0 {
				recs, err := c.CrawlURLs(ctx, products)
				records = append(records, recs...)
				if err != nil && !errors.Is(err, types.ErrCrawlCancel) {
					return err
				}
			}

			return extractToStdout(records, product)
		},
	}

	cmd.Flags().StringVar(&rateLimit, "rate-limit", "", "delay between requests, e.g. 500ms, 2s")
	cmd.Flags().StringVar(&userAgent, "user-agent", "", "custom User-Agent string")
	cmd.Flags().StringVar(&fetcherType, "fetcher", "", "fetcher type: http, browser")
	return cmd
}

func extractToStdout(records []*types.Record, product *config.ProductConfig) error {
	return output.WriteRecords(os.Stdout, records, product.EnabledFieldNames())
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "List available site and product configs",
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := config.NewLoader(configDir)

			if siteName != "" {
				site, err := loader.Site(siteName)
				if err != nil {
					return err
				}
				fmt.Printf("Site:        %s\n", site.Site.Name)
				fmt.Printf("  Base URL:     %s\n", site.Site.BaseURL)
				fmt.Printf("  Fetcher:      %s\n", site.Site.FetcherType)
				fmt.Printf("  Rate Limit:   %s\n", site.Site.RateLimit)
				fmt.Printf("  Timeout:      %s\n", site.Site.Timeout)
				fmt.Printf("  Selectors:    %d configured\n", len(site.Selectors))
				fmt.Printf("  Transforms:   %d configured\n", len(site.Transformations))
				fmt.Printf("  Max Retries:  %d\n", site.ErrorHandling.MaxRetries)
				return nil
			}

			fmt.Println("Sites:")
			for _, name := range loader.AvailableSites() {
				fmt.Printf("  %s\n", name)
			}
			fmt.Println("Products:")
			for _, name := range loader.AvailableProducts() {
				fmt.Printf("  %s\n", name)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&siteName, "site", "s", "", "show one site config in detail")
	return cmd
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("vinecrawl %s\n", config.Version)
		},
	}
}

// loadProduct resolves the product schema: named config or the generic
// default.
func loadProduct(loader *config.Loader) (*config.ProductConfig, error) {
	if productName == "" {
		return config.DefaultProductConfig(), nil
	}
	product, err := loader.Product(productName)
	if err != nil {
		return nil, fmt.Errorf("load product config: %w", err)
	}
	return product, nil
}

// setupLogger creates a structured logger.
func setupLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, finishing up...", "signal", sig)
		cancel()
	}()
	return ctx, cancel
}

// applyCLIOverrides applies command-line flag values to the site config.
func applyCLIOverrides(site *config.SiteConfig) {
	if rateLimit != "" {
		if d, err := time.ParseDuration(rateLimit); err == nil {
			site.Site.RateLimit = d
		}
	}
	if userAgent != "" {
		site.Site.UserAgent = userAgent
	}
	if fetcherType != "" {
		site.Site.FetcherType = strings.ToLower(fetcherType)
	}
	if maxRetries >= 0 {
		site.ErrorHandling.MaxRetries = maxRetries
	}
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
