package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vinecrawl/vinecrawl/internal/types"
)

func writeConfig(t *testing.T, dir, kind, name, content string) {
	t.Helper()
	path := filepath.Join(dir, kind)
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(path, name+".yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

const testSiteYAML = `
site:
  name: "Test Cellars"
  base_url: "https://www.testcellars.com"
  rate_limit: 500ms
  timeout: 10s
  fetcher_type: http
selectors:
  title: "h1.name"
  price: "span.price"
transformations:
  price:
    pattern: '\$(\d+\.\d{2})'
    type: float
error_handling:
  max_retries: 2
  retry_delay: 1s
`

func TestLoadSite(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "sites", "testcellars", testSiteYAML)

	l := NewLoader(dir)
	site, err := l.Site("testcellars")
	if err != nil {
		t.Fatalf("load site: %v", err)
	}

	if site.Site.Name != "Test Cellars" {
		t.Errorf("expected site name, got %q", site.Site.Name)
	}
	if site.Site.RateLimit != 500*time.Millisecond {
		t.Errorf("expected 500ms rate limit, got %s", site.Site.RateLimit)
	}
	if site.Selectors["title"] != "h1.name" {
		t.Errorf("expected title selector, got %q", site.Selectors["title"])
	}
	if site.Transformations["price"].Type != "float" {
		t.Errorf("expected float transform, got %q", site.Transformations["price"].Type)
	}
	// Defaults fill fields the file omits.
	if site.ErrorHandling.MaxRetries != 2 {
		t.Errorf("expected overridden max_retries 2, got %d", site.ErrorHandling.MaxRetries)
	}
	if site.Fetcher.MaxBodySize != 10*1024*1024 {
		t.Errorf("expected default max_body_size, got %d", site.Fetcher.MaxBodySize)
	}
}

func TestLoadSiteCaches(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "sites", "testcellars", testSiteYAML)

	l := NewLoader(dir)
	first, err := l.Site("testcellars")
	if err != nil {
		t.Fatalf("load site: %v", err)
	}
	second, err := l.Site("testcellars")
	if err != nil {
		t.Fatalf("load site: %v", err)
	}
	if first != second {
		t.Error("expected cached pointer on second load")
	}

	l.ClearCache()
	third, err := l.Site("testcellars")
	if err != nil {
		t.Fatalf("load site: %v", err)
	}
	if first == third {
		t.Error("expected fresh config after cache clear")
	}
}

func TestLoadSiteNotFound(t *testing.T) {
	l := NewLoader(t.TempDir())
	_, err := l.Site("missing")
	if err == nil {
		t.Fatal("expected error for missing config")
	}
	var cfgErr *types.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("expected ConfigError, got %T", err)
	}
}

func TestLoadSiteEnvSubstitution(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "sites", "envsite", `
site:
  name: "Env Site"
  base_url: "https://shop.example.com"
  user_agent: "${TEST_CRAWL_UA}"
  timeout: 5s
  rate_limit: 1s
  fetcher_type: http
`)
	t.Setenv("TEST_CRAWL_UA", "custom-agent/1.0")

	site, err := NewLoader(dir).Site("envsite")
	if err != nil {
		t.Fatalf("load site: %v", err)
	}
	if site.Site.UserAgent != "custom-agent/1.0" {
		t.Errorf("expected env substitution, got %q", site.Site.UserAgent)
	}
}

func TestLoadSiteEnvUnsetLeftAsIs(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "sites", "envsite", `
site:
  name: "Env Site"
  base_url: "https://shop.example.com"
  user_agent: "${VINECRAWL_UNSET_VAR_FOR_TEST}"
  timeout: 5s
  rate_limit: 1s
  fetcher_type: http
`)

	site, err := NewLoader(dir).Site("envsite")
	if err != nil {
		t.Fatalf("load site: %v", err)
	}
	if site.Site.UserAgent != "${VINECRAWL_UNSET_VAR_FOR_TEST}" {
		t.Errorf("expected unset var left as-is, got %q", site.Site.UserAgent)
	}
}

func TestLoadSiteInvalid(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "sites", "badsite", `
site:
  name: "Bad"
  base_url: "ftp://example.com"
  timeout: 5s
  fetcher_type: http
`)

	_, err := NewLoader(dir).Site("badsite")
	if err == nil {
		t.Fatal("expected validation error for ftp base_url")
	}
}

func TestLoadProduct(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "products", "wine", `
product_type: wine
fields:
  - name: title
    type: string
    required: true
  - name: abv
    type: percent
  - name: price
    type: money
    disabled: true
extra_fields:
  - varietal
`)

	p, err := NewLoader(dir).Product("wine")
	if err != nil {
		t.Fatalf("load product: %v", err)
	}
	if p.ProductType != "wine" {
		t.Errorf("expected wine product type, got %q", p.ProductType)
	}

	names := p.EnabledFieldNames()
	if len(names) != 2 || names[0] != "title" || names[1] != "abv" {
		t.Errorf("expected enabled fields [title abv], got %v", names)
	}
	if len(p.ExtraFields) != 1 || p.ExtraFields[0] != "varietal" {
		t.Errorf("expected extra field varietal, got %v", p.ExtraFields)
	}
}

func TestLoadProductDuplicateField(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "products", "dup", `
product_type: wine
fields:
  - name: title
  - name: title
`)

	if _, err := NewLoader(dir).Product("dup"); err == nil {
		t.Fatal("expected error for duplicate field")
	}
}

func TestAvailableConfigs(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "sites", "alpha", testSiteYAML)
	writeConfig(t, dir, "sites", "beta", testSiteYAML)
	writeConfig(t, dir, "products", "wine", "product_type: wine")

	l := NewLoader(dir)
	sites := l.AvailableSites()
	if len(sites) != 2 {
		t.Errorf("expected 2 sites, got %v", sites)
	}
	products := l.AvailableProducts()
	if len(products) != 1 || products[0] != "wine" {
		t.Errorf("expected [wine], got %v", products)
	}
}

func TestLinkPatterns(t *testing.T) {
	site := DefaultSiteConfig()
	if got := site.LinkPatterns(); len(got) != 0 {
		t.Errorf("expected no patterns by default, got %v", got)
	}

	site.ProductURLPatterns = []string{`/wines/\d+`}
	site.CollectionPage.ProductLinkPattern = `/bottles/[\w-]+`
	got := site.LinkPatterns()
	if len(got) != 2 || got[0] != `/wines/\d+` || got[1] != `/bottles/[\w-]+` {
		t.Errorf("expected merged patterns, got %v", got)
	}
}

func TestValidateURLs(t *testing.T) {
	valid := []string{
		"https://www.totalwine.com/wine",
		"http://shop.example.com/p/1",
	}
	for _, u := range valid {
		if err := ValidateURL(u); err != nil {
			t.Errorf("expected valid URL %q: %v", u, err)
		}
	}

	invalid := []string{
		"ftp://example.com/file",
		"not a url",
		"https://",
	}
	for _, u := range invalid {
		if err := ValidateURL(u); err == nil {
			t.Errorf("expected invalid URL %q", u)
		}
	}
}
