package extract

import (
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/vinecrawl/vinecrawl/internal/linkscan"
)

// Detector is the zero-configuration fallback extractor. Each canonical
// field gets a fixed battery of heuristics, tried in order until one yields
// a non-empty value. All heuristics operate on the already-parsed document;
// none perform network I/O.
type Detector struct {
	logger *slog.Logger
}

// NewDetector creates a new auto-detector.
func NewDetector(logger *slog.Logger) *Detector {
	return &Detector{
		logger: logger.With("component", "autodetect"),
	}
}

var (
	currentPriceRe  = regexp.MustCompile(`\$(\d+\.\d{2})`)
	comparePriceRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:was|originally|list price|msrp|previously|compare at).*?\$(\d+\.\d{2})`),
		regexp.MustCompile(`(?i)\$(\d+\.\d{2}).*?(?:was|originally|list)`),
	}
	skuLabelRe   = regexp.MustCompile(`(?i)SKU[:\s]+([A-Z0-9-]+)`)
	brandHrefRe  = regexp.MustCompile(`(?i)/brand/`)
	brandLabelRe = regexp.MustCompile(`Brand[:\s]+([A-Za-z0-9\s&-]+)`)
	descClassRe  = regexp.MustCompile(`(?i)description|details|about`)
	breadcrumbRe = regexp.MustCompile(`(?i)breadcrumb`)
	imageExts    = []string{".jpg", ".jpeg", ".png", ".webp"}
)

// Title detects the product title: first <h1>, then og:title.
func (d *Detector) Title(doc *goquery.Document) string {
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	if content, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		return strings.TrimSpace(content)
	}
	return ""
}

// Price detects the current price: first $NN.NN match in the page text.
func (d *Detector) Price(doc *goquery.Document) string {
	if m := currentPriceRe.FindStringSubmatch(doc.Text()); m != nil {
		return m[1]
	}
	return ""
}

// ComparePrice detects the was/MSRP price: a $NN.NN amount adjacent to a
// comparison keyword, tried with the keyword on either side.
func (d *Detector) ComparePrice(doc *goquery.Document) string {
	text := doc.Text()
	for _, re := range comparePriceRes {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}

// SKU detects the product SKU: URL path patterns first, then a labeled
// "SKU:" value in the page text.
func (d *Detector) SKU(doc *goquery.Document, pageURL string) string {
	if sku := linkscan.SKUFromURL(pageURL); sku != "" {
		return sku
	}
	if m := skuLabelRe.FindStringSubmatch(doc.Text()); m != nil {
		return m[1]
	}
	return ""
}

// Brand detects the brand: og:brand meta, a /brand/ link, or a labeled
// "Brand:" value.
func (d *Detector) Brand(doc *goquery.Document) string {
	if content, ok := doc.Find(`meta[property="og:brand"]`).Attr("content"); ok {
		if brand := strings.TrimSpace(content); brand != "" {
			return brand
		}
	}

	var brand string
	doc.Find("a[href]").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		if brandHrefRe.MatchString(href) {
			brand = strings.TrimSpace(sel.Text())
			return false
		}
		return true
	})
	if brand != "" {
		return brand
	}

	if m := brandLabelRe.FindStringSubmatch(doc.Text()); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// Image detects the main product image: the first <img> whose src or
// data-src carries a known image extension and does not look like a logo
// or icon, resolved to an absolute URL against the page URL.
func (d *Detector) Image(doc *goquery.Document, pageURL string) string {
	base, err := url.Parse(pageURL)
	if err != nil {
		base = nil
	}

	var result string
	doc.Find("img").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		src, ok := sel.Attr("src")
		if !ok || src == "" {
			src, _ = sel.Attr("data-src")
		}
		if src == "" {
			return true
		}

		lower := strings.ToLower(src)
		path, _, _ := strings.Cut(lower, "?")
		matched := false
		for _, ext := range imageExts {
			if strings.HasSuffix(path, ext) {
				matched = true
				break
			}
		}
		if !matched {
			return true
		}
		if strings.Contains(lower, "logo") || strings.Contains(lower, "icon") {
			return true
		}

		result = src
		if base != nil {
			if ref, err := url.Parse(src); err == nil {
				result = base.ResolveReference(ref).String()
			}
		}
		return false
	})

	return result
}

// Description detects the product description: meta description, then the
// first element with a description-like class, truncated to 500 characters.
func (d *Detector) Description(doc *goquery.Document) string {
	if content, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		if desc := strings.TrimSpace(content); desc != "" {
			return desc
		}
	}

	var result string
	doc.Find("div[class], p[class]").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		class, _ := sel.Attr("class")
		if !descClassRe.MatchString(class) {
			return true
		}
		text := strings.TrimSpace(sel.Text())
		if runes := []rune(text); len(runes) > 500 {
			text = string(runes[:500])
		}
		result = text
		return false
	})

	return result
}

// Collection detects the collection name: the last breadcrumb link, else
// the page URL's product-listing path segment, title-cased.
func (d *Detector) Collection(doc *goquery.Document, pageURL string) string {
	var fromCrumbs string
	doc.Find("nav").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		label, _ := sel.Attr("aria-label")
		if !breadcrumbRe.MatchString(label) {
			return true
		}
		links := sel.Find("a")
		if links.Length() > 1 {
			fromCrumbs = strings.TrimSpace(links.Last().Text())
			return false
		}
		return true
	})
	if fromCrumbs != "" {
		return fromCrumbs
	}

	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	parts := strings.Split(u.Path, "/")
	if len(parts) > 2 && parts[2] != "" {
		return TitleCase(strings.ReplaceAll(parts[2], "-", " "))
	}
	return ""
}

// Field detects an open-ended extra field by "Name: value" label matching
// in the page text.
func (d *Detector) Field(doc *goquery.Document, name string) string {
	re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(name) + `[:\s]+([^\n]+)`)
	if err != nil {
		return ""
	}
	if m := re.FindStringSubmatch(doc.Text()); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}
