package extract

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	priceRe  = regexp.MustCompile(`(\d+(?:,\d{3})*(?:\.\d+)?)`)
	abvRe    = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)
	intRe    = regexp.MustCompile(`(\d+)`)
	handleRe = regexp.MustCompile(`[^a-z0-9]+`)
)

// ParsePrice extracts the first numeric amount from free-form price text.
// Currency symbols and thousands separators are tolerated. Returns 0 when
// no amount is present.
func ParsePrice(text string) float64 {
	m := priceRe.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return 0
	}
	return f
}

// ParseABV extracts an alcohol percentage from text like "ABV: 13.5%".
// Returns 0 when no percentage is present.
func ParseABV(text string) float64 {
	m := abvRe.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return f
}

// ParseInt extracts the first run of digits from text. Returns 0 when no
// digits are present.
func ParseInt(text string) int {
	m := intRe.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// Handle turns free text into a URL-safe slug: lowercase, non-alphanumeric
// runs collapsed to single hyphens, leading and trailing hyphens trimmed.
func Handle(text string) string {
	s := handleRe.ReplaceAllString(strings.ToLower(text), "-")
	return strings.Trim(s, "-")
}

// TitleCase upper-cases the first letter of each space-separated word.
func TitleCase(text string) string {
	words := strings.Fields(text)
	for i, w := range words {
		r := []rune(w)
		r[0] = []rune(strings.ToUpper(string(r[0])))[0]
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
