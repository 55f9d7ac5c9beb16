package extract

import (
	"regexp"
	"testing"
)

func mustCompile(t testing.TB, pattern string) *regexp.Regexp {
	t.Helper()
	re, err := regexp.Compile(pattern)
	if err != nil {
		t.Fatalf("compile %q: %v", pattern, err)
	}
	return re
}

func TestParseSpecKinds(t *testing.T) {
	cases := []struct {
		raw  string
		kind SpecKind
	}{
		{"", SpecNone},
		{"   ", SpecNone},
		{"h1.title", SpecSelector},
		{"div.price span", SpecSelector},
		{"div.label + ", SpecSibling},
		{`text*='SKU[:\s]+'`, SpecTextPattern},
		{"xpath://h1", SpecXPath},
	}

	for _, tc := range cases {
		spec := ParseSpec(tc.raw)
		if spec.Kind != tc.kind {
			t.Errorf("ParseSpec(%q): expected kind %d, got %d", tc.raw, tc.kind, spec.Kind)
		}
	}
}

func TestParseSpecSiblingSelector(t *testing.T) {
	spec := ParseSpec("div.brand-row + ")
	if spec.Selector != "div.brand-row" {
		t.Errorf("expected trimmed selector before '+', got %q", spec.Selector)
	}
}

func TestParseSpecXPathExpression(t *testing.T) {
	spec := ParseSpec("xpath: //div[@id='desc'] ")
	if spec.Selector != "//div[@id='desc']" {
		t.Errorf("expected trimmed xpath expression, got %q", spec.Selector)
	}
}

func TestParseSpecInvalidTextPattern(t *testing.T) {
	spec := ParseSpec(`text*='[unclosed'`)
	if spec.Kind != SpecNone {
		t.Errorf("invalid pattern should degrade to SpecNone, got kind %d", spec.Kind)
	}
}

func TestTransformApplyFloat(t *testing.T) {
	tr := &Transform{Pattern: mustCompile(t, `\$(\d+\.\d{2})`), Kind: KindFloat}
	got := tr.Apply("Now $22.99, was $26.99")
	if got != 22.99 {
		t.Errorf("expected 22.99, got %v", got)
	}
}

func TestTransformApplyInt(t *testing.T) {
	tr := &Transform{Pattern: mustCompile(t, `(\d+) in stock`), Kind: KindInt}
	got := tr.Apply("Only 7 in stock")
	if got != 7 {
		t.Errorf("expected 7, got %v", got)
	}
}

func TestTransformApplyString(t *testing.T) {
	tr := &Transform{Pattern: mustCompile(t, `Vintage[:\s]+(\d{4})`), Kind: KindString}
	got := tr.Apply("Vintage: 2019")
	if got != "2019" {
		t.Errorf("expected %q, got %v", "2019", got)
	}
}

func TestTransformMissNumericYieldsZero(t *testing.T) {
	tr := &Transform{Pattern: mustCompile(t, `\$(\d+\.\d{2})`), Kind: KindFloat}
	if got := tr.Apply("no price here"); got != 0.0 {
		t.Errorf("expected 0.0 on miss, got %v", got)
	}

	tri := &Transform{Pattern: mustCompile(t, `(\d+) bottles`), Kind: KindInt}
	if got := tri.Apply("sold out"); got != 0 {
		t.Errorf("expected 0 on miss, got %v", got)
	}
}

func TestTransformMissStringPassesThrough(t *testing.T) {
	tr := &Transform{Pattern: mustCompile(t, `Vintage[:\s]+(\d{4})`), Kind: KindString}
	if got := tr.Apply("non vintage"); got != "non vintage" {
		t.Errorf("expected raw text on string miss, got %v", got)
	}
}

func TestTransformPatternlessCoercion(t *testing.T) {
	price := &Transform{Kind: KindFloat}
	if got := price.Apply("$1,299.50"); got != 1299.50 {
		t.Errorf("expected 1299.50, got %v", got)
	}

	abv := &Transform{Kind: KindPercent}
	if got := abv.Apply("ABV: 13.5%"); got != 13.5 {
		t.Errorf("expected 13.5, got %v", got)
	}

	count := &Transform{Kind: KindInt}
	if got := count.Apply("12 bottles"); got != 12 {
		t.Errorf("expected 12, got %v", got)
	}
}

func TestParseValueKind(t *testing.T) {
	cases := []struct {
		in   string
		want ValueKind
	}{
		{"float", KindFloat},
		{"money", KindFloat},
		{"percent", KindPercent},
		{"abv", KindPercent},
		{"int", KindInt},
		{"string", KindString},
		{"", KindString},
		{"unknown", KindString},
	}
	for _, tc := range cases {
		if got := ParseValueKind(tc.in); got != tc.want {
			t.Errorf("ParseValueKind(%q): expected %d, got %d", tc.in, tc.want, got)
		}
	}
}
