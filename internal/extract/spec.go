package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// SpecKind identifies the interpretation of a field spec string.
type SpecKind int

const (
	// SpecNone means no spec was configured; extraction yields "".
	SpecNone SpecKind = iota
	// SpecSelector is a plain CSS selector; the first match's text is used.
	SpecSelector
	// SpecSibling resolves a selector and takes the next sibling element's text.
	SpecSibling
	// SpecTextPattern matches text nodes by regex and takes the parent's text.
	SpecTextPattern
	// SpecXPath evaluates an XPath expression.
	SpecXPath
)

// FieldSpec is the declarative description of how to locate one field's
// value in a document. It is data, never code: the Extractor is the single
// interpreter for all variants.
type FieldSpec struct {
	Kind        SpecKind
	Selector    string
	TextPattern *regexp.Regexp
	Transform   *Transform
}

// ValueKind is the coercion target of a Transform.
type ValueKind int

const (
	KindString ValueKind = iota
	KindFloat
	KindInt
	// KindPercent parses percentage text like "13.5%" into a float64.
	KindPercent
)

// Transform applies a capturing regex to an extracted value and coerces
// the first group to the declared kind. On pattern miss, numeric kinds
// yield their zero value; the string kind passes the raw text through.
type Transform struct {
	Pattern *regexp.Regexp
	Kind    ValueKind
}

// Apply runs the transform against extracted text. A configured pattern
// that misses yields the numeric zero value, or the raw text for the
// string kind. Without a pattern, numeric kinds parse the raw text
// leniently so "$12.99" and "13.5%" still coerce.
func (t *Transform) Apply(text string) any {
	if t.Pattern != nil {
		m := t.Pattern.FindStringSubmatch(text)
		if len(m) < 2 {
			switch t.Kind {
			case KindFloat, KindPercent:
				return 0.0
			case KindInt:
				return 0
			default:
				return text
			}
		}
		switch t.Kind {
		case KindFloat, KindPercent:
			f, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				return 0.0
			}
			return f
		case KindInt:
			n, err := strconv.Atoi(m[1])
			if err != nil {
				return 0
			}
			return n
		default:
			return m[1]
		}
	}

	switch t.Kind {
	case KindFloat:
		return ParsePrice(text)
	case KindPercent:
		return ParseABV(text)
	case KindInt:
		return ParseInt(text)
	default:
		return text
	}
}

// ParseValueKind maps a config type string to a ValueKind.
func ParseValueKind(s string) ValueKind {
	switch s {
	case "float", "money":
		return KindFloat
	case "percent", "abv":
		return KindPercent
	case "int":
		return KindInt
	default:
		return KindString
	}
}

// ParseSpec interprets a config spec string as a FieldSpec. The grammar,
// in precedence order:
//
//	""              -> SpecNone
//	text*='Pattern' -> SpecTextPattern (case-insensitive regex)
//	xpath://h1      -> SpecXPath
//	A + B           -> SpecSibling (resolve A, take next sibling element)
//	anything else   -> SpecSelector
//
// Malformed specs degrade to SpecNone; spec parsing never fails.
func ParseSpec(raw string) FieldSpec {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return FieldSpec{Kind: SpecNone}
	}

	if idx := strings.Index(raw, "text*="); idx >= 0 {
		pattern := strings.Trim(raw[idx+len("text*="):], `'"`)
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return FieldSpec{Kind: SpecNone}
		}
		return FieldSpec{Kind: SpecTextPattern, TextPattern: re}
	}

	if rest, ok := strings.CutPrefix(raw, "xpath:"); ok {
		return FieldSpec{Kind: SpecXPath, Selector: strings.TrimSpace(rest)}
	}

	if before, _, ok := strings.Cut(raw, "+"); ok {
		return FieldSpec{Kind: SpecSibling, Selector: strings.TrimSpace(before)}
	}

	return FieldSpec{Kind: SpecSelector, Selector: raw}
}

// WithTransform returns a copy of the spec carrying the given transform.
func (s FieldSpec) WithTransform(t *Transform) FieldSpec {
	s.Transform = t
	return s
}
