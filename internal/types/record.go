package types

import (
	"encoding/json"
	"strconv"
	"time"
)

// Record is a single extracted product record: a flat mapping from field
// name to extracted value. Values are strings until a configured transform
// coerces them to float64 or int.
type Record struct {
	// Fields stores the extracted key-value data.
	Fields map[string]any

	// URL is the product page this record was extracted from.
	URL string

	// FetchedAt is when the source page was fetched.
	FetchedAt time.Time
}

// NewRecord creates an empty Record for a source URL.
func NewRecord(sourceURL string) *Record {
	return &Record{
		Fields:    make(map[string]any),
		URL:       sourceURL,
		FetchedAt: time.Now(),
	}
}

// Set sets a field value.
func (r *Record) Set(key string, value any) {
	r.Fields[key] = value
}

// Get retrieves a field value.
func (r *Record) Get(key string) (any, bool) {
	v, ok := r.Fields[key]
	return v, ok
}

// GetString retrieves a field value rendered as a string. Missing fields
// yield "", matching the extraction-miss convention.
func (r *Record) GetString(key string) string {
	v, ok := r.Fields[key]
	if !ok {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	default:
		b, _ := json.Marshal(val)
		return string(b)
	}
}

// Has returns true if the field exists.
func (r *Record) Has(key string) bool {
	_, ok := r.Fields[key]
	return ok
}

// Keys returns all field names.
func (r *Record) Keys() []string {
	keys := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		keys = append(keys, k)
	}
	return keys
}

// Valid reports whether the record passes the acceptance gate: a record is
// kept only if it carries a non-empty title (or name) field.
func (r *Record) Valid() bool {
	return r.GetString("title") != "" || r.GetString("name") != ""
}

// ToFlatMap returns a flat string map suitable for CSV export.
func (r *Record) ToFlatMap() map[string]string {
	flat := make(map[string]string, len(r.Fields)+1)
	flat["url"] = r.URL
	for k := range r.Fields {
		flat[k] = r.GetString(k)
	}
	return flat
}
