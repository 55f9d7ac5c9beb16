// Package output persists extracted records to flat files.
package output

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/vinecrawl/vinecrawl/internal/extract"
	"github.com/vinecrawl/vinecrawl/internal/types"
)

// Writer is the interface for all output backends.
type Writer interface {
	// Write persists a batch of records.
	Write(records []*types.Record) error

	// Close flushes pending writes and releases resources.
	Close() error

	// Name returns the output backend identifier.
	Name() string
}

// New creates the appropriate file writer by format. The columns slice
// fixes the CSV column order; JSONL ignores it.
func New(format, path string, columns []string, logger *slog.Logger) (Writer, error) {
	switch format {
	case "", "csv":
		return NewCSVWriter(path, columns, logger)
	case "jsonl":
		return NewJSONLWriter(path, logger)
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// DefaultPath builds an output filename from the site name and format.
// The site name is slugged so "Total Wine & More" yields a clean filename.
func DefaultPath(outputDir, site, format string) string {
	if format == "" {
		format = "csv"
	}
	slug := extract.Handle(site)
	if slug == "" {
		slug = "products"
	}
	return filepath.Join(outputDir, slug+"_products."+format)
}
