package output

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vinecrawl/vinecrawl/internal/types"
)

// JSONLWriter writes records as newline-delimited JSON, one object per
// line, streaming as batches arrive. Unlike CSV it preserves every field
// a record carries.
type JSONLWriter struct {
	path   string
	file   *os.File
	enc    *json.Encoder
	mu     sync.Mutex
	count  int
	logger *slog.Logger
}

// NewJSONLWriter creates a JSONL file writer.
func NewJSONLWriter(outputPath string, logger *slog.Logger) (*JSONLWriter, error) {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}

	return &JSONLWriter{
		path:   outputPath,
		file:   f,
		enc:    json.NewEncoder(f),
		logger: logger.With("component", "jsonl_writer"),
	}, nil
}

func (w *JSONLWriter) Name() string { return "jsonl" }

// Write appends one JSON object per record.
func (w *JSONLWriter) Write(records []*types.Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, rec := range records {
		entry := make(map[string]any, len(rec.Fields)+2)
		entry["_url"] = rec.URL
		entry["_fetched_at"] = rec.FetchedAt.Format(time.RFC3339)
		for k, v := range rec.Fields {
			entry[k] = v
		}
		if err := w.enc.Encode(entry); err != nil {
			return fmt.Errorf("encode JSONL: %w", err)
		}
		w.count++
	}
	return nil
}

// Close closes the output file.
func (w *JSONLWriter) Close() error {
	w.logger.Info("JSONL written", "path", w.path, "records", w.count)
	if w.file != nil {
		return w.file.Close()
	}
	return nil
}
