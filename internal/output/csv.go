package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/vinecrawl/vinecrawl/internal/types"
)

// CSVWriter writes records as CSV rows under a fixed column order. The
// projection is permissive: record fields not in the column set are
// dropped, missing fields render as empty cells. A trailing "url" column
// is always appended.
type CSVWriter struct {
	path    string
	file    *os.File
	writer  *csv.Writer
	columns []string
	mu      sync.Mutex
	count   int
	logger  *slog.Logger
}

// NewCSVWriter creates a CSV file writer with the given column order.
func NewCSVWriter(outputPath string, columns []string, logger *slog.Logger) (*CSVWriter, error) {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}

	w := &CSVWriter{
		path:    outputPath,
		file:    f,
		writer:  csv.NewWriter(f),
		columns: append(append([]string{}, columns...), "url"),
		logger:  logger.With("component", "csv_writer"),
	}

	if err := w.writer.Write(w.columns); err != nil {
		f.Close()
		return nil, fmt.Errorf("write CSV header: %w", err)
	}

	return w, nil
}

func (w *CSVWriter) Name() string { return "csv" }

// Write appends one row per record, projecting onto the fixed columns.
func (w *CSVWriter) Write(records []*types.Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, rec := range records {
		flat := rec.ToFlatMap()
		row := make([]string, len(w.columns))
		for i, col := range w.columns {
			row[i] = flat[col]
		}
		if err := w.writer.Write(row); err != nil {
			return fmt.Errorf("write CSV row: %w", err)
		}
		w.count++
	}

	w.writer.Flush()
	return w.writer.Error()
}

// Close flushes and closes the output file.
func (w *CSVWriter) Close() error {
	w.logger.Info("CSV written", "path", w.path, "records", w.count)
	if w.writer != nil {
		w.writer.Flush()
	}
	if w.file != nil {
		return w.file.Close()
	}
	return nil
}

// WriteRecords projects records onto columns and writes them as CSV to an
// arbitrary writer, header first. Used for stdout output.
func WriteRecords(dst io.Writer, records []*types.Record, columns []string) error {
	cols := append(append([]string{}, columns...), "url")
	cw := csv.NewWriter(dst)
	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}
	for _, rec := range records {
		flat := rec.ToFlatMap()
		row := make([]string, len(cols))
		for i, col := range cols {
			row[i] = flat[col]
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
