package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"padi-scraper/models"
)

// CSVWriter writes deduplicated listings to a UTF-8, comma-delimited file
// with a header row and no index column.
type CSVWriter struct {
	path   string
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(models.CSVHeader); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}

	return &CSVWriter{path: path, file: f, writer: w}, nil
}

// Write appends one row per listing.
func (c *CSVWriter) Write(listings []*models.Listing) error {
	for _, l := range listings {
		if err := c.writer.Write(l.Columns()); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Path returns the file being written.
func (c *CSVWriter) Path() string {
	return c.path
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		_ = c.file.Close()
		return fmt.Errorf("csv: flush: %w", err)
	}
	return c.file.Close()
}
