package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"padi-scraper/models"
)

const xlsxSheet = "dive_shops"

// XLSXWriter mirrors the CSV export into a spreadsheet. Rows are buffered
// in the workbook and saved on Close.
type XLSXWriter struct {
	path    string
	file    *excelize.File
	nextRow int
}

// NewXLSXWriter prepares a workbook with the header row.
func NewXLSXWriter(path string) (*XLSXWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("xlsx: create output dir: %w", err)
	}

	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), xlsxSheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("xlsx: name sheet: %w", err)
	}

	x := &XLSXWriter{path: path, file: f, nextRow: 1}
	if err := x.writeRow(models.CSVHeader); err != nil {
		_ = f.Close()
		return nil, err
	}
	for i := 1; i <= len(models.CSVHeader); i++ {
		col, _ := excelize.ColumnNumberToName(i)
		_ = f.SetColWidth(xlsxSheet, col, col, 32)
	}
	return x, nil
}

// Write appends one row per listing.
func (x *XLSXWriter) Write(listings []*models.Listing) error {
	for _, l := range listings {
		if err := x.writeRow(l.Columns()); err != nil {
			return err
		}
	}
	return nil
}

func (x *XLSXWriter) writeRow(values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, x.nextRow)
	if err != nil {
		return fmt.Errorf("xlsx: row %d: %w", x.nextRow, err)
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := x.file.SetSheetRow(xlsxSheet, cell, &row); err != nil {
		return fmt.Errorf("xlsx: write row %d: %w", x.nextRow, err)
	}
	x.nextRow++
	return nil
}

// Close saves the workbook to disk.
func (x *XLSXWriter) Close() error {
	if err := x.file.SaveAs(x.path); err != nil {
		_ = x.file.Close()
		return fmt.Errorf("xlsx: save %q: %w", x.path, err)
	}
	return x.file.Close()
}
