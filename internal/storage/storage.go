// Package storage writes matrix snapshots to CSV and XLSX files and reads
// them back.
package storage

import (
	"bufio"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"eigen/internal/grid"
)

// ErrEmpty is returned when a file holds no cells.
var ErrEmpty = eris.New("storage: no cells in file")

// Format is a file format for Save and Load.
type Format string

const (
	CSV  Format = "csv"
	XLSX Format = "xlsx"
)

// FormatFor picks the format from an explicit name or the file extension,
// defaulting to CSV.
func FormatFor(filename, explicit string) Format {
	switch strings.ToLower(explicit) {
	case "csv":
		return CSV
	case "xlsx":
		return XLSX
	}
	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		return XLSX
	}
	return CSV
}

// Save writes cells to filename in format f.
func Save(cells [][]grid.Cell, filename string, f Format) error {
	if f == XLSX {
		return SaveXLSX(cells, filename)
	}
	return SaveCSV(cells, filename)
}

// Load reads a matrix from filename in format f.
func Load(filename string, f Format) ([][]grid.Cell, error) {
	if f == XLSX {
		return LoadXLSX(filename)
	}
	return LoadCSV(filename)
}

// SaveCSV writes one record per matrix row. Absent cells are empty fields.
func SaveCSV(cells [][]grid.Cell, filename string) error {
	out := make([][]string, len(cells))
	for r, row := range cells {
		rec := make([]string, len(row))
		for c, cell := range row {
			rec[c] = cell.String()
		}
		out[r] = rec
	}

	f, err := os.Create(filename)
	if err != nil {
		return eris.Wrap(err, "csv: create")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(out); err != nil {
		return eris.Wrap(err, "csv: write")
	}
	return nil
}

// LoadCSV reads a CSV file into a rectangular matrix. Short records are
// padded with absent cells and fields that are not numbers load as absent.
func LoadCSV(filename string) ([][]grid.Cell, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, eris.Wrap(err, "csv: open")
	}
	defer f.Close()

	r := csv.NewReader(bufio.NewReader(f))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "csv: read")
	}
	return toCells(records, filename)
}

// toCells parses string rows into a rectangle as wide as the widest row.
func toCells(records [][]string, filename string) ([][]grid.Cell, error) {
	cols := 0
	for _, rec := range records {
		cols = max(cols, len(rec))
	}
	if len(records) == 0 || cols == 0 {
		return nil, eris.Wrapf(ErrEmpty, "load %s", filename)
	}

	out := make([][]grid.Cell, len(records))
	for r, rec := range records {
		out[r] = make([]grid.Cell, cols)
		for c, val := range rec {
			out[r][c] = grid.ParseCell(val)
		}
	}
	return out, nil
}
