package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"eigen/internal/grid"
)

func sample() [][]grid.Cell {
	return [][]grid.Cell{
		{grid.Number(1), grid.Absent(), grid.Number(-2.5)},
		{grid.Number(0.125), grid.Number(1e6), grid.Number(3)},
	}
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		file, explicit string
		want           Format
	}{
		{"m.csv", "", CSV},
		{"m.xlsx", "", XLSX},
		{"M.XLSX", "", XLSX},
		{"m.txt", "", CSV},
		{"m.csv", "xlsx", XLSX},
		{"m.xlsx", "CSV", CSV},
		{"m", "bogus", CSV},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatFor(tt.file, tt.explicit), tt.file+" "+tt.explicit)
	}
}

func TestCSV_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.csv")
	require.NoError(t, SaveCSV(sample(), path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "1,,-2.5\n0.125,1000000,3\n", string(raw))

	got, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, sample(), got)
}

func TestLoadCSV_Ragged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.csv")
	require.NoError(t, os.WriteFile(path, []byte("1,2,3\n4\nx,5\n"), 0o644))

	got, err := LoadCSV(path)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for _, row := range got {
		assert.Len(t, row, 3)
	}
	assert.Equal(t, grid.Number(4), got[1][0])
	assert.Equal(t, grid.Absent(), got[1][2])
	assert.Equal(t, grid.Absent(), got[2][0], "non-numeric fields load as absent")
	assert.Equal(t, grid.Number(5), got[2][1])
}

func TestLoadCSV_Errors(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err := LoadCSV(empty)
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = LoadCSV(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}

func TestXLSX_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.xlsx")
	require.NoError(t, Save(sample(), path, XLSX))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)
	assert.Equal(t, SheetName, f.Sheets[0].Name)

	got, err := Load(path, XLSX)
	require.NoError(t, err)
	assert.Equal(t, sample(), got)
}

func TestLoadXLSX_StringCells(t *testing.T) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Data")
	require.NoError(t, err)
	for _, rowData := range [][]string{{"1.5", "abc"}, {"", "-7"}} {
		row := sheet.AddRow()
		for _, cellData := range rowData {
			row.AddCell().SetString(cellData)
		}
	}
	path := filepath.Join(t.TempDir(), "strings.xlsx")
	require.NoError(t, f.Save(path))

	got, err := LoadXLSX(path)
	require.NoError(t, err)
	assert.Equal(t, [][]grid.Cell{
		{grid.Number(1.5), grid.Absent()},
		{grid.Absent(), grid.Number(-7)},
	}, got)
}

func TestLoadXLSX_MissingFile(t *testing.T) {
	_, err := LoadXLSX(filepath.Join(t.TempDir(), "nope.xlsx"))
	assert.Error(t, err)
}

func TestFormatText(t *testing.T) {
	assert.Equal(t, "1\t_\t-2.5\n0.125\t1000000\t3", FormatText(sample()))
	assert.Equal(t, "", FormatText(nil))
}
