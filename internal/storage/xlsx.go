package storage

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"eigen/internal/grid"
)

// SheetName is the sheet SaveXLSX writes the matrix to.
const SheetName = "Matrix"

// SaveXLSX writes cells to the first sheet of a new workbook. Present cells
// are numeric, absent cells are left blank.
func SaveXLSX(cells [][]grid.Cell, filename string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return eris.Wrap(err, "xlsx: add sheet")
	}
	for _, row := range cells {
		xr := sheet.AddRow()
		for _, cell := range row {
			xc := xr.AddCell()
			if v, ok := cell.Float(); ok {
				xc.SetFloat(v)
			}
		}
	}
	if err := f.Save(filename); err != nil {
		return eris.Wrap(err, "xlsx: save")
	}
	return nil
}

// LoadXLSX reads the first sheet of a workbook.
func LoadXLSX(filename string) ([][]grid.Cell, error) {
	f, err := xlsx.OpenFile(filename)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Wrapf(ErrEmpty, "xlsx: %s has no sheets", filename)
	}

	sheet := f.Sheets[0]
	records := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		if row == nil {
			records = append(records, nil)
			continue
		}
		rec := make([]string, len(row.Cells))
		for c, cell := range row.Cells {
			if cell != nil {
				rec[c] = cell.Value
			}
		}
		records = append(records, rec)
	}
	return toCells(records, filename)
}
