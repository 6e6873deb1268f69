// Package grid holds the numeric matrix typed into the entry grid.
package grid

import (
	"github.com/rotisserie/eris"
)

var (
	// ErrInvalidSize is returned when a matrix would get fewer than one row
	// or column.
	ErrInvalidSize = eris.New("grid: rows and cols must be >= 1")

	// ErrOutOfRange is returned when a row or column index is outside the
	// current bounds.
	ErrOutOfRange = eris.New("grid: index out of range")
)

// Matrix is a rows×cols grid of optional floats. cells always has exactly
// rows rows of cols entries.
type Matrix struct {
	rows, cols int
	cells      [][]Cell
}

// New returns a rows×cols matrix with every cell absent.
func New(rows, cols int) (*Matrix, error) {
	if rows < 1 || cols < 1 {
		return nil, eris.Wrapf(ErrInvalidSize, "new %dx%d", rows, cols)
	}
	m := &Matrix{rows: rows, cols: cols, cells: make([][]Cell, rows)}
	for r := range m.cells {
		m.cells[r] = make([]Cell, cols)
	}
	return m, nil
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return m.cols }

func (m *Matrix) inBounds(row, col int) bool {
	return row >= 0 && row < m.rows && col >= 0 && col < m.cols
}

// At returns the cell at (row, col).
func (m *Matrix) At(row, col int) (Cell, error) {
	if !m.inBounds(row, col) {
		return Cell{}, eris.Wrapf(ErrOutOfRange, "at (%d,%d) in %dx%d", row, col, m.rows, m.cols)
	}
	return m.cells[row][col], nil
}

// UpdateValue parses text into the cell at (row, col). Text that does not
// parse stores an absent cell; that is how an incomplete field is
// represented, not an error.
func (m *Matrix) UpdateValue(row, col int, text string) error {
	if !m.inBounds(row, col) {
		return eris.Wrapf(ErrOutOfRange, "update (%d,%d) in %dx%d", row, col, m.rows, m.cols)
	}
	m.cells[row][col] = ParseCell(text)
	return nil
}

// Set stores c at (row, col).
func (m *Matrix) Set(row, col int, c Cell) error {
	if !m.inBounds(row, col) {
		return eris.Wrapf(ErrOutOfRange, "set (%d,%d) in %dx%d", row, col, m.rows, m.cols)
	}
	m.cells[row][col] = c
	return nil
}

// Resize changes both dimensions independently. Retained cells keep their
// values, new cells are absent and cells cut off by a shrink are gone for
// good: growing back yields absent cells.
func (m *Matrix) Resize(rows, cols int) error {
	if rows < 1 || cols < 1 {
		return eris.Wrapf(ErrInvalidSize, "resize %dx%d to %dx%d", m.rows, m.cols, rows, cols)
	}

	if rows < m.rows {
		for r := rows; r < m.rows; r++ {
			m.cells[r] = nil
		}
		m.cells = m.cells[:rows]
	}
	for r := range m.cells {
		m.cells[r] = resizeRow(m.cells[r], cols)
	}
	for r := m.rows; r < rows; r++ {
		m.cells = append(m.cells, make([]Cell, cols))
	}

	m.rows, m.cols = rows, cols
	return nil
}

// resizeRow returns row with exactly n cells. Shrinking copies so that the
// cut off cells cannot reappear through the old backing array.
func resizeRow(row []Cell, n int) []Cell {
	if n <= len(row) {
		out := make([]Cell, n)
		copy(out, row)
		return out
	}
	return append(row, make([]Cell, n-len(row))...)
}

// Clear makes every cell absent without changing the size.
func (m *Matrix) Clear() {
	for r := range m.cells {
		clear(m.cells[r])
	}
}

// Snapshot returns a copy of the cells that the caller may keep and modify.
func (m *Matrix) Snapshot() [][]Cell {
	out := make([][]Cell, m.rows)
	for r := range m.cells {
		out[r] = make([]Cell, m.cols)
		copy(out[r], m.cells[r])
	}
	return out
}

// Load replaces size and contents with cells, which must be a non-empty
// rectangle.
func (m *Matrix) Load(cells [][]Cell) error {
	rows := len(cells)
	if rows == 0 || len(cells[0]) == 0 {
		return eris.Wrapf(ErrInvalidSize, "load %d rows", rows)
	}
	cols := len(cells[0])
	for r, row := range cells {
		if len(row) != cols {
			return eris.Wrapf(ErrInvalidSize, "load: row %d has %d cells, want %d", r, len(row), cols)
		}
	}

	m.cells = make([][]Cell, rows)
	for r, row := range cells {
		m.cells[r] = make([]Cell, cols)
		copy(m.cells[r], row)
	}
	m.rows, m.cols = rows, cols
	return nil
}
