package grid

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Cell is one matrix entry. The zero Cell is absent: the field is empty or
// does not hold a number yet.
type Cell struct {
	Value float64
	Set   bool
}

// Number returns a present cell holding v.
func Number(v float64) Cell {
	return Cell{Value: v, Set: true}
}

// Absent returns an empty cell.
func Absent() Cell {
	return Cell{}
}

// ParseCell parses text as a float. Anything that is not a finite number,
// the empty string included, gives an absent cell.
func ParseCell(text string) Cell {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Absent()
	}
	return Number(v)
}

// Float returns the value and whether the cell is present.
func (c Cell) Float() (float64, bool) {
	return c.Value, c.Set
}

// String formats a present cell without exponent so that the text can be
// typed back into a numeric field; absent cells format as "".
func (c Cell) String() string {
	if !c.Set {
		return ""
	}
	return strconv.FormatFloat(c.Value, 'f', -1, 64)
}

// ColToName: 0 -> A, 25 -> Z, 26 -> AA and so on
func ColToName(col int) string {
	if col < 0 {
		return "?"
	}
	result := ""
	n := col + 1
	for n > 0 {
		n--
		result = string(rune('A'+(n%26))) + result
		n /= 26
	}
	return result
}

// CellName is the 1-based "(row,col)" label shown in empty fields.
func CellName(row, col int) string {
	return fmt.Sprintf("(%d,%d)", row+1, col+1)
}

// ParseCellRef parses "2,3", "(2,3)" or spreadsheet style "C2" into 0-based
// (row, col).
func ParseCellRef(name string) (int, int, bool) {
	name = strings.TrimSpace(name)
	name = strings.TrimSuffix(strings.TrimPrefix(name, "("), ")")
	if name == "" {
		return 0, 0, false
	}

	if r, c, found := strings.Cut(name, ","); found {
		row, err1 := strconv.Atoi(strings.TrimSpace(r))
		col, err2 := strconv.Atoi(strings.TrimSpace(c))
		if err1 != nil || err2 != nil || row < 1 || col < 1 {
			return 0, 0, false
		}
		return row - 1, col - 1, true
	}

	i := 0
	for i < len(name) && isLetter(name[i]) {
		i++
	}
	if i == 0 || i >= len(name) {
		return 0, 0, false
	}
	colPart := strings.ToUpper(name[:i])
	col := 0
	for j := 0; j < len(colPart); j++ {
		col = col*26 + int(colPart[j]-'A') + 1
	}
	rowNum, err := strconv.Atoi(name[i:])
	if err != nil || rowNum < 1 {
		return 0, 0, false
	}
	return rowNum - 1, col - 1, true
}

func isLetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}
