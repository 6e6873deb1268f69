package storage

import (
	"strings"

	"eigen/internal/grid"
)

// AbsentMark stands for an absent cell in FormatText output.
const AbsentMark = "_"

// FormatText renders cells one row per line with tab separated values.
func FormatText(cells [][]grid.Cell) string {
	var b strings.Builder
	for r, row := range cells {
		if r > 0 {
			b.WriteByte('\n')
		}
		for c, cell := range row {
			if c > 0 {
				b.WriteByte('\t')
			}
			if s := cell.String(); s != "" {
				b.WriteString(s)
			} else {
				b.WriteString(AbsentMark)
			}
		}
	}
	return b.String()
}
