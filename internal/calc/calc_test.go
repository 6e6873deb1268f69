package calc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eigen/internal/grid"
)

// cells is
//
//	A    B    C
//	1    2    _
//	-3   _    4.5
func cells() [][]grid.Cell {
	return [][]grid.Cell{
		{grid.Number(1), grid.Number(2), grid.Absent()},
		{grid.Number(-3), grid.Absent(), grid.Number(4.5)},
	}
}

func TestEval(t *testing.T) {
	tests := []struct {
		expr string
		want float64
	}{
		{"1+2*3", 7},
		{"(1+2)*3", 9},
		{"=10/4", 2.5},
		{"-2*-3", 6},
		{"+5", 5},
		{"1.5e2", 150},
		{".5", 0.5},
		{"A1+B1", 3},
		{"a2 * 2", -6},
		{"C1", 0},
		{"SUM(A1:C2)", 4.5},
		{"SUM(C2:A1)", 4.5},
		{"sum(A1, B1, 10)", 13},
		{"SUM()", 0},
		{"AVERAGE(A1:C1)", 1.5},
		{"AVERAGE(C1)", 0},
		{"MIN(A1:C2)", -3},
		{"MAX(A1:C2, 7)", 7},
		{"COUNT(A1:C2)", 4},
		{"COUNT(C1, 1)", 1},
		{"ROUND(2.567, 2)", 2.57},
		{"ROUND(2.5)", 3},
		{"ROUND(1234, -2)", 1200},
		{"IF(A1, 10, 20)", 10},
		{"IF(C1, 10, 20)", 20},
		{"IF(C1, 10)", 0},
		{"IF(B2, 1/B2, -1)", -1},
		{"AND(A1, B1)", 1},
		{"AND(A1, C1)", 0},
		{"OR(C1, B2)", 0},
		{"OR(C1, A2)", 1},
		{"NOT(C1)", 1},
		{"NOT(A1)", 0},
		{"ABS(A2)", 3},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := Eval(tt.expr, Snapshot(cells()))
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestEval_Errors(t *testing.T) {
	tests := []struct {
		expr string
		want error
	}{
		{"", ErrSyntax},
		{"1+", ErrSyntax},
		{"(1+2", ErrSyntax},
		{"1 2", ErrSyntax},
		{"A1:B2", ErrSyntax},
		{"A1:B2+1", ErrSyntax},
		{"SUM(A1:B)", ErrSyntax},
		{"SUM(1;2)", ErrSyntax},
		{"#", ErrSyntax},
		{"1/0", ErrDivZero},
		{"A1/B2", ErrDivZero},
		{"FOO(1)", ErrFunction},
		{"ROUND()", ErrArgs},
		{"IF(1)", ErrArgs},
		{"NOT(1, 2)", ErrArgs},
		{"AND()", ErrArgs},
		{"D1", grid.ErrOutOfRange},
		{"SUM(A1:D1)", grid.ErrOutOfRange},
		{"1e308*10", ErrNotReal},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			_, err := Eval(tt.expr, Snapshot(cells()))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseDoesNotResolve(t *testing.T) {
	e, err := Parse("SUM(A1:Z99)")
	require.NoError(t, err)

	calls := 0
	v, err := e.eval(func(row, col int) (grid.Cell, error) {
		calls++
		return grid.Number(1), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 99*26, calls)
	assert.Equal(t, float64(99*26), v)
}
