package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNew(t *testing.T, rows, cols int) *Matrix {
	t.Helper()
	m, err := New(rows, cols)
	require.NoError(t, err)
	return m
}

func fill(t *testing.T, m *Matrix) {
	t.Helper()
	for r := 0; r < m.Rows(); r++ {
		for c := 0; c < m.Cols(); c++ {
			require.NoError(t, m.Set(r, c, Number(float64(10*r+c+1))))
		}
	}
}

func requireShape(t *testing.T, m *Matrix, rows, cols int) {
	t.Helper()
	require.Equal(t, rows, m.Rows())
	require.Equal(t, cols, m.Cols())
	snap := m.Snapshot()
	require.Len(t, snap, rows)
	for _, row := range snap {
		require.Len(t, row, cols)
	}
}

func TestNew(t *testing.T) {
	m := mustNew(t, 2, 3)
	requireShape(t, m, 2, 3)
	for _, row := range m.Snapshot() {
		for _, c := range row {
			assert.False(t, c.Set)
		}
	}
}

func TestNew_InvalidSize(t *testing.T) {
	for _, dims := range [][2]int{{0, 1}, {1, 0}, {-1, 3}, {0, 0}} {
		_, err := New(dims[0], dims[1])
		assert.ErrorIs(t, err, ErrInvalidSize, "%v", dims)
	}
}

func TestUpdateValue(t *testing.T) {
	tests := []struct {
		text string
		want Cell
	}{
		{"1.5", Number(1.5)},
		{"-2", Number(-2)},
		{"3.", Number(3)},
		{".25", Number(0.25)},
		{"-.5", Number(-0.5)},
		{"", Absent()},
		{"-", Absent()},
		{".", Absent()},
		{"-.", Absent()},
		{"abc", Absent()},
		{"NaN", Absent()},
		{"inf", Absent()},
		{"1e999", Absent()},
	}
	for _, tt := range tests {
		m := mustNew(t, 1, 1)
		require.NoError(t, m.Set(0, 0, Number(42)))
		require.NoError(t, m.UpdateValue(0, 0, tt.text), tt.text)
		got, err := m.At(0, 0)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.text)
	}
}

func TestUpdateValue_OutOfRange(t *testing.T) {
	m := mustNew(t, 1, 1)
	assert.ErrorIs(t, m.UpdateValue(5, 0, "1"), ErrOutOfRange)
	assert.ErrorIs(t, m.UpdateValue(0, 1, "1"), ErrOutOfRange)
	assert.ErrorIs(t, m.UpdateValue(-1, 0, "1"), ErrOutOfRange)

	_, err := m.At(1, 0)
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.ErrorIs(t, m.Set(0, -1, Number(1)), ErrOutOfRange)
}

func TestResize_GrowRowsShrinkCols(t *testing.T) {
	m := mustNew(t, 2, 2)
	fill(t, m)
	before := m.Snapshot()

	require.NoError(t, m.Resize(3, 1))
	requireShape(t, m, 3, 1)

	snap := m.Snapshot()
	assert.Equal(t, before[0][0], snap[0][0])
	assert.Equal(t, before[1][0], snap[1][0])
	assert.Equal(t, Absent(), snap[2][0])
}

func TestResize_ShrinkRowsGrowCols(t *testing.T) {
	m := mustNew(t, 3, 2)
	fill(t, m)

	require.NoError(t, m.Resize(1, 4))
	requireShape(t, m, 1, 4)
	assert.Equal(t, []Cell{Number(1), Number(2), Absent(), Absent()}, m.Snapshot()[0])
}

func TestResize_GrowThenBackPreserves(t *testing.T) {
	m := mustNew(t, 2, 2)
	fill(t, m)
	before := m.Snapshot()

	require.NoError(t, m.Resize(5, 6))
	require.NoError(t, m.Resize(2, 2))
	assert.Equal(t, before, m.Snapshot())
}

func TestResize_ShrinkIsDestructive(t *testing.T) {
	m := mustNew(t, 3, 3)
	fill(t, m)

	require.NoError(t, m.Resize(1, 1))
	require.NoError(t, m.Resize(3, 3))
	requireShape(t, m, 3, 3)

	snap := m.Snapshot()
	assert.Equal(t, Number(1), snap[0][0])
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			if r == 0 && c == 0 {
				continue
			}
			assert.Equal(t, Absent(), snap[r][c], "(%d,%d)", r, c)
		}
	}
}

func TestResize_InvalidSizeLeavesMatrixUntouched(t *testing.T) {
	m := mustNew(t, 2, 2)
	fill(t, m)
	before := m.Snapshot()

	assert.ErrorIs(t, m.Resize(0, 2), ErrInvalidSize)
	assert.ErrorIs(t, m.Resize(2, -1), ErrInvalidSize)
	assert.Equal(t, before, m.Snapshot())
}

func TestSnapshotIsACopy(t *testing.T) {
	m := mustNew(t, 1, 2)
	require.NoError(t, m.UpdateValue(0, 0, "7"))

	snap := m.Snapshot()
	snap[0][0] = Number(-1)

	got, err := m.At(0, 0)
	require.NoError(t, err)
	assert.Equal(t, Number(7), got)
}

func TestClear(t *testing.T) {
	m := mustNew(t, 2, 3)
	fill(t, m)
	m.Clear()
	requireShape(t, m, 2, 3)
	for _, row := range m.Snapshot() {
		for _, c := range row {
			assert.Equal(t, Absent(), c)
		}
	}
}

func TestLoad(t *testing.T) {
	m := mustNew(t, 1, 1)
	cells := [][]Cell{
		{Number(1), Absent()},
		{Absent(), Number(-4.5)},
		{Number(0), Number(2)},
	}
	require.NoError(t, m.Load(cells))
	requireShape(t, m, 3, 2)
	assert.Equal(t, cells, m.Snapshot())

	cells[0][0] = Number(99)
	got, _ := m.At(0, 0)
	assert.Equal(t, Number(1), got)
}

func TestLoad_Invalid(t *testing.T) {
	m := mustNew(t, 2, 2)
	assert.ErrorIs(t, m.Load(nil), ErrInvalidSize)
	assert.ErrorIs(t, m.Load([][]Cell{{}}), ErrInvalidSize)
	assert.ErrorIs(t, m.Load([][]Cell{{Number(1)}, {Number(1), Number(2)}}), ErrInvalidSize)
	requireShape(t, m, 2, 2)
}
