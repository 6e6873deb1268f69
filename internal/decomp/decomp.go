// Package decomp lists the matrix decompositions offered by the selector and
// hands a complete matrix over to whichever implementation is registered for
// one. No factorization is implemented here.
package decomp

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/mat"

	"eigen/internal/grid"
)

// Kind is a decomposition method. The values are the selector keys.
type Kind int

const (
	Eigen Kind = iota
	SVD
	LU
	QR
	Cholesky
)

var names = [...]string{
	Eigen:    "Eigen",
	SVD:      "SVD",
	LU:       "LU",
	QR:       "QR",
	Cholesky: "Cholesky",
}

var (
	ErrUnknownKind  = eris.New("decomp: unknown decomposition")
	ErrIncomplete   = eris.New("decomp: matrix has empty cells")
	ErrNotSquare    = eris.New("decomp: matrix is not square")
	ErrNotSymmetric = eris.New("decomp: matrix is not symmetric")
	ErrUnavailable  = eris.New("decomp: no implementation registered")
)

// symmetryTol is the absolute tolerance used by the symmetry check.
const symmetryTol = 1e-12

// Kinds returns every decomposition in selector order.
func Kinds() []Kind {
	return []Kind{Eigen, SVD, LU, QR, Cholesky}
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(names) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return names[k]
}

// Valid reports whether k is one of Kinds.
func (k Kind) Valid() bool {
	return k >= 0 && int(k) < len(names)
}

// ParseKind maps a name, case-insensitively, to its Kind.
func ParseKind(s string) (Kind, error) {
	s = strings.TrimSpace(s)
	for i, n := range names {
		if strings.EqualFold(n, s) {
			return Kind(i), nil
		}
	}
	return 0, eris.Wrapf(ErrUnknownKind, "parse %q", s)
}

// Dense copies a fully filled snapshot into a gonum matrix.
func Dense(cells [][]grid.Cell) (*mat.Dense, error) {
	if len(cells) == 0 || len(cells[0]) == 0 {
		return nil, eris.Wrap(grid.ErrInvalidSize, "dense: empty matrix")
	}
	rows, cols := len(cells), len(cells[0])
	d := mat.NewDense(rows, cols, nil)
	for r, row := range cells {
		if len(row) != cols {
			return nil, eris.Wrapf(grid.ErrInvalidSize, "dense: row %d has %d cells, want %d", r, len(row), cols)
		}
		for c, cell := range row {
			v, ok := cell.Float()
			if !ok {
				return nil, eris.Wrapf(ErrIncomplete, "dense: %s", grid.CellName(r, c))
			}
			d.Set(r, c, v)
		}
	}
	return d, nil
}

// Check reports whether a satisfies the shape requirements of k.
func Check(k Kind, a mat.Matrix) error {
	rows, cols := a.Dims()
	switch k {
	case Eigen, LU:
		if rows != cols {
			return eris.Wrapf(ErrNotSquare, "%s needs a square matrix, got %dx%d", k, rows, cols)
		}
	case Cholesky:
		if rows != cols {
			return eris.Wrapf(ErrNotSquare, "%s needs a square matrix, got %dx%d", k, rows, cols)
		}
		if !mat.EqualApprox(a, a.T(), symmetryTol) {
			return eris.Wrapf(ErrNotSymmetric, "%s needs a symmetric matrix", k)
		}
	case SVD, QR:
	default:
		return eris.Wrapf(ErrUnknownKind, "check %s", k)
	}
	return nil
}
