// Package calc evaluates arithmetic expressions over matrix cells, e.g.
// "SUM(A1:C1)/3" or "IF(B2, 1/B2, 0)". Results are plain numbers that can be
// written back into a cell.
package calc

import (
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"eigen/internal/grid"
)

var (
	ErrSyntax   = eris.New("calc: syntax error")
	ErrDivZero  = eris.New("calc: division by zero")
	ErrFunction = eris.New("calc: unknown function")
	ErrArgs     = eris.New("calc: wrong number of arguments")
	ErrNotReal  = eris.New("calc: result is not a finite number")
)

// zeroTol is how close to zero a divisor or condition may get before it
// counts as zero.
const zeroTol = 1e-12

// Resolver returns the cell at the 0-based (row, col).
type Resolver func(row, col int) (grid.Cell, error)

// Snapshot resolves references against cells.
func Snapshot(cells [][]grid.Cell) Resolver {
	return func(row, col int) (grid.Cell, error) {
		if row < 0 || row >= len(cells) || col < 0 || col >= len(cells[row]) {
			return grid.Cell{}, eris.Wrapf(grid.ErrOutOfRange, "reference %s%d", grid.ColToName(col), row+1)
		}
		return cells[row][col], nil
	}
}

// Eval parses and evaluates expr. A leading '=' is ignored. Empty cells
// read as 0 and are skipped by SUM, AVERAGE, MIN, MAX and COUNT.
func Eval(expr string, resolve Resolver) (float64, error) {
	n, err := Parse(expr)
	if err != nil {
		return 0, err
	}
	v, err := n.eval(resolve)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, eris.Wrapf(ErrNotReal, "%q", expr)
	}
	return v, nil
}

// Expr is a parsed expression.
type Expr interface {
	eval(r Resolver) (float64, error)
}

// Parse parses expr without evaluating it.
func Parse(expr string) (Expr, error) {
	p := parser{input: strings.TrimPrefix(strings.TrimSpace(expr), "=")}
	n, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	p.skipSpaces()
	if p.pos < len(p.input) {
		return nil, p.errorf("unexpected %q", p.input[p.pos:])
	}
	return n, nil
}

// ----------------------------- Nodes -----------------------------

type number float64

func (n number) eval(Resolver) (float64, error) { return float64(n), nil }

type ref struct{ row, col int }

func (n ref) eval(r Resolver) (float64, error) {
	c, err := r(n.row, n.col)
	if err != nil {
		return 0, err
	}
	return c.Value, nil
}

// span is a rectangular range; it is only valid as a function argument.
type span struct{ r1, c1, r2, c2 int }

func (n span) eval(Resolver) (float64, error) {
	return 0, eris.Wrap(ErrSyntax, "range outside of a function")
}

type unary struct {
	op byte
	x  Expr
}

func (n unary) eval(r Resolver) (float64, error) {
	v, err := n.x.eval(r)
	if err != nil {
		return 0, err
	}
	if n.op == '-' {
		return -v, nil
	}
	return v, nil
}

type binary struct {
	op   byte
	l, r Expr
}

func (n binary) eval(r Resolver) (float64, error) {
	l, err := n.l.eval(r)
	if err != nil {
		return 0, err
	}
	rv, err := n.r.eval(r)
	if err != nil {
		return 0, err
	}
	switch n.op {
	case '+':
		return l + rv, nil
	case '-':
		return l - rv, nil
	case '*':
		return l * rv, nil
	default:
		if math.Abs(rv) < zeroTol {
			return 0, ErrDivZero
		}
		return l / rv, nil
	}
}

type call struct {
	name string
	args []Expr
}

func (n call) eval(r Resolver) (float64, error) {
	switch n.name {
	case "SUM", "AVERAGE", "MIN", "MAX", "COUNT":
		vals, err := collect(n.args, r)
		if err != nil {
			return 0, err
		}
		return aggregate(n.name, vals), nil
	case "ROUND":
		if len(n.args) < 1 || len(n.args) > 2 {
			return 0, eris.Wrapf(ErrArgs, "ROUND takes 1 or 2, got %d", len(n.args))
		}
		v, err := n.args[0].eval(r)
		if err != nil {
			return 0, err
		}
		digits := 0.0
		if len(n.args) == 2 {
			if digits, err = n.args[1].eval(r); err != nil {
				return 0, err
			}
		}
		scale := math.Pow(10, math.Trunc(digits))
		return math.Round(v*scale) / scale, nil
	case "IF":
		if len(n.args) < 2 || len(n.args) > 3 {
			return 0, eris.Wrapf(ErrArgs, "IF takes 2 or 3, got %d", len(n.args))
		}
		cond, err := n.args[0].eval(r)
		if err != nil {
			return 0, err
		}
		// only the chosen branch is evaluated
		if truthy(cond) {
			return n.args[1].eval(r)
		}
		if len(n.args) == 3 {
			return n.args[2].eval(r)
		}
		return 0, nil
	case "AND", "OR":
		if len(n.args) == 0 {
			return 0, eris.Wrapf(ErrArgs, "%s needs arguments", n.name)
		}
		all, some := true, false
		for _, a := range n.args {
			v, err := a.eval(r)
			if err != nil {
				return 0, err
			}
			all = all && truthy(v)
			some = some || truthy(v)
		}
		if (n.name == "AND" && all) || (n.name == "OR" && some) {
			return 1, nil
		}
		return 0, nil
	case "NOT":
		if len(n.args) != 1 {
			return 0, eris.Wrapf(ErrArgs, "NOT takes 1, got %d", len(n.args))
		}
		v, err := n.args[0].eval(r)
		if err != nil {
			return 0, err
		}
		if truthy(v) {
			return 0, nil
		}
		return 1, nil
	case "ABS":
		if len(n.args) != 1 {
			return 0, eris.Wrapf(ErrArgs, "ABS takes 1, got %d", len(n.args))
		}
		v, err := n.args[0].eval(r)
		return math.Abs(v), err
	}
	return 0, eris.Wrapf(ErrFunction, "%s", n.name)
}

// collect expands ranges and references, skipping empty cells.
func collect(args []Expr, r Resolver) ([]float64, error) {
	var vals []float64
	add := func(row, col int) error {
		c, err := r(row, col)
		if err != nil {
			return err
		}
		if v, ok := c.Float(); ok {
			vals = append(vals, v)
		}
		return nil
	}
	for _, a := range args {
		switch n := a.(type) {
		case span:
			for row := min(n.r1, n.r2); row <= max(n.r1, n.r2); row++ {
				for col := min(n.c1, n.c2); col <= max(n.c1, n.c2); col++ {
					if err := add(row, col); err != nil {
						return nil, err
					}
				}
			}
		case ref:
			if err := add(n.row, n.col); err != nil {
				return nil, err
			}
		default:
			v, err := a.eval(r)
			if err != nil {
				return nil, err
			}
			vals = append(vals, v)
		}
	}
	return vals, nil
}

func aggregate(name string, vals []float64) float64 {
	if name == "COUNT" {
		return float64(len(vals))
	}
	if len(vals) == 0 {
		return 0
	}
	out := vals[0]
	sum := 0.0
	for _, v := range vals {
		sum += v
		out = pick(name, out, v)
	}
	switch name {
	case "SUM":
		return sum
	case "AVERAGE":
		return sum / float64(len(vals))
	}
	return out
}

func pick(name string, cur, v float64) float64 {
	if name == "MIN" {
		return math.Min(cur, v)
	}
	return math.Max(cur, v)
}

func truthy(v float64) bool { return math.Abs(v) > zeroTol }

// ----------------------------- Parser -----------------------------

type parser struct {
	input string
	pos   int
}

func (p *parser) errorf(format string, args ...any) error {
	return eris.Wrapf(ErrSyntax, "at %d: "+format, append([]any{p.pos}, args...)...)
}

func (p *parser) skipSpaces() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) peek() byte {
	p.skipSpaces()
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *parser) parseExpr() (Expr, error) {
	l, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek()
		if op != '+' && op != '-' {
			return l, nil
		}
		p.pos++
		r, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		l = binary{op: op, l: l, r: r}
	}
}

func (p *parser) parseTerm() (Expr, error) {
	l, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek()
		if op != '*' && op != '/' {
			return l, nil
		}
		p.pos++
		r, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		l = binary{op: op, l: l, r: r}
	}
}

func (p *parser) parseFactor() (Expr, error) {
	if op := p.peek(); op == '+' || op == '-' {
		p.pos++
		x, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return unary{op: op, x: x}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Expr, error) {
	ch := p.peek()
	switch {
	case ch == 0:
		return nil, p.errorf("unexpected end")
	case ch == '(':
		p.pos++
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.peek() != ')' {
			return nil, p.errorf("missing )")
		}
		p.pos++
		return x, nil
	case isDigit(ch) || ch == '.':
		return p.parseNumber()
	case isLetter(ch):
		return p.parseIdent()
	}
	return nil, p.errorf("unexpected %q", ch)
}

func (p *parser) parseNumber() (Expr, error) {
	start := p.pos
	j := p.pos
	seenDot, seenE := false, false
scan:
	for j < len(p.input) {
		c := p.input[j]
		switch {
		case isDigit(c):
		case c == '.' && !seenDot && !seenE:
			seenDot = true
		case (c == 'e' || c == 'E') && !seenE:
			seenE = true
			if j+1 < len(p.input) && (p.input[j+1] == '+' || p.input[j+1] == '-') {
				j++
			}
		default:
			break scan
		}
		j++
	}
	v, err := strconv.ParseFloat(p.input[start:j], 64)
	if err != nil {
		return nil, p.errorf("number %q", p.input[start:j])
	}
	p.pos = j
	return number(v), nil
}

// parseIdent reads a function call, a cell reference or a range.
func (p *parser) parseIdent() (Expr, error) {
	start := p.pos
	for p.pos < len(p.input) && isLetter(p.input[p.pos]) {
		p.pos++
	}
	letters := p.input[start:p.pos]

	if p.peek() == '(' {
		p.pos++
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		return call{name: strings.ToUpper(letters), args: args}, nil
	}

	for p.pos < len(p.input) && isDigit(p.input[p.pos]) {
		p.pos++
	}
	row, col, ok := grid.ParseCellRef(p.input[start:p.pos])
	if !ok {
		return nil, p.errorf("reference %q", p.input[start:p.pos])
	}
	if p.peek() != ':' {
		return ref{row: row, col: col}, nil
	}

	p.pos++
	p.skipSpaces()
	end, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	to, ok := end.(ref)
	if !ok {
		return nil, p.errorf("range end")
	}
	return span{r1: row, c1: col, r2: to.row, c2: to.col}, nil
}

func (p *parser) parseArgs() ([]Expr, error) {
	var args []Expr
	if p.peek() == ')' {
		p.pos++
		return args, nil
	}
	for {
		a, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		switch p.peek() {
		case ',':
			p.pos++
		case ')':
			p.pos++
			return args, nil
		default:
			return nil, p.errorf("expected , or )")
		}
	}
}

func isLetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
