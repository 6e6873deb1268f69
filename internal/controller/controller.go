// Package controller keeps the matrix and the per-cell numeric fields in
// step. It is the only writer of the matrix: field edits are filtered,
// written back and pushed into the matrix, and every change is reported with
// a snapshot of the whole grid.
package controller

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"eigen/internal/grid"
	"eigen/internal/numeric"
)

// ChangeFunc receives a snapshot of the matrix after every change.
type ChangeFunc func(cells [][]grid.Cell)

// edit is a field change captured when it happened and applied later.
type edit struct {
	row, col int
	field    *numeric.Field
	text     string
	cursor   int
}

// Controller owns a matrix and one numeric field per cell.
type Controller struct {
	matrix *grid.Matrix
	fields map[[2]int]*numeric.Field

	maxLen   int
	deferred bool
	pending  []edit

	onChange ChangeFunc
	log      *zap.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithOnChange sets the handler called with a snapshot after every change.
func WithOnChange(fn ChangeFunc) Option {
	return func(c *Controller) { c.onChange = fn }
}

// WithLogger sets the logger. The global zap logger is used by default.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithMaxLength caps how many characters each field takes.
func WithMaxLength(n int) Option {
	return func(c *Controller) { c.maxLen = n }
}

// WithDeferred queues field corrections until Flush instead of applying them
// inside the change notification.
func WithDeferred(deferred bool) Option {
	return func(c *Controller) { c.deferred = deferred }
}

// New returns a controller for an empty rows×cols matrix.
func New(rows, cols int, opts ...Option) (*Controller, error) {
	m, err := grid.New(rows, cols)
	if err != nil {
		return nil, err
	}
	c := &Controller{
		matrix: m,
		fields: make(map[[2]int]*numeric.Field, rows*cols),
		maxLen: numeric.DefaultMaxLength,
		log:    zap.L(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.syncFields()
	return c, nil
}

// Rows returns the number of rows.
func (c *Controller) Rows() int { return c.matrix.Rows() }

// Cols returns the number of columns.
func (c *Controller) Cols() int { return c.matrix.Cols() }

// Snapshot returns a copy of the matrix.
func (c *Controller) Snapshot() [][]grid.Cell { return c.matrix.Snapshot() }

// Pending returns the number of queued corrections.
func (c *Controller) Pending() int { return len(c.pending) }

// Field returns the field of (row, col).
func (c *Controller) Field(row, col int) (*numeric.Field, error) {
	f, ok := c.fields[[2]int{row, col}]
	if !ok {
		return nil, eris.Wrapf(grid.ErrOutOfRange, "field (%d,%d) in %dx%d", row, col, c.Rows(), c.Cols())
	}
	return f, nil
}

// Incomplete reports whether the field of (row, col) holds an accepted text
// that is not a number yet, e.g. "-" or ".".
func (c *Controller) Incomplete(row, col int) bool {
	f, err := c.Field(row, col)
	if err != nil {
		return false
	}
	return f.Incomplete()
}

// syncFields creates fields for cells that have none and drops fields
// outside the matrix. Retained fields are left untouched.
func (c *Controller) syncFields() {
	rows, cols := c.Rows(), c.Cols()
	for key := range c.fields {
		if key[0] >= rows || key[1] >= cols {
			delete(c.fields, key)
		}
	}
	for r := 0; r < rows; r++ {
		for col := 0; col < cols; col++ {
			key := [2]int{r, col}
			if _, ok := c.fields[key]; ok {
				continue
			}
			f := numeric.NewField(c.maxLen)
			row, column := r, col
			f.OnChange(func(text string, cursor int) {
				if err := c.Edit(row, column, text, cursor); err != nil {
					c.log.Warn("field edit rejected", zap.Int("row", row), zap.Int("col", column), zap.Error(err))
				}
			})
			c.fields[key] = f
		}
	}
}

// Edit reports the raw text and caret of (row, col) right after a change.
// The values are captured now; the correction runs now or on the next Flush
// depending on the deferred option, with the same result either way.
func (c *Controller) Edit(row, col int, text string, cursor int) error {
	f, err := c.Field(row, col)
	if err != nil {
		return err
	}
	e := edit{row: row, col: col, field: f, text: text, cursor: cursor}
	if c.deferred {
		c.pending = append(c.pending, e)
		return nil
	}
	return c.apply(e)
}

// Flush applies the queued corrections in the order the edits happened.
func (c *Controller) Flush() error {
	queue := c.pending
	c.pending = nil
	var errs []error
	for _, e := range queue {
		if err := c.apply(e); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return eris.Wrapf(errs[0], "flush: %d of %d edits failed", len(errs), len(queue))
	}
	return nil
}

func (c *Controller) apply(e edit) error {
	if cur, ok := c.fields[[2]int{e.row, e.col}]; !ok || cur != e.field {
		c.log.Debug("dropping edit for removed cell", zap.Int("row", e.row), zap.Int("col", e.col))
		return nil
	}

	corrected, pos := e.field.Commit(e.text, e.cursor)
	if corrected != e.text {
		c.log.Debug("corrected field",
			zap.Int("row", e.row),
			zap.Int("col", e.col),
			zap.String("typed", e.text),
			zap.String("kept", corrected),
			zap.Int("cursor", pos),
		)
	}
	if err := c.matrix.UpdateValue(e.row, e.col, corrected); err != nil {
		return err
	}
	c.changed()
	return nil
}

func (c *Controller) changed() {
	if c.onChange != nil {
		c.onChange(c.matrix.Snapshot())
	}
}

// Set writes text into (row, col) as if it had been typed and committed. The
// text must already be in the field grammar.
func (c *Controller) Set(row, col int, text string) error {
	f, err := c.Field(row, col)
	if err != nil {
		return err
	}
	if err := f.Quiet(func() error { return f.SetText(text) }); err != nil {
		return err
	}
	if err := c.matrix.UpdateValue(row, col, text); err != nil {
		return err
	}
	c.changed()
	return nil
}

// Resize resizes the matrix and the field set. Queued corrections for cells
// that no longer exist are dropped; the rest still apply on the next Flush.
func (c *Controller) Resize(rows, cols int) error {
	if err := c.matrix.Resize(rows, cols); err != nil {
		return err
	}
	c.syncFields()

	kept := c.pending[:0]
	for _, e := range c.pending {
		if cur, ok := c.fields[[2]int{e.row, e.col}]; ok && cur == e.field {
			kept = append(kept, e)
		}
	}
	if dropped := len(c.pending) - len(kept); dropped > 0 {
		c.log.Debug("dropped queued edits after resize", zap.Int("dropped", dropped))
	}
	c.pending = kept

	c.changed()
	return nil
}

// Clear empties every field and cell. Queued corrections are discarded.
func (c *Controller) Clear() {
	c.pending = nil
	for _, f := range c.fields {
		_ = f.Quiet(func() error { return f.SetText("") })
	}
	c.matrix.Clear()
	c.changed()
}

// Load replaces the size and contents with cells, e.g. from an imported
// file.
func (c *Controller) Load(cells [][]grid.Cell) error {
	if err := c.matrix.Load(cells); err != nil {
		return err
	}
	c.pending = nil
	c.fields = make(map[[2]int]*numeric.Field, c.Rows()*c.Cols())
	c.syncFields()

	for r, row := range cells {
		for col, cell := range row {
			f := c.fields[[2]int{r, col}]
			text := cell.String()
			if err := f.Quiet(func() error { return f.SetText(text) }); err != nil {
				return eris.Wrapf(err, "load (%d,%d)", r, col)
			}
		}
	}
	c.changed()
	return nil
}
