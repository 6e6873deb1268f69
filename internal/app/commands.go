package app

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"eigen/internal/calc"
	"eigen/internal/controller"
	"eigen/internal/decomp"
	"eigen/internal/grid"
	"eigen/internal/numeric"
	"eigen/internal/storage"
)

var (
	ErrUnknownCommand = eris.New("app: unknown command")
	ErrUsage          = eris.New("app: wrong arguments")
)

// ExecuteCommand runs a ":" command line. The outcome is shown in Status.
func (a *App) ExecuteCommand(cmd string) error {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return nil
	}
	args := parts[1:]
	switch parts[0] {
	case "q", "quit":
		a.Quit = true
	case "size":
		if len(args) == 0 {
			a.Status = fmt.Sprintf("size %dx%d, choose from %s", a.ctl.Rows(), a.ctl.Cols(),
				strings.Join(controller.SizeOptions(a.MaxSize), " "))
			return nil
		}
		if len(args) != 2 {
			return eris.Wrap(ErrUsage, "size ROWS COLS")
		}
		rows, err := strconv.Atoi(args[0])
		if err != nil {
			return eris.Wrapf(ErrUsage, "size: rows %q", args[0])
		}
		cols, err := strconv.Atoi(args[1])
		if err != nil {
			return eris.Wrapf(ErrUsage, "size: cols %q", args[1])
		}
		return a.resize(rows, cols)
	case "rows", "cols":
		if len(args) != 1 {
			return eris.Wrapf(ErrUsage, "%s N", parts[0])
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return eris.Wrapf(ErrUsage, "%s: %q", parts[0], args[0])
		}
		if parts[0] == "rows" {
			return a.resize(n, a.ctl.Cols())
		}
		return a.resize(a.ctl.Rows(), n)
	case "d", "decomp":
		if len(args) != 1 {
			return eris.Wrap(ErrUsage, "d KIND")
		}
		k, err := parseKindArg(args[0])
		if err != nil {
			return err
		}
		a.Decomp = k
		a.Status = "decomposition: " + k.String()
	case "run":
		return a.decompose()
	case "clear":
		a.ctl.Clear()
		a.Status = "cleared"
	case "set":
		if len(args) < 1 {
			return eris.Wrap(ErrUsage, "set REF [VALUE|=EXPR]")
		}
		row, col, ok := grid.ParseCellRef(args[0])
		if !ok {
			return eris.Wrapf(ErrUsage, "set: cell %q", args[0])
		}
		value := strings.Join(args[1:], " ")
		if strings.HasPrefix(value, "=") {
			v, err := a.evaluate(value)
			if err != nil {
				return err
			}
			value = v
		} else if len(args) > 2 {
			return eris.Wrap(ErrUsage, "set REF [VALUE|=EXPR]")
		}
		if err := a.ctl.Set(row, col, value); err != nil {
			return err
		}
		a.CurRow, a.CurCol = row, col
	case "eval":
		if len(args) == 0 {
			return eris.Wrap(ErrUsage, "eval EXPR")
		}
		v, err := a.evaluate(strings.Join(args, " "))
		if err != nil {
			return err
		}
		a.Status = "= " + v
	case "cw":
		if len(args) != 1 {
			return eris.Wrap(ErrUsage, "cw WIDTH")
		}
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 4 {
			return eris.Wrapf(ErrUsage, "cw: width %q, need 4 or more", args[0])
		}
		a.CellWidth = v
	case "print":
		a.log.Info("matrix", zap.String("cells", storage.FormatText(a.ctl.Snapshot())))
		a.Status = "matrix written to log"
	case "w":
		if len(args) < 1 || len(args) > 2 {
			return eris.Wrap(ErrUsage, "w FILE [csv|xlsx]")
		}
		format := storage.FormatFor(args[0], optArg(args, 1))
		if err := storage.Save(a.ctl.Snapshot(), args[0], format); err != nil {
			return err
		}
		a.Status = fmt.Sprintf("wrote %s (%s)", args[0], format)
	case "o":
		if len(args) < 1 || len(args) > 2 {
			return eris.Wrap(ErrUsage, "o FILE [csv|xlsx]")
		}
		cells, err := storage.Load(args[0], storage.FormatFor(args[0], optArg(args, 1)))
		if err != nil {
			return err
		}
		if rows, cols := len(cells), len(cells[0]); rows > a.MaxSize || cols > a.MaxSize {
			return eris.Wrapf(grid.ErrInvalidSize, "%s is %dx%d, at most %dx%d fits", args[0], rows, cols, a.MaxSize, a.MaxSize)
		}
		if err := a.ctl.Load(cells); err != nil {
			return err
		}
		a.CurRow, a.CurCol, a.ViewRow, a.ViewCol = 0, 0, 0, 0
		a.Status = fmt.Sprintf("opened %s", args[0])
	default:
		return eris.Wrapf(ErrUnknownCommand, "%q", parts[0])
	}
	return nil
}

// evaluate computes expr over the current matrix and formats the result as
// field text.
func (a *App) evaluate(expr string) (string, error) {
	v, err := calc.Eval(expr, calc.Snapshot(a.ctl.Snapshot()))
	if err != nil {
		return "", err
	}
	text := grid.Number(v).String()
	f, err := a.ctl.Field(a.CurRow, a.CurCol)
	if err == nil && len(text) > f.MaxLength() {
		return "", eris.Wrapf(numeric.ErrInvalidText, "%s has more than %d characters", text, f.MaxLength())
	}
	return text, nil
}

// decompose hands the current matrix to the selected decomposition.
func (a *App) decompose() error {
	res, err := a.reg.Decompose(a.Decomp, a.ctl.Snapshot())
	if err != nil {
		return err
	}
	names := make([]string, 0, len(res.Factors))
	for name := range res.Factors {
		names = append(names, name)
	}
	sort.Strings(names)
	a.log.Info("decomposed", zap.Stringer("kind", res.Kind), zap.Strings("factors", names))
	a.Status = fmt.Sprintf("%s: %s", res.Kind, strings.Join(names, " "))
	return nil
}

// parseKindArg accepts a name or the selector index 0..4.
func parseKindArg(s string) (decomp.Kind, error) {
	if n, err := strconv.Atoi(s); err == nil {
		k := decomp.Kind(n)
		if !k.Valid() {
			return 0, eris.Wrapf(decomp.ErrUnknownKind, "index %d", n)
		}
		return k, nil
	}
	return decomp.ParseKind(s)
}

func optArg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
