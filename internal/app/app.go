// Package app is the terminal front end: a grid of numeric fields driven by
// tcell key events on top of the matrix controller.
package app

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"eigen/internal/controller"
	"eigen/internal/decomp"
	"eigen/internal/grid"
)

const (
	ModeNormal  = "normal"
	ModeInsert  = "insert"
	ModeCommand = "command"
	ModeValue   = "value"
)

// numericRunes start editing when typed in normal mode.
const numericRunes = "0123456789-."

// Options configures an App.
type Options struct {
	Decomposition decomp.Kind
	// MaxSize caps rows and columns; zero means controller.MaxSize.
	MaxSize   int
	CellWidth int
	Registry  *decomp.Registry
	Logger    *zap.Logger
}

type App struct {
	// layout
	LeftGutter  int
	StatusLines int
	CellWidth   int
	CellPadding int

	ctl *controller.Controller
	reg *decomp.Registry
	log *zap.Logger

	// cursor / view
	CurRow  int
	CurCol  int
	ViewRow int
	ViewCol int

	// UI state
	Mode    string // normal | insert | command | value
	Prompt  *Prompt
	Status  string
	Decomp  decomp.Kind
	MaxSize int
	Quit    bool

	// editing behavior options
	MoveAfterEnter      bool
	PrintableStartsEdit bool

	// UI: help popup visibility
	HelpVisible bool
}

// NewApp returns an App editing ctl.
func NewApp(ctl *controller.Controller, opts Options) *App {
	a := &App{
		LeftGutter:          4,
		StatusLines:         2,
		CellWidth:           opts.CellWidth,
		CellPadding:         1,
		ctl:                 ctl,
		reg:                 opts.Registry,
		log:                 opts.Logger,
		Mode:                ModeNormal,
		Decomp:              opts.Decomposition,
		MaxSize:             opts.MaxSize,
		MoveAfterEnter:      true,
		PrintableStartsEdit: true,
	}
	if a.CellWidth < 4 {
		a.CellWidth = 12
	}
	if a.MaxSize < 1 {
		a.MaxSize = controller.MaxSize
	}
	if a.reg == nil {
		a.reg = decomp.NewRegistry()
	}
	if a.log == nil {
		a.log = zap.L()
	}
	return a
}

// Controller returns the controller the App edits.
func (a *App) Controller() *controller.Controller { return a.ctl }

// Run draws and handles events until the user quits.
func (a *App) Run(s tcell.Screen) {
	for !a.Quit {
		a.EnsureCursorVisible(s)
		a.Draw(s)
		a.Handle(s, s.PollEvent())
	}
}

// Handle processes one event and then applies the field corrections it
// queued, so the next frame shows corrected text.
func (a *App) Handle(s tcell.Screen, ev tcell.Event) {
	switch tev := ev.(type) {
	case *tcell.EventKey:
		a.HandleKeyEvent(s, tev)
	case *tcell.EventResize:
		s.Sync()
	case nil:
		// screen finalized
		a.Quit = true
	}
	if err := a.ctl.Flush(); err != nil {
		a.log.Warn("applying field edits", zap.Error(err))
	}
}

// ----------------------------- Events / Input -----------------------------

func (a *App) HandleKeyEvent(s tcell.Screen, ev *tcell.EventKey) {
	switch a.Mode {
	case ModeInsert:
		a.handleInsert(ev)
		return
	case ModeCommand, ModeValue:
		a.handlePrompt(ev)
		return
	}

	// If help popup is visible, consume most keys and only allow closing with Esc or "?"
	if a.HelpVisible {
		if ev.Key() == tcell.KeyEsc || (ev.Key() == tcell.KeyRune && ev.Rune() == '?') {
			a.HelpVisible = false
		}
		return
	}

	// normal mode
	switch ev.Key() {
	case tcell.KeyEsc:
		a.Status = ""
	case tcell.KeyCtrlC:
		a.Quit = true
	case tcell.KeyUp:
		a.moveTo(a.CurRow-1, a.CurCol)
	case tcell.KeyDown:
		a.moveTo(a.CurRow+1, a.CurCol)
	case tcell.KeyLeft:
		a.moveTo(a.CurRow, a.CurCol-1)
	case tcell.KeyRight, tcell.KeyTab:
		a.moveTo(a.CurRow, a.CurCol+1)
	case tcell.KeyHome:
		a.moveTo(0, 0)
	case tcell.KeyEnd:
		a.moveTo(a.ctl.Rows()-1, a.ctl.Cols()-1)
	case tcell.KeyEnter:
		a.startEdit()
	case tcell.KeyDelete, tcell.KeyBackspace, tcell.KeyBackspace2:
		a.report(a.ctl.Set(a.CurRow, a.CurCol, ""))
	case tcell.KeyF2:
		a.report(a.resize(a.ctl.Rows()+1, a.ctl.Cols()))
	case tcell.KeyF3:
		a.report(a.resize(a.ctl.Rows(), a.ctl.Cols()+1))
	case tcell.KeyF4:
		a.report(a.resize(a.ctl.Rows()-1, a.ctl.Cols()))
	case tcell.KeyF5:
		a.report(a.resize(a.ctl.Rows(), a.ctl.Cols()-1))
	case tcell.KeyRune:
		a.handleNormalRune(ev.Rune())
	}
}

func (a *App) handleNormalRune(r rune) {
	switch r {
	case 'q':
		a.Quit = true
	case 'i':
		a.startEdit()
	case 'h':
		a.moveTo(a.CurRow, a.CurCol-1)
	case 'j':
		a.moveTo(a.CurRow+1, a.CurCol)
	case 'k':
		a.moveTo(a.CurRow-1, a.CurCol)
	case 'l':
		a.moveTo(a.CurRow, a.CurCol+1)
	case 'x':
		a.report(a.ctl.Set(a.CurRow, a.CurCol, ""))
	case 'd':
		kinds := decomp.Kinds()
		a.Decomp = kinds[(int(a.Decomp)+1)%len(kinds)]
		a.Status = "decomposition: " + a.Decomp.String()
	case ':':
		a.Mode = ModeCommand
		a.Prompt = NewPrompt(":", "")
	case '=':
		f, err := a.ctl.Field(a.CurRow, a.CurCol)
		if err != nil {
			a.report(err)
			return
		}
		a.Mode = ModeValue
		a.Prompt = NewNumericPrompt(grid.CellName(a.CurRow, a.CurCol)+" =", f.Accepted(), f.MaxLength())
	case '?':
		a.HelpVisible = true
	default:
		if a.PrintableStartsEdit && strings.ContainsRune(numericRunes, r) {
			f, err := a.ctl.Field(a.CurRow, a.CurCol)
			if err != nil {
				a.report(err)
				return
			}
			a.startEdit()
			f.InsertRune(r)
		}
	}
}

func (a *App) handleInsert(ev *tcell.EventKey) {
	f, err := a.ctl.Field(a.CurRow, a.CurCol)
	if err != nil {
		a.Mode = ModeNormal
		a.report(err)
		return
	}
	switch ev.Key() {
	case tcell.KeyEsc:
		a.Mode = ModeNormal
	case tcell.KeyEnter:
		a.Mode = ModeNormal
		if a.MoveAfterEnter && ev.Modifiers()&tcell.ModCtrl == 0 {
			a.moveTo(a.CurRow+1, a.CurCol)
		}
	case tcell.KeyTab:
		a.Mode = ModeNormal
		a.moveTo(a.CurRow, a.CurCol+1)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		f.Backspace()
	case tcell.KeyDelete:
		f.Delete()
	case tcell.KeyLeft:
		f.Left()
	case tcell.KeyRight:
		f.Right()
	case tcell.KeyHome:
		f.Home()
	case tcell.KeyEnd:
		f.End()
	case tcell.KeyRune:
		f.InsertRune(ev.Rune())
	}
}

func (a *App) handlePrompt(ev *tcell.EventKey) {
	if a.Prompt == nil {
		a.Mode = ModeNormal
		return
	}
	done, ok := a.Prompt.HandleKey(ev)
	if !done {
		return
	}
	mode, text := a.Mode, a.Prompt.Text()
	a.Mode = ModeNormal
	a.Prompt = nil
	if !ok {
		return
	}
	if mode == ModeValue {
		a.report(a.ctl.Set(a.CurRow, a.CurCol, text))
		return
	}
	a.report(a.ExecuteCommand(text))
}

func (a *App) startEdit() {
	f, err := a.ctl.Field(a.CurRow, a.CurCol)
	if err != nil {
		a.report(err)
		return
	}
	f.End()
	a.Mode = ModeInsert
}

// moveTo selects (row, col) clamped to the matrix.
func (a *App) moveTo(row, col int) {
	a.CurRow = clampInt(row, 0, a.ctl.Rows()-1)
	a.CurCol = clampInt(col, 0, a.ctl.Cols()-1)
}

func (a *App) resize(rows, cols int) error {
	if rows < 1 || cols < 1 || rows > a.MaxSize || cols > a.MaxSize {
		return eris.Wrapf(grid.ErrInvalidSize, "%dx%d, rows and columns must be between 1 and %d", rows, cols, a.MaxSize)
	}
	if err := a.ctl.Resize(rows, cols); err != nil {
		return err
	}
	a.moveTo(a.CurRow, a.CurCol)
	a.Status = fmt.Sprintf("size %dx%d", rows, cols)
	return nil
}

// report shows err in the status line and logs it.
func (a *App) report(err error) {
	if err == nil {
		return
	}
	a.log.Warn("command failed", zap.Error(err))
	a.Status = "error: " + err.Error()
}

// ----------------------------- Drawing -----------------------------

func (a *App) Draw(s tcell.Screen) {
	s.Clear()
	w, h := s.Size()
	rows, cols := a.ctl.Rows(), a.ctl.Cols()

	// header row: column numbers
	x := a.LeftGutter
	for c := a.ViewCol; c < cols && x < w; c++ {
		hdrStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)
		if c == a.CurCol {
			hdrStyle = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow)
		}
		printText(s, x, 0, " "+fmt.Sprint(c+1), hdrStyle, a.CellWidth)
		x += a.CellWidth
	}

	// draw rows
	y := 1
	for r := a.ViewRow; r < rows && y < h-a.StatusLines; r++ {
		gutterStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)
		if r == a.CurRow {
			gutterStyle = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow)
		}
		printText(s, 0, y, fmt.Sprint(r+1), gutterStyle, a.LeftGutter-1)

		x = a.LeftGutter
		for c := a.ViewCol; c < cols && x < w; c++ {
			a.drawCell(s, x, y, r, c)
			x += a.CellWidth
		}
		y++
	}

	// Status area
	statusY := max(h-a.StatusLines, 0)
	statusStyle := tcell.StyleDefault.Background(tcell.ColorGray).Foreground(tcell.ColorWhite)

	statusLeft := fmt.Sprintf("Mode:%s  Cell:%s%d  Size:%dx%d  Decomp:%s",
		a.Mode, grid.ColToName(a.CurCol), a.CurRow+1, rows, cols, a.Decomp)
	if a.ctl.Incomplete(a.CurRow, a.CurCol) {
		statusLeft += "  [incomplete]"
	}
	printText(s, 0, statusY, statusLeft, statusStyle, w)
	printText(s, 0, statusY+1, a.Status, statusStyle, w)

	if a.HelpVisible {
		a.drawHelpPopup(s, helpText)
	}

	if a.Prompt != nil {
		a.Prompt.Draw(s)
	} else if a.Mode == ModeInsert {
		a.showFieldCursor(s)
	} else {
		s.HideCursor()
	}

	s.Show()
}

func (a *App) drawCell(s tcell.Screen, x, y, r, c int) {
	f, err := a.ctl.Field(r, c)
	if err != nil {
		return
	}
	text := f.Text()

	style := tcell.StyleDefault
	switch {
	case text == "":
		// placeholder label for empty fields
		text = grid.CellName(r, c)
		style = style.Foreground(tcell.ColorGray)
	case f.Incomplete():
		style = style.Foreground(tcell.ColorRed)
	}
	if r == a.CurRow && c == a.CurCol {
		style = style.Background(tcell.ColorLightGray)
		if !f.Incomplete() {
			style = style.Foreground(tcell.ColorBlack)
		}
	}

	for dx := 0; dx < a.CellWidth; dx++ {
		s.SetContent(x+dx, y, ' ', nil, style)
	}
	printText(s, x+a.CellPadding, y, text, style, a.CellWidth-2*a.CellPadding)
}

func (a *App) showFieldCursor(s tcell.Screen) {
	f, err := a.ctl.Field(a.CurRow, a.CurCol)
	if err != nil || a.CurRow < a.ViewRow || a.CurCol < a.ViewCol {
		s.HideCursor()
		return
	}
	w, h := s.Size()
	inner := a.CellWidth - 2*a.CellPadding
	offset := runewidth.StringWidth(string([]rune(f.Text())[:f.Cursor()]))
	cx := a.LeftGutter + (a.CurCol-a.ViewCol)*a.CellWidth + a.CellPadding + min(offset, max(inner-1, 0))
	cy := 1 + a.CurRow - a.ViewRow
	if cx < w && cy < h-a.StatusLines {
		s.ShowCursor(cx, cy)
	} else {
		s.HideCursor()
	}
}

const helpText = "\n arrows / hjkl - move \n i / Enter / digit - edit \n Esc / Enter - leave edit \n = - set value \n x / Del - clear cell \n d - next decomposition \n F2/F3 - add row/col \n F4/F5 - remove row/col \n : - command \n :size R C | :rows N | :cols N \n :d KIND | :run | :clear | :print \n :set REF VALUE | :set REF =EXPR \n :eval EXPR | :cw N \n :w file [csv|xlsx] | :o file [csv|xlsx] \n q - quit \n "

func (a *App) drawHelpPopup(s tcell.Screen, help string) {
	w, h := s.Size()
	if w < 10 || h < 5 {
		return
	}

	padding := 2
	maxPW := w - 6
	maxPH := h - 2

	innerW := minInt(maxPW-padding*2, 50)
	if innerW < 30 {
		innerW = maxInt(30, maxPW-padding*2)
	}
	innerW = minInt(innerW, maxPW-padding*2)

	lines := wrapText(help, innerW)
	if len(lines) > maxPH-padding*2 {
		lines = lines[:maxInt(maxPH-padding*2, 0)]
	}

	innerH := maxInt(len(lines), 3)
	pw := innerW + padding*2
	ph := innerH + padding*2
	left := (w - pw) / 2
	top := (h - ph) / 2

	borderStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorDefault)
	bgStyle := tcell.StyleDefault.Background(tcell.ColorDefault).Foreground(tcell.ColorWhite)

	for yy := 0; yy < ph; yy++ {
		for xx := 0; xx < pw; xx++ {
			s.SetContent(left+xx, top+yy, ' ', nil, bgStyle)
		}
	}

	s.SetContent(left, top, '┌', nil, borderStyle)
	s.SetContent(left+pw-1, top, '┐', nil, borderStyle)
	s.SetContent(left, top+ph-1, '└', nil, borderStyle)
	s.SetContent(left+pw-1, top+ph-1, '┘', nil, borderStyle)
	for xx := 1; xx < pw-1; xx++ {
		s.SetContent(left+xx, top, '─', nil, borderStyle)
		s.SetContent(left+xx, top+ph-1, '─', nil, borderStyle)
	}
	for yy := 1; yy < ph-1; yy++ {
		s.SetContent(left, top+yy, '│', nil, borderStyle)
		s.SetContent(left+pw-1, top+yy, '│', nil, borderStyle)
	}

	for i, ln := range lines {
		printText(s, left+padding, top+padding+i, ln, bgStyle, innerW)
	}
}

// ----------------------------- Helpers -----------------------------

// printText writes str at (x, y) and pads or truncates it to width columns.
func printText(s tcell.Screen, x, y int, str string, style tcell.Style, width int) {
	if width <= 0 || y < 0 {
		return
	}
	str = runewidth.Truncate(str, width, "")
	col := 0
	for _, ch := range str {
		if x+col >= 0 {
			s.SetContent(x+col, y, ch, nil, style)
		}
		col += runewidth.RuneWidth(ch)
	}
	for ; col < width; col++ {
		if x+col >= 0 {
			s.SetContent(x+col, y, ' ', nil, style)
		}
	}
}

func wrapText(s string, max int) []string {
	if max <= 2 {
		return []string{s}
	}

	var result []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			result = append(result, "")
			continue
		}

		cur := " "
		for _, w := range words {
			if runewidth.StringWidth(cur)+1+runewidth.StringWidth(w) <= max {
				if runewidth.StringWidth(cur) > 1 {
					cur += " " + w
				} else {
					cur += w
				}
			} else {
				result = append(result, cur)
				cur = " " + runewidth.Truncate(w, max-1, "")
			}
		}
		result = append(result, cur)
	}

	return result
}

// ----------------------------- Viewport -----------------------------

// ComputeVisible returns how many rows and columns fit on s.
func (a *App) ComputeVisible(s tcell.Screen) (visibleRows, visibleCols int) {
	w, h := s.Size()
	usableW := maxInt(w-a.LeftGutter, 1)
	usableH := maxInt(h-a.StatusLines-1, 1)
	return maxInt(usableH, 1), maxInt(usableW/a.CellWidth, 1)
}

func (a *App) EnsureCursorVisible(s tcell.Screen) {
	if s == nil {
		return
	}
	visibleRows, visibleCols := a.ComputeVisible(s)

	if a.CurCol < a.ViewCol {
		a.ViewCol = a.CurCol
	} else if a.CurCol >= a.ViewCol+visibleCols {
		a.ViewCol = a.CurCol - visibleCols + 1
	}
	a.ViewCol = clampInt(a.ViewCol, 0, a.ctl.Cols()-1)

	if a.CurRow < a.ViewRow {
		a.ViewRow = a.CurRow
	} else if a.CurRow >= a.ViewRow+visibleRows {
		a.ViewRow = a.CurRow - visibleRows + 1
	}
	a.ViewRow = clampInt(a.ViewRow, 0, a.ctl.Rows()-1)
}

// ----------------------------- Misc -----------------------------

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func clampInt(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
