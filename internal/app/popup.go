package app

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"eigen/internal/numeric"
)

// maxPromptLen caps free text prompts.
const maxPromptLen = 4096

// Prompt is a one line input box drawn over the grid. It is fed key events
// by the App until the user confirms with Enter or cancels with Esc.
type Prompt struct {
	Label string

	buf   []rune
	pos   int
	limit int

	// filter corrects the buffer after every edit.
	filter func(text string, cursor int) (string, int)
}

// NewPrompt returns a prompt holding initial with the caret at the end.
func NewPrompt(label, initial string) *Prompt {
	buf := []rune(initial)
	return &Prompt{Label: label, buf: buf, pos: len(buf), limit: maxPromptLen}
}

// NewNumericPrompt returns a prompt that only keeps signed decimal text,
// corrected the same way a matrix field is.
func NewNumericPrompt(label, initial string, maxLen int) *Prompt {
	accepted, _ := numeric.Sanitize(initial, 0)
	p := NewPrompt(label, accepted)
	if maxLen < 1 {
		maxLen = numeric.DefaultMaxLength
	}
	p.limit = maxLen
	p.filter = func(text string, cursor int) (string, int) {
		out, pos := numeric.Filter(text, cursor, accepted)
		accepted = out
		return out, pos
	}
	return p
}

// Text returns the current input.
func (p *Prompt) Text() string { return string(p.buf) }

// Cursor returns the caret position in runes.
func (p *Prompt) Cursor() int { return p.pos }

// HandleKey applies ev. done is true once the prompt is closed and ok tells
// whether it was confirmed.
func (p *Prompt) HandleKey(ev *tcell.EventKey) (done, ok bool) {
	edited := false
	switch ev.Key() {
	case tcell.KeyEsc:
		return true, false
	case tcell.KeyEnter:
		return true, true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if p.pos > 0 {
			p.buf = append(p.buf[:p.pos-1], p.buf[p.pos:]...)
			p.pos--
			edited = true
		}
	case tcell.KeyDelete:
		if p.pos < len(p.buf) {
			p.buf = append(p.buf[:p.pos], p.buf[p.pos+1:]...)
			edited = true
		}
	case tcell.KeyLeft:
		if p.pos > 0 {
			p.pos--
		}
	case tcell.KeyRight:
		if p.pos < len(p.buf) {
			p.pos++
		}
	case tcell.KeyHome:
		p.pos = 0
	case tcell.KeyEnd:
		p.pos = len(p.buf)
	case tcell.KeyRune:
		if len(p.buf) < p.limit {
			p.buf = append(p.buf[:p.pos], append([]rune{ev.Rune()}, p.buf[p.pos:]...)...)
			p.pos++
			edited = true
		}
	}
	if edited && p.filter != nil {
		text, pos := p.filter(string(p.buf), p.pos)
		p.buf = []rune(text)
		p.pos = pos
	}
	return false, false
}

// Draw paints the prompt box centered on s and places the terminal cursor.
func (p *Prompt) Draw(s tcell.Screen) {
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorReset)

	w, h := s.Size()
	labelW := runewidth.StringWidth(p.Label)
	contentW := max(20, labelW+len(p.buf)+2)
	if contentW > w-4 {
		contentW = w - 4
	}
	boxW := contentW + 4
	boxH := 3
	left := (w - boxW) / 2
	top := (h - boxH) / 2

	for y := top; y < top+boxH; y++ {
		for x := left; x < left+boxW; x++ {
			s.SetContent(x, y, ' ', nil, style)
		}
	}
	for x := left; x < left+boxW; x++ {
		s.SetContent(x, top, tcell.RuneHLine, nil, style)
		s.SetContent(x, top+boxH-1, tcell.RuneHLine, nil, style)
	}
	for y := top; y < top+boxH; y++ {
		s.SetContent(left, y, tcell.RuneVLine, nil, style)
		s.SetContent(left+boxW-1, y, tcell.RuneVLine, nil, style)
	}
	s.SetContent(left, top, tcell.RuneULCorner, nil, style)
	s.SetContent(left+boxW-1, top, tcell.RuneURCorner, nil, style)
	s.SetContent(left, top+boxH-1, tcell.RuneLLCorner, nil, style)
	s.SetContent(left+boxW-1, top+boxH-1, tcell.RuneLRCorner, nil, style)

	x := left + 2
	y := top + 1
	printText(s, x, y, p.Label, style, labelW)
	x += labelW + 1

	maxField := max(boxW-5-labelW, 1)
	start := 0
	if p.pos > maxField {
		start = p.pos - maxField
	}
	end := min(len(p.buf), start+maxField)
	printText(s, x, y, string(p.buf[start:end]), style, maxField)

	cursorX := x + runewidth.StringWidth(string(p.buf[start:p.pos]))
	if cursorX < left+1 {
		cursorX = left + 1
	}
	s.ShowCursor(cursorX, y)
}
