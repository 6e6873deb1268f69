package numeric

import (
	"github.com/rotisserie/eris"
)

// DefaultMaxLength caps how many characters can be typed into a field.
const DefaultMaxLength = 10

// ErrInvalidText is returned when a programmatic write is outside the grammar.
var ErrInvalidText = eris.New("numeric: text is not a signed decimal")

// ChangeFunc is notified with the raw field text and caret after every edit.
type ChangeFunc func(text string, cursor int)

// Field is the editable text of one matrix cell together with the last text
// it accepted. Edits change the raw text first, like a toolkit entry would,
// and notify the change handler; Commit then writes the filtered text back
// without notifying.
type Field struct {
	text     []rune
	cursor   int
	accepted string
	maxLen   int

	quiet    int
	onChange ChangeFunc
}

// NewField returns an empty field. maxLen <= 0 means DefaultMaxLength.
func NewField(maxLen int) *Field {
	if maxLen <= 0 {
		maxLen = DefaultMaxLength
	}
	return &Field{maxLen: maxLen}
}

// OnChange sets the handler notified after each edit.
func (f *Field) OnChange(fn ChangeFunc) {
	f.onChange = fn
}

// Text returns the current field text.
func (f *Field) Text() string { return string(f.text) }

// Cursor returns the caret position in characters.
func (f *Field) Cursor() int { return f.cursor }

// Accepted returns the last text that satisfied the grammar.
func (f *Field) Accepted() string { return f.accepted }

// MaxLength returns the typing limit.
func (f *Field) MaxLength() int { return f.maxLen }

// Incomplete reports whether the accepted text is not a number yet.
func (f *Field) Incomplete() bool { return IsIncomplete(f.accepted) }

// Quiet runs fn with change notifications suppressed. Suppression is lifted
// when fn returns, fails or panics.
func (f *Field) Quiet(fn func() error) error {
	f.quiet++
	defer func() { f.quiet-- }()
	return fn()
}

// Suppressed reports whether notifications are currently held back.
func (f *Field) Suppressed() bool { return f.quiet > 0 }

func (f *Field) changed() {
	if f.quiet > 0 || f.onChange == nil {
		return
	}
	f.onChange(string(f.text), f.cursor)
}

// InsertRune types r at the caret. Nothing happens once the field is full.
func (f *Field) InsertRune(r rune) {
	f.InsertText(string(r))
}

// InsertText pastes s at the caret, truncated to the room left in the field.
func (f *Field) InsertText(s string) {
	in := []rune(s)
	if room := f.maxLen - len(f.text); len(in) > room {
		in = in[:max(room, 0)]
	}
	if len(in) == 0 {
		return
	}
	out := make([]rune, 0, len(f.text)+len(in))
	out = append(out, f.text[:f.cursor]...)
	out = append(out, in...)
	out = append(out, f.text[f.cursor:]...)
	f.text = out
	f.cursor += len(in)
	f.changed()
}

// Backspace removes the character left of the caret.
func (f *Field) Backspace() {
	if f.cursor == 0 {
		return
	}
	f.text = append(f.text[:f.cursor-1:f.cursor-1], f.text[f.cursor:]...)
	f.cursor--
	f.changed()
}

// Delete removes the character right of the caret.
func (f *Field) Delete() {
	if f.cursor >= len(f.text) {
		return
	}
	f.text = append(f.text[:f.cursor:f.cursor], f.text[f.cursor+1:]...)
	f.changed()
}

// Left moves the caret one character left.
func (f *Field) Left() {
	if f.cursor > 0 {
		f.cursor--
	}
}

// Right moves the caret one character right.
func (f *Field) Right() {
	if f.cursor < len(f.text) {
		f.cursor++
	}
}

// Home moves the caret to the start.
func (f *Field) Home() { f.cursor = 0 }

// End moves the caret past the last character.
func (f *Field) End() { f.cursor = len(f.text) }

// SetText replaces the text and the accepted text and places the caret at
// the end. It notifies like any other edit unless called inside Quiet.
func (f *Field) SetText(text string) error {
	if !Valid(text) {
		return eris.Wrapf(ErrInvalidText, "set %q", text)
	}
	f.accepted = text
	f.write(text, len([]rune(text)))
	return nil
}

func (f *Field) write(text string, cursor int) {
	f.text = []rune(text)
	f.cursor = clamp(cursor, 0, len(f.text))
	f.changed()
}

// Commit filters candidate against the accepted text, writes the result back
// without notifying and makes it the new accepted text.
func (f *Field) Commit(candidate string, cursor int) (string, int) {
	corrected, pos := Filter(candidate, cursor, f.accepted)
	_ = f.Quiet(func() error {
		f.write(corrected, pos)
		return nil
	})
	f.accepted = corrected
	return corrected, pos
}
