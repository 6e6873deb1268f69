// Package numeric keeps a text field restricted to an in-progress signed
// decimal: an optional leading minus, ASCII digits and at most one decimal
// point. Positions are counted in characters, not bytes.
package numeric

import "strings"

// incomplete lists the accepted texts that do not parse as a number yet.
var incomplete = map[string]bool{
	"":   true,
	"-":  true,
	".":  true,
	"-.": true,
}

// IsIncomplete reports whether text is an accepted in-progress token that
// is not a number yet.
func IsIncomplete(text string) bool {
	return incomplete[text]
}

// Valid reports whether text belongs to the grammar.
func Valid(text string) bool {
	dot := false
	for i, r := range text {
		switch {
		case isDigit(r):
		case r == '.' && !dot:
			dot = true
		case r == '-' && i == 0:
		default:
			return false
		}
	}
	return true
}

// Filter corrects candidate, the field text right after an edit, against
// previous, the last text the field accepted. cursor is the caret position in
// candidate after the edit. Only the span changed by the edit is validated;
// rejected characters are dropped and the caret moves left by the number of
// dropped characters in front of it.
//
// When candidate needs no correction it is returned unchanged together with
// the clamped cursor.
func Filter(candidate string, cursor int, previous string) (string, int) {
	cand := []rune(candidate)
	cursor = clamp(cursor, 0, len(cand))
	if candidate == previous && Valid(candidate) {
		return candidate, cursor
	}

	prev := []rune(previous)
	before, span, after, ok := split(cand, cursor, prev)
	if !ok || !Valid(previous) {
		return Sanitize(candidate, cursor)
	}

	// Anything typed in front of a retained leading minus would push it off
	// position 0.
	blocked := len(before) == 0 && len(after) > 0 && after[0] == '-'
	hasDot := containsRune(before, '.') || containsRune(after, '.')
	hasMinus := containsRune(before, '-') || containsRune(after, '-')

	kept := make([]rune, 0, len(span))
	start := len(before)
	dropped := 0
	for i, r := range span {
		pos := len(before) + len(kept)
		accept := false
		if !blocked {
			switch {
			case isDigit(r):
				accept = true
			case r == '.' && !hasDot:
				accept, hasDot = true, true
			case r == '-' && !hasMinus && pos == 0:
				accept, hasMinus = true, true
			}
		}
		if accept {
			kept = append(kept, r)
			continue
		}
		if start+i < cursor {
			dropped++
		}
	}
	if dropped == 0 && len(kept) == len(span) {
		return candidate, cursor
	}

	out := make([]rune, 0, len(before)+len(kept)+len(after))
	out = append(out, before...)
	out = append(out, kept...)
	out = append(out, after...)
	return string(out), clamp(cursor-dropped, 0, len(out))
}

// split recovers the three-way split of an edit: candidate is
// before+span+after and previous is before+removed+after. The edited region
// ends at the cursor, so the common suffix is taken first and may not start
// before it; the common prefix then may not overlap the suffix. ok is false
// when the text right of the cursor does not match the tail of previous,
// which means the cursor does not describe the edit.
func split(cand []rune, cursor int, prev []rune) (before, span, after []rune, ok bool) {
	s := 0
	for s < len(cand)-cursor && s < len(prev) && cand[len(cand)-1-s] == prev[len(prev)-1-s] {
		s++
	}
	if len(cand)-s != cursor {
		return nil, nil, nil, false
	}

	p := 0
	for p < len(cand)-s && p < len(prev)-s && cand[p] == prev[p] {
		p++
	}
	return cand[:p], cand[p : len(cand)-s], cand[len(cand)-s:], true
}

// Sanitize rescans the whole text and keeps the first decimal point, a minus
// only in first position and every digit. cursor is shifted left by the
// number of characters dropped in front of it.
func Sanitize(text string, cursor int) (string, int) {
	runes := []rune(text)
	cursor = clamp(cursor, 0, len(runes))

	var b strings.Builder
	n, dropped := 0, 0
	dot := false
	for i, r := range runes {
		keep := false
		switch {
		case isDigit(r):
			keep = true
		case r == '.' && !dot:
			keep, dot = true, true
		case r == '-' && n == 0:
			keep = true
		}
		if keep {
			b.WriteRune(r)
			n++
			continue
		}
		if i < cursor {
			dropped++
		}
	}
	return b.String(), clamp(cursor-dropped, 0, n)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func containsRune(rs []rune, r rune) bool {
	for _, x := range rs {
		if x == r {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
