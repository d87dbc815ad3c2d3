package editor

import (
	"errors"
	"strings"
	"unicode/utf8"

	"bulletinboard/internal/model"
)

var (
	ErrPrefixModified = errors.New("protected prefix was modified")
	ErrTooLong        = errors.New("comment text too long")
)

// KeyEvent is a keydown reported by the browser. Key uses DOM key names
// ("Backspace", "Home", "a", ...).
type KeyEvent struct {
	Key   string `json:"key"`
	Shift bool   `json:"shift"`
	Ctrl  bool   `json:"ctrl"`
	Meta  bool   `json:"meta"`
}

func (e KeyEvent) printable() bool {
	return utf8.RuneCountInString(e.Key) == 1 && !e.Ctrl && !e.Meta
}

// Field is a text field whose leading prefix cannot be edited. Positions are
// rune offsets; the editable region is [PrefixLen, Len].
type Field struct {
	text   string
	prefix int
	start  int
	end    int
}

// NewField returns a field holding prefix+body with the caret right after the
// prefix.
func NewField(prefix, body string) Field {
	n := utf8.RuneCountInString(prefix)
	return Field{text: prefix + body, prefix: n, start: n, end: n}
}

// Text is the full field contents including the prefix.
func (f Field) Text() string { return f.text }

// Prefix is the protected leading text.
func (f Field) Prefix() string {
	return string([]rune(f.text)[:f.prefix])
}

// PrefixLen is the length of the protected prefix in runes.
func (f Field) PrefixLen() int { return f.prefix }

// Len is the length of the text in runes.
func (f Field) Len() int { return utf8.RuneCountInString(f.text) }

// Body is the text with the protected prefix removed.
func (f Field) Body() string {
	return string([]rune(f.text)[f.prefix:])
}

// Selection returns the current selection. start == end is a caret.
func (f Field) Selection() (start, end int) { return f.start, f.end }

// Select sets the selection as reported by the browser without clamping to
// the editable region. Keystrokes that would edit inside the prefix are
// intercepted by HandleKey.
func (f *Field) Select(start, end int) {
	n := f.Len()
	start = min(max(start, 0), n)
	end = min(max(end, 0), n)
	if start > end {
		start, end = end, start
	}
	f.start, f.end = start, end
}

// Click applies a pointer selection, moving any end that lands inside the
// prefix to the boundary.
func (f *Field) Click(start, end int) {
	f.Select(start, end)
	f.start = max(f.start, f.prefix)
	f.end = max(f.end, f.prefix)
}

// SetText replaces the contents, as after a paste or IME composition. The
// new text must still begin with the prefix.
func (f *Field) SetText(s string) error {
	if !strings.HasPrefix(s, f.Prefix()) {
		return ErrPrefixModified
	}
	n := utf8.RuneCountInString(s)
	if n > model.MaxCommentLength {
		return ErrTooLong
	}
	f.text = s
	f.start, f.end = n, n
	return nil
}

// HandleKey applies a keystroke. It reports whether the keystroke was
// intercepted to protect the prefix; an intercepted keystroke only adjusts
// the selection.
func (f *Field) HandleKey(ev KeyEvent) bool {
	p := f.prefix

	if ev.Key == "Backspace" {
		if f.start <= p && f.start == f.end {
			return true
		}
		if f.start < p {
			f.start = p
			return true
		}
	}
	if ev.Key == "Delete" && f.start < p {
		f.start = p
		f.end = max(f.end, p)
		return true
	}
	if f.start < p && ev.printable() {
		f.start = p
		f.end = max(f.end, p)
		return true
	}
	if ev.Key == "Home" {
		f.start = p
		if !ev.Shift {
			f.end = p
		}
		return true
	}
	if (ev.Ctrl || ev.Meta) && (ev.Key == "a" || ev.Key == "A") {
		f.start = p
		f.end = f.Len()
		return true
	}

	f.apply(ev)
	return false
}

// apply performs the default action of an uninterrupted keystroke.
func (f *Field) apply(ev KeyEvent) {
	n := f.Len()
	switch {
	case ev.Key == "Backspace":
		if f.start < f.end {
			f.replace("")
		} else if f.start > f.prefix {
			f.start--
			f.replace("")
		}
	case ev.Key == "Delete":
		if f.start < f.end {
			f.replace("")
		} else if f.start < n {
			f.end++
			f.replace("")
		}
	case ev.Key == "Enter":
		f.insert("\n")
	case ev.Key == "ArrowLeft":
		if ev.Shift {
			f.start--
		} else if f.start == f.end {
			f.start--
			f.end = f.start
		} else {
			f.end = f.start
		}
	case ev.Key == "ArrowRight":
		if ev.Shift {
			f.end++
		} else if f.start == f.end {
			f.end++
			f.start = f.end
		} else {
			f.start = f.end
		}
	case ev.Key == "End":
		f.end = n
		if !ev.Shift {
			f.start = n
		}
	case ev.printable():
		f.insert(ev.Key)
	}
	f.clamp()
}

func (f *Field) insert(s string) {
	if f.Len()-(f.end-f.start)+utf8.RuneCountInString(s) > model.MaxCommentLength {
		return
	}
	f.replace(s)
}

// replace swaps the selection for s and collapses the caret after it.
func (f *Field) replace(s string) {
	r := []rune(f.text)
	out := make([]rune, 0, len(r)+len(s))
	out = append(out, r[:f.start]...)
	out = append(out, []rune(s)...)
	out = append(out, r[f.end:]...)
	f.text = string(out)
	f.start += utf8.RuneCountInString(s)
	f.end = f.start
}

func (f *Field) clamp() {
	n := f.Len()
	f.start = min(max(f.start, f.prefix), n)
	f.end = min(max(f.end, f.start), n)
}
