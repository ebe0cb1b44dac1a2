package escpos

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// Wrap breaks s into lines of at most width display columns, preferring word
// boundaries. Words wider than a full line are hard-cut. Embedded line feeds
// start new lines.
func Wrap(s string, width int) []string {
	if width < 1 {
		return []string{s}
	}
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		lines = append(lines, wrapLine(para, width)...)
	}
	return lines
}

func wrapLine(s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}
	var lines []string
	cur := ""
	for _, w := range words {
		for runewidth.StringWidth(w) > width {
			if cur != "" {
				lines = append(lines, cur)
				cur = ""
			}
			head := cutAt(w, width)
			if head == "" {
				_, size := utf8.DecodeRuneInString(w)
				head = w[:size]
			}
			lines = append(lines, head)
			w = w[len(head):]
		}
		if w == "" {
			continue
		}
		switch {
		case cur == "":
			cur = w
		case runewidth.StringWidth(cur)+1+runewidth.StringWidth(w) <= width:
			cur += " " + w
		default:
			lines = append(lines, cur)
			cur = w
		}
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}

// cutAt returns the longest prefix of s that fits in width display columns
func cutAt(s string, width int) string {
	w := 0
	for i, r := range s {
		rw := runewidth.RuneWidth(r)
		if w+rw > width {
			return s[:i]
		}
		w += rw
	}
	return s
}

// Truncate hard-cuts s to width columns. No ellipsis: receipt tape is
// authoritative, not decorative.
func Truncate(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return cutAt(s, width)
}

// PadRight pads s with spaces to width columns
func PadRight(s string, width int) string {
	gap := width - runewidth.StringWidth(s)
	if gap <= 0 {
		return s
	}
	return s + strings.Repeat(" ", gap)
}

// PadLeft right-aligns s in width columns
func PadLeft(s string, width int) string {
	gap := width - runewidth.StringWidth(s)
	if gap <= 0 {
		return s
	}
	return strings.Repeat(" ", gap) + s
}

// Center centers s in width columns
func Center(s string, width int) string {
	gap := width - runewidth.StringWidth(s)
	if gap <= 0 {
		return s
	}
	return strings.Repeat(" ", gap/2) + s
}

// TwoColumn lays left text and a right-aligned value on one line. The left
// side is hard-cut when the value needs the room.
func TwoColumn(left, right string, width int) string {
	rw := runewidth.StringWidth(right)
	if rw >= width {
		return Truncate(right, width)
	}
	avail := width - rw - 1
	left = Truncate(left, avail)
	gap := width - runewidth.StringWidth(left) - rw
	return left + strings.Repeat(" ", gap) + right
}

// Divider returns a full-width rule of the given character
func Divider(ch rune, width int) string {
	return strings.Repeat(string(ch), width)
}
