package escpos

import (
	"golang.org/x/text/encoding/charmap"
)

// CodePageID is the ESC t character table number
type CodePageID byte

const (
	CodePageCP437 CodePageID = 0  // US / box drawing
	CodePageCP850 CodePageID = 2  // Latin-1 multilingual
	CodePageCP858 CodePageID = 19 // CP850 with euro sign
)

var codePageNames = map[string]CodePageID{
	"cp437": CodePageCP437,
	"cp850": CodePageCP850,
	"cp858": CodePageCP858,
}

// CodePageFromName maps a configuration name to its table number. Unknown
// names fall back to CP858, which covers accented Latin plus the euro sign.
func CodePageFromName(name string) CodePageID {
	if cp, ok := codePageNames[name]; ok {
		return cp
	}
	return CodePageCP858
}

func charmapFor(cp CodePageID) *charmap.Charmap {
	switch cp {
	case CodePageCP437:
		return charmap.CodePage437
	case CodePageCP850:
		return charmap.CodePage850
	case CodePageCP858:
		return charmap.CodePage858
	}
	return charmap.CodePage858
}

// Transcode converts visible text to code page bytes. Unmappable runes become
// '?' and control runes become spaces; visible text never fails a job, per
// the substitution policy. Line feeds pass through.
func Transcode(s string, cp CodePageID) []byte {
	m := charmapFor(cp)
	out := make([]byte, 0, len(s))
	for _, r := range s {
		switch {
		case r == '\n':
			out = append(out, LF)
		case r < 0x20 || r == 0x7F:
			out = append(out, ' ')
		default:
			b, ok := m.EncodeRune(r)
			if !ok || b < 0x20 {
				out = append(out, '?')
			} else {
				out = append(out, b)
			}
		}
	}
	return out
}

// DecodeText converts code page bytes back to a string, for tests and the
// diagnostic report.
func DecodeText(data []byte, cp CodePageID) string {
	m := charmapFor(cp)
	runes := make([]rune, 0, len(data))
	for _, b := range data {
		if b == LF {
			runes = append(runes, '\n')
			continue
		}
		runes = append(runes, m.DecodeByte(b))
	}
	return string(runes)
}
