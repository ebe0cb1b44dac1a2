// Package escpos encodes print jobs into ESC/POS command sequences.
//
// Commands are named operations, not raw byte soup: every operation maps to
// exactly one canonical byte sequence, and Decode reverses Marshal so tests
// can verify sequences against the reference table.
package escpos

import (
	"bytes"
	"fmt"
)

// Control bytes
const (
	ESC byte = 0x1B
	GS  byte = 0x1D
	FS  byte = 0x1C
	LF  byte = 0x0A
)

// Op identifies a named ESC/POS operation
type Op int

const (
	OpInit Op = iota
	OpText
	OpBold
	OpAlign
	OpFeedLines
	OpCut
	OpDrawerPulse
	OpBarcode
	OpQR
	OpCodePage
	OpTextSize
	OpBarHeight
	OpBarWidth
	OpHRIPosition
	OpRaster
)

func (op Op) String() string {
	switch op {
	case OpInit:
		return "Init"
	case OpText:
		return "Text"
	case OpBold:
		return "Bold"
	case OpAlign:
		return "Align"
	case OpFeedLines:
		return "FeedLines"
	case OpCut:
		return "Cut"
	case OpDrawerPulse:
		return "DrawerPulse"
	case OpBarcode:
		return "Barcode"
	case OpQR:
		return "QR"
	case OpCodePage:
		return "CodePage"
	case OpTextSize:
		return "TextSize"
	case OpBarHeight:
		return "BarHeight"
	case OpBarWidth:
		return "BarWidth"
	case OpHRIPosition:
		return "HRIPosition"
	case OpRaster:
		return "Raster"
	}
	return fmt.Sprintf("Op(%d)", int(op))
}

// Alignment values for OpAlign
type Alignment int

const (
	AlignLeft   Alignment = 0
	AlignCenter Alignment = 1
	AlignRight  Alignment = 2
)

// CutMode values for OpCut
type CutMode int

const (
	CutFull    CutMode = 0
	CutPartial CutMode = 1
)

// Symbology is the GS k function-B barcode type byte
type Symbology byte

const (
	SymUPCA    Symbology = 65
	SymUPCE    Symbology = 66
	SymEAN13   Symbology = 67
	SymEAN8    Symbology = 68
	SymCODE39  Symbology = 69
	SymITF     Symbology = 70
	SymCODABAR Symbology = 71
	SymCODE93  Symbology = 72
	SymCODE128 Symbology = 73
)

var symbologyNames = map[string]Symbology{
	"upca":    SymUPCA,
	"upce":    SymUPCE,
	"ean13":   SymEAN13,
	"ean8":    SymEAN8,
	"code39":  SymCODE39,
	"itf":     SymITF,
	"codabar": SymCODABAR,
	"code93":  SymCODE93,
	"code128": SymCODE128,
}

// SymbologyFromName maps a job symbology name to its command byte
func SymbologyFromName(name string) (Symbology, bool) {
	s, ok := symbologyNames[name]
	return s, ok
}

func (s Symbology) String() string {
	for name, v := range symbologyNames {
		if v == s {
			return name
		}
	}
	return fmt.Sprintf("symbology(%d)", byte(s))
}

// Command is one named operation plus its arguments. Text data is already
// transcoded to the selected code page when the command is built.
type Command struct {
	Op   Op
	N1   int
	N2   int
	N3   int
	Data []byte
}

// Init resets the printer (ESC @)
func Init() Command { return Command{Op: OpInit} }

// Text emits pre-transcoded bytes verbatim, line feeds included
func Text(data []byte) Command { return Command{Op: OpText, Data: data} }

// Bold switches emphasis on or off (ESC E)
func Bold(on bool) Command {
	n := 0
	if on {
		n = 1
	}
	return Command{Op: OpBold, N1: n}
}

// Align sets horizontal alignment (ESC a)
func Align(a Alignment) Command { return Command{Op: OpAlign, N1: int(a)} }

// FeedLines feeds n lines (ESC d)
func FeedLines(n int) Command {
	if n < 0 {
		n = 0
	}
	if n > 255 {
		n = 255
	}
	return Command{Op: OpFeedLines, N1: n}
}

// Cut cuts the paper (GS V)
func Cut(mode CutMode) Command { return Command{Op: OpCut, N1: int(mode)} }

// DrawerPulse fires the cash drawer solenoid (ESC p). Pulse times are in
// milliseconds and are rounded down to the protocol's 2ms units.
func DrawerPulse(pin, onMs, offMs int) Command {
	if pin != 0 && pin != 1 {
		pin = 0
	}
	clamp := func(ms int) int {
		if ms < 0 {
			ms = 0
		}
		if ms > 510 {
			ms = 510
		}
		return (ms / 2) * 2
	}
	return Command{Op: OpDrawerPulse, N1: pin, N2: clamp(onMs), N3: clamp(offMs)}
}

// Barcode prints a 1D barcode (GS k function B). The value must already be
// checked against the symbology alphabet.
func Barcode(sym Symbology, value string) Command {
	return Command{Op: OpBarcode, N1: int(sym), Data: []byte(value)}
}

// QR prints a QR code as the canonical five-block GS ( k sequence: model 2,
// module size, error correction M, store, print.
func QR(value string, size int) Command {
	if size < 1 {
		size = 1
	}
	if size > 16 {
		size = 16
	}
	return Command{Op: OpQR, N1: size, Data: []byte(value)}
}

// CodePage selects the character table (ESC t)
func CodePage(cp CodePageID) Command { return Command{Op: OpCodePage, N1: int(cp)} }

// TextSize sets width/height multipliers 1-8 (GS !)
func TextSize(w, h int) Command {
	bound := func(v int) int {
		if v < 1 {
			return 1
		}
		if v > 8 {
			return 8
		}
		return v
	}
	return Command{Op: OpTextSize, N1: bound(w), N2: bound(h)}
}

// BarHeight sets barcode height in dots (GS h)
func BarHeight(dots int) Command {
	if dots < 1 {
		dots = 1
	}
	if dots > 255 {
		dots = 255
	}
	return Command{Op: OpBarHeight, N1: dots}
}

// BarWidth sets barcode module width 2-6 (GS w)
func BarWidth(w int) Command {
	if w < 2 {
		w = 2
	}
	if w > 6 {
		w = 6
	}
	return Command{Op: OpBarWidth, N1: w}
}

// HRIPosition sets where the human readable text prints (GS H):
// 0 none, 1 above, 2 below.
func HRIPosition(pos int) Command {
	if pos < 0 || pos > 3 {
		pos = 0
	}
	return Command{Op: OpHRIPosition, N1: pos}
}

// Raster prints a 1-bit image (GS v 0). rows holds widthBytes*height bytes,
// MSB first within each byte.
func Raster(widthBytes, height int, rows []byte) Command {
	return Command{Op: OpRaster, N1: widthBytes, N2: height, Data: rows}
}

// Marshal renders a command sequence into its canonical bytes
func Marshal(cmds []Command) []byte {
	var buf bytes.Buffer
	for _, c := range cmds {
		marshalOne(&buf, c)
	}
	return buf.Bytes()
}

func marshalOne(buf *bytes.Buffer, c Command) {
	switch c.Op {
	case OpInit:
		buf.Write([]byte{ESC, '@'})
	case OpText:
		buf.Write(c.Data)
	case OpBold:
		buf.Write([]byte{ESC, 'E', byte(c.N1)})
	case OpAlign:
		buf.Write([]byte{ESC, 'a', byte(c.N1)})
	case OpFeedLines:
		buf.Write([]byte{ESC, 'd', byte(c.N1)})
	case OpCut:
		buf.Write([]byte{GS, 'V', byte(c.N1)})
	case OpDrawerPulse:
		buf.Write([]byte{ESC, 'p', byte(c.N1), byte(c.N2 / 2), byte(c.N3 / 2)})
	case OpBarcode:
		data := c.Data
		if Symbology(c.N1) == SymCODE128 {
			// code set B prefix required by function B
			data = append([]byte{'{', 'B'}, data...)
		}
		buf.Write([]byte{GS, 'k', byte(c.N1), byte(len(data))})
		buf.Write(data)
	case OpQR:
		marshalQR(buf, c)
	case OpCodePage:
		buf.Write([]byte{ESC, 't', byte(c.N1)})
	case OpTextSize:
		size := byte(((c.N1 - 1) << 4) | (c.N2 - 1))
		buf.Write([]byte{GS, '!', size})
	case OpBarHeight:
		buf.Write([]byte{GS, 'h', byte(c.N1)})
	case OpBarWidth:
		buf.Write([]byte{GS, 'w', byte(c.N1)})
	case OpHRIPosition:
		buf.Write([]byte{GS, 'H', byte(c.N1)})
	case OpRaster:
		buf.Write([]byte{GS, 'v', '0', 0})
		buf.Write([]byte{byte(c.N1 & 0xFF), byte(c.N1 >> 8)})
		buf.Write([]byte{byte(c.N2 & 0xFF), byte(c.N2 >> 8)})
		buf.Write(c.Data)
	}
}

func marshalQR(buf *bytes.Buffer, c Command) {
	// model 2
	buf.Write([]byte{GS, '(', 'k', 4, 0, 49, 65, 50, 0})
	// module size
	buf.Write([]byte{GS, '(', 'k', 3, 0, 49, 67, byte(c.N1)})
	// error correction level M
	buf.Write([]byte{GS, '(', 'k', 3, 0, 49, 69, 49})
	// store data
	n := len(c.Data) + 3
	buf.Write([]byte{GS, '(', 'k', byte(n & 0xFF), byte(n >> 8), 49, 80, 48})
	buf.Write(c.Data)
	// print
	buf.Write([]byte{GS, '(', 'k', 3, 0, 49, 81, 48})
}

// String renders a command for logs and test failure messages
func (c Command) String() string {
	switch c.Op {
	case OpText:
		return fmt.Sprintf("Text(%q)", string(c.Data))
	case OpBold:
		if c.N1 == 1 {
			return "Bold(on)"
		}
		return "Bold(off)"
	case OpAlign:
		names := []string{"left", "center", "right"}
		if c.N1 >= 0 && c.N1 < len(names) {
			return fmt.Sprintf("Align(%s)", names[c.N1])
		}
	case OpFeedLines:
		return fmt.Sprintf("FeedLines(%d)", c.N1)
	case OpCut:
		if c.N1 == int(CutPartial) {
			return "Cut(partial)"
		}
		return "Cut(full)"
	case OpDrawerPulse:
		return fmt.Sprintf("DrawerPulse(pin=%d on=%dms off=%dms)", c.N1, c.N2, c.N3)
	case OpBarcode:
		return fmt.Sprintf("Barcode(%s, %q)", Symbology(c.N1), string(c.Data))
	case OpQR:
		return fmt.Sprintf("QR(%q, size=%d)", string(c.Data), c.N1)
	case OpCodePage:
		return fmt.Sprintf("CodePage(%d)", c.N1)
	case OpTextSize:
		return fmt.Sprintf("TextSize(%dx%d)", c.N1, c.N2)
	case OpBarHeight:
		return fmt.Sprintf("BarHeight(%d)", c.N1)
	case OpBarWidth:
		return fmt.Sprintf("BarWidth(%d)", c.N1)
	case OpHRIPosition:
		return fmt.Sprintf("HRIPosition(%d)", c.N1)
	case OpRaster:
		return fmt.Sprintf("Raster(%dx%d bytes)", c.N1, c.N2)
	}
	return c.Op.String()
}
