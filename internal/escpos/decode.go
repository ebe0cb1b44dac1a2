package escpos

import (
	"fmt"
)

// Decode parses canonical command bytes back into named operations. It exists
// so the byte table stays verifiable: Decode(Marshal(seq)) must reproduce seq.
// Unknown control sequences are an error, not skipped.
func Decode(data []byte) ([]Command, error) {
	var cmds []Command
	var text []byte

	flushText := func() {
		if len(text) > 0 {
			cmds = append(cmds, Text(text))
			text = nil
		}
	}

	i := 0
	for i < len(data) {
		b := data[i]
		if b != ESC && b != GS {
			text = append(text, b)
			i++
			continue
		}
		flushText()

		var (
			cmd Command
			n   int
			err error
		)
		switch b {
		case ESC:
			cmd, n, err = decodeESC(data[i:])
		case GS:
			cmd, n, err = decodeGS(data[i:])
		}
		if err != nil {
			return nil, fmt.Errorf("offset %d: %w", i, err)
		}
		cmds = append(cmds, cmd)
		i += n
	}
	flushText()
	return cmds, nil
}

func decodeESC(d []byte) (Command, int, error) {
	if len(d) < 2 {
		return Command{}, 0, fmt.Errorf("truncated ESC sequence")
	}
	switch d[1] {
	case '@':
		return Init(), 2, nil
	case 'E':
		if len(d) < 3 {
			return Command{}, 0, fmt.Errorf("truncated ESC E")
		}
		return Bold(d[2] == 1), 3, nil
	case 'a':
		if len(d) < 3 {
			return Command{}, 0, fmt.Errorf("truncated ESC a")
		}
		return Align(Alignment(d[2])), 3, nil
	case 'd':
		if len(d) < 3 {
			return Command{}, 0, fmt.Errorf("truncated ESC d")
		}
		return FeedLines(int(d[2])), 3, nil
	case 'p':
		if len(d) < 5 {
			return Command{}, 0, fmt.Errorf("truncated ESC p")
		}
		return DrawerPulse(int(d[2]), int(d[3])*2, int(d[4])*2), 5, nil
	case 't':
		if len(d) < 3 {
			return Command{}, 0, fmt.Errorf("truncated ESC t")
		}
		return CodePage(CodePageID(d[2])), 3, nil
	}
	return Command{}, 0, fmt.Errorf("unknown ESC sequence 0x%02X", d[1])
}

func decodeGS(d []byte) (Command, int, error) {
	if len(d) < 2 {
		return Command{}, 0, fmt.Errorf("truncated GS sequence")
	}
	switch d[1] {
	case 'V':
		if len(d) < 3 {
			return Command{}, 0, fmt.Errorf("truncated GS V")
		}
		return Cut(CutMode(d[2])), 3, nil
	case '!':
		if len(d) < 3 {
			return Command{}, 0, fmt.Errorf("truncated GS !")
		}
		w := int(d[2]>>4) + 1
		h := int(d[2]&0x0F) + 1
		return TextSize(w, h), 3, nil
	case 'h':
		if len(d) < 3 {
			return Command{}, 0, fmt.Errorf("truncated GS h")
		}
		return BarHeight(int(d[2])), 3, nil
	case 'w':
		if len(d) < 3 {
			return Command{}, 0, fmt.Errorf("truncated GS w")
		}
		return BarWidth(int(d[2])), 3, nil
	case 'H':
		if len(d) < 3 {
			return Command{}, 0, fmt.Errorf("truncated GS H")
		}
		return HRIPosition(int(d[2])), 3, nil
	case 'k':
		return decodeBarcode(d)
	case '(':
		return decodeQR(d)
	case 'v':
		return decodeRaster(d)
	}
	return Command{}, 0, fmt.Errorf("unknown GS sequence 0x%02X", d[1])
}

func decodeBarcode(d []byte) (Command, int, error) {
	if len(d) < 4 {
		return Command{}, 0, fmt.Errorf("truncated GS k")
	}
	sym := Symbology(d[2])
	length := int(d[3])
	if len(d) < 4+length {
		return Command{}, 0, fmt.Errorf("truncated GS k data (want %d bytes)", length)
	}
	value := d[4 : 4+length]
	if sym == SymCODE128 {
		if length < 2 || value[0] != '{' || value[1] != 'B' {
			return Command{}, 0, fmt.Errorf("code128 without code set prefix")
		}
		value = value[2:]
	}
	return Barcode(sym, string(value)), 4 + length, nil
}

// decodeQR consumes the canonical five-block sequence produced by marshalQR.
// The blocks must appear contiguously and in order.
func decodeQR(d []byte) (Command, int, error) {
	type block struct {
		fn   byte
		data []byte
		size int
	}
	readBlock := func(d []byte) (block, int, error) {
		if len(d) < 8 || d[0] != GS || d[1] != '(' || d[2] != 'k' {
			return block{}, 0, fmt.Errorf("malformed GS ( k block")
		}
		n := int(d[3]) | int(d[4])<<8
		if d[5] != 49 {
			return block{}, 0, fmt.Errorf("GS ( k: unsupported function group 0x%02X", d[5])
		}
		total := 5 + n
		if len(d) < total {
			return block{}, 0, fmt.Errorf("truncated GS ( k block")
		}
		return block{fn: d[6], data: d[7:total], size: total}, total, nil
	}

	off := 0
	var size int
	var value []byte
	expect := []byte{65, 67, 69, 80, 81}
	for _, fn := range expect {
		b, n, err := readBlock(d[off:])
		if err != nil {
			return Command{}, 0, err
		}
		if b.fn != fn {
			return Command{}, 0, fmt.Errorf("GS ( k: function 0x%02X out of order (want 0x%02X)", b.fn, fn)
		}
		switch fn {
		case 67:
			size = int(b.data[0])
		case 80:
			// first data byte is the '0' store marker
			value = b.data[1:]
		}
		off += n
	}
	return QR(string(value), size), off, nil
}

func decodeRaster(d []byte) (Command, int, error) {
	if len(d) < 8 || d[2] != '0' {
		return Command{}, 0, fmt.Errorf("truncated GS v 0 header")
	}
	widthBytes := int(d[4]) | int(d[5])<<8
	height := int(d[6]) | int(d[7])<<8
	total := 8 + widthBytes*height
	if len(d) < total {
		return Command{}, 0, fmt.Errorf("truncated GS v 0 data (want %d bytes)", widthBytes*height)
	}
	var rows []byte
	if total > 8 {
		rows = make([]byte, widthBytes*height)
		copy(rows, d[8:total])
	}
	return Raster(widthBytes, height, rows), total, nil
}
