package escpos

import (
	"bytes"
	"reflect"
	"testing"
)

// Reference byte table: every named operation against its canonical sequence.
func TestMarshal_ReferenceTable(t *testing.T) {
	cases := []struct {
		name string
		cmd  Command
		want []byte
	}{
		{"init", Init(), []byte{0x1B, '@'}},
		{"bold_on", Bold(true), []byte{0x1B, 'E', 1}},
		{"bold_off", Bold(false), []byte{0x1B, 'E', 0}},
		{"align_left", Align(AlignLeft), []byte{0x1B, 'a', 0}},
		{"align_center", Align(AlignCenter), []byte{0x1B, 'a', 1}},
		{"align_right", Align(AlignRight), []byte{0x1B, 'a', 2}},
		{"feed_3", FeedLines(3), []byte{0x1B, 'd', 3}},
		{"cut_full", Cut(CutFull), []byte{0x1D, 'V', 0}},
		{"cut_partial", Cut(CutPartial), []byte{0x1D, 'V', 1}},
		{"drawer_pulse", DrawerPulse(0, 120, 240), []byte{0x1B, 'p', 0, 60, 120}},
		{"codepage_cp858", CodePage(CodePageCP858), []byte{0x1B, 't', 19}},
		{"text_size_2x2", TextSize(2, 2), []byte{0x1D, '!', 0x11}},
		{"text_size_1x2", TextSize(1, 2), []byte{0x1D, '!', 0x01}},
		{"bar_height", BarHeight(80), []byte{0x1D, 'h', 80}},
		{"bar_width", BarWidth(2), []byte{0x1D, 'w', 2}},
		{"hri_below", HRIPosition(2), []byte{0x1D, 'H', 2}},
		{"ean13", Barcode(SymEAN13, "7461234567890"),
			append([]byte{0x1D, 'k', 67, 13}, []byte("7461234567890")...)},
		{"code128", Barcode(SymCODE128, "A-1"),
			append([]byte{0x1D, 'k', 73, 5}, []byte("{BA-1")...)},
		{"raster_2x2", Raster(1, 2, []byte{0x80, 0x01}),
			[]byte{0x1D, 'v', '0', 0, 1, 0, 2, 0, 0x80, 0x01}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Marshal([]Command{tc.cmd})
			if !bytes.Equal(got, tc.want) {
				t.Errorf("%s bytes mismatch:\n got:  % X\n want: % X", tc.cmd, got, tc.want)
			}
		})
	}
}

func TestMarshal_QRBlocks(t *testing.T) {
	got := Marshal([]Command{QR("X", 6)})

	want := []byte{
		0x1D, '(', 'k', 4, 0, 49, 65, 50, 0, // model 2
		0x1D, '(', 'k', 3, 0, 49, 67, 6, // module size
		0x1D, '(', 'k', 3, 0, 49, 69, 49, // EC level M
		0x1D, '(', 'k', 4, 0, 49, 80, 48, 'X', // store
		0x1D, '(', 'k', 3, 0, 49, 81, 48, // print
	}
	if !bytes.Equal(got, want) {
		t.Errorf("QR bytes mismatch:\n got:  % X\n want: % X", got, want)
	}
}

// Decode(Marshal(seq)) must reproduce the named operations exactly.
func TestRoundTrip_AllOps(t *testing.T) {
	seq := []Command{
		Init(),
		CodePage(CodePageCP858),
		Align(AlignCenter),
		Bold(true),
		TextSize(2, 2),
		Text(append(Transcode("COLMADO DONA ANA", CodePageCP858), LF)),
		TextSize(1, 1),
		Bold(false),
		Align(AlignLeft),
		Text(append(Transcode("Café molido 454g", CodePageCP858), LF)),
		BarHeight(80),
		BarWidth(2),
		HRIPosition(2),
		Barcode(SymCODE128, "TICKET-00124"),
		QR("https://wilpos.do/t/124", 6),
		Raster(2, 2, []byte{0xFF, 0x00, 0x0F, 0xF0}),
		FeedLines(3),
		DrawerPulse(1, 100, 200),
		Cut(CutFull),
	}

	decoded, err := Decode(Marshal(seq))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(decoded) != len(seq) {
		t.Fatalf("Expected %d commands, got %d", len(seq), len(decoded))
	}
	for i := range seq {
		if !reflect.DeepEqual(seq[i], decoded[i]) {
			t.Errorf("command %d mismatch:\n got:  %s %+v\n want: %s %+v",
				i, decoded[i], decoded[i], seq[i], seq[i])
		}
	}
}

func TestRoundTrip_DrawerPulseUnits(t *testing.T) {
	// 2ms protocol units: odd values round down at construction so the
	// command always round-trips exactly
	cmd := DrawerPulse(0, 121, 239)
	if cmd.N2 != 120 || cmd.N3 != 238 {
		t.Fatalf("Expected normalized pulse 120/238, got %d/%d", cmd.N2, cmd.N3)
	}

	decoded, err := Decode(Marshal([]Command{cmd}))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !reflect.DeepEqual(decoded[0], cmd) {
		t.Errorf("Round trip mismatch: got %+v want %+v", decoded[0], cmd)
	}
}

func TestDecode_RejectsUnknownSequence(t *testing.T) {
	if _, err := Decode([]byte{0x1B, 0x99}); err == nil {
		t.Error("Expected error for unknown ESC sequence")
	}
	if _, err := Decode([]byte{0x1D, 'k', 73}); err == nil {
		t.Error("Expected error for truncated barcode")
	}
}

func TestTranscode_Substitution(t *testing.T) {
	// accented Latin maps, unmappable symbols substitute, controls blank out
	got := Transcode("Café ñ → 25", CodePageCP858)
	want := []byte{'C', 'a', 'f', 0x82, ' ', 0xA4, ' ', '?', ' ', '2', '5'}
	if !bytes.Equal(got, want) {
		t.Errorf("Transcode mismatch:\n got:  % X\n want: % X", got, want)
	}

	got = Transcode("a\tb", CodePageCP437)
	if !bytes.Equal(got, []byte{'a', ' ', 'b'}) {
		t.Errorf("Expected control rune to become space, got % X", got)
	}
}

func TestTranscode_EuroSign(t *testing.T) {
	got := Transcode("€", CodePageCP858)
	if !bytes.Equal(got, []byte{0xD5}) {
		t.Errorf("Expected CP858 euro 0xD5, got % X", got)
	}
	// CP437 has no euro
	got = Transcode("€", CodePageCP437)
	if !bytes.Equal(got, []byte{'?'}) {
		t.Errorf("Expected substitution in CP437, got % X", got)
	}
}

func TestDecodeText_Reverses(t *testing.T) {
	s := "Ceniza ñ é ü"
	back := DecodeText(Transcode(s, CodePageCP850), CodePageCP850)
	if back != s {
		t.Errorf("DecodeText mismatch: got %q want %q", back, s)
	}
}
