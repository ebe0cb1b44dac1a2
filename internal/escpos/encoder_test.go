package escpos

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/WILMAR-10/wilpos-print-agent/pkg/printjob"
)

func sampleReceipt() *printjob.Job {
	return &printjob.Job{
		Kind: printjob.KindReceipt,
		Receipt: &printjob.ReceiptPayload{
			Header: printjob.BusinessHeader{
				Name:  "Colmado Doña Ana",
				Lines: []string{"Av. Independencia 102, Santo Domingo", "Tel. 809-555-0184"},
				TaxID: "RNC 131-55981-2",
			},
			TicketNumber: "A-000124",
			Timestamp:    "2026-08-25 14:32",
			Items: []printjob.LineItem{
				{Description: "Cafe Santo Domingo 454g", Amount: "255.00"},
				{Description: "Azucar crema 5lb", Amount: "180.00"},
			},
			Totals: []printjob.TotalLine{
				{Label: "SUBTOTAL", Amount: "435.00"},
				{Label: "ITBIS 18%", Amount: "78.30"},
				{Label: "TOTAL", Amount: "513.30", Emphasis: true},
			},
			Footer: []string{"Gracias por su compra"},
		},
		Options: printjob.Options{Copies: 1, CutPaper: true},
	}
}

func TestEncode_Deterministic(t *testing.T) {
	job := sampleReceipt()
	opts := Options{Columns: 42, CodePage: CodePageCP858}

	first, err := Encode(job, opts)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	second, err := Encode(job, opts)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !bytes.Equal(first.Bytes, second.Bytes) {
		t.Error("Expected byte-identical output for identical input")
	}
}

func TestEncode_ReceiptScenario(t *testing.T) {
	enc, err := Encode(sampleReceipt(), Options{Columns: 42, CodePage: CodePageCP858})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	if enc.Commands[0].Op != OpInit {
		t.Errorf("Expected sequence to start with Init, got %s", enc.Commands[0])
	}
	last := enc.Commands[len(enc.Commands)-1]
	if last.Op != OpCut || CutMode(last.N1) != CutFull {
		t.Errorf("Expected sequence to end with Cut(full), got %s", last)
	}

	var itemLines []string
	for _, c := range enc.Commands {
		if c.Op != OpText {
			continue
		}
		text := DecodeText(c.Data, CodePageCP858)
		for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
			if strings.Contains(line, "Cafe Santo Domingo") || strings.Contains(line, "Azucar crema") {
				itemLines = append(itemLines, line)
			}
		}
	}
	if len(itemLines) != 2 {
		t.Fatalf("Expected two item lines, got %d: %v", len(itemLines), itemLines)
	}
	if !strings.HasSuffix(itemLines[0], "255.00") {
		t.Errorf("Expected right-aligned amount on item line, got %q", itemLines[0])
	}

	// the sequence must be decodable against the reference table
	if _, err := Decode(enc.Bytes); err != nil {
		t.Errorf("Encoded receipt failed to decode: %v", err)
	}
}

func TestEncode_WidthInvariant(t *testing.T) {
	job := sampleReceipt()
	job.Receipt.Items = append(job.Receipt.Items, printjob.LineItem{
		Description: "Jabon de cuaba el tradicional paquete familiar extra grande",
		Quantity:    "3",
		UnitPrice:   "45.00",
		Amount:      "135.00",
	})

	for _, columns := range []int{32, 42, 48} {
		enc, err := Encode(job, Options{Columns: columns, CodePage: CodePageCP858})
		if err != nil {
			t.Fatalf("Encode failed at %d columns: %v", columns, err)
		}

		multiplier := 1
		for _, c := range enc.Commands {
			switch c.Op {
			case OpTextSize:
				multiplier = c.N1
			case OpText:
				text := DecodeText(c.Data, CodePageCP858)
				for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
					if got := len([]rune(line)) * multiplier; got > columns {
						t.Errorf("line exceeds %d columns (width %d): %q", columns, got, line)
					}
				}
			}
		}
	}
}

func TestEncode_DrawerOnly(t *testing.T) {
	job := &printjob.Job{Kind: printjob.KindCashDrawer}

	enc, err := Encode(job, Options{Columns: 42})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if len(enc.Commands) != 2 {
		t.Fatalf("Expected Init + DrawerPulse, got %d commands", len(enc.Commands))
	}
	if enc.Commands[0].Op != OpInit || enc.Commands[1].Op != OpDrawerPulse {
		t.Errorf("Unexpected drawer sequence: %v", enc.Commands)
	}
	if enc.Commands[1].N2 != 120 || enc.Commands[1].N3 != 240 {
		t.Errorf("Expected default pulse 120/240, got %d/%d", enc.Commands[1].N2, enc.Commands[1].N3)
	}
}

func TestEncode_OpenDrawerOption(t *testing.T) {
	job := sampleReceipt()
	job.Options.OpenDrawer = true

	enc, err := Encode(job, Options{Columns: 42, CodePage: CodePageCP858})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	found := false
	for _, c := range enc.Commands {
		if c.Op == OpDrawerPulse {
			found = true
		}
	}
	if !found {
		t.Error("Expected a DrawerPulse command when open_drawer is set")
	}
}

func TestEncode_BarcodeAlphabet(t *testing.T) {
	job := &printjob.Job{
		Kind:    printjob.KindBarcode,
		Barcode: &printjob.BarcodePayload{Symbology: "ean13", Value: "74612345678AB"},
	}

	_, err := Encode(job, Options{Columns: 42})
	if err == nil {
		t.Fatal("Expected error for non-digit ean13 value")
	}
	var ce *printjob.Error
	if !errors.As(err, &ce) || ce.Kind != printjob.ErrUnsupportedCharacter {
		t.Errorf("Expected %s, got %v", printjob.ErrUnsupportedCharacter, err)
	}
}

func TestEncode_AccentedTextDoesNotFail(t *testing.T) {
	job := sampleReceipt()
	job.Receipt.Footer = append(job.Receipt.Footer, "こんにちは") // unmappable, must substitute

	if _, err := Encode(job, Options{Columns: 42, CodePage: CodePageCP858}); err != nil {
		t.Errorf("Visible text must never fail encoding, got: %v", err)
	}
}

func TestEncode_LabelWithBarcode(t *testing.T) {
	job := &printjob.Job{
		Kind: printjob.KindLabel,
		Label: &printjob.LabelPayload{
			Title:   "Cafe Santo Domingo 454g",
			Price:   "RD$255.00",
			Barcode: &printjob.BarcodePayload{Symbology: "ean13", Value: "746123456789", Caption: true},
		},
		Options: printjob.Options{CutPaper: true},
	}

	enc, err := Encode(job, Options{Columns: 42, CodePage: CodePageCP858})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	var hasBarcode, hasHRI bool
	for _, c := range enc.Commands {
		if c.Op == OpBarcode {
			hasBarcode = true
		}
		if c.Op == OpHRIPosition && c.N1 == 2 {
			hasHRI = true
		}
	}
	if !hasBarcode || !hasHRI {
		t.Error("Expected barcode with caption below bars")
	}
}
