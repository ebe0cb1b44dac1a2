package render

import (
	"image"
	"strings"
	"testing"

	"github.com/WILMAR-10/wilpos-print-agent/pkg/printjob"
)

func sampleReceiptJob() printjob.Job {
	return printjob.Job{
		Kind: printjob.KindReceipt,
		Receipt: &printjob.ReceiptPayload{
			Header: printjob.BusinessHeader{
				Name:  "Colmado Dona Ana",
				Lines: []string{"Av. Duarte 145, Santiago", "Tel. 809-555-0173"},
				TaxID: "RNC 1-31-55981-2",
			},
			TicketNumber: "T-000458",
			Timestamp:    "21/08/2026 14:32",
			Operator:     "Caja 1 / Maria",
			Items: []printjob.LineItem{
				{Description: "Arroz Selecto 5lb", Quantity: "2", UnitPrice: "125.00", Amount: "250.00"},
				{Description: "Aceite Crisol 1L", Amount: "185.00"},
			},
			Totals: []printjob.TotalLine{
				{Label: "SUBTOTAL", Amount: "435.00"},
				{Label: "ITBIS 18%", Amount: "78.30"},
				{Label: "TOTAL", Amount: "513.30", Emphasis: true},
			},
			Payments: []printjob.TotalLine{
				{Label: "EFECTIVO", Amount: "600.00"},
				{Label: "CAMBIO", Amount: "86.70"},
			},
			Footer: []string{"Gracias por su compra"},
		},
	}
}

func hasInk(img image.Image) bool {
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, _, _, _ := img.At(x, y).RGBA()
			if r < 0x8000 {
				return true
			}
		}
	}
	return false
}

func TestDocumentReceipt(t *testing.T) {
	img, err := Document(sampleReceiptJob(), Options{PaperWidth: "80mm"})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	if got := img.Bounds().Dx(); got != 576 {
		t.Errorf("width = %d, want 576", got)
	}
	if img.Bounds().Dy() < 100 {
		t.Errorf("height = %d, implausibly short for a full receipt", img.Bounds().Dy())
	}
	if !hasInk(img) {
		t.Error("rendered receipt is blank")
	}
}

func TestDocumentPaperWidths(t *testing.T) {
	for _, c := range []struct {
		paper string
		width int
	}{
		{"58mm", 384},
		{"80mm", 576},
		{"112mm", 832},
		{"", 576},
	} {
		img, err := Document(sampleReceiptJob(), Options{PaperWidth: c.paper})
		if err != nil {
			t.Fatalf("%s: render failed: %v", c.paper, err)
		}
		if got := img.Bounds().Dx(); got != c.width {
			t.Errorf("%s: width = %d, want %d", c.paper, got, c.width)
		}
	}
}

func TestDocumentGrowsForLongReceipts(t *testing.T) {
	job := sampleReceiptJob()
	for i := 0; i < 120; i++ {
		job.Receipt.Items = append(job.Receipt.Items, printjob.LineItem{
			Description: "Clavos 2 pulgadas", Amount: "15.00",
		})
	}

	img, err := Document(job, Options{})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if img.Bounds().Dy() <= 1000 {
		t.Errorf("height = %d, canvas should have grown past its initial size", img.Bounds().Dy())
	}
}

func TestDocumentDrawerHasNoRenderedForm(t *testing.T) {
	job := printjob.Job{Kind: printjob.KindCashDrawer, Drawer: &printjob.DrawerPayload{}}
	_, err := Document(job, Options{})
	if err == nil {
		t.Fatal("expected error for drawer pulse")
	}
	if printjob.KindOf(err) != printjob.ErrProtocolRejected {
		t.Errorf("error kind = %s, want %s", printjob.KindOf(err), printjob.ErrProtocolRejected)
	}
}

func TestDocumentBarcodeAndQR(t *testing.T) {
	jobs := []printjob.Job{
		{Kind: printjob.KindBarcode, Barcode: &printjob.BarcodePayload{Symbology: "code128", Value: "T-000458", Caption: true}},
		{Kind: printjob.KindQR, QR: &printjob.QRPayload{Value: "https://example.do/t/000458", Size: 6}},
		{Kind: printjob.KindLabel, Label: &printjob.LabelPayload{
			Title: "Arroz Selecto 5lb", Price: "RD$ 125.00",
			Barcode: &printjob.BarcodePayload{Symbology: "ean13", Value: "7461234567890"},
		}},
	}
	for _, job := range jobs {
		img, err := Document(job, Options{})
		if err != nil {
			t.Fatalf("%s: render failed: %v", job.Kind, err)
		}
		if !hasInk(img) {
			t.Errorf("%s: rendered image is blank", job.Kind)
		}
	}
}

func TestEncodeBarcodeRejectsBadValue(t *testing.T) {
	_, err := encodeBarcode("ean13", "not-digits")
	if err == nil {
		t.Fatal("expected error for non-numeric ean13")
	}
	if printjob.KindOf(err) != printjob.ErrUnsupportedCharacter {
		t.Errorf("error kind = %s, want %s", printjob.KindOf(err), printjob.ErrUnsupportedCharacter)
	}

	_, err = encodeBarcode("maxicode", "123")
	if err == nil {
		t.Fatal("expected error for unknown symbology")
	}
	if printjob.KindOf(err) != printjob.ErrProtocolRejected {
		t.Errorf("error kind = %s, want %s", printjob.KindOf(err), printjob.ErrProtocolRejected)
	}
}

func TestReceiptHTML(t *testing.T) {
	html, err := ReceiptHTML(sampleReceiptJob())
	if err != nil {
		t.Fatalf("html render failed: %v", err)
	}

	for _, want := range []string{
		"Colmado Dona Ana",
		"RNC 1-31-55981-2",
		"513.30",
		"Gracias por su compra",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("html missing %q", want)
		}
	}
}

func TestReceiptHTMLEscapesMarkup(t *testing.T) {
	job := sampleReceiptJob()
	job.Receipt.Header.Name = "<script>alert(1)</script>"

	html, err := ReceiptHTML(job)
	if err != nil {
		t.Fatalf("html render failed: %v", err)
	}
	if strings.Contains(html, "<script>alert") {
		t.Error("markup in payload fields must be escaped")
	}
}

func TestReceiptHTMLRejectsOtherKinds(t *testing.T) {
	job := printjob.Job{Kind: printjob.KindQR, QR: &printjob.QRPayload{Value: "x"}}
	if _, err := ReceiptHTML(job); err == nil {
		t.Error("expected error for non-receipt job")
	}
}

func TestExportStamp(t *testing.T) {
	job := sampleReceiptJob()
	job.Receipt.TicketNumber = "T/00:45*8"

	stamp := exportStamp(job)
	if strings.ContainsAny(stamp, "/:*") {
		t.Errorf("stamp %q contains unsafe characters", stamp)
	}
	if !strings.HasPrefix(stamp, "T-00-45-8-") {
		t.Errorf("stamp %q should start with the sanitized ticket number", stamp)
	}
}
