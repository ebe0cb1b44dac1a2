package printjob

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

func TestValidate_ValidReceipt(t *testing.T) {
	job := &Job{
		Kind: KindReceipt,
		Receipt: &ReceiptPayload{
			Header: BusinessHeader{Name: "Colmado La Esquina"},
			Items: []LineItem{
				{Description: "Cafe molido 454g", Quantity: "1", Amount: "255.00"},
			},
			Totals: []TotalLine{{Label: "TOTAL", Amount: "255.00", Emphasis: true}},
		},
	}

	if err := Validate(job); err != nil {
		t.Errorf("Expected valid job, got error: %v", err)
	}
}

func TestValidate_MissingPayload(t *testing.T) {
	job := &Job{Kind: KindReceipt}

	if err := Validate(job); err == nil {
		t.Error("Expected error for receipt job without payload")
	}
}

func TestValidate_UnknownKind(t *testing.T) {
	job := &Job{Kind: "fax"}

	if err := Validate(job); err == nil {
		t.Error("Expected error for unknown kind")
	}
}

func TestValidate_BarcodeSymbology(t *testing.T) {
	cases := []struct {
		symbology string
		wantErr   bool
	}{
		{"code128", false},
		{"ean13", false},
		{"code93", false},
		{"qr", true},
		{"", true},
	}

	for _, tc := range cases {
		t.Run("symbology_"+tc.symbology, func(t *testing.T) {
			job := &Job{
				Kind:    KindBarcode,
				Barcode: &BarcodePayload{Symbology: tc.symbology, Value: "7461234567890"},
			}
			err := Validate(job)
			if tc.wantErr && err == nil {
				t.Errorf("Expected error for symbology %q", tc.symbology)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("Unexpected error for symbology %q: %v", tc.symbology, err)
			}
		})
	}
}

func TestValidate_DrawerRanges(t *testing.T) {
	job := &Job{
		Kind:   KindCashDrawer,
		Drawer: &DrawerPayload{Pin: 3},
	}
	if err := Validate(job); err == nil {
		t.Error("Expected error for drawer pin 3")
	}

	job = &Job{
		Kind:   KindCashDrawer,
		Drawer: &DrawerPayload{OnMs: 600},
	}
	if err := Validate(job); err == nil {
		t.Error("Expected error for on_ms out of range")
	}
}

func TestNormalize_Defaults(t *testing.T) {
	job := Normalize(&Job{Kind: KindCashDrawer})

	if job.Options.Copies != 1 {
		t.Errorf("Expected copies 1, got %d", job.Options.Copies)
	}
	if job.Drawer == nil {
		t.Fatal("Expected drawer payload to be filled in")
	}
	if job.Drawer.OnMs != 120 || job.Drawer.OffMs != 240 {
		t.Errorf("Expected default pulse 120/240, got %d/%d", job.Drawer.OnMs, job.Drawer.OffMs)
	}
}

func TestNormalize_QRSize(t *testing.T) {
	job := Normalize(&Job{Kind: KindQR, QR: &QRPayload{Value: "https://example.com"}})

	if job.QR.Size != 6 {
		t.Errorf("Expected default QR size 6, got %d", job.QR.Size)
	}
}

func TestJob_JSONRoundTrip(t *testing.T) {
	job := &Job{
		Kind:         KindReceipt,
		TargetDevice: "POS-80",
		Receipt: &ReceiptPayload{
			Header:       BusinessHeader{Name: "Ferreteria Martinez", TaxID: "RNC 1-31-55981-2"},
			TicketNumber: "A-000124",
			Items:        []LineItem{{Description: "Tornillo 1/4", Quantity: "12", Amount: "36.00"}},
		},
		Options: Options{Copies: 2, CutPaper: true},
	}

	data, err := json.Marshal(job)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var back Job
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if back.Kind != KindReceipt || back.TargetDevice != "POS-80" {
		t.Errorf("Round trip lost fields: %+v", back)
	}
	if back.Receipt == nil || back.Receipt.Header.Name != "Ferreteria Martinez" {
		t.Errorf("Round trip lost receipt payload: %+v", back.Receipt)
	}
	if back.Label != nil || back.QR != nil {
		t.Error("Round trip grew unrelated payloads")
	}
}

func TestError_KindOf(t *testing.T) {
	base := NewError(ErrTimeout, "usb write stalled")
	wrapped := fmt.Errorf("attempt 2: %w", base)

	if kind := KindOf(wrapped); kind != ErrTimeout {
		t.Errorf("Expected kind %s, got %s", ErrTimeout, kind)
	}
	if kind := KindOf(errors.New("plain")); kind != "" {
		t.Errorf("Expected empty kind for plain error, got %s", kind)
	}
}

func TestResult_AttemptLog(t *testing.T) {
	r := Result{
		Attempts: []Attempt{
			{Transport: TransportRawProtocol, Try: 1, ErrorKind: ErrTransportUnavailable, Error: "usb handle busy"},
			{Transport: TransportRenderedDocument, Try: 1},
		},
	}

	log := r.AttemptLog()
	if log == "" {
		t.Fatal("Expected non-empty attempt log")
	}
	want := "raw_protocol try 1: usb handle busy (transport_unavailable); rendered_document try 1: ok"
	if log != want {
		t.Errorf("Attempt log mismatch:\n got:  %s\n want: %s", log, want)
	}
}
