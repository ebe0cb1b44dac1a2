package printjob

import (
	"fmt"
)

// Validate checks that a job is structurally complete: a known kind, the
// matching payload present, and option values inside their ranges. Business
// completeness (a sale having line items, a label having a price) is the
// caller's responsibility.
func Validate(j *Job) error {
	if j == nil {
		return fmt.Errorf("job is nil")
	}

	switch j.Kind {
	case KindReceipt:
		if j.Receipt == nil {
			return fmt.Errorf("kind %q requires a receipt payload", j.Kind)
		}
		if err := validateReceipt(j.Receipt); err != nil {
			return err
		}
	case KindLabel:
		if j.Label == nil {
			return fmt.Errorf("kind %q requires a label payload", j.Kind)
		}
		if j.Label.Title == "" {
			return fmt.Errorf("label: title is required")
		}
		if j.Label.Barcode != nil {
			if err := validateBarcode(j.Label.Barcode); err != nil {
				return fmt.Errorf("label: %w", err)
			}
		}
	case KindBarcode:
		if j.Barcode == nil {
			return fmt.Errorf("kind %q requires a barcode payload", j.Kind)
		}
		if err := validateBarcode(j.Barcode); err != nil {
			return err
		}
	case KindQR:
		if j.QR == nil {
			return fmt.Errorf("kind %q requires a qr payload", j.Kind)
		}
		if err := validateQR(j.QR); err != nil {
			return err
		}
	case KindRawText:
		if j.RawText == nil || j.RawText.Text == "" {
			return fmt.Errorf("kind %q requires raw text", j.Kind)
		}
	case KindCashDrawer:
		if j.Drawer != nil {
			if err := validateDrawer(j.Drawer); err != nil {
				return err
			}
		}
	case "":
		return fmt.Errorf("kind is required")
	default:
		return fmt.Errorf("unknown kind: %s", j.Kind)
	}

	if j.Options.Copies < 0 {
		return fmt.Errorf("options: copies must be >= 1 (got %d)", j.Options.Copies)
	}
	return nil
}

// Normalize fills zero-valued options and payload fields with their defaults.
// It returns the job for chaining and never fails.
func Normalize(j *Job) *Job {
	if j.Options.Copies < 1 {
		j.Options.Copies = 1
	}
	if j.Kind == KindCashDrawer && j.Drawer == nil {
		j.Drawer = &DrawerPayload{}
	}
	if j.Drawer != nil {
		if j.Drawer.OnMs == 0 {
			j.Drawer.OnMs = 120
		}
		if j.Drawer.OffMs == 0 {
			j.Drawer.OffMs = 240
		}
	}
	if j.QR != nil && j.QR.Size == 0 {
		j.QR.Size = 6
	}
	if j.Receipt != nil && j.Receipt.QR != nil && j.Receipt.QR.Size == 0 {
		j.Receipt.QR.Size = 6
	}
	return j
}

func validateReceipt(r *ReceiptPayload) error {
	for i, it := range r.Items {
		if it.Description == "" {
			return fmt.Errorf("receipt: item[%d]: description is required", i)
		}
	}
	for i, t := range r.Totals {
		if t.Label == "" {
			return fmt.Errorf("receipt: total[%d]: label is required", i)
		}
	}
	if r.Barcode != nil {
		if err := validateBarcode(r.Barcode); err != nil {
			return fmt.Errorf("receipt: %w", err)
		}
	}
	if r.QR != nil {
		if err := validateQR(r.QR); err != nil {
			return fmt.Errorf("receipt: %w", err)
		}
	}
	return nil
}

func validateBarcode(b *BarcodePayload) error {
	if b.Value == "" {
		return fmt.Errorf("barcode: value is required")
	}
	if b.Symbology == "" {
		return fmt.Errorf("barcode: symbology is required")
	}
	if !KnownSymbology(b.Symbology) {
		return fmt.Errorf("barcode: unknown symbology %q", b.Symbology)
	}
	return nil
}

func validateQR(q *QRPayload) error {
	if q.Value == "" {
		return fmt.Errorf("qr: value is required")
	}
	if q.Size < 0 || q.Size > 16 {
		return fmt.Errorf("qr: size must be 1-16 (got %d)", q.Size)
	}
	return nil
}

func validateDrawer(d *DrawerPayload) error {
	if d.Pin != 0 && d.Pin != 1 {
		return fmt.Errorf("drawer: pin must be 0 or 1 (got %d)", d.Pin)
	}
	if d.OnMs < 0 || d.OnMs > 510 {
		return fmt.Errorf("drawer: on_ms must be 0-510 (got %d)", d.OnMs)
	}
	if d.OffMs < 0 || d.OffMs > 510 {
		return fmt.Errorf("drawer: off_ms must be 0-510 (got %d)", d.OffMs)
	}
	return nil
}
