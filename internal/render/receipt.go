package render

import (
	"strings"

	"github.com/WILMAR-10/wilpos-print-agent/pkg/printjob"
)

// receipt lays out a sales receipt the same way the raw protocol encoder
// does, so a customer cannot tell which path printed their copy.
func (r *Renderer) receipt(p *printjob.ReceiptPayload, opts Options) error {
	logoPath := p.Header.LogoPath
	if opts.LogoPath != "" {
		logoPath = opts.LogoPath
	}
	r.logo(logoPath)

	r.text(p.Header.Name, sizeTitle, true, alignCenter)
	for _, line := range p.Header.Lines {
		r.text(line, sizeBody, false, alignCenter)
	}
	if p.Header.TaxID != "" {
		r.text(p.Header.TaxID, sizeBody, false, alignCenter)
	}

	if p.TicketNumber != "" || p.Timestamp != "" {
		r.row(p.TicketNumber, p.Timestamp, sizeBody, false)
	}
	if p.Operator != "" {
		r.text(p.Operator, sizeBody, false, alignLeft)
	}

	r.divider()
	for _, item := range p.Items {
		if item.Quantity == "" {
			r.row(item.Description, item.Amount, sizeBody, false)
			continue
		}
		r.text(item.Description, sizeBody, false, alignLeft)
		qty := "  " + item.Quantity
		if item.UnitPrice != "" {
			qty += " x " + item.UnitPrice
		}
		r.row(qty, item.Amount, sizeBody, false)
	}
	r.divider()

	for _, t := range p.Totals {
		size := float64(sizeBody)
		if t.Emphasis {
			size = sizeTotal
		}
		r.row(t.Label, t.Amount, size, t.Emphasis)
	}
	if len(p.Payments) > 0 {
		r.feed(1)
		for _, t := range p.Payments {
			r.row(t.Label, t.Amount, sizeBody, t.Emphasis)
		}
	}

	if len(p.Footer) > 0 {
		r.feed(1)
		for _, line := range p.Footer {
			r.text(line, sizeBody, false, alignCenter)
		}
	}

	if p.Barcode != nil {
		r.feed(1)
		caption := ""
		if p.Barcode.Caption {
			caption = p.Barcode.Value
		}
		if err := r.barcode(p.Barcode.Symbology, p.Barcode.Value, caption); err != nil {
			return err
		}
	}
	if p.QR != nil {
		r.feed(1)
		if err := r.qr(p.QR.Value, p.QR.Size); err != nil {
			return err
		}
	}

	r.feed(1)
	return nil
}

func (r *Renderer) label(p *printjob.LabelPayload) error {
	r.text(p.Title, sizeTitle, true, alignCenter)
	for _, line := range p.Lines {
		r.text(line, sizeBody, false, alignCenter)
	}
	if p.Price != "" {
		r.text(p.Price, sizeTotal, true, alignCenter)
	}
	if p.Barcode != nil {
		r.feed(1)
		caption := ""
		if p.Barcode.Caption {
			caption = p.Barcode.Value
		}
		if err := r.barcode(p.Barcode.Symbology, p.Barcode.Value, caption); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) barcodeJob(p *printjob.BarcodePayload) error {
	caption := ""
	if p.Caption {
		caption = p.Value
	}
	return r.barcode(p.Symbology, p.Value, caption)
}

func (r *Renderer) qrJob(p *printjob.QRPayload) error {
	return r.qr(p.Value, p.Size)
}

func (r *Renderer) rawText(p *printjob.RawTextPayload) {
	for _, line := range strings.Split(p.Text, "\n") {
		if line == "" {
			r.feed(1)
			continue
		}
		r.text(line, sizeBody, false, alignLeft)
	}
}
