package render

import (
	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/codabar"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/code39"
	"github.com/boombuler/barcode/code93"
	"github.com/boombuler/barcode/ean"
	"github.com/boombuler/barcode/twooffive"
	"github.com/skip2/go-qrcode"

	"github.com/WILMAR-10/wilpos-print-agent/pkg/printjob"
)

func (r *Renderer) barcode(symbology, value, caption string) error {
	if value == "" {
		return nil
	}

	img, err := encodeBarcode(symbology, value)
	if err != nil {
		return err
	}

	targetWidth := r.width - 40
	img, err = barcode.Scale(img, targetWidth, 80)
	if err != nil {
		return printjob.WrapError(printjob.ErrProtocolRejected, "barcode does not fit tape width", err)
	}

	imgHeight := img.Bounds().Dy()
	r.ensureHeight(imgHeight + 20)

	x := (r.width - img.Bounds().Dx()) / 2
	r.ctx.DrawImage(img, x, int(r.y))
	r.y += float64(imgHeight) + 10

	if caption != "" {
		r.text(caption, sizeCaption, false, alignCenter)
	}
	return nil
}

func encodeBarcode(symbology, value string) (barcode.Barcode, error) {
	var img barcode.Barcode
	var err error

	switch symbology {
	case "code128", "":
		img, err = code128.Encode(value)
	case "code39":
		img, err = code39.Encode(value, false, false)
	case "code93":
		img, err = code93.Encode(value, false, false)
	case "ean13", "ean8":
		img, err = ean.Encode(value)
	case "upca":
		// UPC-A is EAN-13 with a leading zero
		img, err = ean.Encode("0" + value)
	case "codabar":
		img, err = codabar.Encode(value)
	case "itf":
		img, err = twooffive.Encode(value, true)
	default:
		return nil, printjob.NewError(printjob.ErrProtocolRejected,
			"symbology "+symbology+" has no rendered form")
	}
	if err != nil {
		return nil, printjob.WrapError(printjob.ErrUnsupportedCharacter,
			"value not encodable as "+symbology, err)
	}
	return img, nil
}

func (r *Renderer) qr(value string, moduleSize int) error {
	if value == "" {
		return nil
	}

	qr, err := qrcode.New(value, qrcode.Medium)
	if err != nil {
		return printjob.WrapError(printjob.ErrUnsupportedCharacter, "value not encodable as qr", err)
	}

	// module size maps to the raw protocol's dot scale; 6 is the usual default
	if moduleSize <= 0 {
		moduleSize = 6
	}
	size := moduleSize * 40
	if max := r.width - 100; size > max {
		size = max
	}

	img := qr.Image(size)
	imgHeight := img.Bounds().Dy()
	r.ensureHeight(imgHeight + 20)

	x := (r.width - img.Bounds().Dx()) / 2
	r.ctx.DrawImage(img, x, int(r.y))
	r.y += float64(imgHeight) + 10

	return nil
}
