// Package render turns print jobs into images and PDF documents for devices
// that cannot take raw protocol bytes.
package render

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"

	"github.com/WILMAR-10/wilpos-print-agent/pkg/printjob"
)

// Options control the rendered page geometry.
type Options struct {
	// PaperWidth is the physical tape width: "58mm", "80mm" or "112mm".
	// Empty means 80mm.
	PaperWidth string
	// LogoPath overrides the job's logo file, when set.
	LogoPath string
}

// Renderer draws onto a canvas that grows as content is added. The canvas is
// cropped to the content height when rendering finishes.
type Renderer struct {
	width  int
	height int
	ctx    *gg.Context
	y      float64
}

func newRenderer(paperWidth string) *Renderer {
	width := PaperDots(paperWidth)
	initialHeight := 1000

	ctx := gg.NewContext(width, initialHeight)
	ctx.SetColor(color.White)
	ctx.Clear()
	ctx.SetColor(color.Black)

	return &Renderer{
		width:  width,
		height: initialHeight,
		ctx:    ctx,
	}
}

// Document renders a job to a printable image. Cash drawer pulses have no
// visual form and are rejected.
func Document(job printjob.Job, opts Options) (image.Image, error) {
	r := newRenderer(opts.PaperWidth)

	switch job.Kind {
	case printjob.KindReceipt:
		if err := r.receipt(job.Receipt, opts); err != nil {
			return nil, err
		}
	case printjob.KindLabel:
		if err := r.label(job.Label); err != nil {
			return nil, err
		}
	case printjob.KindBarcode:
		if err := r.barcodeJob(job.Barcode); err != nil {
			return nil, err
		}
	case printjob.KindQR:
		if err := r.qrJob(job.QR); err != nil {
			return nil, err
		}
	case printjob.KindRawText:
		r.rawText(job.RawText)
	default:
		return nil, printjob.NewError(printjob.ErrProtocolRejected,
			"job kind "+string(job.Kind)+" has no rendered form")
	}

	return r.cropToContent(), nil
}

func (r *Renderer) cropToContent() image.Image {
	finalHeight := int(r.y) + 40
	if finalHeight > r.height {
		finalHeight = r.height
	}

	img := r.ctx.Image()
	return img.(interface {
		SubImage(r image.Rectangle) image.Image
	}).SubImage(image.Rect(0, 0, r.width, finalHeight))
}

func (r *Renderer) ensureHeight(needed int) {
	if int(r.y)+needed <= r.height {
		return
	}
	newHeight := r.height * 2
	if newHeight < int(r.y)+needed {
		newHeight = int(r.y) + needed + 1000
	}

	newCtx := gg.NewContext(r.width, newHeight)
	newCtx.SetColor(color.White)
	newCtx.Clear()
	newCtx.DrawImage(r.ctx.Image(), 0, 0)
	newCtx.SetColor(color.Black)

	r.ctx = newCtx
	r.height = newHeight
}

// PaperDots maps a physical tape width to printable dots at 203dpi.
func PaperDots(width string) int {
	switch width {
	case "58mm":
		return 384
	case "80mm":
		return 576
	case "112mm":
		return 832
	default:
		return 576
	}
}

// SavePNG writes a rendered image to disk for spooler submission.
func SavePNG(path string, img image.Image) error {
	return gg.SavePNG(path, img)
}
