package render

import (
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/disintegration/imaging"
)

// logo loads, thresholds and centers an image file. Missing or unreadable
// logos are skipped; a receipt without its logo still prints.
func (r *Renderer) logo(path string) {
	if path == "" {
		return
	}
	file, err := os.Open(path)
	if err != nil {
		return
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return
	}

	if img.Bounds().Dx() > r.width {
		img = imaging.Resize(img, r.width, 0, imaging.Lanczos)
	}
	bw := thresholdImage(img, 128)

	imgHeight := bw.Bounds().Dy()
	r.ensureHeight(imgHeight + 20)

	x := (r.width - bw.Bounds().Dx()) / 2
	r.ctx.DrawImage(bw, x, int(r.y))
	r.y += float64(imgHeight) + 10
}

func thresholdImage(img image.Image, threshold uint8) image.Image {
	bounds := img.Bounds()
	bw := image.NewGray(bounds)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			cr, cg, cb, _ := img.At(x, y).RGBA()
			gray := uint8((cr + cg + cb) / 3 / 256)

			out := uint8(255)
			if gray < threshold {
				out = 0
			}
			bw.SetGray(x, y, color.Gray{Y: out})
		}
	}
	return bw
}
