package escpos

import (
	"image"

	"github.com/disintegration/imaging"
)

// RasterFromImage converts an image into a raster print command, scaling it
// down to maxWidth dots when it is wider. Pixels darker than 50% become
// black; thermal heads print single-bit rows, MSB first.
func RasterFromImage(img image.Image, maxWidth int) Command {
	if img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}
	gray := imaging.Grayscale(img)

	width := gray.Bounds().Dx()
	height := gray.Bounds().Dy()
	widthBytes := (width + 7) / 8

	rows := make([]byte, widthBytes*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, _, _, _ := gray.At(x, y).RGBA()
			if r < 0x8000 {
				rows[y*widthBytes+x/8] |= 1 << (7 - uint(x%8))
			}
		}
	}
	return Raster(widthBytes, height, rows)
}
