package render

import (
	"os"
)

type align int

const (
	alignLeft align = iota
	alignCenter
	alignRight
)

const (
	sizeBody    = 24
	sizeCaption = 20
	sizeTitle   = 40
	sizeTotal   = 30
)

var regularFonts = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
	"/System/Library/Fonts/Helvetica.ttc",
	"/System/Library/Fonts/Supplemental/Arial.ttf",
	`C:\Windows\Fonts\arial.ttf`,
}

var boldFonts = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Bold.ttf",
	"/System/Library/Fonts/Supplemental/Arial Bold.ttf",
	`C:\Windows\Fonts\arialbd.ttf`,
}

// loadFont picks the first present system font. When none load, gg keeps its
// built-in bitmap face, which still renders legibly at receipt sizes.
func (r *Renderer) loadFont(size float64, bold bool) {
	paths := regularFonts
	if bold {
		paths = boldFonts
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := r.ctx.LoadFontFace(path, size); err == nil {
			return
		}
	}
}

func (r *Renderer) text(s string, size float64, bold bool, a align) {
	if s == "" {
		return
	}
	// grow first: replacing the canvas resets the loaded font face
	r.ensureHeight(int(size*2) + 20)
	r.loadFont(size, bold)

	textWidth, textHeight := r.ctx.MeasureString(s)

	var x float64
	switch a {
	case alignCenter:
		x = float64(r.width)/2 - textWidth/2
	case alignRight:
		x = float64(r.width) - textWidth - 5
	default:
		x = 5
	}

	r.ctx.DrawString(s, x, r.y+textHeight)
	r.y += textHeight + 10
}

// row draws a left and a right string on one line, right-aligned amount
// style. The left side is clipped against the right side's start.
func (r *Renderer) row(left, right string, size float64, bold bool) {
	r.ensureHeight(int(size*2) + 20)
	r.loadFont(size, bold)

	rightWidth, textHeight := r.ctx.MeasureString(right)
	rightX := float64(r.width) - rightWidth - 5

	// clip the left text so it never runs under the amount
	r.ctx.Push()
	r.ctx.DrawRectangle(0, r.y, rightX-10, textHeight+20)
	r.ctx.Clip()
	r.ctx.DrawString(left, 5, r.y+textHeight)
	r.ctx.Pop()

	r.ctx.DrawString(right, rightX, r.y+textHeight)
	r.y += textHeight + 10
}

func (r *Renderer) feed(lines int) {
	if lines <= 0 {
		lines = 1
	}
	r.ensureHeight(lines * 20)
	r.y += float64(lines) * 20
}

func (r *Renderer) divider() {
	r.ensureHeight(15)

	y := r.y + 7
	margin := 10.0
	r.ctx.SetLineWidth(2)

	dashLength := 10.0
	gapLength := 5.0
	x := margin
	for x < float64(r.width)-margin {
		endX := x + dashLength
		if endX > float64(r.width)-margin {
			endX = float64(r.width) - margin
		}
		r.ctx.DrawLine(x, y, endX, y)
		r.ctx.Stroke()
		x += dashLength + gapLength
	}

	r.y += 15
}
