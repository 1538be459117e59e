package transform

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// addBorder extends the canvas by thickness pixels on all four sides,
// filled with the border color. Output dimensions grow by 2*thickness in
// each axis; the source pixels are untouched in the interior.
func addBorder(img image.Image, thickness int, c color.NRGBA) image.Image {
	b := img.Bounds()
	canvas := imaging.New(b.Dx()+2*thickness, b.Dy()+2*thickness, c)
	return imaging.Paste(canvas, img, image.Pt(thickness, thickness))
}
