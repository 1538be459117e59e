package transform

import (
	"image"

	"github.com/disintegration/imaging"
)

// adjustSaturation remaps color saturation proportionally to the configured
// percentage: 0 yields grayscale, 100 is the identity, 200 doubles chroma
// (clamped to the valid channel range). Callers skip the stage for 100 so
// the no-op case stays byte-identical to the input.
func adjustSaturation(img image.Image, percent int) image.Image {
	if percent < 0 {
		percent = 0
	}
	if percent > 200 {
		percent = 200
	}
	// imaging scales HSL saturation by (100+delta)%, so delta = percent-100
	// maps 0 -> fully desaturated and 200 -> doubled.
	return imaging.AdjustSaturation(img, float64(percent-100))
}
