package transform

import (
	"image"

	"github.com/disintegration/imaging"
)

// scaleOverlay resizes a watermark so its shorter dimension equals
// scalePercent% of the target image's shorter dimension, preserving the
// watermark's aspect ratio.
func scaleOverlay(wm image.Image, target image.Image, scalePercent int) image.Image {
	tb := target.Bounds()
	shorter := tb.Dx()
	if tb.Dy() < shorter {
		shorter = tb.Dy()
	}
	size := shorter * scalePercent / 100
	if size < 1 {
		size = 1
	}

	wb := wm.Bounds()
	if wb.Dx() <= wb.Dy() {
		return imaging.Resize(wm, size, 0, imaging.Lanczos)
	}
	return imaging.Resize(wm, 0, size, imaging.Lanczos)
}

// anchorOffset computes the top-left placement of an overlay for one of
// the nine grid positions. Corner and edge positions are inset from their
// edges by margin; center ignores margin. The result is clamped so the
// overlay stays inside the image whenever it is smaller than the image.
func anchorOffset(imgW, imgH, ovW, ovH int, pos Position, margin int) image.Point {
	var x, y int

	switch pos {
	case PositionTopLeft, PositionLeft, PositionBottomLeft:
		x = margin
	case PositionTop, PositionCenter, PositionBottom:
		x = (imgW - ovW) / 2
	default: // top-right, right, bottom-right
		x = imgW - ovW - margin
	}

	switch pos {
	case PositionTopLeft, PositionTop, PositionTopRight:
		y = margin
	case PositionLeft, PositionCenter, PositionRight:
		y = (imgH - ovH) / 2
	default: // bottom-left, bottom, bottom-right
		y = imgH - ovH - margin
	}

	x = clampOffset(x, imgW, ovW)
	y = clampOffset(y, imgH, ovH)
	return image.Pt(x, y)
}

func clampOffset(v, imgDim, ovDim int) int {
	if ovDim < imgDim && v > imgDim-ovDim {
		v = imgDim - ovDim
	}
	if v < 0 {
		v = 0
	}
	return v
}

// compositeWatermark scales, positions and alpha-composites a single
// watermark over the base image. Opacity multiplies the overlay's own
// alpha channel; the base's alpha is preserved (standard alpha-over).
func compositeWatermark(base image.Image, wm image.Image, opts WatermarkOptions) image.Image {
	scaled := scaleOverlay(wm, base, opts.ScalePercent)

	bb := base.Bounds()
	sb := scaled.Bounds()
	pos := opts.Position
	if !pos.Valid() {
		pos = PositionCenter
	}
	at := anchorOffset(bb.Dx(), bb.Dy(), sb.Dx(), sb.Dy(), pos, opts.MarginPx)

	return imaging.Overlay(base, scaled, at, opts.Opacity)
}
