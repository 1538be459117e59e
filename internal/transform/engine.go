package transform

import (
	"image"
	"image/color"

	"github.com/MeKo-Tech/photoflow/internal/imageio"
)

// overlay is a watermark with its source image already decoded.
type overlay struct {
	opts WatermarkOptions
	img  image.Image
}

// Engine applies one fixed parameter set to any number of images.
// Watermark sources are decoded exactly once at construction and reused
// for every Apply call, so a batch run never re-reads watermark files.
type Engine struct {
	opts        Options
	borderColor color.NRGBA
	overlays    []overlay

	// wmErr is a watermark decode failure captured at construction. It is
	// reported per Apply so the caller can treat it as a per-file decode
	// error rather than aborting the whole batch.
	wmErr error
}

// NewEngine builds an engine for the given options. Watermark entries with
// an empty image path are skipped. An invalid border color fails
// construction; an undecodable watermark does not, it fails each Apply
// with an imageio.DecodeError instead.
func NewEngine(opts Options) (*Engine, error) {
	e := &Engine{opts: opts}

	if opts.Border.ThicknessPx > 0 {
		c, err := ParseHexColor(opts.Border.Color)
		if err != nil {
			return nil, err
		}
		e.borderColor = c
	}

	cache := make(map[string]image.Image)
	for _, wm := range opts.Watermarks {
		if wm.ImagePath == "" {
			continue
		}
		img, ok := cache[wm.ImagePath]
		if !ok {
			var err error
			img, err = imageio.Load(wm.ImagePath)
			if err != nil {
				e.wmErr = err
				return e, nil
			}
			cache[wm.ImagePath] = img
		}
		e.overlays = append(e.overlays, overlay{opts: wm, img: img})
	}
	return e, nil
}

// Apply runs the pipeline on a single decoded image and returns the result.
// Stage order is fixed: saturation, watermarks (sequence order, later
// entries drawn over earlier ones), border. The border is added last so no
// watermark ever overlaps it. The input image is never modified.
func (e *Engine) Apply(src image.Image) (image.Image, error) {
	if e.wmErr != nil {
		return nil, e.wmErr
	}

	out := src

	if e.opts.Saturation != 100 {
		out = adjustSaturation(out, e.opts.Saturation)
	}

	for _, ov := range e.overlays {
		out = compositeWatermark(out, ov.img, ov.opts)
	}

	if e.opts.Border.ThicknessPx > 0 {
		out = addBorder(out, e.opts.Border.ThicknessPx, e.borderColor)
	}

	return out, nil
}
