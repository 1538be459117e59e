// Package transform implements the per-image finishing pipeline:
// saturation remap, watermark compositing and border padding.
package transform

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Position names one of the nine anchor points of a 3x3 grid over the
// target image.
type Position string

const (
	PositionTopLeft     Position = "top-left"
	PositionTop         Position = "top"
	PositionTopRight    Position = "top-right"
	PositionLeft        Position = "left"
	PositionCenter      Position = "center"
	PositionRight       Position = "right"
	PositionBottomLeft  Position = "bottom-left"
	PositionBottom      Position = "bottom"
	PositionBottomRight Position = "bottom-right"
)

// Positions lists all valid watermark positions.
var Positions = []Position{
	PositionTopLeft, PositionTop, PositionTopRight,
	PositionLeft, PositionCenter, PositionRight,
	PositionBottomLeft, PositionBottom, PositionBottomRight,
}

// Valid reports whether p is one of the nine anchor positions.
func (p Position) Valid() bool {
	for _, q := range Positions {
		if p == q {
			return true
		}
	}
	return false
}

// WatermarkOptions configures a single watermark overlay.
type WatermarkOptions struct {
	ID           string   `mapstructure:"id"            yaml:"id"            json:"id"`
	ImagePath    string   `mapstructure:"image_path"    yaml:"image_path"    json:"image_path"`
	Position     Position `mapstructure:"position"      yaml:"position"      json:"position"`
	Opacity      float64  `mapstructure:"opacity"       yaml:"opacity"       json:"opacity"`
	ScalePercent int      `mapstructure:"scale_percent" yaml:"scale_percent" json:"scale_percent"`
	MarginPx     int      `mapstructure:"margin_px"     yaml:"margin_px"     json:"margin_px"`
}

// BorderOptions configures the border stage. Thickness 0 disables it.
type BorderOptions struct {
	ThicknessPx int    `mapstructure:"thickness_px" yaml:"thickness_px" json:"thickness_px"`
	Color       string `mapstructure:"color"        yaml:"color"        json:"color"`
}

// Options is the full parameter set for one transform pipeline.
// Watermark order is compositing order: the first entry is bottom-most.
type Options struct {
	Saturation int                `mapstructure:"saturation" yaml:"saturation" json:"saturation"`
	Border     BorderOptions      `mapstructure:"border"     yaml:"border"     json:"border"`
	Watermarks []WatermarkOptions `mapstructure:"watermarks" yaml:"watermarks" json:"watermarks"`
}

// DefaultOptions returns a no-op parameter set.
func DefaultOptions() Options {
	return Options{
		Saturation: 100,
		Border:     BorderOptions{ThicknessPx: 0, Color: "#FFFFFF"},
	}
}

// ParseHexColor parses a "#RRGGBB" or "#RGB" color string.
func ParseHexColor(s string) (color.NRGBA, error) {
	t := strings.TrimPrefix(s, "#")
	switch len(t) {
	case 6:
	case 3:
		t = string([]byte{t[0], t[0], t[1], t[1], t[2], t[2]})
	default:
		return color.NRGBA{}, fmt.Errorf("invalid color %q: want #RRGGBB or #RGB", s)
	}

	v, err := strconv.ParseUint(t, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.NRGBA{
		R: uint8(v >> 16), //nolint:gosec // G115: value is bounded by ParseUint bit size
		G: uint8(v >> 8),  //nolint:gosec // G115
		B: uint8(v),       //nolint:gosec // G115
		A: 255,
	}, nil
}
