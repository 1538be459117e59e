// Package imageio is the decode/encode boundary for the transform pipeline.
// Codec selection is driven by the file extension; the set of supported
// extensions is fixed and case-insensitive.
package imageio

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	// Decode-only registration; webp encoding goes through chai2010/webp.
	_ "golang.org/x/image/webp"
)

// SupportedExtensions lists the file extensions accepted for input and output.
var SupportedExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff", ".tif", ".webp"}

// DefaultJPEGQuality is used when encoding JPEG output.
const DefaultJPEGQuality = 90

// IsSupported reports whether the path has a supported image extension.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// DecodeError indicates a source or watermark image could not be decoded.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError indicates a result could not be serialized to the destination format.
type EncodeError struct {
	Path string
	Err  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s: %v", e.Path, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// Load opens and decodes an image file.
func Load(path string) (image.Image, error) {
	if !IsSupported(path) {
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("unsupported format: %s", filepath.Ext(path))}
	}

	f, err := os.Open(path) //nolint:gosec // G304: reading user-provided image path is expected
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	return img, nil
}

// Save encodes an image to the format implied by the destination extension.
func Save(img image.Image, path string) error {
	f, err := os.Create(path) //nolint:gosec // G304: writing user-chosen output path is expected
	if err != nil {
		return &EncodeError{Path: path, Err: err}
	}

	if err := Encode(f, img, path); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return &EncodeError{Path: path, Err: err}
	}
	return nil
}

// Encode writes an image to w in the format implied by the path's extension.
func Encode(w io.Writer, img image.Image, path string) error {
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: DefaultJPEGQuality})
	case ".png":
		err = png.Encode(w, img)
	case ".gif":
		err = gif.Encode(w, img, nil)
	case ".bmp":
		err = bmp.Encode(w, img)
	case ".tiff", ".tif":
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case ".webp":
		err = webp.Encode(w, img, &webp.Options{Lossless: true})
	default:
		err = fmt.Errorf("unsupported format: %s", filepath.Ext(path))
	}
	if err != nil {
		return &EncodeError{Path: path, Err: err}
	}
	return nil
}

// EncodePNG serializes an image as PNG bytes, used for previews.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, &EncodeError{Path: "preview.png", Err: err}
	}
	return buf.Bytes(), nil
}

// FitPreview scales an image down so neither dimension exceeds maxEdge,
// preserving aspect ratio. Images already within bounds are returned as-is.
func FitPreview(img image.Image, maxEdge int) image.Image {
	if maxEdge <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() <= maxEdge && b.Dy() <= maxEdge {
		return img
	}
	return imaging.Fit(img, maxEdge, maxEdge, imaging.Lanczos)
}
