package imageio

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/photoflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSupported(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"photo.jpg", true},
		{"photo.JPEG", true},
		{"photo.png", true},
		{"scan.tiff", true},
		{"scan.tif", true},
		{"anim.gif", true},
		{"img.bmp", true},
		{"modern.webp", true},
		{"/some/dir/photo.PNG", true},
		{"document.pdf", false},
		{"notes.txt", false},
		{"noextension", false},
		{"archive.jpg.zip", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSupported(tt.path))
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	img := testutil.CreateGradientImage(64, 48)

	for _, ext := range []string{".png", ".jpg", ".bmp", ".tiff", ".gif", ".webp"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(dir, "out"+ext)

			require.NoError(t, Save(img, path))

			got, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, 64, got.Bounds().Dx())
			assert.Equal(t, 48, got.Bounds().Dy())
		})
	}
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	_, err := Load("document.pdf")

	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, "document.pdf", decodeErr.Path)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/photo.jpg")

	var decodeErr *DecodeError
	assert.True(t, errors.As(err, &decodeErr))
}

func TestLoad_CorruptData(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	path := filepath.Join(dir, "broken.jpg")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o600))

	_, err := Load(path)

	var decodeErr *DecodeError
	assert.True(t, errors.As(err, &decodeErr))
}

func TestSave_UnsupportedExtensionLeavesNoFile(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	path := filepath.Join(dir, "out.xyz")
	img := testutil.CreateTestImage(8, 8, color.White)

	err := Save(img, path)

	var encodeErr *EncodeError
	require.True(t, errors.As(err, &encodeErr))
	assert.False(t, testutil.FileExists(path), "failed save should not leave a partial file")
}

func TestEncodePNG(t *testing.T) {
	img := testutil.CreateTestImage(16, 16, color.Black)

	data, err := EncodePNG(img)
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	// PNG magic number.
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data[:4])
}

func TestFitPreview(t *testing.T) {
	big := testutil.CreateTestImage(1600, 1200, color.White)
	small := testutil.CreateTestImage(400, 300, color.White)

	fitted := FitPreview(big, 800)
	assert.Equal(t, 800, fitted.Bounds().Dx())
	assert.Equal(t, 600, fitted.Bounds().Dy())

	landscape := FitPreview(testutil.CreateTestImage(1000, 800, color.White), 400)
	assert.Equal(t, 400, landscape.Bounds().Dx())
	assert.Equal(t, 320, landscape.Bounds().Dy())

	same := FitPreview(small, 800)
	assert.Equal(t, 400, same.Bounds().Dx())

	untouched := FitPreview(big, 0)
	assert.Equal(t, 1600, untouched.Bounds().Dx())
}
