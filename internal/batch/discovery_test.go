package batch

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

func TestDiscoverImages(t *testing.T) {
	dir := testutil.CreateTempDir(t)

	img := testutil.CreateTestImage(4, 4, color.White)
	testutil.SaveImage(t, img, filepath.Join(dir, "b.png"))
	testutil.SaveImage(t, img, filepath.Join(dir, "a.jpg"))
	testutil.SaveImage(t, img, filepath.Join(dir, "c.PNG"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.png"), 0o750))

	files, err := DiscoverImages(dir)
	require.NoError(t, err)

	want := []string{
		filepath.Join(dir, "a.jpg"),
		filepath.Join(dir, "b.png"),
		filepath.Join(dir, "c.PNG"),
	}
	assert.Equal(t, want, files, "files should be sorted and filtered")
}

func TestDiscoverImages_EmptyFolder(t *testing.T) {
	dir := testutil.CreateTempDir(t)

	files, err := DiscoverImages(dir)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestDiscoverImages_MissingFolder(t *testing.T) {
	_, err := DiscoverImages("/nonexistent/folder")

	var notFound *NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "/nonexistent/folder", notFound.Path)
}

func TestDiscoverImages_PathIsAFile(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	path := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	_, err := DiscoverImages(path)

	var notFound *NotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestDiscoverImages_IgnoresSubdirectories(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o750))
	testutil.SaveImage(t, testutil.CreateTestImage(4, 4, color.White), filepath.Join(sub, "deep.png"))

	files, err := DiscoverImages(dir)
	require.NoError(t, err)
	assert.Empty(t, files, "images in subfolders are not picked up")
}
