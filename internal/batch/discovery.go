package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/MeKo-Tech/photoflow/internal/imageio"
)

// DiscoverImages lists the supported image files that are direct children
// of folder, sorted by filename. The ordering is deterministic and stable
// across calls for the same folder contents. A folder with no matching
// files yields an empty slice, not an error; a missing folder or a path
// that is not a directory yields a NotFoundError.
func DiscoverImages(folder string) ([]string, error) {
	info, err := os.Stat(folder)
	if err != nil || !info.IsDir() {
		return nil, &NotFoundError{Path: folder}
	}

	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("cannot read folder %s: %w", folder, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if imageio.IsSupported(entry.Name()) {
			files = append(files, filepath.Join(folder, entry.Name()))
		}
	}
	sort.Strings(files)

	return files, nil
}
