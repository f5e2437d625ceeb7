package platform

import (
	"errors"
	"os"
	"path/filepath"
)

// ErrRootNotFound is returned by FindRoot when no marker exists up to the
// filesystem root.
var ErrRootNotFound = errors.New("root not found")

// rootMarkers identify a receipt project directory.
var rootMarkers = []string{ConfigFileName, ".receipt"}

// FindRoot walks upwards from startDir and returns the first directory
// holding a receipt.yaml file or a .receipt directory.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		for _, marker := range rootMarkers {
			if hasFile(dir, marker) {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", ErrRootNotFound
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
