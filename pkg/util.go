package pkg

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// PathExists reports whether path exists and is of the expected kind.
// Finding a directory where a file is expected (or the other way round)
// is an error.
func PathExists(path string, isDir bool) (bool, error) {
	stat, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("stat %s: %w", path, err)
	}

	if stat.IsDir() != isDir {
		if isDir {
			return false, fmt.Errorf("%s is not a directory", path)
		}
		return false, fmt.Errorf("%s is a directory", path)
	}
	return true, nil
}
