package internal

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// ListDirectories returns the names of the subdirectories of root in
// lexical order. Symbolic links are followed; dangling links are skipped.
func ListDirectories(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	dirs := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
			continue
		}
		if entry.Type()&fs.ModeSymlink == 0 {
			continue
		}

		info, err := os.Stat(filepath.Join(root, entry.Name()))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		if info.IsDir() {
			dirs = append(dirs, entry.Name())
		}
	}
	return dirs, nil
}
