package utils

import (
	"errors"
	"os"
	"path/filepath"
)

var ErrSearchFile = errors.New("could not search file")

// SearchFilePathtoUpward looks for fileName in root, then in each
// ancestor directory in turn. Reaching the filesystem root without a
// hit is ErrSearchFile.
func SearchFilePathtoUpward(root string, fileName string) (*string, error) {
	for dir := root; ; {
		path := filepath.Join(dir, fileName)
		if _, err := os.Stat(path); err == nil {
			return &path, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, ErrSearchFile
		}
		dir = parent
	}
}
