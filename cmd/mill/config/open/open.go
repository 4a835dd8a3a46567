//go:build !windows

package open

import "os"

// NewSafeFile opens filepath as an empty file only the current user
// can access. An existing file is truncated in place.
func NewSafeFile(filepath string) (*os.File, error) {
	return os.OpenFile(filepath, os.O_TRUNC|os.O_CREATE|os.O_RDWR, os.FileMode(0600))
}
