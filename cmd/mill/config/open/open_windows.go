//go:build windows

package open

import (
	"os"

	winacl "github.com/hectane/go-acl"
)

// NewSafeFile opens filepath as an empty file only the current user
// can access. An existing file is truncated in place.
//
// Windows cannot set an ACL at creation, so the permission is applied
// right after the file exists.
func NewSafeFile(filepath string) (*os.File, error) {
	f, err := os.OpenFile(filepath, os.O_TRUNC|os.O_CREATE|os.O_RDWR, os.FileMode(0600))
	if err != nil {
		return nil, err
	}
	if err := winacl.Chmod(filepath, os.FileMode(0600)); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}
