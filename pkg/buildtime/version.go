// Package buildtime exposes the version stamped into the binary.
package buildtime

import (
	_ "embed"
	"fmt"
	"strings"
)

//go:embed VERSION
var version string

//go:embed revision
var revision string

// VersionString renders the release version and the git revision in
// one line, the shape `mill version` prints.
func VersionString() string {
	return fmt.Sprintf(
		"%s (commit: %s)",
		strings.TrimSpace(version), strings.TrimSpace(revision),
	)
}
