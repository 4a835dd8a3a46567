package lifecycle

import (
	"runtime/debug"
	"strings"

	"github.com/modelmill/modelmill/pkg/utils"
)

// PackageProbe lists the packages of the running program's build as
// "name==version" requirement strings.
type PackageProbe interface {
	List() ([]string, error)
}

// BuildInfoPackages reads the package inventory from the running
// binary's embedded build information. Binaries built without module
// support report none.
var BuildInfoPackages PackageProbe = buildInfoProbe{}

type buildInfoProbe struct{}

func (buildInfoProbe) List() ([]string, error) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return nil, nil
	}

	requirements := make([]string, 0, len(info.Deps))
	for _, dep := range info.Deps {
		if dep == nil {
			continue
		}
		requirements = append(requirements, dep.Path+"=="+dep.Version)
	}
	return requirements, nil
}

// pinnedPackages keeps the requirement strings pinning exactly one
// version. Ranges and malformed entries are dropped.
func pinnedPackages(requirements []string) []string {
	return utils.Filter(requirements, func(r string) bool {
		return strings.Count(r, "==") == 1
	})
}

// splitRequirement splits "name==version".
func splitRequirement(r string) (name string, version string) {
	name, version, _ = strings.Cut(r, "==")
	return
}
