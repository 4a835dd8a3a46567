package perf

import (
	perf_upload "github.com/modelmill/modelmill/cmd/mill/subcommands/perf/upload"
	"github.com/youta-t/flarc"
)

// New is the `mill perf` command group.
func New() (flarc.Command, error) {
	upload, err := perf_upload.New()
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Feed performance monitoring of published models.",
		struct{}{},
		flarc.WithSubcommand("upload", upload),
	)
}
