package pipeline

import (
	pipeline_build "github.com/modelmill/modelmill/cmd/mill/subcommands/pipeline/build"
	"github.com/youta-t/flarc"
)

// New is the `mill pipeline` command group.
func New() (flarc.Command, error) {
	build, err := pipeline_build.New()
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Run automated model searches.",
		struct{}{},
		flarc.WithSubcommand("build", build),
	)
}
