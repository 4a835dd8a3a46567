package version

import (
	"context"
	"fmt"

	"github.com/modelmill/modelmill/pkg/buildtime"
	"github.com/youta-t/flarc"
)

// New is the `mill version` command.
func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Print the version of this command.",
		struct{}{},
		flarc.Args{},
		func(ctx context.Context, cl flarc.Commandline[struct{}], _ []any) error {
			fmt.Fprintln(cl.Stdout(), buildtime.VersionString())
			return nil
		},
	)
}
