package data

import (
	data_push "github.com/modelmill/modelmill/cmd/mill/subcommands/data/push"
	"github.com/youta-t/flarc"
)

// New is the `mill data` command group.
func New() (flarc.Command, error) {
	push, err := data_push.New()
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Manipulate data on the compute grid.",
		struct{}{},
		flarc.WithSubcommand("push", push),
	)
}
