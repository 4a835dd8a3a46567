package model

import (
	model_list "github.com/modelmill/modelmill/cmd/mill/subcommands/model/list"
	model_publish "github.com/modelmill/modelmill/cmd/mill/subcommands/model/publish"
	model_register "github.com/modelmill/modelmill/cmd/mill/subcommands/model/register"
	"github.com/youta-t/flarc"
)

// New is the `mill model` command group.
func New() (flarc.Command, error) {
	register, err := model_register.New()
	if err != nil {
		return nil, err
	}

	publish, err := model_publish.New()
	if err != nil {
		return nil, err
	}

	list, err := model_list.New()
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Manipulate models in the model repository.",
		struct{}{},
		flarc.WithSubcommand("register", register),
		flarc.WithSubcommand("publish", publish),
		flarc.WithSubcommand("list", list),
	)
}
