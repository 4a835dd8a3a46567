package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/modelmill/modelmill/cmd/mill/env"
	"github.com/modelmill/modelmill/cmd/mill/subcommands/common"
	"github.com/modelmill/modelmill/pkg/lifecycle"
	"github.com/youta-t/flarc"
)

type Flag struct {
	Name    string `flag:"name" alias:"n" metavar:"MODULE" help:"Name the published module takes on the destination. Default: derived from the model name."`
	Replace bool   `flag:"replace" help:"Replace a module already published under the same name."`
}

const (
	ARG_MODEL       = "MODEL"
	ARG_DESTINATION = "DESTINATION"
)

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"publish a registered model to a scoring destination",
		Flag{},
		flarc.Args{
			{
				Name: ARG_MODEL, Required: true,
				Help: "name or id of the registered model to publish",
			},
			{
				Name: ARG_DESTINATION, Required: false,
				Help: "publishing destination. Default: destination in millenv.",
			},
		},
		common.NewTask(Task()),
		flarc.WithDescription(`
Publish a registered model to a scoring destination and wait for the
publish job to settle.

To publish model "churn scorer" to destination "maslocal":

	{{ .Command }} "churn scorer" maslocal

To replace a module already published under the same name:

	{{ .Command }} --replace "churn scorer" maslocal

A publish to the micro-analytic service resolves into a callable
module, printed to stdout as JSON with its callable steps. Publishing
anywhere else prints a link to the published resource.
`),
	)
}

type publishedModule struct {
	Module string   `json:"module"`
	Steps  []string `json:"steps"`
}

func Task() common.Task[Flag] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		millEnv env.MillEnv,
		clients lifecycle.Clients,
		cl flarc.Commandline[Flag],
		params []any,
	) error {
		args := cl.Args()
		model := args[ARG_MODEL][0]

		destination := millEnv.Destination
		if d := args[ARG_DESTINATION]; 0 < len(d) {
			destination = d[0]
		}
		if destination == "" {
			return fmt.Errorf(
				"%w: DESTINATION is required ( or set destination in millenv )", flarc.ErrUsage,
			)
		}

		flags := cl.Flags()
		opts := []lifecycle.PublishOption{}
		if flags.Name != "" {
			opts = append(opts, lifecycle.WithModuleName(flags.Name))
		}
		if flags.Replace {
			opts = append(opts, lifecycle.WithReplace())
		}

		result, err := lifecycle.Publish(ctx, clients, model, destination, opts...)
		if err != nil {
			return err
		}

		logger.Printf("publish job %s is %s.", result.Job.ID, result.Job.State)

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		if m := result.Module; m != nil {
			return enc.Encode(publishedModule{
				Module: m.Module.Name,
				Steps:  m.StepIDs(),
			})
		}
		if result.Link != nil {
			return enc.Encode(result.Link)
		}
		return enc.Encode(result.Job)
	}
}
