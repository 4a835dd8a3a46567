package build

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/modelmill/modelmill/cmd/mill/env"
	"github.com/modelmill/modelmill/cmd/mill/subcommands/common"
	"github.com/modelmill/modelmill/pkg/api/types/tables"
	"github.com/modelmill/modelmill/pkg/lifecycle"
	"github.com/youta-t/flarc"
)

type Flag struct {
	Target      string `flag:"target" alias:"t" metavar:"COLUMN" help:"Column of SOURCE the searched models should predict."`
	FromTable   bool   `flag:"from-table" help:"Read SOURCE as the name of a table already resident on the grid, not as a file."`
	Description string `flag:"description" metavar:"TEXT" help:"Description recorded on the automation project."`
	MaxModels   int    `flag:"max-models" metavar:"N" help:"Cap on the number of candidate models the search trains."`
	Server      string `flag:"server" metavar:"SERVER" help:"Compute grid server to stage SOURCE on. Default: gridServer in millenv."`
	Library     string `flag:"library" alias:"l" metavar:"LIBRARY" help:"Grid library to stage SOURCE into. Default: library in millenv."`
}

const (
	ARG_NAME   = "NAME"
	ARG_SOURCE = "SOURCE"
)

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"start an automated model search over a dataset",
		Flag{},
		flarc.Args{
			{
				Name: ARG_NAME, Required: true,
				Help: "name of the automation project to be created",
			},
			{
				Name: ARG_SOURCE, Required: true,
				Help: "CSV file (or, with --from-table, a resident grid table) to search models over",
			},
		},
		common.NewTask(Task()),
		flarc.WithDescription(`
Start an automated pipeline search: the platform stages the dataset,
trains candidate models against the target column and keeps the
champion in the named automation project.

To search models predicting column "churned" of "./train.csv":

	{{ .Command }} --target churned churn-auto ./train.csv

To search over a table already resident on the grid:

	{{ .Command }} --target churned --from-table churn-auto train

The search runs on the platform; "{{ .Command }}" returns as soon as it
is accepted. The automation project is printed to stdout as JSON.
`),
	)
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
		flags := cl.Flags()
		if flags.Target == "" {
			return fmt.Errorf("%w: --target is required", flarc.ErrUsage)
		}

		args := cl.Args()
		name := args[ARG_NAME][0]
		source := args[ARG_SOURCE][0]

		var src lifecycle.DataSource
		if flags.FromTable {
			src = lifecycle.TableSource{Table: tables.Ref{
				Name:     source,
				ServerID: fallback(flags.Server, millEnv.GridServer),
				Library:  fallback(flags.Library, millEnv.Library),
			}}
		} else {
			src = lifecycle.PathSource{Path: source}
		}

		opts := []lifecycle.PipelineOption{}
		if flags.Description != "" {
			opts = append(opts, lifecycle.WithPipelineDescription(flags.Description))
		}
		if 0 < flags.MaxModels {
			opts = append(opts, lifecycle.WithMaxModels(flags.MaxModels))
		}

		stageOpts := []lifecycle.StageOption{}
		if server := fallback(flags.Server, millEnv.GridServer); server != "" {
			stageOpts = append(stageOpts, lifecycle.WithGridServer(server))
		}
		if library := fallback(flags.Library, millEnv.Library); library != "" {
			stageOpts = append(stageOpts, lifecycle.WithLibrary(library))
		}
		if 0 < len(stageOpts) {
			opts = append(opts, lifecycle.WithStaging(stageOpts...))
		}

		proj, err := lifecycle.BuildPipeline(ctx, clients, src, flags.Target, name, opts...)
		if err != nil {
			return err
		}

		logger.Printf("pipeline search %s is %s.\n", proj.Name, proj.State)

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		if err := enc.Encode(proj); err != nil {
			return err
		}
		return nil
	}
}

func fallback(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
