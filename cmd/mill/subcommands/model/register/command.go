package register

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/modelmill/modelmill/cmd/mill/env"
	"github.com/modelmill/modelmill/cmd/mill/subcommands/common"
	"github.com/modelmill/modelmill/pkg/api/types/models"
	"github.com/modelmill/modelmill/pkg/api/types/tables"
	"github.com/modelmill/modelmill/pkg/lifecycle"
	"github.com/youta-t/flarc"
)

type Flag struct {
	Store      string `flag:"store" metavar:"TABLE" help:"Grid table holding the analytic store to register."`
	Descriptor string `flag:"descriptor" metavar:"FILE" help:"JSON file holding a ready-made model descriptor to register."`
	Function   string `flag:"function" metavar:"classification|prediction" help:"Model function recorded with --store."`
	Algorithm  string `flag:"algorithm" metavar:"NAME" help:"Algorithm recorded with --store."`
	Repository string `flag:"repository" metavar:"NAME" help:"Model repository to register into. Default: repository in millenv."`
	Version    string `flag:"version" metavar:"new|latest" help:"Register a brand-new model (new) or a new version of an existing one (latest)."`
	Force      bool   `flag:"force" help:"Create the project when it does not exist."`
	Server     string `flag:"server" metavar:"SERVER" help:"Grid server holding the --store table. Default: gridServer in millenv."`
	Library    string `flag:"library" alias:"l" metavar:"LIBRARY" help:"Grid library holding the --store table. Default: library in millenv."`
}

const (
	ARG_NAME    = "NAME"
	ARG_PROJECT = "PROJECT"
)

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"register a model into the model repository",
		Flag{},
		flarc.Args{
			{
				Name: ARG_NAME, Required: true,
				Help: "name the model is registered under",
			},
			{
				Name: ARG_PROJECT, Required: true,
				Help: "project the model belongs to",
			},
		},
		common.NewTask(Task()),
		flarc.WithDescription(`
Register a model into the model repository, under a project.

The model is taken either from an analytic store resident on the
compute grid, or from a model descriptor file:

	{{ .Command }} --store churn_store "churn scorer" churn
	{{ .Command }} --descriptor ./model.json "churn scorer" churn

With --store, the platform packages the store with its metadata into a
deployable archive; --function and --algorithm annotate that metadata.

The project must exist unless --force allows creating it. The
registered model is printed to stdout as JSON.
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
		if (flags.Store == "") == (flags.Descriptor == "") {
			return fmt.Errorf(
				"%w: exactly one of --store and --descriptor is required", flarc.ErrUsage,
			)
		}

		args := cl.Args()
		name := args[ARG_NAME][0]
		project := args[ARG_PROJECT][0]

		var artifact lifecycle.ModelArtifact
		if flags.Store != "" {
			artifact = lifecycle.StoreTable{
				Table: tables.Ref{
					Name:     flags.Store,
					ServerID: fallback(flags.Server, millEnv.GridServer),
					Library:  fallback(flags.Library, millEnv.Library),
				},
				Descriptor: models.Model{
					Function:  flags.Function,
					Algorithm: flags.Algorithm,
				},
			}
		} else {
			content, err := os.ReadFile(flags.Descriptor)
			if err != nil {
				return fmt.Errorf("%w: failed to read descriptor file (%s)", err, flags.Descriptor)
			}
			descriptor := models.Model{}
			if err := json.Unmarshal(content, &descriptor); err != nil {
				return fmt.Errorf("%w: failed to parse descriptor file (%s)", err, flags.Descriptor)
			}
			artifact = lifecycle.DescriptorModel{Model: descriptor}
		}

		opts := []lifecycle.RegisterOption{}
		if repo := fallback(flags.Repository, millEnv.Repository); repo != "" {
			opts = append(opts, lifecycle.WithRepository(repo))
		}
		if flags.Version != "" {
			opts = append(opts, lifecycle.WithVersion(flags.Version))
		}
		if flags.Force {
			opts = append(opts, lifecycle.Force())
		}

		result, err := lifecycle.Register(ctx, clients, artifact, name, project, opts...)
		if err != nil {
			return err
		}

		for _, w := range result.Warnings {
			logger.Printf("WARNING: %s", w)
		}
		logger.Printf("registered: %s (model id: %s)", result.Model.Name, result.Model.ID)

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		if err := enc.Encode(result.Model); err != nil {
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
