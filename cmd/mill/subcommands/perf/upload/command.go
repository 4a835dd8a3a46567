package upload

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/modelmill/modelmill/cmd/mill/env"
	"github.com/modelmill/modelmill/cmd/mill/subcommands/common"
	"github.com/modelmill/modelmill/pkg/dataset"
	"github.com/modelmill/modelmill/pkg/lifecycle"
	"github.com/youta-t/flarc"
)

type Flag struct {
	NoRun bool `flag:"no-run" help:"Only stage the data; do not run the performance definition over it."`
}

const (
	ARG_MODEL  = "MODEL"
	ARG_LABEL  = "LABEL"
	ARG_SOURCE = "SOURCE"
)

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"upload labeled performance data for a monitored model",
		Flag{},
		flarc.Args{
			{
				Name: ARG_MODEL, Required: true,
				Help: "name or id of the monitored model",
			},
			{
				Name: ARG_LABEL, Required: true,
				Help: "period label the data belongs to, like q1 or 2026-08",
			},
			{
				Name: ARG_SOURCE, Required: true,
				Help: "CSV file with the labeled performance data",
			},
		},
		common.NewTask(Task()),
		flarc.WithDescription(`
Stage labeled performance data where the model's performance
definition expects it, then run the definition over it.

To feed the "q1" scoring results back to model "churn scorer":

	{{ .Command }} "churn scorer" q1 ./scored-q1.csv

The model's project must be set up for performance monitoring; each
unmet requirement is reported before anything is uploaded. The staged
table reference is printed to stdout as JSON.
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
		args := cl.Args()
		model := args[ARG_MODEL][0]
		label := args[ARG_LABEL][0]
		source := args[ARG_SOURCE][0]

		f, err := os.Open(source)
		if err != nil {
			return fmt.Errorf("%w: failed to open %s", err, source)
		}
		defer f.Close()

		frame, err := dataset.ReadCSV(f)
		if err != nil {
			return fmt.Errorf("%w: failed to read %s", err, source)
		}

		opts := []lifecycle.PerformanceOption{}
		if cl.Flags().NoRun {
			opts = append(opts, lifecycle.WithoutRefresh())
		}

		ref, err := lifecycle.UploadPerformance(ctx, clients, frame, model, label, opts...)
		if err != nil {
			return err
		}

		logger.Printf("performance data staged: %s -> %s.%s", source, ref.Library, ref.Name)

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		if err := enc.Encode(ref); err != nil {
			return err
		}
		return nil
	}
}
