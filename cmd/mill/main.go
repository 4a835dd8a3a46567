package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path"

	"github.com/modelmill/modelmill/cmd/mill/subcommands/common"
	subdata "github.com/modelmill/modelmill/cmd/mill/subcommands/data"
	subinit "github.com/modelmill/modelmill/cmd/mill/subcommands/init"
	"github.com/modelmill/modelmill/cmd/mill/subcommands/logger"
	submodel "github.com/modelmill/modelmill/cmd/mill/subcommands/model"
	subperf "github.com/modelmill/modelmill/cmd/mill/subcommands/perf"
	subpipeline "github.com/modelmill/modelmill/cmd/mill/subcommands/pipeline"
	subver "github.com/modelmill/modelmill/cmd/mill/subcommands/version"
	"github.com/modelmill/modelmill/pkg/utils/try"
	"github.com/youta-t/flarc"
)

func main() {
	name := path.Base(os.Args[0])
	logger := logger.Default()
	logger.SetPrefix(fmt.Sprintf("[%s] ", name))

	ctx, cancel := signal.NotifyContext(
		context.Background(), os.Interrupt, os.Kill,
	)
	defer cancel()

	cf := try.To(common.Flags(".")).OrFatal(logger)
	init := try.To(subinit.New()).OrFatal(logger)
	data := try.To(subdata.New()).OrFatal(logger)
	pipeline := try.To(subpipeline.New()).OrFatal(logger)
	model := try.To(submodel.New()).OrFatal(logger)
	perf := try.To(subperf.New()).OrFatal(logger)
	version := try.To(subver.New()).OrFatal(logger)

	mill := try.To(
		flarc.NewCommandGroup(
			"Modelmill commandline interface",
			cf,
			flarc.WithSubcommand("init", init),
			flarc.WithSubcommand("data", data),
			flarc.WithSubcommand("pipeline", pipeline),
			flarc.WithSubcommand("model", model),
			flarc.WithSubcommand("perf", perf),
			flarc.WithSubcommand("version", version),
		),
	).OrFatal(logger)

	os.Exit(flarc.Run(ctx, mill, flarc.WithHelp(true)))
}
