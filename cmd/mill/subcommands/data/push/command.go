package push

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	pb "github.com/cheggaaa/pb/v3"

	"github.com/modelmill/modelmill/cmd/mill/env"
	"github.com/modelmill/modelmill/cmd/mill/subcommands/common"
	"github.com/modelmill/modelmill/pkg/dataset"
	"github.com/modelmill/modelmill/pkg/lifecycle"
	"github.com/youta-t/flarc"
)

type Flag struct {
	Name    string `flag:"name" alias:"n" metavar:"TABLE" help:"Table name on the grid. Default: the source file name without its extension."`
	Server  string `flag:"server" metavar:"SERVER" help:"Compute grid server to stage on. Default: gridServer in millenv."`
	Library string `flag:"library" alias:"l" metavar:"LIBRARY" help:"Grid library to stage into. Default: library in millenv."`
}

const ARG_SOURCE = "SOURCE"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"push (stage) CSV data onto the compute grid",
		Flag{},
		flarc.Args{
			{
				Name: ARG_SOURCE, Required: true, Repeatable: true,
				Help: "CSV file to be staged onto the compute grid",
			},
		},
		common.NewTask(Task()),
		flarc.WithDescription(`
Stage local CSV files onto the compute grid, where platform jobs can read them.

To stage a file "./data/train.csv" as table "train":

	{{ .Command }} ./data/train.csv

To stage it under another table name:

	{{ .Command }} --name census ./data/train.csv

To stage files into a specific grid server and library:

	{{ .Command }} --server grid-shared --library modeling ./data/train.csv ./data/test.csv

Defaults for --server and --library are taken from the millenv file.
The canonical reference of each staged table is printed to stdout as JSON.
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
		sources := cl.Args()[ARG_SOURCE]

		if flags.Name != "" && 1 < len(sources) {
			return fmt.Errorf(
				"%w: --name cannot be used with more than one SOURCE", flarc.ErrUsage,
			)
		}

		opts := []lifecycle.StageOption{}
		if server := fallback(flags.Server, millEnv.GridServer); server != "" {
			opts = append(opts, lifecycle.WithGridServer(server))
		}
		if library := fallback(flags.Library, millEnv.Library); library != "" {
			opts = append(opts, lifecycle.WithLibrary(library))
		}

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")

		total := len(sources)
		for n, s := range sources {
			stat, err := os.Stat(s)
			if err != nil {
				logger.Printf("%s: %s -- skipped", err, s)
				continue
			}

			name := flags.Name
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(s), filepath.Ext(s))
			}

			logger.Printf("[[%d/%d]] staging... %s\n", n+1, total, s)
			frame, err := readFrame(s, stat.Size(), cl.Stderr())
			if err != nil {
				return fmt.Errorf("%w: failed to read %s", err, s)
			}

			ref, err := lifecycle.Stage(
				ctx, clients,
				lifecycle.FrameSource{Frame: frame, TableName: name},
				opts...,
			)
			if err != nil {
				return err
			}

			logger.Printf("staged: %s -> %s.%s", s, ref.Library, ref.Name)
			if err := enc.Encode(ref); err != nil {
				return err
			}
		}

		return nil
	}
}

// readFrame parses the CSV file into a frame, ticking a progress bar
// on w as the file is consumed.
func readFrame(path string, size int64, w io.Writer) (*dataset.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	bar := pb.New64(size)
	bar.Set(pb.Bytes, true)
	bar.SetWriter(w)
	if err := bar.Err(); err != nil {
		return nil, err
	}

	bar.Start()
	defer bar.Finish()

	return dataset.ReadCSV(bar.NewProxyReader(f))
}

func fallback(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
