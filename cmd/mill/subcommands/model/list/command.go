package list

import (
	"context"
	"encoding/json"
	"log"

	"github.com/olekukonko/tablewriter"

	"github.com/modelmill/modelmill/cmd/mill/env"
	"github.com/modelmill/modelmill/cmd/mill/subcommands/common"
	"github.com/modelmill/modelmill/pkg/api/types/models"
	"github.com/modelmill/modelmill/pkg/lifecycle"
	"github.com/modelmill/modelmill/pkg/utils"
	"github.com/youta-t/flarc"
)

type Flag struct {
	Project string `flag:"project" alias:"p" metavar:"NAME" help:"List only the models of this project (name or id)."`
	JSON    bool   `flag:"json" help:"Print models as JSON instead of a table."`
}

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"list models registered in the model repository",
		Flag{},
		flarc.Args{},
		common.NewTask(Task()),
		flarc.WithDescription(`
List models registered in the model repository.

To list every model:

	{{ .Command }}

To list the models of project "churn":

	{{ .Command }} --project churn

Models are rendered as a table. Pass --json for the raw records.
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

		projectID := ""
		if flags.Project != "" {
			p, err := clients.Repository.GetProject(ctx, flags.Project)
			if err != nil {
				return err
			}
			projectID = p.ID
		}

		found, err := clients.Repository.ListModels(ctx, projectID)
		if err != nil {
			return err
		}

		if flags.JSON {
			enc := json.NewEncoder(cl.Stdout())
			enc.SetIndent("", "    ")
			return enc.Encode(found)
		}

		headers := []string{"Id", "Name", "Version", "Function", "Modified"}
		rows := utils.Map(found, func(m models.Model) []string {
			modified := ""
			if m.ModifiedAt != nil {
				modified = m.ModifiedAt.String()
			}
			return []string{m.ID, m.Name, m.ModelVersionName, m.Function, modified}
		})

		table := tablewriter.NewWriter(cl.Stdout())
		table.SetHeader(headers)
		table.AppendBulk(rows)
		table.Render()
		return nil
	}
}
