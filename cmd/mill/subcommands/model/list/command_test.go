package list_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/modelmill/modelmill/cmd/mill/env"
	"github.com/modelmill/modelmill/cmd/mill/subcommands/internal/commandline"
	"github.com/modelmill/modelmill/cmd/mill/subcommands/logger"
	"github.com/modelmill/modelmill/cmd/mill/subcommands/model/list"
	"github.com/modelmill/modelmill/pkg/api/types/models"
	"github.com/modelmill/modelmill/pkg/api/types/projects"
	"github.com/modelmill/modelmill/pkg/lifecycle"
	"github.com/modelmill/modelmill/pkg/rest/mock"
)

func TestCommand(t *testing.T) {
	registered := []models.Model{
		{
			ID: "model-1", Name: "churn scorer",
			ModelVersionName: "2.0", Function: models.FunctionClassification,
		},
		{
			ID: "model-2", Name: "ltv estimator",
			ModelVersionName: "1.0", Function: models.FunctionPrediction,
		},
	}

	t.Run("it renders registered models as a table", func(t *testing.T) {
		ctx := context.Background()

		repo := mock.NewRepository(t)
		repo.Impl.ListModels = func(_ context.Context, projectID string) ([]models.Model, error) {
			if projectID != "" {
				t.Errorf("unexpected project filter: %s", projectID)
			}
			return registered, nil
		}

		stdout := new(strings.Builder)
		cl := commandline.MockCommandline[list.Flag]{
			Fullname_: "mill model list",
			Flags_:    list.Flag{},
			Args_:     map[string][]string{},
			Stdout_:   stdout,
			Stderr_:   new(strings.Builder),
		}

		err := list.Task()(
			ctx, logger.Null(), env.MillEnv{},
			lifecycle.Clients{Repository: repo}, cl, []any{},
		)
		if err != nil {
			t.Fatalf("unexpected error: %+v", err)
		}

		rendered := stdout.String()
		for _, want := range []string{
			"model-1", "churn scorer", "2.0", "classification",
			"model-2", "ltv estimator", "prediction",
		} {
			if !strings.Contains(rendered, want) {
				t.Errorf("table should present %q:\n%s", want, rendered)
			}
		}
	})

	t.Run("--project narrows the listing by the resolved project id", func(t *testing.T) {
		ctx := context.Background()

		repo := mock.NewRepository(t)
		repo.Impl.GetProject = func(_ context.Context, nameOrID string) (*projects.Project, error) {
			if nameOrID != "churn" {
				t.Errorf("unexpected project lookup: %s", nameOrID)
			}
			return &projects.Project{ID: "proj-1", Name: "churn"}, nil
		}
		repo.Impl.ListModels = func(_ context.Context, projectID string) ([]models.Model, error) {
			return registered[:1], nil
		}

		cl := commandline.MockCommandline[list.Flag]{
			Fullname_: "mill model list",
			Flags_:    list.Flag{Project: "churn"},
			Args_:     map[string][]string{},
			Stdout_:   new(strings.Builder),
			Stderr_:   new(strings.Builder),
		}

		err := list.Task()(
			ctx, logger.Null(), env.MillEnv{},
			lifecycle.Clients{Repository: repo}, cl, []any{},
		)
		if err != nil {
			t.Fatalf("unexpected error: %+v", err)
		}

		if len(repo.Calls.ListModels) != 1 || repo.Calls.ListModels[0] != "proj-1" {
			t.Errorf("models should be listed for the resolved project: %+v", repo.Calls.ListModels)
		}
	})

	t.Run("--json prints the raw records", func(t *testing.T) {
		ctx := context.Background()

		repo := mock.NewRepository(t)
		repo.Impl.ListModels = func(context.Context, string) ([]models.Model, error) {
			return registered, nil
		}

		stdout := new(strings.Builder)
		cl := commandline.MockCommandline[list.Flag]{
			Fullname_: "mill model list",
			Flags_:    list.Flag{JSON: true},
			Args_:     map[string][]string{},
			Stdout_:   stdout,
			Stderr_:   new(strings.Builder),
		}

		err := list.Task()(
			ctx, logger.Null(), env.MillEnv{},
			lifecycle.Clients{Repository: repo}, cl, []any{},
		)
		if err != nil {
			t.Fatalf("unexpected error: %+v", err)
		}

		var decoded []models.Model
		if err := json.Unmarshal([]byte(stdout.String()), &decoded); err != nil {
			t.Fatalf("failed to decode stdout: %v", err)
		}
		if len(decoded) != 2 || !decoded[0].Equal(&registered[0]) || !decoded[1].Equal(&registered[1]) {
			t.Errorf("unexpected records on stdout: %+v", decoded)
		}
	})
}
