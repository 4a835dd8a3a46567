package upload_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelmill/modelmill/cmd/mill/env"
	"github.com/modelmill/modelmill/cmd/mill/subcommands/internal/commandline"
	"github.com/modelmill/modelmill/cmd/mill/subcommands/logger"
	"github.com/modelmill/modelmill/cmd/mill/subcommands/perf/upload"
	"github.com/modelmill/modelmill/pkg/api/types/models"
	"github.com/modelmill/modelmill/pkg/api/types/performance"
	"github.com/modelmill/modelmill/pkg/api/types/projects"
	"github.com/modelmill/modelmill/pkg/api/types/tables"
	"github.com/modelmill/modelmill/pkg/lifecycle"
	"github.com/modelmill/modelmill/pkg/rest"
	"github.com/modelmill/modelmill/pkg/rest/mock"
)

func TestCommand(t *testing.T) {
	type When struct {
		Flag upload.Flag
	}
	type Then struct {
		DefinitionRuns int
	}

	theory := func(when When, then Then) func(*testing.T) {
		return func(t *testing.T) {
			ctx := context.Background()

			source := filepath.Join(t.TempDir(), "scored-q1.csv")
			if err := os.WriteFile(source, []byte("age,EM_EVENTPROBABILITY\n39,0.87\n"), 0644); err != nil {
				t.Fatal(err)
			}

			repo := mock.NewRepository(t)
			repo.Impl.GetModel = func(_ context.Context, nameOrID string) (*models.Model, error) {
				if nameOrID != "churn scorer" {
					t.Errorf("unmatch model:%s, expected:churn scorer", nameOrID)
				}
				return &models.Model{ID: "model-1", Name: "churn scorer", ProjectID: "proj-1"}, nil
			}
			repo.Impl.GetProject = func(context.Context, string) (*projects.Project, error) {
				return &projects.Project{
					ID: "proj-1", Name: "churn",
					Function:                 "classification",
					TargetLevel:              models.TargetLevelBinary,
					EventProbabilityVariable: "EM_EVENTPROBABILITY",
				}, nil
			}

			mgmt := mock.NewManagement(t)
			mgmt.Impl.ListPerformanceDefinitions = func(context.Context) ([]performance.Definition, error) {
				return []performance.Definition{{
					ID: "def-1", Name: "churn quarterly",
					ProjectIDs:      []string{"proj-1"},
					GridServerID:    "grid-perf",
					DataLibrary:     "monitor",
					DataPrefix:      "PERF",
					InputVariables:  []string{"age"},
					OutputVariables: []string{"EM_EVENTPROBABILITY"},
				}}, nil
			}
			mgmt.Impl.ExecutePerformanceDefinition = func(context.Context, string) error { return nil }

			grid := mock.NewGrid(t)
			grid.Impl.ListTables = func(context.Context, string) ([]string, error) {
				return []string{}, nil
			}
			grid.Impl.UploadTable = func(_ context.Context, _ []byte, name string, library string) (*tables.Ref, error) {
				return &tables.Ref{
					Name: name, Library: library, ServerID: "grid-perf",
					URI: "/dataTables/grid~grid-perf~" + library + "/tables/" + name,
				}, nil
			}

			clients := lifecycle.Clients{
				Repository: repo,
				Management: mgmt,
				Grid:       func(string) (rest.Grid, error) { return grid, nil },
			}

			stdout := new(strings.Builder)
			cl := commandline.MockCommandline[upload.Flag]{
				Fullname_: "mill perf upload",
				Flags_:    when.Flag,
				Args_: map[string][]string{
					upload.ARG_MODEL:  {"churn scorer"},
					upload.ARG_LABEL:  {"q1"},
					upload.ARG_SOURCE: {source},
				},
				Stdout_: stdout,
				Stderr_: new(strings.Builder),
			}

			if err := upload.Task()(ctx, logger.Null(), env.MillEnv{}, clients, cl, []any{}); err != nil {
				t.Fatalf("unexpected error: %+v", err)
			}

			uploaded := grid.Calls.UploadTable[0]
			if uploaded.Name != "PERF_1_q1_model-1" || uploaded.Library != "monitor" {
				t.Errorf("unexpected upload: %+v", uploaded)
			}
			if !strings.Contains(string(uploaded.Content), "age,EM_EVENTPROBABILITY") {
				t.Errorf("uploaded content is not the CSV: %s", string(uploaded.Content))
			}
			if len(mgmt.Calls.ExecutePerformanceDefinition) != then.DefinitionRuns {
				t.Errorf(
					"unmatch definition runs:%d, expected:%d",
					len(mgmt.Calls.ExecutePerformanceDefinition), then.DefinitionRuns,
				)
			}

			var ref tables.Ref
			if err := json.Unmarshal([]byte(stdout.String()), &ref); err != nil {
				t.Fatalf("failed to decode stdout: %v", err)
			}
			if ref.Name != "PERF_1_q1_model-1" || ref.Library != "monitor" {
				t.Errorf("unexpected staged reference: %+v", ref)
			}
		}
	}

	t.Run("it stages the file for the model and runs the definition", theory(
		When{}, Then{DefinitionRuns: 1},
	))

	t.Run("--no-run stages the data without running the definition", theory(
		When{Flag: upload.Flag{NoRun: true}}, Then{DefinitionRuns: 0},
	))
}

func TestCommand_MissingSource(t *testing.T) {
	t.Run("a missing file is an error before anything is uploaded", func(t *testing.T) {
		ctx := context.Background()

		clients := lifecycle.Clients{
			Grid: func(string) (rest.Grid, error) {
				t.Fatal("no grid connection should be opened")
				return nil, nil
			},
		}

		cl := commandline.MockCommandline[upload.Flag]{
			Fullname_: "mill perf upload",
			Args_: map[string][]string{
				upload.ARG_MODEL:  {"churn scorer"},
				upload.ARG_LABEL:  {"q1"},
				upload.ARG_SOURCE: {filepath.Join(t.TempDir(), "no-such.csv")},
			},
			Stdout_: new(strings.Builder),
			Stderr_: new(strings.Builder),
		}

		err := upload.Task()(ctx, logger.Null(), env.MillEnv{}, clients, cl, []any{})
		if err == nil {
			t.Error("the missing file should be reported")
		}
	})
}
