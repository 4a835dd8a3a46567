package handlers_test

import (
	"net/http"
	"testing"

	"github.com/modelmill/modelmill/internal/sandbox"
	httptestutil "github.com/modelmill/modelmill/internal/testutils/http"
	"github.com/modelmill/modelmill/pkg/api/types/models"
	"github.com/modelmill/modelmill/pkg/api/types/projects"
	"github.com/modelmill/modelmill/pkg/api/types/publish"
	"github.com/modelmill/modelmill/pkg/utils/try"
)

// newBox builds the sandbox the handler tests share. Jobs settle on
// their first poll so tests need not loop.
func newBox() *sandbox.Sandbox {
	return sandbox.New(sandbox.Seed{
		Accounts: []sandbox.Account{{User: "miller", Password: "grist"}},
		Repositories: []sandbox.SeedRepository{
			{Name: "Public", Default: true},
		},
		Destinations: []publish.Destination{
			{Name: "maslocal", Type: publish.DestinationTypeMAS},
			{
				Name:         "grid-models",
				Type:         publish.DestinationTypeGrid,
				GridServerID: "grid-shared",
				GridLibrary:  "ModelStore",
			},
		},
		GridServers: []sandbox.SeedGridServer{
			{
				ID:        "grid-shared",
				Libraries: []string{"Public", "ModelStore", "ModelPerformanceData"},
				Stores: []sandbox.SeedStore{
					{Library: "Public", Table: "churn_store", Content: []byte("store-bytes")},
				},
			},
		},
		Definitions: []sandbox.SeedDefinition{
			{
				Name:         "monitor churn",
				ProjectNames: []string{"churn"},
				GridServerID: "grid-shared",
				DataLibrary:  "ModelPerformanceData",
				DataPrefix:   "PERF",
			},
		},
		Automation:  true,
		SettleAfter: 0,
	})
}

// registerModel puts a project and a model into the sandbox, the way
// a client would have before calling the handler under test.
func registerModel(t *testing.T, box *sandbox.Sandbox, projectName string) models.Model {
	t.Helper()

	project := try.To(box.CreateProject(projects.Project{Name: projectName})).OrFatal(t)
	return try.To(box.CreateModel(models.Model{
		Name:      projectName + " scorer",
		ProjectID: project.ID,
		InputVariables: []models.Variable{
			{Name: "age", Role: models.VariableRoleInput, Type: models.VariableTypeDecimal},
		},
		OutputVariables: []models.Variable{
			{Name: "EM_EVENTPROBABILITY", Role: models.VariableRoleOutput, Type: models.VariableTypeDecimal},
			{Name: "EM_CLASSIFICATION", Role: models.VariableRoleOutput, Type: models.VariableTypeString},
		},
	})).OrFatal(t)
}

// asUser sets basic authentication on the request.
func asUser(user, password string) httptestutil.RequestOption {
	return func(req *http.Request) *http.Request {
		req.SetBasicAuth(user, password)
		return req
	}
}
