package lifecycle

import (
	"context"
	"strings"

	"github.com/modelmill/modelmill/pkg/api/types/models"
	"github.com/modelmill/modelmill/pkg/api/types/projects"
	"github.com/modelmill/modelmill/pkg/api/types/repositories"
	"github.com/modelmill/modelmill/pkg/utils"
)

// resolveProject creates the project a model registers under, deriving
// the project's analytic settings from the model's descriptor.
//
// The repository applies defaults of its own on creation and may
// override some of what was sent. The score-variable settings matter
// downstream (performance monitoring reads them), so when the created
// project came back with different ones they are re-asserted with an
// update.
func resolveProject(
	ctx context.Context, c Clients,
	name string, descriptor models.Model, repo *repositories.Repository,
) (*projects.Project, error) {
	requested := projects.Project{
		Name:         name,
		RepositoryID: repo.ID,
		Function:     descriptor.Function,
		TargetLevel:  projectTargetLevel(descriptor),
		Variables: utils.Concat(
			descriptor.InputVariables, descriptor.OutputVariables,
		),
	}

	if outs := descriptor.OutputVariables; len(outs) > 0 {
		if strings.ToLower(descriptor.Function) == models.FunctionPrediction {
			requested.PredictionVariable = outs[0].Name
		} else {
			requested.EventProbabilityVariable = outs[0].Name
		}
	}

	created, err := c.Repository.CreateProject(ctx, requested)
	if err != nil {
		return nil, err
	}

	if created.PredictionVariable == requested.PredictionVariable &&
		created.EventProbabilityVariable == requested.EventProbabilityVariable {
		return created, nil
	}

	created.PredictionVariable = requested.PredictionVariable
	created.EventProbabilityVariable = requested.EventProbabilityVariable
	return c.Repository.UpdateProject(ctx, *created)
}

// projectTargetLevel tells the project's target level: the
// descriptor's own level when it declares one, else binary for
// logistic classification, interval for regressions, unset otherwise.
func projectTargetLevel(descriptor models.Model) string {
	if descriptor.TargetLevel != "" {
		return descriptor.TargetLevel
	}

	algorithm := strings.ToLower(descriptor.Algorithm)
	switch strings.ToLower(descriptor.Function) {
	case models.FunctionClassification:
		if strings.Contains(algorithm, "logistic") {
			return models.TargetLevelBinary
		}
	case models.FunctionPrediction:
		if strings.Contains(algorithm, "regression") {
			return models.TargetLevelInterval
		}
	}
	return ""
}
