package lifecycle

import (
	"context"
	"fmt"

	"github.com/modelmill/modelmill/pkg/api/types/pipelines"
	"github.com/modelmill/modelmill/pkg/rest"
	"github.com/modelmill/modelmill/pkg/utils"
)

type pipelineConfig struct {
	description string
	maxModels   int
	stage       []StageOption
}

// PipelineOption adjusts how an automation project is built.
type PipelineOption func(*pipelineConfig) *pipelineConfig

// WithPipelineDescription describes the automation project.
func WithPipelineDescription(description string) PipelineOption {
	return func(c *pipelineConfig) *pipelineConfig {
		c.description = description
		return c
	}
}

// WithMaxModels bounds how many candidate models the search trains.
// Zero, the default, leaves the bound to the platform.
func WithMaxModels(n int) PipelineOption {
	return func(c *pipelineConfig) *pipelineConfig {
		c.maxModels = n
		return c
	}
}

// WithStaging forwards options to the staging of the pipeline's
// data.
func WithStaging(opts ...StageOption) PipelineOption {
	return func(c *pipelineConfig) *pipelineConfig {
		c.stage = append(c.stage, opts...)
		return c
	}
}

// BuildPipeline stages the data and starts an automated model search
// over it, targeting the named column. The search runs asynchronously
// on the platform; the automation project tracking it is returned at
// once.
//
// The automated-pipeline service is an optional platform component.
// When it is absent, the error wraps rest.ErrServiceUnavailable.
func BuildPipeline(
	ctx context.Context, c Clients,
	source DataSource, target string, name string,
	opts ...PipelineOption,
) (*pipelines.AutomationProject, error) {
	conf := utils.ApplyAll(&pipelineConfig{}, opts...)

	ok, err := c.Pipelines.Available(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf(
			"%w: the automated-pipeline service is not enabled on this platform",
			rest.ErrServiceUnavailable,
		)
	}

	if source == nil {
		return nil, fmt.Errorf("no data to search models over")
	}
	if target == "" {
		return nil, fmt.Errorf("no target column to model for")
	}

	staged, err := Stage(ctx, c, source, conf.stage...)
	if err != nil {
		return nil, err
	}

	return c.Pipelines.CreateProject(ctx, pipelines.AutomationProject{
		Name:         name,
		Description:  conf.description,
		Type:         pipelines.TypePredictive,
		DataTableURI: staged.URI,
		Attributes:   pipelines.Attributes{TargetVariable: target},
		Settings:     pipelines.Settings{AutoRun: true, MaxModels: conf.maxModels},
	})
}
