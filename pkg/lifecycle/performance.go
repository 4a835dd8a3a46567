package lifecycle

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/modelmill/modelmill/pkg/api/types/models"
	"github.com/modelmill/modelmill/pkg/api/types/performance"
	"github.com/modelmill/modelmill/pkg/api/types/projects"
	"github.com/modelmill/modelmill/pkg/api/types/tables"
	"github.com/modelmill/modelmill/pkg/dataset"
	"github.com/modelmill/modelmill/pkg/rest"
	"github.com/modelmill/modelmill/pkg/utils"
)

type performanceConfig struct {
	refresh bool
}

// PerformanceOption adjusts a performance-data upload.
type PerformanceOption func(*performanceConfig) *performanceConfig

// WithoutRefresh uploads the data but leaves running the performance
// definition to someone else.
func WithoutRefresh() PerformanceOption {
	return func(c *performanceConfig) *performanceConfig {
		c.refresh = false
		return c
	}
}

// UploadPerformance stages labeled performance data for a model where
// the model's performance definition expects it, then runs the
// definition over it.
//
// The project the model belongs to must be set up for performance
// monitoring. Each unmet requirement fails with its own error, before
// anything is uploaded.
func UploadPerformance(
	ctx context.Context, c Clients,
	data *dataset.Frame, model string, label string,
	opts ...PerformanceOption,
) (*tables.Ref, error) {
	conf := utils.ApplyAll(&performanceConfig{refresh: true}, opts...)

	if data == nil {
		return nil, fmt.Errorf("no performance data to upload")
	}
	if label == "" {
		return nil, fmt.Errorf("performance data needs a period label")
	}

	m, err := c.Repository.GetModel(ctx, model)
	if err != nil {
		return nil, err
	}
	p, err := c.Repository.GetProject(ctx, m.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := checkMonitorable(p); err != nil {
		return nil, err
	}

	definition, err := performanceDefinitionFor(ctx, c, p.ID)
	if err != nil {
		return nil, err
	}
	if err := checkColumns(data, definition); err != nil {
		return nil, err
	}

	grid, err := c.Grid(definition.GridServerID)
	if err != nil {
		return nil, err
	}

	sequence, err := nextSequence(ctx, grid, definition, m.ID)
	if err != nil {
		return nil, err
	}
	tableName := fmt.Sprintf(
		"%s_%d_%s_%s", definition.DataPrefix, sequence, label, m.ID,
	)

	buf := bytes.Buffer{}
	if err := data.WriteCSV(&buf); err != nil {
		return nil, err
	}
	ref, err := grid.UploadTable(
		ctx, &buf, tableName, definition.DataLibrary, rest.Promote(),
	)
	if err != nil {
		return nil, err
	}

	if conf.refresh {
		if err := c.Management.ExecutePerformanceDefinition(ctx, definition.ID); err != nil {
			return nil, err
		}
	}
	return ref, nil
}

// checkMonitorable verifies the project is set up for performance
// monitoring. Each violated requirement gets its own error.
func checkMonitorable(p *projects.Project) error {
	function := strings.ToLower(p.Function)
	if function != models.FunctionClassification && function != models.FunctionPrediction {
		return fmt.Errorf(
			"performance monitoring needs project %q to have function %q or %q, not %q",
			p.Name, models.FunctionClassification, models.FunctionPrediction, p.Function,
		)
	}

	switch strings.ToLower(p.TargetLevel) {
	case "binary", "interval":
	default:
		return fmt.Errorf(
			"performance monitoring needs project %q to have target level %q or %q, not %q",
			p.Name, models.TargetLevelBinary, models.TargetLevelInterval, p.TargetLevel,
		)
	}

	if function == models.FunctionPrediction && p.PredictionVariable == "" {
		return fmt.Errorf(
			"performance monitoring needs project %q to declare its prediction variable",
			p.Name,
		)
	}
	if function == models.FunctionClassification && p.EventProbabilityVariable == "" {
		return fmt.Errorf(
			"performance monitoring needs project %q to declare its event probability variable",
			p.Name,
		)
	}
	return nil
}

func performanceDefinitionFor(
	ctx context.Context, c Clients, projectID string,
) (*performance.Definition, error) {
	definitions, err := c.Management.ListPerformanceDefinitions(ctx)
	if err != nil {
		return nil, err
	}

	definition, ok := utils.First(
		definitions,
		func(d performance.Definition) bool { return d.CoversProject(projectID) },
	)
	if !ok {
		return nil, fmt.Errorf(
			"no performance definition covers project %s; define one on the platform first",
			projectID,
		)
	}
	return &definition, nil
}

// checkColumns verifies the data carries every column the definition
// requires. Output columns are required only when the platform does
// not score the data itself.
func checkColumns(data *dataset.Frame, definition *performance.Definition) error {
	required := definition.InputVariables
	if !definition.ScoreExecutionRequired {
		required = utils.Concat(required, definition.OutputVariables)
	}

	for _, column := range required {
		if !data.HasColumn(column) {
			return fmt.Errorf(
				"performance definition %q requires column %q, which the data does not have",
				definition.Name, column,
			)
		}
	}
	return nil
}

// nextSequence numbers the upload: one past the highest sequence
// number among the model's tables already under the definition's
// prefix. Table names are matched case-insensitively.
func nextSequence(
	ctx context.Context, grid rest.Grid,
	definition *performance.Definition, modelID string,
) (int, error) {
	names, err := grid.ListTables(ctx, definition.DataLibrary)
	if err != nil {
		return 0, err
	}

	pattern, err := regexp.Compile(
		`(?i)` +
			regexp.QuoteMeta(definition.DataPrefix) +
			`_(\d+)_.*_` +
			regexp.QuoteMeta(modelID),
	)
	if err != nil {
		return 0, err
	}

	highest := 0
	for _, name := range names {
		m := pattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		seq, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if highest < seq {
			highest = seq
		}
	}
	return highest + 1, nil
}
