// Package performance holds representations of the model management
// service's performance-monitoring configuration.
package performance

import (
	"github.com/modelmill/modelmill/pkg/api/types/resources"
	"github.com/modelmill/modelmill/pkg/utils/cmp"
)

// Definition configures where labeled performance data for a project's
// models must land on the compute grid.
//
// Definitions are created on the platform side. This client only reads
// them and runs them.
type Definition struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	ProjectIDs   []string `json:"projectId"`
	ModelIDs     []string `json:"modelIds,omitempty"`
	GridServerID string   `json:"gridServerId"`
	DataLibrary  string   `json:"dataLibrary"`
	DataPrefix   string   `json:"dataPrefix"`

	// ScoreExecutionRequired tells that the platform scores the uploaded
	// data itself. Then the data needs input columns only.
	ScoreExecutionRequired bool `json:"scoreExecutionRequired"`

	InputVariables  []string         `json:"inputVariables,omitempty"`
	OutputVariables []string         `json:"outputVariables,omitempty"`
	Links           []resources.Link `json:"links,omitempty"`
}

// CoversProject answers whether the definition monitors the project.
func (d *Definition) CoversProject(projectID string) bool {
	for _, id := range d.ProjectIDs {
		if id == projectID {
			return true
		}
	}
	return false
}

func (d *Definition) Equal(o *Definition) bool {
	if d == nil || o == nil {
		return d == nil && o == nil
	}
	return d.ID == o.ID &&
		d.Name == o.Name &&
		d.Description == o.Description &&
		cmp.SliceEq(d.ProjectIDs, o.ProjectIDs) &&
		cmp.SliceEq(d.ModelIDs, o.ModelIDs) &&
		d.GridServerID == o.GridServerID &&
		d.DataLibrary == o.DataLibrary &&
		d.DataPrefix == o.DataPrefix &&
		d.ScoreExecutionRequired == o.ScoreExecutionRequired &&
		cmp.SliceEq(d.InputVariables, o.InputVariables) &&
		cmp.SliceEq(d.OutputVariables, o.OutputVariables)
}
