// Package pipelines holds representations of the automated-pipeline
// service's resources.
package pipelines

import (
	"github.com/modelmill/modelmill/pkg/api/types/misc/rfctime"
	"github.com/modelmill/modelmill/pkg/api/types/resources"
)

// AutomationProject is a pipeline-automation project. Creating one
// starts an asynchronous model search over the named data table.
type AutomationProject struct {
	ID           string           `json:"id,omitempty"`
	Name         string           `json:"name"`
	Description  string           `json:"description,omitempty"`
	Type         string           `json:"type"`
	State        string           `json:"state,omitempty"`
	DataTableURI string           `json:"dataTableUri"`
	Attributes   Attributes       `json:"analyticsProjectAttributes"`
	Settings     Settings         `json:"settings"`
	CreatedAt    *rfctime.RFC3339 `json:"creationTimeStamp,omitempty"`
	Links        []resources.Link `json:"links,omitempty"`
}

func (p *AutomationProject) Equal(o *AutomationProject) bool {
	if p == nil || o == nil {
		return p == nil && o == nil
	}
	return p.ID == o.ID &&
		p.Name == o.Name &&
		p.Description == o.Description &&
		p.Type == o.Type &&
		p.State == o.State &&
		p.DataTableURI == o.DataTableURI &&
		p.Attributes == o.Attributes &&
		p.Settings == o.Settings
}

// TypePredictive is the project type for supervised model search.
const TypePredictive = "predictive"

// Attributes carries the analytic attributes of an automation project.
type Attributes struct {
	TargetVariable string `json:"targetVariable"`
}

// Settings carries the search settings of an automation project.
type Settings struct {
	AutoRun   bool `json:"autoRun"`
	MaxModels int  `json:"maxModels,omitempty"`
}
