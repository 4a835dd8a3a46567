// Package projects holds representations of the model repository's
// project resources.
package projects

import (
	"encoding/json"

	"github.com/modelmill/modelmill/pkg/api/types/misc/rfctime"
	"github.com/modelmill/modelmill/pkg/api/types/models"
	"github.com/modelmill/modelmill/pkg/api/types/resources"
	"github.com/modelmill/modelmill/pkg/utils/cmp"
)

// Project is a project resource of the model repository.
//
// The repository attaches fields of its own to a project. This type keeps
// every field it received and sends them back on update, so a
// read-modify-update cycle does not drop what the client never touched.
// Fields set on this struct win over the received ones.
type Project struct {
	ID                       string            `json:"id,omitempty"`
	Name                     string            `json:"name"`
	Description              string            `json:"description,omitempty"`
	Function                 string            `json:"function,omitempty"`
	TargetLevel              string            `json:"targetLevel,omitempty"`
	PredictionVariable       string            `json:"predictionVariable,omitempty"`
	EventProbabilityVariable string            `json:"eventProbabilityVariable,omitempty"`
	RepositoryID             string            `json:"repositoryId,omitempty"`
	Variables                []models.Variable `json:"variables,omitempty"`
	CreatedAt                *rfctime.RFC3339  `json:"creationTimeStamp,omitempty"`
	ModifiedAt               *rfctime.RFC3339  `json:"modifiedTimeStamp,omitempty"`
	Links                    []resources.Link  `json:"links,omitempty"`

	// received is the full resource as received from the repository.
	received map[string]json.RawMessage
}

func (p *Project) Equal(o *Project) bool {
	if p == nil || o == nil {
		return p == nil && o == nil
	}

	return p.ID == o.ID &&
		p.Name == o.Name &&
		p.Description == o.Description &&
		p.Function == o.Function &&
		p.TargetLevel == o.TargetLevel &&
		p.PredictionVariable == o.PredictionVariable &&
		p.EventProbabilityVariable == o.EventProbabilityVariable &&
		p.RepositoryID == o.RepositoryID &&
		cmp.SliceEqWith(
			p.Variables, o.Variables,
			func(a, b models.Variable) bool { return a.Equal(&b) },
		)
}

func (p *Project) UnmarshalJSON(b []byte) error {
	var received map[string]json.RawMessage
	if err := json.Unmarshal(b, &received); err != nil {
		return err
	}

	type project Project // shed methods to avoid recursion
	var parsed project
	if err := json.Unmarshal(b, &parsed); err != nil {
		return err
	}

	*p = Project(parsed)
	p.received = received
	return nil
}

func (p Project) MarshalJSON() ([]byte, error) {
	type project Project
	known, err := json.Marshal(project(p))
	if err != nil {
		return nil, err
	}
	if len(p.received) == 0 {
		return known, nil
	}

	merged := map[string]json.RawMessage{}
	for k, v := range p.received {
		merged[k] = v
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(known, &fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		merged[k] = v
	}

	return json.Marshal(merged)
}
