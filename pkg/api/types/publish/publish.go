// Package publish holds representations of the model publishing
// services: destinations, publish jobs and micro-analytic modules.
package publish

import (
	"github.com/modelmill/modelmill/pkg/api/types/misc/rfctime"
	"github.com/modelmill/modelmill/pkg/api/types/resources"
	"github.com/modelmill/modelmill/pkg/utils/cmp"
)

// Destination types.
const (
	// DestinationTypeMAS is the micro-analytic scoring service.
	DestinationTypeMAS = "microAnalyticService"

	// DestinationTypeGrid is the compute grid.
	DestinationTypeGrid = "computeGrid"
)

// Destination is a publishing destination.
type Destination struct {
	ID           string           `json:"id,omitempty"`
	Name         string           `json:"name"`
	Type         string           `json:"destinationType"`
	Description  string           `json:"description,omitempty"`
	GridServerID string           `json:"gridServerId,omitempty"`
	GridLibrary  string           `json:"gridLibrary,omitempty"`
	Links        []resources.Link `json:"links,omitempty"`
}

func (d *Destination) Equal(o *Destination) bool {
	if d == nil || o == nil {
		return d == nil && o == nil
	}
	return d.ID == o.ID &&
		d.Name == o.Name &&
		d.Type == o.Type &&
		d.Description == o.Description &&
		d.GridServerID == o.GridServerID &&
		d.GridLibrary == o.GridLibrary
}

// Publish job states.
const (
	JobStatePending   = "pending"
	JobStateRunning   = "running"
	JobStateCompleted = "completed"
	JobStateFailed    = "failed"
)

// Job is a handle to an asynchronous publishing operation.
type Job struct {
	ID              string           `json:"id"`
	ModelID         string           `json:"modelId,omitempty"`
	ModelName       string           `json:"modelName,omitempty"`
	PublishName     string           `json:"publishName,omitempty"`
	DestinationName string           `json:"destinationName,omitempty"`
	DestinationType string           `json:"destinationType,omitempty"`
	State           string           `json:"state"`
	Log             string           `json:"log,omitempty"`
	CreatedAt       *rfctime.RFC3339 `json:"creationTimeStamp,omitempty"`
	Links           []resources.Link `json:"links,omitempty"`
}

// Settled answers whether the job reached a state no poll changes.
func (j *Job) Settled() bool {
	switch j.State {
	case JobStatePending, JobStateRunning:
		return false
	}
	return true
}

func (j *Job) Equal(o *Job) bool {
	if j == nil || o == nil {
		return j == nil && o == nil
	}
	return j.ID == o.ID &&
		j.ModelID == o.ModelID &&
		j.ModelName == o.ModelName &&
		j.PublishName == o.PublishName &&
		j.DestinationName == o.DestinationName &&
		j.DestinationType == o.DestinationType &&
		j.State == o.State &&
		j.Log == o.Log
}

// MediaTypeModule marks a resource as a micro-analytic module.
const MediaTypeModule = "application/vnd.modelmill.microanalytic.module"

// Module is a callable scoring module on the micro-analytic service.
type Module struct {
	ID          string           `json:"id,omitempty"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Scope       string           `json:"scope,omitempty"`
	StepIDs     []string         `json:"stepIds,omitempty"`
	Links       []resources.Link `json:"links,omitempty"`
}

func (m *Module) Equal(o *Module) bool {
	if m == nil || o == nil {
		return m == nil && o == nil
	}
	return m.ID == o.ID &&
		m.Name == o.Name &&
		m.Description == o.Description &&
		m.Scope == o.Scope &&
		cmp.SliceEq(m.StepIDs, o.StepIDs)
}

// Step is one callable step of a module.
type Step struct {
	ID      string      `json:"id"`
	Inputs  []StepParam `json:"inputs,omitempty"`
	Outputs []StepParam `json:"outputs,omitempty"`
}

func (s *Step) Equal(o *Step) bool {
	if s == nil || o == nil {
		return s == nil && o == nil
	}
	return s.ID == o.ID &&
		cmp.SliceEqWith(
			s.Inputs, o.Inputs,
			func(a, b StepParam) bool { return a == b },
		) &&
		cmp.SliceEqWith(
			s.Outputs, o.Outputs,
			func(a, b StepParam) bool { return a == b },
		)
}

// StepParam is one declared input or output of a step.
type StepParam struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Dim  int    `json:"dim,omitempty"`
}
