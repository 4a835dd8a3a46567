// Package models holds representations of the model repository's model
// resources and their registration vocabulary.
package models

import (
	"github.com/modelmill/modelmill/pkg/api/types/misc/rfctime"
	"github.com/modelmill/modelmill/pkg/api/types/resources"
	"github.com/modelmill/modelmill/pkg/utils/cmp"
)

// Model functions.
const (
	FunctionClassification = "classification"
	FunctionPrediction     = "prediction"
)

// Target levels.
const (
	TargetLevelBinary   = "Binary"
	TargetLevelInterval = "Interval"
)

// Variable roles.
const (
	VariableRoleInput  = "input"
	VariableRoleOutput = "output"
)

// Variable types.
const (
	VariableTypeString  = "string"
	VariableTypeDecimal = "decimal"
	VariableTypeInteger = "integer"
)

// Content roles the registration flow attaches to files.
const (
	// RoleScoreCode marks module score code for the micro-analytic service.
	RoleScoreCode = "Score Code"

	// RoleGridScore marks the compute-grid execution variant of score code.
	RoleGridScore = "score"

	// RoleSerializedModel marks the stored byte representation of a model.
	RoleSerializedModel = "Serialized Model"
)

// ScoreCodeTypeMultiType marks score code runnable on both the
// micro-analytic service and the compute grid.
const ScoreCodeTypeMultiType = "multiType"

// Length limits the repository enforces on free-text metadata.
const (
	MaxPropertyNameLen  = 60
	MaxPropertyValueLen = 512
	MaxDescriptionLen   = 1024
)

// Model is a model resource of the model repository.
type Model struct {
	ID               string           `json:"id,omitempty"`
	Name             string           `json:"name"`
	Description      string           `json:"description,omitempty"`
	ProjectID        string           `json:"projectId,omitempty"`
	Function         string           `json:"function,omitempty"`
	Algorithm        string           `json:"algorithm,omitempty"`
	Tool             string           `json:"tool,omitempty"`
	TargetLevel      string           `json:"targetLevel,omitempty"`
	ScoreCodeType    string           `json:"scoreCodeType,omitempty"`
	TrainCodeType    string           `json:"trainCodeType,omitempty"`
	ModelVersionName string           `json:"modelVersionName,omitempty"`
	InputVariables   []Variable       `json:"inputVariables,omitempty"`
	OutputVariables  []Variable       `json:"outputVariables,omitempty"`
	Properties       []Property       `json:"properties,omitempty"`
	CreatedAt        *rfctime.RFC3339 `json:"creationTimeStamp,omitempty"`
	ModifiedAt       *rfctime.RFC3339 `json:"modifiedTimeStamp,omitempty"`
	Links            []resources.Link `json:"links,omitempty"`
}

func (m *Model) Equal(o *Model) bool {
	if m == nil || o == nil {
		return m == nil && o == nil
	}

	return m.ID == o.ID &&
		m.Name == o.Name &&
		m.Description == o.Description &&
		m.ProjectID == o.ProjectID &&
		m.Function == o.Function &&
		m.Algorithm == o.Algorithm &&
		m.Tool == o.Tool &&
		m.TargetLevel == o.TargetLevel &&
		m.ScoreCodeType == o.ScoreCodeType &&
		m.TrainCodeType == o.TrainCodeType &&
		m.ModelVersionName == o.ModelVersionName &&
		cmp.SliceEqWith(
			m.InputVariables, o.InputVariables,
			func(a, b Variable) bool { return a.Equal(&b) },
		) &&
		cmp.SliceEqWith(
			m.OutputVariables, o.OutputVariables,
			func(a, b Variable) bool { return a.Equal(&b) },
		) &&
		cmp.SliceContentEqWith(
			m.Properties, o.Properties,
			func(a, b Property) bool { return a == b },
		)
}

// Variable describes one input or output column of a model.
type Variable struct {
	Name   string `json:"name"`
	Role   string `json:"role,omitempty"`
	Type   string `json:"type,omitempty"`
	Level  string `json:"level,omitempty"`
	Length int    `json:"length,omitempty"`
}

func (v *Variable) Equal(o *Variable) bool {
	if v == nil || o == nil {
		return v == nil && o == nil
	}
	return *v == *o
}

// Property is one free-text name/value pair attached to a model.
type Property struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewProperty builds a Property, truncating name and value to the
// repository's limits.
func NewProperty(name string, value string) Property {
	return Property{
		Name:  Truncate(name, MaxPropertyNameLen),
		Value: Truncate(value, MaxPropertyValueLen),
	}
}

// TruncateDescription caps a description at the repository's limit.
func TruncateDescription(description string) string {
	return Truncate(description, MaxDescriptionLen)
}

// Truncate caps s at limit characters (not bytes).
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// Content is a file attached to a model in the repository.
type Content struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
	Size int    `json:"size,omitempty"`
}

func (c *Content) Equal(o *Content) bool {
	if c == nil || o == nil {
		return c == nil && o == nil
	}
	return *c == *o
}
