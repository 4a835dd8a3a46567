package lifecycle

import (
	"encoding"

	"github.com/modelmill/modelmill/pkg/api/types/models"
	"github.com/modelmill/modelmill/pkg/api/types/tables"
)

// ModelArtifact is what the registration flow accepts as the model: a
// trained estimator, an analytic store resident on the grid, or a
// ready-made repository descriptor.
//
// The variants are closed. Registration resolves the variant once and
// dispatches; no step downstream probes the model's nature again.
type ModelArtifact interface {
	artifact()
}

// EstimatorModel registers a trained estimator: its serialized bytes,
// metadata derived from it, generated score code and auxiliary files.
type EstimatorModel struct {
	Estimator Estimator
}

// StoreTable registers the analytic store held in a grid table, by
// packaging the store with its metadata into a deployable archive and
// importing that.
type StoreTable struct {
	// Table holds the analytic store. Server and library default to
	// DefaultGridServer and DefaultLibrary.
	Table tables.Ref

	// Descriptor carries the metadata packaged into the archive:
	// function, algorithm, target level, variables.
	Descriptor models.Model
}

// DescriptorModel registers a caller-assembled model descriptor as it
// stands. Nothing is derived from it and no score code is generated.
type DescriptorModel struct {
	Model models.Model
}

func (EstimatorModel) artifact()  {}
func (StoreTable) artifact()      {}
func (DescriptorModel) artifact() {}

// Estimator is a trained model the registration flow can describe and
// serialize.
type Estimator interface {
	encoding.BinaryMarshaler

	// TypeName is the estimator's type name as its implementation
	// spells it, say "LogisticRegression".
	TypeName() string

	// EstimatorType classifies the estimator's task: "classifier" or
	// "regressor".
	EstimatorType() string

	// Params lists the hyperparameters the estimator was configured
	// with.
	Params() map[string]any
}

// PipelineEstimator is an Estimator that is a preprocessing chain
// ending in a final estimator. Registration describes the final
// estimator, not the chain.
type PipelineEstimator interface {
	Estimator

	// FinalEstimator is the last stage of the chain.
	FinalEstimator() Estimator
}
