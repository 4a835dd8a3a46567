package lifecycle

import (
	"github.com/modelmill/modelmill/pkg/utils"
)

// Names of the files the registration flow generates.
const (
	// SerializedModelFile holds the estimator's serialized bytes. The
	// generated score code loads the model from this name.
	SerializedModelFile = "model.bin"

	scoreModuleFile  = "module_score.msl"
	scoreGridFile    = "grid_score.msl"
	scoreWrapperFile = "score_wrapper.go"

	liftFile        = "lift.json"
	fitStatFile     = "fitstat.json"
	rocFile         = "roc.json"
	environmentFile = "environment.txt"
)

// File is one file attached to a model at registration.
type File struct {
	// Name the file gets in the repository.
	Name string

	// Content of the file.
	Content []byte

	// Role tags what the file is to the platform. Optional.
	Role string
}

func filesContain(files []File, name string) bool {
	_, ok := utils.First(files, func(f File) bool { return f.Name == name })
	return ok
}
