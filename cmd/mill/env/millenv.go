package env

import (
	"os"

	"gopkg.in/yaml.v3"
)

// MillEnv carries per-project defaults for mill commands, loaded from
// a millenv file found near the working directory.
type MillEnv struct {
	// GridServer is the compute grid server data is staged on.
	GridServer string `yaml:"gridServer,omitempty"`

	// Library is the grid library data is staged into.
	Library string `yaml:"library,omitempty"`

	// Repository is the model repository models are registered in.
	Repository string `yaml:"repository,omitempty"`

	// Destination is the publishing destination models go to.
	Destination string `yaml:"destination,omitempty"`
}

func New() *MillEnv {
	return new(MillEnv)
}

// LoadMillEnv reads a millenv file. A missing file is no error; it
// yields the empty env.
func LoadMillEnv(filepath string) (*MillEnv, error) {

	env := MillEnv{}

	content, err := os.ReadFile(filepath)
	if err != nil {
		return &env, nil
	}

	err = yaml.Unmarshal(content, &env)
	if err != nil {
		return nil, err
	}

	return &env, nil
}
