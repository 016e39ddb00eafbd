package task

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Spec is one task definition in a YAML task file.
type Spec struct {
	Description string `yaml:"description"`
	MaxSteps    int    `yaml:"max_steps"`
	Dialect     string `yaml:"dialect"`
}

// File is a YAML document holding one or more task definitions.
type File struct {
	Tasks []Spec `yaml:"tasks"`
}

// LoadFile parses a YAML task file. Both a bare list of tasks and a
// document with a top-level tasks key are accepted.
func LoadFile(path string) ([]Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read task file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err == nil && len(file.Tasks) > 0 {
		return validateSpecs(path, file.Tasks)
	}

	var specs []Spec
	if err := yaml.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("parse task file %s: %w", path, err)
	}
	return validateSpecs(path, specs)
}

func validateSpecs(path string, specs []Spec) ([]Spec, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("task file %s contains no tasks", path)
	}
	for i, spec := range specs {
		if spec.Description == "" {
			return nil, fmt.Errorf("task file %s: task %d has no description", path, i+1)
		}
	}
	return specs, nil
}
