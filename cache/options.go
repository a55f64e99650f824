package cache

import (
	"fmt"
	"path"
	"strings"

	"github.com/kbukum/dyne/errors"
	"github.com/kbukum/dyne/validation"
)

// Options are the runtime options of a run. They are fixed once the
// pipeline starts.
type Options struct {
	WorkingPath string `json:"working_path" mapstructure:"working_path" validate:"required"`
	ModelName   string `json:"model_name" mapstructure:"model_name" validate:"required"`
	DatasetName string `json:"dataset_name" mapstructure:"dataset_name" validate:"required"`
}

// Validate reports INVALID_OPTIONS for missing fields or names that would
// escape their namespace.
func (o Options) Validate() error {
	if err := validation.Validate(o); err != nil {
		return errors.InvalidOptions(err.Error()).WithCause(err)
	}
	for field, v := range map[string]string{"model_name": o.ModelName, "dataset_name": o.DatasetName} {
		if strings.ContainsAny(v, `/\`) || v == "." || v == ".." {
			return errors.InvalidOptions(fmt.Sprintf("%s %q must be a plain name", field, v))
		}
	}
	return nil
}

// OptionsPath is the key of the options record.
func (o Options) OptionsPath() string {
	return path.Join(o.ModelName, o.DatasetName+"_options.json")
}

// DefinitionPath is the key of the pipeline definition record.
func (o Options) DefinitionPath() string {
	return path.Join(o.ModelName, o.DatasetName+"_pipeline.json")
}

// RunsPath is the key of the JSON-lines run log.
func (o Options) RunsPath() string {
	return path.Join(o.ModelName, o.DatasetName+"_runs.jsonl")
}

// Namespace is the directory holding this run's cache entries.
func (o Options) Namespace() string {
	return path.Join(o.ModelName, o.DatasetName)
}

// EntryPath is the key of one cached stage output.
func (o Options) EntryPath(pipeName, hash string, window int) string {
	return path.Join(o.Namespace(), pipeName, shortHash(hash), fmt.Sprintf("%06d.json", window))
}

func shortHash(h string) string {
	if len(h) > 16 {
		return h[:16]
	}
	return h
}
