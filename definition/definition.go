package definition

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/kbukum/dyne/pipe"
)

// Entry is one (identifier, parameters) pair.
type Entry struct {
	ID     string
	Params pipe.Params
}

// NewEntry is a convenience constructor.
func NewEntry(id string, params pipe.Params) Entry {
	return Entry{ID: id, Params: params}
}

// MarshalJSON encodes the entry as [id, params].
func (e Entry) MarshalJSON() ([]byte, error) {
	params := e.Params
	if params == nil {
		params = pipe.Params{}
	}
	return json.Marshal([]any{e.ID, params})
}

// UnmarshalJSON accepts [id, params], [id] or {"id": ..., "params": ...}.
func (e *Entry) UnmarshalJSON(data []byte) error {
	params := pipe.Params{}
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		var pair []json.RawMessage
		if err := json.Unmarshal(trimmed, &pair); err != nil {
			return err
		}
		if len(pair) < 1 || len(pair) > 2 {
			return fmt.Errorf("definition: entry must be [identifier, params], got %d elements", len(pair))
		}
		if err := json.Unmarshal(pair[0], &e.ID); err != nil {
			return fmt.Errorf("definition: identifier: %w", err)
		}
		if len(pair) == 2 {
			if err := json.Unmarshal(pair[1], &params); err != nil {
				return fmt.Errorf("definition: params of %q: %w", e.ID, err)
			}
		}
		e.Params = params
		return nil
	}

	var obj struct {
		ID     string      `json:"id"`
		Params pipe.Params `json:"params"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("definition: entry must be [identifier, params] or {id, params}: %w", err)
	}
	if obj.Params != nil {
		params = obj.Params
	}
	e.ID, e.Params = obj.ID, params
	return nil
}

// MarshalYAML encodes the entry as a two-element sequence.
func (e Entry) MarshalYAML() (any, error) {
	params := e.Params
	if params == nil {
		params = pipe.Params{}
	}
	return []any{e.ID, map[string]any(params)}, nil
}

// UnmarshalYAML accepts a [id, params] sequence or an {id, params} mapping.
func (e *Entry) UnmarshalYAML(value *yaml.Node) error {
	params := pipe.Params{}
	switch value.Kind {
	case yaml.SequenceNode:
		if len(value.Content) < 1 || len(value.Content) > 2 {
			return fmt.Errorf("definition: line %d: entry must be [identifier, params]", value.Line)
		}
		if err := value.Content[0].Decode(&e.ID); err != nil {
			return fmt.Errorf("definition: line %d: identifier: %w", value.Line, err)
		}
		if len(value.Content) == 2 {
			if err := value.Content[1].Decode(&params); err != nil {
				return fmt.Errorf("definition: line %d: params of %q: %w", value.Line, e.ID, err)
			}
		}
	case yaml.MappingNode:
		var obj struct {
			ID     string      `yaml:"id"`
			Params pipe.Params `yaml:"params"`
		}
		if err := value.Decode(&obj); err != nil {
			return fmt.Errorf("definition: line %d: %w", value.Line, err)
		}
		e.ID = obj.ID
		if obj.Params != nil {
			params = obj.Params
		}
	default:
		return fmt.Errorf("definition: line %d: entry must be a sequence or mapping", value.Line)
	}
	e.Params = params
	return nil
}

// Definition is the ordered list of entries making up a pipeline.
type Definition []Entry

// document is the wrapped file form: {"pipeline": [...]}.
type document struct {
	Pipeline Definition `json:"pipeline" yaml:"pipeline"`
}

// Canonical returns d with every parameter map normalised to its JSON form:
// numbers become float64 and nested maps map[string]any. Definitions that
// went through storage compare equal to their canonical form.
func (d Definition) Canonical() (Definition, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("definition: encode: %w", err)
	}
	var out Definition
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("definition: decode: %w", err)
	}
	return out, nil
}

// Encode returns the indented JSON record of d.
func (d Definition) Encode() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// Equal reports whether d and other encode to the same record.
func (d Definition) Equal(other Definition) bool {
	a, errA := json.Marshal(d)
	b, errB := json.Marshal(other)
	return errA == nil && errB == nil && bytes.Equal(a, b)
}

// Parse decodes a definition in the given format ("json" or "yaml"). Both a
// bare list and a {"pipeline": [...]} document are accepted. The result is
// canonical.
func Parse(data []byte, format string) (Definition, error) {
	var def Definition
	switch strings.ToLower(format) {
	case "json":
		trimmed := bytes.TrimSpace(data)
		if len(trimmed) > 0 && trimmed[0] == '{' {
			var doc document
			if err := json.Unmarshal(trimmed, &doc); err != nil {
				return nil, fmt.Errorf("definition: parsing json: %w", err)
			}
			def = doc.Pipeline
		} else if err := json.Unmarshal(trimmed, &def); err != nil {
			return nil, fmt.Errorf("definition: parsing json: %w", err)
		}
	case "yaml", "yml":
		var root yaml.Node
		if err := yaml.Unmarshal(data, &root); err != nil {
			return nil, fmt.Errorf("definition: parsing yaml: %w", err)
		}
		if len(root.Content) == 0 {
			return Definition{}, nil
		}
		node := root.Content[0]
		if node.Kind == yaml.MappingNode {
			var doc document
			if err := node.Decode(&doc); err != nil {
				return nil, fmt.Errorf("definition: parsing yaml: %w", err)
			}
			def = doc.Pipeline
		} else if err := node.Decode(&def); err != nil {
			return nil, fmt.Errorf("definition: parsing yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("definition: unsupported format %q", format)
	}
	return def.Canonical()
}

// LoadFile reads a definition from a .json, .yaml or .yml file.
func LoadFile(path string) (Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("definition: reading %s: %w", path, err)
	}
	format := strings.TrimPrefix(filepath.Ext(path), ".")
	def, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%w (file %s)", err, path)
	}
	return def, nil
}
