package definition

import (
	"fmt"
	"maps"
	"strings"

	"github.com/kbukum/dyne/errors"
	"github.com/kbukum/dyne/pipe"
)

// Reserved parameter keys.
const (
	KeyPipeName = "pipe_name"
	KeyCache    = "cache"
	KeyRequired = "required"
)

// Settings are the stage-level options carried in the reserved keys.
type Settings struct {
	Name     string
	Cache    bool
	Required bool
}

// DefaultName is the pipe_name used when an entry does not set one: the
// implementation part of the identifier suffixed with the position.
func DefaultName(id string, position int) string {
	impl := id
	if i := strings.LastIndex(id, "."); i >= 0 {
		impl = id[i+1:]
	}
	return fmt.Sprintf("%s_%d", impl, position)
}

// split separates the reserved keys from the pipe's own parameters.
func (e Entry) split(position int) (Settings, pipe.Params, error) {
	s := Settings{Name: DefaultName(e.ID, position)}
	params := maps.Clone(e.Params)
	if params == nil {
		params = pipe.Params{}
	}

	if v, ok := params[KeyPipeName]; ok {
		name, isString := v.(string)
		if !isString || name == "" {
			return s, nil, errors.InvalidParameter(e.ID, position, "pipe_name must be a non-empty string")
		}
		if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
			return s, nil, errors.InvalidParameter(e.ID, position, fmt.Sprintf("pipe_name %q must not contain path separators", name))
		}
		s.Name = name
		delete(params, KeyPipeName)
	}
	for key, dst := range map[string]*bool{KeyCache: &s.Cache, KeyRequired: &s.Required} {
		v, ok := params[key]
		if !ok {
			continue
		}
		b, isBool := v.(bool)
		if !isBool {
			return s, nil, errors.InvalidParameter(e.ID, position, fmt.Sprintf("%s must be a boolean, got %T", key, v))
		}
		*dst = b
		delete(params, key)
	}
	return s, params, nil
}
