package definition

import (
	"fmt"
	"maps"

	"github.com/kbukum/dyne/errors"
	"github.com/kbukum/dyne/logger"
	"github.com/kbukum/dyne/pipe"
)

// Loader resolves definitions against a pipe registry and link rules.
type Loader struct {
	registry *pipe.Registry
	rules    *pipe.Rules
	log      *logger.Logger
}

// NewLoader creates a Loader. A nil rules uses pipe.DefaultRules.
func NewLoader(registry *pipe.Registry, rules *pipe.Rules, log *logger.Logger) *Loader {
	if rules == nil {
		rules = pipe.DefaultRules()
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Loader{registry: registry, rules: rules, log: log.WithComponent("definition")}
}

// Build resolves, instantiates, configures and link-checks every entry in
// order. The first failure rejects the whole definition; no partial chain
// is ever returned.
func (l *Loader) Build(def Definition) (*Chain, error) {
	if len(def) == 0 {
		return nil, errors.EmptyPipeline()
	}
	canon, err := def.Canonical()
	if err != nil {
		return nil, errors.InvalidParameter("definition", 0, err.Error()).WithCause(err)
	}

	chain := &Chain{Stages: make([]*Stage, 0, len(canon)), Definition: canon}
	names := make(map[string]int, len(canon))
	upstream := ""

	for i, entry := range canon {
		factory, ok := l.registry.Lookup(entry.ID)
		if !ok {
			return nil, errors.UnknownPipe(entry.ID, i)
		}

		settings, params, err := entry.split(i)
		if err != nil {
			return nil, err
		}
		if first, dup := names[settings.Name]; dup {
			return nil, errors.DuplicateName(settings.Name, first, i)
		}
		names[settings.Name] = i

		p := factory(settings.Name)
		if err := p.Configure(maps.Clone(params)); err != nil {
			return nil, configureError(entry.ID, settings.Name, i, err)
		}

		category := p.Category()
		if i == 0 {
			if err := l.rules.CheckEntry(category); err != nil {
				return nil, err
			}
			if _, isSource := p.(pipe.Source); !isSource {
				return nil, errors.InvalidEntry(string(category)).
					WithDetail("reason", fmt.Sprintf("%s does not implement a source", entry.ID))
			}
		} else {
			prev := chain.Stages[i-1]
			if err := l.rules.CheckLink(prev.Category, category, i-1); err != nil {
				if appErr, ok := errors.AsAppError(err); ok {
					return nil, appErr.WithDetail("from_pipe", prev.Name).WithDetail("to_pipe", settings.Name)
				}
				return nil, err
			}
		}

		hash, err := stageHash(upstream, entry.ID, pipe.VersionOf(p), params)
		if err != nil {
			return nil, errors.InvalidParameter(entry.ID, i, err.Error()).WithCause(err)
		}
		upstream = hash

		chain.Stages = append(chain.Stages, &Stage{
			Position: i,
			ID:       entry.ID,
			Name:     settings.Name,
			Category: category,
			Cache:    settings.Cache,
			Required: settings.Required,
			Params:   params,
			Hash:     hash,
			Pipe:     p,
		})
		l.log.Debug("stage resolved", logger.Fields(
			logger.FieldPosition, i,
			logger.FieldPipeID, entry.ID,
			logger.FieldPipe, settings.Name,
			"category", string(category),
			"cache", settings.Cache,
		))
	}

	l.log.Info("pipeline built", logger.Fields("stages", len(chain.Stages)))
	return chain, nil
}

// Validate reports whether def would build, without keeping the chain.
func (l *Loader) Validate(def Definition) error {
	_, err := l.Build(def)
	return err
}

func configureError(id, name string, position int, err error) error {
	if appErr, ok := errors.AsAppError(err); ok && appErr.Code == errors.ErrCodeInvalidParameter {
		return errors.InvalidParameter(name, position, appErr.Message).
			WithDetail("id", id).
			WithCause(err)
	}
	return errors.InvalidParameter(name, position, err.Error()).
		WithDetail("id", id).
		WithCause(err)
}
