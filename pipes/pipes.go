// Package pipes registers the built-in pipe implementations.
package pipes

import (
	"github.com/kbukum/dyne/pipe"
	"github.com/kbukum/dyne/pipes/adjacency"
	"github.com/kbukum/dyne/pipes/logger"
	"github.com/kbukum/dyne/pipes/netviz"
	"github.com/kbukum/dyne/pipes/nodetopo"
	"github.com/kbukum/dyne/pipes/sigproc"
	"github.com/kbukum/dyne/pipes/source"
	"github.com/kbukum/dyne/pipes/surrogate"
)

// builtin maps identifiers to factories for every built-in pipe.
var builtin = []struct {
	id      string
	factory pipe.Factory
}{
	{"source.Noise", source.NewNoise},
	{"source.Stream", source.NewStream},
	{"sigproc.CommonAverage", sigproc.NewCommonAverage},
	{"surrogate.TimeShift", surrogate.NewTimeShift},
	{"adjacency.Correlation", adjacency.NewCorrelation},
	{"nodetopo.Strength", nodetopo.NewStrength},
	{"netviz.Console", netviz.NewConsole},
	{"logger.Console", logger.NewConsole},
}

// Register adds the built-in pipes to r. It fails if any identifier is
// already taken.
func Register(r *pipe.Registry) error {
	for _, b := range builtin {
		if err := r.Register(b.id, b.factory); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry holding only the built-in pipes.
func NewRegistry() *pipe.Registry {
	r := pipe.NewRegistry()
	if err := Register(r); err != nil {
		panic(err)
	}
	return r
}
