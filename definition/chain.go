package definition

import (
	"github.com/kbukum/dyne/pipe"
)

// Stage is one configured pipe instance within a chain.
type Stage struct {
	Position int
	ID       string
	Name     string
	Category pipe.Category
	Cache    bool
	Required bool
	Params   pipe.Params
	// Hash identifies this stage's output given everything upstream of it.
	Hash string
	Pipe pipe.Pipe
}

// Chain is a validated, configured pipeline. Stage 0 is always a source.
type Chain struct {
	Stages     []*Stage
	Definition Definition
}

// Source returns the entry stage's pipe.
func (c *Chain) Source() pipe.Source {
	return c.Stages[0].Pipe.(pipe.Source)
}

// Len returns the number of stages.
func (c *Chain) Len() int { return len(c.Stages) }

// Categories returns the category of each stage in order.
func (c *Chain) Categories() []pipe.Category {
	out := make([]pipe.Category, len(c.Stages))
	for i, s := range c.Stages {
		out[i] = s.Category
	}
	return out
}

// Versions maps stage names to the versions reported by their pipes.
func (c *Chain) Versions() map[string]string {
	out := make(map[string]string)
	for _, s := range c.Stages {
		if v := pipe.VersionOf(s.Pipe); v != "" {
			out[s.Name] = v
		}
	}
	return out
}

// Stage looks up a stage by pipe_name.
func (c *Chain) Stage(name string) (*Stage, bool) {
	for _, s := range c.Stages {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}
