package pipe

import (
	"slices"

	"github.com/kbukum/dyne/errors"
)

// LinkRule allows a stage of category From to feed a stage of category To.
type LinkRule struct {
	From Category `json:"from" yaml:"from" mapstructure:"from"`
	To   Category `json:"to" yaml:"to" mapstructure:"to"`
}

// Rules is an immutable set of link rules plus the categories allowed to
// start a pipeline.
type Rules struct {
	links   map[Category]map[Category]bool
	entries map[Category]bool
}

// NewRules builds a rule set.
func NewRules(entries []Category, links ...LinkRule) *Rules {
	r := &Rules{
		links:   make(map[Category]map[Category]bool),
		entries: make(map[Category]bool, len(entries)),
	}
	for _, c := range entries {
		r.entries[c] = true
	}
	for _, l := range links {
		if r.links[l.From] == nil {
			r.links[l.From] = make(map[Category]bool)
		}
		r.links[l.From][l.To] = true
	}
	return r
}

// DefaultRules returns the link table used by the built-in pipes.
func DefaultRules() *Rules {
	var links []LinkRule
	add := func(from Category, to ...Category) {
		for _, t := range to {
			links = append(links, LinkRule{From: from, To: t})
		}
	}
	add(CategorySource, CategorySigProc, CategorySurrogate, CategoryAdjacency, CategoryLogger)
	add(CategorySigProc, CategorySigProc, CategorySurrogate, CategoryAdjacency, CategoryLogger)
	add(CategorySurrogate, CategoryAdjacency, CategoryLogger)
	add(CategoryAdjacency, CategoryNodeTopo, CategoryEdgeTopo, CategoryGlobalTopo, CategoryNetViz, CategoryLogger)
	for _, topo := range []Category{CategoryNodeTopo, CategoryEdgeTopo, CategoryGlobalTopo} {
		add(topo, CategoryNetViz, CategoryLogger)
	}
	add(CategoryNetViz, CategoryLogger)
	return NewRules([]Category{CategorySource}, links...)
}

// IsLinkable reports whether from may feed to.
func (r *Rules) IsLinkable(from, to Category) bool {
	return r.links[from][to]
}

// IsEntry reports whether c may start a pipeline.
func (r *Rules) IsEntry(c Category) bool {
	return r.entries[c]
}

// Targets returns the categories from may feed, sorted.
func (r *Rules) Targets(from Category) []Category {
	out := make([]Category, 0, len(r.links[from]))
	for to := range r.links[from] {
		out = append(out, to)
	}
	slices.Sort(out)
	return out
}

// CheckEntry returns INVALID_ENTRY unless c may start a pipeline.
func (r *Rules) CheckEntry(c Category) error {
	if !r.IsEntry(c) {
		return errors.InvalidEntry(string(c))
	}
	return nil
}

// CheckLink returns ILLEGAL_LINK, naming positions position and
// position+1, unless from may feed to.
func (r *Rules) CheckLink(from, to Category, position int) error {
	if !r.IsLinkable(from, to) {
		return errors.IllegalLink(string(from), string(to), position)
	}
	return nil
}

// Check validates a chain of categories, failing at the first violation.
func (r *Rules) Check(chain []Category) error {
	if len(chain) == 0 {
		return errors.EmptyPipeline()
	}
	if err := r.CheckEntry(chain[0]); err != nil {
		return err
	}
	for i := 0; i+1 < len(chain); i++ {
		if err := r.CheckLink(chain[i], chain[i+1], i); err != nil {
			return err
		}
	}
	return nil
}
