package pipe

import "context"

// Category is the topological role of a pipe.
type Category string

const (
	CategorySource     Category = "source"
	CategorySigProc    Category = "sigproc"
	CategorySurrogate  Category = "surrogate"
	CategoryAdjacency  Category = "adjacency"
	CategoryNodeTopo   Category = "nodetopo"
	CategoryEdgeTopo   Category = "edgetopo"
	CategoryGlobalTopo Category = "globaltopo"
	CategoryNetViz     Category = "netviz"
	CategoryLogger     Category = "logger"
)

// Categories lists every known category in chain order.
func Categories() []Category {
	return []Category{
		CategorySource, CategorySigProc, CategorySurrogate, CategoryAdjacency,
		CategoryNodeTopo, CategoryEdgeTopo, CategoryGlobalTopo, CategoryNetViz, CategoryLogger,
	}
}

// Params is the raw parameter map of one definition entry.
type Params map[string]any

// Pipe is a single processing stage.
//
// Configure is called exactly once, before any Process call, with the entry's
// parameters minus the reserved keys. Process consumes one window's packet and
// returns the packet handed to the next stage. An error from Process affects
// only the current window; implementations must leave their state usable for
// the next one.
type Pipe interface {
	Name() string
	Category() Category
	Configure(params Params) error
	Process(ctx context.Context, in Packet) (Packet, error)
}

// Source is the entry stage of a pipeline. Next returns the next raw window,
// or ok=false once the data is exhausted. Live sources block in Next until
// data arrives, the source is closed, or ctx is done.
type Source interface {
	Pipe
	Open(ctx context.Context) error
	Next(ctx context.Context) (Packet, bool, error)
	Close() error
	Live() bool
}

// Versioned is implemented by pipes that report an implementation version.
// The version takes part in cache keys and run provenance.
type Versioned interface {
	Version() string
}

// Factory creates an unconfigured pipe instance with the given name.
type Factory func(name string) Pipe

// Base carries the instance name; implementations embed it.
type Base struct {
	name string
}

// NewBase returns a Base for the named instance.
func NewBase(name string) Base { return Base{name: name} }

// Name returns the instance name.
func (b Base) Name() string { return b.name }

// VersionOf returns p's version, or "" when p is not Versioned.
func VersionOf(p Pipe) string {
	if v, ok := p.(Versioned); ok {
		return v.Version()
	}
	return ""
}
