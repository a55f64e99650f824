package pipe

import (
	"fmt"
	"maps"
)

// Window is one fixed-duration, strided slice of the signal. Times are in
// seconds from the start of the recording.
type Window struct {
	Index        int     `json:"index"`
	Start        float64 `json:"start"`
	Duration     float64 `json:"duration"`
	Displacement float64 `json:"displacement"`
}

// End returns the time just past the window.
func (w Window) End() float64 { return w.Start + w.Duration }

// Validate rejects windows with a negative index or a non-positive
// duration or displacement.
func (w Window) Validate() error {
	if w.Index < 0 {
		return fmt.Errorf("window index must be non-negative (got %d)", w.Index)
	}
	if w.Duration <= 0 {
		return fmt.Errorf("window %d: duration must be positive (got %v)", w.Index, w.Duration)
	}
	if w.Displacement <= 0 {
		return fmt.Errorf("window %d: displacement must be positive (got %v)", w.Index, w.Displacement)
	}
	return nil
}

// Axis labels one dimension of a packet's data matrix.
type Axis struct {
	Label  string    `json:"label"`
	Names  []string  `json:"names,omitempty"`
	Values []float64 `json:"values,omitempty"`
}

// Axis labels used by the built-in pipes.
const (
	AxisChannel = "channel"
	AxisTime    = "time"
	AxisNode    = "node"
	AxisMetric  = "metric"
)

// Packet is the unit of data passed between stages for one window: a
// row-major matrix plus axis labels. Signals are channel x time, adjacency
// matrices node x node, node topologies node x metric.
type Packet struct {
	Window Window            `json:"window"`
	Rows   Axis              `json:"rows"`
	Cols   Axis              `json:"cols"`
	Data   [][]float64       `json:"data"`
	Meta   map[string]string `json:"meta,omitempty"`
}

// Shape returns the number of rows and columns of Data.
func (p Packet) Shape() (rows, cols int) {
	if len(p.Data) == 0 {
		return 0, 0
	}
	return len(p.Data), len(p.Data[0])
}

// Clone returns a deep copy of p.
func (p Packet) Clone() Packet {
	out := p
	out.Rows = cloneAxis(p.Rows)
	out.Cols = cloneAxis(p.Cols)
	out.Data = make([][]float64, len(p.Data))
	for i, row := range p.Data {
		out.Data[i] = append([]float64(nil), row...)
	}
	out.Meta = maps.Clone(p.Meta)
	return out
}

// Tagged returns p with provenance meta[stage] = hash added. Data is shared.
func (p Packet) Tagged(stage, hash string) Packet {
	meta := make(map[string]string, len(p.Meta)+1)
	maps.Copy(meta, p.Meta)
	meta[stage] = hash
	p.Meta = meta
	return p
}

// NewMatrix allocates a zeroed rows x cols matrix.
func NewMatrix(rows, cols int) [][]float64 {
	backing := make([]float64, rows*cols)
	m := make([][]float64, rows)
	for i := range m {
		m[i] = backing[i*cols : (i+1)*cols : (i+1)*cols]
	}
	return m
}

func cloneAxis(a Axis) Axis {
	return Axis{
		Label:  a.Label,
		Names:  append([]string(nil), a.Names...),
		Values: append([]float64(nil), a.Values...),
	}
}
