// Package nodetopo measures per-node topology of an adjacency matrix.
package nodetopo

import (
	"context"
	"fmt"

	"github.com/kbukum/dyne/pipe"
	"github.com/kbukum/dyne/validation"
)

// StrengthParams configures Strength.
type StrengthParams struct {
	SelfLoops bool `mapstructure:"self_loops"`
	// Normalize divides by the number of other nodes.
	Normalize bool `mapstructure:"normalize"`
}

// Strength is the weighted degree of every node: the row sum of the
// adjacency matrix.
type Strength struct {
	pipe.Base
	params StrengthParams
}

// NewStrength is the pipe.Factory for "nodetopo.Strength".
func NewStrength(name string) pipe.Pipe {
	return &Strength{Base: pipe.NewBase(name)}
}

func (s *Strength) Category() pipe.Category { return pipe.CategoryNodeTopo }
func (s *Strength) Version() string         { return "1.0.0" }

// Configure decodes StrengthParams.
func (s *Strength) Configure(params pipe.Params) error {
	return validation.Decode(params, &s.params)
}

// Process returns a node x 1 matrix.
func (s *Strength) Process(_ context.Context, in pipe.Packet) (pipe.Packet, error) {
	rows, cols := in.Shape()
	if rows == 0 || rows != cols {
		return pipe.Packet{}, fmt.Errorf("expected a square adjacency matrix, got %dx%d", rows, cols)
	}

	out := pipe.NewMatrix(rows, 1)
	for i, row := range in.Data {
		var sum float64
		for j, v := range row {
			if i == j && !s.params.SelfLoops {
				continue
			}
			sum += v
		}
		if s.params.Normalize && rows > 1 {
			sum /= float64(rows - 1)
		}
		out[i][0] = sum
	}
	return pipe.Packet{
		Window: in.Window,
		Rows:   in.Rows,
		Cols:   pipe.Axis{Label: pipe.AxisMetric, Names: []string{"strength"}},
		Data:   out,
		Meta:   in.Meta,
	}, nil
}
