// Package adjacency turns a multichannel window into a node x node
// association matrix.
package adjacency

import (
	"context"
	"fmt"
	"math"

	"github.com/kbukum/dyne/pipe"
	"github.com/kbukum/dyne/validation"
)

// CorrelationParams configures Correlation.
type CorrelationParams struct {
	// Absolute keeps the magnitude of each coefficient.
	Absolute bool `mapstructure:"absolute"`
	// Threshold zeroes associations below it.
	Threshold float64 `mapstructure:"threshold" validate:"gte=0,lte=1"`
}

// Correlation computes the Pearson correlation between every pair of
// channels. The diagonal is 1.
type Correlation struct {
	pipe.Base
	params CorrelationParams
}

// NewCorrelation is the pipe.Factory for "adjacency.Correlation".
func NewCorrelation(name string) pipe.Pipe {
	return &Correlation{Base: pipe.NewBase(name)}
}

func (c *Correlation) Category() pipe.Category { return pipe.CategoryAdjacency }
func (c *Correlation) Version() string         { return "1.0.0" }

// Configure decodes CorrelationParams.
func (c *Correlation) Configure(params pipe.Params) error {
	c.params = CorrelationParams{Absolute: true}
	return validation.Decode(params, &c.params)
}

// Process fails on windows with fewer than two samples, non-finite values
// or a flat channel.
func (c *Correlation) Process(_ context.Context, in pipe.Packet) (pipe.Packet, error) {
	nodes, samples := in.Shape()
	if samples < 2 {
		return pipe.Packet{}, fmt.Errorf("need at least 2 samples, got %d", samples)
	}

	centered := pipe.NewMatrix(nodes, samples)
	norms := make([]float64, nodes)
	for r, row := range in.Data {
		var mean float64
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return pipe.Packet{}, fmt.Errorf("channel %s has non-finite samples", axisName(in.Rows, r))
			}
			mean += v
		}
		mean /= float64(samples)
		var ss float64
		for k, v := range row {
			d := v - mean
			centered[r][k] = d
			ss += d * d
		}
		if ss == 0 {
			return pipe.Packet{}, fmt.Errorf("channel %s is flat", axisName(in.Rows, r))
		}
		norms[r] = math.Sqrt(ss)
	}

	adj := pipe.NewMatrix(nodes, nodes)
	for i := 0; i < nodes; i++ {
		adj[i][i] = 1
		for j := i + 1; j < nodes; j++ {
			var dot float64
			for k := 0; k < samples; k++ {
				dot += centered[i][k] * centered[j][k]
			}
			r := dot / (norms[i] * norms[j])
			if c.params.Absolute {
				r = math.Abs(r)
			}
			if math.Abs(r) < c.params.Threshold {
				r = 0
			}
			adj[i][j], adj[j][i] = r, r
		}
	}

	nodeAxis := pipe.Axis{Label: pipe.AxisNode, Names: append([]string(nil), in.Rows.Names...)}
	return pipe.Packet{
		Window: in.Window,
		Rows:   nodeAxis,
		Cols:   nodeAxis,
		Data:   adj,
		Meta:   in.Meta,
	}, nil
}

func axisName(a pipe.Axis, i int) string {
	if i < len(a.Names) {
		return a.Names[i]
	}
	return fmt.Sprintf("#%d", i)
}
