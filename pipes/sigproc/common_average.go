// Package sigproc holds signal conditioning pipes.
package sigproc

import (
	"context"
	"fmt"

	"github.com/kbukum/dyne/pipe"
	"github.com/kbukum/dyne/validation"
)

// CommonAverageParams configures CommonAverage.
type CommonAverageParams struct {
	// Exclude lists channels left out of the reference mean. They are
	// still re-referenced.
	Exclude []string `mapstructure:"exclude"`
}

// CommonAverage re-references every channel to the mean of all channels at
// each sample.
type CommonAverage struct {
	pipe.Base
	params CommonAverageParams
}

// NewCommonAverage is the pipe.Factory for "sigproc.CommonAverage".
func NewCommonAverage(name string) pipe.Pipe {
	return &CommonAverage{Base: pipe.NewBase(name)}
}

func (c *CommonAverage) Category() pipe.Category { return pipe.CategorySigProc }
func (c *CommonAverage) Version() string         { return "1.0.0" }

// Configure decodes CommonAverageParams.
func (c *CommonAverage) Configure(params pipe.Params) error {
	return validation.Decode(params, &c.params)
}

// Process subtracts the reference mean from every sample.
func (c *CommonAverage) Process(_ context.Context, in pipe.Packet) (pipe.Packet, error) {
	rows, cols := in.Shape()
	if rows == 0 {
		return pipe.Packet{}, fmt.Errorf("empty signal")
	}

	excluded := make(map[string]bool, len(c.params.Exclude))
	for _, name := range c.params.Exclude {
		excluded[name] = true
	}
	var ref []int
	for r := 0; r < rows; r++ {
		if r < len(in.Rows.Names) && excluded[in.Rows.Names[r]] {
			continue
		}
		ref = append(ref, r)
	}
	if len(ref) == 0 {
		return pipe.Packet{}, fmt.Errorf("every channel is excluded from the reference")
	}

	out := in.Clone()
	for t := 0; t < cols; t++ {
		var mean float64
		for _, r := range ref {
			mean += in.Data[r][t]
		}
		mean /= float64(len(ref))
		for r := 0; r < rows; r++ {
			out.Data[r][t] -= mean
		}
	}
	return out, nil
}
