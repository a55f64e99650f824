// Package surrogate builds null-model versions of a signal.
package surrogate

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/kbukum/dyne/pipe"
	"github.com/kbukum/dyne/validation"
)

// TimeShiftParams configures TimeShift.
type TimeShiftParams struct {
	Seed uint64 `mapstructure:"seed"`
	// MinShift is the smallest shift as a fraction of the window.
	MinShift float64 `mapstructure:"min_shift" validate:"gte=0,lt=1"`
}

// TimeShift circularly shifts each channel by an independent random offset,
// keeping every channel's spectrum while destroying cross-channel timing.
// Offsets depend only on the seed and the window index, so a window always
// gets the same surrogate.
type TimeShift struct {
	pipe.Base
	params TimeShiftParams
}

// NewTimeShift is the pipe.Factory for "surrogate.TimeShift".
func NewTimeShift(name string) pipe.Pipe {
	return &TimeShift{Base: pipe.NewBase(name)}
}

func (s *TimeShift) Category() pipe.Category { return pipe.CategorySurrogate }
func (s *TimeShift) Version() string         { return "1.0.0" }

// Configure decodes TimeShiftParams.
func (s *TimeShift) Configure(params pipe.Params) error {
	s.params = TimeShiftParams{Seed: 1, MinShift: 0.1}
	return validation.Decode(params, &s.params)
}

// Process returns the shifted signal. Time labels are kept.
func (s *TimeShift) Process(_ context.Context, in pipe.Packet) (pipe.Packet, error) {
	rows, cols := in.Shape()
	if cols < 2 {
		return pipe.Packet{}, fmt.Errorf("need at least 2 samples to shift, got %d", cols)
	}
	rng := rand.New(rand.NewPCG(s.params.Seed, uint64(in.Window.Index)))
	lo := int(s.params.MinShift * float64(cols))
	if lo < 1 {
		lo = 1
	}

	out := in.Clone()
	for r := 0; r < rows; r++ {
		shift := lo + rng.IntN(cols-lo)
		for k, v := range in.Data[r] {
			out.Data[r][(k+shift)%cols] = v
		}
	}
	return out, nil
}
