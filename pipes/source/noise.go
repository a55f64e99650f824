package source

import (
	"context"
	"math"
	"math/rand/v2"

	"github.com/kbukum/dyne/errors"
	"github.com/kbukum/dyne/pipe"
	"github.com/kbukum/dyne/validation"
)

// NoiseParams configures a Noise source.
type NoiseParams struct {
	Nodes      int     `mapstructure:"n_node" validate:"gte=1"`
	Duration   float64 `mapstructure:"duration" validate:"gt=0"`
	SampleRate float64 `mapstructure:"sample_rate" validate:"gt=0"`
	WinLen     float64 `mapstructure:"win_len" validate:"gt=0"`
	WinDisp    float64 `mapstructure:"win_disp" validate:"gt=0,ltefield=WinLen"`
	Seed       uint64  `mapstructure:"seed"`
	// NaNRate is the fraction of samples replaced by NaN, for exercising
	// the missing-sample repair in Process.
	NaNRate float64 `mapstructure:"nan_rate" validate:"gte=0,lt=1"`
}

// DefaultNoiseParams returns 10 s of 4-channel noise at 100 Hz in 1 s
// windows every 0.5 s.
func DefaultNoiseParams() NoiseParams {
	return NoiseParams{Nodes: 4, Duration: 10, SampleRate: 100, WinLen: 1, WinDisp: 0.5, Seed: 1}
}

// Noise generates correlated Gaussian noise: independent unit normals mixed
// through a random matrix, so channels share covariance. The same seed
// always yields the same signal.
type Noise struct {
	pipe.Base
	params  NoiseParams
	win     windowing
	names   []string
	signal  [][]float64
	samples int
	next    int
}

// NewNoise is the pipe.Factory for "source.Noise".
func NewNoise(name string) pipe.Pipe {
	return &Noise{Base: pipe.NewBase(name)}
}

func (n *Noise) Category() pipe.Category { return pipe.CategorySource }
func (n *Noise) Version() string         { return "1.0.0" }
func (n *Noise) Live() bool              { return false }

// Configure decodes NoiseParams.
func (n *Noise) Configure(params pipe.Params) error {
	p := DefaultNoiseParams()
	if err := validation.Decode(params, &p); err != nil {
		return err
	}
	win, err := newWindowing(p.SampleRate, p.WinLen, p.WinDisp)
	if err != nil {
		return errors.InvalidParameter(n.Name(), 0, err.Error())
	}
	n.samples = int(math.Round(p.Duration * p.SampleRate))
	if n.samples < win.length {
		return errors.InvalidParameter(n.Name(), 0, "duration is shorter than one window")
	}
	n.params = p
	n.win = win
	n.names = channelNames(p.Nodes)
	return nil
}

// Windows returns the number of windows the source will produce.
func (n *Noise) Windows() int { return n.win.count(n.samples) }

// Open generates the signal.
func (n *Noise) Open(context.Context) error {
	rng := rand.New(rand.NewPCG(n.params.Seed, n.params.Seed^0x9e3779b97f4a7c15))
	nodes := n.params.Nodes

	mix := pipe.NewMatrix(nodes, nodes)
	for i := range mix {
		for j := range mix[i] {
			mix[i][j] = rng.NormFloat64()
		}
	}
	z := make([]float64, nodes)
	n.signal = pipe.NewMatrix(nodes, n.samples)
	for t := 0; t < n.samples; t++ {
		for k := range z {
			z[k] = rng.NormFloat64()
		}
		for c := 0; c < nodes; c++ {
			var v float64
			for k, zk := range z {
				v += mix[c][k] * zk
			}
			if n.params.NaNRate > 0 && rng.Float64() < n.params.NaNRate {
				v = math.NaN()
			}
			n.signal[c][t] = v
		}
	}
	n.next = 0
	return nil
}

// Next returns the next window, or false after the last whole window.
func (n *Noise) Next(ctx context.Context) (pipe.Packet, bool, error) {
	if err := ctx.Err(); err != nil {
		return pipe.Packet{}, false, err
	}
	if n.next >= n.Windows() {
		return pipe.Packet{}, false, nil
	}
	start, _ := n.win.bounds(n.next)
	pkt := n.win.clip(n.signal, n.names, n.next, start)
	n.next++
	return pkt, true, nil
}

// Close releases the signal.
func (n *Noise) Close() error {
	n.signal = nil
	return nil
}

// Process replaces NaN samples with the mean of the channel's finite
// samples in the window, or 0 when the channel has none.
func (n *Noise) Process(_ context.Context, in pipe.Packet) (pipe.Packet, error) {
	return FillNaN(in), nil
}

// FillNaN returns in with NaN samples replaced by their row's finite mean.
// in is returned unchanged when it has no NaN.
func FillNaN(in pipe.Packet) pipe.Packet {
	var out pipe.Packet
	copied := false
	for r, row := range in.Data {
		var sum float64
		var finite int
		hasNaN := false
		for _, v := range row {
			if math.IsNaN(v) {
				hasNaN = true
				continue
			}
			sum += v
			finite++
		}
		if !hasNaN {
			continue
		}
		if !copied {
			out = in.Clone()
			copied = true
		}
		mean := 0.0
		if finite > 0 {
			mean = sum / float64(finite)
		}
		for k, v := range out.Data[r] {
			if math.IsNaN(v) {
				out.Data[r][k] = mean
			}
		}
	}
	if !copied {
		return in
	}
	return out
}
