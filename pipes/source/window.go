package source

import (
	"fmt"
	"math"

	"github.com/kbukum/dyne/pipe"
)

// windowing converts window parameters from seconds to samples.
type windowing struct {
	rate     float64
	length   int
	disp     int
	duration float64
	stride   float64
}

func newWindowing(rate, winLen, winDisp float64) (windowing, error) {
	w := windowing{
		rate:     rate,
		length:   int(math.Round(winLen * rate)),
		disp:     int(math.Round(winDisp * rate)),
		duration: winLen,
		stride:   winDisp,
	}
	if w.length < 1 {
		return w, fmt.Errorf("win_len %vs is shorter than one sample at %v Hz", winLen, rate)
	}
	if w.disp < 1 {
		return w, fmt.Errorf("win_disp %vs is shorter than one sample at %v Hz", winDisp, rate)
	}
	return w, nil
}

// count returns the number of whole windows in n samples.
func (w windowing) count(n int) int {
	if n < w.length {
		return 0
	}
	return (n-w.length)/w.disp + 1
}

// bounds returns the sample range [start, end) of window i.
func (w windowing) bounds(i int) (start, end int) {
	start = i * w.disp
	return start, start + w.length
}

func (w windowing) window(i int) pipe.Window {
	start, _ := w.bounds(i)
	return pipe.Window{
		Index:        i,
		Start:        float64(start) / w.rate,
		Duration:     w.duration,
		Displacement: w.stride,
	}
}

// clip copies samples [from, from+w.length) of every channel into a packet.
func (w windowing) clip(signal [][]float64, names []string, i, from int) pipe.Packet {
	start, _ := w.bounds(i)
	data := pipe.NewMatrix(len(signal), w.length)
	for c, ch := range signal {
		copy(data[c], ch[from:from+w.length])
	}
	times := make([]float64, w.length)
	for k := range times {
		times[k] = float64(start+k) / w.rate
	}
	return pipe.Packet{
		Window: w.window(i),
		Rows:   pipe.Axis{Label: pipe.AxisChannel, Names: names},
		Cols:   pipe.Axis{Label: pipe.AxisTime, Values: times},
		Data:   data,
	}
}

func channelNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("ch%d", i)
	}
	return names
}
