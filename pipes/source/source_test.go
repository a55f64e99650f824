package source

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/kbukum/dyne/errors"
	"github.com/kbukum/dyne/pipe"
)

func configuredNoise(t *testing.T, params pipe.Params) *Noise {
	t.Helper()
	n := NewNoise("noise").(*Noise)
	if err := n.Configure(params); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	return n
}

func drain(t *testing.T, src pipe.Source) []pipe.Packet {
	t.Helper()
	ctx := context.Background()
	if err := src.Open(ctx); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer src.Close()
	var out []pipe.Packet
	for {
		pkt, ok, err := src.Next(ctx)
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if !ok {
			return out
		}
		out = append(out, pkt)
	}
}

func TestNoise_WindowCount(t *testing.T) {
	tests := []struct {
		name     string
		params   pipe.Params
		expected int
	}{
		{"defaults", pipe.Params{}, 19},
		{"no overlap", pipe.Params{"win_disp": 1.0}, 10},
		{"one window", pipe.Params{"duration": 1.0}, 1},
		{"partial tail dropped", pipe.Params{"duration": 2.2, "win_disp": 1.0}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := configuredNoise(t, tt.params)
			if got := n.Windows(); got != tt.expected {
				t.Errorf("expected %d windows, got %d", tt.expected, got)
			}
			if got := len(drain(t, n)); got != tt.expected {
				t.Errorf("expected %d packets, got %d", tt.expected, got)
			}
		})
	}
}

func TestNoise_PacketLayout(t *testing.T) {
	pkts := drain(t, configuredNoise(t, pipe.Params{"n_node": 3.0}))

	for i, p := range pkts {
		if p.Window.Index != i {
			t.Fatalf("expected window %d, got %d", i, p.Window.Index)
		}
		if want := float64(i) * 0.5; math.Abs(p.Window.Start-want) > 1e-9 {
			t.Errorf("window %d: expected start %v, got %v", i, want, p.Window.Start)
		}
		if rows, cols := p.Shape(); rows != 3 || cols != 100 {
			t.Errorf("window %d: expected 3x100, got %dx%d", i, rows, cols)
		}
	}
	if pkts[0].Rows.Label != pipe.AxisChannel || pkts[0].Rows.Names[2] != "ch2" {
		t.Errorf("unexpected row axis %+v", pkts[0].Rows)
	}
	// Consecutive windows overlap by half.
	if pkts[0].Data[0][50] != pkts[1].Data[0][0] {
		t.Error("expected overlapping samples to match")
	}
}

func TestNoise_SeedIsReproducible(t *testing.T) {
	a := drain(t, configuredNoise(t, pipe.Params{"seed": 7.0}))
	b := drain(t, configuredNoise(t, pipe.Params{"seed": 7.0}))
	c := drain(t, configuredNoise(t, pipe.Params{"seed": 8.0}))
	if a[3].Data[1][10] != b[3].Data[1][10] {
		t.Error("expected same seed to give the same signal")
	}
	if a[3].Data[1][10] == c[3].Data[1][10] {
		t.Error("expected different seeds to differ")
	}
}

func TestNoise_ConfigureRejects(t *testing.T) {
	tests := []struct {
		name   string
		params pipe.Params
	}{
		{"displacement longer than window", pipe.Params{"win_len": 0.5, "win_disp": 1.0}},
		{"zero rate", pipe.Params{"sample_rate": 0.0}},
		{"window shorter than a sample", pipe.Params{"win_len": 0.001, "win_disp": 0.001}},
		{"duration shorter than window", pipe.Params{"duration": 0.5}},
		{"fractional node count", pipe.Params{"n_node": 2.5}},
		{"unknown key", pipe.Params{"n_nodes": 4.0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewNoise("noise").Configure(tt.params)
			if !errors.HasCode(err, errors.ErrCodeInvalidParameter) {
				t.Errorf("expected INVALID_PARAMETER, got %v", err)
			}
		})
	}
}

func TestNoise_ProcessFillsNaN(t *testing.T) {
	n := configuredNoise(t, pipe.Params{"nan_rate": 0.2})
	pkts := drain(t, n)

	found := false
	for _, p := range pkts {
		for _, row := range p.Data {
			for _, v := range row {
				found = found || math.IsNaN(v)
			}
		}
		out, err := n.Process(context.Background(), p)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		for _, row := range out.Data {
			for _, v := range row {
				if math.IsNaN(v) {
					t.Fatal("expected NaN samples to be replaced")
				}
			}
		}
	}
	if !found {
		t.Error("expected the raw signal to contain NaN samples")
	}
}

func TestFillNaN(t *testing.T) {
	in := pipe.Packet{Data: [][]float64{{1, math.NaN(), 3}, {math.NaN(), math.NaN(), math.NaN()}, {4, 5, 6}}}
	out := FillNaN(in)
	if out.Data[0][1] != 2 {
		t.Errorf("expected row mean 2, got %v", out.Data[0][1])
	}
	if out.Data[1][0] != 0 {
		t.Errorf("expected 0 for an all-NaN row, got %v", out.Data[1][0])
	}
	if !math.IsNaN(in.Data[0][1]) {
		t.Error("expected input to be left untouched")
	}

	clean := pipe.Packet{Data: [][]float64{{1, 2}}}
	if got := FillNaN(clean); &got.Data[0][0] != &clean.Data[0][0] {
		t.Error("expected a packet without NaN to be returned as is")
	}
}

func configuredStream(t *testing.T) *Stream {
	t.Helper()
	s := NewStream("live").(*Stream)
	if err := s.Configure(pipe.Params{"n_node": 2.0, "sample_rate": 10.0, "win_len": 1.0, "win_disp": 0.5}); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	return s
}

func ramp(from, n int) [][]float64 {
	ch := make([]float64, n)
	for i := range ch {
		ch[i] = float64(from + i)
	}
	return [][]float64{ch, append([]float64(nil), ch...)}
}

func TestStream_WindowsFromPushes(t *testing.T) {
	s := configuredStream(t)
	if !s.Live() {
		t.Error("expected stream to be live")
	}
	if err := s.Push(ramp(0, 12)); err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	if err := s.Push(ramp(12, 13)); err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	s.CloseInput()

	pkts := drain(t, s)
	// 25 samples, 10-sample windows every 5 samples.
	if len(pkts) != 4 {
		t.Fatalf("expected 4 windows, got %d", len(pkts))
	}
	for i, p := range pkts {
		if p.Data[0][0] != float64(i*5) {
			t.Errorf("window %d: expected first sample %d, got %v", i, i*5, p.Data[0][0])
		}
		if p.Window.Start != float64(i)*0.5 {
			t.Errorf("window %d: expected start %v, got %v", i, float64(i)*0.5, p.Window.Start)
		}
	}
}

func TestStream_NextBlocksUntilData(t *testing.T) {
	s := configuredStream(t)
	got := make(chan pipe.Packet, 1)
	go func() {
		pkt, ok, err := s.Next(context.Background())
		if err == nil && ok {
			got <- pkt
		}
		close(got)
	}()

	select {
	case <-got:
		t.Fatal("expected Next to block without data")
	case <-time.After(20 * time.Millisecond):
	}
	if err := s.Push(ramp(0, 10)); err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	select {
	case pkt := <-got:
		if pkt.Window.Index != 0 {
			t.Errorf("expected window 0, got %d", pkt.Window.Index)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for window")
	}
}

func TestStream_NextHonoursContext(t *testing.T) {
	s := configuredStream(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, _, err := s.Next(ctx); err != context.DeadlineExceeded {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestStream_PushValidation(t *testing.T) {
	s := configuredStream(t)
	if err := s.Push([][]float64{{1}}); err == nil {
		t.Error("expected channel count error")
	}
	if err := s.Push([][]float64{{1, 2}, {1}}); err == nil {
		t.Error("expected ragged input error")
	}
	s.CloseInput()
	if err := s.Push(ramp(0, 1)); err == nil {
		t.Error("expected error pushing to closed input")
	}
}
