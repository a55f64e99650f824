package sigproc

import (
	"context"
	"math"
	"testing"

	"github.com/kbukum/dyne/pipe"
)

func signal() pipe.Packet {
	return pipe.Packet{
		Rows: pipe.Axis{Label: pipe.AxisChannel, Names: []string{"a", "b", "c"}},
		Data: [][]float64{{1, 2}, {3, 4}, {5, 9}},
	}
}

func TestCommonAverage_Process(t *testing.T) {
	tests := []struct {
		name     string
		params   pipe.Params
		expected [][]float64
	}{
		{"all channels", nil, [][]float64{{-2, -3}, {0, -1}, {2, 4}}},
		{"exclude c", pipe.Params{"exclude": []any{"c"}}, [][]float64{{-1, -1}, {1, 1}, {3, 6}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewCommonAverage("car")
			if err := p.Configure(tt.params); err != nil {
				t.Fatalf("Configure failed: %v", err)
			}
			in := signal()
			out, err := p.Process(context.Background(), in)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			for r := range tt.expected {
				for k := range tt.expected[r] {
					if math.Abs(out.Data[r][k]-tt.expected[r][k]) > 1e-12 {
						t.Errorf("[%d][%d]: expected %v, got %v", r, k, tt.expected[r][k], out.Data[r][k])
					}
				}
			}
			if in.Data[0][0] != 1 {
				t.Error("expected input to be left untouched")
			}
		})
	}
}

func TestCommonAverage_Errors(t *testing.T) {
	p := NewCommonAverage("car")
	if err := p.Configure(pipe.Params{"exclude": []any{"a", "b", "c"}}); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	if _, err := p.Process(context.Background(), signal()); err == nil {
		t.Error("expected error when every channel is excluded")
	}
	if _, err := p.Process(context.Background(), pipe.Packet{}); err == nil {
		t.Error("expected error for empty signal")
	}
	if err := NewCommonAverage("car").Configure(pipe.Params{"window": 3.0}); err == nil {
		t.Error("expected unknown parameter to be rejected")
	}
}
