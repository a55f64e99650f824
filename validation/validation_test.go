package validation

import (
	"strings"
	"testing"

	"github.com/kbukum/dyne/errors"
)

type windowParams struct {
	SampleRate float64 `mapstructure:"sample_rate" validate:"gt=0"`
	WinLen     float64 `mapstructure:"win_len" validate:"gt=0"`
	WinDisp    float64 `mapstructure:"win_disp" validate:"gt=0,ltefield=WinLen"`
	Nodes      int     `mapstructure:"n_node" validate:"gte=1"`
	Mode       string  `mapstructure:"mode" validate:"oneof=abs signed"`
}

func defaults() windowParams {
	return windowParams{SampleRate: 100, WinLen: 1, WinDisp: 0.5, Nodes: 4, Mode: "abs"}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		raw      map[string]any
		wantErr  bool
		contains string
		check    func(t *testing.T, p windowParams)
	}{
		{
			name: "defaults kept",
			raw:  map[string]any{},
			check: func(t *testing.T, p windowParams) {
				if p != defaults() {
					t.Errorf("expected defaults, got %+v", p)
				}
			},
		},
		{
			name: "json numbers into int",
			raw:  map[string]any{"n_node": float64(8), "win_len": 2.0},
			check: func(t *testing.T, p windowParams) {
				if p.Nodes != 8 || p.WinLen != 2 {
					t.Errorf("unexpected decode %+v", p)
				}
			},
		},
		{
			name: "yaml ints into float",
			raw:  map[string]any{"sample_rate": 250},
			check: func(t *testing.T, p windowParams) {
				if p.SampleRate != 250 {
					t.Errorf("expected 250, got %v", p.SampleRate)
				}
			},
		},
		{name: "unknown key", raw: map[string]any{"bogus": 1}, wantErr: true, contains: "bogus"},
		{name: "fractional int", raw: map[string]any{"n_node": 2.5}, wantErr: true, contains: "integer"},
		{name: "wrong type", raw: map[string]any{"win_len": "long"}, wantErr: true},
		{name: "non-positive", raw: map[string]any{"sample_rate": 0.0}, wantErr: true, contains: "sample_rate"},
		{name: "displacement exceeds length", raw: map[string]any{"win_disp": 2.0}, wantErr: true, contains: "win_disp: must not exceed win_len"},
		{name: "oneof", raw: map[string]any{"mode": "raw"}, wantErr: true, contains: "mode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := defaults()
			err := Decode(tt.raw, &p)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Decode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.HasCode(err, errors.ErrCodeInvalidParameter) {
					t.Errorf("expected INVALID_PARAMETER, got %v", err)
				}
				if tt.contains != "" && !strings.Contains(err.Error(), tt.contains) {
					t.Errorf("expected error to contain %q, got %q", tt.contains, err.Error())
				}
				return
			}
			if tt.check != nil {
				tt.check(t, p)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	type options struct {
		ModelName string `mapstructure:"model_name" validate:"required"`
	}
	err := Validate(options{})
	if err == nil {
		t.Fatal("expected error for missing field")
	}
	if !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
	appErr, _ := errors.AsAppError(err)
	fields, ok := appErr.Details["fields"].([]FieldError)
	if !ok || len(fields) != 1 || fields[0].Field != "model_name" {
		t.Errorf("expected model_name field error, got %v", appErr.Details)
	}
	if err := Validate(options{ModelName: "m"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{"WinLen": "win_len", "Name": "name", "sampleRate": "sample_rate"}
	for in, want := range tests {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}
