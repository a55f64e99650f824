// Package logger holds terminal pipes that record packets.
package logger

import (
	"context"
	"math"

	dynelog "github.com/kbukum/dyne/logger"
	"github.com/kbukum/dyne/pipe"
	"github.com/kbukum/dyne/validation"
)

// ConsoleParams configures Console.
type ConsoleParams struct {
	// Description heads every log line.
	Description string `mapstructure:"description" validate:"required"`
	Level       string `mapstructure:"level" validate:"oneof=debug info"`
}

// Console logs a one-line summary of each packet and passes it through.
type Console struct {
	pipe.Base
	params ConsoleParams
	log    *dynelog.Logger
}

// NewConsole is the pipe.Factory for "logger.Console".
func NewConsole(name string) pipe.Pipe {
	return &Console{Base: pipe.NewBase(name)}
}

func (c *Console) Category() pipe.Category { return pipe.CategoryLogger }
func (c *Console) Version() string         { return "1.0.0" }

// Configure decodes ConsoleParams.
func (c *Console) Configure(params pipe.Params) error {
	c.params = ConsoleParams{Description: "packet", Level: "info"}
	return validation.Decode(params, &c.params)
}

// SetLogger replaces the global logger used by default.
func (c *Console) SetLogger(l *dynelog.Logger) { c.log = l }

// Process logs the packet summary.
func (c *Console) Process(_ context.Context, in pipe.Packet) (pipe.Packet, error) {
	log := c.log
	if log == nil {
		log = dynelog.GetGlobalLogger()
	}
	log = log.WithComponent("pipe." + c.Name())

	fields := Summary(in)
	if c.params.Level == "debug" {
		log.Debug(c.params.Description, fields)
	} else {
		log.Info(c.params.Description, fields)
	}
	return in, nil
}

// Summary returns log fields describing p: window, shape and value range.
func Summary(p pipe.Packet) map[string]interface{} {
	rows, cols := p.Shape()
	fields := dynelog.Fields(
		dynelog.FieldWindow, p.Window.Index,
		"start", p.Window.Start,
		"rows", rows,
		"cols", cols,
		"row_axis", p.Rows.Label,
		"col_axis", p.Cols.Label,
	)
	lo, hi, sum, n := math.Inf(1), math.Inf(-1), 0.0, 0
	for _, row := range p.Data {
		for _, v := range row {
			if math.IsNaN(v) {
				continue
			}
			lo, hi = math.Min(lo, v), math.Max(hi, v)
			sum += v
			n++
		}
	}
	if n > 0 {
		fields["min"] = lo
		fields["max"] = hi
		fields["mean"] = sum / float64(n)
	}
	if len(p.Meta) > 0 {
		fields["stages"] = len(p.Meta)
	}
	return fields
}
