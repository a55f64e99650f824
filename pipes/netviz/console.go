// Package netviz renders network windows.
package netviz

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/kbukum/dyne/pipe"
	"github.com/kbukum/dyne/validation"
)

// ConsoleParams configures Console.
type ConsoleParams struct {
	Precision int    `mapstructure:"precision" validate:"gte=0,lte=8"`
	Output    string `mapstructure:"output" validate:"oneof=stdout stderr discard"`
	Title     string `mapstructure:"title"`
}

// Console prints each window's matrix as a text table and passes the packet
// through unchanged.
type Console struct {
	pipe.Base
	params ConsoleParams
	out    io.Writer
}

// NewConsole is the pipe.Factory for "netviz.Console".
func NewConsole(name string) pipe.Pipe {
	return &Console{Base: pipe.NewBase(name)}
}

func (c *Console) Category() pipe.Category { return pipe.CategoryNetViz }
func (c *Console) Version() string         { return "1.0.0" }

// Configure decodes ConsoleParams.
func (c *Console) Configure(params pipe.Params) error {
	c.params = ConsoleParams{Precision: 2, Output: "stdout"}
	if err := validation.Decode(params, &c.params); err != nil {
		return err
	}
	switch c.params.Output {
	case "stderr":
		c.out = os.Stderr
	case "discard":
		c.out = io.Discard
	default:
		c.out = os.Stdout
	}
	return nil
}

// SetOutput redirects rendering to w.
func (c *Console) SetOutput(w io.Writer) { c.out = w }

// Process renders in.
func (c *Console) Process(_ context.Context, in pipe.Packet) (pipe.Packet, error) {
	if _, err := io.WriteString(c.out, Render(in, c.params.Title, c.params.Precision)); err != nil {
		return pipe.Packet{}, fmt.Errorf("render: %w", err)
	}
	return in, nil
}

// Render formats a packet as a labelled table headed by the window time.
func Render(p pipe.Packet, title string, precision int) string {
	var b strings.Builder
	rows, cols := p.Shape()
	if title != "" {
		fmt.Fprintf(&b, "%s ", title)
	}
	fmt.Fprintf(&b, "window %d  time %s  %dx%d\n", p.Window.Index, clock(p.Window.Start), rows, cols)

	rowNames := labels(p.Rows, rows)
	colNames := labels(p.Cols, cols)
	width := precision + 4
	for _, n := range colNames {
		width = max(width, len(n))
	}
	label := 0
	for _, n := range rowNames {
		label = max(label, len(n))
	}

	fmt.Fprintf(&b, "%*s", label, "")
	for _, n := range colNames {
		fmt.Fprintf(&b, " %*s", width, n)
	}
	b.WriteByte('\n')
	for r, row := range p.Data {
		fmt.Fprintf(&b, "%*s", label, rowNames[r])
		for _, v := range row {
			fmt.Fprintf(&b, " %*.*f", width, precision, v)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func labels(a pipe.Axis, n int) []string {
	out := make([]string, n)
	for i := range out {
		switch {
		case i < len(a.Names):
			out[i] = a.Names[i]
		default:
			out[i] = fmt.Sprintf("%d", i)
		}
	}
	return out
}

// clock formats seconds as HH:MM:SS.mmm.
func clock(sec float64) string {
	d := time.Duration(math.Round(sec * float64(time.Second)))
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	ms := int(d % time.Second / time.Millisecond)
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}
