package source

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/dyne/errors"
	"github.com/kbukum/dyne/pipe"
	"github.com/kbukum/dyne/validation"
)

// StreamParams configures a Stream source.
type StreamParams struct {
	Nodes      int     `mapstructure:"n_node" validate:"gte=1"`
	SampleRate float64 `mapstructure:"sample_rate" validate:"gt=0"`
	WinLen     float64 `mapstructure:"win_len" validate:"gt=0"`
	WinDisp    float64 `mapstructure:"win_disp" validate:"gt=0,ltefield=WinLen"`
}

// Stream is a live source fed by Push. Next blocks until a whole window has
// been pushed, CloseInput is called, or the context is done.
type Stream struct {
	pipe.Base
	params StreamParams
	win    windowing
	names  []string

	mu     sync.Mutex
	buf    [][]float64
	offset int
	next   int
	closed bool
	notify chan struct{}
}

// NewStream is the pipe.Factory for "source.Stream".
func NewStream(name string) pipe.Pipe {
	return &Stream{Base: pipe.NewBase(name), notify: make(chan struct{}, 1)}
}

func (s *Stream) Category() pipe.Category { return pipe.CategorySource }
func (s *Stream) Version() string         { return "1.0.0" }
func (s *Stream) Live() bool              { return true }

// Configure decodes StreamParams.
func (s *Stream) Configure(params pipe.Params) error {
	p := StreamParams{Nodes: 1, SampleRate: 100, WinLen: 1, WinDisp: 0.5}
	if err := validation.Decode(params, &p); err != nil {
		return err
	}
	win, err := newWindowing(p.SampleRate, p.WinLen, p.WinDisp)
	if err != nil {
		return errors.InvalidParameter(s.Name(), 0, err.Error())
	}
	s.params = p
	s.win = win
	s.names = channelNames(p.Nodes)
	s.buf = make([][]float64, p.Nodes)
	return nil
}

// Push appends samples, given as one slice per channel of equal length.
func (s *Stream) Push(samples [][]float64) error {
	if len(samples) != s.params.Nodes {
		return fmt.Errorf("stream %s: expected %d channels, got %d", s.Name(), s.params.Nodes, len(samples))
	}
	for c := 1; c < len(samples); c++ {
		if len(samples[c]) != len(samples[0]) {
			return fmt.Errorf("stream %s: channel %d has %d samples, channel 0 has %d", s.Name(), c, len(samples[c]), len(samples[0]))
		}
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("stream %s: input closed", s.Name())
	}
	for c, ch := range samples {
		s.buf[c] = append(s.buf[c], ch...)
	}
	s.mu.Unlock()
	s.wake()
	return nil
}

// CloseInput marks the end of the data. Windows already complete are still
// delivered; Next then reports exhaustion.
func (s *Stream) CloseInput() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.wake()
}

func (s *Stream) wake() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Open is a no-op; samples pushed before the run are kept.
func (s *Stream) Open(context.Context) error { return nil }

// Close is a no-op.
func (s *Stream) Close() error { return nil }

// Next waits for the next whole window.
func (s *Stream) Next(ctx context.Context) (pipe.Packet, bool, error) {
	for {
		if pkt, ok, done := s.take(); ok || done {
			return pkt, ok, nil
		}
		select {
		case <-s.notify:
		case <-ctx.Done():
			return pipe.Packet{}, false, ctx.Err()
		}
	}
}

// take returns the next window if buffered. done reports a closed input
// with no whole window left.
func (s *Stream) take() (pkt pipe.Packet, ok, done bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start, end := s.win.bounds(s.next)
	if end-s.offset <= len(s.buf[0]) {
		pkt = s.win.clip(s.buf, s.names, s.next, start-s.offset)
		s.next++
		s.trim()
		return pkt, true, false
	}
	return pipe.Packet{}, false, s.closed
}

// trim drops samples no later window needs.
func (s *Stream) trim() {
	start, _ := s.win.bounds(s.next)
	drop := start - s.offset
	if drop <= 0 {
		return
	}
	if drop > len(s.buf[0]) {
		drop = len(s.buf[0])
	}
	for c := range s.buf {
		s.buf[c] = append([]float64(nil), s.buf[c][drop:]...)
	}
	s.offset += drop
}

// Process replaces NaN samples the same way Noise does.
func (s *Stream) Process(_ context.Context, in pipe.Packet) (pipe.Packet, error) {
	return FillNaN(in), nil
}
