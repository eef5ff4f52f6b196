package report

import (
	"time"

	"github.com/moondog-sim/quadrant/pkg/axis"
	"github.com/moondog-sim/quadrant/pkg/quad"
)

// Frame is the complete output of one control cycle: the conditioned value of
// every axis in configured order, values in [0, 1023], plus the logical state
// of all 32 buttons. Frames are transient; sinks must not retain them beyond
// Send.
type Frame struct {
	Timestamp time.Time `json:"timestamp"`
	Axes      []int     `json:"axes"`
	Buttons   uint32    `json:"buttons"`

	// Detail carries the per-stage breakdown of every axis for the debug
	// table and the monitor GUI. Not part of the wire report.
	Detail []axis.Result `json:"-"`
}

// Pressed reports whether button i is pressed in the frame.
func (f Frame) Pressed(i int) bool {
	if i < 0 || i >= quad.NumButtons {
		return false
	}
	return f.Buttons&(1<<uint(i)) != 0
}

// Sink receives one Frame per control cycle.
type Sink interface {
	Send(Frame) error
	Close() error
}

// MultiSink fans a frame out to several sinks. The first Send error is
// returned; remaining sinks still receive the frame.
type MultiSink []Sink

// Send delivers the frame to every sink.
func (m MultiSink) Send(f Frame) error {
	var first error
	for _, s := range m {
		if err := s.Send(f); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Close closes every sink.
func (m MultiSink) Close() error {
	var first error
	for _, s := range m {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
