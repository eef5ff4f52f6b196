package pipeline

import (
	"log"
	"sync"
	"time"

	"github.com/moondog-sim/quadrant/pkg/axis"
	"github.com/moondog-sim/quadrant/pkg/config"
	"github.com/moondog-sim/quadrant/pkg/quad"
	"github.com/moondog-sim/quadrant/pkg/report"
)

// Conditioner owns the full per-axis conditioning state and runs the control
// loop: one report per cycle, raw sample -> rolling filter -> calibration ->
// deadband or trim integration -> sink. Buttons bypass the analog path.
//
// All channel state has exactly one mutator: the goroutine running Run (or
// the caller driving Cycle directly in tests). Callbacks observe copies.
type Conditioner struct {
	cfg      *config.Config
	channels []*axis.Channel
	primed   bool

	// Update callbacks, notified once per cycle with the finished frame.
	callbacks []func(report.Frame)
	cbMu      sync.RWMutex

	mu       sync.Mutex
	shutdown bool
}

// New builds a conditioner with one channel per configured axis. Axes beyond
// what the MCU reports are ignored.
func New(cfg *config.Config) *Conditioner {
	axes := cfg.Axes
	if len(axes) > quad.NumAxes {
		log.Printf("Config declares %d axes but the MCU reports %d, ignoring the rest", len(axes), quad.NumAxes)
		axes = axes[:quad.NumAxes]
	}
	channels := make([]*axis.Channel, 0, len(axes))
	for _, ac := range axes {
		channels = append(channels, axis.NewChannel(ac, cfg.Filter.Window, cfg.Trim))
	}
	return &Conditioner{
		cfg:      cfg,
		channels: channels,
	}
}

// Channels returns the conditioner's axis channels. Intended for priming
// inspection; mutation belongs to the control loop alone.
func (c *Conditioner) Channels() []*axis.Channel {
	return c.channels
}

// Prime seeds every channel from one raw frame so the first real cycle has no
// warm-up transient: filters report the true initial readings, the deadbands
// hold the initial mapped positions, and the trim wheel sits at its midpoint.
func (c *Conditioner) Prime(frame quad.RawFrame) {
	for i, ch := range c.channels {
		ch.Prime(frame.Axes[i])
	}
	c.primed = true
}

// Cycle runs one control cycle over a raw frame and returns the finished
// report. The first frame primes the channels instead of filtering from zero.
func (c *Conditioner) Cycle(frame quad.RawFrame) report.Frame {
	if !c.primed {
		c.Prime(frame)
	}

	out := report.Frame{
		Timestamp: frame.Timestamp,
		Axes:      make([]int, len(c.channels)),
		Buttons:   frame.Buttons,
		Detail:    make([]axis.Result, len(c.channels)),
	}

	for i, ch := range c.channels {
		res := ch.Process(frame.Axes[i])
		out.Axes[i] = res.Output
		out.Detail[i] = res
	}

	return out
}

// Run consumes raw frames and emits one report per cycle to the sink until
// the input channel closes. The cycle cadence is the configured loop period;
// each tick conditions the most recent frame, so a fast-sampling MCU never
// backs up the loop. Returns after the input closes and callbacks are
// quiesced.
func (c *Conditioner) Run(in <-chan quad.RawFrame, sink report.Sink) {
	// Block until the first frame arrives; it primes every channel.
	first, ok := <-in
	if !ok {
		c.markShutdown()
		return
	}
	c.Prime(first)
	last := first

	ticker := time.NewTicker(c.cfg.Loop.Period)
	defer ticker.Stop()

	for {
		select {
		case frame, ok := <-in:
			if !ok {
				c.markShutdown()
				return
			}
			last = frame

		case <-ticker.C:
			out := c.Cycle(last)
			if err := sink.Send(out); err != nil {
				log.Printf("Failed to send report: %v", err)
			}
			c.notifyCallbacks(out)
		}
	}
}

// OnUpdate registers a callback invoked once per cycle with the finished
// frame. The callback should copy what it needs and return quickly.
func (c *Conditioner) OnUpdate(callback func(report.Frame)) {
	c.cbMu.Lock()
	defer c.cbMu.Unlock()
	c.callbacks = append(c.callbacks, callback)
}

// markShutdown stops callback delivery once the input has closed.
func (c *Conditioner) markShutdown() {
	c.mu.Lock()
	c.shutdown = true
	c.mu.Unlock()
}

// notifyCallbacks invokes all registered callbacks unless shut down.
func (c *Conditioner) notifyCallbacks(f report.Frame) {
	c.mu.Lock()
	stopped := c.shutdown
	c.mu.Unlock()
	if stopped {
		return
	}

	c.cbMu.RLock()
	callbacks := make([]func(report.Frame), len(c.callbacks))
	copy(callbacks, c.callbacks)
	c.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(f)
		}
	}
}
