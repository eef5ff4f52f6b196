package pipeline

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moondog-sim/quadrant/pkg/config"
	"github.com/moondog-sim/quadrant/pkg/quad"
	"github.com/moondog-sim/quadrant/pkg/report"
)

type captureSink struct {
	mu     sync.Mutex
	frames []report.Frame
}

func (s *captureSink) Send(f report.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, f)
	return nil
}

func (s *captureSink) Close() error {
	return nil
}

func (s *captureSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.frames)
}

func frameWith(axes [quad.NumAxes]int, buttons uint32) quad.RawFrame {
	return quad.RawFrame{
		Timestamp: time.Now(),
		Axes:      axes,
		Buttons:   buttons,
	}
}

func constantFrame(v int) quad.RawFrame {
	var axes [quad.NumAxes]int
	for i := range axes {
		axes[i] = v
	}
	return frameWith(axes, 0)
}

func TestConditioner_FirstCycleHasNoTransient(t *testing.T) {
	cfg := config.Default()
	c := New(cfg)

	out := c.Cycle(constantFrame(500))
	require.Len(t, out.Detail, len(cfg.Axes))

	for _, r := range out.Detail {
		assert.Equal(t, 500, r.Smoothed, "%s: first cycle must report the true reading", r.Name)
	}
}

func TestConditioner_SteadyInputIsStable(t *testing.T) {
	cfg := config.Default()
	c := New(cfg)

	first := c.Cycle(constantFrame(500))
	for i := 0; i < 10; i++ {
		out := c.Cycle(constantFrame(500))
		assert.Equal(t, first.Axes, out.Axes, "cycle %d drifted on constant input", i)
	}
}

func TestConditioner_ButtonsBypassAnalogPath(t *testing.T) {
	cfg := config.Default()
	c := New(cfg)

	out := c.Cycle(frameWith(constantFrame(500).Axes, 0xdeadbeef))
	assert.Equal(t, uint32(0xdeadbeef), out.Buttons, "button states pass straight through")
}

func TestConditioner_TrimAxisStartsAtMidpoint(t *testing.T) {
	cfg := config.Default()
	c := New(cfg)

	trimIdx := cfg.TrimIndex()
	require.NotEqual(t, -1, trimIdx)

	out := c.Cycle(constantFrame(500))
	assert.Equal(t, 512, out.Axes[trimIdx], "trim output starts at the clamp midpoint")
}

func TestConditioner_TrimAccumulatesAcrossCycles(t *testing.T) {
	cfg := config.Default()
	cfg.Filter.Window = 1
	c := New(cfg)

	trimIdx := cfg.TrimIndex()
	require.NotEqual(t, -1, trimIdx)

	c.Cycle(constantFrame(500))

	f := constantFrame(500)
	f.Axes[trimIdx] = 520
	out := c.Cycle(f)
	// +20 raw counts at gain 0.5 moves the virtual wheel by 10.
	assert.Equal(t, 522, out.Axes[trimIdx])

	// Returning the sensor to its origin unwinds the motion.
	out = c.Cycle(constantFrame(500))
	assert.Equal(t, 512, out.Axes[trimIdx])
}

func TestConditioner_DeadbandSuppressesJitterPerAxis(t *testing.T) {
	cfg := config.Default()
	cfg.Filter.Window = 1

	// Give the first axis a wide deadband.
	cfg.Axes[0].Deadband = 10
	c := New(cfg)

	first := c.Cycle(constantFrame(500))
	f := constantFrame(500)
	f.Axes[0] = 502
	out := c.Cycle(f)
	assert.Equal(t, first.Axes[0], out.Axes[0], "jitter within the deadband must hold the output")
}

func TestConditioner_RunEmitsAtCadence(t *testing.T) {
	cfg := config.Default()
	cfg.Loop.Period = 10 * time.Millisecond
	c := New(cfg)

	sink := &captureSink{}
	in := make(chan quad.RawFrame, 10)
	done := make(chan struct{})

	go func() {
		c.Run(in, sink)
		close(done)
	}()

	in <- constantFrame(500)
	assert.Eventually(t, func() bool { return sink.count() >= 3 },
		time.Second, 5*time.Millisecond, "expected reports at the loop cadence")

	close(in)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after input closed")
	}
}

func TestConditioner_RunUsesLatestFrame(t *testing.T) {
	cfg := config.Default()
	cfg.Filter.Window = 1
	cfg.Loop.Period = 20 * time.Millisecond
	c := New(cfg)

	sink := &captureSink{}
	in := make(chan quad.RawFrame, 10)
	done := make(chan struct{})

	go func() {
		c.Run(in, sink)
		close(done)
	}()

	// Burst of frames between ticks: only the newest should be conditioned.
	in <- constantFrame(300)
	in <- constantFrame(400)
	in <- constantFrame(900)

	assert.Eventually(t, func() bool {
		sink.mu.Lock()
		defer sink.mu.Unlock()
		if len(sink.frames) == 0 {
			return false
		}
		return sink.frames[len(sink.frames)-1].Detail[1].Raw == 900
	}, time.Second, 5*time.Millisecond, "latest frame should win the cycle")

	close(in)
	<-done
}

