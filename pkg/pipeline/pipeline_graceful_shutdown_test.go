package pipeline

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/moondog-sim/quadrant/pkg/config"
	"github.com/moondog-sim/quadrant/pkg/quad"
	"github.com/moondog-sim/quadrant/pkg/report"
)

// TestConditioner_RunReturnsWhenInputCloses tests that the control loop exits
// once the device's frame channel closes.
func TestConditioner_RunReturnsWhenInputCloses(t *testing.T) {
	cfg := config.Default()
	cfg.Loop.Period = 5 * time.Millisecond
	c := New(cfg)

	in := make(chan quad.RawFrame, 10)
	done := make(chan struct{})
	go func() {
		c.Run(in, &captureSink{})
		close(done)
	}()

	in <- constantFrame(500)
	time.Sleep(20 * time.Millisecond)
	close(in)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after input closed")
	}
}

// TestConditioner_RunWithImmediatelyClosedInput tests that Run returns even if
// the input closes before the priming frame arrives.
func TestConditioner_RunWithImmediatelyClosedInput(t *testing.T) {
	cfg := config.Default()
	c := New(cfg)

	in := make(chan quad.RawFrame)
	close(in)

	done := make(chan struct{})
	go func() {
		c.Run(in, &captureSink{})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return on closed input")
	}
}

// TestConditioner_NoCallbacksAfterShutdown tests that update callbacks stop
// being delivered once the input channel has closed.
func TestConditioner_NoCallbacksAfterShutdown(t *testing.T) {
	cfg := config.Default()
	cfg.Loop.Period = 5 * time.Millisecond
	c := New(cfg)

	var mu sync.Mutex
	calls := 0
	c.OnUpdate(func(report.Frame) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	in := make(chan quad.RawFrame, 10)
	done := make(chan struct{})
	go func() {
		c.Run(in, &captureSink{})
		close(done)
	}()

	in <- constantFrame(500)
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls > 0
	}, time.Second, time.Millisecond)

	close(in)
	<-done

	mu.Lock()
	after := calls
	mu.Unlock()
	time.Sleep(30 * time.Millisecond)
	mu.Lock()
	assert.Equal(t, after, calls, "callbacks must stop once the input closes")
	mu.Unlock()
}
