package quad

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/moondog-sim/quadrant/pkg/config"
)

// Mock simulates a quadrant MCU for testing and development. Each axis sweeps
// slowly through its travel with a little noise on top, and a few buttons
// toggle periodically.
type Mock struct {
	cfg *config.MockConfig

	frames    chan RawFrame
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool

	startTime time.Time
}

var _ Device = (*Mock)(nil)

// NewMock creates a new mocked device instance.
func NewMock(cfg *config.MockConfig) *Mock {
	if cfg == nil {
		cfg = &config.MockConfig{
			NoiseLevel: 3,
			SweepSpeed: 0.5,
			SampleRate: 20 * time.Millisecond,
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Mock{
		cfg:    cfg,
		frames: make(chan RawFrame, DefaultBufferSize),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Connect simulates connecting to the device.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return fmt.Errorf("already connected")
	}

	m.connected = true
	m.startTime = time.Now()

	go m.generateFrames()

	return nil
}

// Close stops the mocked device.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return nil
	}

	m.cancel()
	m.connected = false
	close(m.frames)

	return nil
}

// Frames returns the channel for reading raw frames.
func (m *Mock) Frames() <-chan RawFrame {
	return m.frames
}

// IsConnected returns whether the device is currently connected.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// generateFrames generates simulated frames at the configured sample rate.
func (m *Mock) generateFrames() {
	ticker := time.NewTicker(m.cfg.SampleRate)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			frame := m.generateFrame()
			select {
			case m.frames <- frame:
			case <-m.ctx.Done():
				return
			default:
				// Channel full, skip
			}
		}
	}
}

// generateFrame generates a single simulated frame.
func (m *Mock) generateFrame() RawFrame {
	now := time.Now()
	elapsed := now.Sub(m.startTime).Seconds()

	var frame RawFrame
	frame.Timestamp = now

	for i := 0; i < NumAxes; i++ {
		// Each axis sweeps at a slightly different phase so the monitor
		// shows independent motion.
		phase := float64(i) * 0.7
		sweep := math.Sin(elapsed*m.cfg.SweepSpeed + phase)
		noise := math.Sin(elapsed*37.0+phase*13.0) * m.cfg.NoiseLevel

		v := 512.0 + sweep*400.0 + noise
		if v < 0 {
			v = 0
		} else if v > ADCMax {
			v = ADCMax
		}
		frame.Axes[i] = int(v)
	}

	// Toggle a walking button every couple of seconds.
	pressed := uint32(0)
	if int(elapsed)%2 == 0 {
		pressed = 1 << (uint(elapsed/2) % NumButtons)
	}
	frame.Buttons = pressed

	return frame
}
