package quad

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moondog-sim/quadrant/pkg/config"
)

func TestMock_ConnectAndFrames(t *testing.T) {
	m := NewMock(&config.MockConfig{
		NoiseLevel: 3,
		SweepSpeed: 0.5,
		SampleRate: 5 * time.Millisecond,
	})

	require.NoError(t, m.Connect())
	assert.True(t, m.IsConnected())

	// Collect a few frames and sanity-check their contents.
	var frames []RawFrame
	timeout := time.After(time.Second)
	for len(frames) < 5 {
		select {
		case f := <-m.Frames():
			frames = append(frames, f)
		case <-timeout:
			t.Fatal("timed out waiting for mock frames")
		}
	}

	require.NoError(t, m.Close())

	for _, f := range frames {
		for i, v := range f.Axes {
			assert.GreaterOrEqual(t, v, 0, "axis %d below range", i)
			assert.LessOrEqual(t, v, ADCMax, "axis %d above range", i)
		}
		assert.False(t, f.Timestamp.IsZero())
	}
}

func TestMock_DoubleConnect(t *testing.T) {
	m := NewMock(nil)
	require.NoError(t, m.Connect())
	assert.Error(t, m.Connect())
	require.NoError(t, m.Close())
}

func TestMock_CloseClosesChannel(t *testing.T) {
	m := NewMock(nil)
	require.NoError(t, m.Connect())
	require.NoError(t, m.Close())
	assert.False(t, m.IsConnected())

	// Drain until close; must not hang.
	timeout := time.After(time.Second)
	for {
		select {
		case _, ok := <-m.Frames():
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("frames channel not closed after Close")
		}
	}
}

func TestMock_CloseIdempotent(t *testing.T) {
	m := NewMock(nil)
	require.NoError(t, m.Connect())
	require.NoError(t, m.Close())
	assert.NoError(t, m.Close())
}
