package quad

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine_Valid(t *testing.T) {
	frame, err := parseLine("1700000000000000,512,490,300,700,701,0,1023,fffffffe")
	require.NoError(t, err)

	assert.Equal(t, time.Unix(0, 1700000000000000*1000), frame.Timestamp)
	assert.Equal(t, [NumAxes]int{512, 490, 300, 700, 701, 0, 1023}, frame.Axes)

	// Bit 0 low on the wire means button 0 is pressed (active-low inputs).
	assert.True(t, frame.Pressed(0))
	for i := 1; i < NumButtons; i++ {
		assert.False(t, frame.Pressed(i), "button %d should be released", i)
	}
}

func TestParseLine_AllReleased(t *testing.T) {
	frame, err := parseLine("1,0,0,0,0,0,0,0,ffffffff")
	require.NoError(t, err)
	assert.Equal(t, uint32(0), frame.Buttons)
}

func TestParseLine_WrongFieldCount(t *testing.T) {
	_, err := parseLine("1,2,3")
	assert.Error(t, err)

	_, err = parseLine("1,512,490,300,700,701,0,1023,0,extra")
	assert.Error(t, err)
}

func TestParseLine_AxisOutOfRange(t *testing.T) {
	_, err := parseLine("1,1024,0,0,0,0,0,0,ffffffff")
	assert.Error(t, err, "readings above the 10-bit ADC range are rejected")
}

func TestParseLine_BadNumbers(t *testing.T) {
	_, err := parseLine("abc,0,0,0,0,0,0,0,ffffffff")
	assert.Error(t, err)

	_, err = parseLine("1,x,0,0,0,0,0,0,ffffffff")
	assert.Error(t, err)

	_, err = parseLine("1,0,0,0,0,0,0,0,zz")
	assert.Error(t, err)
}

func TestPressed_OutOfRangeIndex(t *testing.T) {
	frame := RawFrame{Buttons: 0xffffffff}
	assert.False(t, frame.Pressed(-1))
	assert.False(t, frame.Pressed(NumButtons))
}

func TestSerial_CloseWithoutConnect(t *testing.T) {
	d := New("/dev/null-port", 0, 0)
	assert.False(t, d.IsConnected())
	assert.NoError(t, d.Close())
}

func TestNew_Defaults(t *testing.T) {
	d := New("COM3", 0, 0)
	assert.Equal(t, DefaultBaudRate, d.baudRate)
	assert.Equal(t, DefaultBufferSize, d.bufSize)
}
