package quad

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/moondog-sim/quadrant/pkg/config"
)

const (
	// DefaultBaudRate is the standard baud rate for the quadrant MCU.
	DefaultBaudRate = 115200
	// DefaultBufferSize is the default size for the frames channel buffer.
	DefaultBufferSize = 100
	// NumAxes is the number of analog channels the MCU reports.
	NumAxes = 7
	// NumButtons is the number of digital inputs behind the I/O expanders.
	NumButtons = 32
	// ADCMax is the highest raw reading the MCU's 10-bit ADC can produce.
	ADCMax = config.ADCMax
)

// RawFrame is one unprocessed report from the quadrant MCU: the raw ADC
// reading of every analog channel plus the logical state of all 32 buttons.
// Buttons is a bitmask with bit i set when button i is pressed; the active-low
// electrical level on the wire has already been inverted at parse time.
type RawFrame struct {
	Timestamp time.Time
	Axes      [NumAxes]int
	Buttons   uint32
}

// Pressed reports whether button i is pressed in the frame.
func (f RawFrame) Pressed(i int) bool {
	if i < 0 || i >= NumButtons {
		return false
	}
	return f.Buttons&(1<<uint(i)) != 0
}

// Device defines the interface for quadrant devices (real or mocked).
type Device interface {
	Connect() error
	Close() error
	Frames() <-chan RawFrame
	IsConnected() bool
}

var _ Device = (*Serial)(nil)

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial represents a connection to the quadrant MCU.
type Serial struct {
	port     string
	baudRate int
	bufSize  int

	conn      serial.Port
	frames    chan RawFrame
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
}

// New creates a new Device instance with the specified port, baud rate, and buffer size.
func New(port string, baudRate int, bufSize int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Serial{
		port:     port,
		baudRate: baudRate,
		bufSize:  bufSize,
		frames:   make(chan RawFrame, bufSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{
			Name:        name,
			Description: name,
		})
	}

	return result, nil
}

// Connect connects to the serial port and starts reading frames.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return fmt.Errorf("already connected")
	}

	mode := &serial.Mode{
		BaudRate: d.baudRate,
	}

	port, err := serial.Open(d.port, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}

	d.conn = port
	d.connected = true

	go d.readFrames()

	return nil
}

// Close closes the connection and stops reading frames.
func (d *Serial) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected {
		return nil
	}

	d.cancel()

	if d.conn != nil {
		if err := d.conn.Close(); err != nil {
			log.Printf("Error closing serial port: %v", err)
		}
		d.conn = nil
	}

	d.connected = false
	close(d.frames)

	return nil
}

// Frames returns the channel for reading raw frames.
func (d *Serial) Frames() <-chan RawFrame {
	return d.frames
}

// IsConnected returns whether the device is currently connected.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

// readFrames reads lines from the serial port and parses them into RawFrame.
func (d *Serial) readFrames() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic in readFrames: %v", r)
		}
	}()

	scanner := bufio.NewScanner(d.conn)
	for {
		select {
		case <-d.ctx.Done():
			return
		default:
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil && err != io.EOF {
					log.Printf("Error reading from serial port: %v", err)
				}
				return
			}

			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			frame, err := parseLine(line)
			if err != nil {
				log.Printf("Failed to parse line '%s': %v", line, err)
				continue
			}

			select {
			case d.frames <- frame:
			case <-d.ctx.Done():
				return
			default:
				// Channel full, log and skip
				log.Printf("Frames channel full, dropping frame")
			}
		}
	}
}

// parseLine parses a line from the MCU into a RawFrame.
// Format: unix_micros,a0,a1,a2,a3,a4,a5,a6,btnmask
// btnmask carries the electrical level of all 32 inputs in hex; the inputs
// are wired active-low with pull-ups, so pressed bits read 0 on the wire.
// Example: 1234567890123,512,490,300,700,700,0,0,ffffffff
func parseLine(line string) (RawFrame, error) {
	parts := strings.Split(line, ",")
	if len(parts) != NumAxes+2 {
		return RawFrame{}, fmt.Errorf("invalid line format: expected %d comma-separated values, got %d", NumAxes+2, len(parts))
	}

	timestampMicros, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return RawFrame{}, fmt.Errorf("invalid timestamp: %w", err)
	}
	timestamp := time.Unix(0, timestampMicros*1000)

	var frame RawFrame
	frame.Timestamp = timestamp

	for i := 0; i < NumAxes; i++ {
		v, err := strconv.ParseUint(parts[i+1], 10, 16)
		if err != nil {
			return RawFrame{}, fmt.Errorf("invalid axis %d reading: %w", i, err)
		}
		if v > ADCMax {
			return RawFrame{}, fmt.Errorf("axis %d reading out of range: %d (max %d)", i, v, ADCMax)
		}
		frame.Axes[i] = int(v)
	}

	mask, err := strconv.ParseUint(parts[NumAxes+1], 16, 32)
	if err != nil {
		return RawFrame{}, fmt.Errorf("invalid button mask: %w", err)
	}
	// Invert the active-low wire levels into logical pressed bits.
	frame.Buttons = ^uint32(mask)

	return frame, nil
}
