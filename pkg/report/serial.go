package report

import (
	"fmt"
	"strings"

	"go.bug.st/serial"
)

// SerialSink writes each control report as one line to a serial port, for a
// downstream HID adapter that frames it into a host report. Line format:
// a0,a1,...,an,btnmask-hex.
type SerialSink struct {
	conn serial.Port
}

// NewSerialSink opens the serial port and returns a sink writing reports to it.
func NewSerialSink(port string, baudRate int) (*SerialSink, error) {
	conn, err := serial.Open(port, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, fmt.Errorf("failed to open report port %s: %w", port, err)
	}
	return &SerialSink{conn: conn}, nil
}

// Send writes the frame as a single report line.
func (s *SerialSink) Send(f Frame) error {
	var line strings.Builder
	for _, v := range f.Axes {
		fmt.Fprintf(&line, "%d,", v)
	}
	fmt.Fprintf(&line, "%08x\n", f.Buttons)

	if _, err := s.conn.Write([]byte(line.String())); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// Close closes the serial port.
func (s *SerialSink) Close() error {
	return s.conn.Close()
}
