package posefeed

import (
	"fmt"

	"go.bug.st/serial"
)

// PortOptions configures the serial link to the pose coprocessor.
type PortOptions struct {
	// BaudRate of the link; 0 selects the default 115200.
	BaudRate int
}

// SerialMode converts the options into a serial.Mode.
func (o PortOptions) SerialMode() (*serial.Mode, error) {
	baud := o.BaudRate
	if baud == 0 {
		baud = 115200
	}
	if baud < 0 {
		return nil, fmt.Errorf("invalid baud rate %d", o.BaudRate)
	}
	return &serial.Mode{BaudRate: baud}, nil
}

// NewSerialFeed creates a Feed backed by a serial port at the given path. The
// camera coprocessor runs the pose model and streams one keypoint frame per
// line over UART.
func NewSerialFeed(path string, opts PortOptions) (*Feed[serial.Port], error) {
	mode, err := opts.SerialMode()
	if err != nil {
		return nil, err
	}

	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, err
	}

	return NewFeed[serial.Port](port), nil
}
