// Package sensor provides frame sources for the relative photometer: the
// physical sensor bus over a serial port, and a synthetic generator for
// bench runs without hardware. Both deliver opaque 2-byte frames; all
// decoding happens downstream in the photometer package.
package sensor

import (
	"context"
	"fmt"

	"go.bug.st/serial"

	"relative_photometer/internal/photometer"
)

const defaultBaudRate = 115200

// Port reads photometer frames from a serial device.
type Port struct {
	port serial.Port
	name string
}

// OpenPort opens the named serial device with the sensor's fixed settings.
// A baud of 0 selects the default 115200.
func OpenPort(name string, baud int) (*Port, error) {
	if baud <= 0 {
		baud = defaultBaudRate
	}
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %q: %w", name, err)
	}
	return &Port{port: port, name: name}, nil
}

// ReadFrame blocks until a full 2-byte frame arrives. The sensor bus has no
// framing beyond the fixed length; the bus is assumed to deliver aligned
// frames per the device contract.
func (p *Port) ReadFrame(ctx context.Context) ([photometer.FrameSize]byte, error) {
	var frame [photometer.FrameSize]byte
	n := 0
	for n < len(frame) {
		if err := ctx.Err(); err != nil {
			return frame, err
		}
		k, err := p.port.Read(frame[n:])
		if err != nil {
			return frame, fmt.Errorf("read from %q: %w", p.name, err)
		}
		n += k
	}
	return frame, nil
}

// Close closes the serial port.
func (p *Port) Close() error {
	return p.port.Close()
}
