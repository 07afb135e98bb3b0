// Package serialport provides the USB CDC serial transport to a real
// relay board.
package serialport

import (
	"fmt"
	"os"
	"time"

	"go.bug.st/serial"

	"github.com/picorelay/relay.go/pkg/host"
)

// BaudRate for the board's USB CDC port. The value is nominal, USB CDC
// ignores it, but some platforms still require a sane setting.
const BaudRate = 115200

// port adapts serial.Port to host.Conn. The serial library signals an
// expired read timeout as a zero-byte read, which this wrapper converts
// into a deadline error so line reads terminate.
type port struct {
	serial.Port
}

// Read implements io.Reader.
func (p *port) Read(buf []byte) (int, error) {
	n, err := p.Port.Read(buf)
	if n == 0 && err == nil {
		return 0, os.ErrDeadlineExceeded
	}
	return n, err
}

// SetReadTimeout implements host.Conn.
func (p *port) SetReadTimeout(d time.Duration) error {
	return p.Port.SetReadTimeout(d)
}

// Open opens the named serial port as a board transport.
func Open(name string) (host.Conn, error) {
	mode := &serial.Mode{
		BaudRate: BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	p, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return &port{Port: p}, nil
}

// Dial opens the named port and returns an unconnected Controller.
func Dial(name string) (*host.Controller, error) {
	conn, err := Open(name)
	if err != nil {
		return nil, err
	}
	return host.New(conn), nil
}
