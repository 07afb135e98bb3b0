// Package discovery locates connected relay boards by scanning serial
// ports and probing them with the board protocol.
package discovery

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang/glog"
	"go.bug.st/serial/enumerator"

	"github.com/picorelay/relay.go/pkg/host"
	"github.com/picorelay/relay.go/pkg/host/serialport"
)

// USB identifiers of the RP2040 CDC interface.
const (
	PicoVID = "2E8A"
	PicoPID = "0005"
)

// Timeout for probing one candidate port.
const ProbeTimeout = 2 * time.Second

// BoardInfo describes one discovered board.
type BoardInfo struct {
	Port         string
	SerialNumber string
	Manufacturer string
	Product      string
	UID          string
}

// ErrNoBoard indicates no responsive board was found.
var ErrNoBoard = errors.New("no relay board found")

// Port enumeration and dialing, overridable in tests.
var (
	listPorts = enumerator.GetDetailedPortsList
	dial      = func(port string) (*host.Controller, error) {
		return serialport.Dial(port)
	}
)

// Discover scans serial ports and returns every responsive relay board.
// Ports with the Raspberry Pi USB vendor ID are probed first, but any
// port that speaks the protocol qualifies.
func Discover(ctx context.Context) ([]BoardInfo, error) {
	ports, err := listPorts()
	if err != nil {
		return nil, err
	}

	candidates := make([]*enumerator.PortDetails, 0, len(ports))
	for _, p := range ports {
		if p.IsUSB && strings.EqualFold(p.VID, PicoVID) {
			glog.V(1).Infof("raspberry pi device at %s (PID %s)", p.Name, p.PID)
			candidates = append(candidates, p)
		}
	}
	for _, p := range ports {
		if !p.IsUSB || !strings.EqualFold(p.VID, PicoVID) {
			candidates = append(candidates, p)
		}
	}

	var boards []BoardInfo
	for _, p := range candidates {
		if err := ctx.Err(); err != nil {
			return boards, err
		}
		info, err := probe(ctx, p.Name)
		if err != nil {
			glog.V(2).Infof("port %s: %v", p.Name, err)
			continue
		}
		boards = append(boards, info)
	}
	return boards, nil
}

// FindFirst returns the first discovered board, or ErrNoBoard.
func FindFirst(ctx context.Context) (BoardInfo, error) {
	boards, err := Discover(ctx)
	if err != nil {
		return BoardInfo{}, err
	}
	if len(boards) == 0 {
		return BoardInfo{}, ErrNoBoard
	}
	return boards[0], nil
}

// probe connects to one port and checks it identifies as a relay board.
func probe(ctx context.Context, port string) (BoardInfo, error) {
	c, err := dial(port)
	if err != nil {
		return BoardInfo{}, err
	}
	defer c.Close()
	c.SetTimeout(ProbeTimeout)

	if err := c.Connect(ctx); err != nil {
		return BoardInfo{}, err
	}
	return Identify(c, port)
}

// Identify queries a connected controller and builds its BoardInfo. The
// board qualifies when its reported name contains both PICO and RELAY.
func Identify(c *host.Controller, port string) (BoardInfo, error) {
	info, err := c.Info()
	if err != nil {
		return BoardInfo{}, err
	}
	name := strings.ToUpper(info.BoardName)
	if !strings.Contains(name, "PICO") || !strings.Contains(name, "RELAY") {
		return BoardInfo{}, errors.New("not a relay board: " + info.BoardName)
	}
	uid, err := c.UID()
	if err != nil {
		return BoardInfo{}, err
	}
	serialNumber := "RELAY-" + uid
	if len(uid) >= 8 {
		serialNumber = "RELAY-" + uid[:8]
	}
	return BoardInfo{
		Port:         port,
		SerialNumber: serialNumber,
		Manufacturer: "Waveshare",
		Product:      "Pico Relay B Controller",
		UID:          uid,
	}, nil
}
