// Package host implements the control side of the relay board protocol:
// a Controller pairing commands with responses over any line transport,
// with serial and TCP transports in subpackages.
package host

import (
	"bufio"
	"context"
	"errors"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/picorelay/relay.go/pkg/proto"
)

// Timing defaults matching the board's responsiveness.
const (
	DefaultTimeout   = time.Second
	ConnectTimeout   = 5 * time.Second
	ConnectPollDelay = 100 * time.Millisecond
)

// Conn is a line transport to the board. Read must honor the deadline
// set by SetReadTimeout and fail with a timeout error when it expires.
type Conn interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
	SetReadTimeout(d time.Duration) error
}

// Controller issues commands to one board and decodes the responses.
// Commands are strictly one in flight: concurrent callers serialize.
type Controller struct {
	mu        sync.Mutex
	conn      Conn
	rd        *bufio.Reader
	timeout   time.Duration
	connected bool
}

// New creates a controller over conn. Connect must be called before
// issuing commands.
func New(conn Conn) *Controller {
	return &Controller{
		conn:    conn,
		rd:      bufio.NewReader(conn),
		timeout: DefaultTimeout,
	}
}

// SetTimeout sets the per-command response timeout. Blocking commands
// extend it by their own duration.
func (c *Controller) SetTimeout(d time.Duration) {
	c.mu.Lock()
	c.timeout = d
	c.mu.Unlock()
}

// Connect verifies the board is responsive by polling PING until PONG
// comes back. Boards reset when the port opens, so the first replies can
// be the boot banner or nothing at all.
func (c *Controller) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	deadline := time.Now().Add(ConnectTimeout)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := c.roundTripLocked(proto.NewPingCommand().Format()+proto.Terminator, ConnectPollDelay)
		if err == nil && line == proto.PingResponse {
			c.connected = true
			glog.V(1).Info("board responded to ping")
			return nil
		}
		if err != nil && !errors.Is(err, ErrTimeout) {
			return err
		}
		if time.Now().After(deadline) {
			return ErrTimeout
		}
		time.Sleep(ConnectPollDelay)
	}
}

// Connected reports whether Connect has succeeded.
func (c *Controller) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Close closes the underlying transport.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	return c.conn.Close()
}

// Do sends one command and returns the decoded response. Invalid
// commands fail locally without touching the wire. A board-reported
// error code comes back as a CommandError.
func (c *Controller) Do(cmd proto.Command) (proto.Response, error) {
	line, err := cmd.Line()
	if err != nil {
		return proto.Response{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return proto.Response{}, ErrNotConnected
	}

	timeout := c.timeout + time.Duration(cmd.BlocksFor())*time.Millisecond
	raw, err := c.roundTripLocked(line, timeout)
	if err != nil {
		return proto.Response{}, err
	}
	resp := proto.DecodeResponse(raw)
	if resp.Err != "" {
		glog.V(2).Infof("command %q rejected: %s", cmd.Format(), resp.Err)
		return resp, &CommandError{Code: resp.Err}
	}
	return resp, nil
}

func (c *Controller) roundTripLocked(line string, timeout time.Duration) (string, error) {
	if _, err := c.conn.Write([]byte(line)); err != nil {
		return "", &ConnError{Op: "write", Err: err}
	}
	if err := c.conn.SetReadTimeout(timeout); err != nil {
		return "", &ConnError{Op: "deadline", Err: err}
	}
	raw, err := c.rd.ReadString('\n')
	if err != nil {
		if isTimeout(err) {
			return "", ErrTimeout
		}
		return "", &ConnError{Op: "read", Err: err}
	}
	return strings.TrimRight(raw, "\r\n"), nil
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
