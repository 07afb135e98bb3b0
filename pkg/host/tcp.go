package host

import (
	"net"
	"time"
)

// tcpConn adapts net.Conn deadlines to the Conn read timeout.
type tcpConn struct {
	net.Conn
}

// SetReadTimeout implements Conn.
func (c *tcpConn) SetReadTimeout(d time.Duration) error {
	if d <= 0 {
		return c.Conn.SetReadDeadline(time.Time{})
	}
	return c.Conn.SetReadDeadline(time.Now().Add(d))
}

// DialTCP connects to a board served over TCP, such as the simulator
// daemon, and returns an unconnected Controller for it.
func DialTCP(addr string) (*Controller, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, &ConnError{Op: "dial", Err: err}
	}
	return New(&tcpConn{Conn: conn}), nil
}

// WrapNetConn adapts an existing net.Conn into a Conn.
func WrapNetConn(conn net.Conn) Conn {
	return &tcpConn{Conn: conn}
}
