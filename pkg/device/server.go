package device

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/golang/glog"

	"github.com/picorelay/relay.go/pkg/proto"
)

// Banner is written once when the server starts accepting commands.
const Banner = "PICO RELAY B v" + proto.FirmwareVersion + " Ready"

// Server reads commands line by line from RW and writes the response for
// each back. It implements framework.Runnable.
type Server struct {
	RW         io.ReadWriter
	Dispatcher *Dispatcher

	// SkipBanner suppresses the boot banner.
	SkipBanner bool
}

// NewServer creates a Server over rw.
func NewServer(rw io.ReadWriter, dispatcher *Dispatcher) *Server {
	return &Server{RW: rw, Dispatcher: dispatcher}
}

// Run serves commands until rw reaches EOF, errors out, or ctx is
// canceled. Cancellation is observed between commands only, as reads on
// a plain io.ReadWriter can not be interrupted.
func (s *Server) Run(ctx context.Context) error {
	if !s.SkipBanner {
		if _, err := io.WriteString(s.RW, Banner+proto.Terminator); err != nil {
			return fmt.Errorf("write banner: %w", err)
		}
	}
	scanner := bufio.NewScanner(s.RW)
	scanner.Buffer(make([]byte, proto.MaxCommandLength*4), proto.MaxCommandLength*4)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		glog.V(3).Infof("recv %q", line)
		resp := s.Dispatcher.ProcessLine(line)
		if _, err := io.WriteString(s.RW, resp); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		glog.Errorf("read commands: %v", err)
		return err
	}
	return nil
}
