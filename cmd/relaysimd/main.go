package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"io"
	"log"
	"net"
	"os"
	"time"

	"github.com/golang/glog"

	"github.com/picorelay/relay.go/pkg/device"
	"github.com/picorelay/relay.go/pkg/device/rpi"
	"github.com/picorelay/relay.go/pkg/device/sim"
	fx "github.com/picorelay/relay.go/pkg/framework"
	"github.com/picorelay/relay.go/pkg/store"
)

var (
	listenAddr = ""
	configPath = "relay_config.json"
	selfTest   = false
	gpioMode   = false
)

func init() {
	flag.StringVar(&listenAddr, "listen", listenAddr, "TCP address to serve on. Serves stdio when empty.")
	flag.StringVar(&configPath, "config", configPath, "Path of the persisted board configuration.")
	flag.BoolVar(&selfTest, "selftest", selfTest, "Cycle all relays and beep on startup.")
	flag.BoolVar(&gpioMode, "gpio", gpioMode, "Drive the relays through Raspberry Pi GPIO instead of simulating them.")
}

// stdio joins stdin and stdout into one stream.
type stdio struct{}

func (stdio) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdio) Write(p []byte) (int, error) { return os.Stdout.Write(p) }

func main() {
	flag.Parse()

	cfg := store.NewFile(configPath)
	backend, err := openBackend(cfg)
	if err != nil {
		log.Fatalf("init board: %v", err)
	}
	if selfTest {
		if err := device.SelfTest(backend, time.Sleep); err != nil {
			log.Fatalf("self test: %v", err)
		}
	}
	if closer, ok := backend.(io.Closer); ok {
		defer closer.Close()
	}
	dispatcher := device.NewDispatcher(backend, cfg)

	runner := fx.NewRunner().HandleSignals()
	if listenAddr == "" {
		runner.Go(fx.NamedRun("stdio", device.NewServer(stdio{}, dispatcher)))
	} else {
		ln, err := net.Listen("tcp", listenAddr)
		if err != nil {
			log.Fatalf("listen %s: %v", listenAddr, err)
		}
		glog.Infof("serving on %s", listenAddr)
		runner.Go(fx.NamedRun("listener", fx.RunnableFunc(func(ctx context.Context) error {
			return serve(ctx, ln, dispatcher)
		})))
	}
	if err := runner.Wait(); err != nil {
		log.Fatalln(err)
	}
}

// openBackend builds the relay backend, restoring persisted states the
// way the firmware does on boot.
func openBackend(cfg device.Store) (device.Backend, error) {
	if !gpioMode {
		return sim.NewWithStore(cfg)
	}
	board, err := rpi.Open(device.HostUID())
	if err != nil {
		return nil, err
	}
	if err := device.RestoreStates(board, cfg); err != nil {
		board.Close()
		return nil, err
	}
	return board, nil
}

// serve accepts connections and runs a board server on each. All
// connections share one dispatcher, which serializes commands from
// different clients the way a single serial link would.
func serve(ctx context.Context, ln net.Listener, dispatcher *device.Dispatcher) error {
	return fx.RunWithContextCloser(ctx, ln, func() error {
		for {
			conn, err := ln.Accept()
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			glog.V(1).Infof("client %s connected", conn.RemoteAddr())
			go func(conn net.Conn) {
				defer conn.Close()
				srv := device.NewServer(conn, dispatcher)
				if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
					glog.Errorf("client %s: %v", conn.RemoteAddr(), err)
				}
				glog.V(1).Infof("client %s disconnected", conn.RemoteAddr())
			}(conn)
		}
	})
}
