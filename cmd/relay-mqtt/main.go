package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"log"

	fx "github.com/picorelay/relay.go/pkg/framework"
	"github.com/picorelay/relay.go/pkg/gateway/mqtt"
	"github.com/picorelay/relay.go/pkg/host"
	"github.com/picorelay/relay.go/pkg/host/serialport"
)

var configPath = "relay-mqtt.yaml"

func init() {
	flag.StringVar(&configPath, "config", configPath, "Path of the gateway configuration.")
}

func main() {
	flag.Parse()

	cfg, err := mqtt.LoadConfig(configPath)
	if err != nil {
		log.Fatalln(err)
	}

	runner := fx.NewRunner().HandleSignals()

	var board *host.Controller
	if cfg.Port != "" {
		board, err = serialport.Dial(cfg.Port)
	} else {
		board, err = host.DialTCP(cfg.Addr)
	}
	if err != nil {
		log.Fatalln(err)
	}
	defer board.Close()
	if err := board.Connect(runner.Context); err != nil {
		log.Fatalf("connect board: %v", err)
	}

	gateway, err := mqtt.NewGateway(cfg, board)
	if err != nil {
		log.Fatalln(err)
	}
	runner.Go(fx.NamedRun("gateway", fx.RunnableFunc(func(ctx context.Context) error {
		return gateway.Run(ctx)
	})))
	if err := runner.Wait(); err != nil {
		log.Fatalln(err)
	}
}
