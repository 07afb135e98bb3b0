package main

import (
	"github.com/picorelay/relay.go/pkg/cli/sh"

	_ "github.com/picorelay/relay.go/pkg/cli/cmds/relay"
)

//go-build: CGO_ENABLED=0

func main() {
	sh.Main()
}
