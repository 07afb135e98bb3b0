// Package sh provides the ishell backed interactive shell of relaycli.
// Board command providers register themselves with AddCmds from init.
package sh

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"

	"github.com/abiosoft/ishell"

	"github.com/picorelay/relay.go/pkg/host"
	"github.com/picorelay/relay.go/pkg/host/discovery"
	"github.com/picorelay/relay.go/pkg/host/serialport"
)

// Shell provides the ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool

	Shell *ishell.Shell
	Board *host.Controller
	Port  string
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool
	portFlag   string
	addrFlag   string

	// commands
	commands = []*ishell.Cmd{
		&DiscoverCmd,
		&ConnectCmd,
		&DisconnectCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
	flag.StringVar(&portFlag, "port", portFlag, "Serial port of the board.")
	flag.StringVar(&addrFlag, "addr", addrFlag, "TCP address of a board server.")
}

// AddCmds is used by command providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New() *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell: ishell.New(),
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps a command func requiring a board connection.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Board == nil {
			c.Err(fmt.Errorf("not connected"))
			return
		}
		fn(c)
	}
}

// Board returns the connected controller of the shell behind c.
func Board(c *ishell.Context) *host.Controller {
	return ShellFrom(c).Board
}

// PrintJSON marshals v when JSON output is on, otherwise prints the
// plain fallback.
func PrintJSON(c *ishell.Context, v interface{}, plain string) {
	if ShellFrom(c).OutputJSON {
		out, err := json.Marshal(v)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(string(out))
		return
	}
	c.Println(plain)
}

// Connect opens a transport to a board and verifies it with PING.
// An empty target triggers discovery.
func (s *Shell) Connect(target string) error {
	var (
		board *host.Controller
		err   error
	)
	switch {
	case target != "":
		board, err = serialport.Dial(target)
	case addrFlag != "":
		target = addrFlag
		board, err = host.DialTCP(addrFlag)
	default:
		var info discovery.BoardInfo
		if info, err = discovery.FindFirst(context.Background()); err != nil {
			return err
		}
		target = info.Port
		board, err = serialport.Dial(info.Port)
	}
	if err != nil {
		return err
	}
	if err := board.Connect(context.Background()); err != nil {
		board.Close()
		return err
	}
	s.Disconnect()
	s.Board = board
	s.Port = target
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", target))
	return nil
}

// Disconnect closes the current board connection.
func (s *Shell) Disconnect() {
	if s.Board != nil {
		s.Board.Close()
		s.Board = nil
		s.Port = ""
		s.Shell.SetPrompt(unconnectedPrompt)
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if portFlag != "" || addrFlag != "" {
		if s.Interactive {
			s.Shell.Println("Connecting ...")
		}
		if err := s.Connect(portFlag); err != nil {
			log.Fatalf("connect failed: %v", err)
		}
	}

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		s.Disconnect()
		return
	}
	log.Fatalln("command expected")
}

var (
	// DiscoverCmd lists connected boards.
	DiscoverCmd = ishell.Cmd{
		Name:    "discover",
		Aliases: []string{"list", "l"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			boards, err := discovery.Discover(context.Background())
			if err != nil {
				c.Err(err)
				return
			}
			if s.OutputJSON {
				if boards == nil {
					boards = []discovery.BoardInfo{}
				}
				out, err := json.Marshal(boards)
				if err != nil {
					c.Err(err)
					return
				}
				c.Println(string(out))
				return
			}
			if len(boards) == 0 {
				c.Println("No boards found")
				return
			}
			for _, b := range boards {
				c.Printf("%s: %s %s (%s)\n", b.Port, b.Manufacturer, b.Product, b.SerialNumber)
			}
		},
	}

	// ConnectCmd connects a board.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "[PORT]",
		Func: func(c *ishell.Context) {
			var target string
			if len(c.Args) > 0 {
				target = c.Args[0]
			}
			if err := ShellFrom(c).Connect(target); err != nil {
				c.Err(err)
				return
			}
		},
	}

	// DisconnectCmd disconnects the current board.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New().Run(flag.Args()...)
}
