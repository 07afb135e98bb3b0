// Package relay provides the board commands of the interactive shell.
package relay

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/abiosoft/ishell"

	"github.com/picorelay/relay.go/pkg/cli/sh"
	"github.com/picorelay/relay.go/pkg/proto"
)

func parseRelay(c *ishell.Context, arg string) (int, bool) {
	n, err := strconv.Atoi(arg)
	if err != nil || !proto.IsValidRelayNumber(n) {
		c.Err(fmt.Errorf("invalid relay number %q, expect 1-%d", arg, proto.MaxRelay))
		return 0, false
	}
	return n, true
}

func reportOK(c *ishell.Context, err error) {
	if err != nil {
		c.Err(err)
		return
	}
	sh.PrintJSON(c, map[string]bool{"ok": true}, "OK")
}

var (
	// PingCmd checks the board is responsive.
	PingCmd = ishell.Cmd{
		Name: "ping",
		Help: "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if err := sh.Board(c).Ping(); err != nil {
				c.Err(err)
				return
			}
			sh.PrintJSON(c, map[string]bool{"ok": true}, proto.PingResponse)
		}),
	}

	// OnCmd turns one relay on.
	OnCmd = ishell.Cmd{
		Name: "on",
		Help: "RELAY(1-8)",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("RELAY required"))
				return
			}
			n, ok := parseRelay(c, c.Args[0])
			if !ok {
				return
			}
			reportOK(c, sh.Board(c).On(n))
		}),
	}

	// OffCmd turns one relay off.
	OffCmd = ishell.Cmd{
		Name: "off",
		Help: "RELAY(1-8)",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("RELAY required"))
				return
			}
			n, ok := parseRelay(c, c.Args[0])
			if !ok {
				return
			}
			reportOK(c, sh.Board(c).Off(n))
		}),
	}

	// AllCmd switches every relay.
	AllCmd = ishell.Cmd{
		Name: "all",
		Help: "on|off",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("on or off required"))
				return
			}
			switch c.Args[0] {
			case "on":
				reportOK(c, sh.Board(c).AllOn())
			case "off":
				reportOK(c, sh.Board(c).AllOff())
			default:
				c.Err(fmt.Errorf("expect on or off, got %q", c.Args[0]))
			}
		}),
	}

	// StatusCmd shows every relay's state with its name.
	StatusCmd = ishell.Cmd{
		Name:    "status",
		Aliases: []string{"s"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			board := sh.Board(c)
			states, err := board.Status()
			if err != nil {
				c.Err(err)
				return
			}
			names, err := board.Names()
			if err != nil {
				c.Err(err)
				return
			}
			if sh.ShellFrom(c).OutputJSON {
				type relayState struct {
					Relay int    `json:"relay"`
					Name  string `json:"name"`
					On    bool   `json:"on"`
				}
				list := make([]relayState, 0, len(states))
				for n := proto.MinRelay; n <= proto.MaxRelay; n++ {
					list = append(list, relayState{Relay: n, Name: names[n], On: states[n]})
				}
				sh.PrintJSON(c, list, "")
				return
			}
			nums := make([]int, 0, len(states))
			for n := range states {
				nums = append(nums, n)
			}
			sort.Ints(nums)
			for _, n := range nums {
				state := "off"
				if states[n] {
					state = "on"
				}
				name := names[n]
				if name == "" {
					name = proto.DefaultName(n)
				}
				c.Printf("%d %-32s %s\n", n, name, state)
			}
		}),
	}

	// SetCmd applies a full 8-bit pattern, relay 8 leftmost.
	SetCmd = ishell.Cmd{
		Name: "set",
		Help: "PATTERN(8x 0/1, relay 8 first)",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("PATTERN required"))
				return
			}
			if !proto.IsValidPattern(c.Args[0]) {
				c.Err(fmt.Errorf("invalid pattern %q", c.Args[0]))
				return
			}
			reportOK(c, sh.Board(c).SetPattern(c.Args[0]))
		}),
	}

	// PulseCmd pulses one relay.
	PulseCmd = ishell.Cmd{
		Name: "pulse",
		Help: "RELAY(1-8) DURATION(ms)",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 2 {
				c.Err(fmt.Errorf("RELAY and DURATION required"))
				return
			}
			n, ok := parseRelay(c, c.Args[0])
			if !ok {
				return
			}
			ms, err := strconv.Atoi(c.Args[1])
			if err != nil {
				c.Err(fmt.Errorf("invalid DURATION: %v", err))
				return
			}
			reportOK(c, sh.Board(c).Pulse(n, ms))
		}),
	}

	// NameCmd sets or clears a relay name.
	NameCmd = ishell.Cmd{
		Name: "name",
		Help: "RELAY(1-8) [NAME]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("RELAY required"))
				return
			}
			n, ok := parseRelay(c, c.Args[0])
			if !ok {
				return
			}
			if len(c.Args) == 1 {
				reportOK(c, sh.Board(c).ClearName(n))
				return
			}
			// The wire protocol is space delimited, names are one word.
			if len(c.Args) > 2 {
				c.Err(fmt.Errorf("NAME must be a single word"))
				return
			}
			reportOK(c, sh.Board(c).SetName(n, c.Args[1]))
		}),
	}

	// NamesCmd lists all relay names.
	NamesCmd = ishell.Cmd{
		Name: "names",
		Help: "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			names, err := sh.Board(c).Names()
			if err != nil {
				c.Err(err)
				return
			}
			if sh.ShellFrom(c).OutputJSON {
				sh.PrintJSON(c, names, "")
				return
			}
			for n := proto.MinRelay; n <= proto.MaxRelay; n++ {
				name := names[n]
				if name == "" {
					name = proto.DefaultName(n)
				}
				c.Printf("%d %s\n", n, name)
			}
		}),
	}

	// InfoCmd shows board identity.
	InfoCmd = ishell.Cmd{
		Name:    "info",
		Aliases: []string{"i"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			info, err := sh.Board(c).Info()
			if err != nil {
				c.Err(err)
				return
			}
			sh.PrintJSON(c, info, fmt.Sprintf("%s %s %s UID %s",
				info.BoardName, info.Version, info.Channels, info.UID))
		}),
	}

	// BeepCmd sounds the buzzer briefly.
	BeepCmd = ishell.Cmd{
		Name: "beep",
		Help: "[DURATION(ms)]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) > 0 {
				ms, err := strconv.Atoi(c.Args[0])
				if err != nil {
					c.Err(fmt.Errorf("invalid DURATION: %v", err))
					return
				}
				reportOK(c, sh.Board(c).Beep(ms))
				return
			}
			reportOK(c, sh.Board(c).Beep())
		}),
	}

	// BuzzCmd switches the buzzer.
	BuzzCmd = ishell.Cmd{
		Name: "buzz",
		Help: "on|off",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("on or off required"))
				return
			}
			switch c.Args[0] {
			case "on":
				reportOK(c, sh.Board(c).BuzzerOn())
			case "off":
				reportOK(c, sh.Board(c).BuzzerOff())
			default:
				c.Err(fmt.Errorf("expect on or off, got %q", c.Args[0]))
			}
		}),
	}

	// ToneCmd plays a tone.
	ToneCmd = ishell.Cmd{
		Name: "tone",
		Help: "FREQUENCY(Hz) DURATION(ms)",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 2 {
				c.Err(fmt.Errorf("FREQUENCY and DURATION required"))
				return
			}
			hz, err := strconv.Atoi(c.Args[0])
			if err != nil {
				c.Err(fmt.Errorf("invalid FREQUENCY: %v", err))
				return
			}
			ms, err := strconv.Atoi(c.Args[1])
			if err != nil {
				c.Err(fmt.Errorf("invalid DURATION: %v", err))
				return
			}
			reportOK(c, sh.Board(c).Tone(hz, ms))
		}),
	}

	// SaveCmd persists the current relay states on the board.
	SaveCmd = ishell.Cmd{
		Name: "save",
		Help: "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			reportOK(c, sh.Board(c).Save())
		}),
	}

	// LoadCmd applies the persisted relay states.
	LoadCmd = ishell.Cmd{
		Name: "load",
		Help: "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			reportOK(c, sh.Board(c).Load())
		}),
	}

	// ClearCmd forgets the persisted relay states.
	ClearCmd = ishell.Cmd{
		Name: "clear",
		Help: "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			reportOK(c, sh.Board(c).Clear())
		}),
	}

	// VersionCmd shows the firmware version.
	VersionCmd = ishell.Cmd{
		Name: "version",
		Help: "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			version, err := sh.Board(c).Version()
			if err != nil {
				c.Err(err)
				return
			}
			sh.PrintJSON(c, map[string]string{"version": version}, version)
		}),
	}
)

func init() {
	sh.AddCmds(
		&PingCmd,
		&OnCmd,
		&OffCmd,
		&AllCmd,
		&StatusCmd,
		&SetCmd,
		&PulseCmd,
		&NameCmd,
		&NamesCmd,
		&InfoCmd,
		&BeepCmd,
		&BuzzCmd,
		&ToneCmd,
		&SaveCmd,
		&LoadCmd,
		&ClearCmd,
		&VersionCmd,
	)
}
