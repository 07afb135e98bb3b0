package proto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommandFormat(t *testing.T) {
	testCases := []struct {
		name   string
		cmd    Command
		expect string
	}{
		{name: "ping", cmd: NewPingCommand(), expect: "PING"},
		{name: "status", cmd: NewStatusCommand(), expect: "STATUS"},
		{name: "on", cmd: NewOnCommand(3), expect: "ON 3"},
		{name: "off", cmd: NewOffCommand(8), expect: "OFF 8"},
		{name: "all on", cmd: NewAllCommand(true), expect: "ALL ON"},
		{name: "all off", cmd: NewAllCommand(false), expect: "ALL OFF"},
		{name: "set", cmd: NewSetCommand("00000101"), expect: "SET 00000101"},
		{name: "pulse", cmd: NewPulseCommand(2, 1500), expect: "PULSE 2 1500"},
		{name: "info", cmd: NewInfoCommand(), expect: "INFO"},
		{name: "uid", cmd: NewUIDCommand(), expect: "UID"},
		{name: "version", cmd: NewVersionCommand(), expect: "VERSION"},
		{name: "help", cmd: NewHelpCommand(), expect: "HELP"},
		{name: "name", cmd: NewNameCommand(4, "PUMP"), expect: "NAME 4 PUMP"},
		{name: "name clear", cmd: NewClearNameCommand(4), expect: "NAME 4"},
		{name: "get name", cmd: NewGetNameCommand(6), expect: "GET NAME 6"},
		{name: "beep", cmd: NewBeepCommand(), expect: "BEEP"},
		{name: "beep duration", cmd: NewBeepDurationCommand(250), expect: "BEEP 250"},
		{name: "buzz on", cmd: NewBuzzCommand(true), expect: "BUZZ ON"},
		{name: "buzz off", cmd: NewBuzzCommand(false), expect: "BUZZ OFF"},
		{name: "tone", cmd: NewToneCommand(880, 200), expect: "TONE 880 200"},
		{name: "save", cmd: NewSaveCommand(), expect: "SAVE"},
		{name: "load", cmd: NewLoadCommand(), expect: "LOAD"},
		{name: "clear", cmd: NewClearCommand(), expect: "CLEAR"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expect, tc.cmd.Format())
			line, err := tc.cmd.Line()
			require.NoError(t, err)
			require.Equal(t, tc.expect+"\n", line)
		})
	}
}

func TestCommandValidateRejects(t *testing.T) {
	testCases := []struct {
		name string
		cmd  Command
	}{
		{name: "on relay zero", cmd: NewOnCommand(0)},
		{name: "on relay nine", cmd: NewOnCommand(9)},
		{name: "off relay negative", cmd: NewOffCommand(-1)},
		{name: "set bad pattern", cmd: NewSetCommand("1012")},
		{name: "set short pattern", cmd: NewSetCommand("101")},
		{name: "pulse relay out of range", cmd: NewPulseCommand(9, 100)},
		{name: "pulse duration zero", cmd: NewPulseCommand(1, 0)},
		{name: "pulse duration over max", cmd: NewPulseCommand(1, 5001)},
		{name: "name empty", cmd: NewNameCommand(1, "")},
		{name: "name too long", cmd: NewNameCommand(1, strings.Repeat("x", 33))},
		{name: "name with space", cmd: NewNameCommand(1, "two words")},
		{name: "get name relay out of range", cmd: NewGetNameCommand(0)},
		{name: "beep duration over max", cmd: NewBeepDurationCommand(6000)},
		{name: "tone frequency low", cmd: NewToneCommand(10, 100)},
		{name: "tone duration over max", cmd: NewToneCommand(440, 9999)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cmd.Validate()
			require.Error(t, err)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			_, err = tc.cmd.Line()
			require.Error(t, err)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	// Every encodable command parses back to an equal value.
	cmds := []Command{
		NewPingCommand(), NewStatusCommand(), NewInfoCommand(), NewUIDCommand(),
		NewVersionCommand(), NewHelpCommand(), NewOnCommand(1), NewOffCommand(8),
		NewAllCommand(true), NewAllCommand(false), NewSetCommand("11001010"),
		NewPulseCommand(5, 5000), NewNameCommand(3, "VALVE"), NewClearNameCommand(3),
		NewGetNameCommand(2), NewBeepCommand(), NewBeepDurationCommand(100),
		NewBuzzCommand(true), NewToneCommand(50, 1), NewSaveCommand(),
		NewLoadCommand(), NewClearCommand(),
	}
	for _, cmd := range cmds {
		line, err := cmd.Line()
		require.NoError(t, err)
		parsed, code := ParseLine(line)
		require.Equal(t, ErrorCode(""), code, "line %q", line)
		require.Equal(t, cmd, parsed, "line %q", line)
	}
}

func TestBlocksFor(t *testing.T) {
	require.Equal(t, 0, NewStatusCommand().BlocksFor())
	require.Equal(t, 1500, NewPulseCommand(1, 1500).BlocksFor())
	require.Equal(t, 200, NewToneCommand(440, 200).BlocksFor())
	require.Equal(t, 100, NewBeepCommand().BlocksFor())
	require.Equal(t, 400, NewBeepDurationCommand(400).BlocksFor())
}
