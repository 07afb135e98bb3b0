package proto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeResponse(t *testing.T) {
	testCases := []struct {
		name   string
		raw    string
		expect Response
	}{
		{name: "ok", raw: "OK\n", expect: Response{OK: true}},
		{name: "ok no terminator", raw: "OK", expect: Response{OK: true}},
		{name: "pong", raw: "PONG\n", expect: Response{OK: true, Data: "PONG"}},
		{name: "status data", raw: "00000101\n", expect: Response{OK: true, Data: "00000101"}},
		{name: "saved", raw: "SAVED\n", expect: Response{OK: true, Data: "SAVED"}},
		{name: "error", raw: "ERROR:INVALID_COMMAND\n", expect: Response{Err: ErrInvalidCommand}},
		{name: "error relay number", raw: "ERROR:INVALID_RELAY_NUMBER\n", expect: Response{Err: ErrInvalidRelayNumber}},
		{name: "ad hoc error", raw: "ERROR:NO_SAVED_STATE\n", expect: Response{Err: ErrNoSavedState}},
		{name: "bare error prefix is data", raw: "ERROR:\n", expect: Response{OK: true, Data: "ERROR:"}},
		{name: "padded data", raw: "  1.2.0  \r\n", expect: Response{OK: true, Data: "1.2.0"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expect, DecodeResponse(tc.raw))
		})
	}
}

func TestParseStatus(t *testing.T) {
	states, err := ParseStatus("00000101")
	require.NoError(t, err)
	require.Equal(t, map[int]bool{
		1: true, 2: false, 3: true, 4: false,
		5: false, 6: false, 7: false, 8: false,
	}, states)

	states, err = ParseStatus("10000000")
	require.NoError(t, err)
	require.True(t, states[8])
	for n := 1; n <= 7; n++ {
		require.False(t, states[n], "relay %d", n)
	}

	_, err = ParseStatus("0000")
	require.Error(t, err)
	_, err = ParseStatus("0000010X")
	require.Error(t, err)
}

func TestParseInfo(t *testing.T) {
	info := ParseInfo("WAVESHARE-PICO-RELAY-B,V1.0,8CH,UID:ECD43B7502A23159")
	require.Equal(t, BoardInfo{
		BoardName: "WAVESHARE-PICO-RELAY-B",
		Version:   "V1.0",
		Channels:  "8CH",
		UID:       "ECD43B7502A23159",
	}, info)

	// Short responses yield partial results.
	info = ParseInfo("WAVESHARE-PICO-RELAY-B,V1.0")
	require.Equal(t, BoardInfo{BoardName: "WAVESHARE-PICO-RELAY-B", Version: "V1.0"}, info)

	// A fourth field without the UID prefix is ignored.
	info = ParseInfo("BOARD,V1,8CH,ECD43B75")
	require.Empty(t, info.UID)
}

func TestParseHelp(t *testing.T) {
	cmds := ParseHelp(HelpResponse)
	require.Contains(t, cmds, "PING")
	require.Contains(t, cmds, "CLEAR")
	require.Len(t, cmds, 19)
	require.Nil(t, ParseHelp("no prefix"))
}
