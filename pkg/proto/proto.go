package proto

import "fmt"

// Board identity constants.
const (
	BoardName       = "WAVESHARE-PICO-RELAY-B"
	BoardVersion    = "1.0"
	FirmwareVersion = "1.2.0"
	ProtocolVersion = "1.0"
)

// RelayCount is the number of relay channels on the board.
const RelayCount = 8

// Relay numbers are 1-indexed.
const (
	MinRelay = 1
	MaxRelay = RelayCount
)

// Parameter bounds.
const (
	// MinDuration and MaxDuration bound BEEP, PULSE and TONE durations in
	// milliseconds. The upper bound keeps blocking commands inside the
	// device watchdog window and is a correctness invariant.
	MinDuration = 1
	MaxDuration = 5000

	// DefaultBeepDuration is used by BEEP without a parameter.
	DefaultBeepDuration = 100

	// MinFrequency and MaxFrequency bound TONE frequencies in Hz.
	MinFrequency = 50
	MaxFrequency = 20000

	// MaxNameLength bounds relay names set with NAME.
	MaxNameLength = 32
)

// Wire constants.
const (
	Terminator       = "\n"
	SuccessResponse  = "OK"
	PingResponse     = "PONG"
	MaxCommandLength = 64
)

// HelpResponse is the response to the HELP command.
const HelpResponse = "Commands: PING,STATUS,ON,OFF,ALL,SET,PULSE,INFO,UID,NAME,GET,BEEP,BUZZ,TONE,VERSION,HELP,SAVE,LOAD,CLEAR"

// IsValidRelayNumber reports whether n addresses a relay channel.
func IsValidRelayNumber(n int) bool {
	return n >= MinRelay && n <= MaxRelay
}

// IsValidPattern reports whether s is an 8-character binary pattern.
func IsValidPattern(s string) bool {
	if len(s) != RelayCount {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] != '0' && s[i] != '1' {
			return false
		}
	}
	return true
}

// ReversePattern converts between the wire pattern (relay 8 first) and the
// storage format (relay 1 first). The conversion is its own inverse.
func ReversePattern(s string) string {
	b := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		b[i] = s[len(s)-1-i]
	}
	return string(b)
}

// DefaultName returns the display name used when a relay has no stored name.
func DefaultName(n int) string {
	return fmt.Sprintf("Relay %d", n)
}

// FormatInfo builds the INFO response for a board UID.
func FormatInfo(uid string) string {
	return fmt.Sprintf("%s,V%s,%dCH,UID:%s", BoardName, BoardVersion, RelayCount, uid)
}
