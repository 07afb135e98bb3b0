package proto

import (
	"strconv"
	"strings"
)

// arities maps command names to their acceptable parameter counts.
var arities = map[string][]int{
	"PING":    {0},
	"STATUS":  {0},
	"ON":      {1},
	"OFF":     {1},
	"ALL":     {1},
	"SET":     {1},
	"PULSE":   {2},
	"INFO":    {0},
	"UID":     {0},
	"NAME":    {1, 2},
	"GET":     {2},
	"BEEP":    {0, 1},
	"BUZZ":    {1},
	"TONE":    {2},
	"VERSION": {0},
	"HELP":    {0},
	"SAVE":    {0},
	"LOAD":    {0},
	"CLEAR":   {0},
}

// ParseLine normalizes, tokenizes and validates one received wire line,
// producing a validated Command or the error code to report.
//
// The entire line is trimmed and uppercased before tokenizing. This
// deliberately includes name arguments to NAME: a name sent as "lights"
// is stored as "LIGHTS". Wire compatibility requires keeping this
// behavior even though names are otherwise free-form.
func ParseLine(line string) (Command, ErrorCode) {
	fields := strings.Fields(strings.ToUpper(strings.TrimSpace(line)))
	if len(fields) == 0 {
		return Command{}, ErrInvalidCommand
	}
	name, params := fields[0], fields[1:]

	counts, known := arities[name]
	if !known {
		return Command{}, ErrInvalidCommand
	}
	arityOK := false
	for _, n := range counts {
		if len(params) == n {
			arityOK = true
			break
		}
	}
	if !arityOK {
		return Command{}, ErrInvalidParameterCount
	}

	switch name {
	case "PING":
		return NewPingCommand(), ""
	case "STATUS":
		return NewStatusCommand(), ""
	case "INFO":
		return NewInfoCommand(), ""
	case "UID":
		return NewUIDCommand(), ""
	case "VERSION":
		return NewVersionCommand(), ""
	case "HELP":
		return NewHelpCommand(), ""
	case "SAVE":
		return NewSaveCommand(), ""
	case "LOAD":
		return NewLoadCommand(), ""
	case "CLEAR":
		return NewClearCommand(), ""

	case "ON", "OFF":
		relay, err := strconv.Atoi(params[0])
		if err != nil || !IsValidRelayNumber(relay) {
			return Command{}, ErrInvalidRelayNumber
		}
		if name == "ON" {
			return NewOnCommand(relay), ""
		}
		return NewOffCommand(relay), ""

	case "ALL":
		switch params[0] {
		case "ON":
			return NewAllCommand(true), ""
		case "OFF":
			return NewAllCommand(false), ""
		}
		return Command{}, ErrInvalidParameter

	case "SET":
		if !IsValidPattern(params[0]) {
			return Command{}, ErrInvalidParameter
		}
		return NewSetCommand(params[0]), ""

	case "PULSE":
		// A non-numeric relay argument is a parameter error here, not a
		// relay-number error; an out-of-range numeric one is.
		relay, err := strconv.Atoi(params[0])
		if err != nil {
			return Command{}, ErrInvalidParameter
		}
		if !IsValidRelayNumber(relay) {
			return Command{}, ErrInvalidRelayNumber
		}
		duration, err := strconv.Atoi(params[1])
		if err != nil || duration < MinDuration || duration > MaxDuration {
			return Command{}, ErrInvalidParameter
		}
		return NewPulseCommand(relay, duration), ""

	case "NAME":
		relay, err := strconv.Atoi(params[0])
		if err != nil || !IsValidRelayNumber(relay) {
			return Command{}, ErrInvalidRelayNumber
		}
		if len(params) == 1 {
			return NewClearNameCommand(relay), ""
		}
		if len(params[1]) > MaxNameLength {
			return Command{}, ErrInvalidParameter
		}
		return NewNameCommand(relay, params[1]), ""

	case "GET":
		if params[0] != "NAME" {
			return Command{}, ErrInvalidParameter
		}
		relay, err := strconv.Atoi(params[1])
		if err != nil || !IsValidRelayNumber(relay) {
			return Command{}, ErrInvalidRelayNumber
		}
		return NewGetNameCommand(relay), ""

	case "BEEP":
		if len(params) == 0 {
			return NewBeepCommand(), ""
		}
		duration, err := strconv.Atoi(params[0])
		if err != nil || duration < MinDuration || duration > MaxDuration {
			return Command{}, ErrInvalidParameter
		}
		return NewBeepDurationCommand(duration), ""

	case "BUZZ":
		switch params[0] {
		case "ON":
			return NewBuzzCommand(true), ""
		case "OFF":
			return NewBuzzCommand(false), ""
		}
		return Command{}, ErrInvalidParameter

	case "TONE":
		frequency, err := strconv.Atoi(params[0])
		if err != nil {
			return Command{}, ErrInvalidParameter
		}
		duration, err := strconv.Atoi(params[1])
		if err != nil {
			return Command{}, ErrInvalidParameter
		}
		if frequency < MinFrequency || frequency > MaxFrequency {
			return Command{}, ErrInvalidParameter
		}
		if duration < MinDuration || duration > MaxDuration {
			return Command{}, ErrInvalidParameter
		}
		return NewToneCommand(frequency, duration), ""
	}
	return Command{}, ErrInvalidCommand
}
