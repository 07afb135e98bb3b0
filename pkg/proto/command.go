package proto

import (
	"fmt"
	"strings"
)

// CommandType enumerates the fixed command vocabulary.
type CommandType int

const (
	// Connection and queries
	CmdPing CommandType = iota
	CmdStatus
	CmdInfo
	CmdUID
	CmdVersion
	CmdHelp

	// Relay control
	CmdOn
	CmdOff
	CmdAll
	CmdSet
	CmdPulse

	// Naming
	CmdName
	CmdGetName

	// Buzzer
	CmdBeep
	CmdBuzz
	CmdTone

	// State persistence
	CmdSave
	CmdLoad
	CmdClear
)

// Command is a parsed or constructed protocol command. Use the constructor
// functions to create Command values; only the fields relevant to the type
// are populated.
type Command struct {
	Type CommandType

	Relay     int    // For On, Off, Pulse, Name, GetName
	On        bool   // For All, Buzz
	Pattern   string // For Set
	Duration  int    // Milliseconds, for Pulse, Beep, Tone
	HasBeepMS bool   // Whether Beep carries an explicit duration
	Name      string // For Name
	ClearName bool   // Name with no name argument clears the stored name
	Frequency int    // Hz, for Tone
}

// NewPingCommand creates a PING command.
func NewPingCommand() Command { return Command{Type: CmdPing} }

// NewStatusCommand creates a STATUS command.
func NewStatusCommand() Command { return Command{Type: CmdStatus} }

// NewInfoCommand creates an INFO command.
func NewInfoCommand() Command { return Command{Type: CmdInfo} }

// NewUIDCommand creates a UID command.
func NewUIDCommand() Command { return Command{Type: CmdUID} }

// NewVersionCommand creates a VERSION command.
func NewVersionCommand() Command { return Command{Type: CmdVersion} }

// NewHelpCommand creates a HELP command.
func NewHelpCommand() Command { return Command{Type: CmdHelp} }

// NewOnCommand creates a command to turn a relay on.
func NewOnCommand(relay int) Command {
	return Command{Type: CmdOn, Relay: relay}
}

// NewOffCommand creates a command to turn a relay off.
func NewOffCommand(relay int) Command {
	return Command{Type: CmdOff, Relay: relay}
}

// NewAllCommand creates a command to turn all relays on or off.
func NewAllCommand(on bool) Command {
	return Command{Type: CmdAll, On: on}
}

// NewSetCommand creates a command to apply a wire-format pattern
// (relay 8 in the leftmost position).
func NewSetCommand(pattern string) Command {
	return Command{Type: CmdSet, Pattern: pattern}
}

// NewPulseCommand creates a command to pulse a relay for a duration.
func NewPulseCommand(relay, durationMS int) Command {
	return Command{Type: CmdPulse, Relay: relay, Duration: durationMS}
}

// NewNameCommand creates a command to set a relay's persistent name.
func NewNameCommand(relay int, name string) Command {
	return Command{Type: CmdName, Relay: relay, Name: name}
}

// NewClearNameCommand creates a command to clear a relay's persistent name.
func NewClearNameCommand(relay int) Command {
	return Command{Type: CmdName, Relay: relay, ClearName: true}
}

// NewGetNameCommand creates a command to query a relay's stored name.
func NewGetNameCommand(relay int) Command {
	return Command{Type: CmdGetName, Relay: relay}
}

// NewBeepCommand creates a BEEP command with the default duration.
func NewBeepCommand() Command { return Command{Type: CmdBeep} }

// NewBeepDurationCommand creates a BEEP command with an explicit duration.
func NewBeepDurationCommand(durationMS int) Command {
	return Command{Type: CmdBeep, Duration: durationMS, HasBeepMS: true}
}

// NewBuzzCommand creates a command to switch the continuous buzzer.
func NewBuzzCommand(on bool) Command {
	return Command{Type: CmdBuzz, On: on}
}

// NewToneCommand creates a command to play a tone.
func NewToneCommand(frequencyHz, durationMS int) Command {
	return Command{Type: CmdTone, Frequency: frequencyHz, Duration: durationMS}
}

// NewSaveCommand creates a SAVE command.
func NewSaveCommand() Command { return Command{Type: CmdSave} }

// NewLoadCommand creates a LOAD command.
func NewLoadCommand() Command { return Command{Type: CmdLoad} }

// NewClearCommand creates a CLEAR command.
func NewClearCommand() Command { return Command{Type: CmdClear} }

// Validate checks the command against the grammar. The host encoder calls
// this before any wire traffic so that invalid calls never reach the device.
func (c Command) Validate() error {
	switch c.Type {
	case CmdPing, CmdStatus, CmdInfo, CmdUID, CmdVersion, CmdHelp,
		CmdSave, CmdLoad, CmdClear, CmdAll, CmdBuzz:
		return nil
	case CmdOn, CmdOff, CmdGetName:
		if !IsValidRelayNumber(c.Relay) {
			return validationErrorf("invalid relay number: %d", c.Relay)
		}
		return nil
	case CmdSet:
		if !IsValidPattern(c.Pattern) {
			return validationErrorf("invalid binary pattern: %q", c.Pattern)
		}
		return nil
	case CmdPulse:
		if !IsValidRelayNumber(c.Relay) {
			return validationErrorf("invalid relay number: %d", c.Relay)
		}
		if c.Duration < MinDuration || c.Duration > MaxDuration {
			return validationErrorf("invalid duration: %d (must be %d-%dms)", c.Duration, MinDuration, MaxDuration)
		}
		return nil
	case CmdName:
		if !IsValidRelayNumber(c.Relay) {
			return validationErrorf("invalid relay number: %d", c.Relay)
		}
		if c.ClearName {
			return nil
		}
		if len(c.Name) == 0 || len(c.Name) > MaxNameLength {
			return validationErrorf("invalid name: %q (must be 1-%d characters)", c.Name, MaxNameLength)
		}
		if strings.ContainsAny(c.Name, " \t\r\n") {
			return validationErrorf("invalid name: %q (whitespace not allowed)", c.Name)
		}
		return nil
	case CmdBeep:
		if c.HasBeepMS && (c.Duration < MinDuration || c.Duration > MaxDuration) {
			return validationErrorf("invalid beep duration: %d (must be %d-%dms)", c.Duration, MinDuration, MaxDuration)
		}
		return nil
	case CmdTone:
		if c.Frequency < MinFrequency || c.Frequency > MaxFrequency {
			return validationErrorf("invalid frequency: %d (must be %d-%dHz)", c.Frequency, MinFrequency, MaxFrequency)
		}
		if c.Duration < MinDuration || c.Duration > MaxDuration {
			return validationErrorf("invalid duration: %d (must be %d-%dms)", c.Duration, MinDuration, MaxDuration)
		}
		return nil
	default:
		return validationErrorf("unknown command type: %d", c.Type)
	}
}

// Format returns the command formatted for transmission, without terminator.
func (c Command) Format() string {
	switch c.Type {
	case CmdPing:
		return "PING"
	case CmdStatus:
		return "STATUS"
	case CmdInfo:
		return "INFO"
	case CmdUID:
		return "UID"
	case CmdVersion:
		return "VERSION"
	case CmdHelp:
		return "HELP"
	case CmdOn:
		return fmt.Sprintf("ON %d", c.Relay)
	case CmdOff:
		return fmt.Sprintf("OFF %d", c.Relay)
	case CmdAll:
		if c.On {
			return "ALL ON"
		}
		return "ALL OFF"
	case CmdSet:
		return "SET " + c.Pattern
	case CmdPulse:
		return fmt.Sprintf("PULSE %d %d", c.Relay, c.Duration)
	case CmdName:
		if c.ClearName {
			return fmt.Sprintf("NAME %d", c.Relay)
		}
		return fmt.Sprintf("NAME %d %s", c.Relay, c.Name)
	case CmdGetName:
		return fmt.Sprintf("GET NAME %d", c.Relay)
	case CmdBeep:
		if c.HasBeepMS {
			return fmt.Sprintf("BEEP %d", c.Duration)
		}
		return "BEEP"
	case CmdBuzz:
		if c.On {
			return "BUZZ ON"
		}
		return "BUZZ OFF"
	case CmdTone:
		return fmt.Sprintf("TONE %d %d", c.Frequency, c.Duration)
	case CmdSave:
		return "SAVE"
	case CmdLoad:
		return "LOAD"
	case CmdClear:
		return "CLEAR"
	default:
		return ""
	}
}

// Line validates the command and returns the complete wire line including
// terminator. A *ValidationError is returned without any wire formatting
// when the command violates the grammar.
func (c Command) Line() (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	return c.Format() + Terminator, nil
}

// BlocksFor returns how long the device blocks executing this command
// before responding. Zero for commands that respond immediately.
func (c Command) BlocksFor() int {
	switch c.Type {
	case CmdPulse, CmdTone:
		return c.Duration
	case CmdBeep:
		if c.HasBeepMS {
			return c.Duration
		}
		return DefaultBeepDuration
	}
	return 0
}
