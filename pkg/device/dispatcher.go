package device

import (
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/picorelay/relay.go/pkg/proto"
)

// Dispatcher processes protocol lines against a backend and a store.
// It is strictly sequential: one line is fully parsed, validated, executed
// and formatted before the next is accepted, even when multiple servers
// share the dispatcher. Blocking commands (PULSE, BEEP, TONE) hold the
// dispatcher for their bounded duration.
type Dispatcher struct {
	mu      sync.Mutex
	backend Backend
	store   Store
	stats   Stats

	// now is the clock for statistics, overridable in tests.
	now func() time.Time
}

// NewDispatcher creates a dispatcher for the given backend and store.
func NewDispatcher(backend Backend, store Store) *Dispatcher {
	return &Dispatcher{backend: backend, store: store, now: time.Now}
}

// Stats returns a snapshot of the statistics.
func (d *Dispatcher) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// ResetStats clears the statistics.
func (d *Dispatcher) ResetStats() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stats.Reset()
}

// ProcessLine handles one received line and returns the complete response
// line including terminator. Errors never propagate past this boundary:
// every outcome is a response line.
func (d *Dispatcher) ProcessLine(line string) string {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stats.CommandCount++
	d.stats.LastCommandTime = d.now()

	cmd, code := proto.ParseLine(line)
	if code != "" {
		d.stats.ErrorCount++
		glog.V(2).Infof("rejected %q: %s", line, code)
		return code.Response() + proto.Terminator
	}

	data, hasData, errCode := d.execute(cmd)
	if errCode != "" {
		d.stats.ErrorCount++
		glog.V(2).Infof("command %q failed: %s", cmd.Format(), errCode)
		return errCode.Response() + proto.Terminator
	}
	if !hasData {
		return proto.SuccessResponse + proto.Terminator
	}
	// Data may be empty: GET NAME on a cleared name responds with a bare
	// empty line, not OK.
	return data + proto.Terminator
}

// execute runs a validated command. hasData false formats as the literal
// OK. The switch is exhaustive over the command vocabulary.
func (d *Dispatcher) execute(cmd proto.Command) (data string, hasData bool, code proto.ErrorCode) {
	switch cmd.Type {
	case proto.CmdPing:
		return proto.PingResponse, true, ""

	case proto.CmdStatus:
		return d.backend.StatusBinary(), true, ""

	case proto.CmdOn:
		return "", false, hardware(d.backend.RelayOn(cmd.Relay))

	case proto.CmdOff:
		return "", false, hardware(d.backend.RelayOff(cmd.Relay))

	case proto.CmdAll:
		if cmd.On {
			return "", false, hardware(d.backend.AllOn())
		}
		return "", false, hardware(d.backend.AllOff())

	case proto.CmdSet:
		return "", false, hardware(d.backend.SetPattern(cmd.Pattern))

	case proto.CmdPulse:
		return "", false, hardware(d.backend.Pulse(cmd.Relay, cmd.Duration))

	case proto.CmdInfo:
		return proto.FormatInfo(d.backend.UID()), true, ""

	case proto.CmdUID:
		return d.backend.UID(), true, ""

	case proto.CmdVersion:
		return proto.FirmwareVersion, true, ""

	case proto.CmdHelp:
		return proto.HelpResponse, true, ""

	case proto.CmdName:
		name := cmd.Name
		if cmd.ClearName {
			name = ""
		}
		return "", false, hardware(d.store.SetName(cmd.Relay, name))

	case proto.CmdGetName:
		name, err := d.store.Name(cmd.Relay)
		if err != nil {
			return "", false, proto.ErrHardware
		}
		return name, true, ""

	case proto.CmdBeep:
		duration := proto.DefaultBeepDuration
		if cmd.HasBeepMS {
			duration = cmd.Duration
		}
		return "", false, hardware(d.backend.Beep(duration))

	case proto.CmdBuzz:
		if cmd.On {
			return "", false, hardware(d.backend.BuzzerOn(0))
		}
		return "", false, hardware(d.backend.BuzzerOff())

	case proto.CmdTone:
		return "", false, hardware(d.backend.Tone(cmd.Frequency, cmd.Duration))

	case proto.CmdSave:
		storage := proto.ReversePattern(d.backend.StatusBinary())
		if err := d.store.SaveStates(storage); err != nil {
			return "", false, proto.ErrSaveFailed
		}
		return "SAVED", true, ""

	case proto.CmdLoad:
		states, ok, err := d.store.LoadStates()
		if err != nil || !ok {
			return "", false, proto.ErrNoSavedState
		}
		if err := d.backend.SetStates(states); err != nil {
			return "", false, proto.ErrLoadFailed
		}
		return "LOADED", true, ""

	case proto.CmdClear:
		if err := d.store.ClearStates(); err != nil {
			return "", false, proto.ErrClearFailed
		}
		return "CLEARED", true, ""
	}
	return "", false, proto.ErrInvalidCommand
}

func hardware(err error) proto.ErrorCode {
	if err != nil {
		return proto.ErrHardware
	}
	return ""
}
