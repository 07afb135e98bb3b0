package host

import (
	"github.com/picorelay/relay.go/pkg/proto"
)

// Ping checks the board is responsive.
func (c *Controller) Ping() error {
	resp, err := c.Do(proto.NewPingCommand())
	if err != nil {
		return err
	}
	if resp.Data != proto.PingResponse {
		return &ConnError{Op: "ping", Err: ErrTimeout}
	}
	return nil
}

// Info queries board identity.
func (c *Controller) Info() (proto.BoardInfo, error) {
	resp, err := c.Do(proto.NewInfoCommand())
	if err != nil {
		return proto.BoardInfo{}, err
	}
	return proto.ParseInfo(resp.Data), nil
}

// UID returns the board's unique identifier.
func (c *Controller) UID() (string, error) {
	resp, err := c.Do(proto.NewUIDCommand())
	if err != nil {
		return "", err
	}
	return resp.Data, nil
}

// Version returns the firmware version string.
func (c *Controller) Version() (string, error) {
	resp, err := c.Do(proto.NewVersionCommand())
	if err != nil {
		return "", err
	}
	return resp.Data, nil
}

// Help returns the command vocabulary the firmware reports.
func (c *Controller) Help() ([]string, error) {
	resp, err := c.Do(proto.NewHelpCommand())
	if err != nil {
		return nil, err
	}
	return proto.ParseHelp(resp.Data), nil
}

// Status returns the state of every relay.
func (c *Controller) Status() (map[int]bool, error) {
	resp, err := c.Do(proto.NewStatusCommand())
	if err != nil {
		return nil, err
	}
	return proto.ParseStatus(resp.Data)
}

// StatusPattern returns the raw wire pattern, relay 8 leftmost.
func (c *Controller) StatusPattern() (string, error) {
	resp, err := c.Do(proto.NewStatusCommand())
	if err != nil {
		return "", err
	}
	return resp.Data, nil
}

// On turns relay n on.
func (c *Controller) On(n int) error {
	_, err := c.Do(proto.NewOnCommand(n))
	return err
}

// Off turns relay n off.
func (c *Controller) Off(n int) error {
	_, err := c.Do(proto.NewOffCommand(n))
	return err
}

// AllOn turns every relay on.
func (c *Controller) AllOn() error {
	_, err := c.Do(proto.NewAllCommand(true))
	return err
}

// AllOff turns every relay off.
func (c *Controller) AllOff() error {
	_, err := c.Do(proto.NewAllCommand(false))
	return err
}

// SetPattern applies a wire-format pattern, relay 8 leftmost.
func (c *Controller) SetPattern(pattern string) error {
	_, err := c.Do(proto.NewSetCommand(pattern))
	return err
}

// Pulse turns relay n on for durationMS, then restores its prior state.
// The call blocks until the board completes the pulse.
func (c *Controller) Pulse(n, durationMS int) error {
	_, err := c.Do(proto.NewPulseCommand(n, durationMS))
	return err
}

// SetName stores a display name for relay n.
func (c *Controller) SetName(n int, name string) error {
	_, err := c.Do(proto.NewNameCommand(n, name))
	return err
}

// ClearName resets relay n to its default name.
func (c *Controller) ClearName(n int) error {
	_, err := c.Do(proto.NewClearNameCommand(n))
	return err
}

// Name returns the stored name of relay n, which may be empty.
func (c *Controller) Name(n int) (string, error) {
	resp, err := c.Do(proto.NewGetNameCommand(n))
	if err != nil {
		return "", err
	}
	return resp.Data, nil
}

// Names returns the stored names of all relays.
func (c *Controller) Names() (map[int]string, error) {
	names := make(map[int]string, proto.RelayCount)
	for n := proto.MinRelay; n <= proto.MaxRelay; n++ {
		name, err := c.Name(n)
		if err != nil {
			return nil, err
		}
		names[n] = name
	}
	return names, nil
}

// Beep sounds the buzzer for the default duration, or for durationMS
// when given. Blocks until the beep completes.
func (c *Controller) Beep(durationMS ...int) error {
	cmd := proto.NewBeepCommand()
	if len(durationMS) > 0 {
		cmd = proto.NewBeepDurationCommand(durationMS[0])
	}
	_, err := c.Do(cmd)
	return err
}

// BuzzerOn starts the buzzer.
func (c *Controller) BuzzerOn() error {
	_, err := c.Do(proto.NewBuzzCommand(true))
	return err
}

// BuzzerOff stops the buzzer.
func (c *Controller) BuzzerOff() error {
	_, err := c.Do(proto.NewBuzzCommand(false))
	return err
}

// Tone plays frequencyHz for durationMS. Blocks for the duration.
func (c *Controller) Tone(frequencyHz, durationMS int) error {
	_, err := c.Do(proto.NewToneCommand(frequencyHz, durationMS))
	return err
}

// Save persists the current relay states on the board.
func (c *Controller) Save() error {
	_, err := c.Do(proto.NewSaveCommand())
	return err
}

// Load applies the persisted relay states.
func (c *Controller) Load() error {
	_, err := c.Do(proto.NewLoadCommand())
	return err
}

// Clear forgets the persisted relay states.
func (c *Controller) Clear() error {
	_, err := c.Do(proto.NewClearCommand())
	return err
}
