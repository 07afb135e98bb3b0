package device

// Backend is the hardware capability set the dispatcher executes against.
// Implementations report failures as errors; the dispatcher maps any
// failure to HARDWARE_ERROR and never lets one cross its boundary.
type Backend interface {
	// RelayOn turns relay n (1-8) on.
	RelayOn(n int) error
	// RelayOff turns relay n (1-8) off.
	RelayOff(n int) error
	// AllOn turns every relay on.
	AllOn() error
	// AllOff turns every relay off.
	AllOff() error
	// SetPattern applies a wire-format pattern (relay 8 leftmost).
	SetPattern(pattern string) error
	// SetStates applies a storage-format state string (relay 1 first).
	// Implementations reverse it to wire order before applying.
	SetStates(states string) error
	// StatusBinary returns the wire-format pattern of current states.
	StatusBinary() string
	// Pulse turns relay n on for durationMS milliseconds, then restores
	// the state the relay had before the pulse, so a relay that was
	// already on stays on instead of being forced off. Blocks for the
	// duration.
	Pulse(n, durationMS int) error

	// BuzzerOn starts the buzzer. frequencyHz 0 selects the default.
	BuzzerOn(frequencyHz int) error
	// BuzzerOff stops the buzzer.
	BuzzerOff() error
	// Beep sounds the buzzer for durationMS milliseconds. Blocks.
	Beep(durationMS int) error
	// Tone plays frequencyHz for durationMS milliseconds. Blocks.
	Tone(frequencyHz, durationMS int) error

	// UID returns the 16-character uppercase hex board identifier.
	UID() string
}

// Store is the persisted configuration consumed by the dispatcher. It is
// implemented by the store package.
type Store interface {
	Name(n int) (string, error)
	SetName(n int, name string) error
	AutoLoad() (bool, error)
	SetAutoLoad(enabled bool) error
	SaveStates(states string) error
	LoadStates() (states string, ok bool, err error)
	ClearStates() error
}

// DefaultBuzzerFrequency is used when BuzzerOn is called without an
// explicit frequency.
const DefaultBuzzerFrequency = 1000
