// Package sim provides an in-memory relay board backend with the same
// observable behavior as the real hardware, for the simulator daemon and
// for tests.
package sim

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/picorelay/relay.go/pkg/device"
	"github.com/picorelay/relay.go/pkg/proto"
)

// Board simulates the 8-channel relay board and its buzzer.
type Board struct {
	mu      sync.Mutex
	states  [proto.RelayCount]bool
	buzzing bool
	freq    int
	uid     string

	// Sleep implements blocking waits, overridable in tests.
	Sleep func(time.Duration)
}

// New creates a simulated board. The UID is derived from the machine ID
// so it stays stable across restarts, like a real board's flash UID.
func New() *Board {
	return &Board{uid: device.HostUID(), Sleep: time.Sleep}
}

// NewWithStore creates a simulated board and, when the store has
// auto-load enabled and holds saved states, applies them. This mirrors
// the boot behavior of the firmware.
func NewWithStore(store device.Store) (*Board, error) {
	b := New()
	if err := device.RestoreStates(b, store); err != nil {
		return nil, err
	}
	return b, nil
}

// RelayOn implements device.Backend.
func (b *Board) RelayOn(n int) error {
	return b.setRelay(n, true)
}

// RelayOff implements device.Backend.
func (b *Board) RelayOff(n int) error {
	return b.setRelay(n, false)
}

func (b *Board) setRelay(n int, on bool) error {
	if !proto.IsValidRelayNumber(n) {
		return fmt.Errorf("relay number %d out of range", n)
	}
	b.mu.Lock()
	b.states[n-1] = on
	b.mu.Unlock()
	glog.V(2).Infof("relay %d -> %v", n, on)
	return nil
}

// AllOn implements device.Backend.
func (b *Board) AllOn() error {
	b.mu.Lock()
	for i := range b.states {
		b.states[i] = true
	}
	b.mu.Unlock()
	return nil
}

// AllOff implements device.Backend.
func (b *Board) AllOff() error {
	b.mu.Lock()
	b.states = [proto.RelayCount]bool{}
	b.mu.Unlock()
	return nil
}

// SetPattern implements device.Backend. The pattern is wire format,
// relay 8 leftmost.
func (b *Board) SetPattern(pattern string) error {
	if !proto.IsValidPattern(pattern) {
		return fmt.Errorf("invalid pattern %q", pattern)
	}
	b.mu.Lock()
	for i := 0; i < proto.RelayCount; i++ {
		b.states[i] = pattern[proto.RelayCount-1-i] == '1'
	}
	b.mu.Unlock()
	return nil
}

// SetStates implements device.Backend. The string is storage format,
// relay 1 first.
func (b *Board) SetStates(states string) error {
	if !proto.IsValidPattern(states) {
		return fmt.Errorf("invalid states %q", states)
	}
	return b.SetPattern(proto.ReversePattern(states))
}

// StatusBinary implements device.Backend.
func (b *Board) StatusBinary() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var sb strings.Builder
	for i := proto.RelayCount - 1; i >= 0; i-- {
		if b.states[i] {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// Pulse implements device.Backend. The relay returns to its prior state
// after the pulse, not unconditionally off.
func (b *Board) Pulse(n, durationMS int) error {
	if !proto.IsValidRelayNumber(n) {
		return fmt.Errorf("relay number %d out of range", n)
	}
	b.mu.Lock()
	prior := b.states[n-1]
	b.states[n-1] = true
	b.mu.Unlock()

	b.Sleep(time.Duration(durationMS) * time.Millisecond)

	b.mu.Lock()
	b.states[n-1] = prior
	b.mu.Unlock()
	return nil
}

// BuzzerOn implements device.Backend.
func (b *Board) BuzzerOn(frequencyHz int) error {
	if frequencyHz == 0 {
		frequencyHz = device.DefaultBuzzerFrequency
	}
	b.mu.Lock()
	b.buzzing = true
	b.freq = frequencyHz
	b.mu.Unlock()
	return nil
}

// BuzzerOff implements device.Backend.
func (b *Board) BuzzerOff() error {
	b.mu.Lock()
	b.buzzing = false
	b.freq = 0
	b.mu.Unlock()
	return nil
}

// Beep implements device.Backend.
func (b *Board) Beep(durationMS int) error {
	return b.Tone(device.DefaultBuzzerFrequency, durationMS)
}

// Tone implements device.Backend.
func (b *Board) Tone(frequencyHz, durationMS int) error {
	if err := b.BuzzerOn(frequencyHz); err != nil {
		return err
	}
	b.Sleep(time.Duration(durationMS) * time.Millisecond)
	return b.BuzzerOff()
}

// UID implements device.Backend.
func (b *Board) UID() string {
	return b.uid
}

// Buzzing reports the buzzer state and frequency, for inspection.
func (b *Board) Buzzing() (bool, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buzzing, b.freq
}

// SelfTest cycles every relay on and off, then beeps. It leaves the
// board with all relays off.
func (b *Board) SelfTest() error {
	return device.SelfTest(b, b.Sleep)
}
