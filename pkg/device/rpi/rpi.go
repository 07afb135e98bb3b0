// Package rpi drives the relay board through memory-mapped GPIO on a
// Raspberry Pi. Pin assignments follow the Waveshare Pico Relay B layout.
package rpi

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/stianeikeland/go-rpio/v4"

	"github.com/picorelay/relay.go/pkg/device"
	"github.com/picorelay/relay.go/pkg/proto"
)

// relayPins maps relay 1-8 to GPIO numbers.
var relayPins = [proto.RelayCount]uint8{21, 20, 19, 18, 17, 16, 15, 14}

// buzzerPin is PWM capable on the reference board.
const buzzerPin = 6

// Board drives the relays and buzzer through GPIO. Open must be called
// before any other method, Close when done.
type Board struct {
	mu      sync.Mutex
	states  [proto.RelayCount]bool
	uid     string
	buzzing chan struct{}
}

// Open memory-maps the GPIO range and configures all pins as outputs,
// driven low.
func Open(uid string) (*Board, error) {
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("open gpio: %w", err)
	}
	for _, p := range relayPins {
		pin := rpio.Pin(p)
		pin.Output()
		pin.Low()
	}
	pin := rpio.Pin(buzzerPin)
	pin.Output()
	pin.Low()
	glog.V(1).Infof("gpio ready, relays on pins %v, buzzer on pin %d", relayPins, buzzerPin)
	return &Board{uid: uid}, nil
}

// Close drives every pin low and unmaps the GPIO range.
func (b *Board) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopBuzzerLocked()
	for _, p := range relayPins {
		rpio.Pin(p).Low()
	}
	rpio.Pin(buzzerPin).Low()
	return rpio.Close()
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
	defer b.mu.Unlock()
	b.driveLocked(n, on)
	return nil
}

func (b *Board) driveLocked(n int, on bool) {
	pin := rpio.Pin(relayPins[n-1])
	if on {
		pin.High()
	} else {
		pin.Low()
	}
	b.states[n-1] = on
}

// AllOn implements device.Backend.
func (b *Board) AllOn() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for n := proto.MinRelay; n <= proto.MaxRelay; n++ {
		b.driveLocked(n, true)
	}
	return nil
}

// AllOff implements device.Backend.
func (b *Board) AllOff() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for n := proto.MinRelay; n <= proto.MaxRelay; n++ {
		b.driveLocked(n, false)
	}
	return nil
}

// SetPattern implements device.Backend.
func (b *Board) SetPattern(pattern string) error {
	if !proto.IsValidPattern(pattern) {
		return fmt.Errorf("invalid pattern %q", pattern)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for n := proto.MinRelay; n <= proto.MaxRelay; n++ {
		b.driveLocked(n, pattern[proto.RelayCount-n] == '1')
	}
	return nil
}

// SetStates implements device.Backend.
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

// Pulse implements device.Backend.
func (b *Board) Pulse(n, durationMS int) error {
	if !proto.IsValidRelayNumber(n) {
		return fmt.Errorf("relay number %d out of range", n)
	}
	b.mu.Lock()
	prior := b.states[n-1]
	b.driveLocked(n, true)
	b.mu.Unlock()

	time.Sleep(time.Duration(durationMS) * time.Millisecond)

	b.mu.Lock()
	b.driveLocked(n, prior)
	b.mu.Unlock()
	return nil
}

// BuzzerOn implements device.Backend. The tone is a software square
// wave toggled from a goroutine, good enough for a piezo buzzer.
func (b *Board) BuzzerOn(frequencyHz int) error {
	if frequencyHz == 0 {
		frequencyHz = device.DefaultBuzzerFrequency
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopBuzzerLocked()
	stop := make(chan struct{})
	b.buzzing = stop
	go squareWave(rpio.Pin(buzzerPin), frequencyHz, stop)
	return nil
}

// BuzzerOff implements device.Backend.
func (b *Board) BuzzerOff() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopBuzzerLocked()
	return nil
}

func (b *Board) stopBuzzerLocked() {
	if b.buzzing != nil {
		close(b.buzzing)
		b.buzzing = nil
	}
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
	time.Sleep(time.Duration(durationMS) * time.Millisecond)
	return b.BuzzerOff()
}

// UID implements device.Backend.
func (b *Board) UID() string {
	return b.uid
}

func squareWave(pin rpio.Pin, frequencyHz int, stop <-chan struct{}) {
	half := time.Second / time.Duration(2*frequencyHz)
	tick := time.NewTicker(half)
	defer tick.Stop()
	high := false
	for {
		select {
		case <-stop:
			pin.Low()
			return
		case <-tick.C:
			high = !high
			if high {
				pin.High()
			} else {
				pin.Low()
			}
		}
	}
}
