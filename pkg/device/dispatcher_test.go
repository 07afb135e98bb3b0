package device

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/picorelay/relay.go/pkg/proto"
)

// fakeBackend records calls and serves canned state. Any method listed in
// failing returns an error.
type fakeBackend struct {
	states  [proto.RelayCount]bool
	buzzing bool
	calls   []string
	failing map[string]bool
}

func (b *fakeBackend) fail(op string) error {
	b.calls = append(b.calls, op)
	if b.failing[op] {
		return errors.New(op + " failed")
	}
	return nil
}

func (b *fakeBackend) RelayOn(n int) error {
	b.states[n-1] = true
	return b.fail("RelayOn")
}

func (b *fakeBackend) RelayOff(n int) error {
	b.states[n-1] = false
	return b.fail("RelayOff")
}

func (b *fakeBackend) AllOn() error {
	for i := range b.states {
		b.states[i] = true
	}
	return b.fail("AllOn")
}

func (b *fakeBackend) AllOff() error {
	b.states = [proto.RelayCount]bool{}
	return b.fail("AllOff")
}

func (b *fakeBackend) SetPattern(pattern string) error {
	for i := 0; i < proto.RelayCount; i++ {
		b.states[i] = pattern[proto.RelayCount-1-i] == '1'
	}
	return b.fail("SetPattern")
}

func (b *fakeBackend) SetStates(states string) error {
	if err := b.fail("SetStates"); err != nil {
		return err
	}
	for i := 0; i < proto.RelayCount; i++ {
		b.states[i] = states[i] == '1'
	}
	return nil
}

func (b *fakeBackend) StatusBinary() string {
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

func (b *fakeBackend) Pulse(n, durationMS int) error { return b.fail("Pulse") }
func (b *fakeBackend) BuzzerOn(frequencyHz int) error {
	b.buzzing = true
	return b.fail("BuzzerOn")
}

func (b *fakeBackend) BuzzerOff() error {
	b.buzzing = false
	return b.fail("BuzzerOff")
}

func (b *fakeBackend) Beep(durationMS int) error           { return b.fail("Beep") }
func (b *fakeBackend) Tone(frequencyHz, durationMS int) error { return b.fail("Tone") }
func (b *fakeBackend) UID() string                         { return "E660C06213254A31" }

type fakeStore struct {
	names       map[int]string
	saved       string
	hasSaved    bool
	autoLoadOff bool
	failing     map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{names: map[int]string{}, failing: map[string]bool{}}
}

func (s *fakeStore) fail(op string) error {
	if s.failing[op] {
		return errors.New(op + " failed")
	}
	return nil
}

func (s *fakeStore) Name(n int) (string, error) {
	if err := s.fail("Name"); err != nil {
		return "", err
	}
	if name, ok := s.names[n]; ok {
		return name, nil
	}
	return proto.DefaultName(n), nil
}

func (s *fakeStore) SetName(n int, name string) error {
	if err := s.fail("SetName"); err != nil {
		return err
	}
	s.names[n] = name
	return nil
}

func (s *fakeStore) AutoLoad() (bool, error)        { return !s.autoLoadOff, nil }
func (s *fakeStore) SetAutoLoad(enabled bool) error { return nil }

func (s *fakeStore) SaveStates(states string) error {
	if err := s.fail("SaveStates"); err != nil {
		return err
	}
	s.saved = states
	s.hasSaved = true
	return nil
}

func (s *fakeStore) LoadStates() (string, bool, error) {
	if err := s.fail("LoadStates"); err != nil {
		return "", false, err
	}
	return s.saved, s.hasSaved, nil
}

func (s *fakeStore) ClearStates() error {
	if err := s.fail("ClearStates"); err != nil {
		return err
	}
	s.saved = ""
	s.hasSaved = false
	return nil
}

func newTestDispatcher() (*Dispatcher, *fakeBackend, *fakeStore) {
	backend := &fakeBackend{failing: map[string]bool{}}
	store := newFakeStore()
	return NewDispatcher(backend, store), backend, store
}

func TestDispatcherResponses(t *testing.T) {
	for _, tc := range []struct {
		name string
		line string
		resp string
	}{
		{name: "ping", line: "PING", resp: "PONG"},
		{name: "status all off", line: "STATUS", resp: "00000000"},
		{name: "on", line: "ON 3", resp: "OK"},
		{name: "off", line: "OFF 3", resp: "OK"},
		{name: "all on", line: "ALL ON", resp: "OK"},
		{name: "set", line: "SET 10100101", resp: "OK"},
		{name: "uid", line: "UID", resp: "E660C06213254A31"},
		{name: "version", line: "VERSION", resp: proto.FirmwareVersion},
		{name: "info", line: "INFO", resp: "WAVESHARE-PICO-RELAY-B,V1.0,8CH,UID:E660C06213254A31"},
		{name: "help", line: "HELP", resp: proto.HelpResponse},
		{name: "beep default", line: "BEEP", resp: "OK"},
		{name: "buzz on", line: "BUZZ ON", resp: "OK"},
		{name: "tone", line: "TONE 440 100", resp: "OK"},
		{name: "lowercase accepted", line: "  ping  ", resp: "PONG"},
		{name: "unknown command", line: "FROB 1", resp: "ERROR:INVALID_COMMAND"},
		{name: "relay out of range", line: "ON 9", resp: "ERROR:INVALID_RELAY_NUMBER"},
		{name: "too many args", line: "PING 1", resp: "ERROR:INVALID_PARAMETER_COUNT"},
		{name: "bad pulse duration", line: "PULSE 1 5001", resp: "ERROR:INVALID_PARAMETER"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			d, _, _ := newTestDispatcher()
			require.Equal(t, tc.resp+proto.Terminator, d.ProcessLine(tc.line))
		})
	}
}

func TestDispatcherStateSequence(t *testing.T) {
	d, _, _ := newTestDispatcher()

	require.Equal(t, "OK\n", d.ProcessLine("ON 1"))
	require.Equal(t, "00000001\n", d.ProcessLine("STATUS"))
	require.Equal(t, "OK\n", d.ProcessLine("ON 8"))
	require.Equal(t, "10000001\n", d.ProcessLine("STATUS"))
	require.Equal(t, "OK\n", d.ProcessLine("ALL OFF"))
	require.Equal(t, "00000000\n", d.ProcessLine("STATUS"))
	require.Equal(t, "OK\n", d.ProcessLine("SET 10100101"))
	require.Equal(t, "10100101\n", d.ProcessLine("STATUS"))
}

func TestDispatcherInvalidSkipsBackend(t *testing.T) {
	d, backend, _ := newTestDispatcher()

	d.ProcessLine("ON 0")
	d.ProcessLine("SET 1010")
	d.ProcessLine("PULSE 1 0")
	require.Empty(t, backend.calls)
}

func TestDispatcherNames(t *testing.T) {
	d, _, _ := newTestDispatcher()

	require.Equal(t, "Relay 3\n", d.ProcessLine("GET NAME 3"))
	require.Equal(t, "OK\n", d.ProcessLine("NAME 3 PUMP"))
	// The whole line is uppercased before parsing, names included.
	require.Equal(t, "PUMP\n", d.ProcessLine("get name 3"))
	require.Equal(t, "OK\n", d.ProcessLine("NAME 3"))
	require.Equal(t, "\n", d.ProcessLine("GET NAME 3"))
}

func TestDispatcherSaveLoadClear(t *testing.T) {
	d, backend, store := newTestDispatcher()

	require.Equal(t, "ERROR:NO_SAVED_STATE\n", d.ProcessLine("LOAD"))

	d.ProcessLine("SET 00001111")
	require.Equal(t, "SAVED\n", d.ProcessLine("SAVE"))
	// Persisted as relay-1-first, the reverse of the wire pattern.
	require.Equal(t, "11110000", store.saved)

	d.ProcessLine("ALL OFF")
	require.Equal(t, "LOADED\n", d.ProcessLine("LOAD"))
	require.Equal(t, "00001111\n", d.ProcessLine("STATUS"))

	require.Equal(t, "CLEARED\n", d.ProcessLine("CLEAR"))
	require.Equal(t, "ERROR:NO_SAVED_STATE\n", d.ProcessLine("LOAD"))

	store.failing["SaveStates"] = true
	require.Equal(t, "ERROR:SAVE_FAILED\n", d.ProcessLine("SAVE"))
	store.failing["SaveStates"] = false
	store.failing["ClearStates"] = true
	require.Equal(t, "ERROR:CLEAR_FAILED\n", d.ProcessLine("CLEAR"))

	store.failing["ClearStates"] = false
	d.ProcessLine("SAVE")
	backend.failing["SetStates"] = true
	require.Equal(t, "ERROR:LOAD_FAILED\n", d.ProcessLine("LOAD"))
}

func TestDispatcherHardwareError(t *testing.T) {
	d, backend, _ := newTestDispatcher()
	backend.failing["RelayOn"] = true

	require.Equal(t, "ERROR:HARDWARE_ERROR\n", d.ProcessLine("ON 1"))
	require.Equal(t, "OK\n", d.ProcessLine("OFF 1"))
}

func TestDispatcherConcurrentClients(t *testing.T) {
	d, _, _ := newTestDispatcher()

	const clients = 4
	const perClient = 100
	var wg sync.WaitGroup
	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func(relay int) {
			defer wg.Done()
			for j := 0; j < perClient; j++ {
				require.Equal(t, "OK\n", d.ProcessLine(proto.NewOnCommand(relay).Format()))
				status := d.ProcessLine("STATUS")
				require.Len(t, status, proto.RelayCount+1)
				// The dispatcher serializes commands, so a relay this
				// client switched on is on in every later status.
				require.Equal(t, byte('1'), status[proto.RelayCount-relay])
			}
		}(i + 1)
	}
	wg.Wait()

	stats := d.Stats()
	require.Equal(t, uint64(clients*perClient*2), stats.CommandCount)
	require.Zero(t, stats.ErrorCount)
}

func TestDispatcherStats(t *testing.T) {
	d, _, _ := newTestDispatcher()
	at := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return at }

	d.ProcessLine("PING")
	d.ProcessLine("BOGUS")
	d.ProcessLine("ON 1")
	d.ProcessLine("ON 99")

	stats := d.Stats()
	require.Equal(t, uint64(4), stats.CommandCount)
	require.Equal(t, uint64(2), stats.ErrorCount)
	require.Equal(t, 0.5, stats.ErrorRate())
	require.Equal(t, at, stats.LastCommandTime)

	d.ResetStats()
	require.Equal(t, Stats{}, d.Stats())
	require.Zero(t, d.Stats().ErrorRate())
}
