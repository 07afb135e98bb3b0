package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestFile(t *testing.T) *File {
	f := NewFile(filepath.Join(t.TempDir(), "relay_config.json"))
	f.Now = func() time.Time { return time.Unix(1700000000, 0) }
	return f
}

func TestDefaultsOnMissingFile(t *testing.T) {
	f := newTestFile(t)

	name, err := f.Name(3)
	require.NoError(t, err)
	require.Equal(t, "Relay 3", name)

	autoLoad, err := f.AutoLoad()
	require.NoError(t, err)
	require.True(t, autoLoad)

	_, ok, err := f.LoadStates()
	require.NoError(t, err)
	require.False(t, ok)

	// First access persisted the defaults.
	data, err := os.ReadFile(f.Path)
	require.NoError(t, err)
	var cfg Config
	require.NoError(t, json.Unmarshal(data, &cfg))
	require.Equal(t, "Relay 1", cfg.Names["1"])
	require.True(t, cfg.Settings.AutoSave)
	require.Equal(t, int64(1700000000), cfg.Settings.CreatedTime)
}

func TestDefaultsOnCorruptFile(t *testing.T) {
	f := newTestFile(t)
	require.NoError(t, os.WriteFile(f.Path, []byte("{not json"), 0644))

	name, err := f.Name(1)
	require.NoError(t, err)
	require.Equal(t, "Relay 1", name)

	// The corrupt file was replaced.
	data, err := os.ReadFile(f.Path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &Config{}))
}

func TestNames(t *testing.T) {
	f := newTestFile(t)
	require.NoError(t, f.SetName(2, "PUMP"))

	name, err := f.Name(2)
	require.NoError(t, err)
	require.Equal(t, "PUMP", name)

	// Empty name means cleared, not defaulted.
	require.NoError(t, f.SetName(2, ""))
	name, err = f.Name(2)
	require.NoError(t, err)
	require.Empty(t, name)

	require.Error(t, f.SetName(2, string(make([]byte, 33))))
}

func TestStatesRoundTrip(t *testing.T) {
	f := newTestFile(t)
	require.NoError(t, f.SaveStates("10100000"))

	states, ok, err := f.LoadStates()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "10100000", states)

	// Survives a simulated restart (fresh store over the same file).
	f2 := NewFile(f.Path)
	states, ok, err = f2.LoadStates()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "10100000", states)
}

func TestClearForgetsSavedStates(t *testing.T) {
	f := newTestFile(t)
	require.NoError(t, f.SaveStates("11111111"))
	require.NoError(t, f.ClearStates())

	_, ok, err := f.LoadStates()
	require.NoError(t, err)
	require.False(t, ok)

	// Saving again restores loadability.
	require.NoError(t, f.SaveStates("00000001"))
	states, ok, err := f.LoadStates()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "00000001", states)
}

func TestSaveStatesValidation(t *testing.T) {
	f := newTestFile(t)
	require.ErrorIs(t, f.SaveStates("1010"), ErrInvalidStates)
	require.ErrorIs(t, f.SaveStates("1010000X"), ErrInvalidStates)
}

func TestAutoLoadFlag(t *testing.T) {
	f := newTestFile(t)
	require.NoError(t, f.SetAutoLoad(false))
	autoLoad, err := f.AutoLoad()
	require.NoError(t, err)
	require.False(t, autoLoad)
}
