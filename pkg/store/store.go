// Package store persists relay board configuration: relay names, saved
// relay states and the auto-load flag.
package store

import (
	"encoding/json"
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/golang/glog"

	"github.com/picorelay/relay.go/pkg/proto"
)

// Config is the persisted document. Relay numbers are string keys "1".."8"
// to keep the on-disk layout stable.
type Config struct {
	Names    map[string]string `json:"names"`
	Settings Settings          `json:"settings"`
	States   map[string]int    `json:"states"`
	AutoLoad bool              `json:"auto_load"`
}

// Settings carries store metadata. LastSaved is present only while a saved
// state exists; CLEAR removes it.
type Settings struct {
	AutoSave    bool   `json:"auto_save"`
	CreatedTime int64  `json:"created_time"`
	LastSaved   *int64 `json:"last_saved,omitempty"`
}

// ErrInvalidStates reports a malformed storage-format state string.
var ErrInvalidStates = errors.New("states must be 8 characters of 0/1, relay 1 first")

// File is a file-backed store. Every accessor re-reads the file and every
// mutator rewrites it: the device processes one command at a time, so no
// cache or lock is kept. A missing or corrupt file is replaced with
// defaults on first access.
type File struct {
	Path string

	// Now is the clock for timestamps, overridable in tests.
	Now func() time.Time
}

// NewFile creates a store backed by the file at path.
func NewFile(path string) *File {
	return &File{Path: path, Now: time.Now}
}

func defaultConfig(now time.Time) Config {
	cfg := Config{
		Names:    make(map[string]string, proto.RelayCount),
		States:   make(map[string]int, proto.RelayCount),
		Settings: Settings{AutoSave: true, CreatedTime: now.Unix()},
		AutoLoad: true,
	}
	for n := proto.MinRelay; n <= proto.MaxRelay; n++ {
		key := strconv.Itoa(n)
		cfg.Names[key] = proto.DefaultName(n)
		cfg.States[key] = 0
	}
	return cfg
}

// load reads the config, re-initializing to defaults when the file is
// missing or corrupt. The defaults are persisted immediately in that case.
func (f *File) load() Config {
	data, err := os.ReadFile(f.Path)
	if err == nil {
		var cfg Config
		if jsonErr := json.Unmarshal(data, &cfg); jsonErr == nil {
			fillMissing(&cfg, f.Now())
			return cfg
		}
		glog.Warningf("store %s corrupt, resetting to defaults", f.Path)
	}
	cfg := defaultConfig(f.Now())
	if err := f.save(cfg); err != nil {
		glog.Errorf("store %s: write defaults: %v", f.Path, err)
	}
	return cfg
}

// fillMissing restores any top-level section dropped from an older or
// partially written file.
func fillMissing(cfg *Config, now time.Time) {
	def := defaultConfig(now)
	if cfg.Names == nil {
		cfg.Names = def.Names
	}
	if cfg.States == nil {
		cfg.States = def.States
	}
	if cfg.Settings == (Settings{}) {
		cfg.Settings = def.Settings
	}
}

func (f *File) save(cfg Config) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(f.Path, data, 0644)
}

// Name returns the stored name of relay n, or the default display name
// when none is stored. An empty stored name means "cleared" and is
// returned as-is.
func (f *File) Name(n int) (string, error) {
	cfg := f.load()
	name, ok := cfg.Names[strconv.Itoa(n)]
	if !ok {
		return proto.DefaultName(n), nil
	}
	return name, nil
}

// SetName stores a name for relay n. An empty name clears it.
func (f *File) SetName(n int, name string) error {
	if len(name) > proto.MaxNameLength {
		return errors.New("name too long")
	}
	cfg := f.load()
	cfg.Names[strconv.Itoa(n)] = name
	return f.save(cfg)
}

// AutoLoad reports whether saved states are applied at device start.
func (f *File) AutoLoad() (bool, error) {
	return f.load().AutoLoad, nil
}

// SetAutoLoad persists the auto-load flag.
func (f *File) SetAutoLoad(enabled bool) error {
	cfg := f.load()
	cfg.AutoLoad = enabled
	return f.save(cfg)
}

// SaveStates persists a storage-format state string (relay 1 first) and
// stamps the save time.
func (f *File) SaveStates(states string) error {
	if !proto.IsValidPattern(states) {
		return ErrInvalidStates
	}
	cfg := f.load()
	for i := 0; i < proto.RelayCount; i++ {
		cfg.States[strconv.Itoa(i+1)] = int(states[i] - '0')
	}
	ts := f.Now().Unix()
	cfg.Settings.LastSaved = &ts
	return f.save(cfg)
}

// LoadStates returns the saved storage-format state string. ok is false
// when nothing has been saved since the last CLEAR.
func (f *File) LoadStates() (states string, ok bool, err error) {
	cfg := f.load()
	if cfg.Settings.LastSaved == nil {
		return "", false, nil
	}
	b := make([]byte, proto.RelayCount)
	for n := proto.MinRelay; n <= proto.MaxRelay; n++ {
		if cfg.States[strconv.Itoa(n)] != 0 {
			b[n-1] = '1'
		} else {
			b[n-1] = '0'
		}
	}
	return string(b), true, nil
}

// ClearStates zeroes the saved states and forgets the save timestamp, so
// a following LoadStates reports nothing saved.
func (f *File) ClearStates() error {
	cfg := f.load()
	for n := proto.MinRelay; n <= proto.MaxRelay; n++ {
		cfg.States[strconv.Itoa(n)] = 0
	}
	cfg.Settings.LastSaved = nil
	return f.save(cfg)
}
