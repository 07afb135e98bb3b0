package device

import (
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"

	"github.com/picorelay/relay.go/pkg/proto"
)

// HostUID hashes the machine ID into a 16-hex-digit identifier, the
// shape of an RP2040 flash UID. It is stable across restarts.
func HostUID() string {
	id, err := machineid.ID()
	if err != nil {
		id = "pico-relay-sim"
	}
	h := fnv.New64a()
	h.Write([]byte(id))
	return fmt.Sprintf("%016X", h.Sum64())
}

// RestoreStates applies the store's saved relay states to the backend
// when auto-load is enabled and a non-zero pattern is saved. This
// mirrors the boot behavior of the firmware.
func RestoreStates(backend Backend, store Store) error {
	enabled, err := store.AutoLoad()
	if err != nil {
		return err
	}
	if !enabled {
		return nil
	}
	states, ok, err := store.LoadStates()
	if err != nil {
		return err
	}
	if ok && states != strings.Repeat("0", proto.RelayCount) {
		if err := backend.SetStates(states); err != nil {
			return err
		}
		glog.V(1).Infof("restored relay states %s", states)
	}
	return nil
}

// SelfTest cycles every relay on and off with the given sleep between
// transitions, then beeps. It leaves the board with all relays off.
func SelfTest(backend Backend, sleep func(time.Duration)) error {
	for n := proto.MinRelay; n <= proto.MaxRelay; n++ {
		if err := backend.RelayOn(n); err != nil {
			return err
		}
		sleep(50 * time.Millisecond)
		if err := backend.RelayOff(n); err != nil {
			return err
		}
	}
	return backend.Beep(proto.DefaultBeepDuration)
}
