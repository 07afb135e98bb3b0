package device

import "time"

// Stats counts processed lines. It is owned by a single Dispatcher, mutated
// once per processed line and never persisted.
type Stats struct {
	CommandCount    uint64
	ErrorCount      uint64
	LastCommandTime time.Time
}

// ErrorRate returns the ratio of errors to processed commands.
func (s Stats) ErrorRate() float64 {
	if s.CommandCount == 0 {
		return 0
	}
	return float64(s.ErrorCount) / float64(s.CommandCount)
}

// Reset clears all counters.
func (s *Stats) Reset() {
	*s = Stats{}
}
