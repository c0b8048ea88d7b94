package searcher

import "sync/atomic"

// State carries the termination flag and the global attempt counter
// shared by every worker. Workers receive the handle explicitly at
// spawn time; nothing here is ambient global state. Both values are
// eventually consistent snapshots, which is all the reporter needs.
type State struct {
	found    atomic.Bool
	attempts atomic.Uint64
}

// MarkFound records that a match was found. Idempotent.
func (s *State) MarkFound() {
	s.found.Store(true)
}

// Found reports whether any worker has found a match.
func (s *State) Found() bool {
	return s.found.Load()
}

// AddAttempts adds n completed generate-and-test cycles to the global
// counter.
func (s *State) AddAttempts(n uint64) {
	s.attempts.Add(n)
}

// TotalAttempts returns the current global attempt count.
func (s *State) TotalAttempts() uint64 {
	return s.attempts.Load()
}
