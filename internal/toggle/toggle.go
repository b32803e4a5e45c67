// Package toggle holds the global show/hide switch for non-player damage text.
package toggle

import "sync"

// Source says what changed the toggle.
type Source string

const (
	SourceConfig Source = "config"
	SourceManual Source = "manual"
)

// Change is delivered to listeners after the toggle is written.
type Change struct {
	Enabled bool
	Source  Source
	// ClearedTotal is the counter value after the change.
	ClearedTotal uint64
}

// State is the enabled flag plus the cleared counter since the last manual toggle.
type State struct {
	mu           sync.RWMutex
	enabled      bool
	clearedTotal uint64
	listeners    []func(Change)
}

// New returns a State with text shown.
func New() *State {
	return &State{enabled: true}
}

// SetFromConfig applies the persisted configuration value. The cleared counter is kept.
func (s *State) SetFromConfig(value bool) {
	s.mu.Lock()
	s.enabled = value
	c := Change{Enabled: value, Source: SourceConfig, ClearedTotal: s.clearedTotal}
	listeners := s.listeners
	s.mu.Unlock()

	notify(listeners, c)
}

// ManualToggle flips the flag, resets the cleared counter and returns the new value.
func (s *State) ManualToggle() bool {
	s.mu.Lock()
	s.enabled = !s.enabled
	s.clearedTotal = 0
	c := Change{Enabled: s.enabled, Source: SourceManual}
	listeners := s.listeners
	s.mu.Unlock()

	notify(listeners, c)
	return c.Enabled
}

// IsEnabled reports whether non-player damage text is shown.
func (s *State) IsEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled
}

// ClearedTotal returns the number of entries cleared since the last manual toggle.
func (s *State) ClearedTotal() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clearedTotal
}

// AddCleared bumps the cleared counter and returns the new total.
func (s *State) AddCleared(n uint64) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearedTotal += n
	return s.clearedTotal
}

// OnChange registers fn to run after every config or manual change.
// Listeners run on the writer's goroutine, outside the lock.
func (s *State) OnChange(fn func(Change)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners[:len(s.listeners):len(s.listeners)], fn)
}

func notify(listeners []func(Change), c Change) {
	for _, fn := range listeners {
		fn(c)
	}
}
