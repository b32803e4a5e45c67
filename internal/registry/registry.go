// Package registry tracks the damage texts currently on screen.
package registry

import (
	"iter"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/sparroh/disablefloatingtext/internal/model"
)

// Registry tracks damage texts the host has spawned and that are still shown.
// It only owns the bookkeeping; display objects belong to the host.
type Registry struct {
	mu      sync.Mutex
	entries []*model.Entry
	// mirrors len(entries) so Count never waits on a reap in progress
	size atomic.Int64
}

func New() *Registry {
	return &Registry{
		entries: make([]*model.Entry, 0, 64),
	}
}

// Add appends e. Duplicate handles are kept as separate entries.
func (r *Registry) Add(e *model.Entry) {
	if e == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	r.size.Store(int64(len(r.entries)))
}

// Remove drops e by identity. Returns false if it was not tracked.
func (r *Registry) Remove(e *model.Entry) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := slices.Index(r.entries, e)
	if i < 0 {
		return false
	}
	r.removeAt(i)
	return true
}

// Count returns the number of tracked entries. It does not take the lock, so it is
// safe to call from a log handler while a reap is running.
func (r *Registry) Count() int {
	return int(r.size.Load())
}

// Snapshot returns a copy of the tracked entries in insertion order.
func (r *Registry) Snapshot() []*model.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.entries)
}

// All yields a snapshot lazily, oldest first.
func (r *Registry) All() iter.Seq[*model.Entry] {
	return slices.Values(r.Snapshot())
}

// Reap walks the entries newest to oldest and removes every entry for which hide
// returns true, in the same pass. The walk holds the lock, so spawns made while it
// runs land after it. hide may call Count but nothing else on the registry.
func (r *Registry) Reap(hide func(*model.Entry) bool) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for i := len(r.entries) - 1; i >= 0; i-- {
		if hide(r.entries[i]) {
			r.removeAt(i)
			removed++
		}
	}
	return removed
}

// Prune drops entries whose object the host already deactivated.
func (r *Registry) Prune() int {
	return r.Reap(func(e *model.Entry) bool { return !e.Active() })
}

// Clear forgets every entry.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.entries)
	r.entries = r.entries[:0]
	r.size.Store(0)
}

// removeAt deletes index i keeping order. Indices below i are untouched,
// which is what makes the reverse walk in Reap safe.
func (r *Registry) removeAt(i int) {
	last := len(r.entries) - 1
	copy(r.entries[i:], r.entries[i+1:])
	r.entries[last] = nil
	r.entries = r.entries[:last]
	r.size.Store(int64(last))
}
