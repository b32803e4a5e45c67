// Package memory keeps statistics in process for the lifetime of the session.
package memory

import (
	"slices"
	"sync"

	"github.com/sparroh/disablefloatingtext/internal/model"
)

// Backend stores records in slices.
type Backend struct {
	sweeps  []model.SweepRecord
	toggles []model.ToggleRecord

	idCounter uint
	mu        sync.RWMutex
}

// New creates a new memory backend
func New() *Backend {
	return &Backend{}
}

// Init is a no-op.
func (b *Backend) Init() error {
	return nil
}

// Close is a no-op.
func (b *Backend) Close() error {
	return nil
}

// RecordSweep stores a copy of r and assigns its ID.
func (b *Backend) RecordSweep(r *model.SweepRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.idCounter++
	r.ID = b.idCounter
	b.sweeps = append(b.sweeps, *r)
	return nil
}

// RecordToggle stores a copy of r and assigns its ID.
func (b *Backend) RecordToggle(r *model.ToggleRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.idCounter++
	r.ID = b.idCounter
	b.toggles = append(b.toggles, *r)
	return nil
}

// Sweeps returns the recorded sweeps in order.
func (b *Backend) Sweeps() []model.SweepRecord {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.sweeps)
}

// Toggles returns the recorded toggle changes in order.
func (b *Backend) Toggles() []model.ToggleRecord {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.toggles)
}
