package pool

import (
	"log/slog"
	"sync/atomic"

	"github.com/sparroh/disablefloatingtext/internal/model"
)

// Outcome is what Reclaim did with an entry.
type Outcome int

const (
	// Skipped means the entry was already hidden; nothing changed.
	Skipped Outcome = iota
	// Recycled means the object was hidden and returned to its pool.
	Recycled
	// Orphaned means the object was hidden but has no pool to go back to.
	Orphaned
)

func (o Outcome) String() string {
	switch o {
	case Recycled:
		return "recycled"
	case Orphaned:
		return "orphaned"
	default:
		return "skipped"
	}
}

// Reclaimer hides entries and hands their objects back to the owning pool.
type Reclaimer struct {
	logger *slog.Logger

	recycled atomic.Uint64
	orphaned atomic.Uint64
	skipped  atomic.Uint64
}

// NewReclaimer creates a Reclaimer. A nil logger falls back to slog.Default.
func NewReclaimer(logger *slog.Logger) *Reclaimer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reclaimer{logger: logger}
}

// Reclaim deactivates e's object and releases it to e.Pool. Calling it again on the
// same entry is a no-op.
func (r *Reclaimer) Reclaim(e *model.Entry) Outcome {
	if !e.Active() {
		r.skipped.Add(1)
		return Skipped
	}

	e.Object.SetActive(false)

	if e.Pool == nil {
		r.orphaned.Add(1)
		r.logger.Debug("text hidden without pool", "handle", e.Object.Handle())
		return Orphaned
	}

	e.Pool.Release(e.Object)
	r.recycled.Add(1)
	return Recycled
}

// Counts returns how many reclaims ended in each outcome.
func (r *Reclaimer) Counts() (recycled, orphaned, skipped uint64) {
	return r.recycled.Load(), r.orphaned.Load(), r.skipped.Load()
}
