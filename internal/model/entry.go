package model

import "sync/atomic"

// Handle is the host's opaque identity for a display object.
type Handle uint64

// TargetKind classifies the thing damage was dealt to.
type TargetKind uint8

const (
	KindNonPlayer TargetKind = iota
	KindPlayer
)

func (k TargetKind) String() string {
	if k == KindPlayer {
		return "player"
	}
	return "non-player"
}

// Target is the recipient of the damage a text reports.
type Target struct {
	Kind TargetKind
	// Class is the host's type label for the target, e.g. "Bug". Reported in verbose logs.
	Class string
}

// IsPlayer reports whether t is the privileged player classification.
// A nil target is not a player.
func (t *Target) IsPlayer() bool {
	return t != nil && t.Kind == KindPlayer
}

// Label returns the classification label, falling back to the kind.
func (t *Target) Label() string {
	if t == nil {
		return "Unknown"
	}
	if t.Class != "" {
		return t.Class
	}
	return t.Kind.String()
}

// TextObject is the display object behind an entry.
type TextObject interface {
	Handle() Handle
	Active() bool
	SetActive(active bool)
}

// Pool is the backing pool a text object was taken from.
type Pool interface {
	Release(obj TextObject)
}

// Entry is one tracked damage text.
// Identity is the pointer, not the handle.
type Entry struct {
	Object TextObject
	Target *Target
	// Pool is nil when the host did not say where the object came from.
	Pool Pool
}

// NewEntry builds an entry for obj spawned against target.
func NewEntry(obj TextObject, target *Target, pool Pool) *Entry {
	return &Entry{Object: obj, Target: target, Pool: pool}
}

// Active reports whether the entry is currently displayed.
func (e *Entry) Active() bool {
	return e != nil && e.Object != nil && e.Object.Active()
}

// SweepResult is the outcome of one sweep pass.
type SweepResult struct {
	ClearedCount int
	// ClearedTotal is the toggle's cumulative counter after the pass.
	ClearedTotal uint64
	// ClearedTypes holds one target label per cleared entry, only in verbose mode.
	ClearedTypes []string
}

// Text is an in-process TextObject. The host bridge uses it to mirror host-side objects.
type Text struct {
	handle Handle
	active atomic.Bool
}

// NewText returns an active text with the given handle.
func NewText(h Handle) *Text {
	t := &Text{handle: h}
	t.active.Store(true)
	return t
}

func (t *Text) Handle() Handle { return t.handle }

func (t *Text) Active() bool { return t.active.Load() }

func (t *Text) SetActive(active bool) { t.active.Store(active) }
