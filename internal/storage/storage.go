// Package storage keeps sweep and toggle statistics.
package storage

import "github.com/sparroh/disablefloatingtext/internal/model"

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Recording
	RecordSweep(r *model.SweepRecord) error
	RecordToggle(r *model.ToggleRecord) error
}

// SessionBackend is a Backend that stores rows against a session it opened in Init.
type SessionBackend interface {
	Backend
	SessionID() uint
}
