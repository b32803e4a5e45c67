// Package gormstorage implements the storage.Backend interface over GORM with
// queue-based batch writes. The same backend serves SQLite and PostgreSQL.
package gormstorage

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/sparroh/disablefloatingtext/internal/database"
	"github.com/sparroh/disablefloatingtext/internal/model"
	"github.com/sparroh/disablefloatingtext/internal/queue"
)

const defaultFlushInterval = 2 * time.Second

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB     *gorm.DB
	Logger zerolog.Logger
	// Version is stored on the session row.
	Version string
	// FlushInterval is how often queued rows are written. Defaults to 2s.
	FlushInterval time.Duration
	// QueueLimit caps each queue; 0 means unbounded.
	QueueLimit int
	// DumpPath, when set on an in-memory SQLite DB, receives a VACUUM INTO copy on Close.
	DumpPath string
}

// Backend implements storage.Backend using GORM.
type Backend struct {
	deps      Dependencies
	sweeps    *queue.Queue[model.SweepRecord]
	toggles   *queue.Queue[model.ToggleRecord]
	sessionID uint

	flushMu  sync.Mutex
	stopChan chan struct{}
	done     chan struct{}
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.FlushInterval <= 0 {
		deps.FlushInterval = defaultFlushInterval
	}
	return &Backend{
		deps:    deps,
		sweeps:  queue.New[model.SweepRecord](deps.QueueLimit),
		toggles: queue.New[model.ToggleRecord](deps.QueueLimit),
	}
}

// Init migrates the schema, opens a session row and starts the writer goroutine.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return errors.New("gormstorage: no database")
	}

	b.deps.Logger.Info().Msg("Migrating schema")
	if err := database.Migrate(b.deps.DB); err != nil {
		return err
	}

	session := model.Session{
		StartTime:        time.Now().UTC(),
		ExtensionVersion: b.deps.Version,
	}
	if err := b.deps.DB.Create(&session).Error; err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	b.sessionID = session.ID

	b.stopChan = make(chan struct{})
	b.done = make(chan struct{})
	go b.writeLoop()

	b.deps.Logger.Info().Uint("session", b.sessionID).Msg("Database setup complete")
	return nil
}

// SessionID returns the session row created by Init.
func (b *Backend) SessionID() uint {
	return b.sessionID
}

// RecordSweep queues r for the next batch write.
func (b *Backend) RecordSweep(r *model.SweepRecord) error {
	if b.sweeps.Push(*r) == 0 {
		return errors.New("sweep queue full")
	}
	return nil
}

// RecordToggle queues r for the next batch write.
func (b *Backend) RecordToggle(r *model.ToggleRecord) error {
	if b.toggles.Push(*r) == 0 {
		return errors.New("toggle queue full")
	}
	return nil
}

// Flush writes everything queued so far.
func (b *Backend) Flush() error {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	var errs []error

	if sweeps := b.sweeps.GetAndEmpty(); len(sweeps) > 0 {
		for i := range sweeps {
			sweeps[i].SessionID = b.sessionID
		}
		if err := b.deps.DB.Omit("Session").Create(&sweeps).Error; err != nil {
			errs = append(errs, fmt.Errorf("writing %d sweep records: %w", len(sweeps), err))
		}
	}

	if toggles := b.toggles.GetAndEmpty(); len(toggles) > 0 {
		for i := range toggles {
			toggles[i].SessionID = b.sessionID
		}
		if err := b.deps.DB.Omit("Session").Create(&toggles).Error; err != nil {
			errs = append(errs, fmt.Errorf("writing %d toggle records: %w", len(toggles), err))
		}
	}

	return errors.Join(errs...)
}

// Close stops the writer, writes what is left and dumps an in-memory DB when configured.
func (b *Backend) Close() error {
	if b.stopChan == nil {
		return nil
	}
	close(b.stopChan)
	<-b.done
	b.stopChan = nil

	err := b.Flush()
	if dropped := b.sweeps.Dropped() + b.toggles.Dropped(); dropped > 0 {
		b.deps.Logger.Warn().Uint64("dropped", dropped).Msg("Statistics rows dropped on full queue")
	}

	if b.deps.DumpPath != "" {
		err = errors.Join(err, database.DumpMemoryDBToDisk(b.deps.DB, b.deps.DumpPath, b.deps.Logger))
	}
	return err
}

func (b *Backend) writeLoop() {
	defer close(b.done)

	ticker := time.NewTicker(b.deps.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			if err := b.Flush(); err != nil {
				b.deps.Logger.Error().Err(err).Msg("Failed to write statistics")
			}
		}
	}
}
