package storage

import (
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"gorm.io/datatypes"

	"github.com/sparroh/disablefloatingtext/internal/model"
	"github.com/sparroh/disablefloatingtext/internal/toggle"
)

// Recorder feeds sweep and toggle events into a Backend from a single writer goroutine.
// Events are dropped when the buffer is full so the host thread never blocks on storage.
type Recorder struct {
	backend Backend
	logger  *slog.Logger
	now     func() time.Time

	mu      sync.RWMutex
	closed  bool
	events  chan func() error
	done    chan struct{}
	dropped atomic.Uint64
}

// NewRecorder starts the writer goroutine. bufferSize <= 0 uses 256.
func NewRecorder(backend Backend, bufferSize int, logger *slog.Logger) *Recorder {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	if logger == nil {
		logger = slog.Default()
	}
	r := &Recorder{
		backend: backend,
		logger:  logger,
		now:     time.Now,
		events:  make(chan func() error, bufferSize),
		done:    make(chan struct{}),
	}
	go r.run()
	return r
}

// ObserveSweep records a sweep summary.
func (r *Recorder) ObserveSweep(res model.SweepResult, remaining int) {
	rec := &model.SweepRecord{
		Time:         r.now().UTC(),
		ClearedCount: res.ClearedCount,
		ClearedTotal: res.ClearedTotal,
		RegistrySize: remaining,
	}
	if len(res.ClearedTypes) > 0 {
		if types, err := json.Marshal(res.ClearedTypes); err == nil {
			rec.ClearedTypes = datatypes.JSON(types)
		}
	}
	r.enqueue(func() error { return r.backend.RecordSweep(rec) })
}

// ObserveToggle records a toggle change.
func (r *Recorder) ObserveToggle(c toggle.Change) {
	rec := &model.ToggleRecord{
		Time:    r.now().UTC(),
		Enabled: c.Enabled,
		Source:  string(c.Source),
	}
	r.enqueue(func() error { return r.backend.RecordToggle(rec) })
}

// Dropped returns how many events were discarded on a full buffer.
func (r *Recorder) Dropped() uint64 {
	return r.dropped.Load()
}

// Close drains pending events and closes the backend.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.events)
	r.mu.Unlock()

	<-r.done
	return r.backend.Close()
}

func (r *Recorder) enqueue(write func() error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.dropped.Add(1)
		return
	}
	select {
	case r.events <- write:
	default:
		r.dropped.Add(1)
		r.logger.Warn("statistics buffer full, dropping event")
	}
}

func (r *Recorder) run() {
	defer close(r.done)
	for write := range r.events {
		if err := write(); err != nil {
			r.logger.Error("failed to record statistics", "error", err)
		}
	}
}
