// Package monitor reports what the extension is currently tracking.
package monitor

import (
	"encoding/json"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/sparroh/disablefloatingtext/internal/model"
	"github.com/sparroh/disablefloatingtext/internal/pool"
	"github.com/sparroh/disablefloatingtext/internal/registry"
	"github.com/sparroh/disablefloatingtext/internal/toggle"
)

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	Toggle    *toggle.State
	Registry  *registry.Registry
	Pools     *pool.Set
	Reclaimer *pool.Reclaimer
	Logger    *slog.Logger
	// StatusFile is rewritten with the latest status while the monitor runs.
	StatusFile string
	// Interval between status file writes. Defaults to 1s.
	Interval time.Duration
	Now      func() time.Time
}

// Service manages status monitoring
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
	done      chan struct{}
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Interval <= 0 {
		deps.Interval = time.Second
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Service{deps: deps}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Status returns the current status.
func (s *Service) Status() model.Status {
	st := model.Status{
		Time:  s.deps.Now().UTC(),
		Pools: map[string]model.PoolStatus{},
	}
	if s.deps.Toggle != nil {
		st.Enabled = s.deps.Toggle.IsEnabled()
		st.ClearedTotal = s.deps.Toggle.ClearedTotal()
	}
	if s.deps.Registry != nil {
		st.RegistrySize = s.deps.Registry.Count()
	}
	if s.deps.Pools != nil {
		st.Pools = s.deps.Pools.Status()
	}
	if s.deps.Reclaimer != nil {
		st.Recycled, st.Orphaned, st.Skipped = s.deps.Reclaimer.Counts()
	}
	return st
}

// Start starts the status monitor goroutine. It is a no-op without a StatusFile.
func (s *Service) Start() error {
	if s.deps.StatusFile == "" {
		return nil
	}

	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stopChan, s.done
	s.mu.Unlock()

	go func() {
		defer close(done)
		defer func() {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
		}()

		logger := s.deps.Logger
		logger.Debug("Starting status monitor goroutine", "file", s.deps.StatusFile)

		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if err := s.WriteStatusFile(); err != nil {
					logger.Error("Error writing status file", "error", err)
				}
			}
		}
	}()

	return nil
}

// WriteStatusFile writes the current status as indented JSON.
func (s *Service) WriteStatusFile() error {
	b, err := json.MarshalIndent(s.Status(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.deps.StatusFile, append(b, '\n'), 0644)
}

// Stop stops the status monitor and waits for it to exit.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning || s.stopChan == nil {
		s.mu.Unlock()
		return
	}
	close(s.stopChan)
	s.stopChan = nil
	done := s.done
	s.mu.Unlock()
	<-done
}
