// Package sweep walks the active texts and reclaims the ones the toggle hides.
package sweep

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/sparroh/disablefloatingtext/internal/model"
	"github.com/sparroh/disablefloatingtext/internal/pool"
	"github.com/sparroh/disablefloatingtext/internal/registry"
	"github.com/sparroh/disablefloatingtext/internal/throttle"
	"github.com/sparroh/disablefloatingtext/internal/toggle"
	"github.com/sparroh/disablefloatingtext/internal/visibility"
)

// Observer is told about every sweep that cleared something.
// remaining is the registry size after the pass.
type Observer interface {
	ObserveSweep(res model.SweepResult, remaining int)
}

// Dependencies holds everything a Sweeper needs.
type Dependencies struct {
	Registry  *registry.Registry
	Toggle    *toggle.State
	Reclaimer *pool.Reclaimer
	Reporter  *throttle.Reporter
	// Now defaults to time.Now.
	Now func() time.Time
	// Meter defaults to the global OTel meter.
	Meter metric.Meter
}

// Sweeper runs sweep passes. The per-frame tick and the post-damage call share Sweep.
type Sweeper struct {
	deps Dependencies
	now  func() time.Time

	// serializes passes from the frame tick and damage callbacks
	mu        sync.Mutex
	observers []Observer

	cleared  metric.Int64Counter
	orphaned metric.Int64Counter
	size     metric.Int64ObservableGauge
}

// New creates a Sweeper and registers its metrics.
func New(deps Dependencies) (*Sweeper, error) {
	if deps.Registry == nil || deps.Toggle == nil || deps.Reclaimer == nil || deps.Reporter == nil {
		return nil, fmt.Errorf("sweep: registry, toggle, reclaimer and reporter are required")
	}

	s := &Sweeper{deps: deps, now: deps.Now}
	if s.now == nil {
		s.now = time.Now
	}

	m := deps.Meter
	if m == nil {
		m = meter()
	}

	var err error

	s.cleared, err = m.Int64Counter(
		"damagetext.entries.cleared",
		metric.WithDescription("Damage texts hidden by sweeps"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating cleared counter: %w", err)
	}

	s.orphaned, err = m.Int64Counter(
		"damagetext.entries.orphaned",
		metric.WithDescription("Damage texts hidden without a pool to return to"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating orphaned counter: %w", err)
	}

	s.size, err = m.Int64ObservableGauge(
		"damagetext.registry.size",
		metric.WithDescription("Damage texts currently tracked as active"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating registry size gauge: %w", err)
	}

	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			o.ObserveInt64(s.size, int64(deps.Registry.Count()))
			return nil
		},
		s.size,
	)
	if err != nil {
		return nil, fmt.Errorf("registering registry size callback: %w", err)
	}

	return s, nil
}

// AddObserver registers o for sweeps that cleared at least one text.
func (s *Sweeper) AddObserver(o Observer) {
	if o == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// Tick is the per-frame sweep.
func (s *Sweeper) Tick() model.SweepResult {
	return s.Sweep()
}

// OnDamage runs right after the host resolves damage, so a text spawned for a hidden
// target never survives to the next frame.
func (s *Sweeper) OnDamage(target *model.Target) model.SweepResult {
	if target == nil || target.IsPlayer() || s.deps.Toggle.IsEnabled() {
		return model.SweepResult{}
	}
	return s.Sweep()
}

// Sweep hides every eligible text, returns it to its pool and drops it from the registry.
func (s *Sweeper) Sweep() model.SweepResult {
	if s.deps.Toggle.IsEnabled() || s.deps.Registry.Count() == 0 {
		return model.SweepResult{}
	}

	res, orphaned, observers := s.pass()
	if res.ClearedCount == 0 {
		return res
	}

	ctx := context.Background()
	s.cleared.Add(ctx, int64(res.ClearedCount))
	if orphaned > 0 {
		s.orphaned.Add(ctx, int64(orphaned))
	}

	s.deps.Reporter.Report(res, s.now())

	remaining := s.deps.Registry.Count()
	for _, o := range observers {
		o.ObserveSweep(res, remaining)
	}
	return res
}

func (s *Sweeper) pass() (res model.SweepResult, orphaned int, observers []Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	verbose := s.deps.Reporter.Verbose()
	s.deps.Registry.Reap(func(e *model.Entry) bool {
		if !visibility.ShouldHide(e, s.deps.Toggle) {
			return false
		}
		if s.deps.Reclaimer.Reclaim(e) == pool.Orphaned {
			orphaned++
		}
		res.ClearedCount++
		res.ClearedTotal = s.deps.Toggle.AddCleared(1)
		if verbose {
			res.ClearedTypes = append(res.ClearedTypes, e.Target.Label())
		}
		return true
	})
	return res, orphaned, s.observers
}
