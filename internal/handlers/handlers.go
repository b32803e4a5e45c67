// Package handlers turns host commands into registry, sweep and toggle operations.
package handlers

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/sparroh/disablefloatingtext/internal/dispatcher"
	"github.com/sparroh/disablefloatingtext/internal/model"
	"github.com/sparroh/disablefloatingtext/internal/monitor"
	"github.com/sparroh/disablefloatingtext/internal/pool"
	"github.com/sparroh/disablefloatingtext/internal/registry"
	"github.com/sparroh/disablefloatingtext/internal/sweep"
	"github.com/sparroh/disablefloatingtext/internal/toggle"
	"github.com/sparroh/disablefloatingtext/internal/util"
)

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Registry         *registry.Registry
	Toggle           *toggle.State
	Sweeper          *sweep.Sweeper
	Pools            *pool.Set
	Monitor          *monitor.Service
	Logger           *slog.Logger
	ExtensionVersion string
	BuildDate        string
}

// Service mirrors the host's live damage texts and answers its commands.
type Service struct {
	deps Dependencies

	mu sync.Mutex
	// latest entry per handle; the registry itself tolerates duplicates
	live map[model.Handle]*model.Entry
}

// NewService creates a new handler service
func NewService(deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Service{
		deps: deps,
		live: make(map[model.Handle]*model.Entry),
	}
}

// Register adds every command handler to d.
func (s *Service) Register(d *dispatcher.Dispatcher) {
	d.Register(":VERSION:", func(e dispatcher.Event) (any, error) {
		return []string{s.deps.ExtensionVersion, s.deps.BuildDate}, nil
	})
	d.Register(":SPAWN:", s.handleSpawn)
	d.Register(":DAMAGE:", s.handleDamage)
	d.Register(":FRAME:", s.handleFrame)
	d.Register(":TOGGLE:", s.handleToggle, dispatcher.Logged())
	d.Register(":RECYCLE:", s.handleRecycle)
	d.Register(":STATUS:", s.handleStatus, dispatcher.Logged())
}

// Spawn registers a text the host just showed. An empty class means the target is
// unknown; an empty pool name means the text is not pooled. The host reuses handles:
// an entry still tracked for h is replaced, so at most one entry per handle exists.
func (s *Service) Spawn(h model.Handle, class string, isPlayer bool, poolName string) *model.Entry {
	var target *model.Target
	if class != "" {
		kind := model.KindNonPlayer
		if isPlayer {
			kind = model.KindPlayer
		}
		target = &model.Target{Kind: kind, Class: class}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var obj model.TextObject
	var owner model.Pool
	p := s.deps.Pools.Get(poolName)
	if p != nil {
		owner = p
	}

	if old, ok := s.live[h]; ok {
		s.deps.Registry.Remove(old)
		delete(s.live, h)
		if old.Active() {
			// shown again without a :RECYCLE:; the object moves to the new entry
			obj = old.Object
			if old.Pool != owner {
				if prev, ok := old.Pool.(*pool.ObjectPool); ok {
					prev.Disown()
				}
				if p != nil {
					p.Adopt()
				}
			}
		}
	}

	if obj == nil && p != nil {
		obj = p.Take(h)
		if obj == nil {
			p.Adopt()
		}
	}
	if obj == nil {
		obj = model.NewText(h)
	}
	obj.SetActive(true)

	e := model.NewEntry(obj, target, owner)
	s.deps.Registry.Add(e)
	s.live[h] = e
	return e
}

// Recycle handles a text the host put away on its own.
func (s *Service) Recycle(h model.Handle) bool {
	s.mu.Lock()
	e, ok := s.live[h]
	delete(s.live, h)
	s.mu.Unlock()
	if !ok {
		return false
	}

	if e.Active() {
		e.Object.SetActive(false)
		if e.Pool != nil {
			e.Pool.Release(e.Object)
		}
	}
	s.deps.Registry.Remove(e)
	s.deps.Registry.Prune()
	return true
}

// Reset forgets every tracked text and empties the pools. Used at shutdown.
func (s *Service) Reset() (entries, idle int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries = s.deps.Registry.Count()
	s.deps.Registry.Clear()
	clear(s.live)
	idle = s.deps.Pools.Drain()
	return entries, idle
}

// Sweep runs fn and returns the handles it hid. Only the current entry of a handle
// is reported, so a handle respawned mid-sweep is never hidden by its old entry.
func (s *Service) Sweep(fn func() model.SweepResult) []model.Handle {
	before := s.deps.Registry.Snapshot()
	active := make([]bool, len(before))
	for i, e := range before {
		active[i] = e.Active()
	}

	if res := fn(); res.ClearedCount == 0 {
		return []model.Handle{}
	}

	hidden := make([]model.Handle, 0)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range before {
		if !active[i] || e.Active() {
			continue
		}
		h := e.Object.Handle()
		if s.live[h] != e {
			continue
		}
		hidden = append(hidden, h)
		delete(s.live, h)
	}
	return hidden
}

func (s *Service) handleSpawn(e dispatcher.Event) (any, error) {
	if len(e.Args) < 2 {
		return nil, fmt.Errorf("expected at least handle and target class; got %d args", len(e.Args))
	}
	args := util.CleanArgs(e.Args)

	h, err := util.ParseHandle(args[0])
	if err != nil {
		return nil, err
	}
	isPlayer := false
	if len(args) > 2 {
		if isPlayer, err = util.ParseBool(args[2]); err != nil {
			return nil, err
		}
	}
	poolName := ""
	if len(args) > 3 {
		poolName = args[3]
	}

	s.Spawn(h, args[1], isPlayer, poolName)
	return "ok", nil
}

func (s *Service) handleDamage(e dispatcher.Event) (any, error) {
	args := util.CleanArgs(e.Args)

	var target *model.Target
	if len(args) > 0 && args[0] != "" {
		target = &model.Target{Kind: model.KindNonPlayer, Class: args[0]}
		if len(args) > 1 {
			isPlayer, err := util.ParseBool(args[1])
			if err != nil {
				return nil, err
			}
			if isPlayer {
				target.Kind = model.KindPlayer
			}
		}
	}

	return s.Sweep(func() model.SweepResult {
		return s.deps.Sweeper.OnDamage(target)
	}), nil
}

func (s *Service) handleFrame(dispatcher.Event) (any, error) {
	return s.Sweep(s.deps.Sweeper.Tick), nil
}

func (s *Service) handleToggle(dispatcher.Event) (any, error) {
	enabled := s.deps.Toggle.ManualToggle()
	s.deps.Logger.Info("Enemy damage text toggled", "enabled", enabled)
	return enabled, nil
}

func (s *Service) handleRecycle(e dispatcher.Event) (any, error) {
	if len(e.Args) < 1 {
		return nil, fmt.Errorf("expected handle")
	}
	h, err := util.ParseHandle(util.CleanArg(e.Args[0]))
	if err != nil {
		return nil, err
	}
	if !s.Recycle(h) {
		s.deps.Logger.Debug("recycle for unknown handle", "handle", h)
	}
	return "ok", nil
}

func (s *Service) handleStatus(dispatcher.Event) (any, error) {
	if s.deps.Monitor == nil {
		return nil, fmt.Errorf("status monitor not available")
	}
	return s.deps.Monitor.Status(), nil
}
