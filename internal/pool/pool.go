// Package pool recycles damage-text display objects.
package pool

import (
	"sync"

	"github.com/sparroh/disablefloatingtext/internal/model"
)

// Options configures an ObjectPool.
type Options struct {
	// MaxSize bounds the number of idle objects kept. Zero means unbounded.
	MaxSize int
	// OnDestroy, if set, runs on objects dropped because the pool is full.
	OnDestroy func(model.TextObject)
}

// ObjectPool is a stack of idle text objects. The host creates the objects; the pool
// learns about them through Adopt and gets them back through Release.
type ObjectPool struct {
	mu       sync.Mutex
	opts     Options
	free     []model.TextObject
	idle     map[model.Handle]struct{}
	countAll int
}

// NewObjectPool creates an empty pool.
func NewObjectPool(opts Options) *ObjectPool {
	return &ObjectPool{
		opts: opts,
		free: make([]model.TextObject, 0),
		idle: make(map[model.Handle]struct{}),
	}
}

// Release returns obj to the pool. Releasing a handle that is already idle is ignored.
func (p *ObjectPool) Release(obj model.TextObject) {
	if obj == nil {
		return
	}

	p.mu.Lock()
	if _, dup := p.idle[obj.Handle()]; dup {
		p.mu.Unlock()
		return
	}
	if p.opts.MaxSize > 0 && len(p.free) >= p.opts.MaxSize {
		p.countAll--
		p.mu.Unlock()
		if p.opts.OnDestroy != nil {
			p.opts.OnDestroy(obj)
		}
		return
	}
	p.free = append(p.free, obj)
	p.idle[obj.Handle()] = struct{}{}
	p.mu.Unlock()
}

// Take removes the idle object with handle h and returns it, or nil when h is not idle.
// The host reuses handles, so a respawned handle must leave the idle set.
func (p *ObjectPool) Take(h model.Handle) model.TextObject {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.idle[h]; !ok {
		return nil
	}
	delete(p.idle, h)
	for i := len(p.free) - 1; i >= 0; i-- {
		if obj := p.free[i]; obj.Handle() == h {
			p.free = append(p.free[:i], p.free[i+1:]...)
			return obj
		}
	}
	return nil
}

// Adopt counts an object created outside the pool (by the host) as belonging to it.
func (p *ObjectPool) Adopt() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.countAll++
}

// Disown is the reverse of Adopt, for an object the host moved to another pool.
func (p *ObjectPool) Disown() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.countAll > 0 {
		p.countAll--
	}
}

// CountInactive returns the number of idle objects.
func (p *ObjectPool) CountInactive() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}

// CountAll returns the number of objects created or adopted and not destroyed.
func (p *ObjectPool) CountAll() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.countAll
}

// Drain removes and returns every idle object. Drained objects no longer count
// towards CountAll.
func (p *ObjectPool) Drain() []model.TextObject {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.free
	p.free = make([]model.TextObject, 0, cap(out))
	clear(p.idle)
	p.countAll -= len(out)
	if p.countAll < 0 {
		p.countAll = 0
	}
	return out
}

// Set is a collection of named pools, created on first use.
type Set struct {
	mu    sync.Mutex
	pools map[string]*ObjectPool
	opts  func(name string) Options
}

// NewSet creates a Set. opts builds the Options for a pool the first time its name is used.
func NewSet(opts func(name string) Options) *Set {
	return &Set{
		pools: make(map[string]*ObjectPool),
		opts:  opts,
	}
}

// Get returns the pool called name, creating it if needed. An empty name has no pool.
func (s *Set) Get(name string) *ObjectPool {
	if name == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pools[name]
	if !ok {
		var o Options
		if s.opts != nil {
			o = s.opts(name)
		}
		p = NewObjectPool(o)
		s.pools[name] = p
	}
	return p
}

// Drain empties every pool and returns how many idle objects were dropped.
func (s *Set) Drain() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.pools {
		n += len(p.Drain())
	}
	return n
}

// Status reports occupancy for every pool.
func (s *Set) Status() map[string]model.PoolStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]model.PoolStatus, len(s.pools))
	for name, p := range s.pools {
		out[name] = model.PoolStatus{Inactive: p.CountInactive(), All: p.CountAll()}
	}
	return out
}
