package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sparroh/disablefloatingtext/internal/model"
)

func TestObjectPool_ReleaseThenTake(t *testing.T) {
	p := NewObjectPool(Options{})
	p.Adopt()

	txt := model.NewText(9)
	p.Release(txt)
	assert.Equal(t, 1, p.CountInactive())

	assert.Same(t, txt, p.Take(9))
	assert.Equal(t, 0, p.CountInactive())
	assert.Equal(t, 1, p.CountAll())
}

func TestObjectPool_DoubleReleaseIgnored(t *testing.T) {
	p := NewObjectPool(Options{})

	txt := model.NewText(1)
	p.Release(txt)
	p.Release(txt)
	p.Release(nil)

	assert.Equal(t, 1, p.CountInactive())
}

func TestObjectPool_MaxSizeDestroysOverflow(t *testing.T) {
	var destroyed []model.Handle
	p := NewObjectPool(Options{
		MaxSize:   1,
		OnDestroy: func(o model.TextObject) { destroyed = append(destroyed, o.Handle()) },
	})
	p.Adopt()
	p.Adopt()

	p.Release(model.NewText(1))
	p.Release(model.NewText(2))

	assert.Equal(t, 1, p.CountInactive())
	assert.Equal(t, 1, p.CountAll())
	assert.Equal(t, []model.Handle{2}, destroyed)
}

func TestObjectPool_Drain(t *testing.T) {
	p := NewObjectPool(Options{})
	p.Adopt()
	p.Adopt()
	p.Adopt()
	p.Release(model.NewText(1))
	p.Release(model.NewText(2))

	out := p.Drain()
	assert.Len(t, out, 2)
	assert.Equal(t, 0, p.CountInactive())
	assert.Equal(t, 1, p.CountAll(), "the shown object still counts")

	// drained handles can be released again
	p.Release(out[0])
	assert.Equal(t, 1, p.CountInactive())
}

func TestObjectPool_Take(t *testing.T) {
	p := NewObjectPool(Options{})
	p.Adopt()
	p.Adopt()
	a, b := model.NewText(1), model.NewText(2)
	p.Release(a)
	p.Release(b)

	assert.Nil(t, p.Take(3))
	assert.Same(t, a, p.Take(1))
	assert.Nil(t, p.Take(1))
	assert.Equal(t, 1, p.CountInactive())
	assert.Equal(t, 2, p.CountAll())

	// a taken handle can be released again
	p.Release(a)
	assert.Equal(t, 2, p.CountInactive())
}

func TestSet_GetCreatesOnce(t *testing.T) {
	created := map[string]int{}
	s := NewSet(func(name string) Options {
		created[name]++
		return Options{}
	})

	a := s.Get("damage")
	b := s.Get("damage")
	c := s.Get("crit")

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Nil(t, s.Get(""))
	assert.Equal(t, map[string]int{"damage": 1, "crit": 1}, created)
}

func TestObjectPool_Disown(t *testing.T) {
	p := NewObjectPool(Options{})
	p.Adopt()
	p.Disown()
	p.Disown()
	assert.Equal(t, 0, p.CountAll())
}

func TestSet_Drain(t *testing.T) {
	s := NewSet(nil)
	a, b := s.Get("damage"), s.Get("crit")
	a.Adopt()
	b.Adopt()
	a.Release(model.NewText(1))
	b.Release(model.NewText(2))

	assert.Equal(t, 2, s.Drain())
	assert.Equal(t, map[string]model.PoolStatus{
		"damage": {Inactive: 0, All: 0},
		"crit":   {Inactive: 0, All: 0},
	}, s.Status())
}

func TestSet_Status(t *testing.T) {
	s := NewSet(nil)
	p := s.Get("damage")
	p.Adopt()
	p.Release(model.NewText(1))

	assert.Equal(t, map[string]model.PoolStatus{
		"damage": {Inactive: 1, All: 1},
	}, s.Status())
}
