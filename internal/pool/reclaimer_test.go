package pool

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sparroh/disablefloatingtext/internal/model"
)

func TestReclaim_Recycles(t *testing.T) {
	r := NewReclaimer(nil)
	p := NewObjectPool(Options{})
	txt := model.NewText(1)
	e := model.NewEntry(txt, &model.Target{Class: "Bug"}, p)

	assert.Equal(t, Recycled, r.Reclaim(e))
	assert.False(t, txt.Active())
	assert.Equal(t, 1, p.CountInactive())
}

func TestReclaim_OrphanStillHides(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	r := NewReclaimer(logger)

	txt := model.NewText(2)
	e := model.NewEntry(txt, &model.Target{Class: "Bug"}, nil)

	assert.Equal(t, Orphaned, r.Reclaim(e))
	assert.False(t, txt.Active())
	assert.Contains(t, buf.String(), "text hidden without pool")
	assert.Contains(t, buf.String(), "level=DEBUG")
}

func TestReclaim_Idempotent(t *testing.T) {
	r := NewReclaimer(nil)
	p := NewObjectPool(Options{})
	e := model.NewEntry(model.NewText(3), nil, p)

	assert.Equal(t, Recycled, r.Reclaim(e))
	assert.Equal(t, Skipped, r.Reclaim(e))
	assert.Equal(t, Skipped, r.Reclaim(nil))
	assert.Equal(t, 1, p.CountInactive())

	recycled, orphaned, skipped := r.Counts()
	assert.Equal(t, uint64(1), recycled)
	assert.Equal(t, uint64(0), orphaned)
	assert.Equal(t, uint64(2), skipped)
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "recycled", Recycled.String())
	assert.Equal(t, "orphaned", Orphaned.String())
	assert.Equal(t, "skipped", Skipped.String())
}
