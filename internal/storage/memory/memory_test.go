package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparroh/disablefloatingtext/internal/model"
)

func TestBackend_Records(t *testing.T) {
	b := New()
	require.NoError(t, b.Init())

	s1 := &model.SweepRecord{ClearedCount: 2, ClearedTotal: 2}
	s2 := &model.SweepRecord{ClearedCount: 1, ClearedTotal: 3}
	tg := &model.ToggleRecord{Enabled: false, Source: "manual"}

	require.NoError(t, b.RecordSweep(s1))
	require.NoError(t, b.RecordToggle(tg))
	require.NoError(t, b.RecordSweep(s2))

	assert.Equal(t, uint(1), s1.ID)
	assert.Equal(t, uint(2), tg.ID)
	assert.Equal(t, uint(3), s2.ID)

	sweeps := b.Sweeps()
	require.Len(t, sweeps, 2)
	assert.Equal(t, uint64(3), sweeps[1].ClearedTotal)

	toggles := b.Toggles()
	require.Len(t, toggles, 1)
	assert.Equal(t, "manual", toggles[0].Source)

	require.NoError(t, b.Close())
}

func TestBackend_SnapshotsAreCopies(t *testing.T) {
	b := New()
	require.NoError(t, b.RecordSweep(&model.SweepRecord{ClearedCount: 1}))

	sweeps := b.Sweeps()
	sweeps[0].ClearedCount = 99

	assert.Equal(t, 1, b.Sweeps()[0].ClearedCount)
}
