package toggle

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultsToEnabled(t *testing.T) {
	s := New()
	assert.True(t, s.IsEnabled())
	assert.Equal(t, uint64(0), s.ClearedTotal())
}

func TestSetFromConfig_KeepsClearedTotal(t *testing.T) {
	s := New()
	s.SetFromConfig(false)
	s.AddCleared(4)

	s.SetFromConfig(true)
	assert.True(t, s.IsEnabled())
	assert.Equal(t, uint64(4), s.ClearedTotal())

	s.SetFromConfig(false)
	assert.False(t, s.IsEnabled())
	assert.Equal(t, uint64(4), s.ClearedTotal())
}

func TestManualToggle_FlipsAndResets(t *testing.T) {
	s := New()

	assert.False(t, s.ManualToggle())
	assert.False(t, s.IsEnabled())

	s.AddCleared(3)
	require.Equal(t, uint64(3), s.ClearedTotal())

	assert.True(t, s.ManualToggle())
	assert.True(t, s.IsEnabled())
	assert.Equal(t, uint64(0), s.ClearedTotal())
}

func TestLastWriterWins(t *testing.T) {
	s := New()
	s.ManualToggle() // disabled
	s.SetFromConfig(true)
	assert.True(t, s.IsEnabled())

	s.SetFromConfig(true)
	s.ManualToggle()
	assert.False(t, s.IsEnabled())
}

func TestAddCleared_ReturnsTotal(t *testing.T) {
	s := New()
	assert.Equal(t, uint64(1), s.AddCleared(1))
	assert.Equal(t, uint64(6), s.AddCleared(5))
}

func TestOnChange_ReceivesSource(t *testing.T) {
	s := New()
	var got []Change
	s.OnChange(func(c Change) { got = append(got, c) })
	s.OnChange(nil)

	s.SetFromConfig(false)
	s.AddCleared(2)
	s.ManualToggle()

	require.Len(t, got, 2)
	assert.Equal(t, Change{Enabled: false, Source: SourceConfig}, got[0])
	assert.Equal(t, Change{Enabled: true, Source: SourceManual}, got[1])
}

func TestConcurrentWriters(t *testing.T) {
	s := New()
	s.SetFromConfig(false)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.AddCleared(1)
		}()
		go func() {
			defer wg.Done()
			_ = s.IsEnabled()
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(50), s.ClearedTotal())
}
