package queue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testItem struct {
	ID   int
	Name string
}

func TestQueue_New(t *testing.T) {
	q := New[testItem](0)
	require.NotNil(t, q)
	assert.True(t, q.Empty())
	assert.Equal(t, 0, q.Len())
}

func TestQueue_PushUnbounded(t *testing.T) {
	q := New[testItem](0)

	assert.Equal(t, 1, q.Push(testItem{ID: 1, Name: "first"}))
	assert.Equal(t, 2, q.Push(testItem{ID: 2}, testItem{ID: 3}))
	assert.Equal(t, 3, q.Len())
	assert.Zero(t, q.Dropped())
}

func TestQueue_PushLimit(t *testing.T) {
	q := New[testItem](2)

	assert.Equal(t, 1, q.Push(testItem{ID: 1}))
	assert.Equal(t, 1, q.Push(testItem{ID: 2}, testItem{ID: 3}))
	assert.Equal(t, 0, q.Push(testItem{ID: 4}))
	assert.Equal(t, 2, q.Len())
	assert.Equal(t, uint64(2), q.Dropped())

	// draining frees room again
	q.GetAndEmpty()
	assert.Equal(t, 1, q.Push(testItem{ID: 5}))
}

func TestQueue_GetAndEmpty(t *testing.T) {
	q := New[testItem](0)
	q.Push(testItem{ID: 1}, testItem{ID: 2})

	items := q.GetAndEmpty()
	assert.Equal(t, []testItem{{ID: 1}, {ID: 2}}, items)
	assert.True(t, q.Empty())

	// returned slice is independent of later pushes
	q.Push(testItem{ID: 3})
	assert.Equal(t, 1, items[0].ID)
	assert.Len(t, items, 2)
}

func TestQueue_ConcurrentPush(t *testing.T) {
	q := New[int](0)
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Push(i)
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, q.Len())
}
