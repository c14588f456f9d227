package cache

import (
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultsCapacity(t *testing.T) {
	c := New[string, int](0)
	assert.Equal(t, DefaultCapacity, c.Capacity())
	assert.Equal(t, 0, c.Len())
}

func TestGetSet(t *testing.T) {
	c := New[string, int](4)
	c.Set("a", 1)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)

	c.Set("a", 2)
	v, _ = c.Get("a")
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.Len())
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[string, int](2)
	c.Set("a", 1)
	c.Set("b", 2)
	// a 变为最近使用，插入 c 时应淘汰 b
	_, _ = c.Get("a")
	c.Set("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok, "b should have been evicted")
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, uint64(1), c.Stats().Evictions)
}

func TestGetOrLoad(t *testing.T) {
	c := New[int, string](8)
	calls := 0
	load := func() (string, error) {
		calls++
		return "v", nil
	}
	for range 3 {
		v, err := c.GetOrLoad(1, load)
		require.NoError(t, err)
		assert.Equal(t, "v", v)
	}
	assert.Equal(t, 1, calls)

	boom := errors.New("boom")
	_, err := c.GetOrLoad(2, func() (string, error) { return "", boom })
	assert.ErrorIs(t, err, boom)
	_, ok := c.Get(2)
	assert.False(t, ok, "failed loads must not be cached")
}

func TestConcurrentAccess(t *testing.T) {
	c := New[string, int](64)
	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := range 500 {
				key := strconv.Itoa((g*31 + i) % 128)
				_, _ = c.GetOrLoad(key, func() (int, error) { return i, nil })
			}
		}(g)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 64)
	s := c.Stats()
	assert.Equal(t, uint64(8*500), s.Hits+s.Misses)
}
