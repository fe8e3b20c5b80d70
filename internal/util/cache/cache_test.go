package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func TestTTL_GetSetExpire(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{t: time.Unix(1000, 0)}
	c := New[string, int](time.Minute, WithClock[string, int](clock.now))

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("a", 1)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	clock.t = clock.t.Add(59 * time.Second)
	_, ok = c.Get("a")
	assert.True(t, ok)

	clock.t = clock.t.Add(time.Second)
	_, ok = c.Get("a")
	assert.False(t, ok, "entry should expire at the TTL boundary")
}

func TestTTL_InvalidateAndReset(t *testing.T) {
	t.Parallel()
	c := New[string, string](time.Hour)
	c.Set("a", "x")
	c.Set("b", "y")

	c.Invalidate("a")
	_, ok := c.Get("a")
	assert.False(t, ok)
	_, ok = c.Get("b")
	assert.True(t, ok)

	c.Reset()
	_, ok = c.Get("b")
	assert.False(t, ok)
}
