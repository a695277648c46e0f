package tokencache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetMissAndHit(t *testing.T) {
	c := New(10, time.Minute)

	_, ok := c.Get("u1")
	assert.False(t, ok)

	c.Set("u1", Entry{Provider: "gmail", Email: "a@b.c", AccessToken: "tok"})
	got, ok := c.Get("u1")
	assert.True(t, ok)
	assert.Equal(t, "tok", got.AccessToken)
}

func TestInvalidateRemovesEntry(t *testing.T) {
	c := New(10, time.Minute)
	c.Set("u1", Entry{AccessToken: "tok"})

	c.Invalidate("u1")
	_, ok := c.Get("u1")
	assert.False(t, ok)
}

func TestExpiredEntryIsDropped(t *testing.T) {
	c := New(10, time.Minute)
	base := time.Now()
	c.now = func() time.Time { return base }

	c.Set("u1", Entry{AccessToken: "tok"})

	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	_, ok := c.Get("u1")
	assert.False(t, ok)
}

func TestBoundedEviction(t *testing.T) {
	c := New(3, time.Minute)
	base := time.Now()
	tick := 0
	c.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	for i := 0; i < 4; i++ {
		c.Set(fmt.Sprintf("u%d", i), Entry{AccessToken: fmt.Sprintf("tok%d", i)})
	}

	// The earliest entry was evicted to make room.
	_, ok := c.Get("u0")
	assert.False(t, ok)
	_, ok = c.Get("u3")
	assert.True(t, ok)
}
