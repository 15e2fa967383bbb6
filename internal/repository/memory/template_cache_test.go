package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	t time.Time
}

func (f *fakeClock) Now() time.Time { return f.t }

func TestTemplateCache_TTL(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := NewTemplateCache(5*time.Minute, clock.Now)

	c.Set("company-a:shipping_response", "hello")

	v, ok := c.Get("company-a:shipping_response")
	assert.True(t, ok)
	assert.Equal(t, "hello", v)

	clock.t = clock.t.Add(4*time.Minute + 59*time.Second)
	_, ok = c.Get("company-a:shipping_response")
	assert.True(t, ok, "entry should still be fresh just before the TTL")

	clock.t = clock.t.Add(time.Second)
	_, ok = c.Get("company-a:shipping_response")
	assert.False(t, ok, "entry must expire at the TTL")
}

func TestTemplateCache_DeletePrefix(t *testing.T) {
	c := NewTemplateCache(time.Minute, nil)

	c.Set("company-a:shipping_response", "a1")
	c.Set("company-a:__settings", "a2")
	c.Set("company-ab:shipping_response", "ab")
	c.Set("global:shipping_response", "g")

	removed := c.DeletePrefix("company-a:")
	assert.Equal(t, 2, removed)

	_, ok := c.Get("company-a:shipping_response")
	assert.False(t, ok)
	_, ok = c.Get("company-ab:shipping_response")
	assert.True(t, ok, "prefix match must include the separator")
	_, ok = c.Get("global:shipping_response")
	assert.True(t, ok)
}
