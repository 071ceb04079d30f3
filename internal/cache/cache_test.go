// Copyright (c) 2026 StreamAdvisor. All rights reserved.

package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamadvisor/streamadvisor/internal/cache"
	"github.com/streamadvisor/streamadvisor/internal/platform/clock"
)

func newTestCache(t *testing.T) (*cache.Cache, *clock.Manual) {
	t.Helper()
	clk := clock.NewManual(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	return cache.New(clk), clk
}

/*
TestCache_SetGet verifies basic storage and retrieval round-trips.
*/
func TestCache_SetGet(t *testing.T) {
	c, _ := newTestCache(t)

	require.NoError(t, c.Set("greeting", "hello", 0))

	var got string
	assert.True(t, c.Get("greeting", &got))
	assert.Equal(t, "hello", got)

	// Absent key
	assert.False(t, c.Get("missing", &got))
}

/*
TestCache_StructValues verifies that composite values survive the JSON copy.
*/
func TestCache_StructValues(t *testing.T) {
	c, _ := newTestCache(t)

	type profile struct {
		Name   string   `json:"name"`
		Genres []string `json:"genres"`
	}

	require.NoError(t, c.Set("profile", profile{Name: "demo", Genres: []string{"Drama"}}, 0))

	var got profile
	require.True(t, c.Get("profile", &got))
	assert.Equal(t, "demo", got.Name)
	assert.Equal(t, []string{"Drama"}, got.Genres)
}

/*
TestCache_CopySemantics verifies that mutating a retrieved value never leaks
back into the cached copy.
*/
func TestCache_CopySemantics(t *testing.T) {
	c, _ := newTestCache(t)

	require.NoError(t, c.Set("genres", []string{"Drama", "Action"}, 0))

	var first []string
	require.True(t, c.Get("genres", &first))
	first[0] = "MUTATED"

	var second []string
	require.True(t, c.Get("genres", &second))
	assert.Equal(t, "Drama", second[0])
}

/*
TestCache_Expiry verifies the TTL behavior, including the exact-deadline
boundary: a value is readable AT its deadline and gone just past it.
*/
func TestCache_Expiry(t *testing.T) {
	c, clk := newTestCache(t)

	require.NoError(t, c.Set("token", "abc", 10*time.Minute))

	var got string

	// 1. Readable immediately
	assert.True(t, c.Get("token", &got))

	// 2. Readable at exactly the deadline
	clk.Advance(10 * time.Minute)
	assert.True(t, c.Get("token", &got))

	// 3. Gone one instant past the deadline
	clk.Advance(time.Nanosecond)
	assert.False(t, c.Get("token", &got))

	// 4. The expired entry was evicted by the failed read
	assert.Equal(t, 0, c.Len())
}

/*
TestCache_SetOverwritesExpiry verifies that re-setting a key replaces both
the value and its deadline.
*/
func TestCache_SetOverwritesExpiry(t *testing.T) {
	c, clk := newTestCache(t)

	require.NoError(t, c.Set("k", "v1", 1*time.Minute))
	clk.Advance(50 * time.Second)

	// Refresh with a new TTL before the first one fires.
	require.NoError(t, c.Set("k", "v2", 1*time.Minute))
	clk.Advance(50 * time.Second)

	var got string
	require.True(t, c.Get("k", &got))
	assert.Equal(t, "v2", got)
}

/*
TestCache_Delete verifies removal, including the no-op on absent keys.
*/
func TestCache_Delete(t *testing.T) {
	c, _ := newTestCache(t)

	require.NoError(t, c.Set("k", 1, 0))
	c.Delete("k")

	var got int
	assert.False(t, c.Get("k", &got))

	// Deleting again must not panic or error.
	c.Delete("k")
}

/*
TestCache_InvalidatePrefix verifies the prefix sweep removes exactly the
matching keys and reports the count.
*/
func TestCache_InvalidatePrefix(t *testing.T) {
	c, _ := newTestCache(t)

	require.NoError(t, c.Set("users:1", "a", 0))
	require.NoError(t, c.Set("users:2", "b", 0))
	require.NoError(t, c.Set("user_sessions:1", "c", 0))

	removed := c.InvalidatePrefix("users:")
	assert.Equal(t, 2, removed)

	var got string
	assert.False(t, c.Get("users:1", &got))
	assert.False(t, c.Get("users:2", &got))

	// The similarly named table was untouched.
	assert.True(t, c.Get("user_sessions:1", &got))

	// Sweeping an empty keyspace removes nothing.
	assert.Equal(t, 0, c.InvalidatePrefix("users:"))
}
