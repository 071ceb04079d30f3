// Copyright (c) 2026 StreamAdvisor. All rights reserved.

package library_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamadvisor/streamadvisor/internal/cache"
	"github.com/streamadvisor/streamadvisor/internal/catalog"
	"github.com/streamadvisor/streamadvisor/internal/library"
	"github.com/streamadvisor/streamadvisor/internal/platform/apperr"
	"github.com/streamadvisor/streamadvisor/internal/platform/clock"
	"github.com/streamadvisor/streamadvisor/internal/store"
)

const userID = "user-1"

func newTestService(t *testing.T) *library.Service {
	t.Helper()

	clk := clock.NewManual(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	c := cache.New(clk)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	recordStore, err := store.New(context.Background(), store.NewMemoryMedium(), c, clk, logger, store.Tables()...)
	require.NoError(t, err)

	return library.NewService(recordStore, catalog.Seed(), logger)
}

/*
TestFavorites_AddAndList verifies marking items and reading them back in
insertion order.
*/
func TestFavorites_AddAndList(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	require.NoError(t, service.AddFavorite(ctx, userID, "midnight-light"))
	require.NoError(t, service.AddFavorite(ctx, userID, "code-alpha"))

	items, err := service.Favorites(ctx, userID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "midnight-light", items[0].ID)
	assert.Equal(t, "code-alpha", items[1].ID)
}

/*
TestFavorites_AddUnknownItem verifies the catalog check on add.
*/
func TestFavorites_AddUnknownItem(t *testing.T) {
	service := newTestService(t)

	err := service.AddFavorite(context.Background(), userID, "no-such-item")
	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "NOT_FOUND", ae.Code)
}

/*
TestFavorites_AddIsIdempotent verifies that re-adding an active favorite
neither errors nor duplicates.
*/
func TestFavorites_AddIsIdempotent(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	require.NoError(t, service.AddFavorite(ctx, userID, "midnight-light"))
	require.NoError(t, service.AddFavorite(ctx, userID, "midnight-light"))

	items, err := service.Favorites(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

/*
TestFavorites_Remove verifies removal and the NotFound on items that are not
currently favorites.
*/
func TestFavorites_Remove(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	require.NoError(t, service.AddFavorite(ctx, userID, "midnight-light"))
	require.NoError(t, service.RemoveFavorite(ctx, userID, "midnight-light"))

	items, err := service.Favorites(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, items)

	// Removing again fails: the mark is no longer active.
	err = service.RemoveFavorite(ctx, userID, "midnight-light")
	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "NOT_FOUND", ae.Code)
}

/*
TestFavorites_ReAddAfterRemove verifies that a removed favorite can be
marked again (the historical row is reactivated, not duplicated).
*/
func TestFavorites_ReAddAfterRemove(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	require.NoError(t, service.AddFavorite(ctx, userID, "midnight-light"))
	require.NoError(t, service.RemoveFavorite(ctx, userID, "midnight-light"))
	require.NoError(t, service.AddFavorite(ctx, userID, "midnight-light"))

	items, err := service.Favorites(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

/*
TestFavorites_Clear verifies bulk removal and the zero-count success on an
empty collection.
*/
func TestFavorites_Clear(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	require.NoError(t, service.AddFavorite(ctx, userID, "midnight-light"))
	require.NoError(t, service.AddFavorite(ctx, userID, "code-alpha"))

	cleared, err := service.ClearFavorites(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, cleared)

	items, err := service.Favorites(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, items)

	// Clearing nothing succeeds with zero.
	cleared, err = service.ClearFavorites(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, cleared)
}

/*
TestFavorites_IsolatedPerUser verifies one user's marks never leak into
another's collection.
*/
func TestFavorites_IsolatedPerUser(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	require.NoError(t, service.AddFavorite(ctx, "user-1", "midnight-light"))
	require.NoError(t, service.AddFavorite(ctx, "user-2", "code-alpha"))

	first, err := service.Favorites(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, "midnight-light", first[0].ID)

	second, err := service.Favorites(ctx, "user-2")
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "code-alpha", second[0].ID)
}

/*
TestPreferences_DefaultEmpty verifies a fresh user gets an empty, non-nil
genre list.
*/
func TestPreferences_DefaultEmpty(t *testing.T) {
	service := newTestService(t)

	preferences, err := service.Preferences(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, preferences)
	assert.NotNil(t, preferences.Genres)
	assert.Empty(t, preferences.Genres)
}

/*
TestPreferences_SetAndGet verifies the upsert round-trip, deduplication,
and replacement on a second set.
*/
func TestPreferences_SetAndGet(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	// 1. Initial set, with a duplicate entry
	saved, err := service.SetPreferences(ctx, userID, []string{"Drama", "Comedy", "Drama"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Drama", "Comedy"}, saved.Genres)

	loaded, err := service.Preferences(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Drama", "Comedy"}, loaded.Genres)

	// 2. A second set replaces, never appends
	saved, err = service.SetPreferences(ctx, userID, []string{"Action"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Action"}, saved.Genres)

	loaded, err = service.Preferences(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Action"}, loaded.Genres)

	// 3. An empty set clears the profile
	saved, err = service.SetPreferences(ctx, userID, []string{})
	require.NoError(t, err)
	assert.Empty(t, saved.Genres)
}

/*
TestPreferences_RejectsUnknownGenre verifies validation against the
catalog's genre set.
*/
func TestPreferences_RejectsUnknownGenre(t *testing.T) {
	service := newTestService(t)

	_, err := service.SetPreferences(context.Background(), userID, []string{"Drama", "Polka"})
	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "VALIDATION_ERROR", ae.Code)
}
