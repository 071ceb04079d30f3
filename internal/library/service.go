// Copyright (c) 2026 StreamAdvisor. All rights reserved.

/*
Package library manages each user's personal collection: favorite content
items and preferred genres.

# Data Model

  - user_favorites: one row per (user, item) mark. Removal flips is_active
    to false instead of deleting, preserving the history of marks.
  - user_preferences: at most one row per user, holding the genre list the
    recommendation scorer feeds on.
*/
package library

import (
	"context"
	"log/slog"

	"github.com/streamadvisor/streamadvisor/internal/catalog"
	"github.com/streamadvisor/streamadvisor/internal/platform/apperr"
	"github.com/streamadvisor/streamadvisor/internal/platform/validate"
	"github.com/streamadvisor/streamadvisor/internal/store"
)

// Field names of the library tables.
const (
	fieldUserID   = "user_id"
	fieldItemID   = "item_id"
	fieldIsActive = "is_active"
	fieldGenres   = "genres"
)

// Preferences is a user's recommendation profile.
type Preferences struct {
	Genres []string `json:"genres"`
}

// Service implements favorites and preference management.
type Service struct {
	store   *store.Store
	catalog *catalog.Catalog
	log     *slog.Logger
}

// NewService constructs the library service.
func NewService(recordStore *store.Store, contentCatalog *catalog.Catalog, logger *slog.Logger) *Service {
	return &Service{
		store:   recordStore,
		catalog: contentCatalog,
		log:     logger,
	}
}

// # Favorites

/*
AddFavorite marks a catalog item as a favorite of the user.

Description: Validates the item exists, then either reactivates a previously
removed mark or inserts a fresh one. Adding an item that is already an
active favorite is a no-op, so the operation is idempotent.

Parameters:
  - ctx: context.Context
  - userID: Owner of the favorite
  - itemID: Catalog item slug

Returns:
  - error: apperr.NotFound when the item is unknown, or apperr.Storage
*/
func (service *Service) AddFavorite(ctx context.Context, userID, itemID string) error {
	if !service.catalog.Has(itemID) {
		return apperr.NotFound("Content item")
	}

	existing, err := service.store.SelectOne(ctx, store.TableFavorites, store.Where{
		fieldUserID: userID,
		fieldItemID: itemID,
	})
	if err != nil {
		return err
	}

	if existing == nil {
		_, err := service.store.Insert(ctx, store.TableFavorites, store.Record{
			fieldUserID:   userID,
			fieldItemID:   itemID,
			fieldIsActive: true,
		})
		return err
	}

	if existing.Bool(fieldIsActive) {
		// Already a favorite; idempotent success.
		return nil
	}

	// Reactivate the historical mark instead of inserting a duplicate row.
	_, err = service.store.Update(ctx, store.TableFavorites,
		store.Where{"id": existing.ID()},
		store.Record{fieldIsActive: true},
	)
	return err
}

/*
RemoveFavorite unmarks a favorite.

Description: Flips the active mark to inactive. Removing an item that is not
currently a favorite fails with NotFound, matching the UI's expectation that
the remove button only appears on actual favorites.

Parameters:
  - ctx: context.Context
  - userID: Owner of the favorite
  - itemID: Catalog item slug

Returns:
  - error: apperr.NotFound or apperr.Storage
*/
func (service *Service) RemoveFavorite(ctx context.Context, userID, itemID string) error {
	updated, err := service.store.Update(ctx, store.TableFavorites,
		store.Where{fieldUserID: userID, fieldItemID: itemID, fieldIsActive: true},
		store.Record{fieldIsActive: false},
	)
	if err != nil {
		return err
	}
	if updated == 0 {
		return apperr.NotFound("Favorite")
	}
	return nil
}

// ClearFavorites deactivates every favorite of the user and returns how many
// were cleared. Clearing an empty collection succeeds with zero.
func (service *Service) ClearFavorites(ctx context.Context, userID string) (int, error) {
	return service.store.Update(ctx, store.TableFavorites,
		store.Where{fieldUserID: userID, fieldIsActive: true},
		store.Record{fieldIsActive: false},
	)
}

// Favorites returns the catalog items the user has actively favorited, in
// the order the marks were created. Items that have left the catalog are
// skipped silently.
func (service *Service) Favorites(ctx context.Context, userID string) ([]catalog.Item, error) {
	records, err := service.store.Select(ctx, store.TableFavorites, store.Where{
		fieldUserID:   userID,
		fieldIsActive: true,
	})
	if err != nil {
		return nil, err
	}

	items := make([]catalog.Item, 0, len(records))
	for _, record := range records {
		if item, found := service.catalog.Get(record.String(fieldItemID)); found {
			items = append(items, item)
		}
	}
	return items, nil
}

// FavoriteItemIDs returns the set of actively favorited item IDs.
func (service *Service) FavoriteItemIDs(ctx context.Context, userID string) (map[string]bool, error) {
	records, err := service.store.Select(ctx, store.TableFavorites, store.Where{
		fieldUserID:   userID,
		fieldIsActive: true,
	})
	if err != nil {
		return nil, err
	}

	ids := make(map[string]bool, len(records))
	for _, record := range records {
		ids[record.String(fieldItemID)] = true
	}
	return ids, nil
}

// # Preferences

// Preferences returns the user's genre profile. A user who never saved
// preferences gets an empty (never nil) genre list.
func (service *Service) Preferences(ctx context.Context, userID string) (*Preferences, error) {
	record, err := service.store.SelectOne(ctx, store.TablePreferences, store.Where{
		fieldUserID: userID,
	})
	if err != nil {
		return nil, err
	}
	if record == nil {
		return &Preferences{Genres: []string{}}, nil
	}

	genres := record.Strings(fieldGenres)
	if genres == nil {
		genres = []string{}
	}
	return &Preferences{Genres: genres}, nil
}

/*
SetPreferences replaces the user's genre profile.

Description: Validates every genre against the catalog's known set,
deduplicates while preserving order, and upserts the single preferences row.

Parameters:
  - ctx: context.Context
  - userID: Owner of the profile
  - genres: Preferred genres (empty list clears the profile)

Returns:
  - *Preferences: The stored profile
  - error: apperr.ValidationError or apperr.Storage
*/
func (service *Service) SetPreferences(ctx context.Context, userID string, genres []string) (*Preferences, error) {
	known := service.catalog.Genres()

	v := &validate.Validator{}
	for _, genre := range genres {
		v.OneOf(fieldGenres, genre, known...)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	deduped := dedupe(genres)

	existing, err := service.store.SelectOne(ctx, store.TablePreferences, store.Where{
		fieldUserID: userID,
	})
	if err != nil {
		return nil, err
	}

	if existing == nil {
		_, err = service.store.Insert(ctx, store.TablePreferences, store.Record{
			fieldUserID: userID,
			fieldGenres: deduped,
		})
	} else {
		_, err = service.store.Update(ctx, store.TablePreferences,
			store.Where{"id": existing.ID()},
			store.Record{fieldGenres: deduped},
		)
	}
	if err != nil {
		return nil, err
	}

	return &Preferences{Genres: deduped}, nil
}

// dedupe removes duplicates while keeping first-seen order.
func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		if !seen[value] {
			seen[value] = true
			out = append(out, value)
		}
	}
	return out
}
