// Copyright (c) 2026 StreamAdvisor. All rights reserved.

/*
Package recommend ranks catalog items for a user based on their genre
preferences and favorites.

# Scoring Model

Each candidate item starts from its community rating and earns a flat bonus
for matching one of the user's preferred genres, plus a smaller bonus for
sharing a content type with something the user already favorited.

A user with no stated genre preferences gets the full catalog ranked by
rating alone — the type bonus only kicks in once a profile exists.
*/
package recommend

import (
	"context"
	"log/slog"
	"sort"

	"github.com/streamadvisor/streamadvisor/internal/catalog"
	"github.com/streamadvisor/streamadvisor/internal/library"
)

// Score weights. The genre signal dominates: an explicitly stated preference
// outweighs any rating difference within the catalog's 0-5 scale.
const (
	genreBonus = 10.0
	typeBonus  = 5.0
)

// ScoredItem is a catalog item with its computed recommendation score.
type ScoredItem struct {
	catalog.Item
	Score float64 `json:"score"`
}

// Score ranks the items for a user profile.
//
// With no preferred genres the whole catalog comes back ranked purely by
// rating (score == rating). Otherwise every item scores rating plus the
// genre and favorite-type bonuses. The sort is stable, so equally scored
// items keep catalog order.
func Score(items []catalog.Item, preferredGenres []string, favoriteTypes map[catalog.ItemType]bool) []ScoredItem {
	scored := make([]ScoredItem, 0, len(items))

	// Cold start: no profile means rating order, nothing more.
	if len(preferredGenres) == 0 {
		for _, item := range items {
			scored = append(scored, ScoredItem{Item: item, Score: item.Rating})
		}
		sortByScore(scored)
		return scored
	}

	preferred := make(map[string]bool, len(preferredGenres))
	for _, genre := range preferredGenres {
		preferred[genre] = true
	}

	for _, item := range items {
		score := item.Rating
		if preferred[item.Genre] {
			score += genreBonus
		}
		if favoriteTypes[item.Type] {
			score += typeBonus
		}
		scored = append(scored, ScoredItem{Item: item, Score: score})
	}

	sortByScore(scored)
	return scored
}

func sortByScore(scored []ScoredItem) {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
}

// Service computes recommendations for authenticated and anonymous users.
type Service struct {
	catalog *catalog.Catalog
	library *library.Service
	log     *slog.Logger
}

// NewService constructs the recommendation service.
func NewService(contentCatalog *catalog.Catalog, libraryService *library.Service, logger *slog.Logger) *Service {
	return &Service{
		catalog: contentCatalog,
		library: libraryService,
		log:     logger,
	}
}

/*
ForUser ranks the catalog for the given user.

Description: Loads the user's preferences and favorites, derives the
favorite content types, and scores the full catalog.

Parameters:
  - ctx: context.Context
  - userID: The user to recommend for; "" means anonymous

Returns:
  - []ScoredItem: Ranked recommendations, best first
  - error: apperr.Storage
*/
func (service *Service) ForUser(ctx context.Context, userID string) ([]ScoredItem, error) {
	if userID == "" {
		return service.ForAnonymous(), nil
	}

	preferences, err := service.library.Preferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	favoriteIDs, err := service.library.FavoriteItemIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	favoriteTypes := make(map[catalog.ItemType]bool, len(favoriteIDs))
	for id := range favoriteIDs {
		if item, found := service.catalog.Get(id); found {
			favoriteTypes[item.Type] = true
		}
	}

	return Score(service.catalog.Items(), preferences.Genres, favoriteTypes), nil
}

// ForAnonymous ranks the full catalog by rating alone.
func (service *Service) ForAnonymous() []ScoredItem {
	return Score(service.catalog.Items(), nil, nil)
}
