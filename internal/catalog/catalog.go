// Copyright (c) 2026 StreamAdvisor. All rights reserved.

/*
Package catalog holds the content items users browse, favorite, and receive
recommendations over.

The catalog is a small, fixed, in-memory collection seeded at startup. Items
are identified by URL slugs derived from their titles, so API paths stay
human-readable (e.g. /content/midnight-light).
*/
package catalog

import (
	"sort"

	"github.com/streamadvisor/streamadvisor/pkg/slug"
)

// ItemType classifies a catalog entry.
type ItemType string

const (
	TypeMovie  ItemType = "movie"
	TypeSeries ItemType = "series"
	TypeBook   ItemType = "book"
)

// Item is a single piece of recommendable content.
type Item struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Type        ItemType `json:"type"`
	Genre       string   `json:"genre"`
	Year        int      `json:"year"`
	Rating      float64  `json:"rating"`
	Description string   `json:"description"`

	// Image is the emoji tag the UI renders as the item's cover art.
	Image string `json:"image"`
}

// Catalog is the read-only collection of content items.
//
// # Concurrency
//
// The catalog is populated once at construction and never mutated, so it is
// safe for concurrent readers without locking.
type Catalog struct {
	items []Item
	byID  map[string]Item
}

// New builds a catalog from the given items, assigning each a slug ID
// derived from its title.
func New(items []Item) *Catalog {
	catalog := &Catalog{
		items: make([]Item, 0, len(items)),
		byID:  make(map[string]Item, len(items)),
	}

	for _, item := range items {
		item.ID = slug.From(item.Title)
		catalog.items = append(catalog.items, item)
		catalog.byID[item.ID] = item
	}

	return catalog
}

// Seed returns the catalog pre-populated with the launch collection.
func Seed() *Catalog {
	return New([]Item{
		{Title: "Midnight Light", Type: TypeMovie, Genre: "Drama", Year: 2021, Rating: 4.2,
			Description: "A night-shift nurse uncovers the life her patients hid from the world.", Image: "🌃"},
		{Title: "Code Alpha", Type: TypeSeries, Genre: "Science Fiction", Year: 2023, Rating: 4.5,
			Description: "An AI research team races to contain the model that learned to lie.", Image: "🤖"},
		{Title: "The Path of Dreams", Type: TypeBook, Genre: "Fantasy", Year: 2019, Rating: 4.7,
			Description: "A cartographer maps a realm that only exists while she sleeps.", Image: "🐉"},
		{Title: "Laughter in the City", Type: TypeMovie, Genre: "Comedy", Year: 2020, Rating: 3.9,
			Description: "Two rival street comedians are booked into the same tiny club for a month.", Image: "🎤"},
		{Title: "Frontiers", Type: TypeSeries, Genre: "Action", Year: 2022, Rating: 4.3,
			Description: "A border patrol crew on a terraformed moon takes the jobs nobody else will.", Image: "🚀"},
		{Title: "The Time Code", Type: TypeBook, Genre: "Science Fiction", Year: 2021, Rating: 4.4,
			Description: "A programmer finds a timestamp in production logs dated thirty years ahead.", Image: "⏳"},
	})
}

// Items returns all catalog entries in insertion order. The slice is a copy.
func (catalog *Catalog) Items() []Item {
	out := make([]Item, len(catalog.items))
	copy(out, catalog.items)
	return out
}

// Get returns the item with the given ID.
func (catalog *Catalog) Get(id string) (Item, bool) {
	item, found := catalog.byID[id]
	return item, found
}

// Has reports whether an item with the given ID exists.
func (catalog *Catalog) Has(id string) bool {
	_, found := catalog.byID[id]
	return found
}

// Genres returns the distinct genres present in the catalog, sorted.
func (catalog *Catalog) Genres() []string {
	seen := make(map[string]bool, len(catalog.items))
	genres := make([]string, 0, len(catalog.items))

	for _, item := range catalog.items {
		if !seen[item.Genre] {
			seen[item.Genre] = true
			genres = append(genres, item.Genre)
		}
	}

	sort.Strings(genres)
	return genres
}
