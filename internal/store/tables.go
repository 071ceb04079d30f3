// Copyright (c) 2026 StreamAdvisor. All rights reserved.

package store

// # Table Names

// Table names are declared centrally so every layer refers to the same set,
// and so the store can be constructed with the full catalog of known tables.
const (
	// TableUsers holds registered accounts.
	TableUsers = "users"

	// TableSessions is the append-only audit trail of issued sessions.
	// Logout marks a row inactive; rows are never deleted.
	TableSessions = "user_sessions"

	// TablePreferences holds one row per user with their preferred genres.
	TablePreferences = "user_preferences"

	// TableFavorites holds the user ↔ content item favorite marks.
	TableFavorites = "user_favorites"

	// TableActivity is the append-only audit log of user actions.
	TableActivity = "user_activity"
)

// Tables returns every table the application declares, in a stable order.
func Tables() []string {
	return []string{
		TableUsers,
		TableSessions,
		TablePreferences,
		TableFavorites,
		TableActivity,
	}
}
