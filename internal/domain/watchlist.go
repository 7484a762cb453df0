package domain

import "time"

// WatchlistEntry records that a user saved a movie. At most one entry exists per
// (user, movie) pair.
type WatchlistEntry struct {
	ID      string
	UserID  string
	MovieID string
	AddedAt time.Time
}

// WatchlistItem is an entry joined with its full movie record.
type WatchlistItem struct {
	WatchlistEntry
	Movie Movie
}
