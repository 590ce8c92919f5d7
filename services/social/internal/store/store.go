// Package store persists profiles, reviews and watchlist entries for the social service.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a row addressed by key does not exist.
var ErrNotFound = errors.New("store: not found")

// DefaultInterests seeds a newly created profile.
var DefaultInterests = []string{"Action", "Drama", "Comedy", "Sci-Fi"}

// Profile is the per-user display record. It is created lazily on first read.
type Profile struct {
	UserID    string    `json:"user_id"`
	Username  *string   `json:"username"`
	Name      *string   `json:"name"`
	Interests []string  `json:"interests"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Review is a user's rating (1..5) of a movie. At most one per (user, movie).
type Review struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	MovieID   int64     `json:"movie_id"`
	Rating    int       `json:"rating"`
	Content   *string   `json:"content"`
	Username  *string   `json:"username,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WatchlistEntry is a movie saved by a user. At most one per (user, movie).
type WatchlistEntry struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	MovieID    int64     `json:"movie_id"`
	Title      string    `json:"title"`
	PosterPath *string   `json:"poster_path"`
	CreatedAt  time.Time `json:"created_at"`
}

type ProfileStore interface {
	Get(ctx context.Context, userID string) (Profile, error)
	// Create inserts p unless a profile already exists and returns the stored row.
	Create(ctx context.Context, p Profile) (Profile, error)
	UpdateName(ctx context.Context, userID string, name *string) (Profile, error)
	UpdateInterests(ctx context.Context, userID string, interests []string) (Profile, error)
}

type ReviewStore interface {
	// Upsert writes r keyed by (user, movie). created reports whether a new row was inserted.
	Upsert(ctx context.Context, r Review) (stored Review, created bool, err error)
	// ListByMovie returns the movie's reviews newest first with usernames attached.
	ListByMovie(ctx context.Context, movieID int64) ([]Review, error)
	Get(ctx context.Context, userID string, movieID int64) (Review, error)
}

type WatchlistStore interface {
	// Add upserts by (user, movie); re-adding overwrites title and poster.
	Add(ctx context.Context, e WatchlistEntry) (WatchlistEntry, error)
	// Remove deletes the entry. Removing a missing entry is not an error.
	Remove(ctx context.Context, userID string, movieID int64) error
	// List returns the user's entries newest first.
	List(ctx context.Context, userID string) ([]WatchlistEntry, error)
	Contains(ctx context.Context, userID string, movieID int64) (bool, error)
}
