package backend

import "time"

type Profile struct {
	UserID    string    `json:"user_id"`
	Username  *string   `json:"username"`
	Name      *string   `json:"name"`
	Interests []string  `json:"interests"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

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

type WatchlistEntry struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	MovieID    int64     `json:"movie_id"`
	Title      string    `json:"title"`
	PosterPath *string   `json:"poster_path"`
	CreatedAt  time.Time `json:"created_at"`
}

type reviewsEnvelope struct {
	Reviews []Review `json:"reviews"`
}

type upsertReviewEnvelope struct {
	Review  Review `json:"review"`
	Created bool   `json:"created"`
}

type watchlistEnvelope struct {
	Entries []WatchlistEntry `json:"entries"`
}

type containsEnvelope struct {
	InWatchlist bool `json:"in_watchlist"`
}
