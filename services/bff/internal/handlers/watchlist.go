package handlers

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/movie-platform/internal/platform/api"
	"github.com/example/movie-platform/services/bff/internal/backend"
	"github.com/example/movie-platform/services/bff/internal/tmdb"
)

const signInWatchlist = "Please sign in to use your watchlist."

type addWatchlistReq struct {
	Title      string  `json:"title"`
	PosterPath *string `json:"poster_path"`
}

// WatchlistItem is a watchlist row ready for display.
type WatchlistItem struct {
	MovieID int64  `json:"movie_id"`
	Title   string `json:"title"`
	Poster  string `json:"poster,omitempty"`
	AddedAt string `json:"added_at"`
}

func watchlistItem(e backend.WatchlistEntry) WatchlistItem {
	it := WatchlistItem{MovieID: e.MovieID, Title: e.Title, AddedAt: e.CreatedAt.UTC().Format(time.RFC3339)}
	if e.PosterPath != nil {
		it.Poster = tmdb.ImageURL(*e.PosterPath, tmdb.SizeW342)
	}
	return it
}

// AddToWatchlist saves a movie for the caller. A blank title is filled in from
// the catalog. Adding the same movie again refreshes its title and poster.
func AddToWatchlist(d Deps) http.HandlerFunc {
	d = d.withDefaults()
	return func(w http.ResponseWriter, r *http.Request) {
		rid := requestID(r)
		s, ok := signedIn(r)
		if !ok {
			signInRequired(w, rid, signInWatchlist)
			return
		}
		id, ok := movieID(w, r, rid)
		if !ok {
			return
		}
		var req addWatchlistReq
		if r.ContentLength != 0 {
			if !decodeJSON(w, r, rid, &req) {
				return
			}
		}

		title := strings.TrimSpace(req.Title)
		poster := req.PosterPath
		if title == "" {
			m, err := d.Catalog.MovieDetails(r.Context(), id)
			if err != nil || m.ID == 0 {
				d.Log.Warn("watchlist: resolve title", zap.Int64("movie_id", id), zap.Error(err))
				api.WriteErrorNotice(w, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", "could not resolve movie", rid,
					api.Failure("Failed to add to watchlist", "Movie details are unavailable."))
				return
			}
			title = m.Title
			if poster == nil && m.PosterPath != "" {
				p := m.PosterPath
				poster = &p
			}
		}

		entry, err := d.Backend.AddToWatchlist(r.Context(), s.Token, id, title, poster)
		if err != nil {
			d.Log.Warn("watchlist add", zap.Int64("movie_id", id), zap.String("request_id", rid), zap.Error(err))
			api.WriteErrorNotice(w, http.StatusBadGateway, "WATCHLIST_WRITE_FAILED", "watchlist write failed", rid,
				api.Failure("Failed to add to watchlist", "Please try again."))
			return
		}
		writeNotice(w, http.StatusOK, watchlistItem(entry), api.Notice("Added to watchlist", ""))
	}
}

// RemoveFromWatchlist drops a movie from the caller's watchlist. Removing a
// movie that is not there succeeds.
func RemoveFromWatchlist(d Deps) http.HandlerFunc {
	d = d.withDefaults()
	return func(w http.ResponseWriter, r *http.Request) {
		rid := requestID(r)
		s, ok := signedIn(r)
		if !ok {
			signInRequired(w, rid, signInWatchlist)
			return
		}
		id, ok := movieID(w, r, rid)
		if !ok {
			return
		}
		if err := d.Backend.RemoveFromWatchlist(r.Context(), s.Token, id); err != nil {
			d.Log.Warn("watchlist remove", zap.Int64("movie_id", id), zap.String("request_id", rid), zap.Error(err))
			api.WriteErrorNotice(w, http.StatusBadGateway, "WATCHLIST_WRITE_FAILED", "watchlist write failed", rid,
				api.Failure("Failed to remove from watchlist", "Please try again."))
			return
		}
		writeNotice(w, http.StatusOK, map[string]any{"movie_id": id}, api.Notice("Removed from watchlist", ""))
	}
}

// WatchlistStatus reports whether the movie is on the caller's watchlist.
// Anonymous callers always get false.
func WatchlistStatus(d Deps) http.HandlerFunc {
	d = d.withDefaults()
	return func(w http.ResponseWriter, r *http.Request) {
		rid := requestID(r)
		id, ok := movieID(w, r, rid)
		if !ok {
			return
		}
		s, ok := signedIn(r)
		if !ok {
			api.WriteJSON(w, http.StatusOK, map[string]any{"movie_id": id, "in_watchlist": false})
			return
		}
		in, err := d.Backend.InWatchlist(r.Context(), s.Token, id)
		if err != nil {
			d.Log.Warn("watchlist status", zap.Int64("movie_id", id), zap.Error(err))
			api.BadGateway(w, "UPSTREAM_UNAVAILABLE", "watchlist is unavailable", rid)
			return
		}
		api.WriteJSON(w, http.StatusOK, map[string]any{"movie_id": id, "in_watchlist": in})
	}
}
