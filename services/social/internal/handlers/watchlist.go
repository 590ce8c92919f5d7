package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/example/movie-platform/internal/platform/analytics"
	"github.com/example/movie-platform/internal/platform/api"
	"github.com/example/movie-platform/internal/platform/httpserver"
	"github.com/example/movie-platform/services/social/internal/store"
)

type addToWatchlistRequest struct {
	Title      string  `json:"title"`
	PosterPath *string `json:"poster_path"`
}

type watchlistResponse struct {
	Entries []store.WatchlistEntry `json:"entries"`
}

type containsResponse struct {
	MovieID     int64 `json:"movie_id"`
	InWatchlist bool  `json:"in_watchlist"`
}

// ListWatchlist handles GET /v1/watchlist.
func ListWatchlist(ws store.WatchlistStore, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUserID(w, r)
		if !ok {
			return
		}
		entries, err := ws.List(r.Context(), userID)
		if err != nil {
			log.Error("list watchlist", zap.String("user_id", userID), zap.Error(err))
			api.Internal(w, httpserver.RequestIDFromContext(r.Context()))
			return
		}
		api.WriteJSON(w, http.StatusOK, watchlistResponse{Entries: entries})
	}
}

// WatchlistContains handles GET /v1/watchlist/{movie_id}.
func WatchlistContains(ws store.WatchlistStore, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUserID(w, r)
		if !ok {
			return
		}
		movieID, ok := movieIDParam(w, r)
		if !ok {
			return
		}
		in, err := ws.Contains(r.Context(), userID, movieID)
		if err != nil {
			log.Error("watchlist lookup", zap.Int64("movie_id", movieID), zap.Error(err))
			api.Internal(w, httpserver.RequestIDFromContext(r.Context()))
			return
		}
		api.WriteJSON(w, http.StatusOK, containsResponse{MovieID: movieID, InWatchlist: in})
	}
}

// AddToWatchlist handles PUT /v1/watchlist/{movie_id}. Re-adding overwrites the snapshot.
func AddToWatchlist(ws store.WatchlistStore, ev Events, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUserID(w, r)
		if !ok {
			return
		}
		movieID, ok := movieIDParam(w, r)
		if !ok {
			return
		}
		rid := httpserver.RequestIDFromContext(r.Context())

		var req addToWatchlistRequest
		if err := decodeJSON(w, r, &req); err != nil {
			api.BadRequest(w, "INVALID_JSON", "invalid JSON", rid, nil)
			return
		}
		title := strings.TrimSpace(req.Title)
		if title == "" {
			api.BadRequest(w, "MISSING_TITLE", "title is required", rid, nil)
			return
		}

		entry, err := ws.Add(r.Context(), store.WatchlistEntry{
			UserID:     userID,
			MovieID:    movieID,
			Title:      title,
			PosterPath: optionalText(req.PosterPath),
		})
		if err != nil {
			log.Error("add to watchlist", zap.Int64("movie_id", movieID), zap.Error(err))
			api.Internal(w, rid)
			return
		}
		events(ev).Publish(analytics.SubjectWatchlistAdded, "watchlist_added", userID, map[string]any{
			"movie_id": movieID,
			"title":    title,
		})
		api.WriteJSON(w, http.StatusOK, entry)
	}
}

// RemoveFromWatchlist handles DELETE /v1/watchlist/{movie_id}. Idempotent.
func RemoveFromWatchlist(ws store.WatchlistStore, ev Events, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUserID(w, r)
		if !ok {
			return
		}
		movieID, ok := movieIDParam(w, r)
		if !ok {
			return
		}
		if err := ws.Remove(r.Context(), userID, movieID); err != nil {
			log.Error("remove from watchlist", zap.Int64("movie_id", movieID), zap.Error(err))
			api.Internal(w, httpserver.RequestIDFromContext(r.Context()))
			return
		}
		events(ev).Publish(analytics.SubjectWatchlistRemoved, "watchlist_removed", userID, map[string]any{
			"movie_id": movieID,
		})
		w.WriteHeader(http.StatusNoContent)
	}
}
