package handlers

import (
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/example/movie-platform/internal/platform/api"
	"github.com/example/movie-platform/services/bff/internal/backend"
)

const signInProfile = "Please sign in to view your profile."

type profilePage struct {
	Profile   backend.Profile `json:"profile"`
	Watchlist []WatchlistItem `json:"watchlist"`
	Count     int             `json:"count"`
}

type updateNameReq struct {
	Name *string `json:"name"`
}

type updateInterestsReq struct {
	Interests []string `json:"interests"`
}

// ProfilePage serves the caller's profile together with their watchlist. The
// profile is created on first visit by the backend.
func ProfilePage(d Deps) http.HandlerFunc {
	d = d.withDefaults()
	return func(w http.ResponseWriter, r *http.Request) {
		rid := requestID(r)
		s, ok := signedIn(r)
		if !ok {
			signInRequired(w, rid, signInProfile)
			return
		}

		var (
			profile backend.Profile
			entries []backend.WatchlistEntry
		)
		g, ctx := errgroup.WithContext(r.Context())
		g.Go(func() (err error) { profile, err = d.Backend.Profile(ctx, s.Token); return })
		g.Go(func() (err error) { entries, err = d.Backend.Watchlist(ctx, s.Token); return })
		if err := g.Wait(); err != nil {
			d.Log.Warn("profile page", zap.String("request_id", rid), zap.Error(err))
			api.WriteErrorNotice(w, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", "profile is unavailable", rid,
				api.Failure("Error", "Failed to load profile data"))
			return
		}

		items := make([]WatchlistItem, 0, len(entries))
		for _, e := range entries {
			items = append(items, watchlistItem(e))
		}
		api.WriteJSON(w, http.StatusOK, profilePage{Profile: profile, Watchlist: items, Count: len(items)})
	}
}

// UpdateName sets or clears the caller's display name.
func UpdateName(d Deps) http.HandlerFunc {
	d = d.withDefaults()
	return func(w http.ResponseWriter, r *http.Request) {
		rid := requestID(r)
		s, ok := signedIn(r)
		if !ok {
			signInRequired(w, rid, signInProfile)
			return
		}
		var req updateNameReq
		if !decodeJSON(w, r, rid, &req) {
			return
		}
		p, err := d.Backend.UpdateName(r.Context(), s.Token, req.Name)
		if err != nil {
			d.Log.Warn("update name", zap.String("request_id", rid), zap.Error(err))
			api.WriteErrorNotice(w, http.StatusBadGateway, "PROFILE_WRITE_FAILED", "profile write failed", rid,
				api.Failure("Error", "Failed to update name"))
			return
		}
		writeNotice(w, http.StatusOK, p, api.Notice("Success", "Name updated successfully"))
	}
}

// UpdateInterests replaces the caller's interest tags.
func UpdateInterests(d Deps) http.HandlerFunc {
	d = d.withDefaults()
	return func(w http.ResponseWriter, r *http.Request) {
		rid := requestID(r)
		s, ok := signedIn(r)
		if !ok {
			signInRequired(w, rid, signInProfile)
			return
		}
		var req updateInterestsReq
		if !decodeJSON(w, r, rid, &req) {
			return
		}
		p, err := d.Backend.UpdateInterests(r.Context(), s.Token, req.Interests)
		if err != nil {
			d.Log.Warn("update interests", zap.String("request_id", rid), zap.Error(err))
			api.WriteErrorNotice(w, http.StatusBadGateway, "PROFILE_WRITE_FAILED", "profile write failed", rid,
				api.Failure("Error", "Failed to update interests"))
			return
		}
		writeNotice(w, http.StatusOK, p, api.Notice("Success", "Interests updated successfully"))
	}
}
