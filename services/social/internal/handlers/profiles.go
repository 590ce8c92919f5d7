package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/example/movie-platform/internal/platform/analytics"
	"github.com/example/movie-platform/internal/platform/api"
	"github.com/example/movie-platform/internal/platform/auth"
	"github.com/example/movie-platform/internal/platform/httpserver"
	"github.com/example/movie-platform/services/social/internal/store"
)

const maxInterests = 32

type updateNameRequest struct {
	Name *string `json:"name"`
}

type updateInterestsRequest struct {
	Interests []string `json:"interests"`
}

// loadProfile returns the caller's profile, creating it with defaults on first access.
func loadProfile(ctx context.Context, ps store.ProfileStore, ev Events, userID string) (store.Profile, error) {
	p, err := ps.Get(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return store.Profile{}, err
	}

	seed := store.Profile{UserID: userID}
	if username := auth.SessionFromContext(ctx).Username(); username != "" {
		seed.Username = &username
	}
	p, err = ps.Create(ctx, seed)
	if err != nil {
		return store.Profile{}, err
	}
	events(ev).Publish(analytics.SubjectProfileCreated, "profile_created", userID, map[string]any{
		"username": p.Username,
	})
	return p, nil
}

// GetProfile handles GET /v1/profiles/me. A missing profile is created, never reported.
func GetProfile(ps store.ProfileStore, ev Events, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUserID(w, r)
		if !ok {
			return
		}
		rid := httpserver.RequestIDFromContext(r.Context())

		p, err := loadProfile(r.Context(), ps, ev, userID)
		if err != nil {
			log.Error("load profile", zap.String("user_id", userID), zap.Error(err))
			api.Internal(w, rid)
			return
		}
		api.WriteJSON(w, http.StatusOK, p)
	}
}

// UpdateName handles PATCH /v1/profiles/me/name. A blank name clears it.
func UpdateName(ps store.ProfileStore, ev Events, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUserID(w, r)
		if !ok {
			return
		}
		rid := httpserver.RequestIDFromContext(r.Context())

		var req updateNameRequest
		if err := decodeJSON(w, r, &req); err != nil {
			api.BadRequest(w, "INVALID_JSON", "invalid JSON", rid, nil)
			return
		}
		if _, err := loadProfile(r.Context(), ps, ev, userID); err != nil {
			log.Error("load profile", zap.String("user_id", userID), zap.Error(err))
			api.Internal(w, rid)
			return
		}

		p, err := ps.UpdateName(r.Context(), userID, optionalText(req.Name))
		if err != nil {
			log.Error("update profile name", zap.String("user_id", userID), zap.Error(err))
			api.Internal(w, rid)
			return
		}
		api.WriteJSON(w, http.StatusOK, p)
	}
}

// UpdateInterests handles PUT /v1/profiles/me/interests.
func UpdateInterests(ps store.ProfileStore, ev Events, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUserID(w, r)
		if !ok {
			return
		}
		rid := httpserver.RequestIDFromContext(r.Context())

		var req updateInterestsRequest
		if err := decodeJSON(w, r, &req); err != nil {
			api.BadRequest(w, "INVALID_JSON", "invalid JSON", rid, nil)
			return
		}
		interests := normalizeInterests(req.Interests)
		if len(interests) > maxInterests {
			api.BadRequest(w, "TOO_MANY_INTERESTS", "too many interests", rid,
				map[string]any{"max": maxInterests})
			return
		}
		if _, err := loadProfile(r.Context(), ps, ev, userID); err != nil {
			log.Error("load profile", zap.String("user_id", userID), zap.Error(err))
			api.Internal(w, rid)
			return
		}

		p, err := ps.UpdateInterests(r.Context(), userID, interests)
		if err != nil {
			log.Error("update profile interests", zap.String("user_id", userID), zap.Error(err))
			api.Internal(w, rid)
			return
		}
		api.WriteJSON(w, http.StatusOK, p)
	}
}

// normalizeInterests trims entries, drops blanks and duplicates, keeping order.
func normalizeInterests(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}
