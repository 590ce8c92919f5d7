package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/movie-platform/internal/platform/api"
	"github.com/example/movie-platform/internal/platform/auth"
	"github.com/example/movie-platform/internal/platform/httpserver"
)

const maxBodyBytes = 1 << 20

// Events receives product events after successful writes.
// *analytics.Publisher satisfies it.
type Events interface {
	Publish(subject, eventName, userID string, props map[string]any)
}

type noEvents struct{}

func (noEvents) Publish(string, string, string, map[string]any) {}

func events(ev Events) Events {
	if ev == nil {
		return noEvents{}
	}
	return ev
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("unexpected trailing data")
	}
	return nil
}

// requireUserID writes 401 and returns false when the request has no caller.
func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok || strings.TrimSpace(userID) == "" {
		api.Unauthorized(w, "UNAUTHORIZED", "authentication required", httpserver.RequestIDFromContext(r.Context()))
		return "", false
	}
	return userID, true
}

// movieIDParam parses the {movie_id} URL parameter, writing 400 on failure.
func movieIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := strings.TrimSpace(chi.URLParam(r, "movie_id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		api.BadRequest(w, "INVALID_MOVIE_ID", "movie_id must be a positive integer",
			httpserver.RequestIDFromContext(r.Context()), map[string]any{"movie_id": raw})
		return 0, false
	}
	return id, true
}

// optionalText trims s; blank becomes nil.
func optionalText(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
