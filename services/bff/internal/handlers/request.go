package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/movie-platform/internal/platform/api"
	"github.com/example/movie-platform/internal/platform/auth"
	"github.com/example/movie-platform/internal/platform/httpserver"
)

const maxRequestBodyBytes = 1 << 20 // 1 MiB

// decodeJSON reads up to maxRequestBodyBytes from r.Body and decodes JSON into dst.
// On failure it writes a 400 response and returns false.
func decodeJSON[T any](w http.ResponseWriter, r *http.Request, rid string, dst *T) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)).Decode(dst); err != nil {
		api.BadRequest(w, "INVALID_JSON", "Invalid JSON", rid, nil)
		return false
	}
	return true
}

// movieID parses {movie_id}, writing 400 when it is not a positive integer.
func movieID(w http.ResponseWriter, r *http.Request, rid string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "movie_id"), 10, 64)
	if err != nil || id <= 0 {
		api.BadRequest(w, "INVALID_MOVIE_ID", "movie_id must be a positive integer", rid, nil)
		return 0, false
	}
	return id, true
}

// signedIn returns the caller's session, or false when anonymous or expired.
func signedIn(r *http.Request) (auth.Session, bool) {
	s := auth.SessionFromContext(r.Context())
	now := time.Now()
	if s.State == auth.StateSignedIn && !s.Authenticated(now) {
		return s.SignOut(), false
	}
	return s, s.Token != "" && s.Authenticated(now)
}

func requestID(r *http.Request) string {
	return httpserver.RequestIDFromContext(r.Context())
}

func parseInt(v string, def, min, max int) int {
	if strings.TrimSpace(v) == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	if i < min {
		return min
	}
	if i > max {
		return max
	}
	return i
}
