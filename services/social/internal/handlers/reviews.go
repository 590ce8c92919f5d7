package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/example/movie-platform/internal/platform/analytics"
	"github.com/example/movie-platform/internal/platform/api"
	"github.com/example/movie-platform/internal/platform/httpserver"
	"github.com/example/movie-platform/services/social/internal/store"
)

const (
	MinRating = 1
	MaxRating = 5
)

type upsertReviewRequest struct {
	Rating  int     `json:"rating"`
	Content *string `json:"content"`
}

type reviewsResponse struct {
	Reviews []store.Review `json:"reviews"`
}

type upsertReviewResponse struct {
	Review  store.Review `json:"review"`
	Created bool         `json:"created"`
}

// ListReviews handles GET /v1/reviews/{movie_id}. Public, newest first.
func ListReviews(rs store.ReviewStore, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		movieID, ok := movieIDParam(w, r)
		if !ok {
			return
		}
		reviews, err := rs.ListByMovie(r.Context(), movieID)
		if err != nil {
			log.Error("list reviews", zap.Int64("movie_id", movieID), zap.Error(err))
			api.Internal(w, httpserver.RequestIDFromContext(r.Context()))
			return
		}
		api.WriteJSON(w, http.StatusOK, reviewsResponse{Reviews: reviews})
	}
}

// GetMyReview handles GET /v1/reviews/{movie_id}/mine.
func GetMyReview(rs store.ReviewStore, log *zap.Logger) http.HandlerFunc {
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

		review, err := rs.Get(r.Context(), userID, movieID)
		if errors.Is(err, store.ErrNotFound) {
			api.NotFound(w, "NOT_FOUND", "no review for this movie", rid)
			return
		}
		if err != nil {
			log.Error("get review", zap.Int64("movie_id", movieID), zap.Error(err))
			api.Internal(w, rid)
			return
		}
		api.WriteJSON(w, http.StatusOK, review)
	}
}

// UpsertReview handles PUT /v1/reviews/{movie_id}: one review per user and movie.
func UpsertReview(rs store.ReviewStore, ev Events, log *zap.Logger) http.HandlerFunc {
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

		var req upsertReviewRequest
		if err := decodeJSON(w, r, &req); err != nil {
			api.BadRequest(w, "INVALID_JSON", "invalid JSON", rid, nil)
			return
		}
		if req.Rating < MinRating || req.Rating > MaxRating {
			api.BadRequest(w, "INVALID_RATING", "rating must be between 1 and 5", rid,
				map[string]any{"rating": req.Rating})
			return
		}

		review, created, err := rs.Upsert(r.Context(), store.Review{
			UserID:  userID,
			MovieID: movieID,
			Rating:  req.Rating,
			Content: optionalText(req.Content),
		})
		if err != nil {
			log.Error("upsert review", zap.Int64("movie_id", movieID), zap.Error(err))
			api.Internal(w, rid)
			return
		}

		events(ev).Publish(analytics.SubjectReviewSubmitted, "review_submitted", userID, map[string]any{
			"movie_id":    movieID,
			"rating":      review.Rating,
			"has_content": review.Content != nil,
			"created":     created,
		})

		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		api.WriteJSON(w, status, upsertReviewResponse{Review: review, Created: created})
	}
}
