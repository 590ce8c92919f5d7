package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/example/movie-platform/internal/platform/api"
	"github.com/example/movie-platform/services/bff/internal/viewmodel"
)

type submitReviewReq struct {
	Rating  int    `json:"rating"`
	Content string `json:"content"`
}

type submitReviewResult struct {
	Review  any  `json:"review"`
	Created bool `json:"created"`
}

// SubmitReview creates or replaces the caller's review. The rating is checked
// here so an invalid review never reaches the backend.
func SubmitReview(d Deps) http.HandlerFunc {
	d = d.withDefaults()
	return func(w http.ResponseWriter, r *http.Request) {
		rid := requestID(r)
		s, ok := signedIn(r)
		if !ok {
			signInRequired(w, rid, "Please sign in to review this movie.")
			return
		}
		id, ok := movieID(w, r, rid)
		if !ok {
			return
		}
		var req submitReviewReq
		if !decodeJSON(w, r, rid, &req) {
			return
		}

		content, err := viewmodel.ValidateReview(req.Rating, req.Content)
		if err != nil {
			n := api.Failure("Rating required", "Please select a star rating before submitting.")
			if errors.Is(err, viewmodel.ErrRatingOutOfRange) {
				n = api.Failure("Invalid rating", "Ratings go from 1 to 5 stars.")
			}
			api.WriteErrorNotice(w, http.StatusBadRequest, "INVALID_RATING", err.Error(), rid, n)
			return
		}

		review, created, err := d.Backend.UpsertReview(r.Context(), s.Token, id, req.Rating, content)
		if err != nil {
			d.Log.Warn("submit review", zap.Int64("movie_id", id), zap.String("request_id", rid), zap.Error(err))
			api.WriteErrorNotice(w, http.StatusBadGateway, "REVIEW_WRITE_FAILED", "review write failed", rid,
				api.Failure("Error", "Failed to submit review. Please try again."))
			return
		}
		d.Cache.Invalidate(r.Context(), lastViewKey(id))

		title := "Review updated"
		status := http.StatusOK
		if created {
			title = "Review submitted"
			status = http.StatusCreated
		}
		writeNotice(w, status, submitReviewResult{Review: review, Created: created},
			api.Notice(title, "Thank you for your feedback!"))
	}
}
