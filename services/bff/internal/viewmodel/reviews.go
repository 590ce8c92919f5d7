package viewmodel

import (
	"time"

	"github.com/example/movie-platform/services/bff/internal/backend"
	"github.com/example/movie-platform/services/bff/internal/tmdb"
)

const AnonymousUser = "Anonymous User"

type ReviewSource string

const (
	SourceLocal    ReviewSource = "local"
	SourceExternal ReviewSource = "external"
)

// ReviewItem is one entry of the merged review list. Rating is on the 1-5
// scale and nil when an external author gave none.
type ReviewItem struct {
	ID        string       `json:"id"`
	Source    ReviewSource `json:"source"`
	Author    string       `json:"author"`
	Rating    *float64     `json:"rating"`
	Content   string       `json:"content"`
	CreatedAt string       `json:"created_at"`
	URL       string       `json:"url,omitempty"`
}

// MergeReviews puts local reviews first in the order given, then external ones
// in catalog order. No deduplication.
func MergeReviews(local []backend.Review, external []tmdb.Review) []ReviewItem {
	out := make([]ReviewItem, 0, len(local)+len(external))
	for _, r := range local {
		author := AnonymousUser
		if r.Username != nil && *r.Username != "" {
			author = *r.Username
		}
		rating := float64(r.Rating)
		item := ReviewItem{
			ID:        r.ID,
			Source:    SourceLocal,
			Author:    author,
			Rating:    &rating,
			CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
		}
		if r.Content != nil {
			item.Content = *r.Content
		}
		out = append(out, item)
	}
	for _, r := range external {
		author := r.Author
		if author == "" {
			author = r.AuthorDetails.Username
		}
		if author == "" {
			author = AnonymousUser
		}
		var rating *float64
		if r.AuthorDetails.Rating != nil {
			v := *r.AuthorDetails.Rating / 2
			rating = &v
		}
		out = append(out, ReviewItem{
			ID:        r.ID,
			Source:    SourceExternal,
			Author:    author,
			Rating:    rating,
			Content:   r.Content,
			CreatedAt: r.CreatedAt,
			URL:       r.URL,
		})
	}
	return out
}

// LocalRatings extracts the star ratings fed into BlendedRating.
func LocalRatings(local []backend.Review) []int {
	out := make([]int, 0, len(local))
	for _, r := range local {
		out = append(out, r.Rating)
	}
	return out
}
