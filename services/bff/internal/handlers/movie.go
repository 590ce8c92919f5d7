package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/example/movie-platform/internal/platform/analytics"
	"github.com/example/movie-platform/internal/platform/api"
	"github.com/example/movie-platform/services/bff/internal/backend"
	"github.com/example/movie-platform/services/bff/internal/tmdb"
	"github.com/example/movie-platform/services/bff/internal/viewmodel"
	"github.com/example/movie-platform/services/bff/internal/youtube"
)

type detailFailure struct {
	api.ErrorResponse
	viewmodel.Detail
}

type trailerResponse struct {
	MovieID  int64  `json:"movie_id"`
	Title    string `json:"title"`
	Found    bool   `json:"found"`
	VideoID  string `json:"video_id,omitempty"`
	EmbedURL string `json:"embed_url,omitempty"`
}

func lastViewKey(id int64) string { return "detail:last:" + strconv.FormatInt(id, 10) }

// MovieDetail fetches the catalog sections and local reviews concurrently. If
// any of them fails the last successfully built view is served marked stale,
// or a 502 with empty sections when there is none.
func MovieDetail(d Deps) http.HandlerFunc {
	d = d.withDefaults()
	return func(w http.ResponseWriter, r *http.Request) {
		rid := requestID(r)
		id, ok := movieID(w, r, rid)
		if !ok {
			return
		}

		var (
			movie    tmdb.Movie
			credits  tmdb.Credits
			external tmdb.ReviewPage
			images   tmdb.Images
			local    []backend.Review
		)
		g, ctx := errgroup.WithContext(r.Context())
		g.Go(func() (err error) { movie, err = d.Catalog.MovieDetails(ctx, id); return })
		g.Go(func() (err error) { credits, err = d.Catalog.MovieCredits(ctx, id); return })
		g.Go(func() (err error) { external, err = d.Catalog.MovieReviews(ctx, id, 1); return })
		g.Go(func() (err error) { images, err = d.Catalog.MovieImages(ctx, id); return })
		g.Go(func() (err error) { local, err = d.Backend.Reviews(ctx, id); return })

		if err := g.Wait(); err != nil {
			if errors.Is(err, tmdb.ErrNotFound) {
				api.NotFound(w, "MOVIE_NOT_FOUND", "Movie not found", rid)
				return
			}
			d.Log.Warn("movie detail fan-out failed",
				zap.Int64("movie_id", id),
				zap.String("request_id", rid),
				zap.Error(err),
			)
			var last viewmodel.Detail
			if d.Cache.Get(r.Context(), lastViewKey(id), &last) {
				last.Stale = true
				api.WriteJSON(w, http.StatusOK, last)
				return
			}
			api.WriteJSON(w, http.StatusBadGateway, detailFailure{
				ErrorResponse: api.ErrorResponse{Error: api.APIError{Code: "UPSTREAM_UNAVAILABLE", Message: "Movie details are unavailable", RequestID: rid}},
				Detail:        emptyDetail(),
			})
			return
		}

		if movie.ID == 0 {
			api.NotFound(w, "MOVIE_NOT_FOUND", "Movie not found", rid)
			return
		}

		view := viewmodel.BuildDetail(viewmodel.DetailInput{
			Movie:    movie,
			Credits:  credits,
			External: external.Results,
			Images:   images,
			Local:    local,
		})
		d.Cache.Set(r.Context(), lastViewKey(id), view)

		userID := ""
		if s, ok := signedIn(r); ok {
			userID = s.UserID
			mine, found, err := d.Backend.MyReview(r.Context(), s.Token, id)
			switch {
			case err != nil:
				d.Log.Warn("own review lookup", zap.Int64("movie_id", id), zap.Error(err))
				view = view.WithMyReview(s.UserID, local)
			case found:
				view = view.WithReview(mine)
			}
			in, err := d.Backend.InWatchlist(r.Context(), s.Token, id)
			if err != nil {
				d.Log.Warn("watchlist lookup", zap.Int64("movie_id", id), zap.Error(err))
			} else {
				view.InWatchlist = &in
			}
		}

		d.Events.Publish(analytics.SubjectMovieViewed, "movie_viewed", userID, map[string]any{
			"movie_id": id,
			"title":    movie.Title,
		})
		api.WriteJSON(w, http.StatusOK, view)
	}
}

func emptyDetail() viewmodel.Detail {
	return viewmodel.Detail{
		Hero:        viewmodel.Hero{Genres: []string{}, Cast: []string{}},
		CastAndCrew: []viewmodel.Member{},
		SidebarCast: []viewmodel.Member{},
		Reviews:     []viewmodel.ReviewItem{},
		Gallery:     viewmodel.Gallery{Backdrops: []string{}, Posters: []string{}},
	}
}

// Trailer looks up an embeddable trailer for the movie.
func Trailer(d Deps) http.HandlerFunc {
	d = d.withDefaults()
	return func(w http.ResponseWriter, r *http.Request) {
		rid := requestID(r)
		id, ok := movieID(w, r, rid)
		if !ok {
			return
		}

		movie, err := d.Catalog.MovieDetails(r.Context(), id)
		if errors.Is(err, tmdb.ErrNotFound) {
			api.NotFound(w, "MOVIE_NOT_FOUND", "Movie not found", rid)
			return
		}
		if err != nil {
			d.Log.Warn("trailer: movie details", zap.Int64("movie_id", id), zap.Error(err))
			api.BadGateway(w, "UPSTREAM_UNAVAILABLE", "Movie details are unavailable", rid)
			return
		}
		if movie.ID == 0 {
			api.NotFound(w, "MOVIE_NOT_FOUND", "Movie not found", rid)
			return
		}

		out := trailerResponse{MovieID: id, Title: movie.Title + " Trailer"}
		query := youtube.TrailerQuery(movie.Title, viewmodel.ReleaseYear(movie.ReleaseDate))
		videoID, found, err := d.Videos.SearchVideo(r.Context(), query, 1)
		if err != nil {
			d.Log.Warn("trailer search", zap.Int64("movie_id", id), zap.Error(err))
			api.BadGateway(w, "UPSTREAM_UNAVAILABLE", "Trailer search is unavailable", rid)
			return
		}
		if found {
			out.Found = true
			out.VideoID = videoID
			out.EmbedURL = youtube.EmbedURL(videoID)
		}

		userID := ""
		if s, ok := signedIn(r); ok {
			userID = s.UserID
		}
		d.Events.Publish(analytics.SubjectTrailerRequested, "trailer_requested", userID, map[string]any{
			"movie_id": id,
			"found":    found,
		})
		api.WriteJSON(w, http.StatusOK, out)
	}
}
