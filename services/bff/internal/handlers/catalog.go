package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/example/movie-platform/internal/platform/analytics"
	"github.com/example/movie-platform/internal/platform/api"
	"github.com/example/movie-platform/internal/platform/auth"
	"github.com/example/movie-platform/services/bff/internal/tmdb"
	"github.com/example/movie-platform/services/bff/internal/viewmodel"
)

type homeResponse struct {
	Hero     *viewmodel.MovieCard  `json:"hero"`
	Movies   []viewmodel.MovieCard `json:"movies"`
	Count    int                   `json:"count"`
	Degraded bool                  `json:"degraded,omitempty"`
}

type listResponse struct {
	Movies   []viewmodel.MovieCard `json:"movies"`
	Page     int                   `json:"page"`
	Degraded bool                  `json:"degraded,omitempty"`
}

type searchResponse struct {
	Query    string                `json:"query"`
	Results  []viewmodel.MovieCard `json:"results"`
	Degraded bool                  `json:"degraded,omitempty"`
}

// Home serves the landing page: popular movies with the first one featured.
func Home(d Deps) http.HandlerFunc {
	d = d.withDefaults()
	return func(w http.ResponseWriter, r *http.Request) {
		const key = "home:1"
		var out homeResponse
		if d.Cache.Get(r.Context(), key, &out) {
			api.WriteJSON(w, http.StatusOK, out)
			return
		}

		page, err := d.Catalog.PopularMovies(r.Context(), 1)
		if err != nil {
			d.Log.Warn("home: popular movies", zap.Error(err), zap.String("request_id", requestID(r)))
			api.WriteJSON(w, http.StatusOK, homeResponse{Movies: []viewmodel.MovieCard{}, Degraded: true})
			return
		}

		out = homeResponse{Movies: viewmodel.Cards(page.Results)}
		out.Count = len(out.Movies)
		if out.Count > 0 {
			hero := out.Movies[0]
			out.Hero = &hero
		}
		d.Cache.Set(r.Context(), key, out)
		api.WriteJSON(w, http.StatusOK, out)
	}
}

// Trending serves today's trending movies.
func Trending(d Deps) http.HandlerFunc {
	d = d.withDefaults()
	return func(w http.ResponseWriter, r *http.Request) {
		n := parseInt(r.URL.Query().Get("page"), 1, 1, 500)
		key := "trending:day:" + strconv.Itoa(n)
		var out listResponse
		if d.Cache.Get(r.Context(), key, &out) {
			api.WriteJSON(w, http.StatusOK, out)
			return
		}

		page, err := d.Catalog.TrendingMovies(r.Context(), tmdb.WindowDay, n)
		if err != nil {
			d.Log.Warn("trending movies", zap.Error(err), zap.String("request_id", requestID(r)))
			api.WriteJSON(w, http.StatusOK, listResponse{Movies: []viewmodel.MovieCard{}, Page: n, Degraded: true})
			return
		}
		out = listResponse{Movies: viewmodel.Cards(page.Results), Page: n}
		d.Cache.Set(r.Context(), key, out)
		api.WriteJSON(w, http.StatusOK, out)
	}
}

// Stats serves the estimated catalog statistics. It never fails; the catalog
// client substitutes fallback figures itself.
func Stats(d Deps) http.HandlerFunc {
	d = d.withDefaults()
	return func(w http.ResponseWriter, r *http.Request) {
		const key = "stats"
		var out tmdb.Stats
		if d.Cache.Get(r.Context(), key, &out) {
			api.WriteJSON(w, http.StatusOK, out)
			return
		}
		out = d.Catalog.Stats(r.Context())
		if out != tmdb.FallbackStats {
			d.Cache.Set(r.Context(), key, out)
		}
		api.WriteJSON(w, http.StatusOK, out)
	}
}

// Search is the one-shot search endpoint. A blank query returns no results
// without asking the catalog.
func Search(d Deps) http.HandlerFunc {
	d = d.withDefaults()
	find := SearchFunc(d)
	observe := SearchObserver(d, false)
	return func(w http.ResponseWriter, r *http.Request) {
		q := strings.TrimSpace(r.URL.Query().Get("q"))
		if q == "" {
			api.WriteJSON(w, http.StatusOK, searchResponse{Results: []viewmodel.MovieCard{}})
			return
		}

		results, err := find(r.Context(), q)
		if err != nil {
			d.Log.Warn("search movies", zap.Error(err), zap.String("request_id", requestID(r)))
			api.WriteJSON(w, http.StatusOK, searchResponse{Query: q, Results: []viewmodel.MovieCard{}, Degraded: true})
			return
		}
		userID, _ := auth.UserIDFromContext(r.Context())
		observe(r.Context(), userID, q, len(results))
		api.WriteJSON(w, http.StatusOK, searchResponse{Query: q, Results: results})
	}
}

// SearchFunc runs a catalog search for the live search debouncer.
func SearchFunc(d Deps) func(ctx context.Context, query string) ([]viewmodel.MovieCard, error) {
	return func(ctx context.Context, query string) ([]viewmodel.MovieCard, error) {
		page, err := d.Catalog.SearchMovies(ctx, query, 1)
		if err != nil {
			return nil, err
		}
		return viewmodel.Cards(page.Results), nil
	}
}

// SearchObserver records a completed search as a product event. live marks
// searches issued over the websocket.
func SearchObserver(d Deps, live bool) func(ctx context.Context, userID, query string, results int) {
	d = d.withDefaults()
	return func(_ context.Context, userID, query string, results int) {
		d.Events.Publish(analytics.SubjectSearchPerformed, "search_performed", userID, map[string]any{
			"query":         query,
			"results_count": results,
			"live":          live,
		})
	}
}
