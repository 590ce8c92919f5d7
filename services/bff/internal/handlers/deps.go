package handlers

import (
	"context"

	"go.uber.org/zap"

	"github.com/example/movie-platform/services/bff/internal/backend"
	"github.com/example/movie-platform/services/bff/internal/cache"
	"github.com/example/movie-platform/services/bff/internal/tmdb"
)

// Catalog is the movie metadata source. *tmdb.Client satisfies it.
type Catalog interface {
	PopularMovies(ctx context.Context, page int) (tmdb.MoviePage, error)
	TrendingMovies(ctx context.Context, window tmdb.Window, page int) (tmdb.MoviePage, error)
	SearchMovies(ctx context.Context, query string, page int) (tmdb.MoviePage, error)
	MovieDetails(ctx context.Context, id int64) (tmdb.Movie, error)
	MovieCredits(ctx context.Context, id int64) (tmdb.Credits, error)
	MovieReviews(ctx context.Context, id int64, page int) (tmdb.ReviewPage, error)
	MovieImages(ctx context.Context, id int64) (tmdb.Images, error)
	Stats(ctx context.Context) tmdb.Stats
}

// Videos finds trailers. *youtube.Client satisfies it.
type Videos interface {
	SearchVideo(ctx context.Context, query string, maxResults int) (string, bool, error)
}

// Backend holds user-generated data. *backend.Client satisfies it.
type Backend interface {
	Profile(ctx context.Context, token string) (backend.Profile, error)
	UpdateName(ctx context.Context, token string, name *string) (backend.Profile, error)
	UpdateInterests(ctx context.Context, token string, interests []string) (backend.Profile, error)
	Reviews(ctx context.Context, movieID int64) ([]backend.Review, error)
	MyReview(ctx context.Context, token string, movieID int64) (backend.Review, bool, error)
	UpsertReview(ctx context.Context, token string, movieID int64, rating int, content *string) (backend.Review, bool, error)
	Watchlist(ctx context.Context, token string) ([]backend.WatchlistEntry, error)
	InWatchlist(ctx context.Context, token string, movieID int64) (bool, error)
	AddToWatchlist(ctx context.Context, token string, movieID int64, title string, posterPath *string) (backend.WatchlistEntry, error)
	RemoveFromWatchlist(ctx context.Context, token string, movieID int64) error
}

// Events receives product events. *analytics.Publisher satisfies it.
type Events interface {
	Publish(subject, eventName, userID string, props map[string]any)
}

type Deps struct {
	Catalog Catalog
	Videos  Videos
	Backend Backend
	Cache   cache.Cache
	Events  Events
	Log     *zap.Logger
}

type noEvents struct{}

func (noEvents) Publish(string, string, string, map[string]any) {}

type noCache struct{}

func (noCache) Get(context.Context, string, any) bool { return false }
func (noCache) Set(context.Context, string, any) {}
func (noCache) Invalidate(context.Context, string) {}

func (d Deps) withDefaults() Deps {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Events == nil {
		d.Events = noEvents{}
	}
	if d.Cache == nil {
		d.Cache = noCache{}
	}
	return d
}
