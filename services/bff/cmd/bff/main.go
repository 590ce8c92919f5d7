package main

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/example/movie-platform/internal/platform/analytics"
	"github.com/example/movie-platform/internal/platform/auth"
	"github.com/example/movie-platform/internal/platform/config"
	"github.com/example/movie-platform/internal/platform/httpserver"
	"github.com/example/movie-platform/internal/platform/logging"
	"github.com/example/movie-platform/internal/platform/natsconn"
	"github.com/example/movie-platform/internal/platform/run"
	"github.com/example/movie-platform/services/bff/internal/backend"
	"github.com/example/movie-platform/services/bff/internal/cache"
	bffconfig "github.com/example/movie-platform/services/bff/internal/config"
	bffhandlers "github.com/example/movie-platform/services/bff/internal/handlers"
	bffhttp "github.com/example/movie-platform/services/bff/internal/http"
	"github.com/example/movie-platform/services/bff/internal/search"
	"github.com/example/movie-platform/services/bff/internal/tmdb"
	"github.com/example/movie-platform/services/bff/internal/youtube"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logging.New(cfg.LogLevel, zap.String("service", cfg.ServiceName))
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	bffCfg, err := bffconfig.LoadBFF()
	if err != nil {
		log.Error("load bff config", zap.Error(err))
		run.Exit(1)
	}

	// NATS is optional: without it there are no analytics events and no
	// cross-replica cache invalidation.
	var (
		nc     *nats.Conn
		events *analytics.Publisher
	)
	if conn, err := natsconn.Connect(natsconn.Options{Name: cfg.ServiceName, Logger: log}); err != nil {
		log.Warn("nats unavailable, analytics disabled", zap.Error(err))
	} else {
		nc = conn
		defer nc.Close()
		if js, err := nc.JetStream(); err != nil {
			log.Warn("jetstream unavailable, analytics disabled", zap.Error(err))
		} else {
			if err := analytics.EnsureStream(js); err != nil {
				log.Warn("analytics stream", zap.Error(err))
			}
			events = analytics.New(js, log)
		}
	}

	respCache, ready, closeCache := initCache(bffCfg, log)
	defer closeCache()
	if _, err := cache.SubscribeInvalidation(nc, cache.InvalidateSubject, respCache, log); err != nil {
		log.Warn("cache invalidation subscribe", zap.Error(err))
	}

	catalog := tmdb.New(tmdb.Options{APIKey: bffCfg.TMDBAPIKey, BaseURL: bffCfg.TMDBBaseURL, Logger: log})
	deps := bffhandlers.Deps{
		Catalog: catalog,
		Videos:  youtube.New(youtube.Options{APIKey: bffCfg.YouTubeAPIKey, BaseURL: bffCfg.YouTubeBaseURL, Logger: log}),
		Backend: backend.New(backend.Options{BaseURL: bffCfg.SocialBaseURL, Logger: log}),
		Cache:   respCache,
		Events:  events,
		Log:     log,
	}

	r := chi.NewRouter()
	httpserver.SetupRouter(r, httpserver.RouterConfig{ReadyFunc: ready, Logger: log, CORSOrigins: bffCfg.CORSOrigins})

	verifier := auth.JWTVerifier{Secret: bffCfg.JWTSecret}
	limiter := bffhttp.NewRateLimiter(bffCfg.RateLimitRPS, bffCfg.RateLimitBurst)

	r.Route("/v1", func(r chi.Router) {
		r.Use(limiter.Middleware)
		r.Use(auth.OptionalUser(verifier))

		r.Get("/home", bffhandlers.Home(deps))
		r.Get("/trending", bffhandlers.Trending(deps))
		r.Get("/stats", bffhandlers.Stats(deps))
		r.Get("/search", bffhandlers.Search(deps))
		r.Get("/search/live", search.LiveHandler(
			bffhandlers.SearchFunc(deps),
			bffCfg.SearchDebounce,
			bffhandlers.SearchObserver(deps, true),
			bffCfg.CORSOrigins,
			log,
		))

		r.Get("/movies/{movie_id}", bffhandlers.MovieDetail(deps))
		r.Get("/movies/{movie_id}/trailer", bffhandlers.Trailer(deps))
		r.Put("/movies/{movie_id}/review", bffhandlers.SubmitReview(deps))

		r.Get("/profile", bffhandlers.ProfilePage(deps))
		r.Patch("/profile/name", bffhandlers.UpdateName(deps))
		r.Put("/profile/interests", bffhandlers.UpdateInterests(deps))

		r.Get("/watchlist/{movie_id}", bffhandlers.WatchlistStatus(deps))
		r.Put("/watchlist/{movie_id}", bffhandlers.AddToWatchlist(deps))
		r.Delete("/watchlist/{movie_id}", bffhandlers.RemoveFromWatchlist(deps))
	})

	srv := httpserver.New(httpserver.Options{Addr: cfg.HTTP.Addr, ServiceName: cfg.ServiceName, Logger: log, Router: r})

	runner := run.New(log)
	runner.OnShutdown(srv.Shutdown)
	code := runner.WithSignals(func(context.Context) error {
		return srv.Start(log)
	})

	log.Info("exit", zap.Int("code", code))
	run.Exit(code)
}

// initCache prefers Redis when REDIS_URL is set and reachable, otherwise an
// in-process TTL cache.
func initCache(cfg bffconfig.BFFConfig, log *zap.Logger) (cache.Cache, func() error, func()) {
	noop := func() {}
	alwaysReady := func() error { return nil }
	if cfg.RedisURL == "" {
		return cache.NewTTLCache(cfg.CacheTTL), alwaysReady, noop
	}

	rc, err := cache.NewRedisCache(cfg.RedisURL, cfg.CacheTTL, log)
	if err != nil {
		log.Warn("invalid REDIS_URL, using in-memory cache", zap.Error(err))
		return cache.NewTTLCache(cfg.CacheTTL), alwaysReady, noop
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		log.Warn("redis unavailable, using in-memory cache", zap.Error(err))
		_ = rc.Close()
		return cache.NewTTLCache(cfg.CacheTTL), alwaysReady, noop
	}

	log.Info("bff cache: redis")
	ready := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		return rc.Ping(ctx)
	}
	return rc, ready, func() { _ = rc.Close() }
}
