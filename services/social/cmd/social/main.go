package main

import (
	"context"
	"net"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/example/movie-platform/internal/platform/analytics"
	"github.com/example/movie-platform/internal/platform/auth"
	"github.com/example/movie-platform/internal/platform/config"
	"github.com/example/movie-platform/internal/platform/db"
	"github.com/example/movie-platform/internal/platform/httpserver"
	"github.com/example/movie-platform/internal/platform/logging"
	"github.com/example/movie-platform/internal/platform/natsconn"
	"github.com/example/movie-platform/internal/platform/run"
	"github.com/example/movie-platform/services/social/internal/handlers"
	"github.com/example/movie-platform/services/social/internal/store"
)

type stores struct {
	profiles  store.ProfileStore
	reviews   store.ReviewStore
	watchlist store.WatchlistStore
	ready     func() error
}

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

	jwtSecret := config.String("JWT_SECRET", "")
	if jwtSecret == "" {
		log.Error("JWT_SECRET is required")
		run.Exit(1)
	}
	verifier := auth.JWTVerifier{Secret: []byte(jwtSecret)}

	st, closePool := initStores(cfg, log)
	if closePool != nil {
		defer closePool()
	}

	// Analytics events are best effort; a missing NATS only disables them.
	var events *analytics.Publisher
	nc, err := natsconn.Connect(natsconn.Options{Name: cfg.ServiceName, Logger: log})
	if err != nil {
		log.Warn("nats unavailable, analytics disabled", zap.Error(err))
	} else {
		defer nc.Close()
		js, err := nc.JetStream()
		if err != nil {
			log.Warn("jetstream unavailable, analytics disabled", zap.Error(err))
		} else {
			if err := analytics.EnsureStream(js); err != nil {
				log.Warn("analytics stream", zap.Error(err))
			}
			events = analytics.New(js, log)
		}
	}

	r := chi.NewRouter()
	httpserver.SetupRouter(r, httpserver.RouterConfig{ReadyFunc: st.ready, Logger: log})

	r.Get("/v1/reviews/{movie_id}", handlers.ListReviews(st.reviews, log))
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser(verifier))

		r.Get("/v1/profiles/me", handlers.GetProfile(st.profiles, events, log))
		r.Patch("/v1/profiles/me/name", handlers.UpdateName(st.profiles, events, log))
		r.Put("/v1/profiles/me/interests", handlers.UpdateInterests(st.profiles, events, log))

		r.Get("/v1/reviews/{movie_id}/mine", handlers.GetMyReview(st.reviews, log))
		r.Put("/v1/reviews/{movie_id}", handlers.UpsertReview(st.reviews, events, log))

		r.Get("/v1/watchlist", handlers.ListWatchlist(st.watchlist, log))
		r.Get("/v1/watchlist/{movie_id}", handlers.WatchlistContains(st.watchlist, log))
		r.Put("/v1/watchlist/{movie_id}", handlers.AddToWatchlist(st.watchlist, events, log))
		r.Delete("/v1/watchlist/{movie_id}", handlers.RemoveFromWatchlist(st.watchlist, events, log))
	})

	srv := httpserver.New(httpserver.Options{Addr: cfg.HTTP.Addr, ServiceName: cfg.ServiceName, Logger: log, Router: r})

	// gRPC carries the standard health service for orchestration health checks.
	grpcAddr := config.String("GRPC_ADDR", ":9090")
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		log.Error("grpc listen", zap.Error(err))
		run.Exit(1)
	}
	grpcSrv := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcSrv, healthSrv)
	reflection.Register(grpcSrv)
	go func() {
		log.Info("grpc server starting", zap.String("addr", grpcAddr))
		if err := grpcSrv.Serve(lis); err != nil {
			log.Error("grpc serve", zap.Error(err))
		}
	}()

	runner := run.New(log)
	// Hooks run in reverse: HTTP drains first, then gRPC.
	runner.OnShutdown(func(ctx context.Context) error {
		healthSrv.Shutdown()
		stopped := make(chan struct{})
		go func() {
			grpcSrv.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-ctx.Done():
			grpcSrv.Stop()
		}
		return nil
	})
	runner.OnShutdown(srv.Shutdown)
	code := runner.WithSignals(func(ctx context.Context) error {
		go watchReadiness(ctx, healthSrv, cfg.ServiceName, st.ready, log)
		return srv.Start(log)
	})

	log.Info("exit", zap.Int("code", code))
	run.Exit(code)
}

// watchReadiness mirrors the HTTP readiness check into the gRPC health service.
func watchReadiness(ctx context.Context, hs *health.Server, service string, ready func() error, log *zap.Logger) {
	t := time.NewTicker(15 * time.Second)
	defer t.Stop()
	last := healthpb.HealthCheckResponse_UNKNOWN
	for {
		status := healthpb.HealthCheckResponse_SERVING
		if err := ready(); err != nil {
			status = healthpb.HealthCheckResponse_NOT_SERVING
			if last != status {
				log.Warn("service not ready", zap.Error(err))
			}
		}
		if status != last {
			hs.SetServingStatus("", status)
			hs.SetServingStatus(service, status)
			last = status
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

// initStores selects the store backend.
// In production (APP_ENV=production) it requires a working Postgres connection
// and terminates the process otherwise.
func initStores(cfg config.AppConfig, log *zap.Logger) (stores, func()) {
	dsn := config.String("DATABASE_URL", "")
	if dsn == "" {
		if cfg.IsProduction() {
			log.Error("DATABASE_URL is required in production")
			_ = log.Sync()
			run.Exit(1)
		}
		log.Warn("DATABASE_URL not set, using in-memory stores (development only)")
		return memoryStores(), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	pool, err := db.Open(ctx, dsn, db.PoolOptions{MaxConns: int32(config.Int("DB_MAX_CONNS", 10))})
	if err != nil {
		if cfg.IsProduction() {
			log.Error("postgres is required in production but unavailable", zap.Error(err))
			_ = log.Sync()
			run.Exit(1)
		}
		log.Warn("postgres unavailable, falling back to in-memory stores", zap.Error(err))
		return memoryStores(), nil
	}

	if err := db.Migrate(ctx, pool, store.Schema); err != nil {
		log.Error("apply schema", zap.Error(err))
		pool.Close()
		_ = log.Sync()
		run.Exit(1)
	}

	log.Info("social stores: postgres")
	return postgresStores(pool), pool.Close
}

func memoryStores() stores {
	profiles := store.NewInMemoryProfileStore()
	return stores{
		profiles:  profiles,
		reviews:   store.NewInMemoryReviewStore(profiles),
		watchlist: store.NewInMemoryWatchlistStore(),
		ready:     func() error { return nil },
	}
}

func postgresStores(pool *pgxpool.Pool) stores {
	return stores{
		profiles:  store.NewPostgresProfileStore(pool),
		reviews:   store.NewPostgresReviewStore(pool),
		watchlist: store.NewPostgresWatchlistStore(pool),
		ready: func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			return store.CheckSchema(ctx, pool)
		},
	}
}
