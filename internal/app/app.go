package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/simp-lee/logger"
	"gorm.io/gorm"

	"github.com/okwareddevnest/movie-discovery-app/internal/config"
	"github.com/okwareddevnest/movie-discovery-app/internal/domain"
	"github.com/okwareddevnest/movie-discovery-app/internal/event"
	"github.com/okwareddevnest/movie-discovery-app/internal/middleware"
	"github.com/okwareddevnest/movie-discovery-app/internal/module/auth"
	"github.com/okwareddevnest/movie-discovery-app/internal/module/favorite"
	"github.com/okwareddevnest/movie-discovery-app/internal/module/movie"
	"github.com/okwareddevnest/movie-discovery-app/internal/module/review"
	"github.com/okwareddevnest/movie-discovery-app/internal/module/user"
)

const startupTimeout = 5 * time.Second

// App holds the core application dependencies and the HTTP server.
type App struct {
	engine  *gin.Engine
	db      *gorm.DB
	logger  *logger.Logger
	cfg     *config.Config
	tokens  *auth.TokenService
	closers []closer
}

// closer releases one optional integration on shutdown.
type closer struct {
	name  string
	close func() error
}

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

var newHTTPServer = func(addr string, handler http.Handler) httpServer {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

var notifyContext = func(parent context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}

var dialEvents = func(cfg *config.EventsConfig) (event.Publisher, error) {
	return event.DialRabbit(cfg.URL, cfg.Queue)
}

// integrations are the optional external services enabled in config.
type integrations struct {
	redis   *redis.Client
	avatars user.AvatarStore
	events  event.Publisher
	closers []closer
}

// New creates and wires a fully configured App from the given Config.
//
// It sets up logging, database, optional integrations (Redis, object storage,
// RabbitMQ), repositories, services, handlers, middleware and routes.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	success := false

	// 1. Logger.
	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}
	if cfg.Server.Mode == gin.DebugMode && cfg.Server.Host == "0.0.0.0" {
		log.Warn("insecure server config: debug mode on 0.0.0.0 exposes verbose errors and SQL logs")
	}
	defer func() {
		if success {
			return
		}
		if err := log.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}()

	// 2. Database, migrated when database.auto_migrate is set.
	db, err := config.SetupDatabase(&cfg.Database, log.Logger, domain.Models()...)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}
	defer func() {
		if success {
			return
		}
		closeDatabase(db)
	}()

	// 3. Optional integrations.
	infra, err := setupIntegrations(cfg, log.Logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if success {
			return
		}
		closeAll(infra.closers, log.Logger)
	}()

	// 4. Manual dependency injection: repository → service → handler → module.
	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, config.MustDuration(cfg.Auth.TokenExpiry, 720*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("setup token service: %w", err)
	}
	defer func() {
		if success {
			return
		}
		_ = tokens.Close()
	}()

	userRepo := user.NewUserRepository(db)
	authSvc, err := auth.NewService(userRepo, tokens, 0)
	if err != nil {
		return nil, fmt.Errorf("setup auth service: %w", err)
	}

	var userOpts []user.Option
	maxAvatar := int64(cfg.Storage.MaxSizeMB) << 20
	if infra.avatars != nil {
		userOpts = append(userOpts, user.WithAvatarStore(infra.avatars, maxAvatar))
	}

	var catalog movie.Catalog = movie.NewClient(&cfg.TMDB)
	if infra.redis != nil {
		catalog = movie.NewCachedCatalog(catalog, movie.NewRedisCache(infra.redis),
			config.MustDuration(cfg.Cache.TTL, 10*time.Minute), cfg.TMDB.Language)
	}

	modules := []Module{
		auth.NewModule(auth.NewHandler(authSvc)),
		user.NewModule(user.NewUserHandler(user.NewUserService(userRepo, userOpts...), maxAvatar), infra.avatars != nil),
		favorite.NewModule(favorite.NewFavoriteHandler(favorite.NewFavoriteService(favorite.NewFavoriteRepository(db), infra.events))),
		review.NewModule(review.NewReviewHandler(review.NewReviewService(review.NewReviewRepository(db), infra.events))),
		movie.NewModule(movie.NewMovieHandler(catalog)),
	}

	// 5. Gin engine with custom middleware (not gin.Default()).
	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()
	engine.Use(
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{TrustUpstream: false}),
		middleware.Logger(log.Logger, "/health"),
		middleware.Recovery(log.Logger),
		middleware.CORS(cfg.Server.CORS),
	)

	// 6. Routes.
	checks := []HealthCheck{{
		Name:  "database",
		Check: func(ctx context.Context) error { return config.PingDatabase(ctx, db) },
	}}
	if infra.redis != nil {
		rdb := infra.redis
		checks = append(checks, HealthCheck{
			Name:  "cache",
			Check: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
	}
	if err := RegisterRoutes(engine, &RouteDeps{
		Modules: modules,
		Gate:    middleware.Auth(tokens, userRepo),
		Checks:  checks,
	}); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	success = true
	return &App{
		engine:  engine,
		db:      db,
		logger:  log,
		cfg:     cfg,
		tokens:  tokens,
		closers: infra.closers,
	}, nil
}

// setupIntegrations connects the services enabled in cfg. Object storage is
// required once enabled; Redis and RabbitMQ only degrade features, so an
// unreachable broker or cache is logged and the app starts without it.
func setupIntegrations(cfg *config.Config, log *slog.Logger) (*integrations, error) {
	infra := &integrations{events: event.Nop{}}
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	if cfg.Cache.Enabled {
		rdb := movie.NewRedisClient(&cfg.Cache)
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable, catalog cache will be bypassed until it recovers",
				slog.String("addr", cfg.Cache.Addr), slog.Any("error", err))
		} else {
			log.Info("redis connected", slog.String("addr", cfg.Cache.Addr))
		}
		infra.redis = rdb
		infra.closers = append(infra.closers, closer{name: "redis", close: rdb.Close})
	}

	if cfg.Storage.Enabled {
		client, err := user.NewMinioClient(&cfg.Storage)
		if err != nil {
			closeAll(infra.closers, log)
			return nil, fmt.Errorf("setup object storage: %w", err)
		}
		store, err := user.NewMinioAvatarStore(ctx, client, cfg.Storage.Bucket, cfg.Storage.PublicBaseURL)
		if err != nil {
			closeAll(infra.closers, log)
			return nil, fmt.Errorf("setup object storage: %w", err)
		}
		infra.avatars = store
		log.Info("object storage ready", slog.String("endpoint", cfg.Storage.Endpoint), slog.String("bucket", cfg.Storage.Bucket))
	}

	if cfg.Events.Enabled {
		pub, err := dialEvents(&cfg.Events)
		if err != nil {
			log.Warn("event broker unreachable, activity events disabled", slog.Any("error", err))
		} else {
			infra.events = pub
			infra.closers = append(infra.closers, closer{name: "events", close: pub.Close})
			log.Info("event publisher ready", slog.String("queue", cfg.Events.Queue))
		}
	}

	return infra, nil
}

// Handler exposes the configured engine, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.engine
}

// Run starts the HTTP server and blocks until a shutdown signal is received.
// It performs graceful shutdown with a 5-second timeout, then closes the
// integrations, the database and the logger.
func (a *App) Run() error {
	if a == nil {
		return errors.New("app is nil")
	}
	if a.cfg == nil {
		return errors.New("app config is nil")
	}
	if a.engine == nil {
		return errors.New("app engine is nil")
	}

	log := slog.Default()
	if a.logger != nil {
		log = a.logger.Logger
	}

	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	srv := newHTTPServer(addr, a.engine)

	// Listen for SIGINT / SIGTERM.
	ctx, stop := notifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("server error: %w", err)
	}

	if runErr == nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", slog.Any("error", err))
		}
	}

	closeAll(a.closers, log)
	if a.tokens != nil {
		_ = a.tokens.Close()
	}

	if a.db != nil {
		closeDatabase(a.db)
		log.Info("database connection closed")
	}

	log.Info("server stopped")
	if a.logger != nil {
		if err := a.logger.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}

	return runErr
}

// closeAll closes in reverse order of setup.
func closeAll(closers []closer, log *slog.Logger) {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].close(); err != nil {
			log.Error("close error", slog.String("component", closers[i].name), slog.Any("error", err))
		}
	}
}

func closeDatabase(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		slog.Error("database close error", slog.Any("error", err))
	}
}
