package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alageshkumardev-create/FitzdoPoc/internal/cart"
	"github.com/alageshkumardev-create/FitzdoPoc/internal/config"
	"github.com/alageshkumardev-create/FitzdoPoc/internal/event"
	handler "github.com/alageshkumardev-create/FitzdoPoc/internal/handler/http"
	"github.com/alageshkumardev-create/FitzdoPoc/internal/repository/memory"
	redisrepo "github.com/alageshkumardev-create/FitzdoPoc/internal/repository/redis"
	"github.com/alageshkumardev-create/FitzdoPoc/internal/seed"
	"github.com/alageshkumardev-create/FitzdoPoc/internal/service"
	"github.com/alageshkumardev-create/FitzdoPoc/pkg/database"
	"github.com/alageshkumardev-create/FitzdoPoc/pkg/health"
	pkgkafka "github.com/alageshkumardev-create/FitzdoPoc/pkg/kafka"
	"github.com/alageshkumardev-create/FitzdoPoc/pkg/middleware"
	"github.com/alageshkumardev-create/FitzdoPoc/pkg/tracing"
)

// App wires together all dependencies and runs the catalog service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	backend        *ProductBackend
	rdb            *redis.Client
	producer       *pkgkafka.Producer
	shutdownTracer func(context.Context) error
	handler        http.Handler
	httpServer     *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
// The in-memory product store is always seeded from the embedded fixture;
// other stores only when SEED_ON_START is set.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	a := &App{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			a.closeResources(context.Background())
		}
	}()

	database.SetSlowQueryLogging(cfg.SlowQueryThreshold(), logger)

	a.shutdownTracer, err = tracing.InitTracer(ctx, cfg.Tracing())
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Product store.
	a.backend, err = OpenProductStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if cfg.Store == config.StoreMemory || cfg.SeedOnStart {
		products, err := seed.Load()
		if err != nil {
			return nil, fmt.Errorf("load seed products: %w", err)
		}
		if _, err := seed.Run(ctx, a.backend.Store, products, logger); err != nil {
			return nil, err
		}
	}

	// Cart store.
	var cartStore cart.Store
	switch cfg.CartStore {
	case config.CartStoreRedis:
		a.rdb, err = database.NewRedisClient(ctx, cfg.Redis(), logger)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		cartStore = redisrepo.NewCartRepository(a.rdb, cfg.CartTTLDuration())
		logger.Info("redis cart store initialized", slog.String("addr", cfg.Redis().Addr()))
	default:
		cartStore = memory.NewCartStore()
		logger.Info("in-memory cart store initialized")
	}

	// Cart events.
	var publisher cart.Publisher = event.Noop{}
	if cfg.KafkaEnabled {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		publisher = event.NewProducer(a.producer, logger)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	// Build the dependency graph.
	catalogService := service.NewCatalogService(a.backend.Store, a.backend.Name, logger)
	cartService := cart.NewService(cartStore, catalogService, publisher, logger, cfg.CartTTLDuration())

	// Health checks.
	healthHandler := health.NewHandler()
	if a.backend.Ping != nil {
		healthHandler.RegisterCritical(a.backend.Name, a.backend.Ping)
	}
	if a.rdb != nil {
		rdb := a.rdb
		healthHandler.RegisterCritical("redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}
	if a.producer != nil {
		healthHandler.RegisterNonCritical("kafka", a.producer.Ping)
	}

	// HTTP router.
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSOrigins
	a.handler = handler.NewRouter(handler.RouterConfig{
		ServiceName:    config.ServiceName,
		RequestTimeout: cfg.RequestTimeout,
		PprofCIDRs:     cfg.PprofCIDRs,
		CORS:           corsCfg,
		RateLimit:      middleware.RateLimitConfig{RPS: cfg.RateLimitRPS, Burst: cfg.RateLimitBurst},
		ProductMaxAge:  cfg.ProductCacheMaxAge,
	}, catalogService, cartService, healthHandler, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           a.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return a, nil
}

// Handler returns the HTTP handler serving every route.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
			slog.String("store", a.backend.Name),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		a.closeResources(context.Background())
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	a.closeResources(shutdownCtx)

	a.logger.Info("application shutdown complete")
	return nil
}

func (a *App) closeResources(ctx context.Context) {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}
	if a.backend != nil {
		if err := a.backend.Close(ctx); err != nil {
			a.logger.Error("product store close error", slog.String("error", err.Error()))
		}
	}
	if a.shutdownTracer != nil {
		if err := a.shutdownTracer(ctx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		}
	}
}
