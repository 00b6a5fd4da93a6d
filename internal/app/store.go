package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/alageshkumardev-create/FitzdoPoc/internal/config"
	"github.com/alageshkumardev-create/FitzdoPoc/internal/repository"
	esrepo "github.com/alageshkumardev-create/FitzdoPoc/internal/repository/elasticsearch"
	"github.com/alageshkumardev-create/FitzdoPoc/internal/repository/memory"
	mongorepo "github.com/alageshkumardev-create/FitzdoPoc/internal/repository/mongo"
	"github.com/alageshkumardev-create/FitzdoPoc/internal/repository/postgres"
	"github.com/alageshkumardev-create/FitzdoPoc/pkg/database"
	"github.com/alageshkumardev-create/FitzdoPoc/pkg/health"
)

// ProductBackend is an opened product store together with its health check
// and the function that releases its connections.
type ProductBackend struct {
	Name  string
	Store repository.ProductStore

	// Ping is nil for stores without an external dependency.
	Ping  health.Checker
	close func(context.Context) error
}

// Close releases the backend's connections.
func (b *ProductBackend) Close(ctx context.Context) error {
	if b.close == nil {
		return nil
	}
	return b.close(ctx)
}

// OpenProductStore connects to the product store selected by cfg.Store.
// PostgreSQL migrations and MongoDB indexes are applied before it returns.
func OpenProductStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*ProductBackend, error) {
	switch cfg.Store {
	case config.StoreMemory:
		logger.Info("in-memory product store initialized")
		return &ProductBackend{Name: cfg.Store, Store: memory.NewProductStore()}, nil

	case config.StorePostgres:
		pgCfg := cfg.Postgres()
		pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := postgres.Migrate(ctx, pool, logger); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, config.ServiceName); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				logger.Warn("failed to register pool metrics", slog.String("error", err.Error()))
			}
		}
		repo := postgres.NewProductRepository(pool)
		logger.Info("postgres product store initialized",
			slog.String("host", pgCfg.Host),
			slog.String("database", pgCfg.DBName),
		)
		return &ProductBackend{
			Name:  cfg.Store,
			Store: repo,
			Ping:  repo.Ping,
			close: func(context.Context) error {
				pool.Close()
				return nil
			},
		}, nil

	case config.StoreMongo:
		client, err := database.NewMongoClient(ctx, cfg.Mongo(), logger)
		if err != nil {
			return nil, fmt.Errorf("connect to mongo: %w", err)
		}
		mode := mongorepo.TextSubstring
		if cfg.MongoTextSearch {
			mode = mongorepo.TextIndex
		}
		repo := mongorepo.NewProductRepository(client.Database(cfg.MongoDatabase), cfg.MongoCollection, mode, logger)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("ensure mongo indexes: %w", err)
		}
		logger.Info("mongo product store initialized",
			slog.String("database", cfg.MongoDatabase),
			slog.String("collection", cfg.MongoCollection),
			slog.Bool("text_index", cfg.MongoTextSearch),
		)
		return &ProductBackend{
			Name:  cfg.Store,
			Store: repo,
			Ping:  repo.Ping,
			close: client.Disconnect,
		}, nil

	case config.StoreElasticsearch:
		store, err := esrepo.New(ctx, esrepo.Config{
			URL:      cfg.ElasticsearchURL,
			Index:    cfg.ElasticsearchIndex,
			Username: cfg.ElasticsearchUsername,
			Password: cfg.ElasticsearchPassword,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("init elasticsearch: %w", err)
		}
		logger.Info("elasticsearch product store initialized",
			slog.String("url", cfg.ElasticsearchURL),
			slog.String("index", cfg.ElasticsearchIndex),
		)
		return &ProductBackend{Name: cfg.Store, Store: store, Ping: store.Ping}, nil

	default:
		return nil, fmt.Errorf("unknown product store %q", cfg.Store)
	}
}
