package app

import (
	"context"
	"fmt"
	"time"

	"github.com/bissquit/runningsport/internal/config"
	"github.com/bissquit/runningsport/internal/pkg/metrics"
	"github.com/bissquit/runningsport/internal/pkg/mongodb"
	"github.com/bissquit/runningsport/internal/pkg/postgres"
	"github.com/bissquit/runningsport/internal/users"
	usersmongo "github.com/bissquit/runningsport/internal/users/mongo"
	userspostgres "github.com/bissquit/runningsport/internal/users/postgres"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const dbMetricsInterval = 15 * time.Second

// userStore is the repository selected by database.driver together with the
// hooks the app needs for readiness and shutdown.
type userStore struct {
	driver string
	repo   users.Repository
	ping   func(ctx context.Context) error
	close  func(ctx context.Context) error
}

// openStore connects the configured backend. Background work such as pool
// metrics collection runs until bgCtx is canceled.
func openStore(ctx, bgCtx context.Context, cfg *config.Config) (*userStore, error) {
	switch cfg.Database.Driver {
	case config.DriverMongo:
		return openMongoStore(ctx, cfg)
	default:
		return openPostgresStore(ctx, bgCtx, cfg)
	}
}

// openPostgresStore connects with retry and only then applies migrations.
func openPostgresStore(ctx, bgCtx context.Context, cfg *config.Config) (*userStore, error) {
	pool, err := postgres.Connect(ctx, postgres.Config{
		URL:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnectAttempts: cfg.Database.ConnectAttempts,
	})
	if err != nil {
		return nil, err
	}

	if cfg.Database.Migrate {
		if err := postgres.Migrate(cfg.Database.URL); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
	}

	go metrics.CollectDBPoolMetrics(bgCtx, pool, dbMetricsInterval)

	return &userStore{
		driver: config.DriverPostgres,
		repo:   userspostgres.NewRepository(pool),
		ping:   pool.Ping,
		close: func(context.Context) error {
			pool.Close()
			return nil
		},
	}, nil
}

func openMongoStore(ctx context.Context, cfg *config.Config) (*userStore, error) {
	client, err := mongodb.Connect(ctx, mongodb.Config{
		URI:             cfg.Mongo.URI,
		MaxPoolSize:     cfg.Mongo.MaxPoolSize,
		ConnectAttempts: cfg.Database.ConnectAttempts,
		ConnectTimeout:  cfg.Database.ConnectTimeout,
	})
	if err != nil {
		return nil, err
	}

	repo := usersmongo.NewRepository(client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection))
	if err := repo.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return &userStore{
		driver: config.DriverMongo,
		repo:   repo,
		ping: func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		},
		close: client.Disconnect,
	}, nil
}
