// Package mongodb provides MongoDB client connection utilities.
package mongodb

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bissquit/runningsport/internal/pkg/retry"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Config contains MongoDB connection configuration.
type Config struct {
	URI             string
	MaxPoolSize     uint64
	ConnectAttempts int
	ConnectTimeout  time.Duration
}

// Connect creates a client and waits until the primary answers a ping.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, error) {
	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}
	if cfg.ConnectTimeout > 0 {
		opts.SetConnectTimeout(cfg.ConnectTimeout)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("create mongo client: %w", err)
	}

	attempts := 0
	err = retry.Do(ctx, "mongodb", cfg.ConnectAttempts, func(ctx context.Context) error {
		attempts++
		return client.Ping(ctx, readpref.Primary())
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo after %d attempts: %w", attempts, err)
	}

	slog.Info("connected to mongodb", "attempts", attempts)
	return client, nil
}
