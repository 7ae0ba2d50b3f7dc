package database

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ConnectMongo connects and pings, retrying with exponential backoff up to
// attempts times before giving up.
func ConnectMongo(ctx context.Context, uri, dbName string, attempts int, logger *zap.Logger) (*mongo.Database, *mongo.Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(10).
		SetServerSelectionTimeout(5 * time.Second)

	var client *mongo.Client
	connect := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()

		c, err := mongo.Connect(attemptCtx, opts)
		if err != nil {
			return err
		}
		if err := c.Ping(attemptCtx, nil); err != nil {
			_ = c.Disconnect(context.Background())
			return err
		}
		client = c
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(max(attempts-1, 0))),
		ctx,
	)
	notify := func(err error, wait time.Duration) {
		logger.Warn("MongoDB connection failed, retrying", zap.Error(err), zap.Duration("wait", wait))
	}
	if err := backoff.RetryNotify(connect, policy, notify); err != nil {
		logger.Error("MongoDB connection failed", zap.Error(err))
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}

	logger.Info("MongoDB connected successfully", zap.String("database", dbName))
	return client.Database(dbName), client, nil
}
