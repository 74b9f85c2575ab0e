package mongo

import (
	"context"
	"time"

	mongolib "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/fastygo/taskdesk/internal/config"
)

// NewClient connects to MongoDB and verifies the primary is reachable.
func NewClient(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*mongolib.Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout)
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongolib.Connect(connectCtx, opts)
	if err != nil {
		return nil, err
	}

	pingCtx, cancelPing := context.WithTimeout(ctx, 5*time.Second)
	defer cancelPing()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	logger.Info("connected to mongodb", zap.String("db", cfg.Name))
	return client, nil
}

// Close disconnects the client and logs the result.
func Close(ctx context.Context, client *mongolib.Client, logger *zap.Logger) error {
	if client == nil {
		return nil
	}
	if err := client.Disconnect(ctx); err != nil {
		return err
	}
	if logger != nil {
		logger.Info("mongodb client disconnected")
	}
	return nil
}
