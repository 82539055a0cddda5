package app

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/kmedi-tour/internal/storage"
	"github.com/xenking/kmedi-tour/internal/storage/badger"
	"github.com/xenking/kmedi-tour/internal/storage/redis"
	"github.com/xenking/kmedi-tour/pkg/health"
)

// clientStore is the opened client state backend.
type clientStore struct {
	storage.Store
	// pinger is nil for backends without a connection to check.
	pinger health.Pinger
	close  func() error
}

func openClientStore(ctx context.Context, cfg StorageConfig) (*clientStore, error) {
	lg := zctx.From(ctx)

	switch cfg.Backend {
	case BackendBadger:
		s, err := badger.Open(cfg.Path)
		if err != nil {
			return nil, errors.Wrap(err, "open badger")
		}
		lg.Info("Client state in badger", zap.String("path", cfg.Path))
		return &clientStore{Store: s, pinger: s, close: s.Close}, nil
	case BackendRedis:
		s, err := redis.New(ctx, redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.RedisTTL,
		})
		if err != nil {
			return nil, errors.Wrap(err, "connect redis")
		}
		lg.Info("Client state in redis", zap.String("addr", cfg.RedisAddr), zap.Int("db", cfg.RedisDB))
		return &clientStore{Store: s, pinger: s, close: s.Close}, nil
	case BackendMemory:
		lg.Warn("Client state in memory, it is lost on restart")
		return &clientStore{Store: storage.NewMemory(), close: func() error { return nil }}, nil
	default:
		return nil, errors.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
