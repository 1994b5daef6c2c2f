package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lebfix/lebfix-client/config"
	"github.com/lebfix/lebfix-client/internal/session/repository"
)

type StoreOptions struct {
	Backend       string
	Path          string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	PingTO        time.Duration
}

func StoreOptionsFrom(cfg config.StoreConfig) StoreOptions {
	return StoreOptions{
		Backend:       cfg.Backend,
		Path:          cfg.Path,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	}
}

// OpenTokenStore opens the configured session token store. Redis is pinged
// before use so a dead server fails at startup rather than at first login.
func OpenTokenStore(ctx context.Context, opt StoreOptions) (repository.TokenStore, error) {
	switch opt.Backend {
	case config.StoreMemory:
		return repository.NewMemoryStore(), nil

	case config.StoreBolt, "":
		if opt.Path == "" {
			return nil, fmt.Errorf("TOKEN_STORE_PATH is not set")
		}
		store, err := repository.OpenBoltStore(opt.Path)
		if err != nil {
			return nil, fmt.Errorf("token store: %w", err)
		}
		return store, nil

	case config.StoreRedis:
		if opt.PingTO == 0 {
			opt.PingTO = 2 * time.Second
		}
		client := redis.NewClient(&redis.Options{
			Addr:     opt.RedisAddr,
			Password: opt.RedisPassword,
			DB:       opt.RedisDB,
		})

		pctx, cancel := context.WithTimeout(ctx, opt.PingTO)
		defer cancel()

		if err := client.Ping(pctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		return repository.NewRedisStore(client, 0), nil

	default:
		return nil, fmt.Errorf("unknown token store %q", opt.Backend)
	}
}
