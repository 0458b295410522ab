package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/goAuthClient/session"
)

const (
	storeMemory    = "memory"
	storeMiniredis = "miniredis"
	storeRedis     = "redis"
	storeFile      = "file"
	storePostgres  = "postgres"

	envPassphrase  = "GOAUTHCLIENT_PASSPHRASE"
	envPostgresDSN = "GOAUTHCLIENT_POSTGRES_DSN"

	postgresTable = "goauth_client_sessions"
)

// openStore returns the selected session store and a cleanup func releasing its
// connections. The store is opened later by Builder.Build.
func openStore(ctx context.Context) (session.Store, func(), error) {
	switch storeKind {
	case storeMemory:
		return session.NewMemoryStore(), func() {}, nil

	case storeMiniredis:
		mr, err := miniredis.Run()
		if err != nil {
			return nil, nil, fmt.Errorf("start miniredis: %w", err)
		}
		logger.Info("using miniredis", "addr", mr.Addr())
		rdb := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
		return session.NewRedisStore(rdb, ""), func() {
			_ = rdb.Close()
			mr.Close()
		}, nil

	case storeRedis:
		addr := redisAddr
		if addr == "" {
			addr = os.Getenv("REDIS_ADDR")
		}
		if addr == "" {
			return nil, nil, fmt.Errorf("--redis-addr or REDIS_ADDR required for --store=%s", storeRedis)
		}
		rdb := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		return session.NewRedisStore(rdb, ""), func() { _ = rdb.Close() }, nil

	case storeFile:
		dir := storeDir
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, nil, err
			}
			dir = filepath.Join(home, ".goauth-client")
		}
		secret, err := storePassphrase()
		if err != nil {
			return nil, nil, err
		}
		fs, err := session.NewFileStore(dir, secret, nil)
		if err != nil {
			return nil, nil, err
		}
		return fs, func() {}, nil

	case storePostgres:
		dsn := postgresDSN
		if dsn == "" {
			dsn = os.Getenv(envPostgresDSN)
		}
		if dsn == "" {
			return nil, nil, fmt.Errorf("--postgres-dsn or %s required for --store=%s", envPostgresDSN, storePostgres)
		}
		pool, err := session.OpenPostgresPool(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		ps, err := session.NewPostgresStore(pool, postgresTable)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return ps, pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown --store %q", storeKind)
	}
}

func storePassphrase() (string, error) {
	if passphrase != "" {
		return passphrase, nil
	}
	if v := os.Getenv(envPassphrase); v != "" {
		return v, nil
	}
	return prompt("Store passphrase: ", true)
}
