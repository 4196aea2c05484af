// Package session persists the signed-in user's bearer token between runs.
package session

import (
	"context"
	"errors"
	"fmt"
)

// TokenKey is the slot the bearer token is stored under.
const TokenKey = "token"

var ErrNoToken = errors.New("no persisted token")

// TokenStore is a single-slot persistent store for the bearer token.
type TokenStore interface {
	// Get returns ErrNoToken when nothing is persisted.
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	Delete(ctx context.Context) error
	Close() error
}

const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

type Config struct {
	Driver        string
	Path          string
	RedisAddr     string
	RedisPassword string
}

// Open builds the TokenStore selected by cfg.Driver.
func Open(ctx context.Context, cfg Config) (TokenStore, error) {
	switch cfg.Driver {
	case "", DriverSQLite:
		store, err := NewSQLiteStore(cfg.Path)
		if err != nil {
			return nil, err
		}
		if err := store.RunMigrations(); err != nil {
			store.Close()
			return nil, err
		}
		return store, nil
	case DriverRedis:
		store := NewRedisStore(NewRedisClient(cfg.RedisAddr, cfg.RedisPassword))
		if err := store.Ping(ctx); err != nil {
			store.Close()
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown session driver %q", cfg.Driver)
	}
}
