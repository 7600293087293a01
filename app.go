// File: /app.go
package main

import (
	"context"
	"fmt"
	"log/slog"

	"filmogram-api/config"
	"filmogram-api/database"
	"filmogram-api/repositories"
	"filmogram-api/routes"
	"filmogram-api/services"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "filmogram:"

// app holds the selected backends and the services built on them.
type app struct {
	dir      repositories.Directory
	services routes.Services
	closers  []func() error
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{}

	var (
		likes   repositories.LikeStore
		friends repositories.FriendshipStore
	)

	switch cfg.Storage {
	case config.StorageMemory:
		a.dir = repositories.NewMemoryDirectory()
		likes = repositories.NewMemoryLikeStore()
		friends = repositories.NewMemoryFriendshipStore()
	default:
		level, _ := cfg.SlogLevel()
		db, err := database.Initialize(cfg.Storage, cfg.DatabaseURL, level)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, sqlDB.Close)

		if err := database.Migrate(db); err != nil {
			a.Close()
			return nil, err
		}
		a.dir = repositories.NewGormDirectory(db)
		likes = repositories.NewGormLikeStore(db)
		friends = repositories.NewGormFriendshipStore(db)
	}

	if cfg.LikeStore == config.LikeStoreRedis {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			a.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		a.closers = append(a.closers, client.Close)
		likes = repositories.NewRedisLikeStore(client, redisKeyPrefix)
	}

	ledger := services.NewLikeLedger(a.dir, likes, logger)
	a.services = routes.Services{
		Catalog:    services.NewCatalogService(a.dir, ledger, logger),
		Likes:      ledger,
		Friendship: services.NewFriendshipGraph(a.dir, friends, logger),
		Ranking:    services.NewPopularityRanking(a.dir, ledger, logger),
	}
	return a, nil
}

// Close releases connections in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			slog.Warn("close failed", "error", err)
		}
	}
	a.closers = nil
}
