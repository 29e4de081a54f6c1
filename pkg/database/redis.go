package database

import (
	"context"
	"fmt"
	"log"

	"procserv_training_backend/internal/config"

	"github.com/go-redis/redis/v8"
)

// InitRedis returns (nil, nil) when redis is not configured; callers treat
// a nil client as "no cache".
func InitRedis(cfg *config.RedisConfig) (*redis.Client, error) {
	if !cfg.Configured() {
		log.Println("Redis not configured, catalog caching disabled")
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     50,
		MinIdleConns: 5,
	})

	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return nil, err
	}

	log.Println("Redis connection established")
	return rdb, nil
}
