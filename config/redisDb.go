package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

var (
	rdb    *redis.Client
	locker *redislock.Client
)

func GetRedisDB() *redis.Client {
	return rdb
}

// GetRedisLock returns nil when redis is not configured.
func GetRedisLock() *redislock.Client {
	return locker
}

// ConnectRedis connects when REDIS_ADDRESS is set and is a no-op otherwise.
// Redis only serializes report writers, so callers may continue without it.
func ConnectRedis(ctx context.Context) error {
	redisAddr := strings.TrimSpace(os.Getenv("REDIS_ADDRESS"))
	if redisAddr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0, // use default DB
		PoolSize: 10,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("connect redis %s: %w", redisAddr, err)
	}
	rdb = client
	locker = redislock.New(rdb)
	log.Printf("connected to redis (addr=%s)", redisAddr)
	return nil
}

func CloseRedis() {
	if rdb == nil {
		return
	}
	_ = rdb.Close()
	rdb = nil
	locker = nil
}
