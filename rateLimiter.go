package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed window request counter per client IP kept in redis.
type RateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

func NewRateLimiter(client *redis.Client, limit int64, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  limit,
		window: window,
	}
}

func (rl *RateLimiter) key(c *gin.Context) string {
	return "ratelimit:reports:" + c.ClientIP()
}

// RateLimitMiddleware answers 429 once a client exceeds limit requests in
// the current window. Redis failures let the request through.
func (rl *RateLimiter) RateLimitMiddleware(c *gin.Context) {
	if c.Request.URL.Path == "/healthz" {
		c.Next()
		return
	}
	ctx := c.Request.Context()
	key := rl.key(c)

	count, err := rl.client.Incr(ctx, key).Result()
	if err != nil {
		_ = c.Error(err)
		c.Next()
		return
	}
	if count == 1 {
		if err := rl.client.Expire(ctx, key, rl.window).Err(); err != nil {
			_ = c.Error(err)
		}
	}

	if count > rl.limit {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": fmt.Sprintf("Rate limit exceeded. Try again in %d seconds", int(rl.window.Seconds())),
		})
		return
	}

	c.Next()
}
