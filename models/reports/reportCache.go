package reports

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/salesync/reports_backend/config"
	"github.com/sirupsen/logrus"
)

func reportCacheEnabled() bool {
	v := strings.TrimSpace(os.Getenv("ENABLE_REPORT_CACHE"))
	return v == "1" || strings.EqualFold(v, "true") || strings.EqualFold(v, "yes") || strings.EqualFold(v, "on")
}

func reportCacheTTL() time.Duration {
	// Env: REPORT_CACHE_TTL_SECONDS (default 120s)
	ttl := 120
	if v := strings.TrimSpace(os.Getenv("REPORT_CACHE_TTL_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ttl = n
		}
	}
	return time.Duration(ttl) * time.Second
}

func reportSlowMs() int64 {
	// Env: REPORT_SLOW_MS (default 500ms)
	ms := int64(500)
	if v := strings.TrimSpace(os.Getenv("REPORT_SLOW_MS")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			ms = n
		}
	}
	return ms
}

func logSlowReport(ctx context.Context, logger *logrus.Logger, name string, started time.Time, rng DateRange) {
	d := time.Since(started)
	if d.Milliseconds() < reportSlowMs() {
		return
	}
	config.LoggerWithContext(ctx, logger).WithFields(logrus.Fields{
		"slow_report": name,
		"ms":          d.Milliseconds(),
		"start_date":  formatDateParam(rng.Start),
		"end_date":    formatDateParam(rng.End),
	}).Warn("slow report")
}

func reportCacheKey(name string, rng DateRange) string {
	return "report:" + name + ":" + formatDateParam(rng.Start) + ":" + formatDateParam(rng.End)
}

// cachedReportBytes serves rendered report bytes from redis when
// ENABLE_REPORT_CACHE is on and redis is connected. Failed builds are never
// cached.
func cachedReportBytes(ctx context.Context, logger *logrus.Logger, name string, rng DateRange, build func() ([]byte, error)) ([]byte, error) {
	client := config.GetRedisDB()
	if client == nil || !reportCacheEnabled() {
		return build()
	}
	key := reportCacheKey(name, rng)
	data, err := client.Get(ctx, key).Bytes()
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, redis.Nil) {
		logger.WithField("key", key).Warn("report cache get: " + err.Error())
	}
	data, err = build()
	if err != nil {
		return nil, err
	}
	if err := client.Set(ctx, key, data, reportCacheTTL()).Err(); err != nil {
		logger.WithField("key", key).Warn("report cache set: " + err.Error())
	}
	return data, nil
}
