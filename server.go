package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/salesync/reports_backend/config"
	"github.com/salesync/reports_backend/middlewares"
	"github.com/salesync/reports_backend/models/reports"
	"github.com/sirupsen/logrus"
)

const defaultPort = "5050"

type routerDeps struct {
	service *reports.Service
	archive *reports.ReportArchive
	logger  *logrus.Logger
	// ready gates the endpoints that query the database.
	ready func() bool
	// rateLimiter is optional.
	rateLimiter *RateLimiter
}

func setupRouter(deps routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(middlewares.CorrelationMiddleware())
	r.Use(middlewares.RequestLogger(deps.logger))
	r.Use(gin.Recovery())
	r.Use(cors.New(corsConfigFromEnv()))
	if deps.rateLimiter != nil {
		r.Use(deps.rateLimiter.RateLimitMiddleware)
	}

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	api := r.Group("/api/reports")
	api.GET("/latest", latestReportsHandler(deps.archive))
	api.GET("/all", allReportsHandler(deps.archive))
	api.GET("/download/:report_type", downloadReportHandler(deps.archive))

	live := api.Group("")
	live.Use(requireReady(deps.ready))
	live.GET("/daily_visits_xlsx", dailyVisitsXLSXHandler(deps.service))
	live.GET("/daily_visits_csv", dailyVisitsCSVHandler(deps.service))
	live.GET("/team_lead_visits_xlsx", teamLeadVisitsXLSXHandler(deps.service))
	live.GET("/team_lead_visits_csv", teamLeadVisitsCSVHandler(deps.service))
	live.GET("/team_lead_visit_details_xlsx", visitDetailsXLSXHandler(deps.service))
	live.GET("/team_lead_visit_details_csv", visitDetailsCSVHandler(deps.service))
	live.GET("/team_lead_visit_details_xlsx/:lead_slug", visitDetailsLeadXLSXHandler(deps.service))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	return r
}

func requireReady(ready func() bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ready != nil && !ready() {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "database is not ready"})
			return
		}
		c.Next()
	}
}

// In production CORS_ALLOWED_ORIGINS (comma-separated) is required;
// elsewhere every origin is allowed.
func corsConfigFromEnv() cors.Config {
	corsConfig := cors.DefaultConfig()
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			// deny all
			corsConfig.AllowOrigins = []string{}
			corsConfig.AllowOriginFunc = func(string) bool { return false }
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type", "Authorization", middlewares.CorrelationIdHeader)
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition", middlewares.CorrelationIdHeader)
	return corsConfig
}

func rateLimiterFromEnv() *RateLimiter {
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("RATE_LIMIT_ENABLED")), "true") {
		return nil
	}
	client := config.GetRedisDB()
	if client == nil {
		config.GetLogger().WithField("field", "rate_limit").Warn("RATE_LIMIT_ENABLED=true but redis is not configured; rate limiting disabled")
		return nil
	}
	limit := int64(600)
	if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_MAX_REQUESTS")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			limit = n
		}
	}
	windowSec := int64(60)
	if v := strings.TrimSpace(os.Getenv("RATE_LIMIT_WINDOW_SECONDS")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			windowSec = n
		}
	}
	return NewRateLimiter(client, limit, time.Duration(windowSec)*time.Second)
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	roster, err := config.TeamRosterFromEnv()
	if err != nil {
		logger.WithFields(logrus.Fields{"field": "team roster"}).Fatal(err.Error())
	}

	// Redis is optional; without it archive writes are not serialized.
	if err := config.ConnectRedis(sigCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "redis"}).Warn(err.Error())
	}

	source := reports.NewSQLVisitSource(config.GetDB, config.SchemaOverridesFromEnv())
	r := setupRouter(routerDeps{
		service:     reports.NewService(source, roster, logger),
		archive:     reports.NewReportArchive(config.ReportsDir()),
		logger:      logger,
		ready:       func() bool { return config.GetDB() != nil },
		rateLimiter: rateLimiterFromEnv(),
	})

	// Listen before the database is up so the platform health check passes;
	// database endpoints answer 503 until then.
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	if err := config.ConnectDatabaseWithRetry(sigCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "database"}).Warn("stopped before the database connected: " + err.Error())
	} else {
		waitForShutdown(sigCtx, serverErrCh, logger, port)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}
	if db := config.GetDB(); db != nil {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	config.CloseRedis()
}

// waitForShutdown blocks until a signal arrives or the server stops on its
// own.
func waitForShutdown(sigCtx context.Context, serverErrCh <-chan error, logger *logrus.Logger, port string) {
	logger.WithFields(logrus.Fields{
		"info": "Connection Established",
	}).Info("reports api listening on port ", port)
	log.Println("Server started successfully")

	select {
	case <-sigCtx.Done():
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}
}

func splitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
