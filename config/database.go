package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// db is read by request goroutines while the server connects in the
// background.
var db atomic.Pointer[gorm.DB]

func GetDB() *gorm.DB {
	return db.Load()
}

func init() {
	// Load env from .env
	godotenv.Load()
}

// DatabaseSettings holds the connection parameters read from the environment.
type DatabaseSettings struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

func DatabaseSettingsFromEnv() DatabaseSettings {
	port := strings.TrimSpace(os.Getenv("DB_PORT"))
	if port == "" {
		port = "3306"
	}
	return DatabaseSettings{
		Host:     strings.TrimSpace(os.Getenv("DB_HOST")),
		Port:     port,
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		Name:     strings.TrimSpace(os.Getenv("DB_NAME")),
	}
}

// DSN renders the settings as a go-sql-driver DSN.
//
// When Host is "/cloudsql/<CONNECTION_NAME>" the connection goes through the
// unix socket provided by the Cloud SQL Auth Proxy.
func (s DatabaseSettings) DSN() string {
	cfg := mysqldriver.NewConfig()
	cfg.User = s.User
	cfg.Passwd = s.Password
	cfg.DBName = s.Name
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	if strings.HasPrefix(s.Host, "/cloudsql/") {
		cfg.Net = "unix"
		cfg.Addr = s.Host
	} else {
		cfg.Net = "tcp"
		cfg.Addr = fmt.Sprintf("%s:%s", s.Host, s.Port)
	}
	return cfg.FormatDSN()
}

// ConnectDatabase makes a single connection attempt and sets the global DB.
// Report tools call this and treat a failure as fatal.
func ConnectDatabase() error {
	conn, err := openDatabase(DatabaseSettingsFromEnv())
	if err != nil {
		return err
	}
	db.Store(conn)
	return nil
}

// ConnectDatabaseWithRetry connects and sets the global DB, retrying with
// backoff until it succeeds or ctx is done.
// Call this from main() AFTER the HTTP server is listening.
func ConnectDatabaseWithRetry(ctx context.Context) error {
	settings := DatabaseSettingsFromEnv()
	var attempt int
	for {
		attempt++
		conn, err := openDatabase(settings)
		if err == nil {
			db.Store(conn)
			log.Printf("connected to database (attempt=%d)", attempt)
			return nil
		}

		sleep := time.Second * time.Duration(1<<min(attempt, 5))
		if sleep > 30*time.Second {
			sleep = 30 * time.Second
		}
		log.Printf("failed to connect database (attempt=%d): %v; retrying in %s", attempt, err, sleep)
		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func openDatabase(settings DatabaseSettings) (*gorm.DB, error) {
	if settings.Host == "" || settings.Name == "" {
		return nil, fmt.Errorf("database not configured: DB_HOST and DB_NAME are required")
	}
	conn, err := gorm.Open(mysql.Open(settings.DSN()), initConfig())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Env overrides (optional):
	// - DB_MAX_OPEN_CONNS (default 20)
	// - DB_MAX_IDLE_CONNS (default 10)
	// - DB_CONN_MAX_LIFETIME_SECONDS (default 300)
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	if maxOpen := intFromEnv("DB_MAX_OPEN_CONNS", 20); maxOpen > 0 {
		sqlDB.SetMaxOpenConns(maxOpen)
	}
	if maxIdle := intFromEnv("DB_MAX_IDLE_CONNS", 10); maxIdle >= 0 {
		sqlDB.SetMaxIdleConns(maxIdle)
	}
	if life := time.Duration(intFromEnv("DB_CONN_MAX_LIFETIME_SECONDS", 300)) * time.Second; life > 0 {
		sqlDB.SetConnMaxLifetime(life)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if pluginErr := conn.Use(otelgorm.NewPlugin()); pluginErr != nil {
		log.Printf("db connected but failed to install otelgorm plugin: %v", pluginErr)
	}
	return conn, nil
}

func intFromEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// InitConfig Initialize Config
func initConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         initLog(),
		NamingStrategy: initNamingStrategy(),
	}
}

// InitLog Connection Log Configuration
func initLog() logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			Colorful:      false,
			LogLevel:      logger.Error,
			SlowThreshold: time.Second,
		},
	)
}

// InitNamingStrategy Init NamingStrategy
func initNamingStrategy() *schema.NamingStrategy {
	return &schema.NamingStrategy{
		SingularTable: false,
		TablePrefix:   "",
	}
}
