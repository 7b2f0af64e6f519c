package config

import (
	"os"
	"strconv"
	"time"

	"ovation/internal/cache"
	"ovation/internal/database"
	"ovation/internal/external"
	"ovation/internal/messaging"
)

// Config holds the application configuration
type Config struct {
	Port           string
	GinMode        string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration

	// Ticket QR payloads are signed with this secret.
	QRSecret string
	Currency string

	// Pending reservations older than the TTL are removed by the reaper.
	// This is ledger hygiene only; pending reservations hold no inventory.
	ReservationTTL time.Duration
	ReaperInterval time.Duration

	// Per-transaction confirmation locks expire after this long.
	LockTTL time.Duration

	Database      database.Config
	NATS          messaging.Config
	Redis         cache.Config
	Elasticsearch ElasticsearchConfig
	Payment       external.PaymentConfig
}

// Load reads the configuration from environment variables
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,

		QRSecret: getEnv("TICKET_QR_SECRET", "dev-qr-secret"),
		Currency: getEnv("CURRENCY", "USD"),

		ReservationTTL: time.Duration(getEnvInt("RESERVATION_TTL_MIN", 60)) * time.Minute,
		ReaperInterval: time.Duration(getEnvInt("REAPER_INTERVAL_SEC", 60)) * time.Second,

		LockTTL: time.Duration(getEnvInt("CONFIRM_LOCK_TTL_SEC", 30)) * time.Second,

		Database: database.Config{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "ovation"),
			Password:           getEnv("DB_PASSWORD", "ovation123"),
			DBName:             getEnv("DB_NAME", "ovation"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 100),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
			ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 1),
		},

		NATS: messaging.Config{
			URL:       getEnv("NATS_URL", "nats://localhost:4222"),
			ClusterID: getEnv("NATS_CLUSTER_ID", "ovation"),
			ClientID:  getEnv("NATS_CLIENT_ID", "ovation-api"),
		},

		Redis: cache.Config{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},

		Elasticsearch: LoadElasticsearchConfig(),

		Payment: external.PaymentConfig{
			BaseURL:    getEnv("PAYMENT_GATEWAY_URL", "https://gateway.example.com"),
			MerchantID: getEnv("PAYMENT_MERCHANT_ID", ""),
			Password:   getEnv("PAYMENT_PASSWORD", ""),
			Timeout:    time.Duration(getEnvInt("PAYMENT_TIMEOUT_SEC", 30)) * time.Second,
		},
	}
}

// getEnv returns the value of an environment variable or the default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
