// Package config provides application configuration loaded from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Mongo    MongoConfig
	Security SecurityConfig
	Activity ActivityConfig
	CORS     CORSConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// PostgresConfig holds connection and pool settings for the users database.
type PostgresConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// MongoConfig holds settings for the activity log store.
type MongoConfig struct {
	URL            string
	Database       string
	Collection     string
	ConnectTimeout time.Duration
}

// SecurityConfig holds password hashing settings.
type SecurityConfig struct {
	BcryptCost int
}

// ActivityConfig tunes the asynchronous activity recorder.
type ActivityConfig struct {
	QueueSize     int
	Workers       int
	MaxRetries    int
	AppendTimeout time.Duration
}

// CORSConfig lists the origins allowed to call the API. A single "*" allows any origin.
type CORSConfig struct {
	AllowedOrigins []string
}

// LogConfig selects the slog level and output format ("json" or "text").
type LogConfig struct {
	Level  string
	Format string
}

// DSN returns the PostgreSQL connection string in lib/pq key=value format.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode,
	)
}

// AllowsAnyOrigin reports whether CORS is fully open.
func (c CORSConfig) AllowsAnyOrigin() bool {
	return len(c.AllowedOrigins) == 0 || (len(c.AllowedOrigins) == 1 && c.AllowedOrigins[0] == "*")
}

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            getEnv("APP_PORT", "8080"),
			ReadTimeout:     getEnvSeconds("SERVER_READ_TIMEOUT", 15),
			WriteTimeout:    getEnvSeconds("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:     getEnvSeconds("SERVER_IDLE_TIMEOUT", 60),
			ShutdownTimeout: getEnvSeconds("SERVER_SHUTDOWN_TIMEOUT", 10),
		},
		Postgres: PostgresConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			DBName:          getEnv("DB_NAME", "accounts"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvSeconds("DB_CONN_MAX_LIFETIME", 300),
		},
		Mongo: MongoConfig{
			URL:            getEnv("MONGO_URL", "mongodb://localhost:27017"),
			Database:       getEnv("MONGO_DB", "accounts"),
			Collection:     getEnv("MONGO_COLLECTION", "activity_logs"),
			ConnectTimeout: getEnvSeconds("MONGO_CONNECT_TIMEOUT", 10),
		},
		Security: SecurityConfig{
			BcryptCost: getEnvInt("BCRYPT_COST", 10),
		},
		Activity: ActivityConfig{
			QueueSize:     getEnvInt("ACTIVITY_QUEUE_SIZE", 256),
			Workers:       getEnvInt("ACTIVITY_WORKERS", 2),
			MaxRetries:    getEnvInt("ACTIVITY_MAX_RETRIES", 3),
			AppendTimeout: getEnvSeconds("ACTIVITY_APPEND_TIMEOUT", 5),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvSeconds(key string, defaultSeconds int) time.Duration {
	return time.Duration(getEnvInt(key, defaultSeconds)) * time.Second
}

// getEnvList splits a comma-separated variable, dropping empty items.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
