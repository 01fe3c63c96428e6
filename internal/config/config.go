package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/lib/pq"
)

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port int
	Host string
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds database settings. Type is "postgres" or "sqlite".
type DatabaseConfig struct {
	Type       string
	DSN        string
	SQLitePath string
}

// RedisConfig is optional; an empty Addr disables Redis and per-flat locks stay in-process.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// AuthConfig holds token settings
type AuthConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

// Config holds the complete application configuration
type Config struct {
	Server          ServerConfig
	Database        DatabaseConfig
	Redis           RedisConfig
	Auth            AuthConfig
	ArchiveInterval time.Duration
	SeedDefaultFlat bool
	LogLevel        string
	Debug           bool
}

// Load reads .env (if present) and the environment, applying defaults.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnvInt("PORT", 8080),
			Host: getEnvOrDefault("HOST", "0.0.0.0"),
		},
		Redis: LoadRedis(),
		Auth: AuthConfig{
			JWTSecret:  os.Getenv("JWT_SECRET"),
			TokenTTL:   getEnvDuration("TOKEN_TTL", 72*time.Hour),
			BcryptCost: getEnvInt("BCRYPT_COST", 12),
		},
		ArchiveInterval: getEnvDuration("ARCHIVE_INTERVAL", DefaultArchiveInterval),
		SeedDefaultFlat: os.Getenv("SEED_DEFAULT_FLAT") == "true",
		LogLevel:        getEnvOrDefault("LOG_LEVEL", "info"),
		Debug:           os.Getenv("DEBUG") == "true",
	}

	db, err := LoadDatabase()
	if err != nil {
		return nil, err
	}
	cfg.Database = db

	if cfg.ArchiveInterval <= 0 {
		return nil, fmt.Errorf("ARCHIVE_INTERVAL must be positive, got %s", cfg.ArchiveInterval)
	}
	if cfg.Auth.TokenTTL <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL must be positive, got %s", cfg.Auth.TokenTTL)
	}

	if cfg.Auth.JWTSecret == "" {
		if !cfg.Debug {
			return nil, fmt.Errorf("JWT_SECRET environment variable is required unless DEBUG=true")
		}
		cfg.Auth.JWTSecret = "flatgripe-debug-secret"
	}

	return cfg, nil
}

// LoadDatabase reads only the database settings. The admin CLI uses it directly
// since it needs no server or token settings.
func LoadDatabase() (DatabaseConfig, error) {
	_ = godotenv.Load()

	db := DatabaseConfig{
		Type:       getEnvOrDefault("DB_TYPE", "postgres"),
		SQLitePath: getEnvOrDefault("SQLITE_PATH", "flatgripe.db"),
	}
	switch db.Type {
	case "postgres":
		dsn, err := postgresDSN()
		if err != nil {
			return db, err
		}
		db.DSN = dsn
	case "sqlite":
		db.DSN = db.SQLitePath
	default:
		return db, fmt.Errorf("unsupported DB_TYPE %q (expected postgres or sqlite)", db.Type)
	}
	return db, nil
}

// LoadRedis reads the optional Redis settings.
func LoadRedis() RedisConfig {
	return RedisConfig{
		Addr:     os.Getenv("REDIS_ADDR"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       getEnvInt("REDIS_DB", 0),
	}
}

// postgresDSN prefers DATABASE_URL and falls back to the individual DB_* variables.
func postgresDSN() (string, error) {
	if uri := os.Getenv("DATABASE_URL"); uri != "" {
		dsn, err := pq.ParseURL(uri)
		if err != nil {
			return "", fmt.Errorf("invalid DATABASE_URL: %w", err)
		}
		return dsn, nil
	}

	user := os.Getenv("DB_USER")
	if user == "" {
		return "", fmt.Errorf("DB_USER environment variable is required when DATABASE_URL is not set")
	}

	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		getEnvOrDefault("DB_HOST", "localhost"),
		user,
		os.Getenv("DB_PASSWORD"),
		getEnvOrDefault("DB_NAME", "flatgripe"),
		getEnvInt("DB_PORT", 5432),
		getEnvOrDefault("DB_SSL_MODE", "disable"),
	), nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
