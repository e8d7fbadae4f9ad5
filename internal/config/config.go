package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"

	"restaurant_pos_backend/internal/database"
	"restaurant_pos_backend/pkg/utils"
)

// Config is everything the server reads from the environment.
type Config struct {
	Port string

	DB database.Config

	JWTSecret string
	JWTTTL    time.Duration

	LogLevel  string
	LogFormat string

	CORSAllowedOrigins []string

	// AMQPURL enables low-stock alert publishing. Empty means alerts are only logged.
	AMQPURL       string
	RunMigrations bool
}

// Load reads .env (when present) and then the process environment.
func Load() (Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := Config{
		Port: utils.Getenv("PORT", "8080"),
		DB: database.Config{
			Host:            utils.Getenv("DB_HOST", "localhost"),
			Port:            utils.Getenv("DB_PORT", "5432"),
			User:            utils.Getenv("DB_USER", "pos_user"),
			Password:        utils.Getenv("DB_PASSWORD", "pos_password"),
			DBName:          utils.Getenv("DB_NAME", "restaurant_pos"),
			SSLMode:         utils.Getenv("DB_SSLMODE", "disable"),
			MaxOpenConns:    utils.GetenvInt("DB_MAX_OPEN_CONNS", database.DefaultMaxOpenConns),
			MaxIdleConns:    utils.GetenvInt("DB_MAX_IDLE_CONNS", database.DefaultMaxIdleConns),
			ConnMaxLifetime: utils.GetenvDuration("DB_CONN_MAX_LIFETIME", database.DefaultConnMaxLifetime),
		},
		JWTSecret:          utils.Getenv("JWT_SECRET", ""),
		JWTTTL:             utils.GetenvDuration("JWT_TTL", 12*time.Hour),
		LogLevel:           utils.Getenv("LOG_LEVEL", "info"),
		LogFormat:          utils.Getenv("LOG_FORMAT", "json"),
		CORSAllowedOrigins: utils.SplitCSV(utils.Getenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:3001")),
		AMQPURL:            utils.Getenv("AMQP_URL", ""),
		RunMigrations:      utils.GetenvBool("RUN_MIGRATIONS", false),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot run with.
func (c Config) Validate() error {
	if utils.IsEmpty(c.JWTSecret) {
		return fmt.Errorf("JWT_SECRET must be set")
	}
	if len(c.JWTSecret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 characters")
	}
	if _, err := utils.StrToPositiveInt64(c.Port); err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}
	return nil
}
