package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"salesinsights/database"
)

// ErrInvalidConfig est retournée pour une valeur d'environnement invalide
var ErrInvalidConfig = errors.New("invalid configuration")

// Stockages supportés par le serveur
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// DBConfig connexion PostgreSQL
type DBConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// ConnString construit la chaîne de connexion
func (c DBConfig) ConnString() string {
	return database.ConnString(c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// SeedConfig paramètres de génération par défaut
type SeedConfig struct {
	Years     int
	Seed      uint64
	BatchSize int
	Materials int
}

// ExportConfig publication des exports
type ExportConfig struct {
	S3Bucket string
	S3Region string
}

// Config configuration complète de l'application
type Config struct {
	DB        DBConfig
	Store     string
	HTTPAddr  string
	CacheTTL  time.Duration
	LogLevel  string
	LogFormat string
	Seed      SeedConfig
	Export    ExportConfig
}

// Load charge .env (s'il existe) puis lit l'environnement
func Load() (*Config, error) {
	// .env optionnel
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv lit la configuration depuis l'environnement courant
func FromEnv() (*Config, error) {
	cfg := &Config{
		DB: DBConfig{
			Driver:   getEnv("DB_DRIVER", database.DriverPQ),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "salesuser"),
			Password: getEnv("DB_PASSWORD", "salespass"),
			Name:     getEnv("DB_NAME", "salesdb"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Store:     getEnv("STORE", StorePostgres),
		HTTPAddr:  getEnv("HTTP_ADDR", ":8080"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
		Export: ExportConfig{
			S3Bucket: getEnv("EXPORT_S3_BUCKET", ""),
			S3Region: getEnv("EXPORT_S3_REGION", "eu-west-1"),
		},
	}

	var errs []error
	cfg.CacheTTL = getDuration("CACHE_TTL", 5*time.Minute, &errs)
	cfg.Seed.Years = getInt("SEED_YEARS", 3, &errs)
	cfg.Seed.BatchSize = getInt("SEED_BATCH_SIZE", 25_000, &errs)
	cfg.Seed.Materials = getInt("SEED_MATERIALS", 120, &errs)
	cfg.Seed.Seed = getUint("SEED", 42, &errs)

	switch cfg.Store {
	case StorePostgres, StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("%w: STORE must be %q or %q, got %q", ErrInvalidConfig, StorePostgres, StoreMemory, cfg.Store))
	}
	switch cfg.DB.Driver {
	case database.DriverPQ, database.DriverPGX:
	default:
		errs = append(errs, fmt.Errorf("%w: DB_DRIVER must be %q or %q, got %q", ErrInvalidConfig, database.DriverPQ, database.DriverPGX, cfg.DB.Driver))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// getEnv récupère une variable d'environnement avec fallback
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int, errs *[]error) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, key, raw))
		return fallback
	}
	return v
}

func getUint(key string, fallback uint64, errs *[]error) uint64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%w: %s=%q is not an unsigned integer", ErrInvalidConfig, key, raw))
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	if raw == "0" {
		return 0
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%w: %s=%q is not a duration", ErrInvalidConfig, key, raw))
		return fallback
	}
	return v
}
