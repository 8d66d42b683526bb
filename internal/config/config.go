package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const minJWTSecretLength = 32

var ErrWeakJWTSecret = errors.New("JWT_SECRET must be at least 32 characters")

var placeholderSecrets = map[string]struct{}{
	"change_me_in_production":                    {},
	"replace_with_at_least_32_random_characters": {},
}

type Config struct {
	Port     string
	Location *time.Location

	DBPath      string
	DatabaseURL string

	JWTSecret string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	FCMCredentialsFile    string
	FCMServiceAccountJSON string

	LogLevel string
	LogPath  string

	RateLimitPerSecond  float64
	RateLimitBurst      int
	DailyChallengeLimit int
	MetricsEnabled      bool
}

func (cfg Config) UseSupabase() bool {
	return cfg.DatabaseURL != ""
}

// Load reads .env files when present, then the process environment. Values
// already set in the environment win over .env entries.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}
	return FromEnv()
}

func FromEnv() (Config, error) {
	var errs []error

	timezone := getEnv("TZ", "UTC")
	location, err := time.LoadLocation(timezone)
	if err != nil {
		errs = append(errs, fmt.Errorf("TZ %q: %w", timezone, err))
		location = time.UTC
	}

	cfg := Config{
		Port:                  getEnv("PORT", "8080"),
		Location:              location,
		DBPath:                getEnv("DB_PATH", filepath.Join("data", "dailyglow.db")),
		DatabaseURL:           strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:             os.Getenv("JWT_SECRET"),
		RedisAddr:             strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword:         os.Getenv("REDIS_PASSWORD"),
		FCMCredentialsFile:    strings.TrimSpace(os.Getenv("FCM_CREDENTIALS_FILE")),
		FCMServiceAccountJSON: os.Getenv("FCM_SERVICE_ACCOUNT_JSON"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogPath:               strings.TrimSpace(os.Getenv("LOG_PATH")),
	}

	cfg.RedisDB, err = getEnvInt("REDIS_DB", 0)
	errs = append(errs, err)
	cfg.RateLimitPerSecond, err = getEnvFloat("RATE_LIMIT_PER_SECOND", 5)
	errs = append(errs, err)
	cfg.RateLimitBurst, err = getEnvInt("RATE_LIMIT_BURST", 10)
	errs = append(errs, err)
	cfg.DailyChallengeLimit, err = getEnvInt("DAILY_CHALLENGE_LIMIT", 2)
	errs = append(errs, err)
	cfg.MetricsEnabled, err = getEnvBool("METRICS_ENABLED", true)
	errs = append(errs, err)

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// RequireJWTSecret is checked only by commands that serve HTTP.
func (cfg Config) RequireJWTSecret() error {
	if len(cfg.JWTSecret) < minJWTSecretLength {
		return ErrWeakJWTSecret
	}
	if _, placeholder := placeholderSecrets[strings.ToLower(cfg.JWTSecret)]; placeholder {
		return ErrWeakJWTSecret
	}
	return nil
}

func getEnv(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return value, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return value, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return value, nil
}
