package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// loadDotEnv is a seam for tests.
var loadDotEnv = func() error {
	return godotenv.Load()
}

// parseEnv overlays values from environment variables. A .env file in the
// working directory is loaded first; variables already set win over it.
//
//	HTTP_ADDR, DATABASE_DSN, SESSION_SECRET, SESSION_TTL, COOKIE_SECURE,
//	EXPOSE_TOKEN, BCRYPT_COST, LOG_BACKEND, LOG_FORMAT, SHUTDOWN_TIMEOUT,
//	S3_ACCESS_KEY, S3_SECRET_KEY, S3_BUCKET, S3_REGION, S3_BASE_ENDPOINT,
//	S3_PRESIGN_TTL
func parseEnv(config *Config) error {
	if err := loadDotEnv(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	var err error

	config.EndpointAddrHTTP = getEnvString("HTTP_ADDR", config.EndpointAddrHTTP)
	config.DatabaseDSN = getEnvString("DATABASE_DSN", config.DatabaseDSN)
	config.SessionSecret = getEnvString("SESSION_SECRET", config.SessionSecret)
	if config.SessionTTL, err = getEnvDuration("SESSION_TTL", config.SessionTTL); err != nil {
		return err
	}
	config.CookieSecure = getEnvBool("COOKIE_SECURE", config.CookieSecure)
	config.ExposeToken = getEnvBool("EXPOSE_TOKEN", config.ExposeToken)
	config.BcryptCost = getEnvInt("BCRYPT_COST", config.BcryptCost)
	config.LogBackend = getEnvString("LOG_BACKEND", config.LogBackend)
	config.LogFormat = getEnvString("LOG_FORMAT", config.LogFormat)
	if config.ShutdownTimeout, err = getEnvDuration("SHUTDOWN_TIMEOUT", config.ShutdownTimeout); err != nil {
		return err
	}
	config.S3AccessKey = getEnvString("S3_ACCESS_KEY", config.S3AccessKey)
	config.S3SecretKey = getEnvString("S3_SECRET_KEY", config.S3SecretKey)
	config.S3Bucket = getEnvString("S3_BUCKET", config.S3Bucket)
	config.S3Region = getEnvString("S3_REGION", config.S3Region)
	config.S3BaseEndpoint = getEnvString("S3_BASE_ENDPOINT", config.S3BaseEndpoint)
	if config.S3PresignTTL, err = getEnvDuration("S3_PRESIGN_TTL", config.S3PresignTTL); err != nil {
		return err
	}

	return nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	if value := os.Getenv(key); value != "" {
		duration, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %q (%w)", key, value, err)
		}
		return duration, nil
	}
	return defaultValue, nil
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
