package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/tradejournal/internal/flagx"
	"github.com/dmitrijs2005/tradejournal/internal/timex"
)

// JsonConfig mirrors Config for JSON files. Durations accept "168h" style
// strings or integer nanoseconds. Absent fields keep their current value.
type JsonConfig struct {
	EndpointAddrHTTP string          `json:"endpoint_addr_http"`
	DatabaseDSN      string          `json:"database_dsn"`
	SessionSecret    string          `json:"session_secret"`
	SessionTTL       *timex.Duration `json:"session_ttl"`
	CookieSecure     *bool           `json:"cookie_secure"`
	ExposeToken      *bool           `json:"expose_token"`
	BcryptCost       int             `json:"bcrypt_cost"`
	LogBackend       string          `json:"log_backend"`
	LogFormat        string          `json:"log_format"`
	ShutdownTimeout  *timex.Duration `json:"shutdown_timeout"`
	S3AccessKey      string          `json:"s3_access_key"`
	S3SecretKey      string          `json:"s3_secret_key"`
	S3Bucket         string          `json:"s3_bucket"`
	S3Region         string          `json:"s3_region"`
	S3BaseEndpoint   string          `json:"s3_base_endpoint"`
	S3PresignTTL     *timex.Duration `json:"s3_presign_ttl"`
}

// parseJson overlays values from the JSON file named by -c or -config.
// Without either flag nothing is loaded.
func parseJson(config *Config) error {
	jsonConfigFile := flagx.ConfigFileFlag()
	if jsonConfigFile == "" {
		return nil
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", jsonConfigFile, err)
	}

	c.apply(config)
	return nil
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SessionSecret, c.SessionSecret)
	if c.SessionTTL != nil {
		config.SessionTTL = c.SessionTTL.Duration
	}
	if c.CookieSecure != nil {
		config.CookieSecure = *c.CookieSecure
	}
	if c.ExposeToken != nil {
		config.ExposeToken = *c.ExposeToken
	}
	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
	setString(&config.LogBackend, c.LogBackend)
	setString(&config.LogFormat, c.LogFormat)
	if c.ShutdownTimeout != nil {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	setString(&config.S3AccessKey, c.S3AccessKey)
	setString(&config.S3SecretKey, c.S3SecretKey)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	if c.S3PresignTTL != nil {
		config.S3PresignTTL = c.S3PresignTTL.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
