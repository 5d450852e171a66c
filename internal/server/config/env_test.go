package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv_OverlaysSetVariables(t *testing.T) {
	stubDotEnv(t)

	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("DATABASE_DSN", "memory")
	t.Setenv("SESSION_SECRET", "s3cr3t")
	t.Setenv("SESSION_TTL", "24h")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("EXPOSE_TOKEN", "1")
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("S3_BUCKET", "trades")
	t.Setenv("S3_PRESIGN_TTL", "5m")

	c := defaultConfig()
	require.NoError(t, parseEnv(c))

	assert.Equal(t, ":9999", c.EndpointAddrHTTP)
	assert.Equal(t, "memory", c.DatabaseDSN)
	assert.Equal(t, "s3cr3t", c.SessionSecret)
	assert.Equal(t, 24*time.Hour, c.SessionTTL)
	assert.True(t, c.CookieSecure)
	assert.True(t, c.ExposeToken)
	assert.Equal(t, 4, c.BcryptCost)
	assert.Equal(t, "text", c.LogFormat)
	assert.Equal(t, 3*time.Second, c.ShutdownTimeout)
	assert.Equal(t, "trades", c.S3Bucket)
	assert.Equal(t, 5*time.Minute, c.S3PresignTTL)
	assert.Equal(t, "us-east-1", c.S3Region, "unset variables keep their value")
}

func TestParseEnv_InvalidValues(t *testing.T) {
	stubDotEnv(t)

	t.Setenv("BCRYPT_COST", "lots")
	t.Setenv("COOKIE_SECURE", "maybe")
	c := defaultConfig()
	require.NoError(t, parseEnv(c))
	assert.Equal(t, defaultConfig().BcryptCost, c.BcryptCost, "unparsable ints are ignored")
	assert.False(t, c.CookieSecure, "unparsable bools are ignored")

	t.Setenv("SHUTDOWN_TIMEOUT", "soon")
	require.Error(t, parseEnv(defaultConfig()))
}

func TestParseEnv_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LOG_BACKEND=zap\n"), 0o600))
	chdir(t, dir)
	t.Setenv("LOG_BACKEND", "")
	require.NoError(t, os.Unsetenv("LOG_BACKEND"))

	c := defaultConfig()
	require.NoError(t, parseEnv(c))
	assert.Equal(t, "zap", c.LogBackend)
}

func TestParseEnv_MissingDotEnvIsFine(t *testing.T) {
	chdir(t, t.TempDir())
	require.NoError(t, parseEnv(defaultConfig()))
}

func TestParseEnv_DotEnvError(t *testing.T) {
	orig := loadDotEnv
	t.Cleanup(func() { loadDotEnv = orig })
	loadDotEnv = func() error { return errors.New("bad line 3") }

	require.Error(t, parseEnv(defaultConfig()))
}

// chdir changes the working directory for the duration of the test
// (stand-in for testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
