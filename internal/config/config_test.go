package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/channeldeck")
	t.Setenv("REDIS_URL", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("FETCHER_USER_AGENT", "")
	t.Setenv("FETCHER_TIMEOUT", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("MAX_UPLOAD_BYTES", "")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/channeldeck", c.DatabaseURL)
	assert.Equal(t, DefaultServerPort, c.ServerPort)
	assert.Equal(t, DefaultUserAgent, c.UserAgent)
	assert.Equal(t, DefaultTimeout, c.Timeout)
	assert.Equal(t, DefaultLogLevel, c.LogLevel)
	assert.EqualValues(t, DefaultMaxUploadBytes, c.MaxUploadBytes)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("FETCHER_USER_AGENT", "VLC/3.0")
	t.Setenv("FETCHER_TIMEOUT", "5s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")

	c, err := Load()
	require.NoError(t, err)
	assert.Empty(t, c.DatabaseURL)
	assert.Equal(t, "redis://localhost:6379/0", c.RedisURL)
	assert.Equal(t, "9090", c.ServerPort)
	assert.Equal(t, "VLC/3.0", c.UserAgent)
	assert.Equal(t, 5*time.Second, c.Timeout)
	assert.Equal(t, "debug", c.LogLevel)
	assert.EqualValues(t, 1024, c.MaxUploadBytes)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	t.Run("timeout", func(t *testing.T) {
		t.Setenv("FETCHER_TIMEOUT", "soon")
		_, err := Load()
		assert.ErrorIs(t, err, ErrInvalidValue)
		assert.Contains(t, err.Error(), "FETCHER_TIMEOUT")
	})
	t.Run("upload limit", func(t *testing.T) {
		t.Setenv("FETCHER_TIMEOUT", "")
		t.Setenv("MAX_UPLOAD_BYTES", "-1")
		_, err := Load()
		assert.ErrorIs(t, err, ErrInvalidValue)
	})
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database_url: postgres://db/channeldeck
redis_url: redis://cache:6379/1
timeout: 10s
log_level: warn
`), 0o600))

	c, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://db/channeldeck", c.DatabaseURL)
	assert.Equal(t, "redis://cache:6379/1", c.RedisURL)
	assert.Equal(t, 10*time.Second, c.Timeout)
	assert.Equal(t, "warn", c.LogLevel)
	assert.Equal(t, DefaultServerPort, c.ServerPort)
	assert.Equal(t, DefaultUserAgent, c.UserAgent)
}

func TestLoadFromFileErrors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timeout: [not, a, duration"), 0o600))
	_, err = LoadFromFile(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("timeout: forever\n"), 0o600))
	_, err = LoadFromFile(path)
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestApplyEnvFile(t *testing.T) {
	t.Setenv("CHANNELDECK_TEST_KEEP", "from-env")
	t.Setenv("CHANNELDECK_TEST_SET", "")

	applyEnvFile([]byte(`
# comment
export CHANNELDECK_TEST_SET="from-file"
CHANNELDECK_TEST_KEEP=ignored
not a pair
`))

	assert.Equal(t, "from-file", os.Getenv("CHANNELDECK_TEST_SET"))
	assert.Equal(t, "from-env", os.Getenv("CHANNELDECK_TEST_KEEP"))
}
