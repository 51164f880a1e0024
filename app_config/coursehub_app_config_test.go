package app_config

import (
	"io/ioutil"
	"path/filepath"
	"testing"
	"time"

	"github.com/Luismorlan/coursehub/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "coursehub.yaml")
	require.NoError(t, ioutil.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaults(t *testing.T) {
	t.Setenv("COURSEHUB_JWT_SECRET", "secret")

	c, err := ParseCoursehubAppConfig("")
	require.NoError(t, err)
	assert.Equal(t, 8080, c.Port)
	assert.Equal(t, AuthJWT, c.AuthMode)
	assert.Equal(t, "secret", c.JWTSecret)
	assert.Equal(t, store.BackendBadger, c.Store.Backend)
	assert.Equal(t, store.DefaultCASAttempts, c.Store.CASAttempts)
	assert.Equal(t, 4, c.Retry.MaxAttempts)
	assert.Equal(t, 2*time.Second, c.Retry.AttemptTimeout)
	assert.Equal(t, 16, c.ViewConcurrency)
}

func TestFileThenEnv(t *testing.T) {
	path := writeConfig(t, `
AUTH_MODE: bypass
STORE_BACKEND: redis
REDIS_ADDR: redis:6379
STORE_TIMEOUT: 500ms
RETRY_MAX_ATTEMPTS: 6
`)
	t.Setenv("COURSEHUB_REDIS_ADDR", "10.0.0.1:6379")
	t.Setenv("COURSEHUB_PORT", "9090")

	c, err := ParseCoursehubAppConfig(path)
	require.NoError(t, err)
	assert.Equal(t, AuthBypass, c.AuthMode)
	assert.Equal(t, store.BackendRedis, c.Store.Backend)
	assert.Equal(t, "10.0.0.1:6379", c.Store.RedisAddr)
	assert.Equal(t, 9090, c.Port)
	assert.Equal(t, 500*time.Millisecond, c.Retry.AttemptTimeout)
	assert.Equal(t, 6, c.Retry.MaxAttempts)
}

func TestUnknownFileKey(t *testing.T) {
	path := writeConfig(t, "LAMBDA_POOL_SIZE: 3\n")
	_, err := ParseCoursehubAppConfig(path)
	assert.Error(t, err)
}

func TestMissingFile(t *testing.T) {
	_, err := ParseCoursehubAppConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidation(t *testing.T) {
	_, err := ParseCoursehubAppConfig("")
	assert.Error(t, err, "jwt without secret")

	t.Setenv("COURSEHUB_AUTH_MODE", "magic")
	_, err = ParseCoursehubAppConfig("")
	assert.Error(t, err)

	t.Setenv("COURSEHUB_AUTH_MODE", "cognito")
	t.Setenv("COURSEHUB_STORE_BACKEND", "postgres")
	_, err = ParseCoursehubAppConfig("")
	assert.Error(t, err)

	t.Setenv("COURSEHUB_DATABASE_DSN", "host=localhost")
	c, err := ParseCoursehubAppConfig("")
	require.NoError(t, err)
	assert.Equal(t, "host=localhost", c.Store.DSN)
}

func TestAuthModeOverrideSkipsSecret(t *testing.T) {
	c, err := ParseCoursehubAppConfig("", WithAuthMode(AuthBypass))
	require.NoError(t, err)
	assert.Equal(t, AuthBypass, c.AuthMode)
	assert.Equal(t, "127.0.0.1:8125", c.StatsdAddr)

	t.Setenv("COURSEHUB_AUTH_MODE", "cognito")
	c, err = ParseCoursehubAppConfig("", WithAuthMode(AuthBypass))
	require.NoError(t, err)
	assert.Equal(t, AuthBypass, c.AuthMode)
}
