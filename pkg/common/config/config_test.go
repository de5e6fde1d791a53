package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load("")
	require.Error(t, err, "an explicit APP_CONFIG that does not exist must fail")

	cfg, err := Load(writeFile(t, "empty.json", "{}"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, DefaultFormEndpoint, cfg.Reference.URL)
	assert.Equal(t, DefaultFormEndpoint, cfg.Submission.URL)
	assert.Equal(t, 2*time.Second, cfg.Notifications.SuccessAutoClose)
	assert.Equal(t, 20*time.Second, cfg.Notifications.ErrorAutoClose)
	assert.False(t, cfg.Submission.RequireValid)
	assert.False(t, cfg.IsProd())
}

func TestLoadYAMLFile(t *testing.T) {
	path := writeFile(t, "config.yaml", `
server:
  address: ":9090"
reference:
  url: "http://reference.local/form"
  fetchOnRequest: true
submission:
  timeout: 3s
notifications:
  errorAutoClose: 5s
env: production
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "http://reference.local/form", cfg.Reference.URL)
	assert.True(t, cfg.Reference.FetchOnRequest)
	assert.Equal(t, 3*time.Second, cfg.Submission.Timeout)
	assert.Equal(t, 5*time.Second, cfg.Notifications.ErrorAutoClose)
	assert.Equal(t, 2*time.Second, cfg.Notifications.SuccessAutoClose)
	assert.True(t, cfg.IsProd())
}

func TestLoadJSONDurations(t *testing.T) {
	path := writeFile(t, "config.json", `{
  "server": {"address": ":9191", "shutdownTimeout": "4s"},
  "reference": {"timeout": "1500ms"},
  "submission": {"timeout": 3000000000},
  "notifications": {"successAutoClose": "1s"},
  "env": "10s"
}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9191", cfg.Server.Address)
	assert.Equal(t, 4*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 1500*time.Millisecond, cfg.Reference.Timeout)
	assert.Equal(t, 3*time.Second, cfg.Submission.Timeout)
	assert.Equal(t, time.Second, cfg.Notifications.SuccessAutoClose)
	assert.Equal(t, 20*time.Second, cfg.Notifications.ErrorAutoClose)
	assert.Equal(t, "10s", cfg.Env, "string fields are left alone even when they look like durations")
}

func TestLoadJSONRejectsBadDuration(t *testing.T) {
	path := writeFile(t, "config.json", `{"submission": {"timeout": "soon"}}`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "submission.timeout")
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "config.json", `{"server":{"address":":7000"},"submission":{"url":"http://file.local"}}`)
	t.Setenv("SERVER_ADDR", ":7100")
	t.Setenv("SUBMISSION_URL", "http://env.local/form")
	t.Setenv("SUBMISSION_REQUIRE_VALID", "yes")
	t.Setenv("SUBMISSION_TIMEOUT", "not-a-duration")
	t.Setenv("CORS_ALLOW_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7100", cfg.Server.Address)
	assert.Equal(t, "http://env.local/form", cfg.Submission.URL)
	assert.True(t, cfg.Submission.RequireValid)
	assert.Equal(t, 15*time.Second, cfg.Submission.Timeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Middleware.CORS.AllowOrigins)
	assert.Equal(t, hlog.LevelDebug, cfg.HlogLevel())
}

func TestValidateRejectsBlankEndpoints(t *testing.T) {
	cfg := Default()
	cfg.Submission.URL = "  "
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Notifications.ErrorAutoClose = -time.Second
	assert.Error(t, cfg.Validate())
}

func TestDefaultReturnsIndependentCopies(t *testing.T) {
	a := Default()
	a.Middleware.CORS.AllowOrigins[0] = "mutated"
	b := Default()
	assert.Equal(t, "http://localhost:3000", b.Middleware.CORS.AllowOrigins[0])
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}
