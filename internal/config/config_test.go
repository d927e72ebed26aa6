package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"ssactivewear-mcp/internal/ssapi"
)

var keys = []string{
	"HTTP_ADDR", "SHUTDOWN_TIMEOUT_SECONDS", "CORS_ALLOW_ORIGINS",
	"SS_ACCOUNT_NUMBER", "SS_API_KEY", "SS_REGION", "SS_BASE_URL", "SS_TIMEOUT_SECONDS",
	"SS_PREFERRED_WAREHOUSES", "DEBUG", "KAFKA_BROKER", "EVENTS_TOPIC",
}

// clearEnv blanks every key so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "US", cfg.Region)
	assert.Equal(t, ssapi.DefaultTimeout, cfg.Timeout)
	assert.Equal(t, []string{"SS_ACCOUNT_NUMBER", "SS_API_KEY"}, cfg.Missing())
	assert.Equal(t, ssapi.USBaseURL, cfg.APIOptions().BaseURL)
	assert.False(t, cfg.Debug)
	assert.Equal(t, "ssactivewear.operations", cfg.EventsTopic)
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SS_ACCOUNT_NUMBER", "12345")
	t.Setenv("SS_API_KEY", "secret")
	t.Setenv("SS_REGION", "ca")
	t.Setenv("SS_TIMEOUT_SECONDS", "5")
	t.Setenv("SS_PREFERRED_WAREHOUSES", "ON, BC ,,")
	t.Setenv("DEBUG", "true")
	t.Setenv("CORS_ALLOW_ORIGINS", "*")

	cfg := FromEnv()
	assert.Empty(t, cfg.Missing())
	assert.Equal(t, "CA", cfg.Region)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, []string{"ON", "BC"}, cfg.PreferredWarehouses)
	assert.True(t, cfg.Debug)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)

	opts := cfg.APIOptions()
	assert.Equal(t, ssapi.CABaseURL, opts.BaseURL)
	assert.Equal(t, "12345", opts.AccountNumber)
	assert.Equal(t, "secret", opts.APIKey)
}

func TestFromEnv_BaseURLOverridesRegion(t *testing.T) {
	clearEnv(t)
	t.Setenv("SS_REGION", "CA")
	t.Setenv("SS_BASE_URL", "http://localhost:9999/v2")

	assert.Equal(t, "http://localhost:9999/v2", FromEnv().APIOptions().BaseURL)
}

func TestFromEnv_BadDurationFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("SS_TIMEOUT_SECONDS", "soon")
	assert.Equal(t, ssapi.DefaultTimeout, FromEnv().Timeout)
}

func TestLoad_EnvFileAndYAMLOverlay(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("SS_ACCOUNT_NUMBER=777\nSS_API_KEY=from-env\n"), 0o600))
	// godotenv never overrides variables that are already set, including
	// empty ones set by clearEnv.
	require.NoError(t, os.Unsetenv("SS_ACCOUNT_NUMBER"))
	require.NoError(t, os.Unsetenv("SS_API_KEY"))
	t.Cleanup(func() {
		_ = os.Unsetenv("SS_ACCOUNT_NUMBER")
		_ = os.Unsetenv("SS_API_KEY")
	})

	yamlFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(yamlFile, []byte(`
api_key: from-yaml
region: ca
timeout: 45s
preferred_warehouses: [ON, BC]
debug: true
`), 0o600))

	cfg, err := Load(envFile, yamlFile)
	require.NoError(t, err)
	assert.Equal(t, "777", cfg.AccountNumber)
	assert.Equal(t, "from-yaml", cfg.APIKey)
	assert.Equal(t, "CA", cfg.Region)
	assert.Equal(t, 45*time.Second, cfg.Timeout)
	assert.Equal(t, []string{"ON", "BC"}, cfg.PreferredWarehouses)
	assert.True(t, cfg.Debug)
}

func TestLoad_MissingEnvFileIsIgnored(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"), "")
	assert.NoError(t, err)
}

func TestLoad_BadYAML(t *testing.T) {
	clearEnv(t)
	yamlFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(yamlFile, []byte("timeout: forever\n"), 0o600))

	_, err := Load("", yamlFile)
	assert.ErrorContains(t, err, "timeout")

	_, err = Load("", filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestReport_NeverLogsSecrets(t *testing.T) {
	clearEnv(t)
	t.Setenv("SS_API_KEY", "top-secret")

	core, logs := observer.New(zap.InfoLevel)
	FromEnv().Report(zap.New(core))

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "missing required environment variables", logs.All()[0].Message)
	fields := logs.All()[1].ContextMap()
	assert.Equal(t, "missing", fields["account_number"])
	assert.Equal(t, "set", fields["api_key"])
	for _, entry := range logs.All() {
		for _, v := range entry.ContextMap() {
			assert.NotEqual(t, "top-secret", v)
		}
	}
}
