package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadConfig_MergesEnvOverBase(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "store:\n  base_url: http://base\n  timeout: 10s\nlog:\n  level: info\n")
	writeFile(t, dir, "local.yaml", "store:\n  base_url: http://local\n")

	raw, err := LoadConfig("local", dir)
	require.NoError(t, err)

	store := raw["store"].(map[string]interface{})
	assert.Equal(t, "http://local", store["base_url"])
	assert.Equal(t, "10s", store["timeout"])
	assert.Equal(t, "info", raw["log"].(map[string]interface{})["level"])
}

func TestLoadConfig_MissingEnvFileIsIgnored(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "server:\n  port: \"8080\"\n")

	raw, err := LoadConfig("staging", dir)
	require.NoError(t, err)
	assert.Equal(t, "8080", raw["server"].(map[string]interface{})["port"])
}

func TestLoadConfig_MissingBaseFails(t *testing.T) {
	_, err := LoadConfig("local", t.TempDir())
	assert.Error(t, err)
}

func TestLoadConfig_SubstitutesSecrets(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "jwt:\n  secret: ${TRACKER_TEST_SECRET}\n")
	writeFile(t, dir, "secrets.env", "# comment\nTRACKER_TEST_SECRET=\"s3cret\"\n")

	raw, err := LoadConfig("", dir)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", raw["jwt"].(map[string]interface{})["secret"])
}

func TestLoadConfig_FallsBackToProcessEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "jwt:\n  secret: ${TRACKER_TEST_PROCESS_SECRET}\n")
	t.Setenv("TRACKER_TEST_PROCESS_SECRET", "from-env")

	raw, err := LoadConfig("", dir)
	require.NoError(t, err)
	assert.Equal(t, "from-env", raw["jwt"].(map[string]interface{})["secret"])
}

func TestDecode(t *testing.T) {
	raw := map[string]interface{}{
		"store": map[string]interface{}{"base_url": "http://x", "timeout": "3s", "retry_count": 2},
	}
	var out struct {
		Store StoreConfig `yaml:"store"`
	}
	require.NoError(t, Decode(raw, &out))
	assert.Equal(t, "http://x", out.Store.BaseURL)
	assert.Equal(t, 2, out.Store.RetryCount)
	assert.Equal(t, "3s", out.Store.Timeout.String())
}

func TestOverrideStoreFromEnv(t *testing.T) {
	t.Setenv("STORE_BASE_URL", "http://override")
	t.Setenv("STORE_RETRY_COUNT", "3")
	t.Setenv("STORE_TIMEOUT", "not-a-duration")

	cfg := StoreConfig{BaseURL: "http://orig"}
	OverrideStoreFromEnv(&cfg)
	assert.Equal(t, "http://override", cfg.BaseURL)
	assert.Equal(t, 3, cfg.RetryCount)
	assert.Zero(t, cfg.Timeout)
}
