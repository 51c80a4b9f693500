package apiclient

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadHeadersYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "headers.yaml")
	content := "headers:\n  x-campus: melendez\n  accept-language: es-CO\n  x-empty: \"  \"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	headers, err := LoadHeaders(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"X-Campus":        "melendez",
		"Accept-Language": "es-CO",
	}, headers)
}

func TestLoadHeadersJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "headers.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"headers":{"X-Client":"bu-client"}}`), 0o600))

	headers, err := LoadHeaders(path)
	require.NoError(t, err)
	assert.Equal(t, "bu-client", headers["X-Client"])
}

func TestLoadHeadersEmptyPath(t *testing.T) {
	headers, err := LoadHeaders("  ")
	require.NoError(t, err)
	assert.Nil(t, headers)
}

func TestLoadHeadersRejectsUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "headers.json")
	require.NoError(t, os.WriteFile(path, []byte("headers: [not json"), 0o600))

	_, err := LoadHeaders(path)
	require.Error(t, err)
}

func TestConfiguredHeadersKeepDefaults(t *testing.T) {
	cfg, err := normalizeConfig(Config{Headers: map[string]string{
		"accept":        "application/hal+json",
		"content-type":  "text/plain",
		"authorization": "Basic stale",
		"x-campus":      "melendez",
	}})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"Accept":       "application/json",
		"Content-Type": "application/json",
		"X-Campus":     "melendez",
	}, cfg.Headers)
}
