package folio

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "folio.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
name: Ada Lovelace
url: https://ada.example
author: Ada
session_secret: from-file
allowed_admins:
  - ada@example.com
google:
  client_id: client.apps.googleusercontent.com
  client_secret: file-secret
store:
  driver: sqlite
  sqlite_path: /var/lib/folio/folio.db
upload:
  timeout: 10s
  disable_hosts: true
  s3:
    endpoint: https://minio.internal:9000
    bucket: photos
    access_key: AKIA
cache_ttl: 1m
`)
	t.Setenv(EnvSessionSecret, "from-env")
	t.Setenv(EnvS3SecretKey, "s3-secret")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "Ada Lovelace", cfg.Name)
	assert.Equal(t, "from-env", cfg.SessionSecret)
	assert.Equal(t, "file-secret", cfg.Google.ClientSecret)
	assert.Equal(t, []string{"ada@example.com"}, cfg.AllowedAdmins)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "/var/lib/folio/folio.db", cfg.Store.SQLitePath)
	assert.Equal(t, 10*time.Second, cfg.Upload.Timeout)
	assert.True(t, cfg.Upload.DisableHosts)
	assert.Equal(t, "s3-secret", cfg.Upload.S3.SecretKey)
	assert.True(t, cfg.Upload.S3.Enabled())
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, Site{Name: "Ada Lovelace", URL: "https://ada.example", Author: "Ada"}, cfg.Site())
}

func TestLoadConfigRejectsUnknownFields(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "name: x\nadmins: [a@b.c]\n"))
	assert.Error(t, err)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestConfigDefaults(t *testing.T) {
	var cfg SiteConfig
	cfg.setDefaults()
	assert.Equal(t, "Portfolio", cfg.Name)
	assert.Equal(t, "http://localhost:3000", cfg.URL)
	assert.Equal(t, ":3000", cfg.Addr)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 30*time.Second, cfg.Upload.Timeout)
}
