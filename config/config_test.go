package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, 3000, cfg.Web.Port)
	assert.Equal(t, "river-house-belgrade", cfg.Media.UploadFolder)
	assert.Equal(t, "info@riverhouse.rs", cfg.Mail.AdminEmail)
	assert.Equal(t, "River House Belgrade <noreply@riverhouse.rs>", cfg.Mail.From)
	assert.Equal(t, time.Hour, cfg.PlacesCacheTTL())
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	cfile := filepath.Join(dir, "riverhouse.yml")
	content := []byte(`
web:
  port: 8080
database:
  type: sqlite
  name: test.db
media:
  provider: s3
  bucket: photos
`)
	require.NoError(t, os.WriteFile(cfile, content, 0o600))

	t.Setenv("ADMIN_DEFAULT_USER", "admin")
	t.Setenv("ADMIN_DEFAULT_PASS", "changeme")
	t.Setenv("ADMIN_JWT_SECRET", "s3cret")
	t.Setenv("RIVERHOUSE_WEB_PORT", "9090")
	t.Setenv("RIVERHOUSE_MAIL_ENABLED", "true")
	t.Setenv("CLOUDINARY_UPLOAD_FOLDER", "custom-folder")

	cfg, err := LoadConfig(cfile)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Web.Port)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "test.db", cfg.Database.Name)
	assert.Equal(t, "s3", cfg.Media.Provider)
	assert.Equal(t, "photos", cfg.Media.Bucket)
	assert.Equal(t, "custom-folder", cfg.Media.UploadFolder)
	assert.Equal(t, "admin", cfg.Admin.DefaultUser)
	assert.Equal(t, "changeme", cfg.Admin.DefaultPass)
	assert.Equal(t, "s3cret", cfg.Web.Secret)
	assert.True(t, cfg.Mail.Enabled)
}

func TestLoadConfigInvalidYaml(t *testing.T) {
	cfile := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(cfile, []byte("web: [1, 2"), 0o600))

	_, err := LoadConfig(cfile)
	assert.Error(t, err)
}

func TestInvalidEnvIntIgnored(t *testing.T) {
	t.Setenv("RIVERHOUSE_WEB_PORT", "not-a-port")
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Web.Port)
}
