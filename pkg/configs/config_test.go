package configs_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/exceleasy/pkg/configs"
)

func TestInitConfigDefaults(t *testing.T) {
	require.NoError(t, configs.InitConfig(t.TempDir()))

	cfg := configs.GetConfig()
	assert.Equal(t, configs.DefaultPort, cfg.Server.Port)
	assert.Equal(t, configs.DefaultMaxUploadBytes, cfg.Ingest.MaxUploadBytes)
	assert.ElementsMatch(t, []string{configs.MIMETypeXLS, configs.MIMETypeXLSX}, cfg.Ingest.AllowedMIMETypes)
	assert.Equal(t, configs.StoreBackendSQL, cfg.Store.Backend)
	assert.Equal(t, configs.SQLite, cfg.DB.Type)
	assert.Equal(t, configs.AuthModeHeader, cfg.Auth.Mode)
	assert.Equal(t, configs.DefaultAllowOrigins, cfg.Server.CORS.AllowOrigins)
	assert.Equal(t, 24*time.Hour, cfg.Ingest.IdempotencyTTL)
}

func TestInitConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`
server:
  port: 9001
ingest:
  max_upload_bytes: 1024
  sniff_content: false
db:
  type: postgres
  host: db.internal
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o600))

	t.Setenv("EXCELEASY_SERVER_DEBUG", "true")

	require.NoError(t, configs.InitConfig(dir))

	cfg := configs.GetConfig()
	assert.Equal(t, 9001, cfg.Server.Port)
	assert.True(t, cfg.Server.Debug)
	assert.Equal(t, int64(1024), cfg.Ingest.MaxUploadBytes)
	assert.False(t, cfg.Ingest.SniffContent)
	assert.Equal(t, "PostgreSQL", cfg.DB.GetDBType())
	assert.Contains(t, cfg.DB.GetDSN(), "host=db.internal")
}

func TestInitConfigRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("auth:\n  mode: jwt\n"), 0o600))

	err := configs.InitConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestDBConfigExplicitDSN(t *testing.T) {
	c := configs.DBConfig{Type: configs.SQLite, Database: "x", DSN: "file::memory:"}
	assert.Equal(t, "file::memory:", c.GetDSN())

	c.DSN = ""
	assert.Equal(t, "file:x.db?_pragma=foreign_keys(1)", c.GetDSN())
}

func TestRedactedMasksSecrets(t *testing.T) {
	var cfg configs.AppConfig
	cfg.DB.Password = "pw"
	cfg.Auth.JWTSecret = "secret"
	cfg.S3.SecretAccessKey = "minio"
	cfg.S3.AccessKeyID = "minioadmin"

	out := cfg.Redacted()

	assert.Equal(t, "******", out.DB.Password)
	assert.Equal(t, "******", out.Auth.JWTSecret)
	assert.Equal(t, "******", out.S3.SecretAccessKey)
	assert.Equal(t, "minioadmin", out.S3.AccessKeyID)
	assert.Empty(t, out.MQ.Redis.Password)

	assert.Equal(t, "pw", cfg.DB.Password)
}
