package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"APP_ENV", "ENV", "HTTP_ADDR", "DATABASE_URL", "REDIS_ADDR", "LOCK_TTL", "LOG_LEVEL",
		"LOG_FORMAT", "CORS_ALLOWED_ORIGINS", "DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS",
		"DB_CONN_MAX_LIFETIME", "AUTO_MIGRATE", "CONFIG_FILE",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "maintenance.db", cfg.DatabaseURL)
	assert.Equal(t, 30*time.Second, cfg.LockTTL)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 25, cfg.DBMaxOpenConns)
	assert.True(t, cfg.AutoMigrate)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
http_addr = ":9000"
database_url = "file.db"
lock_ttl = "10s"
cors_allowed_origins = ["https://a.example"]
auto_migrate = false
`), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DATABASE_URL", "env.db")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://b.example, https://c.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, "env.db", cfg.DatabaseURL)
	assert.Equal(t, 10*time.Second, cfg.LockTTL)
	assert.Equal(t, []string{"https://b.example", "https://c.example"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.AutoMigrate)
}

func TestLoad_InvalidDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOCK_TTL", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOCK_TTL")
}

func TestLoad_ProdRejectsSQLite(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("AUTO_MIGRATE", "false")
	t.Setenv("DATABASE_URL", "maintenance.db")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/maintenance")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProdLike())
}

func TestIsSQLite(t *testing.T) {
	assert.True(t, IsSQLite("file:test?mode=memory"))
	assert.False(t, IsSQLite("postgresql://localhost/db"))
	assert.False(t, IsSQLite("mysql://root@tcp(localhost:3306)/db"))
}
