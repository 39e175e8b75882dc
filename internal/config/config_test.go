package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CONFIG_FILE", filepath.Join(dir, "missing.toml"))
	t.Setenv("ENV_FILE", filepath.Join(dir, "missing.env"))
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "warbler", cfg.App.Name)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTPAddr())
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[app]
port = 9090

[database]
driver = "postgres"

[postgres]
host = "db"
db = "feed"
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("POSTGRES_PORT", "6543")
	t.Setenv("APP_PORT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.App.Port)

	dsn, err := cfg.DatabaseDSN()
	require.NoError(t, err)
	assert.Equal(t, "host=db port=6543 user=postgres password=postgres dbname=feed sslmode=disable", dsn)
}

func TestLoadEnvFile(t *testing.T) {
	dir := isolate(t)
	envPath := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envPath, []byte("WARBLER_TEST_ONLY=1\nDB_DRIVER=sqlite\nSQLITE_PATH=/tmp/w.db\n"), 0o600))
	t.Setenv("ENV_FILE", envPath)
	t.Cleanup(func() {
		os.Unsetenv("WARBLER_TEST_ONLY")
		os.Unsetenv("DB_DRIVER")
		os.Unsetenv("SQLITE_PATH")
	})

	cfg, err := Load()
	require.NoError(t, err)
	dsn, err := cfg.DatabaseDSN()
	require.NoError(t, err)
	assert.Equal(t, "file:/tmp/w.db?_foreign_keys=on&_busy_timeout=5000", dsn)
}

func TestDatabaseDSNRejectsUnknownDriver(t *testing.T) {
	cfg := defaultConfig()
	cfg.Database.Driver = "oracle"

	_, err := cfg.DatabaseDSN()
	assert.Error(t, err)
}

func TestMySQLDSN(t *testing.T) {
	cfg := defaultConfig()
	assert.Equal(t, "root:@tcp(127.0.0.1:3306)/warbler?parseTime=true&loc=UTC&charset=utf8mb4&collation=utf8mb4_bin", cfg.MySQLDSN())
}
