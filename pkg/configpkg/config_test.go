package configpkg

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, DefaultStoreDriver, c.StoreDriver)
	require.Equal(t, DefaultServerAddress, c.ServerAddress)
	require.Equal(t, DefaultEventsChannel, c.EventsChannel)
	require.Equal(t, DefaultShutdownTimeout, c.ShutdownTimeout)
	require.Empty(t, c.RedisAddress)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	content := "STORE_DRIVER=sqlite3\n" +
		"DB_SOURCE=file:ledger.db?_foreign_keys=on\n" +
		"SERVER_ADDRESS=127.0.0.1:9000\n" +
		"GO_ENV=development\n" +
		"SHUTDOWN_TIMEOUT=3s\n"

	err := os.WriteFile(filepath.Join(dir, "app.env"), []byte(content), 0o600)
	require.NoError(t, err)

	c, err := Load(dir)
	require.NoError(t, err)

	require.Equal(t, "sqlite3", c.StoreDriver)
	require.Equal(t, "file:ledger.db?_foreign_keys=on", c.DBSource)
	require.Equal(t, "127.0.0.1:9000", c.ServerAddress)
	require.Equal(t, "development", c.Environement)
	require.Equal(t, 3*time.Second, c.ShutdownTimeout)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()

	err := os.WriteFile(filepath.Join(dir, "app.env"), []byte("SERVER_ADDRESS=127.0.0.1:9000\n"), 0o600)
	require.NoError(t, err)

	t.Setenv("SERVER_ADDRESS", "127.0.0.1:9999")

	c, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9999", c.ServerAddress)
}
