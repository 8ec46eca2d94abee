package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Techspire/trinity-wallet/internal/config"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(nil)
	require.NoError(t, err)
	require.Equal(t, config.Default(), cfg)
}

func TestLoadConfigFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seedvault.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level = "debug"

[network]
name = "testnet"

[server]
listen = "127.0.0.1:9000"
`), 0o600))

	cfg, err := loadConfig([]string{"--config", path, "--listen", "127.0.0.1:9001", "--network", "regtest"})
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "127.0.0.1:9001", cfg.Server.Listen)
	require.Equal(t, "regtest", cfg.Network.Name)
}

func TestLoadConfigRejectsBadNetwork(t *testing.T) {
	_, err := loadConfig([]string{"--network", "moonnet"})
	require.ErrorIs(t, err, config.ErrInvalid)
}
