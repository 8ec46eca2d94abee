package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/Techspire/trinity-wallet/internal/storage"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seedvault.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	require.Equal(t, storage.BackendFile, c.Storage.Backend)
	require.Equal(t, "seeds", c.Vault.Alias)
	require.Equal(t, 15*time.Minute, c.Server.TokenTTL)
	require.Equal(t, log.InfoLevel, c.Level())

	params, err := c.ChainParams()
	require.NoError(t, err)
	require.Equal(t, chaincfg.MainNetParams.Name, params.Name)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
log_level = "debug"

[storage]
backend = "sqlite"
path = "/var/lib/seedvault/vault.db"

[vault]
kdf_time = 1
kdf_memory_kib = 65536
clipboard_ttl = "10s"

[network]
name = "regtest"

[server]
listen = ":9000"
token_ttl = "1h"
`)
	c, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, log.DebugLevel, c.Level())
	require.Equal(t, storage.BackendSQLite, c.Storage.Backend)
	require.Equal(t, "/var/lib/seedvault/vault.db", c.StorageOptions().Path)
	require.EqualValues(t, 1, c.Vault.KDFTime)
	require.EqualValues(t, 65536, c.KDF([]byte("salt")).M)
	require.EqualValues(t, 4, c.Vault.KDFThreads)
	require.Equal(t, 10*time.Second, c.Vault.ClipboardTTL)
	require.Equal(t, ":9000", c.Server.Listen)
	require.Equal(t, time.Hour, c.Server.TokenTTL)
	require.Equal(t, "seedvaultd", c.Server.JWTIssuer)

	params, err := c.ChainParams()
	require.NoError(t, err)
	require.Equal(t, chaincfg.RegressionNetParams.Name, params.Name)
}

func TestLoadRejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":    "colour = \"blue\"\n",
		"bad backend":    "[storage]\nbackend = \"floppy\"\n",
		"mongo no uri":   "[storage]\nbackend = \"mongo\"\n",
		"bad network":    "[network]\nname = \"dogecoin\"\n",
		"bad level":      "log_level = \"loud\"\n",
		"kdf too small":  "[vault]\nkdf_memory_kib = 8\nkdf_threads = 4\n",
		"malformed toml": "[storage\n",
		"wrong type":     "[server]\nunlock_burst = \"many\"\n",
		"kdf alias":      "[vault]\nalias = \"kdf\"\n",
		"audit alias":    "[vault]\nalias = \"audit\"\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			require.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
}

func TestStorageOptionsKeyringPassword(t *testing.T) {
	t.Setenv("SEEDVAULT_KEYRING_PASSWORD", "hunter2")
	c := Default()
	c.Storage.Backend = storage.BackendKeyring
	require.Equal(t, "hunter2", c.StorageOptions().KeyringPassword)
	require.Equal(t, "seedvault", c.StorageOptions().KeyringService)
}
