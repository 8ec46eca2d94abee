// Package config loads seedvaultd and seedvaultctl settings from TOML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/btcsuite/btcd/chaincfg"
	log "github.com/sirupsen/logrus"

	"github.com/Techspire/trinity-wallet/internal/audit"
	"github.com/Techspire/trinity-wallet/internal/auth"
	cr "github.com/Techspire/trinity-wallet/internal/crypto"
	"github.com/Techspire/trinity-wallet/internal/storage"
)

var ErrInvalid = errors.New("config: invalid")

type StorageConfig struct {
	Backend         string `toml:"backend"`
	Path            string `toml:"path"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDB         string `toml:"mongo_db"`
	MongoCollection string `toml:"mongo_collection"`
	KeyringService  string `toml:"keyring_service"`
}

type VaultConfig struct {
	Alias string `toml:"alias"`
	// Argon2id cost. MemoryKiB is in KiB.
	KDFTime      uint32 `toml:"kdf_time"`
	KDFMemoryKiB uint32 `toml:"kdf_memory_kib"`
	KDFThreads   uint8  `toml:"kdf_threads"`
	// ClipboardTTL clears copied addresses after this long.
	ClipboardTTL time.Duration `toml:"clipboard_ttl"`
}

type NetworkConfig struct {
	Name    string `toml:"name"`
	FeeRate int64  `toml:"fee_rate"`
}

type ServerConfig struct {
	Listen      string        `toml:"listen"`
	JWTIssuer   string        `toml:"jwt_issuer"`
	TokenTTL    time.Duration `toml:"token_ttl"`
	SessionIdle time.Duration `toml:"session_idle"`
	UnlockRate  float64       `toml:"unlock_rate"`
	UnlockBurst int           `toml:"unlock_burst"`
	APIRate     float64       `toml:"api_rate"`
	APIBurst    int           `toml:"api_burst"`
}

type Config struct {
	LogLevel string        `toml:"log_level"`
	Storage  StorageConfig `toml:"storage"`
	Vault    VaultConfig   `toml:"vault"`
	Network  NetworkConfig `toml:"network"`
	Server   ServerConfig  `toml:"server"`
}

// Default returns a config that works out of the box for a local desktop.
func Default() Config {
	var c Config
	c.setDefaults()
	return c
}

func (c *Config) setDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = storage.BackendFile
	}
	if c.Storage.Path == "" {
		c.Storage.Path = defaultDataDir()
	}
	if c.Storage.MongoDB == "" {
		c.Storage.MongoDB = "seedvault"
	}
	if c.Storage.MongoCollection == "" {
		c.Storage.MongoCollection = "blobs"
	}
	if c.Storage.KeyringService == "" {
		c.Storage.KeyringService = "seedvault"
	}

	kdf := cr.DefaultDesktopKDF()
	if c.Vault.Alias == "" {
		c.Vault.Alias = "seeds"
	}
	if c.Vault.KDFTime == 0 {
		c.Vault.KDFTime = kdf.T
	}
	if c.Vault.KDFMemoryKiB == 0 {
		c.Vault.KDFMemoryKiB = kdf.M
	}
	if c.Vault.KDFThreads == 0 {
		c.Vault.KDFThreads = kdf.P
	}
	if c.Vault.ClipboardTTL <= 0 {
		c.Vault.ClipboardTTL = 30 * time.Second
	}

	if c.Network.Name == "" {
		c.Network.Name = "mainnet"
	}
	if c.Network.FeeRate <= 0 {
		c.Network.FeeRate = 2
	}

	if c.Server.Listen == "" {
		c.Server.Listen = "127.0.0.1:8420"
	}
	if c.Server.JWTIssuer == "" {
		c.Server.JWTIssuer = "seedvaultd"
	}
	if c.Server.TokenTTL <= 0 {
		c.Server.TokenTTL = 15 * time.Minute
	}
	if c.Server.SessionIdle <= 0 {
		c.Server.SessionIdle = 5 * time.Minute
	}
	if c.Server.UnlockRate <= 0 {
		c.Server.UnlockRate = 0.2
	}
	if c.Server.UnlockBurst <= 0 {
		c.Server.UnlockBurst = 3
	}
	if c.Server.APIRate <= 0 {
		c.Server.APIRate = 10
	}
	if c.Server.APIBurst <= 0 {
		c.Server.APIBurst = 20
	}
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "seedvault")
	}
	return "./seedvault"
}

// Load reads path over the defaults. Unknown keys are rejected so typos do
// not silently fall back to a default.
func Load(path string) (Config, error) {
	var c Config
	meta, err := toml.DecodeFile(path, &c)
	if err != nil {
		return Config{}, fmt.Errorf("config: load %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%w: unknown keys in %s: %s", ErrInvalid, path, strings.Join(keys, ", "))
	}
	c.setDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %v", ErrInvalid, err)
	}
	switch c.Storage.Backend {
	case storage.BackendFile, storage.BackendMemory, storage.BackendBadger,
		storage.BackendSQLite, storage.BackendKeyring:
	case storage.BackendMongo:
		if c.Storage.MongoURI == "" {
			return fmt.Errorf("%w: storage.mongo_uri is required for the mongo backend", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: storage.backend %q", ErrInvalid, c.Storage.Backend)
	}
	if _, err := c.ChainParams(); err != nil {
		return err
	}
	switch c.Vault.Alias {
	case auth.AliasKDF, audit.DefaultAlias:
		return fmt.Errorf("%w: vault.alias %q is reserved", ErrInvalid, c.Vault.Alias)
	}
	if c.Vault.KDFMemoryKiB < 8*uint32(c.Vault.KDFThreads) {
		return fmt.Errorf("%w: vault.kdf_memory_kib must be at least 8 per thread", ErrInvalid)
	}
	return nil
}

// ChainParams maps network.name to btcd chain parameters.
func (c Config) ChainParams() (*chaincfg.Params, error) {
	switch c.Network.Name {
	case "mainnet":
		return &chaincfg.MainNetParams, nil
	case "testnet", "testnet3":
		return &chaincfg.TestNet3Params, nil
	case "regtest":
		return &chaincfg.RegressionNetParams, nil
	case "signet":
		return &chaincfg.SigNetParams, nil
	}
	return nil, fmt.Errorf("%w: network.name %q", ErrInvalid, c.Network.Name)
}

func (c Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// KDF returns the argon2id cost with the given salt.
func (c Config) KDF(salt []byte) cr.KDFParams {
	return cr.KDFParams{M: c.Vault.KDFMemoryKiB, T: c.Vault.KDFTime, P: c.Vault.KDFThreads, Salt: salt}
}

// StorageOptions translates [storage] for storage.Open. The keyring
// password comes from the environment, never the file.
func (c Config) StorageOptions() storage.Options {
	return storage.Options{
		Backend:         c.Storage.Backend,
		Path:            c.Storage.Path,
		MongoURI:        c.Storage.MongoURI,
		MongoDB:         c.Storage.MongoDB,
		MongoCollection: c.Storage.MongoCollection,
		KeyringService:  c.Storage.KeyringService,
		KeyringPassword: os.Getenv("SEEDVAULT_KEYRING_PASSWORD"),
	}
}
