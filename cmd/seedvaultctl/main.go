package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"golang.org/x/term"

	"github.com/Techspire/trinity-wallet/internal/audit"
	"github.com/Techspire/trinity-wallet/internal/auth"
	"github.com/Techspire/trinity-wallet/internal/config"
	cr "github.com/Techspire/trinity-wallet/internal/crypto"
	"github.com/Techspire/trinity-wallet/internal/derivation"
	"github.com/Techspire/trinity-wallet/internal/platform"
	"github.com/Techspire/trinity-wallet/internal/seedvault"
	"github.com/Techspire/trinity-wallet/internal/storage"
)

// passphraseEnv lets scripts skip the interactive prompt.
const passphraseEnv = "SEEDVAULT_PASSPHRASE"

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[seedvaultctl] %v\n", err)
	platform.Purge()
	os.Exit(1)
}

func main() {
	app := cli.NewApp()
	app.Name = "seedvaultctl"
	app.Usage = "manage the encrypted seed vault from the command line"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, C",
			Usage: "path to a TOML config file",
		},
		cli.StringFlag{
			Name:  "backend",
			Usage: "storage backend: file, memory, badger, sqlite, mongo or keyring",
		},
		cli.StringFlag{
			Name:  "datadir",
			Usage: "directory (or sqlite file) for the storage backend",
		},
		cli.StringFlag{
			Name:  "network",
			Usage: "mainnet, testnet, regtest or signet",
		},
		cli.StringFlag{
			Name:  "account, a",
			Usage: "account name the command operates on",
		},
		cli.StringFlag{
			Name:  "loglevel",
			Usage: "logging level",
			Value: "warn",
		},
	}
	app.Before = func(c *cli.Context) error {
		lvl, err := log.ParseLevel(c.GlobalString("loglevel"))
		if err != nil {
			return err
		}
		log.SetLevel(lvl)
		platform.Harden()
		return nil
	}
	app.Commands = []cli.Command{
		initCommand,
		mnemonicCommand,
		addCommand,
		renameCommand,
		removeCommand,
		listCommand,
		uniqueCommand,
		addressCommand,
		transferCommand,
		auditCommand,
	}

	if err := app.Run(os.Args); err != nil {
		fatal(err)
	}
	platform.Purge()
}

func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := c.GlobalString("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return config.Config{}, err
		}
	}
	if b := c.GlobalString("backend"); b != "" {
		cfg.Storage.Backend = b
	}
	if d := c.GlobalString("datadir"); d != "" {
		cfg.Storage.Path = d
	}
	if n := c.GlobalString("network"); n != "" {
		cfg.Network.Name = n
	}
	return cfg, cfg.Validate()
}

// env is everything a command needs after the config is resolved.
type env struct {
	cfg   config.Config
	store storage.BlobStore
	keys  *auth.Keys
}

func (e *env) close() {
	if err := storage.Close(context.Background(), e.store); err != nil {
		log.WithError(err).Warn("close storage")
	}
}

func openEnv(ctx context.Context, c *cli.Context) (*env, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(ctx, cfg.StorageOptions())
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, store: store, keys: auth.NewKeys(store)}, nil
}

// unlock prompts for the passphrase and opens the vault on the account
// named by --account, if any.
func (e *env) unlock(ctx context.Context, c *cli.Context) (*seedvault.Vault, error) {
	pass, err := readPassphrase("Vault passphrase: ")
	if err != nil {
		return nil, err
	}
	key, err := e.keys.Derive(ctx, pass)
	cr.Zero(pass)
	if err != nil {
		return nil, err
	}
	defer cr.WipeKey(&key)

	auditLog, err := audit.Open(ctx, e.store, audit.DefaultAlias)
	if err != nil {
		return nil, err
	}
	opts := []seedvault.Option{
		seedvault.WithAlias(e.cfg.Vault.Alias),
		seedvault.WithAuditLog(auditLog),
		seedvault.WithLogger(log.WithField("component", "seedvault")),
	}
	if name := c.GlobalString("account"); name != "" {
		opts = append(opts, seedvault.WithAccount(name))
	}
	return seedvault.Open(e.store, key[:], opts...)
}

func (e *env) gateway(v *seedvault.Vault) (*derivation.Gateway, error) {
	params, err := e.cfg.ChainParams()
	if err != nil {
		return nil, err
	}
	engine := derivation.NewHDEngine(params).WithFeeRate(e.cfg.Network.FeeRate)
	return derivation.NewGateway(v, engine, log.WithField("component", "derivation")), nil
}

var errNoAccount = errors.New("--account is required")

func requireAccount(c *cli.Context) error {
	if c.GlobalString("account") == "" {
		return errNoAccount
	}
	return nil
}

// readPassphrase reads from the environment when set, otherwise prompts on
// the terminal without echo.
func readPassphrase(prompt string) ([]byte, error) {
	if p, ok := os.LookupEnv(passphraseEnv); ok {
		return []byte(p), nil
	}
	return readSecret(prompt)
}

func readSecret(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", strings.TrimSuffix(prompt, ": "), err)
	}
	return b, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "\t")
	return enc.Encode(v)
}
