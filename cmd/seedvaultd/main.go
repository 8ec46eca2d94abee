package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	flags "github.com/jessevdk/go-flags"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Techspire/trinity-wallet/internal/audit"
	"github.com/Techspire/trinity-wallet/internal/config"
	"github.com/Techspire/trinity-wallet/internal/derivation"
	"github.com/Techspire/trinity-wallet/internal/platform"
	"github.com/Techspire/trinity-wallet/internal/server"
	"github.com/Techspire/trinity-wallet/internal/storage"
)

// options are the command-line overrides. Anything left empty keeps the
// value from the config file (or its default).
type options struct {
	ConfigFile string `short:"C" long:"config" description:"Path to a TOML config file"`
	Listen     string `long:"listen" description:"Address to serve the API on"`
	LogLevel   string `long:"loglevel" description:"Logging level: trace, debug, info, warn or error"`
	Network    string `long:"network" description:"mainnet, testnet, regtest or signet"`
	Backend    string `long:"backend" description:"Storage backend: file, memory, badger, sqlite, mongo or keyring"`
	DataDir    string `long:"datadir" description:"Directory (or sqlite file) for the storage backend"`
}

func main() {
	if err := run(); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		log.WithError(err).Error("seedvaultd exited")
		os.Exit(1)
	}
}

func loadConfig(args []string) (config.Config, error) {
	var opts options
	if _, err := flags.ParseArgs(&opts, args); err != nil {
		return config.Config{}, err
	}

	cfg := config.Default()
	if opts.ConfigFile != "" {
		var err error
		if cfg, err = config.Load(opts.ConfigFile); err != nil {
			return config.Config{}, err
		}
	}

	if opts.Listen != "" {
		cfg.Server.Listen = opts.Listen
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	if opts.Network != "" {
		cfg.Network.Name = opts.Network
	}
	if opts.Backend != "" {
		cfg.Storage.Backend = opts.Backend
	}
	if opts.DataDir != "" {
		cfg.Storage.Path = opts.DataDir
	}
	return cfg, cfg.Validate()
}

func run() error {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		return err
	}
	log.SetLevel(cfg.Level())
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	// The daemon shuts down on its own signal handling so sessions get locked
	// before memguard purges; only core dumps are disabled here.
	if err := platform.DisableCoreDumps(); err != nil {
		log.WithError(err).Warn("could not disable core dumps")
	}
	defer platform.Purge()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, cfg.StorageOptions())
	if err != nil {
		return err
	}
	defer func() {
		if err := storage.Close(context.Background(), store); err != nil {
			log.WithError(err).Warn("close storage")
		}
	}()

	params, err := cfg.ChainParams()
	if err != nil {
		return err
	}
	auditLog, err := audit.Open(ctx, store, audit.DefaultAlias)
	if err != nil {
		return err
	}
	log.WithField("entries", len(auditLog.Entries())).Info("audit log verified")

	srv, err := server.New(cfg.Server, server.Deps{
		Store:  store,
		Engine: derivation.NewHDEngine(params).WithFeeRate(cfg.Network.FeeRate),
		Alias:  cfg.Vault.Alias,
		Audit:  auditLog,
		Logger: log.WithField("component", "server"),
	})
	if err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr:              cfg.Server.Listen,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		srv.Run(ctx)
		return nil
	})
	g.Go(func() error {
		log.WithFields(log.Fields{
			"listen":  cfg.Server.Listen,
			"network": params.Name,
			"backend": cfg.Storage.Backend,
		}).Info("seedvaultd listening")
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	log.Info("seedvaultd stopped")
	return err
}
