package derivation

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Techspire/trinity-wallet/internal/seedvault"
)

// SeedSource lends out the current account's seed. *seedvault.Vault
// satisfies it.
type SeedSource interface {
	WithSeed(ctx context.Context, fn func(seedvault.Seed) error) error
}

type AddressOptions struct {
	Index    uint32 `json:"index"`
	Security int    `json:"security"`
	// Total > 1 derives that many consecutive addresses starting at Index.
	Total int `json:"total,omitempty"`
}

type Gateway struct {
	seeds  SeedSource
	engine Engine
	logger log.FieldLogger
}

func NewGateway(seeds SeedSource, engine Engine, logger log.FieldLogger) *Gateway {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Gateway{seeds: seeds, engine: engine, logger: logger}
}

// GenerateAddress derives one address, or o.Total of them when o.Total > 1.
func (g *Gateway) GenerateAddress(ctx context.Context, o AddressOptions) ([]Address, error) {
	start := time.Now()
	var out []Address
	err := g.seeds.WithSeed(ctx, func(seed seedvault.Seed) error {
		if o.Total > 1 {
			addrs, err := g.engine.DeriveAddresses(seed, o.Index, o.Security, o.Total)
			out = addrs
			return err
		}
		addr, err := g.engine.DeriveAddress(seed, o.Index, o.Security)
		if err != nil {
			return err
		}
		out = []Address{addr}
		return nil
	})
	if err != nil {
		return nil, err
	}

	g.logger.WithFields(log.Fields{
		"op":       "address",
		"index":    o.Index,
		"security": o.Security,
		"count":    len(out),
		"took":     time.Since(start),
	}).Debug("derived addresses")
	return out, nil
}

// PrepareTransfers signs a transaction paying transfers from opts.Inputs.
// A nil opts is treated as empty options.
func (g *Gateway) PrepareTransfers(ctx context.Context, transfers []Transfer, opts *TransferOptions) (*PreparedBundle, error) {
	var o TransferOptions
	if opts != nil {
		o = *opts
	}

	var bundle *PreparedBundle
	err := g.seeds.WithSeed(ctx, func(seed seedvault.Seed) error {
		b, err := g.engine.PrepareTransfers(seed, transfers, o)
		bundle = b
		return err
	})
	if err != nil {
		return nil, err
	}

	g.logger.WithFields(log.Fields{
		"op":     "transfer",
		"txid":   bundle.TxID,
		"inputs": len(o.Inputs),
		"fee":    bundle.Fee,
	}).Info("prepared transfer")
	return bundle, nil
}
