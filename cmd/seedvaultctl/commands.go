package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/Techspire/trinity-wallet/internal/audit"
	cr "github.com/Techspire/trinity-wallet/internal/crypto"
	"github.com/Techspire/trinity-wallet/internal/derivation"
	"github.com/Techspire/trinity-wallet/internal/mnemonic"
	"github.com/Techspire/trinity-wallet/internal/platform"
	"github.com/Techspire/trinity-wallet/internal/seedvault"
)

var initCommand = cli.Command{
	Name:   "init",
	Usage:  "set the vault passphrase and record a fresh KDF salt",
	Action: initVault,
}

func initVault(c *cli.Context) error {
	ctx := context.Background()
	e, err := openEnv(ctx, c)
	if err != nil {
		return err
	}
	defer e.close()

	pass, err := readSecret("New vault passphrase: ")
	if err != nil {
		return err
	}
	defer cr.Zero(pass)
	confirm, err := readSecret("Confirm passphrase: ")
	if err != nil {
		return err
	}
	defer cr.Zero(confirm)
	if !bytes.Equal(pass, confirm) {
		return errors.New("passphrases do not match")
	}

	if err := e.keys.Init(ctx, pass, e.cfg.KDF(nil)); err != nil {
		return err
	}
	fmt.Println("vault initialized")
	return nil
}

var mnemonicCommand = cli.Command{
	Name:  "mnemonic",
	Usage: "generate a new BIP39 recovery phrase",
	Flags: []cli.Flag{
		cli.IntFlag{
			Name:  "bits",
			Usage: "entropy size: 128, 160, 192, 224 or 256",
			Value: 256,
		},
	},
	Action: newMnemonic,
}

func newMnemonic(c *cli.Context) error {
	phrase, err := mnemonic.New(c.Int("bits"))
	if err != nil {
		return err
	}
	fmt.Println(phrase)
	return nil
}

var addCommand = cli.Command{
	Name:      "add",
	Usage:     "store a seed under a new account",
	ArgsUsage: "name",
	Description: "Reads a BIP39 phrase from the terminal without echo. " +
		"With --hex the prompt takes a raw hex seed instead.",
	Flags: []cli.Flag{
		cli.BoolFlag{
			Name:  "hex",
			Usage: "read a hex encoded seed instead of a mnemonic",
		},
		cli.BoolFlag{
			Name:  "bip39-passphrase",
			Usage: "prompt for an optional BIP39 passphrase",
		},
	},
	Action: addAccount,
}

func addAccount(c *cli.Context) error {
	name := c.Args().First()
	if name == "" {
		return cli.ShowCommandHelp(c, "add")
	}

	ctx := context.Background()
	e, err := openEnv(ctx, c)
	if err != nil {
		return err
	}
	defer e.close()
	v, err := e.unlock(ctx, c)
	if err != nil {
		return err
	}
	defer v.Close()

	seed, err := readSeed(c.Bool("hex"), c.Bool("bip39-passphrase"))
	if err != nil {
		return err
	}
	defer seed.Wipe()

	if err := v.AddUniqueAccount(ctx, name, seed); err != nil {
		return err
	}
	fmt.Printf("added account %s\n", v.CurrentAccount().Short())
	return nil
}

var renameCommand = cli.Command{
	Name:      "rename",
	Usage:     "move the --account seed to a new name",
	ArgsUsage: "new-name",
	Action:    renameAccount,
}

func renameAccount(c *cli.Context) error {
	newName := c.Args().First()
	if newName == "" {
		return cli.ShowCommandHelp(c, "rename")
	}
	if err := requireAccount(c); err != nil {
		return err
	}

	ctx := context.Background()
	e, err := openEnv(ctx, c)
	if err != nil {
		return err
	}
	defer e.close()
	v, err := e.unlock(ctx, c)
	if err != nil {
		return err
	}
	defer v.Close()

	if err := v.RenameAccount(ctx, newName); err != nil {
		return err
	}
	fmt.Printf("renamed to %s\n", v.CurrentAccount().Short())
	return nil
}

var removeCommand = cli.Command{
	Name:  "remove",
	Usage: "delete the --account seed from the vault",
	Flags: []cli.Flag{
		cli.BoolFlag{
			Name:  "yes",
			Usage: "do not ask for confirmation",
		},
	},
	Action: removeAccount,
}

func removeAccount(c *cli.Context) error {
	if err := requireAccount(c); err != nil {
		return err
	}
	if !c.Bool("yes") && !confirm(fmt.Sprintf("Remove account %q? The seed cannot be recovered from this vault.", c.GlobalString("account"))) {
		return errors.New("aborted")
	}

	ctx := context.Background()
	e, err := openEnv(ctx, c)
	if err != nil {
		return err
	}
	defer e.close()
	v, err := e.unlock(ctx, c)
	if err != nil {
		return err
	}
	defer v.Close()

	if err := v.RemoveAccount(ctx); err != nil {
		return err
	}
	fmt.Println("removed")
	return nil
}

var listCommand = cli.Command{
	Name:   "list",
	Usage:  "list the account ids stored in the vault",
	Action: listAccounts,
}

func listAccounts(c *cli.Context) error {
	ctx := context.Background()
	e, err := openEnv(ctx, c)
	if err != nil {
		return err
	}
	defer e.close()
	v, err := e.unlock(ctx, c)
	if err != nil {
		return err
	}
	defer v.Close()

	ids, err := v.Accounts(ctx)
	if errors.Is(err, seedvault.ErrNoVaultData) {
		ids = nil
	} else if err != nil {
		return err
	}
	return printJSON(struct {
		Accounts []seedvault.AccountID `json:"accounts"`
		Current  seedvault.AccountID   `json:"current,omitempty"`
	}{ids, v.CurrentAccount()})
}

var uniqueCommand = cli.Command{
	Name:  "unique",
	Usage: "report whether a seed is not yet stored under any account",
	Flags: []cli.Flag{
		cli.BoolFlag{Name: "hex", Usage: "read a hex encoded seed instead of a mnemonic"},
		cli.BoolFlag{Name: "bip39-passphrase", Usage: "prompt for an optional BIP39 passphrase"},
	},
	Action: uniqueSeed,
}

func uniqueSeed(c *cli.Context) error {
	ctx := context.Background()
	e, err := openEnv(ctx, c)
	if err != nil {
		return err
	}
	defer e.close()
	v, err := e.unlock(ctx, c)
	if err != nil {
		return err
	}
	defer v.Close()

	seed, err := readSeed(c.Bool("hex"), c.Bool("bip39-passphrase"))
	if err != nil {
		return err
	}
	defer seed.Wipe()

	unique, err := v.IsUniqueSeed(ctx, seed)
	if err != nil {
		return err
	}
	fmt.Println(unique)
	return nil
}

var addressCommand = cli.Command{
	Name:  "address",
	Usage: "derive receive addresses for the --account seed",
	Flags: []cli.Flag{
		cli.Uint64Flag{Name: "index", Usage: "first address index"},
		cli.IntFlag{
			Name:  "security",
			Usage: "1 legacy, 2 nested segwit, 3 native segwit",
			Value: derivation.SecuritySegwit,
		},
		cli.IntFlag{Name: "total", Usage: "number of consecutive addresses", Value: 1},
		cli.BoolFlag{Name: "copy", Usage: "copy the first address to the clipboard"},
	},
	Action: deriveAddress,
}

func deriveAddress(c *cli.Context) error {
	if err := requireAccount(c); err != nil {
		return err
	}
	index := c.Uint64("index")
	if index > 1<<31-1 {
		return fmt.Errorf("index %d is out of range", index)
	}

	ctx := context.Background()
	e, err := openEnv(ctx, c)
	if err != nil {
		return err
	}
	defer e.close()
	v, err := e.unlock(ctx, c)
	if err != nil {
		return err
	}
	defer v.Close()

	gw, err := e.gateway(v)
	if err != nil {
		return err
	}
	addrs, err := gw.GenerateAddress(ctx, derivation.AddressOptions{
		Index:    uint32(index),
		Security: c.Int("security"),
		Total:    c.Int("total"),
	})
	if err != nil {
		return err
	}

	if c.Bool("copy") && len(addrs) > 0 {
		ttl := e.cfg.Vault.ClipboardTTL
		if err := platform.NewClipboard().Set(addrs[0].Address, ttl); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "copied %s (clears in %s)\n", addrs[0].Address, ttl)
	}
	return printJSON(addrs)
}

var transferCommand = cli.Command{
	Name:  "transfer",
	Usage: "build and sign a transaction from the --account seed",
	Description: "Inputs are txid:vout:value:security:index, with a trailing " +
		":change for outputs received on the change branch. Outputs are " +
		"address:value in satoshis. The signed transaction is printed, " +
		"never broadcast.",
	Flags: []cli.Flag{
		cli.StringSliceFlag{Name: "input, i", Usage: "unspent output to spend (repeatable)"},
		cli.StringSliceFlag{Name: "to, o", Usage: "address:value to pay (repeatable)"},
		cli.Int64Flag{Name: "fee-rate", Usage: "sat/vbyte, 0 uses the configured rate"},
		cli.IntFlag{Name: "change-security", Usage: "script type of the change output", Value: derivation.SecuritySegwit},
		cli.Uint64Flag{Name: "change-index", Usage: "change branch index for the change output"},
	},
	Action: prepareTransfer,
}

func prepareTransfer(c *cli.Context) error {
	if err := requireAccount(c); err != nil {
		return err
	}
	transfers, err := parseTransfers(c.StringSlice("to"))
	if err != nil {
		return err
	}
	inputs, err := parseInputs(c.StringSlice("input"))
	if err != nil {
		return err
	}
	changeIndex := c.Uint64("change-index")
	if changeIndex > 1<<31-1 {
		return fmt.Errorf("change index %d is out of range", changeIndex)
	}

	ctx := context.Background()
	e, err := openEnv(ctx, c)
	if err != nil {
		return err
	}
	defer e.close()
	v, err := e.unlock(ctx, c)
	if err != nil {
		return err
	}
	defer v.Close()

	gw, err := e.gateway(v)
	if err != nil {
		return err
	}
	bundle, err := gw.PrepareTransfers(ctx, transfers, &derivation.TransferOptions{
		Inputs:         inputs,
		FeeRate:        c.Int64("fee-rate"),
		ChangeSecurity: c.Int("change-security"),
		ChangeIndex:    uint32(changeIndex),
	})
	if err != nil {
		return err
	}
	return printJSON(bundle)
}

var auditCommand = cli.Command{
	Name:  "audit",
	Usage: "print the audit log and verify its hash chain",
	Description: "Entries carry hashed account ids only, so no passphrase " +
		"is needed. Exits non-zero when the chain does not verify.",
	Action: showAudit,
}

func showAudit(c *cli.Context) error {
	ctx := context.Background()
	e, err := openEnv(ctx, c)
	if err != nil {
		return err
	}
	defer e.close()

	l, err := audit.Open(ctx, e.store, audit.DefaultAlias)
	if errors.Is(err, audit.ErrChainBroken) {
		if perr := printJSON(map[string]any{"valid": false, "error": err.Error()}); perr != nil {
			return perr
		}
		return err
	}
	if err != nil {
		return err
	}
	return printJSON(map[string]any{"entries": l.Entries(), "valid": true})
}
