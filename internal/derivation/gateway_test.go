package derivation

import (
	"context"
	"crypto/rand"
	"errors"
	"testing"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/require"

	"github.com/Techspire/trinity-wallet/internal/seedvault"
	"github.com/Techspire/trinity-wallet/internal/storage"
)

// recordingEngine keeps the seed slices it was handed so tests can check
// they were wiped afterwards.
type recordingEngine struct {
	seeds [][]byte
	calls []string
	err   error
}

func (r *recordingEngine) DeriveAddress(seed []byte, index uint32, security int) (Address, error) {
	r.seeds = append(r.seeds, seed)
	r.calls = append(r.calls, "single")
	return Address{Index: index, Security: security, Address: "addr"}, r.err
}

func (r *recordingEngine) DeriveAddresses(seed []byte, index uint32, security, total int) ([]Address, error) {
	r.seeds = append(r.seeds, seed)
	r.calls = append(r.calls, "multi")
	out := make([]Address, total)
	for i := range out {
		out[i] = Address{Index: index + uint32(i), Security: security}
	}
	return out, r.err
}

func (r *recordingEngine) PrepareTransfers(seed []byte, transfers []Transfer, opts TransferOptions) (*PreparedBundle, error) {
	r.seeds = append(r.seeds, seed)
	r.calls = append(r.calls, "transfer")
	if r.err != nil {
		return nil, r.err
	}
	return &PreparedBundle{TxID: "txid", Fee: opts.FeeRate}, nil
}

func newVault(t *testing.T, seed []byte) *seedvault.Vault {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	v, err := seedvault.Open(storage.NewMemoryStore(), key)
	require.NoError(t, err)
	t.Cleanup(v.Close)
	if seed != nil {
		require.NoError(t, v.AddAccount(context.Background(), "main", seed))
	}
	return v
}

func requireWiped(t *testing.T, seeds [][]byte) {
	t.Helper()
	for _, s := range seeds {
		require.Equal(t, make([]byte, len(s)), s, "seed left in memory after call")
	}
}

func TestGatewaySingleVersusMulti(t *testing.T) {
	ctx := context.Background()
	eng := &recordingEngine{}
	g := NewGateway(newVault(t, abandonSeed(t)), eng, nil)

	one, err := g.GenerateAddress(ctx, AddressOptions{Index: 3, Security: SecuritySegwit})
	require.NoError(t, err)
	require.Len(t, one, 1)

	one, err = g.GenerateAddress(ctx, AddressOptions{Index: 3, Security: SecuritySegwit, Total: 1})
	require.NoError(t, err)
	require.Len(t, one, 1)

	many, err := g.GenerateAddress(ctx, AddressOptions{Index: 3, Security: SecuritySegwit, Total: 5})
	require.NoError(t, err)
	require.Len(t, many, 5)
	require.EqualValues(t, 7, many[4].Index)

	require.Equal(t, []string{"single", "single", "multi"}, eng.calls)
	requireWiped(t, eng.seeds)
}

func TestGatewayPrepareTransfers(t *testing.T) {
	ctx := context.Background()
	eng := &recordingEngine{}
	g := NewGateway(newVault(t, abandonSeed(t)), eng, nil)

	b, err := g.PrepareTransfers(ctx, []Transfer{{Address: "x", Value: 1}}, &TransferOptions{FeeRate: 7})
	require.NoError(t, err)
	require.EqualValues(t, 7, b.Fee)

	_, err = g.PrepareTransfers(ctx, nil, nil)
	require.NoError(t, err)

	require.Len(t, eng.seeds, 2)
	requireWiped(t, eng.seeds)
}

func TestGatewayPropagatesErrors(t *testing.T) {
	ctx := context.Background()

	empty := NewGateway(newVault(t, nil), &recordingEngine{}, nil)
	_, err := empty.GenerateAddress(ctx, AddressOptions{Security: SecuritySegwit})
	require.ErrorIs(t, err, seedvault.ErrNoVaultData)
	_, err = empty.PrepareTransfers(ctx, nil, nil)
	require.ErrorIs(t, err, seedvault.ErrNoVaultData)

	boom := errors.New("boom")
	eng := &recordingEngine{err: boom}
	g := NewGateway(newVault(t, abandonSeed(t)), eng, nil)
	_, err = g.GenerateAddress(ctx, AddressOptions{Security: SecuritySegwit})
	require.ErrorIs(t, err, boom)
	_, err = g.PrepareTransfers(ctx, nil, nil)
	require.ErrorIs(t, err, boom)
	requireWiped(t, eng.seeds)
}

func TestGatewayWithHDEngine(t *testing.T) {
	ctx := context.Background()
	g := NewGateway(newVault(t, abandonSeed(t)), NewHDEngine(&chaincfg.MainNetParams), nil)

	addrs, err := g.GenerateAddress(ctx, AddressOptions{Index: 0, Security: SecuritySegwit, Total: 2})
	require.NoError(t, err)
	require.Equal(t, "bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu", addrs[0].Address)
	require.Equal(t, "bc1qnjg0jd8228aq7egyzacy8cys3knf9xvrerkf9g", addrs[1].Address)
}
