package seedvault

import (
	"sort"

	cr "github.com/Techspire/trinity-wallet/internal/crypto"
)

// AliasSeeds is the storage alias holding the sealed account map.
const AliasSeeds = "seeds"

// AccountID is the hex encoded one-way hash of an account name. It is the
// only key under which seeds are stored.
type AccountID string

// Short returns a log-safe prefix of the id.
func (id AccountID) Short() string {
	if len(id) > 8 {
		return string(id[:8])
	}
	return string(id)
}

// Seed is an account's root secret. Values handed out by the vault are
// copies owned by the caller, who must Wipe them when done.
type Seed []byte

// Wipe zeroes the seed in place.
func (s Seed) Wipe() { cr.Zero(s) }

func (s Seed) clone() Seed { return append(Seed(nil), s...) }

// AccountMap is the decrypted content of the vault envelope.
type AccountMap map[AccountID]Seed

// Wipe zeroes every seed in the map.
func (m AccountMap) Wipe() {
	for _, s := range m {
		s.Wipe()
	}
}

// IDs returns the account ids in lexical order.
func (m AccountMap) IDs() []AccountID {
	ids := make([]AccountID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
