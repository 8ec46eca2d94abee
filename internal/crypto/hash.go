package crypto

import "encoding/hex"

// AccountIDVersion identifies the account-name hashing scheme. Version 1 is
// the plain SHA-256 of the UTF-8 account name, hex encoded, which keeps ids
// stable with vaults written by earlier wallet releases.
const AccountIDVersion = 1

// AccountID returns the account id for name under p: the hex encoding of
// p.Hash over the UTF-8 name. With DefaultPrimitives this is the version 1
// scheme. Two names hashing to the same id would share one seed slot; this
// is not detected.
func AccountID(p Primitives, name string) string {
	return hex.EncodeToString(p.Hash([]byte(name)))
}

// HashAccountName returns the version 1 account id for name.
func HashAccountName(name string) string {
	return AccountID(DefaultPrimitives(), name)
}
