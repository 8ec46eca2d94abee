package crypto

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"
)

func randBytes(t testing.TB, n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}
	return b
}

func TestSealOpenRoundTrip(t *testing.T) {
	p := DefaultPrimitives()
	key := randBytes(t, KeySize)
	pt := randBytes(t, 4096)
	aad := []byte("seedvault:seeds")
	env, err := p.Seal(key, pt, aad)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if env[0] != EnvelopeV2 {
		t.Fatalf("expected version %#x, got %#x", EnvelopeV2, env[0])
	}
	out, err := p.Open(key, env, aad)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !bytes.Equal(pt, out) {
		t.Fatal("plaintext mismatch")
	}
}

func TestOpenWrongKey(t *testing.T) {
	p := DefaultPrimitives()
	env, err := p.Seal(randBytes(t, KeySize), []byte("secret-data"), nil)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if _, err := p.Open(randBytes(t, KeySize), env, nil); !errors.Is(err, ErrInvalidMAC) {
		t.Fatalf("expected ErrInvalidMAC, got %v", err)
	}
}

func TestSealOpenAADMismatch(t *testing.T) {
	p := DefaultPrimitives()
	key := randBytes(t, KeySize)
	env, err := p.Seal(key, []byte("secret-data"), []byte("aad-1"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if _, err := p.Open(key, env, []byte("aad-2")); err == nil {
		t.Fatal("expected auth failure with mismatched AAD")
	}
}

func TestSealOpenTagTamper(t *testing.T) {
	p := DefaultPrimitives()
	key := randBytes(t, KeySize)
	env, err := p.Seal(key, []byte("hello"), nil)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	mut := append([]byte(nil), env...)
	mut[len(mut)-1] ^= 0xFF
	if _, err := p.Open(key, mut, nil); err == nil {
		t.Fatal("expected failure after tag tamper")
	}
}

func TestSealOpenTruncation(t *testing.T) {
	p := DefaultPrimitives()
	key := randBytes(t, KeySize)
	if _, err := p.Open(key, []byte{EnvelopeV2, 1, 2, 3}, nil); !errors.Is(err, ErrCiphertextTooShort) {
		t.Fatalf("expected ErrCiphertextTooShort, got %v", err)
	}
	if _, err := p.Open(key, nil, nil); !errors.Is(err, ErrCiphertextTooShort) {
		t.Fatalf("expected ErrCiphertextTooShort for empty envelope, got %v", err)
	}
}

func TestOpenUnknownVersion(t *testing.T) {
	p := DefaultPrimitives()
	key := randBytes(t, KeySize)
	env, err := p.Seal(key, []byte("hello"), nil)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	// 0x01 is reserved and was never written by this package.
	for _, version := range []byte{0x00, 0x01, 0x7f} {
		env[0] = version
		if _, err := p.Open(key, env, nil); !errors.Is(err, ErrUnknownVersion) {
			t.Fatalf("version %#x: expected ErrUnknownVersion, got %v", version, err)
		}
	}
}

func TestSealRejectsBadKeys(t *testing.T) {
	p := DefaultPrimitives()
	if _, err := p.Seal(nil, []byte("x"), nil); !errors.Is(err, ErrEmptyKey) {
		t.Fatalf("expected ErrEmptyKey, got %v", err)
	}
	if _, err := p.Seal(make([]byte, 16), []byte("x"), nil); !errors.Is(err, ErrInvalidKeySize) {
		t.Fatalf("expected ErrInvalidKeySize, got %v", err)
	}
}

func TestSealUniqueNonce(t *testing.T) {
	p := DefaultPrimitives()
	key := randBytes(t, KeySize)
	env1, err := p.Seal(key, []byte("data"), nil)
	if err != nil {
		t.Fatalf("seal1: %v", err)
	}
	env2, err := p.Seal(key, []byte("data"), nil)
	if err != nil {
		t.Fatalf("seal2: %v", err)
	}
	if bytes.Equal(env1, env2) {
		t.Fatal("expected distinct envelopes for identical plaintext")
	}
}

func TestHashAccountName(t *testing.T) {
	const want = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := HashAccountName("abc"); got != want {
		t.Fatalf("HashAccountName(abc) = %s, want %s", got, want)
	}
	if got := AccountID(DefaultPrimitives(), "abc"); got != want {
		t.Fatalf("AccountID(default, abc) = %s, want %s", got, want)
	}
	if HashAccountName("main") == HashAccountName("Main") {
		t.Fatal("distinct names hashed to the same id")
	}
}

func TestDeriveVaultKey(t *testing.T) {
	params := KDFParams{M: 8 * 1024, T: 1, P: 1, Salt: randBytes(t, SaltSize)}
	k1 := DeriveVaultKey([]byte("correct horse"), params)
	k2 := DeriveVaultKey([]byte("correct horse"), params)
	if k1 != k2 {
		t.Fatal("derivation is not deterministic")
	}
	k3 := DeriveVaultKey([]byte("battery staple"), params)
	if k1 == k3 {
		t.Fatal("different passphrases produced the same key")
	}
	WipeKey(&k1)
	if k1 != ([32]byte{}) {
		t.Fatal("WipeKey left key material behind")
	}
}

func FuzzEnvelopeRejectMutations(f *testing.F) {
	f.Add([]byte("hello"), []byte("aad"))
	f.Add([]byte(""), []byte(""))
	f.Fuzz(func(t *testing.T, pt, aad []byte) {
		p := DefaultPrimitives()
		key := randBytes(t, KeySize)
		env, err := p.Seal(key, pt, aad)
		if err != nil {
			t.Fatalf("seal: %v", err)
		}
		got, err := p.Open(key, env, aad)
		if err != nil {
			t.Fatalf("open baseline: %v", err)
		}
		if !bytes.Equal(pt, got) {
			t.Fatalf("roundtrip mismatch")
		}
		mut := append([]byte(nil), env...)
		idx := 1 + len(pt)%(len(mut)-1)
		mut[idx] ^= 0xFF
		if _, err := p.Open(key, mut, aad); err == nil {
			t.Fatalf("mutation at %d succeeded", idx)
		}
	})
}
