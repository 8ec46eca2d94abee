package audit

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Techspire/trinity-wallet/internal/storage"
)

// DefaultAlias is where Open persists the log.
const DefaultAlias = "audit"

var ErrChainBroken = errors.New("audit: chain broken")

// Entry records one committed vault mutation. Account is the hashed account
// id, never a human-readable name or any secret.
type Entry struct {
	TS      int64  `json:"ts"`
	Op      string `json:"op"`
	Account string `json:"account"`
	Hash    string `json:"hash"`
}

// Log is an append-only, hash-chained record of vault operations. Each
// entry's hash covers the previous hash, so editing or dropping an entry
// breaks Verify.
type Log struct {
	mu       sync.Mutex
	lastHash []byte
	entries  []Entry
	now      func() time.Time

	store storage.BlobStore
	alias string
}

// New returns a log kept in memory only.
func New() *Log { return &Log{now: time.Now} }

// Open loads the log persisted at alias in store and verifies its chain.
// A missing alias yields an empty log. Every Append is written back.
func Open(ctx context.Context, store storage.BlobStore, alias string) (*Log, error) {
	l := &Log{now: time.Now, store: store, alias: alias}
	blob, err := store.Get(ctx, alias)
	if errors.Is(err, storage.ErrNotFound) {
		return l, nil
	}
	if err != nil {
		return nil, fmt.Errorf("audit: read %s: %w", alias, err)
	}
	if err := json.Unmarshal(blob, &l.entries); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrChainBroken, alias, err)
	}
	last, err := verify(l.entries)
	if err != nil {
		return nil, err
	}
	l.lastHash = last
	return l, nil
}

// Append chains a new entry and, for a persisted log, writes the whole log
// back. A failed write leaves the in-memory log unchanged.
func (l *Log) Append(ctx context.Context, op, account string) (Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ts := l.now().Unix()
	sum := chain(l.lastHash, ts, op, account)
	e := Entry{TS: ts, Op: op, Account: account, Hash: hex.EncodeToString(sum)}
	next := append(append([]Entry(nil), l.entries...), e)

	if l.store != nil {
		blob, err := json.Marshal(next)
		if err != nil {
			return Entry{}, err
		}
		if err := l.store.Put(ctx, l.alias, blob); err != nil {
			return Entry{}, fmt.Errorf("audit: write %s: %w", l.alias, err)
		}
	}
	l.entries = next
	l.lastHash = sum
	return e, nil
}

func (l *Log) Verify() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := verify(l.entries)
	return err
}

func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}

// Snapshot returns a copy of the entries together with the result of
// verifying exactly those entries.
func (l *Log) Snapshot() ([]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := verify(l.entries)
	return append([]Entry(nil), l.entries...), err
}

// verify walks entries and returns the last hash of an intact chain.
func verify(entries []Entry) ([]byte, error) {
	var prev []byte
	for i, e := range entries {
		sum := chain(prev, e.TS, e.Op, e.Account)
		if hex.EncodeToString(sum) != e.Hash {
			return nil, fmt.Errorf("%w at entry %d", ErrChainBroken, i)
		}
		prev = sum
	}
	return prev, nil
}

func chain(prev []byte, ts int64, op, account string) []byte {
	var stamp [8]byte
	binary.BigEndian.PutUint64(stamp[:], uint64(ts))

	h := sha256.New()
	h.Write(prev)
	h.Write(stamp[:])
	h.Write([]byte(op))
	h.Write([]byte{0})
	h.Write([]byte(account))
	return h.Sum(nil)
}
