package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Denylist records revoked token ids until the token would have expired anyway.
type Denylist interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

var denyPrefix = []byte("deny:")

// BadgerDenylist keeps revocations in badger with per-entry TTL.
type BadgerDenylist struct {
	db  *badger.DB
	now func() time.Time
}

// OpenBadgerDenylist opens a badger store at path, or in memory when path is empty.
func OpenBadgerDenylist(path string) (*BadgerDenylist, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("auth: open denylist: %w", err)
	}
	return NewBadgerDenylist(db), nil
}

func NewBadgerDenylist(db *badger.DB) *BadgerDenylist {
	return &BadgerDenylist{db: db, now: time.Now}
}

func denyKey(tokenID string) []byte {
	return append(append([]byte{}, denyPrefix...), tokenID...)
}

func (d *BadgerDenylist) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if tokenID == "" {
		return nil
	}
	ttl := until.Sub(d.now())
	if ttl <= 0 {
		// already expired, nothing to remember
		return nil
	}

	return d.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(denyKey(tokenID), nil).WithTTL(ttl))
	})
}

func (d *BadgerDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if tokenID == "" {
		return false, nil
	}

	var revoked bool
	err := d.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(denyKey(tokenID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		revoked = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("auth: denylist lookup: %w", err)
	}
	return revoked, nil
}

// RunGC reclaims value log space left by expired revocations.
func (d *BadgerDenylist) RunGC() error {
	for {
		err := d.db.RunValueLogGC(0.5)
		switch {
		case err == nil:
			continue
		case errors.Is(err, badger.ErrNoRewrite), errors.Is(err, badger.ErrGCInMemoryMode):
			return nil
		default:
			return fmt.Errorf("auth: denylist gc: %w", err)
		}
	}
}

func (d *BadgerDenylist) Close() error {
	return d.db.Close()
}
