package offset

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dgraph-io/badger/v4"
)

const badgerKeyPrefix = "offset:"

// BadgerStore keeps the offset in an embedded badger database.
type BadgerStore struct {
	db    *badger.DB
	key   []byte
	owned bool
}

// NewBadgerStore wraps an open database. When owned is true, Close closes the database.
func NewBadgerStore(db *badger.DB, key string, owned bool) *BadgerStore {
	return &BadgerStore{db: db, key: []byte(badgerKeyPrefix + key), owned: owned}
}

func readCounter(txn *badger.Txn, key []byte) (int, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var n int
	err = item.Value(func(val []byte) error {
		n, err = strconv.Atoi(string(val))
		return err
	})
	return n, err
}

// Load reads the counter, zero when unset.
func (s *BadgerStore) Load(_ context.Context) (int, error) {
	var n int
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		n, err = readCounter(txn, s.key)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("offset: failed to load: %w", err)
	}
	return n, nil
}

// Advance swaps prev for next in one transaction.
func (s *BadgerStore) Advance(_ context.Context, prev, next int) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		current, err := readCounter(txn, s.key)
		if err != nil {
			return err
		}
		if current != prev {
			return ErrConflict
		}
		return txn.Set(s.key, []byte(strconv.Itoa(next)))
	})
	if errors.Is(err, badger.ErrConflict) || errors.Is(err, ErrConflict) {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("offset: failed to advance: %w", err)
	}
	return nil
}

// Close closes the database if the store owns it.
func (s *BadgerStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}
