// Package cache persists per-record processing results between runs.
//
// Values are gob-encoded and stored in a badger database under keys that
// combine a configuration fingerprint with the record name, so a change to
// any setting that affects the result misses the old entries instead of
// returning stale data.
package cache

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
)

// Store is a badger-backed key-value cache. It is safe for concurrent use.
type Store struct {
	db *badger.DB
}

// Open opens or creates a store in dir. An empty dir opens an in-memory
// store whose contents are lost on Close.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).
		WithCompression(options.ZSTD).
		WithNumVersionsToKeep(1).
		WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("cache: open %q: %w", dir, err)
	}
	return &Store{db: db}, nil
}

// Get decodes the value stored under key into v and reports whether the
// key was present.
func (s *Store) Get(key []byte, v any) (bool, error) {
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache: get %q: %w", key, err)
	}

	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(v); err != nil {
		return false, fmt.Errorf("cache: decode %q: %w", key, err)
	}
	return true, nil
}

// Put stores v under key, replacing any previous value.
func (s *Store) Put(key []byte, v any) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return fmt.Errorf("cache: encode %q: %w", key, err)
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, buf.Bytes())
	})
	if err != nil {
		return fmt.Errorf("cache: put %q: %w", key, err)
	}
	return nil
}

// Len returns the number of keys in the store.
func (s *Store) Len() (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Key builds the key of a record under a configuration fingerprint. Keys
// of the same fingerprint share an 8-byte big-endian prefix.
func Key(fingerprint uint64, record string) []byte {
	key := make([]byte, 8, 8+len(record))
	binary.BigEndian.PutUint64(key, fingerprint)
	return append(key, record...)
}

// Fingerprint hashes the JSON encoding of v. Equal values give equal
// fingerprints; map keys are encoded in sorted order.
func Fingerprint(v any) (uint64, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("cache: fingerprint: %w", err)
	}
	return xxhash.Sum64(data), nil
}
