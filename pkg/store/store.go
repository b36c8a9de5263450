// Package store persists the artwork selection set in a local BoltDB
// file. With no path it runs memory-only, which doubles as the test
// configuration.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	bolt "go.etcd.io/bbolt"
)

var bucketSelections = []byte("selections")

// selectionKey is the single key holding the serialized identifier array.
// The stored format is a plain JSON array; there is no versioning.
const selectionKey = "artworks"

// SelectionStore implements selection.Store using BoltDB.
type SelectionStore struct {
	db     *bolt.DB
	logger zerolog.Logger

	// Memory-only fallback when no path is configured.
	mem map[string][]byte
}

// Open opens (or creates) the store at path. An empty path yields a
// memory-only store with no persistence across runs.
func Open(path string) (*SelectionStore, error) {
	logger := log.With().Str("component", "selection-store").Logger()

	if path == "" {
		return &SelectionStore{
			logger: logger,
			mem:    make(map[string][]byte),
		}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSelections)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}

	return &SelectionStore{
		db:     db,
		logger: logger,
		mem:    make(map[string][]byte),
	}, nil
}

// Close closes the underlying database.
func (s *SelectionStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SelectionStore) get(key string) ([]byte, bool) {
	if s.db == nil {
		data, ok := s.mem[key]
		return data, ok
	}

	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSelections)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})

	return data, data != nil
}

func (s *SelectionStore) set(key string, data []byte) error {
	if s.db == nil {
		s.mem[key] = data
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSelections)
		return b.Put([]byte(key), data)
	})
}

// LoadSelection returns the persisted identifier set, reporting whether
// one existed. A corrupt value is treated as absent.
func (s *SelectionStore) LoadSelection() ([]int, bool) {
	data, ok := s.get(selectionKey)
	if !ok {
		return nil, false
	}

	var ids []int
	if err := json.Unmarshal(data, &ids); err != nil {
		s.logger.Warn().Err(err).Msg("Discarding unreadable persisted selection")
		return nil, false
	}

	return ids, true
}

// SaveSelection serializes the full identifier set. Called on every
// selection change.
func (s *SelectionStore) SaveSelection(ids []int) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("marshal selection: %w", err)
	}

	if err := s.set(selectionKey, data); err != nil {
		return fmt.Errorf("persist selection: %w", err)
	}

	return nil
}
