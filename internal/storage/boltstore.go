package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/vidyasagar/petsurf/internal/lastvisit"
)

var bucketLocalStorage = []byte("local_storage")

// BoltStorage is a per-origin key-value store backed by BoltDB. Each origin
// gets a nested bucket under local_storage.
type BoltStorage struct {
	db *bolt.DB
}

var _ Backend = (*BoltStorage)(nil)

// OpenBoltStorage opens (or creates) petsurf.bolt in the given data directory.
func OpenBoltStorage(dataDir string) (*BoltStorage, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	dbPath := filepath.Join(dataDir, "petsurf.bolt")
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt db: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketLocalStorage)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}
	return &BoltStorage{db: db}, nil
}

// Origin returns the store for one origin.
func (bs *BoltStorage) Origin(origin string) lastvisit.Store {
	return &boltOriginStore{db: bs.db, origin: []byte(origin)}
}

// Close closes the underlying BoltDB.
func (bs *BoltStorage) Close() error {
	return bs.db.Close()
}

type boltOriginStore struct {
	db     *bolt.DB
	origin []byte
}

func (s *boltOriginStore) GetItem(key string) (string, bool, error) {
	var (
		value string
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketLocalStorage).Bucket(s.origin)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			value, found = string(v), true
		}
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("getting %s for %s: %w", key, s.origin, err)
	}
	return value, found, nil
}

func (s *boltOriginStore) SetItem(key, value string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.Bucket(bucketLocalStorage).CreateBucketIfNotExists(s.origin)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("setting %s for %s: %w", key, s.origin, err)
	}
	return nil
}

func (s *boltOriginStore) RemoveItem(key string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketLocalStorage).Bucket(s.origin)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("removing %s for %s: %w", key, s.origin, err)
	}
	return nil
}
