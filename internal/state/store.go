package state

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"

	dbm "github.com/cosmos/cosmos-db"
)

// KVStore is the minimal keyed-record interface both the durable store and
// the staging caches implement.
type KVStore interface {
	// Get returns nil when the key is absent.
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
}

// Store is the durable store backed by cosmos-db.
type Store struct {
	db dbm.DB
}

// OpenStore opens (or creates) the state database under dir.
func OpenStore(dir string, backend string) (*Store, error) {
	db, err := dbm.NewDB("state", dbm.BackendType(backend), filepath.Clean(dir))
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}
	return &Store{db: db}, nil
}

func NewMemStore() *Store {
	return &Store{db: dbm.NewMemDB()}
}

func (s *Store) Get(key []byte) ([]byte, error) {
	return s.db.Get(key)
}

func (s *Store) Set(key, value []byte) error {
	return s.db.Set(key, value)
}

func (s *Store) Delete(key []byte) error {
	return s.db.Delete(key)
}

// Apply writes a change set in one synced batch.
func (s *Store) Apply(changes []Change) error {
	batch := s.db.NewBatch()
	defer batch.Close()
	for _, c := range changes {
		var err error
		if c.Deleted {
			err = batch.Delete(c.Key)
		} else {
			err = batch.Set(c.Key, c.Value)
		}
		if err != nil {
			return fmt.Errorf("batch %x: %w", c.Key, err)
		}
	}
	return batch.WriteSync()
}

// Iterate visits committed keys with the given prefix in ascending order until
// cb returns true.
func (s *Store) Iterate(prefix []byte, cb func(key, value []byte) (stop bool, err error)) error {
	it, err := s.db.Iterator(prefix, PrefixEnd(prefix))
	if err != nil {
		return err
	}
	defer it.Close()

	for ; it.Valid(); it.Next() {
		stop, err := cb(it.Key(), it.Value())
		if err != nil {
			return err
		}
		if stop {
			break
		}
	}
	return it.Error()
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Change is one pending write of a Cache.
type Change struct {
	Key     []byte
	Value   []byte
	Deleted bool
}

// Cache buffers writes over a parent store. Dropping a Cache discards every
// buffered write; Write pushes them to the parent in key order.
type Cache struct {
	parent KVStore
	dirty  map[string]Change
}

func NewCache(parent KVStore) *Cache {
	return &Cache{parent: parent, dirty: map[string]Change{}}
}

func (c *Cache) Get(key []byte) ([]byte, error) {
	if ch, ok := c.dirty[string(key)]; ok {
		if ch.Deleted {
			return nil, nil
		}
		return ch.Value, nil
	}
	return c.parent.Get(key)
}

func (c *Cache) Set(key, value []byte) error {
	if value == nil {
		return fmt.Errorf("nil value for key %x", key)
	}
	k := append([]byte(nil), key...)
	c.dirty[string(k)] = Change{Key: k, Value: append([]byte(nil), value...)}
	return nil
}

func (c *Cache) Delete(key []byte) error {
	k := append([]byte(nil), key...)
	c.dirty[string(k)] = Change{Key: k, Deleted: true}
	return nil
}

// Changes returns the buffered writes sorted by key.
func (c *Cache) Changes() []Change {
	out := make([]Change, 0, len(c.dirty))
	for _, ch := range c.dirty {
		out = append(out, ch)
	}
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i].Key, out[j].Key) < 0 })
	return out
}

// Write flushes the buffered writes into the parent and resets the cache.
func (c *Cache) Write() error {
	changes := c.Changes()
	if s, ok := c.parent.(*Store); ok {
		if err := s.Apply(changes); err != nil {
			return err
		}
	} else {
		for _, ch := range changes {
			var err error
			if ch.Deleted {
				err = c.parent.Delete(ch.Key)
			} else {
				err = c.parent.Set(ch.Key, ch.Value)
			}
			if err != nil {
				return err
			}
		}
	}
	c.dirty = map[string]Change{}
	return nil
}
