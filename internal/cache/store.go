package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/drewfead/daybook/internal/planner"
)

// ErrNotFound signals that a key has no entry in the persistent tier.
var ErrNotFound = errors.New("cache entry not found")

const (
	eventsBucket = "events"
	stampsBucket = "stamps"
)

// Store is the persistent cache tier, a bbolt database with two parallel
// buckets: one holds the encoded event lists, the other the write timestamps
// used for expiry checks.
type Store struct {
	db *bolt.DB
}

// OpenStore opens (creating if needed) the cache database at path.
func OpenStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to open cache database %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{[]byte(eventsBucket), []byte(stampsBucket)} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("unable to create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes the event list and its timestamp under the key, replacing any
// previous entry.
func (s *Store) Save(key string, events []planner.CalendarEvent, at time.Time) error {
	payload, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("unable to marshal events for %s: %w", key, err)
	}
	stamp := []byte(at.UTC().Format(time.RFC3339Nano))

	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket([]byte(eventsBucket)).Put([]byte(key), payload); err != nil {
			return fmt.Errorf("unable to store events for %s: %w", key, err)
		}
		if err := tx.Bucket([]byte(stampsBucket)).Put([]byte(key), stamp); err != nil {
			return fmt.Errorf("unable to store stamp for %s: %w", key, err)
		}
		return nil
	})
}

// Load reads the entry stored under the key along with its write timestamp.
// Returns ErrNotFound for absent keys and *planner.DecodeError when the
// stored payload or stamp cannot be decoded.
func (s *Store) Load(key string) ([]planner.CalendarEvent, time.Time, error) {
	var events []planner.CalendarEvent
	var at time.Time

	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket([]byte(eventsBucket)).Get([]byte(key))
		if raw == nil {
			return ErrNotFound
		}
		if err := json.Unmarshal(raw, &events); err != nil {
			return &planner.DecodeError{Err: err}
		}

		rawStamp := tx.Bucket([]byte(stampsBucket)).Get([]byte(key))
		if rawStamp == nil {
			return &planner.DecodeError{Err: errors.New("entry has no timestamp")}
		}
		parsed, err := time.Parse(time.RFC3339Nano, string(rawStamp))
		if err != nil {
			return &planner.DecodeError{Err: err}
		}
		at = parsed
		return nil
	})
	if err != nil {
		return nil, time.Time{}, err
	}
	return events, at, nil
}

// Stamp reads only the write timestamp for the key, without decoding the
// event payload.
func (s *Store) Stamp(key string) (time.Time, error) {
	var at time.Time

	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket([]byte(stampsBucket)).Get([]byte(key))
		if raw == nil {
			return ErrNotFound
		}
		parsed, err := time.Parse(time.RFC3339Nano, string(raw))
		if err != nil {
			return &planner.DecodeError{Err: err}
		}
		at = parsed
		return nil
	})
	if err != nil {
		return time.Time{}, err
	}
	return at, nil
}

// Delete removes the entry for the key. Absent keys are a no-op.
func (s *Store) Delete(key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket([]byte(eventsBucket)).Delete([]byte(key)); err != nil {
			return fmt.Errorf("unable to delete events for %s: %w", key, err)
		}
		if err := tx.Bucket([]byte(stampsBucket)).Delete([]byte(key)); err != nil {
			return fmt.Errorf("unable to delete stamp for %s: %w", key, err)
		}
		return nil
	})
}

// Reset drops every entry in the store.
func (s *Store) Reset() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{[]byte(eventsBucket), []byte(stampsBucket)} {
			if err := tx.DeleteBucket(name); err != nil {
				return fmt.Errorf("unable to drop bucket %s: %w", name, err)
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return fmt.Errorf("unable to recreate bucket %s: %w", name, err)
			}
		}
		return nil
	})
}
