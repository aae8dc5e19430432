// Package store persists user snapshots between sessions so a vetting
// session can reopen instantly and refresh on demand.
package store

import (
	"bytes"
	"encoding/gob"

	"github.com/boltdb/bolt"
	"github.com/pkg/errors"

	"github.com/credditor/credditor/internal/models"
)

var usersBucket = []byte("users")

// Store is a BoltDB-backed snapshot store keyed by username.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the store at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "open store %q", path)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(usersBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create users bucket")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// PutUser saves a snapshot, replacing any previous one for the same user.
func (s *Store) PutUser(data models.UserData) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		var buf bytes.Buffer
		if err := gob.NewEncoder(&buf).Encode(data); err != nil {
			return errors.Wrapf(err, "encode snapshot for %q", data.Username)
		}
		return tx.Bucket(usersBucket).Put([]byte(data.Username), buf.Bytes())
	})
}

// GetUser loads the snapshot for a username. ok is false when none exists.
func (s *Store) GetUser(username string) (models.UserData, bool, error) {
	var data models.UserData
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(usersBucket).Get([]byte(username))
		if raw == nil {
			return nil
		}
		found = true
		return gob.NewDecoder(bytes.NewReader(raw)).Decode(&data)
	})
	if err != nil {
		return models.UserData{}, false, errors.Wrapf(err, "decode snapshot for %q", username)
	}
	return data, found, nil
}

// Usernames lists every user with a saved snapshot.
func (s *Store) Usernames() ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(usersBucket).ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	return names, err
}
