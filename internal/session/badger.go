// LearnQuest - E-Learning Platform API Client and Notification Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/learnquest

package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// sessionKey holds the single persisted session record.
var sessionKey = []byte("session:current")

// BadgerStore persists the session in BadgerDB so it survives restarts.
// Token values are encrypted when an Encryptor is configured.
type BadgerStore struct {
	db        *badger.DB
	encryptor *Encryptor
	ownsDB    bool
}

// OpenBadgerStore opens (or creates) a BadgerDB at path. An empty path opens
// an in-memory database.
func OpenBadgerStore(path string, encryptor *Encryptor) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	return &BadgerStore{db: db, encryptor: encryptor, ownsDB: true}, nil
}

// NewBadgerStore wraps an already open database. Close does not close db.
func NewBadgerStore(db *badger.DB, encryptor *Encryptor) *BadgerStore {
	return &BadgerStore{db: db, encryptor: encryptor}
}

// Load implements Store.
func (s *BadgerStore) Load(_ context.Context) (Tokens, error) {
	var stored Tokens
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sessionKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &stored)
		})
	})
	if err != nil {
		return Tokens{}, err
	}

	access, err := s.encryptor.Decrypt(stored.AccessToken)
	if err != nil {
		return Tokens{}, fmt.Errorf("decrypt access token: %w", err)
	}
	refresh, err := s.encryptor.Decrypt(stored.RefreshToken)
	if err != nil {
		return Tokens{}, fmt.Errorf("decrypt refresh token: %w", err)
	}
	stored.AccessToken, stored.RefreshToken = access, refresh
	return stored, nil
}

// Save implements Store.
func (s *BadgerStore) Save(_ context.Context, tokens Tokens) error {
	access, err := s.encryptor.Encrypt(tokens.AccessToken)
	if err != nil {
		return fmt.Errorf("encrypt access token: %w", err)
	}
	refresh, err := s.encryptor.Encrypt(tokens.RefreshToken)
	if err != nil {
		return fmt.Errorf("encrypt refresh token: %w", err)
	}
	tokens.AccessToken, tokens.RefreshToken = access, refresh

	data, err := json.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(sessionKey, data); err != nil {
			return fmt.Errorf("set session: %w", err)
		}
		return nil
	})
}

// Clear implements Store.
func (s *BadgerStore) Clear(_ context.Context) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(sessionKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete session: %w", err)
		}
		return nil
	})
}

// Close implements Store.
func (s *BadgerStore) Close() error {
	if !s.ownsDB {
		return nil
	}
	return s.db.Close()
}
