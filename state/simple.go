// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"

	"github.com/ava-labs/avalanchego/database"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

var _ Mutable = (*SimpleMutable)(nil)

// SimpleMutable buffers changes on top of a [Database] until [Commit].
type SimpleMutable struct {
	db Database

	changes map[string]database.BatchOp
}

func NewSimpleMutable(db Database) *SimpleMutable {
	return &SimpleMutable{db, make(map[string]database.BatchOp)}
}

func (s *SimpleMutable) GetValue(_ context.Context, k []byte) ([]byte, error) {
	if v, ok := s.changes[string(k)]; ok {
		if v.Delete {
			return nil, database.ErrNotFound
		}
		return v.Value, nil
	}
	return s.db.Get(k)
}

func (s *SimpleMutable) Insert(_ context.Context, k []byte, v []byte) error {
	s.changes[string(k)] = database.BatchOp{Key: k, Value: v}
	return nil
}

func (s *SimpleMutable) Remove(_ context.Context, k []byte) error {
	s.changes[string(k)] = database.BatchOp{Key: k, Delete: true}
	return nil
}

// PendingChanges returns the number of keys that will be written on [Commit].
func (s *SimpleMutable) PendingChanges() int {
	return len(s.changes)
}

// Commit writes all buffered changes to the underlying database in a single
// batch, ordered by key.
func (s *SimpleMutable) Commit(_ context.Context) error {
	keys := maps.Keys(s.changes)
	slices.Sort(keys)
	ops := make([]database.BatchOp, 0, len(keys))
	for _, k := range keys {
		ops = append(ops, s.changes[k])
	}
	if err := s.db.WriteBatch(ops); err != nil {
		return err
	}
	clear(s.changes)
	return nil
}

// Abort drops all buffered changes.
func (s *SimpleMutable) Abort() {
	clear(s.changes)
}
