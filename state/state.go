// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"

	"github.com/ava-labs/avalanchego/database"
)

type Immutable interface {
	GetValue(ctx context.Context, key []byte) (value []byte, err error)
}

type Mutable interface {
	Immutable

	Insert(ctx context.Context, key []byte, value []byte) error
	Remove(ctx context.Context, key []byte) error
}

// Database is the persistent store beneath the ledger. Writes that must land
// together go through [WriteBatch].
type Database interface {
	database.KeyValueReader
	database.KeyValueWriterDeleter

	WriteBatch(ops []database.BatchOp) error
}
