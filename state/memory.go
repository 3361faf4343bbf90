// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/memdb"
)

var _ Database = (*MemoryDatabase)(nil)

// MemoryDatabase is a [Database] kept entirely in memory.
type MemoryDatabase struct {
	*memdb.Database
}

func NewMemoryDatabase() *MemoryDatabase {
	return &MemoryDatabase{memdb.New()}
}

func (m *MemoryDatabase) WriteBatch(ops []database.BatchOp) error {
	batch := m.NewBatch()
	for _, op := range ops {
		if op.Delete {
			if err := batch.Delete(op.Key); err != nil {
				return err
			}
			continue
		}
		if err := batch.Put(op.Key, op.Value); err != nil {
			return err
		}
	}
	return batch.Write()
}
