// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/database"
	"github.com/stretchr/testify/require"
)

func TestKeysAddUnion(t *testing.T) {
	require := require.New(t)
	keys := make(Keys)
	keys.Add("account", Read)
	keys.Add("account", Write)
	keys.Add("other", Read)

	require.True(keys["account"].Has(Write))
	require.True(keys["account"].Has(Read))
	require.False(keys["account"].Has(Allocate))
	require.False(keys["other"].Has(Write))
	require.True(All.Has(Allocate | Write))
	require.True(None.Has(None))
}

func TestSimpleMutableCommit(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	db := NewMemoryDatabase()
	require.NoError(db.Put([]byte("stale"), []byte{1}))

	mu := NewSimpleMutable(db)
	require.NoError(mu.Insert(ctx, []byte("fresh"), []byte{2}))
	require.NoError(mu.Remove(ctx, []byte("stale")))
	require.Equal(2, mu.PendingChanges())

	// buffered changes are visible before commit
	v, err := mu.GetValue(ctx, []byte("fresh"))
	require.NoError(err)
	require.Equal([]byte{2}, v)
	_, err = mu.GetValue(ctx, []byte("stale"))
	require.ErrorIs(err, database.ErrNotFound)

	// but not in the database
	has, err := db.Has([]byte("fresh"))
	require.NoError(err)
	require.False(has)

	require.NoError(mu.Commit(ctx))
	require.Zero(mu.PendingChanges())

	v, err = db.Get([]byte("fresh"))
	require.NoError(err)
	require.Equal([]byte{2}, v)
	has, err = db.Has([]byte("stale"))
	require.NoError(err)
	require.False(has)
}

func TestSimpleMutableAbort(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	db := NewMemoryDatabase()

	mu := NewSimpleMutable(db)
	require.NoError(mu.Insert(ctx, []byte("k"), []byte{1}))
	mu.Abort()
	require.NoError(mu.Commit(ctx))

	has, err := db.Has([]byte("k"))
	require.NoError(err)
	require.False(has)
}
