// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"crypto/rand"
	"fmt"
	"testing"

	"github.com/ava-labs/avalanchego/database"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

const batchSize = 100_000

func randBytes() []byte {
	b := make([]byte, 32)
	_, err := rand.Read(b)
	if err != nil {
		panic(err)
	}
	return b
}

func TestDatabase(t *testing.T) {
	require := require.New(t)

	db, err := New(t.TempDir(), NewDefaultConfig(), prometheus.NewRegistry())
	require.NoError(err)

	_, err = db.Get([]byte("a"))
	require.ErrorIs(err, database.ErrNotFound)
	has, err := db.Has([]byte("a"))
	require.NoError(err)
	require.False(has)

	require.NoError(db.Put([]byte("a"), []byte("1")))
	v, err := db.Get([]byte("a"))
	require.NoError(err)
	require.Equal([]byte("1"), v)

	require.NoError(db.WriteBatch([]database.BatchOp{
		{Key: []byte("a"), Delete: true},
		{Key: []byte("b"), Value: []byte("2")},
	}))
	_, err = db.Get([]byte("a"))
	require.ErrorIs(err, database.ErrNotFound)
	v, err = db.Get([]byte("b"))
	require.NoError(err)
	require.Equal([]byte("2"), v)

	require.NoError(db.Delete([]byte("b")))
	has, err = db.Has([]byte("b"))
	require.NoError(err)
	require.False(has)

	require.NoError(db.Close())
	_, err = db.Get([]byte("b"))
	require.ErrorIs(err, database.ErrClosed)
	require.ErrorIs(db.Close(), database.ErrClosed)
}

func TestReopen(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir()

	db, err := New(dir, NewDefaultConfig(), prometheus.NewRegistry())
	require.NoError(err)
	require.NoError(db.Put([]byte("k"), []byte("v")))
	require.NoError(db.Close())

	db, err = New(dir, NewDefaultConfig(), prometheus.NewRegistry())
	require.NoError(err)
	v, err := db.Get([]byte("k"))
	require.NoError(err)
	require.Equal([]byte("v"), v)
	require.NoError(db.Close())
}

func TestDuplicateMetrics(t *testing.T) {
	require := require.New(t)

	registry := prometheus.NewRegistry()
	db, err := New(t.TempDir(), NewDefaultConfig(), registry)
	require.NoError(err)
	defer db.Close()

	_, err = New(t.TempDir(), NewDefaultConfig(), registry)
	require.Error(err)
}

func BenchmarkBatchInsertion(b *testing.B) {
	for _, sync := range []bool{false, true} {
		b.Run(fmt.Sprintf("sync=%t", sync), func(b *testing.B) {
			// Setup DB
			b.StopTimer()
			cfg := NewDefaultConfig()
			cfg.Sync = sync
			db, err := New(b.TempDir(), cfg, prometheus.NewRegistry())
			if err != nil {
				b.Fatal(err)
			}

			// Setup keys
			keys := make([][]byte, batchSize)
			for i := 0; i < batchSize; i++ {
				keys[i] = randBytes()
			}

			b.StartTimer()
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				ops := make([]database.BatchOp, batchSize)
				for j := 0; j < batchSize; j++ {
					ops[j] = database.BatchOp{Key: keys[j], Value: randBytes()}
				}
				if err := db.WriteBatch(ops); err != nil {
					b.Fatal(err)
				}
			}
			b.StopTimer()

			if err := db.Close(); err != nil {
				b.Fatal(err)
			}
		})
	}
}
