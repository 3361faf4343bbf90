// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tstate

import (
	"context"
	"sync"

	"github.com/ava-labs/avalanchego/utils/maybe"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/ava-labs/lamportvm/state"
)

// TState accumulates the changes of every successful transaction in a batch.
// Views opened on it see those changes before their own scope storage.
type TState struct {
	l   sync.RWMutex
	ops int

	changedKeys map[string]maybe.Maybe[[]byte]
}

// New returns a new instance of TState.
//
// [changedSize] is an estimate of the number of keys that will be changed.
func New(changedSize int) *TState {
	return &TState{changedKeys: make(map[string]maybe.Maybe[[]byte], changedSize)}
}

func (ts *TState) getChangedValue(_ context.Context, key string) ([]byte, bool, bool) {
	ts.l.RLock()
	defer ts.l.RUnlock()

	if v, ok := ts.changedKeys[key]; ok {
		if v.IsNothing() {
			return nil, true, false
		}
		return v.Value(), true, true
	}
	return nil, false, false
}

// FetchScope reads the current value of every key in [keys]. Keys changed by
// a previously committed view are read from [ts], the rest from [im].
func (ts *TState) FetchScope(ctx context.Context, im state.Immutable, keys state.Keys) (map[string][]byte, error) {
	storage := make(map[string][]byte, len(keys))
	for k := range keys {
		if v, changed, exists := ts.getChangedValue(ctx, k); changed {
			if exists {
				storage[k] = v
			}
			continue
		}
		v, err := im.GetValue(ctx, []byte(k))
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, err
		}
		storage[k] = v
	}
	return storage, nil
}

// OpIndex returns the number of operations committed to [ts].
func (ts *TState) OpIndex() int {
	ts.l.RLock()
	defer ts.l.RUnlock()

	return ts.ops
}

// PendingChanges returns the number of keys changed in [ts].
func (ts *TState) PendingChanges() int {
	ts.l.RLock()
	defer ts.l.RUnlock()

	return len(ts.changedKeys)
}

// ExportTo writes every change in [ts] to [mu] in key order.
//
// Once [ExportTo] is called, [TState] should not be used again.
func (ts *TState) ExportTo(ctx context.Context, mu state.Mutable) error {
	ts.l.Lock()
	defer ts.l.Unlock()

	keys := maps.Keys(ts.changedKeys)
	slices.Sort(keys)
	for _, k := range keys {
		v := ts.changedKeys[k]
		if v.IsNothing() {
			if err := mu.Remove(ctx, []byte(k)); err != nil {
				return err
			}
			continue
		}
		if err := mu.Insert(ctx, []byte(k), v.Value()); err != nil {
			return err
		}
	}
	return nil
}
