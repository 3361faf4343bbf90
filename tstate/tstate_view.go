// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tstate

import (
	"bytes"
	"context"
	"errors"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils/maybe"

	"github.com/ava-labs/lamportvm/state"
)

var _ state.Mutable = (*TStateView)(nil)

const defaultOps = 4

type op struct {
	k string

	pastExists  bool
	pastV       []byte
	pastChanged bool
}

type TStateView struct {
	ts                 *TState
	pendingChangedKeys map[string]maybe.Maybe[[]byte]

	// Ops is a record of all operations performed on [TState]. Tracking
	// operations allows for reverting state to a certain point-in-time.
	ops []*op

	scope        state.Keys
	scopeStorage map[string][]byte

	canAllocate bool
}

func (ts *TState) NewView(scope state.Keys, storage map[string][]byte) *TStateView {
	return &TStateView{
		ts:                 ts,
		pendingChangedKeys: make(map[string]maybe.Maybe[[]byte], len(scope)),

		ops: make([]*op, 0, defaultOps),

		scope:        scope,
		scopeStorage: storage,

		canAllocate: true, // default to allowing allocation
	}
}

// Rollback restores the TStateView to the ts.op[restorePoint] operation.
func (ts *TStateView) Rollback(_ context.Context, restorePoint int) {
	for i := len(ts.ops) - 1; i >= restorePoint; i-- {
		op := ts.ops[i]

		// Remove all key changes from the view if the key was not previously
		// modified.
		if !op.pastChanged {
			delete(ts.pendingChangedKeys, op.k)
			continue
		}

		// If a key did not previously exist, record it as removed.
		if !op.pastExists {
			ts.pendingChangedKeys[op.k] = maybe.Nothing[[]byte]()
			continue
		}

		ts.pendingChangedKeys[op.k] = maybe.Some(op.pastV)
	}
	ts.ops = ts.ops[:restorePoint]
}

// OpIndex returns the number of operations done on ts.
func (ts *TStateView) OpIndex() int {
	return len(ts.ops)
}

// DisableAllocation causes [Insert] to return an error if
// it would create a new key.
func (ts *TStateView) DisableAllocation() {
	ts.canAllocate = false
}

// EnableAllocation removes the forcer error case in [Insert]
// if a new key is created.
func (ts *TStateView) EnableAllocation() {
	ts.canAllocate = true
}

func (ts *TStateView) checkScope(_ context.Context, k []byte, perm state.Permissions) error {
	p, ok := ts.scope[string(k)]
	if !ok {
		return ErrKeyNotSpecified
	}
	if !p.Has(perm) {
		return ErrInvalidKeyOrPermission
	}
	return nil
}

// GetValue returns the value associated with [key]. If [key] is not readable
// in the view's scope [ErrKeyNotSpecified] or [ErrInvalidKeyOrPermission]
// is returned.
func (ts *TStateView) GetValue(ctx context.Context, key []byte) ([]byte, error) {
	if err := ts.checkScope(ctx, key, state.Read); err != nil {
		return nil, err
	}
	v, _, exists := ts.getValue(ctx, string(key))
	if !exists {
		return nil, database.ErrNotFound
	}
	return v, nil
}

// getValue returns the value of [key], whether it is pending in this view, and
// whether it exists.
func (ts *TStateView) getValue(ctx context.Context, key string) ([]byte, bool, bool) {
	if v, ok := ts.pendingChangedKeys[key]; ok {
		if v.IsNothing() {
			return nil, true, false
		}
		return v.Value(), true, true
	}
	if v, changed, exists := ts.ts.getChangedValue(ctx, key); changed {
		return v, false, exists
	}
	if v, ok := ts.scopeStorage[key]; ok {
		return v, false, true
	}
	return nil, false, false
}

// isUnchanged reports whether [v] matches what the view started with for
// [key], in which case the pending change can be dropped.
func (ts *TStateView) isUnchanged(ctx context.Context, key string, v []byte, exists bool) bool {
	if pv, changed, pexists := ts.ts.getChangedValue(ctx, key); changed {
		return pexists == exists && (!exists || bytes.Equal(pv, v))
	}
	sv, sexists := ts.scopeStorage[key]
	return sexists == exists && (!exists || bytes.Equal(sv, v))
}

// Insert sets or updates [key] to [value].
//
// Any bytes passed into [Insert] will be consumed by [TState] and should
// not be modified/referenced after this call.
func (ts *TStateView) Insert(ctx context.Context, key []byte, value []byte) error {
	k := string(key)
	past, changed, exists := ts.getValue(ctx, k)
	if exists {
		if err := ts.checkScope(ctx, key, state.Write); err != nil {
			return err
		}
	} else {
		if err := ts.checkScope(ctx, key, state.Allocate); err != nil {
			return err
		}
		if !ts.canAllocate {
			return ErrAllocationDisabled
		}
	}
	if ts.isUnchanged(ctx, k, value, true) {
		delete(ts.pendingChangedKeys, k)
	} else {
		ts.pendingChangedKeys[k] = maybe.Some(value)
	}
	ts.ops = append(ts.ops, &op{
		k: k,

		pastExists:  exists,
		pastV:       past,
		pastChanged: changed,
	})
	return nil
}

// Remove deletes [key].
func (ts *TStateView) Remove(ctx context.Context, key []byte) error {
	if err := ts.checkScope(ctx, key, state.Write); err != nil {
		return err
	}
	k := string(key)
	past, changed, exists := ts.getValue(ctx, k)
	if !exists {
		// We do not record an operation if the key does not exist.
		return nil
	}
	if ts.isUnchanged(ctx, k, nil, false) {
		delete(ts.pendingChangedKeys, k)
	} else {
		ts.pendingChangedKeys[k] = maybe.Nothing[[]byte]()
	}
	ts.ops = append(ts.ops, &op{
		k: k,

		pastExists:  true,
		pastV:       past,
		pastChanged: changed,
	})
	return nil
}

// PendingChanges returns the number of keys the view would write on [Commit].
func (ts *TStateView) PendingChanges() int {
	return len(ts.pendingChangedKeys)
}

// Commit adds all pending changes to the parent [TState].
func (ts *TStateView) Commit() {
	ts.ts.l.Lock()
	defer ts.ts.l.Unlock()

	for k, v := range ts.pendingChangedKeys {
		ts.ts.changedKeys[k] = v
	}
	ts.ts.ops += len(ts.ops)
}

func isNotFound(err error) bool {
	return errors.Is(err, database.ErrNotFound)
}
