// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/near/borsh-go"

	"github.com/ava-labs/lamportvm/codec"
	"github.com/ava-labs/lamportvm/consts"
	"github.com/ava-labs/lamportvm/state"
)

// SystemProgramID owns every account that has never been assigned.
var SystemProgramID = codec.EmptyPubkey

// Account is the persisted form of an account.
type Account struct {
	Lamports   uint64
	Owner      codec.Pubkey
	Executable bool
	Data       []byte
}

// Result is the persisted outcome of a transaction.
type Result struct {
	Success bool
	Error   string
	Logs    []string
}

// [accountPrefix] + [pubkey]
func AccountKey(pk codec.Pubkey) []byte {
	k := make([]byte, consts.ByteLen+consts.PubkeyLen)
	k[0] = accountPrefix
	copy(k[1:], pk[:])
	return k
}

// [resultPrefix] + [txID]
func ResultKey(txID ids.ID) []byte {
	k := make([]byte, consts.ByteLen+consts.IDLen)
	k[0] = resultPrefix
	copy(k[1:], txID[:])
	return k
}

// [keyPrefix] + [name]
func NamedKey(name string) []byte {
	k := make([]byte, consts.ByteLen+len(name))
	k[0] = keyPrefix
	copy(k[1:], name)
	return k
}

// GetAccount returns the account stored at [pk]. A missing account is
// returned as the empty system-owned account.
func GetAccount(ctx context.Context, im state.Immutable, pk codec.Pubkey) (*Account, error) {
	acct, _, err := innerGetAccount(im.GetValue(ctx, AccountKey(pk)))
	return acct, err
}

// ParseAccount decodes a raw account value. [raw] may be nil if the account
// does not exist.
func ParseAccount(raw []byte) (*Account, error) {
	if raw == nil {
		return &Account{Owner: SystemProgramID}, nil
	}
	acct, _, err := innerGetAccount(raw, nil)
	return acct, err
}

func innerGetAccount(v []byte, err error) (*Account, bool, error) {
	if errors.Is(err, database.ErrNotFound) {
		return &Account{Owner: SystemProgramID}, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var acct Account
	if err := borsh.Deserialize(&acct, v); err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrCorruptAccount, err)
	}
	if len(acct.Data) == 0 {
		acct.Data = nil
	}
	return &acct, true, nil
}

// EncodeAccount returns the stored bytes of [acct], or nil if [acct] should
// not be stored at all.
func EncodeAccount(acct *Account) ([]byte, error) {
	if acct.Lamports == 0 {
		return nil, nil
	}
	return borsh.Serialize(*acct)
}

// SetAccount stores [acct] at [pk]. An account without lamports is removed
// instead of written, matching what [GetAccount] returns for missing keys.
func SetAccount(ctx context.Context, mu state.Mutable, pk codec.Pubkey, acct *Account) error {
	k := AccountKey(pk)
	v, err := EncodeAccount(acct)
	if err != nil {
		return err
	}
	if v == nil {
		return mu.Remove(ctx, k)
	}
	return mu.Insert(ctx, k, v)
}

func StoreResult(ctx context.Context, mu state.Mutable, txID ids.ID, result *Result) error {
	v, err := borsh.Serialize(*result)
	if err != nil {
		return err
	}
	return mu.Insert(ctx, ResultKey(txID), v)
}

// GetResult returns the stored result of [txID] or [database.ErrNotFound].
func GetResult(ctx context.Context, im state.Immutable, txID ids.ID) (*Result, error) {
	v, err := im.GetValue(ctx, ResultKey(txID))
	if err != nil {
		return nil, err
	}
	var result Result
	if err := borsh.Deserialize(&result, v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptResult, err)
	}
	if len(result.Logs) == 0 {
		result.Logs = nil
	}
	return &result, nil
}

// SetGenesis records that genesis created [supply] lamports.
func SetGenesis(ctx context.Context, mu state.Mutable, supply uint64) error {
	return mu.Insert(ctx, []byte{genesisPrefix}, binary.BigEndian.AppendUint64(nil, supply))
}

// GetGenesis returns the supply created at genesis and whether genesis has
// been applied.
func GetGenesis(ctx context.Context, im state.Immutable) (uint64, bool, error) {
	v, err := im.GetValue(ctx, []byte{genesisPrefix})
	if errors.Is(err, database.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	supply, err := database.ParseUInt64(v)
	if err != nil {
		return 0, false, err
	}
	return supply, true, nil
}

func SetKey(ctx context.Context, mu state.Mutable, name string, priv []byte) error {
	return mu.Insert(ctx, NamedKey(name), priv)
}

func GetKey(ctx context.Context, im state.Immutable, name string) ([]byte, error) {
	return im.GetValue(ctx, NamedKey(name))
}
