// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"bytes"
	"fmt"

	"github.com/ava-labs/lamportvm/codec"
	"github.com/ava-labs/lamportvm/storage"

	smath "github.com/ava-labs/avalanchego/utils/math"
)

// AccountMeta names an account an instruction touches and the privileges it
// requests for it.
type AccountMeta struct {
	Pubkey     codec.Pubkey `json:"pubkey"`
	IsSigner   bool         `json:"isSigner"`
	IsWritable bool         `json:"isWritable"`
}

// AccountInfo is the live view of an account during execution. Programs
// receive pointers so that mutations made by one program are visible to the
// next, including across cross-program invocations.
type AccountInfo struct {
	Key        codec.Pubkey
	IsSigner   bool
	IsWritable bool

	Lamports   uint64
	Owner      codec.Pubkey
	Executable bool
	Data       []byte
}

func newAccountInfo(key codec.Pubkey, acct *storage.Account) *AccountInfo {
	return &AccountInfo{
		Key:        key,
		Lamports:   acct.Lamports,
		Owner:      acct.Owner,
		Executable: acct.Executable,
		Data:       acct.Data,
	}
}

// AddLamports credits [amount] to the account.
func (a *AccountInfo) AddLamports(amount uint64) error {
	n, err := smath.Add(a.Lamports, amount)
	if err != nil {
		return fmt.Errorf("%w: %s has %d, adding %d", ErrLamportsOverflow, a.Key, a.Lamports, amount)
	}
	a.Lamports = n
	return nil
}

// SubLamports debits [amount] from the account.
func (a *AccountInfo) SubLamports(amount uint64) error {
	n, err := smath.Sub(a.Lamports, amount)
	if err != nil {
		return fmt.Errorf("%w: %s has %d, need %d", ErrInsufficientFunds, a.Key, a.Lamports, amount)
	}
	a.Lamports = n
	return nil
}

// IsEmpty returns true if nothing has ever been stored in the account.
func (a *AccountInfo) IsEmpty() bool {
	return a.Lamports == 0 && len(a.Data) == 0 && a.Owner == storage.SystemProgramID
}

func (a *AccountInfo) toAccount() *storage.Account {
	return &storage.Account{
		Lamports:   a.Lamports,
		Owner:      a.Owner,
		Executable: a.Executable,
		Data:       a.Data,
	}
}

type accountSnapshot struct {
	lamports   uint64
	owner      codec.Pubkey
	executable bool
	data       []byte
}

func snapshot(a *AccountInfo) accountSnapshot {
	return accountSnapshot{
		lamports:   a.Lamports,
		owner:      a.Owner,
		executable: a.Executable,
		data:       bytes.Clone(a.Data),
	}
}

func (s accountSnapshot) matches(a *AccountInfo) bool {
	return s.lamports == a.Lamports &&
		s.owner == a.Owner &&
		s.executable == a.Executable &&
		bytes.Equal(s.data, a.Data)
}
