// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"fmt"

	"github.com/near/borsh-go"

	"github.com/ava-labs/lamportvm/codec"
	"github.com/ava-labs/lamportvm/consts"
	"github.com/ava-labs/lamportvm/runtime"
)

// AccountStateLen is the size of an encoded [AccountState].
const AccountStateLen = consts.PubkeyLen + consts.Uint64Len

// AccountState is the record kept in the data of every ledger account.
type AccountState struct {
	Owner   codec.Pubkey `json:"owner"`
	Balance uint64       `json:"balance"`
}

// Marshal returns the 40 byte encoding of [s]: the owner followed by the
// little-endian balance.
func (s *AccountState) Marshal() ([]byte, error) {
	return borsh.Serialize(*s)
}

// WriteTo encodes [s] into the start of [data].
func (s *AccountState) WriteTo(data []byte) error {
	if len(data) < AccountStateLen {
		return fmt.Errorf("%w: %d < %d", runtime.ErrAccountDataTooSmall, len(data), AccountStateLen)
	}
	b, err := s.Marshal()
	if err != nil {
		return err
	}
	copy(data, b)
	return nil
}

// UnmarshalAccountState decodes a record. [data] must be exactly
// [AccountStateLen] bytes.
func UnmarshalAccountState(data []byte) (*AccountState, error) {
	if len(data) != AccountStateLen {
		return nil, fmt.Errorf("%w: record is %d bytes, expected %d", runtime.ErrInvalidAccountData, len(data), AccountStateLen)
	}
	var s AccountState
	if err := borsh.Deserialize(&s, data); err != nil {
		return nil, fmt.Errorf("%w: %w", runtime.ErrInvalidAccountData, err)
	}
	return &s, nil
}
