// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import "github.com/ava-labs/lamportvm/codec"

// Instruction is a single call into a program.
type Instruction struct {
	ProgramID codec.Pubkey  `json:"programID"`
	Accounts  []AccountMeta `json:"accounts"`
	Data      []byte        `json:"data"`
}

func NewAccountMeta(pk codec.Pubkey, isSigner bool, isWritable bool) AccountMeta {
	return AccountMeta{Pubkey: pk, IsSigner: isSigner, IsWritable: isWritable}
}
