// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import "github.com/ava-labs/lamportvm/codec"

// Program is an on-chain program. [accounts] is ordered as the instruction
// listed them.
type Program interface {
	Process(ic *InvokeContext, programID codec.Pubkey, accounts []*AccountInfo, input []byte) error
}

type ProgramFunc func(ic *InvokeContext, programID codec.Pubkey, accounts []*AccountInfo, input []byte) error

func (f ProgramFunc) Process(ic *InvokeContext, programID codec.Pubkey, accounts []*AccountInfo, input []byte) error {
	return f(ic, programID, accounts, input)
}
