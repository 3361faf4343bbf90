// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"github.com/ava-labs/lamportvm/codec"
	"github.com/ava-labs/lamportvm/runtime"
	"github.com/ava-labs/lamportvm/system"
)

func newInstruction(ix Instruction, accounts ...runtime.AccountMeta) (runtime.Instruction, error) {
	data, err := EncodeInstruction(ix)
	if err != nil {
		return runtime.Instruction{}, err
	}
	return runtime.Instruction{
		ProgramID: ID,
		Accounts:  accounts,
		Data:      data,
	}, nil
}

// NewInitializeInstruction initializes [target] for [owner]. [target] must
// sign when it does not exist yet, since creating it requires its signature.
func NewInitializeInstruction(target codec.Pubkey, owner codec.Pubkey, targetSigns bool, args uint64) (runtime.Instruction, error) {
	return newInstruction(
		&Initialize{Args: args},
		runtime.NewAccountMeta(target, targetSigns, true),
		runtime.NewAccountMeta(owner, true, true),
		runtime.NewAccountMeta(system.ID, false, false),
	)
}

// NewDepositInstruction moves [amount] lamports from [owner], which must sign,
// into [target].
func NewDepositInstruction(target codec.Pubkey, owner codec.Pubkey, amount uint64, args uint64) (runtime.Instruction, error) {
	return newInstruction(
		&Deposit{Amount: amount, Args: args},
		runtime.NewAccountMeta(target, false, true),
		runtime.NewAccountMeta(owner, true, true),
	)
}

// NewWithdrawInstruction returns a tenth of [target]'s recorded balance to
// [owner], which must sign.
func NewWithdrawInstruction(target codec.Pubkey, owner codec.Pubkey, args uint64) (runtime.Instruction, error) {
	return newInstruction(
		&Withdraw{Args: args},
		runtime.NewAccountMeta(target, false, true),
		runtime.NewAccountMeta(owner, true, true),
	)
}
