// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package system

import (
	"fmt"

	bin "github.com/gagliardetto/binary"

	"github.com/ava-labs/lamportvm/codec"
	"github.com/ava-labs/lamportvm/runtime"
)

// MaxPermittedDataLength bounds the space a single account may allocate.
const MaxPermittedDataLength = 10 * 1024 * 1024

var _ runtime.Program = (*Program)(nil)

// Program creates accounts and moves lamports between system-owned accounts.
type Program struct{}

func (*Program) Process(ic *runtime.InvokeContext, _ codec.Pubkey, accounts []*runtime.AccountInfo, input []byte) error {
	decoder := bin.NewBinDecoder(input)
	instrType, err := decoder.ReadUint32(bin.LE)
	if err != nil {
		return fmt.Errorf("%w: %w", runtime.ErrInvalidInstructionData, err)
	}

	switch instrType {
	case InstrTypeCreateAccount:
		var instr CreateAccount
		if err := instr.UnmarshalWithDecoder(decoder); err != nil {
			return fmt.Errorf("%w: %w", runtime.ErrInvalidInstructionData, err)
		}
		return createAccount(ic, accounts, &instr)
	case InstrTypeAssign:
		var instr Assign
		if err := instr.UnmarshalWithDecoder(decoder); err != nil {
			return fmt.Errorf("%w: %w", runtime.ErrInvalidInstructionData, err)
		}
		return assign(accounts, &instr)
	case InstrTypeTransfer:
		var instr Transfer
		if err := instr.UnmarshalWithDecoder(decoder); err != nil {
			return fmt.Errorf("%w: %w", runtime.ErrInvalidInstructionData, err)
		}
		return transfer(accounts, &instr)
	case InstrTypeAllocate:
		var instr Allocate
		if err := instr.UnmarshalWithDecoder(decoder); err != nil {
			return fmt.Errorf("%w: %w", runtime.ErrInvalidInstructionData, err)
		}
		return allocate(accounts, &instr)
	default:
		return fmt.Errorf("%w: unknown system instruction %d", runtime.ErrInvalidInstructionData, instrType)
	}
}

func checkAccounts(accounts []*runtime.AccountInfo, n int) error {
	if len(accounts) < n {
		return fmt.Errorf("%w: expected %d, got %d", runtime.ErrNotEnoughAccountKeys, n, len(accounts))
	}
	return nil
}

func createAccount(ic *runtime.InvokeContext, accounts []*runtime.AccountInfo, instr *CreateAccount) error {
	if err := checkAccounts(accounts, 2); err != nil {
		return err
	}
	from, to := accounts[0], accounts[1]
	if !from.IsSigner {
		return fmt.Errorf("%w: funder %s", runtime.ErrMissingRequiredSignature, from.Key)
	}
	if !to.IsSigner {
		return fmt.Errorf("%w: new account %s", runtime.ErrMissingRequiredSignature, to.Key)
	}
	if !to.IsEmpty() {
		return fmt.Errorf("%w: %s", runtime.ErrAccountAlreadyInUse, to.Key)
	}
	if instr.Space > MaxPermittedDataLength {
		return fmt.Errorf("%w: space %d exceeds %d", runtime.ErrInvalidInstructionData, instr.Space, MaxPermittedDataLength)
	}
	if minBalance := ic.Rent().MinimumBalance(instr.Space); instr.Lamports < minBalance {
		return fmt.Errorf("%w: %d lamports for %d bytes, need %d", runtime.ErrAccountNotRentExempt, instr.Lamports, instr.Space, minBalance)
	}
	if from.Owner != ID {
		return fmt.Errorf("%w: funder %s is not system owned", runtime.ErrIncorrectProgramID, from.Key)
	}
	if len(from.Data) != 0 {
		return fmt.Errorf("%w: funder %s carries data", runtime.ErrInvalidAccountData, from.Key)
	}
	if err := from.SubLamports(instr.Lamports); err != nil {
		return err
	}
	if err := to.AddLamports(instr.Lamports); err != nil {
		return err
	}
	to.Data = make([]byte, instr.Space)
	to.Owner = instr.Owner
	return nil
}

func assign(accounts []*runtime.AccountInfo, instr *Assign) error {
	if err := checkAccounts(accounts, 1); err != nil {
		return err
	}
	acct := accounts[0]
	if acct.Owner == instr.Owner {
		return nil
	}
	if !acct.IsSigner {
		return fmt.Errorf("%w: %s", runtime.ErrMissingRequiredSignature, acct.Key)
	}
	if acct.Owner != ID {
		return fmt.Errorf("%w: %s is not system owned", runtime.ErrIncorrectProgramID, acct.Key)
	}
	acct.Owner = instr.Owner
	return nil
}

func transfer(accounts []*runtime.AccountInfo, instr *Transfer) error {
	if err := checkAccounts(accounts, 2); err != nil {
		return err
	}
	from, to := accounts[0], accounts[1]
	if !from.IsSigner {
		return fmt.Errorf("%w: %s", runtime.ErrMissingRequiredSignature, from.Key)
	}
	if from.Owner != ID || len(from.Data) != 0 {
		return fmt.Errorf("%w: %s must be a plain system account", runtime.ErrInvalidAccountData, from.Key)
	}
	if err := from.SubLamports(instr.Lamports); err != nil {
		return err
	}
	return to.AddLamports(instr.Lamports)
}

func allocate(accounts []*runtime.AccountInfo, instr *Allocate) error {
	if err := checkAccounts(accounts, 1); err != nil {
		return err
	}
	acct := accounts[0]
	if !acct.IsSigner {
		return fmt.Errorf("%w: %s", runtime.ErrMissingRequiredSignature, acct.Key)
	}
	if acct.Owner != ID || len(acct.Data) != 0 {
		return fmt.Errorf("%w: %s", runtime.ErrAccountAlreadyInUse, acct.Key)
	}
	if instr.Space > MaxPermittedDataLength {
		return fmt.Errorf("%w: space %d exceeds %d", runtime.ErrInvalidInstructionData, instr.Space, MaxPermittedDataLength)
	}
	acct.Data = make([]byte, instr.Space)
	return nil
}
