// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"fmt"

	"github.com/ava-labs/lamportvm/codec"
	"github.com/ava-labs/lamportvm/runtime"
	"github.com/ava-labs/lamportvm/system"
)

var _ runtime.Program = (*Program)(nil)

type Program struct{}

func (p *Program) Process(ic *runtime.InvokeContext, programID codec.Pubkey, accounts []*runtime.AccountInfo, input []byte) error {
	ix, err := DecodeInstruction(input)
	if err != nil {
		ic.Log(logDecodeFailure)
		return err
	}
	switch ix := ix.(type) {
	case *Initialize:
		return p.initialize(ic, programID, accounts)
	case *Deposit:
		return p.deposit(programID, accounts, ix.Amount)
	case *Withdraw:
		return p.withdraw(programID, accounts)
	default:
		return fmt.Errorf("%w: unexpected instruction %T", runtime.ErrInvalidInstructionData, ix)
	}
}

func nextAccounts(accounts []*runtime.AccountInfo, n int) error {
	if len(accounts) < n {
		return fmt.Errorf("%w: expected %d, got %d", runtime.ErrNotEnoughAccountKeys, n, len(accounts))
	}
	return nil
}

// initialize expects [target, owner, systemProgram].
func (*Program) initialize(ic *runtime.InvokeContext, programID codec.Pubkey, accounts []*runtime.AccountInfo) error {
	if err := nextAccounts(accounts, 3); err != nil {
		return err
	}
	target, owner, systemProgram := accounts[0], accounts[1], accounts[2]

	if !owner.IsSigner {
		return fmt.Errorf("%w: owner %s", runtime.ErrMissingRequiredSignature, owner.Key)
	}
	if systemProgram.Key != system.ID {
		return fmt.Errorf("%w: %s is not the system program", runtime.ErrIncorrectProgramID, systemProgram.Key)
	}

	rent := ic.Rent()
	if target.Lamports == 0 {
		ic.Log(logCreatingAccount)
		ix := system.NewCreateAccountInstruction(
			owner.Key,
			target.Key,
			rent.MinimumBalance(AccountStateLen),
			AccountStateLen,
			programID,
		)
		if err := ic.Invoke(&ix, []*runtime.AccountInfo{owner, target, systemProgram}); err != nil {
			return err
		}
	} else {
		ic.Log(logCheckingOwner)
		if target.Owner != programID {
			return fmt.Errorf("%w: %s is owned by %s", runtime.ErrIncorrectProgramID, target.Key, target.Owner)
		}
	}

	if !rent.IsExempt(target.Lamports, len(target.Data)) {
		return fmt.Errorf("%w: %s", runtime.ErrAccountNotRentExempt, target.Key)
	}

	s := &AccountState{Owner: owner.Key}
	if err := s.WriteTo(target.Data); err != nil {
		return err
	}
	ic.Log(logInitialized)
	return nil
}

// loadOwned runs the checks shared by deposit and withdraw on
// [target, owner] and returns the target's record.
func loadOwned(programID codec.Pubkey, accounts []*runtime.AccountInfo) (*AccountState, error) {
	if err := nextAccounts(accounts, 2); err != nil {
		return nil, err
	}
	target, owner := accounts[0], accounts[1]
	if target.Owner != programID {
		return nil, fmt.Errorf("%w: %s is owned by %s", runtime.ErrIncorrectProgramID, target.Key, target.Owner)
	}
	if !owner.IsSigner {
		return nil, fmt.Errorf("%w: owner %s", runtime.ErrMissingRequiredSignature, owner.Key)
	}
	s, err := UnmarshalAccountState(target.Data)
	if err != nil {
		return nil, err
	}
	if s.Owner != owner.Key {
		return nil, fmt.Errorf("%w: record owned by %s, signed by %s", runtime.ErrInvalidAccountData, s.Owner, owner.Key)
	}
	return s, nil
}

func (*Program) deposit(programID codec.Pubkey, accounts []*runtime.AccountInfo, amount uint64) error {
	s, err := loadOwned(programID, accounts)
	if err != nil {
		return err
	}
	target, owner := accounts[0], accounts[1]

	// The record balance wraps. Only the lamports moved below are checked.
	s.Balance += amount
	if err := s.WriteTo(target.Data); err != nil {
		return err
	}
	if err := target.AddLamports(amount); err != nil {
		return err
	}
	return owner.SubLamports(amount)
}

func (*Program) withdraw(programID codec.Pubkey, accounts []*runtime.AccountInfo) error {
	s, err := loadOwned(programID, accounts)
	if err != nil {
		return err
	}
	target, owner := accounts[0], accounts[1]

	amount := s.Balance / withdrawDenominator
	s.Balance -= amount
	if err := s.WriteTo(target.Data); err != nil {
		return err
	}
	if err := target.SubLamports(amount); err != nil {
		return err
	}
	return owner.AddLamports(amount)
}
