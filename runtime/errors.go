// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import "errors"

var (
	ErrMissingRequiredSignature = errors.New("missing required signature")
	ErrIncorrectProgramID       = errors.New("incorrect program id")
	ErrAccountNotRentExempt     = errors.New("account not rent exempt")
	ErrInvalidAccountData       = errors.New("invalid account data")
	ErrInvalidInstructionData   = errors.New("invalid instruction data")
	ErrNotEnoughAccountKeys     = errors.New("not enough account keys")
	ErrInsufficientFunds        = errors.New("insufficient funds")
	ErrLamportsOverflow         = errors.New("lamports overflow")
	ErrUnbalancedInstruction    = errors.New("sum of account lamports changed")
	ErrReadonlyAccount          = errors.New("readonly account modified")
	ErrUnknownProgram           = errors.New("unknown program")
	ErrCallDepth                = errors.New("call depth exceeded")
	ErrAccountAlreadyInUse      = errors.New("account already in use")
	ErrAccountDataTooSmall      = errors.New("account data too small")
	ErrInvalidSignature         = errors.New("invalid signature")
	ErrDuplicateSignature       = errors.New("duplicate signature")
	ErrEmptyTransaction         = errors.New("transaction has no instructions")
	ErrInvalidTransaction       = errors.New("invalid transaction")
	ErrInvalidRent              = errors.New("invalid rent parameters")
)
