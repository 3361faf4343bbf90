// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import "errors"

var (
	ErrDuplicateTx       = errors.New("duplicate transaction")
	ErrNotLedgerAccount  = errors.New("account is not owned by the ledger program")
	ErrGenesisApplied    = errors.New("genesis already applied")
	ErrTransactionTooBig = errors.New("transaction too large")
)
