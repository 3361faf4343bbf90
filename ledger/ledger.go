// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ledger implements a program that keeps one balance record per
// account. Each record names the key allowed to move funds through it.
//
// Initialize creates (or resets) the record. Deposit adds to the record and
// moves the same lamports from the owner into the account. Withdraw always
// takes a tenth of the recorded balance and returns it to the owner.
package ledger

import "github.com/ava-labs/lamportvm/codec"

// ID is the address the ledger program is registered at.
var ID = codec.CreatePubkey([]byte("ledger-program"))

const (
	logCreatingAccount  = "Creating new account"
	logCheckingOwner    = "Account already exists, checking ownership"
	logInitialized      = "Account initialized successfully"
	logDecodeFailure    = "Failed to deserialize instruction"
	withdrawDenominator = 10
)
