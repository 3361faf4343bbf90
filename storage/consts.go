// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

// State
// 0x0/ (account)
//   -> [pubkey] => {lamports, owner, executable, data}
// 0x1/ (tx result)
//   -> [txID] => {success, error, logs}
// 0x2/ (keystore)
//   -> [name] => private key
// 0x3/ (genesis)
//   -> total supply created at genesis
const (
	accountPrefix byte = 0x0
	resultPrefix  byte = 0x1
	keyPrefix     byte = 0x2
	genesisPrefix byte = 0x3
)
