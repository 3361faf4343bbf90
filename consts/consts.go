// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package consts

const (
	ByteLen      = 1
	BoolLen      = 1
	Uint32Len    = 4
	Uint64Len    = 8
	PubkeyLen    = 32
	SignatureLen = 64
	IDLen        = 32
	MaxUint64    = ^uint64(0)

	// MaxCallDepth bounds nested cross-program invocations.
	MaxCallDepth = 4
)
