// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"

	"github.com/ava-labs/lamportvm/codec"
	"github.com/ava-labs/lamportvm/ledger"
	"github.com/ava-labs/lamportvm/runtime"
	"github.com/ava-labs/lamportvm/storage"
)

type VM interface {
	Logger() logging.Logger
	Rent() runtime.Rent
	Processed() uint64
	SubmitBytes(ctx context.Context, b []byte) (*runtime.Result, error)
	GetAccount(ctx context.Context, pk codec.Pubkey) (*storage.Account, error)
	GetLedgerState(ctx context.Context, pk codec.Pubkey) (*ledger.AccountState, error)
	GetResult(ctx context.Context, txID ids.ID) (*storage.Result, error)
}
