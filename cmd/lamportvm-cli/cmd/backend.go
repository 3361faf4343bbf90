// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"
	"errors"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/lamportvm/codec"
	"github.com/ava-labs/lamportvm/ledger"
	"github.com/ava-labs/lamportvm/rpc"
	"github.com/ava-labs/lamportvm/runtime"
	"github.com/ava-labs/lamportvm/utils"
	"github.com/ava-labs/lamportvm/vm"
)

var (
	_ backend = (*localBackend)(nil)
	_ backend = (*remoteBackend)(nil)
)

type txResponse struct {
	TxID    ids.ID   `json:"txId"`
	Success bool     `json:"success"`
	Error   string   `json:"error,omitempty"`
	Logs    []string `json:"logs"`
}

type accountResponse struct {
	Pubkey     codec.Pubkey         `json:"pubkey"`
	Lamports   uint64               `json:"lamports"`
	Balance    string               `json:"balance"`
	Owner      codec.Pubkey         `json:"owner"`
	Executable bool                 `json:"executable"`
	Data       []byte               `json:"data"`
	Record     *ledger.AccountState `json:"record,omitempty"`
}

// backend executes transactions and reads accounts either against the local
// database or through a node's JSON-RPC endpoint.
type backend interface {
	Submit(ctx context.Context, tx *runtime.Transaction) (*txResponse, error)
	Account(ctx context.Context, pk codec.Pubkey) (*accountResponse, error)
}

func (c *cli) backend() (backend, error) {
	if c.endpoint != "" {
		return &remoteBackend{cli: rpc.NewJSONRPCClient(c.endpoint)}, nil
	}
	v, err := c.newVM(c.cfg.Rent)
	if err != nil {
		return nil, err
	}
	return &localBackend{vm: v}, nil
}

type localBackend struct {
	vm *vm.VM
}

func (b *localBackend) Submit(ctx context.Context, tx *runtime.Transaction) (*txResponse, error) {
	result, err := b.vm.Submit(ctx, tx)
	if err != nil {
		return nil, err
	}
	resp := &txResponse{TxID: result.TxID, Success: result.Success, Logs: result.Logs}
	if result.Err != nil {
		resp.Error = result.Err.Error()
	}
	return resp, nil
}

func (b *localBackend) Account(ctx context.Context, pk codec.Pubkey) (*accountResponse, error) {
	acct, err := b.vm.GetAccount(ctx, pk)
	if err != nil {
		return nil, err
	}
	resp := &accountResponse{
		Pubkey:     pk,
		Lamports:   acct.Lamports,
		Balance:    utils.FormatBalance(acct.Lamports),
		Owner:      acct.Owner,
		Executable: acct.Executable,
		Data:       acct.Data,
	}
	if acct.Owner == ledger.ID {
		if record, err := ledger.UnmarshalAccountState(acct.Data); err == nil {
			resp.Record = record
		}
	}
	return resp, nil
}

type remoteBackend struct {
	cli *rpc.JSONRPCClient
}

func (b *remoteBackend) Submit(ctx context.Context, tx *runtime.Transaction) (*txResponse, error) {
	reply, err := b.cli.SubmitTx(ctx, tx)
	if err != nil && !errors.Is(err, rpc.ErrTxFailed) {
		return nil, err
	}
	return &txResponse{
		TxID:    reply.TxID,
		Success: reply.Success,
		Error:   reply.Error,
		Logs:    reply.Logs,
	}, nil
}

func (b *remoteBackend) Account(ctx context.Context, pk codec.Pubkey) (*accountResponse, error) {
	reply, err := b.cli.Account(ctx, pk)
	if err != nil {
		return nil, err
	}
	return &accountResponse{
		Pubkey:     pk,
		Lamports:   reply.Lamports,
		Balance:    utils.FormatBalance(reply.Lamports),
		Owner:      reply.Owner,
		Executable: reply.Executable,
		Data:       reply.Data,
		Record:     reply.Record,
	}, nil
}
