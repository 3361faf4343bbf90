// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"context"
	"fmt"
	"strings"

	"github.com/ava-labs/avalanchego/ids"
	avarpc "github.com/ava-labs/avalanchego/utils/rpc"

	"github.com/ava-labs/lamportvm/codec"
	"github.com/ava-labs/lamportvm/runtime"
)

type JSONRPCClient struct {
	requester avarpc.EndpointRequester
}

func NewJSONRPCClient(uri string) *JSONRPCClient {
	uri = strings.TrimSuffix(uri, "/")
	uri += JSONRPCEndpoint
	return &JSONRPCClient{requester: avarpc.NewEndpointRequester(uri)}
}

func (cli *JSONRPCClient) Ping(ctx context.Context) (bool, error) {
	resp := new(PingReply)
	err := cli.requester.SendRequest(ctx,
		Name+".ping",
		struct{}{},
		resp,
	)
	return resp.Success, err
}

// MinimumBalance returns the lamports an account holding [size] bytes needs
// to be rent exempt.
func (cli *JSONRPCClient) MinimumBalance(ctx context.Context, size uint64) (uint64, error) {
	resp := new(RentReply)
	err := cli.requester.SendRequest(
		ctx,
		Name+".rent",
		&RentArgs{Size: size},
		resp,
	)
	return resp.MinimumBalance, err
}

func (cli *JSONRPCClient) Account(ctx context.Context, pk codec.Pubkey) (*AccountReply, error) {
	resp := new(AccountReply)
	err := cli.requester.SendRequest(
		ctx,
		Name+".account",
		&AccountArgs{Pubkey: pk},
		resp,
	)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// SubmitTx executes [tx] remotely. A transaction that was executed but failed
// returns its reply together with an error wrapping [ErrTxFailed].
func (cli *JSONRPCClient) SubmitTx(ctx context.Context, tx *runtime.Transaction) (*SubmitTxReply, error) {
	b, err := tx.Bytes()
	if err != nil {
		return nil, err
	}
	resp := new(SubmitTxReply)
	err = cli.requester.SendRequest(
		ctx,
		Name+".submitTx",
		&SubmitTxArgs{Tx: b},
		resp,
	)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return resp, fmt.Errorf("%w: %s", ErrTxFailed, resp.Error)
	}
	return resp, nil
}

func (cli *JSONRPCClient) Result(ctx context.Context, txID ids.ID) (*ResultReply, error) {
	resp := new(ResultReply)
	err := cli.requester.SendRequest(
		ctx,
		Name+".result",
		&ResultArgs{TxID: txID},
		resp,
	)
	if err != nil {
		return nil, err
	}
	return resp, nil
}
