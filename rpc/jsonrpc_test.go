// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/lamportvm/crypto/ed25519"
	"github.com/ava-labs/lamportvm/genesis"
	"github.com/ava-labs/lamportvm/ledger"
	"github.com/ava-labs/lamportvm/runtime"
	"github.com/ava-labs/lamportvm/state"
	"github.com/ava-labs/lamportvm/system"
	"github.com/ava-labs/lamportvm/vm"
)

func newTestClient(t *testing.T, funded ed25519.PrivateKey) *JSONRPCClient {
	require := require.New(t)

	v, err := vm.New(logging.NoLog{}, state.NewMemoryDatabase(), runtime.DefaultRent(), prometheus.NewRegistry())
	require.NoError(err)
	_, err = v.ApplyGenesis(context.TODO(), genesis.NewDefaultGenesis([]*genesis.CustomAllocation{
		{Pubkey: funded.Pubkey(), Lamports: 10_000_000},
	}))
	require.NoError(err)

	handler, err := NewJSONRPCHandler(v)
	require.NoError(err)
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewJSONRPCClient(srv.URL)
}

func TestJSONRPC(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()

	owner, err := ed25519.GeneratePrivateKey()
	require.NoError(err)
	target, err := ed25519.GeneratePrivateKey()
	require.NoError(err)
	cli := newTestClient(t, owner)

	ok, err := cli.Ping(ctx)
	require.NoError(err)
	require.True(ok)

	minBalance, err := cli.MinimumBalance(ctx, ledger.AccountStateLen)
	require.NoError(err)
	require.Equal(uint64(1_169_280), minBalance)

	ix, err := ledger.NewInitializeInstruction(target.Pubkey(), owner.Pubkey(), true, 0)
	require.NoError(err)
	tx := runtime.NewTransaction(1, ix)
	require.NoError(tx.Sign(owner))
	require.NoError(tx.Sign(target))
	reply, err := cli.SubmitTx(ctx, tx)
	require.NoError(err)
	require.True(reply.Success)
	require.Contains(reply.Logs, "Program log: Account initialized successfully")

	acct, err := cli.Account(ctx, target.Pubkey())
	require.NoError(err)
	require.Equal(ledger.ID, acct.Owner)
	require.Equal(minBalance, acct.Lamports)
	require.Len(acct.Data, ledger.AccountStateLen)
	require.Equal(&ledger.AccountState{Owner: owner.Pubkey()}, acct.Record)

	acct, err = cli.Account(ctx, owner.Pubkey())
	require.NoError(err)
	require.Equal(system.ID, acct.Owner)
	require.Equal(10_000_000-minBalance, acct.Lamports)
	require.Nil(acct.Record)

	result, err := cli.Result(ctx, reply.TxID)
	require.NoError(err)
	require.True(result.Success)
	require.Equal(reply.Logs, result.Logs)

	// Withdrawing from an account the ledger does not own fails, but the
	// result is still recorded.
	ix, err = ledger.NewWithdrawInstruction(owner.Pubkey(), owner.Pubkey(), 0)
	require.NoError(err)
	tx = runtime.NewTransaction(2, ix)
	require.NoError(tx.Sign(owner))
	reply, err = cli.SubmitTx(ctx, tx)
	require.ErrorIs(err, ErrTxFailed)
	require.False(reply.Success)

	result, err = cli.Result(ctx, reply.TxID)
	require.NoError(err)
	require.False(result.Success)
	require.Equal(reply.Error, result.Error)

	_, err = cli.Result(ctx, ids.GenerateTestID())
	require.Error(err)
}
