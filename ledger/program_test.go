// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"context"
	"testing"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/lamportvm/codec"
	"github.com/ava-labs/lamportvm/consts"
	"github.com/ava-labs/lamportvm/crypto/ed25519"
	"github.com/ava-labs/lamportvm/runtime"
	"github.com/ava-labs/lamportvm/state"
	"github.com/ava-labs/lamportvm/storage"
	"github.com/ava-labs/lamportvm/system"
)

const startingLamports = 10_000_000

var minBalance = runtime.DefaultRent().MinimumBalance(AccountStateLen)

type testEnv struct {
	t     *testing.T
	r     *runtime.Runtime
	mu    *state.SimpleMutable
	nonce uint64
}

func newTestEnv(t *testing.T) *testEnv {
	r, err := runtime.New(logging.NoLog{}, runtime.DefaultRent(), prometheus.NewRegistry())
	require.NoError(t, err)
	r.Register(system.ID, &system.Program{})
	r.Register(ID, &Program{})
	return &testEnv{
		t:  t,
		r:  r,
		mu: state.NewSimpleMutable(state.NewMemoryDatabase()),
	}
}

func (e *testEnv) newFundedKey() ed25519.PrivateKey {
	priv, err := ed25519.GeneratePrivateKey()
	require.NoError(e.t, err)
	require.NoError(e.t, storage.SetAccount(context.TODO(), e.mu, priv.Pubkey(), &storage.Account{
		Lamports: startingLamports,
		Owner:    system.ID,
	}))
	return priv
}

func (e *testEnv) newKey() ed25519.PrivateKey {
	priv, err := ed25519.GeneratePrivateKey()
	require.NoError(e.t, err)
	return priv
}

func (e *testEnv) execute(ix runtime.Instruction, signers ...ed25519.PrivateKey) *runtime.Result {
	e.nonce++
	tx := runtime.NewTransaction(e.nonce, ix)
	for _, signer := range signers {
		require.NoError(e.t, tx.Sign(signer))
	}
	result, err := e.r.Execute(context.TODO(), e.mu, tx)
	require.NoError(e.t, err)
	return result
}

func (e *testEnv) account(pk codec.Pubkey) *storage.Account {
	acct, err := storage.GetAccount(context.TODO(), e.mu, pk)
	require.NoError(e.t, err)
	return acct
}

func (e *testEnv) record(pk codec.Pubkey) *AccountState {
	s, err := UnmarshalAccountState(e.account(pk).Data)
	require.NoError(e.t, err)
	return s
}

// initialize creates a fresh ledger account owned by [owner].
func (e *testEnv) initialize(owner ed25519.PrivateKey) ed25519.PrivateKey {
	target := e.newKey()
	ix, err := NewInitializeInstruction(target.Pubkey(), owner.Pubkey(), true, 0)
	require.NoError(e.t, err)
	result := e.execute(ix, owner, target)
	require.True(e.t, result.Success, "%v", result.Err)
	return target
}

func (e *testEnv) deposit(target codec.Pubkey, owner ed25519.PrivateKey, amount uint64) *runtime.Result {
	ix, err := NewDepositInstruction(target, owner.Pubkey(), amount, 0)
	require.NoError(e.t, err)
	return e.execute(ix, owner)
}

func (e *testEnv) withdraw(target codec.Pubkey, owner ed25519.PrivateKey) *runtime.Result {
	ix, err := NewWithdrawInstruction(target, owner.Pubkey(), 0)
	require.NoError(e.t, err)
	return e.execute(ix, owner)
}

func TestInitializeNewAccount(t *testing.T) {
	require := require.New(t)
	e := newTestEnv(t)

	owner := e.newFundedKey()
	target := e.newKey()
	ix, err := NewInitializeInstruction(target.Pubkey(), owner.Pubkey(), true, 42)
	require.NoError(err)
	result := e.execute(ix, owner, target)
	require.True(result.Success, "%v", result.Err)
	require.Contains(result.Logs, "Program log: "+logCreatingAccount)
	require.Contains(result.Logs, "Program log: "+logInitialized)

	acct := e.account(target.Pubkey())
	require.Equal(ID, acct.Owner)
	require.Equal(uint64(1_169_280), acct.Lamports)
	require.Len(acct.Data, AccountStateLen)
	require.Equal(&AccountState{Owner: owner.Pubkey(), Balance: 0}, e.record(target.Pubkey()))
	require.Equal(uint64(startingLamports)-minBalance, e.account(owner.Pubkey()).Lamports)
}

func TestInitializeExistingAccountResets(t *testing.T) {
	require := require.New(t)
	e := newTestEnv(t)

	owner := e.newFundedKey()
	target := e.initialize(owner)
	require.True(e.deposit(target.Pubkey(), owner, 500).Success)

	// Re-initializing an account the program owns resets its record.
	other := e.newFundedKey()
	ix, err := NewInitializeInstruction(target.Pubkey(), other.Pubkey(), false, 0)
	require.NoError(err)
	result := e.execute(ix, other)
	require.True(result.Success, "%v", result.Err)
	require.Contains(result.Logs, "Program log: "+logCheckingOwner)
	require.Equal(&AccountState{Owner: other.Pubkey()}, e.record(target.Pubkey()))
	require.Equal(minBalance+500, e.account(target.Pubkey()).Lamports)
}

func TestInitializeFailures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(e *testEnv, owner ed25519.PrivateKey) (runtime.Instruction, []ed25519.PrivateKey)
		err   error
	}{
		{
			name: "owner did not sign",
			setup: func(e *testEnv, owner ed25519.PrivateKey) (runtime.Instruction, []ed25519.PrivateKey) {
				target := e.newKey()
				ix, err := NewInitializeInstruction(target.Pubkey(), owner.Pubkey(), true, 0)
				require.NoError(e.t, err)
				return ix, []ed25519.PrivateKey{target}
			},
			err: runtime.ErrMissingRequiredSignature,
		},
		{
			name: "wrong system program",
			setup: func(e *testEnv, owner ed25519.PrivateKey) (runtime.Instruction, []ed25519.PrivateKey) {
				target := e.newKey()
				ix, err := NewInitializeInstruction(target.Pubkey(), owner.Pubkey(), true, 0)
				require.NoError(e.t, err)
				ix.Accounts[2].Pubkey = codec.CreatePubkey([]byte("not-system"))
				return ix, []ed25519.PrivateKey{owner, target}
			},
			err: runtime.ErrIncorrectProgramID,
		},
		{
			name: "existing account owned elsewhere",
			setup: func(e *testEnv, owner ed25519.PrivateKey) (runtime.Instruction, []ed25519.PrivateKey) {
				target := e.newFundedKey()
				ix, err := NewInitializeInstruction(target.Pubkey(), owner.Pubkey(), true, 0)
				require.NoError(e.t, err)
				return ix, []ed25519.PrivateKey{owner, target}
			},
			err: runtime.ErrIncorrectProgramID,
		},
		{
			name: "target did not sign creation",
			setup: func(e *testEnv, owner ed25519.PrivateKey) (runtime.Instruction, []ed25519.PrivateKey) {
				target := e.newKey()
				ix, err := NewInitializeInstruction(target.Pubkey(), owner.Pubkey(), false, 0)
				require.NoError(e.t, err)
				return ix, []ed25519.PrivateKey{owner}
			},
			err: runtime.ErrMissingRequiredSignature,
		},
		{
			name: "owner cannot fund creation",
			setup: func(e *testEnv, _ ed25519.PrivateKey) (runtime.Instruction, []ed25519.PrivateKey) {
				poor := e.newKey()
				require.NoError(e.t, storage.SetAccount(context.TODO(), e.mu, poor.Pubkey(), &storage.Account{
					Lamports: minBalance - 1,
					Owner:    system.ID,
				}))
				target := e.newKey()
				ix, err := NewInitializeInstruction(target.Pubkey(), poor.Pubkey(), true, 0)
				require.NoError(e.t, err)
				return ix, []ed25519.PrivateKey{poor, target}
			},
			err: runtime.ErrInsufficientFunds,
		},
		{
			name: "existing account below rent",
			setup: func(e *testEnv, owner ed25519.PrivateKey) (runtime.Instruction, []ed25519.PrivateKey) {
				target := e.newKey()
				require.NoError(e.t, storage.SetAccount(context.TODO(), e.mu, target.Pubkey(), &storage.Account{
					Lamports: minBalance - 1,
					Owner:    ID,
					Data:     make([]byte, AccountStateLen),
				}))
				ix, err := NewInitializeInstruction(target.Pubkey(), owner.Pubkey(), false, 0)
				require.NoError(e.t, err)
				return ix, []ed25519.PrivateKey{owner}
			},
			err: runtime.ErrAccountNotRentExempt,
		},
		{
			name: "not enough accounts",
			setup: func(e *testEnv, owner ed25519.PrivateKey) (runtime.Instruction, []ed25519.PrivateKey) {
				target := e.newKey()
				ix, err := NewInitializeInstruction(target.Pubkey(), owner.Pubkey(), true, 0)
				require.NoError(e.t, err)
				ix.Accounts = ix.Accounts[:2]
				return ix, []ed25519.PrivateKey{owner, target}
			},
			err: runtime.ErrNotEnoughAccountKeys,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			e := newTestEnv(t)

			owner := e.newFundedKey()
			ix, signers := tt.setup(e, owner)
			result := e.execute(ix, signers...)
			require.False(result.Success)
			require.ErrorIs(result.Err, tt.err)
			require.Equal(uint64(startingLamports), e.account(owner.Pubkey()).Lamports)
		})
	}
}

func TestDepositWithdrawScenario(t *testing.T) {
	require := require.New(t)
	e := newTestEnv(t)

	owner := e.newFundedKey()
	target := e.initialize(owner)
	ownerStart := e.account(owner.Pubkey()).Lamports

	result := e.deposit(target.Pubkey(), owner, 500)
	require.True(result.Success, "%v", result.Err)
	require.Equal(uint64(500), e.record(target.Pubkey()).Balance)
	require.Equal(ownerStart-500, e.account(owner.Pubkey()).Lamports)
	require.Equal(minBalance+500, e.account(target.Pubkey()).Lamports)

	result = e.withdraw(target.Pubkey(), owner)
	require.True(result.Success, "%v", result.Err)
	require.Equal(uint64(450), e.record(target.Pubkey()).Balance)
	require.Equal(ownerStart-450, e.account(owner.Pubkey()).Lamports)
	require.Equal(minBalance+450, e.account(target.Pubkey()).Lamports)
}

func TestWithdrawZeroBalance(t *testing.T) {
	require := require.New(t)
	e := newTestEnv(t)

	owner := e.newFundedKey()
	target := e.initialize(owner)
	ownerStart := e.account(owner.Pubkey()).Lamports

	result := e.withdraw(target.Pubkey(), owner)
	require.True(result.Success, "%v", result.Err)
	require.Zero(e.record(target.Pubkey()).Balance)
	require.Equal(ownerStart, e.account(owner.Pubkey()).Lamports)
	require.Equal(minBalance, e.account(target.Pubkey()).Lamports)
}

func TestRepeatedWithdraw(t *testing.T) {
	require := require.New(t)
	e := newTestEnv(t)

	owner := e.newFundedKey()
	target := e.initialize(owner)
	require.True(e.deposit(target.Pubkey(), owner, 1_000).Success)

	expected := uint64(1_000)
	for i := 0; i < 5; i++ {
		require.True(e.withdraw(target.Pubkey(), owner).Success)
		expected -= expected / 10
		require.Equal(expected, e.record(target.Pubkey()).Balance)
		require.Equal(minBalance+expected, e.account(target.Pubkey()).Lamports)
	}
	require.Equal(uint64(592), expected)
}

func TestDepositWithdrawFailures(t *testing.T) {
	tests := []struct {
		name string
		// call runs against a target initialized
		// for [owner] holding a balance of 100.
		call func(e *testEnv, target codec.Pubkey, owner ed25519.PrivateKey) *runtime.Result
		err  error
	}{
		{
			name: "deposit without signature",
			call: func(e *testEnv, target codec.Pubkey, owner ed25519.PrivateKey) *runtime.Result {
				ix, err := NewDepositInstruction(target, owner.Pubkey(), 10, 0)
				require.NoError(e.t, err)
				return e.execute(ix, e.newFundedKey())
			},
			err: runtime.ErrMissingRequiredSignature,
		},
		{
			name: "withdraw without signature",
			call: func(e *testEnv, target codec.Pubkey, owner ed25519.PrivateKey) *runtime.Result {
				ix, err := NewWithdrawInstruction(target, owner.Pubkey(), 0)
				require.NoError(e.t, err)
				return e.execute(ix, e.newFundedKey())
			},
			err: runtime.ErrMissingRequiredSignature,
		},
		{
			name: "deposit by another owner",
			call: func(e *testEnv, target codec.Pubkey, _ ed25519.PrivateKey) *runtime.Result {
				return e.deposit(target, e.newFundedKey(), 10)
			},
			err: runtime.ErrInvalidAccountData,
		},
		{
			name: "withdraw by another owner",
			call: func(e *testEnv, target codec.Pubkey, _ ed25519.PrivateKey) *runtime.Result {
				return e.withdraw(target, e.newFundedKey())
			},
			err: runtime.ErrInvalidAccountData,
		},
		{
			name: "deposit into account not owned by program",
			call: func(e *testEnv, _ codec.Pubkey, owner ed25519.PrivateKey) *runtime.Result {
				return e.deposit(e.newFundedKey().Pubkey(), owner, 10)
			},
			err: runtime.ErrIncorrectProgramID,
		},
		{
			name: "withdraw from account not owned by program",
			call: func(e *testEnv, _ codec.Pubkey, owner ed25519.PrivateKey) *runtime.Result {
				return e.withdraw(e.newFundedKey().Pubkey(), owner)
			},
			err: runtime.ErrIncorrectProgramID,
		},
		{
			name: "deposit more than owner holds",
			call: func(e *testEnv, target codec.Pubkey, owner ed25519.PrivateKey) *runtime.Result {
				return e.deposit(target, owner, startingLamports)
			},
			err: runtime.ErrInsufficientFunds,
		},
		{
			name: "malformed instruction",
			call: func(e *testEnv, target codec.Pubkey, owner ed25519.PrivateKey) *runtime.Result {
				ix, err := NewWithdrawInstruction(target, owner.Pubkey(), 0)
				require.NoError(e.t, err)
				ix.Data = append(ix.Data, 0)
				return e.execute(ix, owner)
			},
			err: runtime.ErrInvalidInstructionData,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			e := newTestEnv(t)

			owner := e.newFundedKey()
			target := e.initialize(owner)
			require.True(e.deposit(target.Pubkey(), owner, 100).Success)
			ownerBefore := e.account(owner.Pubkey()).Lamports
			targetBefore := e.account(target.Pubkey())

			result := tt.call(e, target.Pubkey(), owner)
			require.False(result.Success)
			require.ErrorIs(result.Err, tt.err)

			require.Equal(ownerBefore, e.account(owner.Pubkey()).Lamports)
			require.Equal(targetBefore, e.account(target.Pubkey()))
			require.Equal(uint64(100), e.record(target.Pubkey()).Balance)
		})
	}
}

func TestMalformedInstructionLogs(t *testing.T) {
	require := require.New(t)
	e := newTestEnv(t)

	owner := e.newFundedKey()
	result := e.execute(runtime.Instruction{
		ProgramID: ID,
		Accounts:  []runtime.AccountMeta{runtime.NewAccountMeta(owner.Pubkey(), true, true)},
		Data:      []byte{9},
	}, owner)
	require.ErrorIs(result.Err, runtime.ErrInvalidInstructionData)
	require.Contains(result.Logs, "Program log: "+logDecodeFailure)
}

func TestDepositArithmetic(t *testing.T) {
	tests := []struct {
		name            string
		balance         uint64
		amount          uint64
		expectedBalance uint64
	}{
		{
			name:            "zero",
			balance:         7,
			amount:          0,
			expectedBalance: 7,
		},
		{
			name:            "adds",
			balance:         500,
			amount:          250,
			expectedBalance: 750,
		},
		{
			name:            "wraps",
			balance:         consts.MaxUint64 - 9,
			amount:          20,
			expectedBalance: 10,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			owner := codec.CreatePubkey([]byte("owner"))
			target, ownerInfo := newRecordAccounts(t, owner, tt.balance, 1_000)

			p := &Program{}
			require.NoError(p.deposit(ID, []*runtime.AccountInfo{target, ownerInfo}, tt.amount))
			s, err := UnmarshalAccountState(target.Data)
			require.NoError(err)
			require.Equal(tt.expectedBalance, s.Balance)
			require.Equal(1_000+tt.amount, target.Lamports)
			require.Equal(1_000-tt.amount, ownerInfo.Lamports)
		})
	}
}

func TestWithdrawArithmetic(t *testing.T) {
	require := require.New(t)

	tests := []struct {
		balance  uint64
		withdraw uint64
	}{
		{balance: 0, withdraw: 0},
		{balance: 9, withdraw: 0},
		{balance: 10, withdraw: 1},
		{balance: 19, withdraw: 1},
		{balance: 500, withdraw: 50},
		{balance: 999, withdraw: 99},
	}
	for _, tt := range tests {
		owner := codec.CreatePubkey([]byte("owner"))
		target, ownerInfo := newRecordAccounts(t, owner, tt.balance, 1_000)

		p := &Program{}
		require.NoError(p.withdraw(ID, []*runtime.AccountInfo{target, ownerInfo}))
		s, err := UnmarshalAccountState(target.Data)
		require.NoError(err)
		require.Equal(tt.balance-tt.withdraw, s.Balance)
		require.Equal(1_000-tt.withdraw, target.Lamports)
		require.Equal(1_000+tt.withdraw, ownerInfo.Lamports)
	}
}

func newRecordAccounts(t *testing.T, owner codec.Pubkey, balance uint64, lamports uint64) (*runtime.AccountInfo, *runtime.AccountInfo) {
	data := make([]byte, AccountStateLen)
	require.NoError(t, (&AccountState{Owner: owner, Balance: balance}).WriteTo(data))
	target := &runtime.AccountInfo{
		Key:        codec.CreatePubkey([]byte("target")),
		IsWritable: true,
		Lamports:   lamports,
		Owner:      ID,
		Data:       data,
	}
	ownerInfo := &runtime.AccountInfo{
		Key:        owner,
		IsSigner:   true,
		IsWritable: true,
		Lamports:   lamports,
		Owner:      system.ID,
	}
	return target, ownerInfo
}
