// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/units"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/ava-labs/lamportvm/codec"
	"github.com/ava-labs/lamportvm/genesis"
	"github.com/ava-labs/lamportvm/ledger"
	"github.com/ava-labs/lamportvm/runtime"
	"github.com/ava-labs/lamportvm/state"
	"github.com/ava-labs/lamportvm/storage"
	"github.com/ava-labs/lamportvm/system"
)

// MaxTxSize bounds the encoded size of a submitted transaction.
const MaxTxSize = 64 * units.KiB

// VM executes transactions one at a time against a [state.Database].
type VM struct {
	log     logging.Logger
	db      state.Database
	rent    runtime.Rent
	runtime *runtime.Runtime
	metrics *metrics

	// lock serializes execution so that every transaction observes the
	// committed effects of the one before it.
	lock      sync.Mutex
	processed atomic.Uint64
}

func New(log logging.Logger, db state.Database, rent runtime.Rent, registerer prometheus.Registerer) (*VM, error) {
	rt, err := runtime.New(log, rent, registerer)
	if err != nil {
		return nil, err
	}
	rt.Register(system.ID, &system.Program{})
	rt.Register(ledger.ID, &ledger.Program{})

	m, err := newMetrics(registerer)
	if err != nil {
		return nil, err
	}
	return &VM{
		log:     log,
		db:      db,
		rent:    rent,
		runtime: rt,
		metrics: m,
	}, nil
}

func (vm *VM) Logger() logging.Logger {
	return vm.log
}

func (vm *VM) Rent() runtime.Rent {
	return vm.rent
}

// Processed returns the number of transactions whose result was stored since
// the VM started.
func (vm *VM) Processed() uint64 {
	return vm.processed.Load()
}

// ApplyGenesis funds the genesis allocations. It may only be called once per
// database.
func (vm *VM) ApplyGenesis(ctx context.Context, g *genesis.Genesis) (uint64, error) {
	vm.lock.Lock()
	defer vm.lock.Unlock()

	mu := state.NewSimpleMutable(vm.db)
	if _, ok, err := storage.GetGenesis(ctx, mu); err != nil {
		return 0, err
	} else if ok {
		return 0, ErrGenesisApplied
	}
	supply, err := g.InitializeState(ctx, mu)
	if err != nil {
		return 0, err
	}
	if err := storage.SetGenesis(ctx, mu, supply); err != nil {
		return 0, err
	}
	if err := mu.Commit(ctx); err != nil {
		return 0, err
	}
	vm.log.Info("applied genesis",
		zap.Int("accounts", len(g.Accounts)),
		zap.Uint64("supply", supply),
	)
	return supply, nil
}

// SubmitBytes parses and submits an encoded transaction.
func (vm *VM) SubmitBytes(ctx context.Context, b []byte) (*runtime.Result, error) {
	if len(b) > MaxTxSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrTransactionTooBig, len(b), MaxTxSize)
	}
	tx, err := runtime.UnmarshalTransaction(b)
	if err != nil {
		return nil, err
	}
	return vm.Submit(ctx, tx)
}

// Submit executes [tx] and stores its result. A transaction whose
// instructions fail still has its result stored and returns no error.
func (vm *VM) Submit(ctx context.Context, tx *runtime.Transaction) (*runtime.Result, error) {
	vm.lock.Lock()
	defer vm.lock.Unlock()

	vm.metrics.txsSubmitted.Inc()
	result, err := vm.submit(ctx, tx)
	if err != nil {
		vm.metrics.txsRejected.Inc()
		vm.log.Debug("rejected transaction", zap.Error(err))
		return nil, err
	}
	vm.metrics.txsAccepted.Inc()
	vm.processed.Inc()
	vm.log.Info("processed transaction",
		zap.Stringer("txID", result.TxID),
		zap.Bool("success", result.Success),
		zap.Int("instructions", len(tx.Message.Instructions)),
	)
	return result, nil
}

func (vm *VM) submit(ctx context.Context, tx *runtime.Transaction) (*runtime.Result, error) {
	txID, err := tx.ID()
	if err != nil {
		return nil, err
	}
	mu := state.NewSimpleMutable(vm.db)
	switch _, err := storage.GetResult(ctx, mu, txID); {
	case err == nil:
		return nil, fmt.Errorf("%w: %s", ErrDuplicateTx, txID)
	case !errors.Is(err, database.ErrNotFound):
		return nil, err
	}

	result, err := vm.runtime.Execute(ctx, mu, tx)
	if err != nil {
		return nil, err
	}
	stored := &storage.Result{Success: result.Success, Logs: result.Logs}
	if result.Err != nil {
		stored.Error = result.Err.Error()
	}
	if err := storage.StoreResult(ctx, mu, txID, stored); err != nil {
		return nil, err
	}

	start := time.Now()
	if err := mu.Commit(ctx); err != nil {
		return nil, err
	}
	vm.metrics.commitTime.Observe(float64(time.Since(start)))
	return result, nil
}

func (vm *VM) GetAccount(ctx context.Context, pk codec.Pubkey) (*storage.Account, error) {
	return storage.GetAccount(ctx, state.NewSimpleMutable(vm.db), pk)
}

// GetLedgerState returns the record kept by the ledger program in [pk].
func (vm *VM) GetLedgerState(ctx context.Context, pk codec.Pubkey) (*ledger.AccountState, error) {
	acct, err := vm.GetAccount(ctx, pk)
	if err != nil {
		return nil, err
	}
	if acct.Owner != ledger.ID {
		return nil, fmt.Errorf("%w: %s is owned by %s", ErrNotLedgerAccount, pk, acct.Owner)
	}
	return ledger.UnmarshalAccountState(acct.Data)
}

func (vm *VM) GetResult(ctx context.Context, txID ids.ID) (*storage.Result, error) {
	return storage.GetResult(ctx, state.NewSimpleMutable(vm.db), txID)
}
