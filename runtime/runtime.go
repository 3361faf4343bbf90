// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ava-labs/lamportvm/codec"
	"github.com/ava-labs/lamportvm/state"
	"github.com/ava-labs/lamportvm/storage"
	"github.com/ava-labs/lamportvm/tstate"

	smath "github.com/ava-labs/avalanchego/utils/math"
)

// Result is the outcome of executing a transaction. [Err] is the error
// returned by the failing instruction, if any.
type Result struct {
	TxID    ids.ID
	Success bool
	Err     error
	Logs    []string
}

type Runtime struct {
	log      logging.Logger
	rent     Rent
	programs map[codec.Pubkey]Program
	metrics  *metrics
}

func New(log logging.Logger, rent Rent, registerer prometheus.Registerer) (*Runtime, error) {
	m, err := newMetrics(registerer)
	if err != nil {
		return nil, err
	}
	return &Runtime{
		log:      log,
		rent:     rent,
		programs: map[codec.Pubkey]Program{},
		metrics:  m,
	}, nil
}

// Register makes [p] callable at [id].
func (r *Runtime) Register(id codec.Pubkey, p Program) {
	r.programs[id] = p
}

func (r *Runtime) Rent() Rent {
	return r.rent
}

// Execute runs every instruction of [tx] against [mu]. Either all of the
// transaction's account changes are written to [mu] or none are.
//
// An error is returned only if [tx] could not be executed at all. A failing
// instruction is reported in the [Result].
func (r *Runtime) Execute(ctx context.Context, mu state.Mutable, tx *Transaction) (*Result, error) {
	start := time.Now()
	defer func() {
		r.metrics.executeTime.Observe(float64(time.Since(start)))
	}()

	if len(tx.Message.Instructions) == 0 {
		return nil, ErrEmptyTransaction
	}
	txID, err := tx.ID()
	if err != nil {
		return nil, err
	}
	signers, err := tx.Verify()
	if err != nil {
		return nil, err
	}

	keys := tx.Message.AccountKeys()
	scope := make(state.Keys, len(keys))
	for _, pk := range keys {
		perm := state.Read
		if tx.Message.IsWritable(pk) {
			perm = state.All
		}
		scope.Add(string(storage.AccountKey(pk)), perm)
	}
	ts := tstate.New(len(keys))
	scopeStorage, err := ts.FetchScope(ctx, mu, scope)
	if err != nil {
		return nil, err
	}
	view := ts.NewView(scope, scopeStorage)

	infos := make(map[codec.Pubkey]*AccountInfo, len(keys))
	for _, pk := range keys {
		acct, err := storage.ParseAccount(scopeStorage[string(storage.AccountKey(pk))])
		if err != nil {
			return nil, err
		}
		info := newAccountInfo(pk, acct)
		// A signature only grants the privilege to keys the message marks as signers.
		info.IsSigner = tx.Message.IsSigner(pk) && signers.Contains(pk)
		info.IsWritable = tx.Message.IsWritable(pk)
		infos[pk] = info
	}

	var (
		logs   = []string{}
		result = &Result{TxID: txID}
	)
	for i, ix := range tx.Message.Instructions {
		r.metrics.instructionsExecuted.Inc()
		if err := r.executeInstruction(ctx, view, &ix, infos, &logs); err != nil {
			r.metrics.instructionsFailed.Inc()
			r.metrics.txsFailed.Inc()
			view.Rollback(ctx, 0)
			r.log.Debug("transaction failed",
				zap.Stringer("txID", txID),
				zap.Int("instruction", i),
				zap.Error(err),
			)
			result.Err = fmt.Errorf("instruction %d: %w", i, err)
			result.Logs = logs
			return result, nil
		}
	}
	view.Commit()
	if err := ts.ExportTo(ctx, mu); err != nil {
		return nil, err
	}
	r.metrics.txsExecuted.Inc()
	result.Success = true
	result.Logs = logs
	return result, nil
}

func (r *Runtime) executeInstruction(
	ctx context.Context,
	view *tstate.TStateView,
	ix *Instruction,
	infos map[codec.Pubkey]*AccountInfo,
	logs *[]string,
) error {
	accounts := make([]*AccountInfo, 0, len(ix.Accounts))
	unique := make([]*AccountInfo, 0, len(ix.Accounts))
	for _, meta := range ix.Accounts {
		info := infos[meta.Pubkey]
		if findAccount(meta.Pubkey, unique) == nil {
			unique = append(unique, info)
		}
		accounts = append(accounts, info)
	}

	before, err := totalLamports(unique)
	if err != nil {
		return err
	}
	readonly := map[codec.Pubkey]accountSnapshot{}
	for _, info := range unique {
		if !info.IsWritable {
			readonly[info.Key] = snapshot(info)
		}
	}

	if err := r.invoke(ctx, ix.ProgramID, 1, logs, accounts, ix.Data); err != nil {
		return err
	}

	after, err := totalLamports(unique)
	if err != nil {
		return err
	}
	if before != after {
		return fmt.Errorf("%w: before=%d after=%d", ErrUnbalancedInstruction, before, after)
	}
	for pk, snap := range readonly {
		if !snap.matches(infos[pk]) {
			return fmt.Errorf("%w: %s", ErrReadonlyAccount, pk)
		}
	}
	for _, info := range unique {
		if !info.IsWritable {
			continue
		}
		if len(info.Data) > 0 && !r.rent.IsExempt(info.Lamports, len(info.Data)) {
			return fmt.Errorf("%w: %s holds %d lamports for %d bytes", ErrAccountNotRentExempt, info.Key, info.Lamports, len(info.Data))
		}
		if err := storage.SetAccount(ctx, view, info.Key, info.toAccount()); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runtime) invoke(
	ctx context.Context,
	programID codec.Pubkey,
	depth int,
	logs *[]string,
	accounts []*AccountInfo,
	input []byte,
) error {
	p, ok := r.programs[programID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProgram, programID)
	}
	*logs = append(*logs, fmt.Sprintf("Program %s invoke [%d]", programID, depth))
	ic := &InvokeContext{
		ctx:   ctx,
		r:     r,
		depth: depth,
		logs:  logs,
	}
	if err := p.Process(ic, programID, accounts, input); err != nil {
		*logs = append(*logs, fmt.Sprintf("Program %s failed: %s", programID, err))
		return err
	}
	*logs = append(*logs, fmt.Sprintf("Program %s success", programID))
	return nil
}

func totalLamports(accounts []*AccountInfo) (uint64, error) {
	var total uint64
	for _, info := range accounts {
		n, err := smath.Add(total, info.Lamports)
		if err != nil {
			return 0, fmt.Errorf("%w: total across instruction accounts", ErrLamportsOverflow)
		}
		total = n
	}
	return total, nil
}
