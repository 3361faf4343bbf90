// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ava-labs/lamportvm/codec"
	"github.com/ava-labs/lamportvm/consts"
)

// InvokeContext is handed to a program for the duration of one instruction.
type InvokeContext struct {
	ctx   context.Context
	r     *Runtime
	depth int
	logs  *[]string
}

func (ic *InvokeContext) Context() context.Context {
	return ic.ctx
}

func (ic *InvokeContext) Rent() Rent {
	return ic.r.rent
}

// Depth is 1 for a top-level instruction.
func (ic *InvokeContext) Depth() int {
	return ic.depth
}

// Log records a program log line in the transaction result.
func (ic *InvokeContext) Log(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	*ic.logs = append(*ic.logs, "Program log: "+line)
	ic.r.log.Debug("program log", zap.String("msg", line), zap.Int("depth", ic.depth))
}

// Invoke calls the program named by [ix]. Every account [ix] references must
// be present in [accounts] and may not request more privileges than the
// caller holds for it.
func (ic *InvokeContext) Invoke(ix *Instruction, accounts []*AccountInfo) error {
	if ic.depth >= consts.MaxCallDepth {
		return fmt.Errorf("%w: %d", ErrCallDepth, ic.depth+1)
	}
	infos, err := resolveAccounts(ix.Accounts, accounts)
	if err != nil {
		return err
	}
	ic.r.metrics.invocations.Inc()
	return ic.r.invoke(ic.ctx, ix.ProgramID, ic.depth+1, ic.logs, infos, ix.Data)
}

func resolveAccounts(metas []AccountMeta, accounts []*AccountInfo) ([]*AccountInfo, error) {
	infos := make([]*AccountInfo, 0, len(metas))
	for _, meta := range metas {
		info := findAccount(meta.Pubkey, accounts)
		if info == nil {
			return nil, fmt.Errorf("%w: %s not passed to caller", ErrNotEnoughAccountKeys, meta.Pubkey)
		}
		if meta.IsSigner && !info.IsSigner {
			return nil, fmt.Errorf("%w: %s", ErrMissingRequiredSignature, meta.Pubkey)
		}
		if meta.IsWritable && !info.IsWritable {
			return nil, fmt.Errorf("%w: %s", ErrReadonlyAccount, meta.Pubkey)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func findAccount(pk codec.Pubkey, accounts []*AccountInfo) *AccountInfo {
	for _, info := range accounts {
		if info.Key == pk {
			return info
		}
	}
	return nil
}
