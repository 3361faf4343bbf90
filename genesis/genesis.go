// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ava-labs/lamportvm/codec"
	"github.com/ava-labs/lamportvm/runtime"
	"github.com/ava-labs/lamportvm/state"
	"github.com/ava-labs/lamportvm/storage"

	safemath "github.com/ava-labs/avalanchego/utils/math"
)

type CustomAllocation struct {
	Pubkey   codec.Pubkey `json:"pubkey"`
	Lamports uint64       `json:"lamports"`
}

type Genesis struct {
	Rent     runtime.Rent        `json:"rent"`
	Accounts []*CustomAllocation `json:"accounts"`
}

func NewDefaultGenesis(customAllocations []*CustomAllocation) *Genesis {
	return &Genesis{
		Rent:     runtime.DefaultRent(),
		Accounts: customAllocations,
	}
}

// Load parses a genesis file. Missing rent parameters take their defaults.
func Load(genesisBytes []byte) (*Genesis, error) {
	g := NewDefaultGenesis(nil)
	if err := json.Unmarshal(genesisBytes, g); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidGenesis, err)
	}
	if err := g.Rent.Verify(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidGenesis, err)
	}
	return g, nil
}

// InitializeState funds every allocation as a system-owned account and
// returns the total supply created.
func (g *Genesis) InitializeState(ctx context.Context, mu state.Mutable) (uint64, error) {
	supply := uint64(0)
	for _, alloc := range g.Accounts {
		var err error
		supply, err = safemath.Add(supply, alloc.Lamports)
		if err != nil {
			return 0, fmt.Errorf("%w: supply overflow at %s", ErrInvalidGenesis, alloc.Pubkey)
		}
		acct, err := storage.GetAccount(ctx, mu, alloc.Pubkey)
		if err != nil {
			return 0, err
		}
		acct.Lamports, err = safemath.Add(acct.Lamports, alloc.Lamports)
		if err != nil {
			return 0, fmt.Errorf("%w: pubkey=%s, lamports=%d", ErrInvalidGenesis, alloc.Pubkey, alloc.Lamports)
		}
		if err := storage.SetAccount(ctx, mu, alloc.Pubkey, acct); err != nil {
			return 0, err
		}
	}
	return supply, nil
}
