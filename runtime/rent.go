// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"fmt"
	"math"

	smath "github.com/ava-labs/avalanchego/utils/math"

	"github.com/ava-labs/lamportvm/consts"
)

const (
	// AccountStorageOverhead is charged on top of every account's data.
	AccountStorageOverhead uint64 = 128

	DefaultLamportsPerByteYear uint64  = 3_480
	DefaultExemptionThreshold  float64 = 2.0

	MaxLamportsPerByteYear uint64  = 1 << 32
	MaxExemptionThreshold  float64 = 1_000
)

type Rent struct {
	LamportsPerByteYear uint64  `json:"lamportsPerByteYear"`
	ExemptionThreshold  float64 `json:"exemptionThreshold"`
}

func DefaultRent() Rent {
	return Rent{
		LamportsPerByteYear: DefaultLamportsPerByteYear,
		ExemptionThreshold:  DefaultExemptionThreshold,
	}
}

// Verify checks the parameters are positive and within bounds.
func (r Rent) Verify() error {
	if r.LamportsPerByteYear == 0 || r.LamportsPerByteYear > MaxLamportsPerByteYear {
		return fmt.Errorf("%w: lamportsPerByteYear %d not in [1, %d]", ErrInvalidRent, r.LamportsPerByteYear, MaxLamportsPerByteYear)
	}
	// Written so that NaN fails.
	if !(r.ExemptionThreshold > 0 && r.ExemptionThreshold <= MaxExemptionThreshold) {
		return fmt.Errorf("%w: exemptionThreshold %v not in (0, %v]", ErrInvalidRent, r.ExemptionThreshold, MaxExemptionThreshold)
	}
	return nil
}

// MinimumBalance returns the lamports an account holding [dataLen] bytes needs
// to be exempt from rent. It saturates at MaxUint64, which no account can
// hold beyond.
func (r Rent) MinimumBalance(dataLen uint64) uint64 {
	bytes, err := smath.Add(AccountStorageOverhead, dataLen)
	if err != nil {
		return consts.MaxUint64
	}
	perYear, err := smath.Mul(bytes, r.LamportsPerByteYear)
	if err != nil {
		return consts.MaxUint64
	}
	minBalance := float64(perYear) * r.ExemptionThreshold
	if !(minBalance > 0) {
		return 0
	}
	if minBalance >= math.MaxUint64 {
		return consts.MaxUint64
	}
	return uint64(minBalance)
}

func (r Rent) IsExempt(lamports uint64, dataLen int) bool {
	return lamports >= r.MinimumBalance(uint64(dataLen))
}
