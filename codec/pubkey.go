// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/ava-labs/lamportvm/consts"
)

var ErrInvalidPubkey = errors.New("invalid pubkey")

// Pubkey is the 32 byte identity of an account slot or a program.
type Pubkey [consts.PubkeyLen]byte

var EmptyPubkey = Pubkey{}

// CreatePubkey derives a well-known identity from [seed].
func CreatePubkey(seed []byte) Pubkey {
	return Pubkey(sha256.Sum256(seed))
}

// ParsePubkey decodes the base58 form of a Pubkey.
func ParsePubkey(s string) (Pubkey, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return EmptyPubkey, fmt.Errorf("%w: %w", ErrInvalidPubkey, err)
	}
	if len(b) != consts.PubkeyLen {
		return EmptyPubkey, fmt.Errorf("%w: expected %d bytes but got %d", ErrInvalidPubkey, consts.PubkeyLen, len(b))
	}
	return Pubkey(b), nil
}

// String implements fmt.Stringer.
func (p Pubkey) String() string {
	return base58.Encode(p[:])
}

// MarshalText returns the base58 representation of p.
func (p Pubkey) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses a base58-encoded pubkey.
func (p *Pubkey) UnmarshalText(input []byte) error {
	parsed, err := ParsePubkey(string(input))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
