// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"fmt"

	"github.com/near/borsh-go"

	"github.com/ava-labs/lamportvm/consts"
	"github.com/ava-labs/lamportvm/runtime"
)

// Tags select the instruction variant in the first byte of instruction data.
const (
	InitializeTag uint8 = 0
	DepositTag    uint8 = 1
	WithdrawTag   uint8 = 2
)

// Instruction is one of [*Initialize], [*Deposit] or [*Withdraw].
type Instruction interface {
	// Tag is the first byte of the encoded instruction.
	Tag() uint8

	payloadLen() int
	marshalPayload() ([]byte, error)
}

var (
	_ Instruction = (*Initialize)(nil)
	_ Instruction = (*Deposit)(nil)
	_ Instruction = (*Withdraw)(nil)
)

// Initialize creates or resets a ledger account. [Args] is carried on the
// wire but has no effect.
type Initialize struct {
	Args uint64 `json:"args"`
}

func (*Initialize) Tag() uint8 { return InitializeTag }

func (*Initialize) payloadLen() int { return consts.Uint64Len }

func (i *Initialize) marshalPayload() ([]byte, error) { return borsh.Serialize(*i) }

// Deposit moves [Amount] lamports from the owner into the ledger account and
// adds it to the recorded balance.
type Deposit struct {
	Amount uint64 `json:"amount"`
	Args   uint64 `json:"args"`
}

func (*Deposit) Tag() uint8 { return DepositTag }

func (*Deposit) payloadLen() int { return 2 * consts.Uint64Len }

func (d *Deposit) marshalPayload() ([]byte, error) { return borsh.Serialize(*d) }

// Withdraw moves a tenth of the recorded balance back to the owner.
type Withdraw struct {
	Args uint64 `json:"args"`
}

func (*Withdraw) Tag() uint8 { return WithdrawTag }

func (*Withdraw) payloadLen() int { return consts.Uint64Len }

func (w *Withdraw) marshalPayload() ([]byte, error) { return borsh.Serialize(*w) }

// EncodeInstruction returns the tag byte of [ix] followed by its fields.
func EncodeInstruction(ix Instruction) ([]byte, error) {
	payload, err := ix.marshalPayload()
	if err != nil {
		return nil, err
	}
	b := make([]byte, 0, consts.ByteLen+len(payload))
	b = append(b, ix.Tag())
	return append(b, payload...), nil
}

// DecodeInstruction parses [input]. Unknown tags, truncated fields and
// trailing bytes are all rejected.
func DecodeInstruction(input []byte) (Instruction, error) {
	if len(input) == 0 {
		return nil, fmt.Errorf("%w: empty input", runtime.ErrInvalidInstructionData)
	}
	var ix Instruction
	switch input[0] {
	case InitializeTag:
		ix = &Initialize{}
	case DepositTag:
		ix = &Deposit{}
	case WithdrawTag:
		ix = &Withdraw{}
	default:
		return nil, fmt.Errorf("%w: unknown tag %d", runtime.ErrInvalidInstructionData, input[0])
	}
	payload := input[consts.ByteLen:]
	if len(payload) != ix.payloadLen() {
		return nil, fmt.Errorf("%w: tag %d expects %d bytes, got %d", runtime.ErrInvalidInstructionData, input[0], ix.payloadLen(), len(payload))
	}
	if err := borsh.Deserialize(ix, payload); err != nil {
		return nil, fmt.Errorf("%w: %w", runtime.ErrInvalidInstructionData, err)
	}
	return ix, nil
}
