// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package system

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"

	"github.com/ava-labs/lamportvm/codec"
	"github.com/ava-labs/lamportvm/consts"
	"github.com/ava-labs/lamportvm/runtime"
	"github.com/ava-labs/lamportvm/storage"
)

// ID is the address of the system program.
var ID = storage.SystemProgramID

const (
	InstrTypeCreateAccount uint32 = 0
	InstrTypeAssign        uint32 = 1
	InstrTypeTransfer      uint32 = 2
	InstrTypeAllocate      uint32 = 8
)

type CreateAccount struct {
	Lamports uint64
	Space    uint64
	Owner    codec.Pubkey
}

type Assign struct {
	Owner codec.Pubkey
}

type Transfer struct {
	Lamports uint64
}

type Allocate struct {
	Space uint64
}

func (instr *CreateAccount) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	var err error
	instr.Lamports, err = decoder.ReadUint64(bin.LE)
	if err != nil {
		return err
	}
	instr.Space, err = decoder.ReadUint64(bin.LE)
	if err != nil {
		return err
	}
	pk, err := decoder.ReadBytes(consts.PubkeyLen)
	if err != nil {
		return err
	}
	copy(instr.Owner[:], pk)
	return nil
}

func (instr *CreateAccount) MarshalWithEncoder(encoder *bin.Encoder) error {
	if err := encoder.WriteUint32(InstrTypeCreateAccount, bin.LE); err != nil {
		return err
	}
	if err := encoder.WriteUint64(instr.Lamports, bin.LE); err != nil {
		return err
	}
	if err := encoder.WriteUint64(instr.Space, bin.LE); err != nil {
		return err
	}
	return encoder.WriteBytes(instr.Owner[:], false)
}

func (instr *Assign) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	pk, err := decoder.ReadBytes(consts.PubkeyLen)
	if err != nil {
		return err
	}
	copy(instr.Owner[:], pk)
	return nil
}

func (instr *Assign) MarshalWithEncoder(encoder *bin.Encoder) error {
	if err := encoder.WriteUint32(InstrTypeAssign, bin.LE); err != nil {
		return err
	}
	return encoder.WriteBytes(instr.Owner[:], false)
}

func (instr *Transfer) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	var err error
	instr.Lamports, err = decoder.ReadUint64(bin.LE)
	return err
}

func (instr *Transfer) MarshalWithEncoder(encoder *bin.Encoder) error {
	if err := encoder.WriteUint32(InstrTypeTransfer, bin.LE); err != nil {
		return err
	}
	return encoder.WriteUint64(instr.Lamports, bin.LE)
}

func (instr *Allocate) UnmarshalWithDecoder(decoder *bin.Decoder) error {
	var err error
	instr.Space, err = decoder.ReadUint64(bin.LE)
	return err
}

func (instr *Allocate) MarshalWithEncoder(encoder *bin.Encoder) error {
	if err := encoder.WriteUint32(InstrTypeAllocate, bin.LE); err != nil {
		return err
	}
	return encoder.WriteUint64(instr.Space, bin.LE)
}

type marshaler interface {
	MarshalWithEncoder(encoder *bin.Encoder) error
}

func encode(instr marshaler) []byte {
	buf := new(bytes.Buffer)
	if err := instr.MarshalWithEncoder(bin.NewBinEncoder(buf)); err != nil {
		// Writes to a bytes.Buffer do not fail.
		panic(fmt.Sprintf("encoding system instruction: %v", err))
	}
	return buf.Bytes()
}

// NewCreateAccountInstruction funds [to] from [from] and assigns it to [owner]
// with [space] bytes of zeroed data.
func NewCreateAccountInstruction(from codec.Pubkey, to codec.Pubkey, lamports uint64, space uint64, owner codec.Pubkey) runtime.Instruction {
	return runtime.Instruction{
		ProgramID: ID,
		Accounts: []runtime.AccountMeta{
			runtime.NewAccountMeta(from, true, true),
			runtime.NewAccountMeta(to, true, true),
		},
		Data: encode(&CreateAccount{Lamports: lamports, Space: space, Owner: owner}),
	}
}

func NewAssignInstruction(pubkey codec.Pubkey, owner codec.Pubkey) runtime.Instruction {
	return runtime.Instruction{
		ProgramID: ID,
		Accounts:  []runtime.AccountMeta{runtime.NewAccountMeta(pubkey, true, true)},
		Data:      encode(&Assign{Owner: owner}),
	}
}

func NewTransferInstruction(from codec.Pubkey, to codec.Pubkey, lamports uint64) runtime.Instruction {
	return runtime.Instruction{
		ProgramID: ID,
		Accounts: []runtime.AccountMeta{
			runtime.NewAccountMeta(from, true, true),
			runtime.NewAccountMeta(to, false, true),
		},
		Data: encode(&Transfer{Lamports: lamports}),
	}
}

func NewAllocateInstruction(pubkey codec.Pubkey, space uint64) runtime.Instruction {
	return runtime.Instruction{
		ProgramID: ID,
		Accounts:  []runtime.AccountMeta{runtime.NewAccountMeta(pubkey, true, true)},
		Data:      encode(&Allocate{Space: space}),
	}
}
