// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/set"
	"github.com/near/borsh-go"

	"github.com/ava-labs/lamportvm/codec"
	"github.com/ava-labs/lamportvm/crypto/ed25519"
	"github.com/ava-labs/lamportvm/utils"
)

// Message is the signed portion of a [Transaction]. [Nonce] distinguishes
// otherwise identical messages.
type Message struct {
	Nonce        uint64        `json:"nonce"`
	Instructions []Instruction `json:"instructions"`
}

type TxSignature struct {
	Pubkey    codec.Pubkey      `json:"pubkey"`
	Signature ed25519.Signature `json:"signature"`
}

type Transaction struct {
	Message    Message       `json:"message"`
	Signatures []TxSignature `json:"signatures"`
}

func NewTransaction(nonce uint64, ixs ...Instruction) *Transaction {
	return &Transaction{Message: Message{Nonce: nonce, Instructions: ixs}}
}

func (m *Message) Bytes() ([]byte, error) {
	return borsh.Serialize(*m)
}

// AccountKeys returns every account referenced by the message in order of
// first appearance.
func (m *Message) AccountKeys() []codec.Pubkey {
	seen := set.NewSet[codec.Pubkey](len(m.Instructions))
	keys := []codec.Pubkey{}
	for _, ix := range m.Instructions {
		for _, meta := range ix.Accounts {
			if seen.Contains(meta.Pubkey) {
				continue
			}
			seen.Add(meta.Pubkey)
			keys = append(keys, meta.Pubkey)
		}
	}
	return keys
}

// IsSigner returns true if any instruction requests [pk] as a signer.
func (m *Message) IsSigner(pk codec.Pubkey) bool {
	for _, ix := range m.Instructions {
		for _, meta := range ix.Accounts {
			if meta.Pubkey == pk && meta.IsSigner {
				return true
			}
		}
	}
	return false
}

// IsWritable returns true if any instruction requests [pk] as writable.
func (m *Message) IsWritable(pk codec.Pubkey) bool {
	for _, ix := range m.Instructions {
		for _, meta := range ix.Accounts {
			if meta.Pubkey == pk && meta.IsWritable {
				return true
			}
		}
	}
	return false
}

// ID is the hash of the message.
func (tx *Transaction) ID() (ids.ID, error) {
	msg, err := tx.Message.Bytes()
	if err != nil {
		return ids.Empty, err
	}
	return utils.ToID(msg), nil
}

// Sign appends a signature by [priv] over the message.
func (tx *Transaction) Sign(priv ed25519.PrivateKey) error {
	msg, err := tx.Message.Bytes()
	if err != nil {
		return err
	}
	tx.Signatures = append(tx.Signatures, TxSignature{
		Pubkey:    priv.Pubkey(),
		Signature: ed25519.Sign(msg, priv),
	})
	return nil
}

// Verify checks every signature and returns the set of signers.
func (tx *Transaction) Verify() (set.Set[codec.Pubkey], error) {
	if len(tx.Signatures) == 0 {
		return nil, fmt.Errorf("%w: no signatures", ErrInvalidSignature)
	}
	msg, err := tx.Message.Bytes()
	if err != nil {
		return nil, err
	}
	signers := set.NewSet[codec.Pubkey](len(tx.Signatures))
	for _, sig := range tx.Signatures {
		if signers.Contains(sig.Pubkey) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSignature, sig.Pubkey)
		}
		signers.Add(sig.Pubkey)
	}
	if len(tx.Signatures) < ed25519.MinBatchSize {
		for _, sig := range tx.Signatures {
			if !ed25519.Verify(msg, ed25519.PublicKey(sig.Pubkey), sig.Signature) {
				return nil, fmt.Errorf("%w: %s", ErrInvalidSignature, sig.Pubkey)
			}
		}
		return signers, nil
	}
	batch := ed25519.NewBatch(len(tx.Signatures))
	for _, sig := range tx.Signatures {
		batch.Add(msg, ed25519.PublicKey(sig.Pubkey), sig.Signature)
	}
	if err := batch.VerifyAsync()(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	return signers, nil
}

func (tx *Transaction) Bytes() ([]byte, error) {
	return borsh.Serialize(*tx)
}

func UnmarshalTransaction(b []byte) (*Transaction, error) {
	var tx Transaction
	if err := borsh.Deserialize(&tx, b); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTransaction, err)
	}
	return &tx, nil
}
