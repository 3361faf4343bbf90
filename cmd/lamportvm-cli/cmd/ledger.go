// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ava-labs/lamportvm/codec"
	"github.com/ava-labs/lamportvm/crypto/ed25519"
	"github.com/ava-labs/lamportvm/ledger"
	"github.com/ava-labs/lamportvm/runtime"
	"github.com/ava-labs/lamportvm/state"
)

type ledgerFlags struct {
	target string
	owner  string
	amount uint64
	args   uint64
}

func newLedgerCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Interact with the ledger program",
	}
	cmd.AddCommand(
		newLedgerTxCmd(c, "initialize", "Create or reset a ledger account owned by --owner",
			func(ctx context.Context, im state.Immutable, f *ledgerFlags) (runtime.Instruction, []ed25519.PrivateKey, error) {
				owner, err := getKey(ctx, im, f.owner)
				if err != nil {
					return runtime.Instruction{}, nil, err
				}
				target, err := getKey(ctx, im, f.target)
				if err != nil {
					return runtime.Instruction{}, nil, err
				}
				ix, err := ledger.NewInitializeInstruction(target.Pubkey(), owner.Pubkey(), true, f.args)
				return ix, []ed25519.PrivateKey{owner, target}, err
			},
		),
		newLedgerTxCmd(c, "deposit", "Add --amount to the record and move it from --owner into --target",
			func(ctx context.Context, im state.Immutable, f *ledgerFlags) (runtime.Instruction, []ed25519.PrivateKey, error) {
				owner, target, err := ownerAndTarget(ctx, im, f)
				if err != nil {
					return runtime.Instruction{}, nil, err
				}
				ix, err := ledger.NewDepositInstruction(target, owner.Pubkey(), f.amount, f.args)
				return ix, []ed25519.PrivateKey{owner}, err
			},
		),
		newLedgerTxCmd(c, "withdraw", "Withdraw a tenth of the record balance back to --owner",
			func(ctx context.Context, im state.Immutable, f *ledgerFlags) (runtime.Instruction, []ed25519.PrivateKey, error) {
				owner, target, err := ownerAndTarget(ctx, im, f)
				if err != nil {
					return runtime.Instruction{}, nil, err
				}
				ix, err := ledger.NewWithdrawInstruction(target, owner.Pubkey(), f.args)
				return ix, []ed25519.PrivateKey{owner}, err
			},
		),
		&cobra.Command{
			Use:   "state [target]",
			Short: "Print the record kept in a ledger account",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				keystore, err := c.openKeystore()
				if err != nil {
					return err
				}
				pk, err := resolvePubkey(ctx, state.NewSimpleMutable(keystore), args[0])
				if err != nil {
					return err
				}
				b, err := c.backend()
				if err != nil {
					return err
				}
				acct, err := b.Account(ctx, pk)
				if err != nil {
					return err
				}
				if acct.Record == nil {
					return fmt.Errorf("%w: %s is owned by %s", runtime.ErrIncorrectProgramID, pk, acct.Owner)
				}
				return printJSON(cmd, acct.Record)
			},
		},
	)
	return cmd
}

type buildFunc func(context.Context, state.Immutable, *ledgerFlags) (runtime.Instruction, []ed25519.PrivateKey, error)

func newLedgerTxCmd(c *cli, use string, short string, build buildFunc) *cobra.Command {
	f := &ledgerFlags{}
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			keystore, err := c.openKeystore()
			if err != nil {
				return err
			}
			ix, signers, err := build(ctx, state.NewSimpleMutable(keystore), f)
			if err != nil {
				return err
			}
			return c.submit(cmd, ix, signers...)
		},
	}
	cmd.Flags().StringVar(&f.target, "target", "", "ledger account (named key or base58 pubkey)")
	cmd.Flags().StringVar(&f.owner, "owner", "", "named key of the record owner")
	cmd.Flags().Uint64Var(&f.args, "args", 0, "opaque argument carried by the instruction")
	if use == "deposit" {
		cmd.Flags().Uint64Var(&f.amount, "amount", 0, "lamports to deposit")
	}
	_ = cmd.MarkFlagRequired("target")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func ownerAndTarget(ctx context.Context, im state.Immutable, f *ledgerFlags) (ed25519.PrivateKey, codec.Pubkey, error) {
	owner, err := getKey(ctx, im, f.owner)
	if err != nil {
		return ed25519.EmptyPrivateKey, codec.EmptyPubkey, err
	}
	target, err := resolvePubkey(ctx, im, f.target)
	if err != nil {
		return ed25519.EmptyPrivateKey, codec.EmptyPubkey, err
	}
	return owner, target, nil
}

// submit signs [ix] with [signers] and executes it through the selected
// backend.
func (c *cli) submit(cmd *cobra.Command, ix runtime.Instruction, signers ...ed25519.PrivateKey) error {
	tx := runtime.NewTransaction(uint64(time.Now().UnixNano()), ix)
	for _, signer := range signers {
		if err := tx.Sign(signer); err != nil {
			return err
		}
	}
	b, err := c.backend()
	if err != nil {
		return err
	}
	resp, err := b.Submit(cmd.Context(), tx)
	if err != nil {
		return err
	}
	c.log.Info("submitted transaction",
		zap.Stringer("txID", resp.TxID),
		zap.Bool("success", resp.Success),
	)
	return printJSON(cmd, resp)
}
