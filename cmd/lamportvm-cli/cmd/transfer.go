// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ava-labs/lamportvm/state"
	"github.com/ava-labs/lamportvm/system"
	"github.com/ava-labs/lamportvm/utils"
)

func newTransferCmd(c *cli) *cobra.Command {
	var from, to, amount string
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Move lamports between system accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			keystore, err := c.openKeystore()
			if err != nil {
				return err
			}
			im := state.NewSimpleMutable(keystore)
			priv, err := getKey(ctx, im, from)
			if err != nil {
				return err
			}
			dest, err := resolvePubkey(ctx, im, to)
			if err != nil {
				return err
			}
			lamports, err := utils.ParseBalance(amount)
			if err != nil {
				return err
			}
			return c.submit(cmd, system.NewTransferInstruction(priv.Pubkey(), dest, lamports), priv)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "named key paying the transfer")
	cmd.Flags().StringVar(&to, "to", "", "recipient (named key or base58 pubkey)")
	cmd.Flags().StringVar(&amount, "amount", "", "amount in whole units, for example 1.5")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}
