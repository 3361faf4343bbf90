// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ava-labs/lamportvm/state"
)

func newAccountCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "account [pubkey]",
		Short: "Print an account (named key or base58 pubkey)",
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
			return printJSON(cmd, acct)
		},
	}
}
