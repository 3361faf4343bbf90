// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ava-labs/lamportvm/genesis"
	"github.com/ava-labs/lamportvm/utils"
)

func newGenesisCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "genesis",
		Short: "Manage the genesis state",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "apply [file]",
		Short: "Fund the allocations of a genesis file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := utils.LoadBytes(args[0], -1)
			if err != nil {
				return err
			}
			g, err := genesis.Load(b)
			if err != nil {
				return err
			}
			v, err := c.newVM(g.Rent)
			if err != nil {
				return err
			}
			supply, err := v.ApplyGenesis(cmd.Context(), g)
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]any{
				"accounts": len(g.Accounts),
				"supply":   supply,
			})
		},
	})
	return cmd
}
