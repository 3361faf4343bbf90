// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ava-labs/lamportvm/codec"
	"github.com/ava-labs/lamportvm/crypto/ed25519"
	"github.com/ava-labs/lamportvm/state"
	"github.com/ava-labs/lamportvm/storage"
)

type keyResponse struct {
	Name       string       `json:"name"`
	Pubkey     codec.Pubkey `json:"pubkey"`
	PrivateKey string       `json:"privateKey,omitempty"`
}

func newKeyCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage named keys",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "create [name]",
			Short: "Create a new named private key",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				db, err := c.openKeystore()
				if err != nil {
					return err
				}
				priv, err := keyCreateFunc(cmd.Context(), state.NewSimpleMutable(db), args[0])
				if err != nil {
					return err
				}
				c.log.Info("created key",
					zap.String("name", args[0]),
					zap.Stringer("pubkey", priv.Pubkey()),
				)
				return printJSON(cmd, &keyResponse{Name: args[0], Pubkey: priv.Pubkey()})
			},
		},
		&cobra.Command{
			Use:   "address [name]",
			Short: "Print the public key of a named key",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				db, err := c.openKeystore()
				if err != nil {
					return err
				}
				priv, err := getKey(cmd.Context(), state.NewSimpleMutable(db), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd, &keyResponse{Name: args[0], Pubkey: priv.Pubkey()})
			},
		},
		newKeyExportCmd(c),
		newKeyImportCmd(c),
	)
	return cmd
}

func newKeyExportCmd(c *cli) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export [name]",
		Short: "Print a named private key as hex, or write it to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := c.openKeystore()
			if err != nil {
				return err
			}
			priv, err := getKey(cmd.Context(), state.NewSimpleMutable(db), args[0])
			if err != nil {
				return err
			}
			resp := &keyResponse{Name: args[0], Pubkey: priv.Pubkey()}
			if out == "" {
				resp.PrivateKey = priv.ToHex()
				return printJSON(cmd, resp)
			}
			if err := priv.Save(out); err != nil {
				return err
			}
			c.log.Info("exported key",
				zap.String("name", args[0]),
				zap.String("file", out),
			)
			return printJSON(cmd, resp)
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "write the raw key bytes to this file instead of printing hex")
	return cmd
}

func newKeyImportCmd(c *cli) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import [name] [hex]",
		Short: "Store a hex encoded private key, or one read from --file, under a name",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				priv ed25519.PrivateKey
				err  error
			)
			switch {
			case file != "" && len(args) == 1:
				priv, err = ed25519.LoadKey(file)
			case file == "" && len(args) == 2:
				priv, err = ed25519.HexToKey(args[1])
			default:
				return ErrMissingKeySource
			}
			if err != nil {
				return err
			}
			db, err := c.openKeystore()
			if err != nil {
				return err
			}
			if err := storeKey(cmd.Context(), state.NewSimpleMutable(db), args[0], priv); err != nil {
				return err
			}
			c.log.Info("imported key",
				zap.String("name", args[0]),
				zap.Stringer("pubkey", priv.Pubkey()),
			)
			return printJSON(cmd, &keyResponse{Name: args[0], Pubkey: priv.Pubkey()})
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "read the raw key bytes from this file")
	return cmd
}

func keyCreateFunc(ctx context.Context, mu *state.SimpleMutable, name string) (ed25519.PrivateKey, error) {
	priv, err := ed25519.GeneratePrivateKey()
	if err != nil {
		return ed25519.EmptyPrivateKey, err
	}
	if err := storeKey(ctx, mu, name, priv); err != nil {
		return ed25519.EmptyPrivateKey, err
	}
	return priv, nil
}

// storeKey saves [priv] under [name], which must not be taken.
func storeKey(ctx context.Context, mu *state.SimpleMutable, name string, priv ed25519.PrivateKey) error {
	_, err := getKey(ctx, mu, name)
	switch {
	case err == nil:
		return fmt.Errorf("%w: %s", ErrDuplicateKeyName, name)
	case !errors.Is(err, ErrNamedKeyNotFound):
		return err
	}
	if err := storage.SetKey(ctx, mu, name, priv[:]); err != nil {
		return err
	}
	return mu.Commit(ctx)
}

func getKey(ctx context.Context, im state.Immutable, name string) (ed25519.PrivateKey, error) {
	b, err := storage.GetKey(ctx, im, name)
	if errors.Is(err, database.ErrNotFound) {
		return ed25519.EmptyPrivateKey, fmt.Errorf("%w: %s", ErrNamedKeyNotFound, name)
	}
	if err != nil {
		return ed25519.EmptyPrivateKey, err
	}
	return ed25519.ToPrivateKey(b)
}

// resolvePubkey returns the public key of the named key [s], or parses [s] as
// a base58 public key.
func resolvePubkey(ctx context.Context, im state.Immutable, s string) (codec.Pubkey, error) {
	priv, err := getKey(ctx, im, s)
	if err == nil {
		return priv.Pubkey(), nil
	}
	if !errors.Is(err, ErrNamedKeyNotFound) {
		return codec.EmptyPubkey, err
	}
	return codec.ParsePubkey(s)
}
