// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/lamportvm/crypto/ed25519"
	"github.com/ava-labs/lamportvm/ledger"
	"github.com/ava-labs/lamportvm/utils"
)

func execute(t *testing.T, dataDir string, args ...string) []byte {
	out := &bytes.Buffer{}
	cmd := NewRootCmd()
	cmd.SetOut(out)
	cmd.SetArgs(append(args, "--data-dir", dataDir, "--log-level", "off"))
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	return out.Bytes()
}

func TestCLILedger(t *testing.T) {
	require := require.New(t)
	dataDir := t.TempDir()

	var alice keyResponse
	require.NoError(json.Unmarshal(execute(t, dataDir, "key", "create", "alice"), &alice))
	require.Equal("alice", alice.Name)
	var record keyResponse
	require.NoError(json.Unmarshal(execute(t, dataDir, "key", "create", "record"), &record))

	var addr keyResponse
	require.NoError(json.Unmarshal(execute(t, dataDir, "key", "address", "alice"), &addr))
	require.Equal(alice.Pubkey, addr.Pubkey)

	genesisPath := filepath.Join(dataDir, "genesis.json")
	require.NoError(os.WriteFile(genesisPath, []byte(fmt.Sprintf(
		`{"accounts":[{"pubkey":%q,"lamports":10000000}]}`, alice.Pubkey,
	)), 0o600))
	execute(t, dataDir, "genesis", "apply", genesisPath)

	var resp txResponse
	require.NoError(json.Unmarshal(execute(t, dataDir, "ledger", "initialize", "--target", "record", "--owner", "alice"), &resp))
	require.True(resp.Success, resp.Error)
	require.NoError(json.Unmarshal(execute(t, dataDir, "ledger", "deposit", "--target", "record", "--owner", "alice", "--amount", "500"), &resp))
	require.True(resp.Success, resp.Error)
	require.NoError(json.Unmarshal(execute(t, dataDir, "ledger", "withdraw", "--target", record.Pubkey.String(), "--owner", "alice"), &resp))
	require.True(resp.Success, resp.Error)

	var s ledger.AccountState
	require.NoError(json.Unmarshal(execute(t, dataDir, "ledger", "state", "record"), &s))
	require.Equal(ledger.AccountState{Owner: alice.Pubkey, Balance: 450}, s)

	var acct accountResponse
	require.NoError(json.Unmarshal(execute(t, dataDir, "account", "record"), &acct))
	require.Equal(ledger.ID, acct.Owner)
	require.Equal(&s, acct.Record)
	require.Equal(utils.FormatBalance(acct.Lamports), acct.Balance)
}

func TestCLIKeyExportImport(t *testing.T) {
	require := require.New(t)
	dataDir := t.TempDir()

	var alice keyResponse
	require.NoError(json.Unmarshal(execute(t, dataDir, "key", "create", "alice"), &alice))

	var exported keyResponse
	require.NoError(json.Unmarshal(execute(t, dataDir, "key", "export", "alice"), &exported))
	require.Equal(alice.Pubkey, exported.Pubkey)
	require.NotEmpty(exported.PrivateKey)

	// A second data directory stands in for another machine.
	otherDir := t.TempDir()
	var imported keyResponse
	require.NoError(json.Unmarshal(execute(t, otherDir, "key", "import", "alice", exported.PrivateKey), &imported))
	require.Equal(alice.Pubkey, imported.Pubkey)
	require.Empty(imported.PrivateKey)

	keyPath := filepath.Join(dataDir, "alice.pk")
	var saved keyResponse
	require.NoError(json.Unmarshal(execute(t, dataDir, "key", "export", "alice", "--out", keyPath), &saved))
	require.Empty(saved.PrivateKey)
	require.FileExists(keyPath)

	require.NoError(json.Unmarshal(execute(t, otherDir, "key", "import", "bob", "--file", keyPath), &imported))
	require.Equal("bob", imported.Name)
	require.Equal(alice.Pubkey, imported.Pubkey)

	var addr keyResponse
	require.NoError(json.Unmarshal(execute(t, otherDir, "key", "address", "bob"), &addr))
	require.Equal(alice.Pubkey, addr.Pubkey)
}

func TestCLIKeyImportErrors(t *testing.T) {
	dataDir := t.TempDir()
	execute(t, dataDir, "key", "create", "alice")
	priv, err := ed25519.GeneratePrivateKey()
	require.NoError(t, err)

	tests := []struct {
		name string
		args []string
		err  error
	}{
		{
			name: "no source",
			args: []string{"key", "import", "bob"},
			err:  ErrMissingKeySource,
		},
		{
			name: "bad length",
			args: []string{"key", "import", "bob", "abcd"},
			err:  ed25519.ErrInvalidPrivateKey,
		},
		{
			name: "taken name",
			args: []string{"key", "import", "alice", priv.ToHex()},
			err:  ErrDuplicateKeyName,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewRootCmd()
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetArgs(append(tt.args, "--data-dir", dataDir, "--log-level", "off"))
			require.ErrorIs(t, cmd.ExecuteContext(context.Background()), tt.err)
		})
	}
}

func TestCLIDuplicateKey(t *testing.T) {
	require := require.New(t)
	dataDir := t.TempDir()

	execute(t, dataDir, "key", "create", "alice")

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"key", "create", "alice", "--data-dir", dataDir, "--log-level", "off"})
	require.ErrorIs(cmd.ExecuteContext(context.Background()), ErrDuplicateKeyName)
}
