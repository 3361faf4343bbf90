// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/perms"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ava-labs/lamportvm/config"
	"github.com/ava-labs/lamportvm/pebble"
	"github.com/ava-labs/lamportvm/runtime"
	"github.com/ava-labs/lamportvm/utils"
	"github.com/ava-labs/lamportvm/vm"
)

const (
	dbFolder       = "db"
	keystoreFolder = "keys"
)

type cli struct {
	configPath string
	dataDir    string
	logLevel   string
	endpoint   string

	cfg        *config.Config
	log        logging.Logger
	logFactory *logFactory
	registry   *prometheus.Registry
	db         *pebble.Database
	keystore   *pebble.Database
}

func NewRootCmd() *cobra.Command {
	c := &cli{}
	cmd := &cobra.Command{
		Use:   "lamportvm-cli",
		Short: "Lamport ledger node and client",
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return c.init()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.DisableAutoGenTag = true
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.PersistentFlags().StringVar(&c.configPath, "config", "", "path to a JSON config file")
	cmd.PersistentFlags().StringVar(&c.dataDir, "data-dir", "", "directory holding the database and logs")
	cmd.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level written to the log file")
	cmd.PersistentFlags().StringVar(&c.endpoint, "endpoint", "", "send transactions and queries to a running node instead of the local database")

	cmd.AddCommand(
		newGenesisCmd(c),
		newKeyCmd(c),
		newLedgerCmd(c),
		newTransferCmd(c),
		newAccountCmd(c),
		newRunCmd(c),
		newServeCmd(c),
	)

	cobra.OnFinalize(c.close)
	return cmd
}

func (c *cli) init() error {
	cfg, err := config.LoadFile(c.configPath)
	if err != nil {
		return err
	}
	if c.dataDir != "" {
		cfg.DataDir = c.dataDir
	}
	if c.logLevel != "" {
		cfg.LogLevel, err = logging.ToLevel(c.logLevel)
		if err != nil {
			return err
		}
	}
	if err := os.MkdirAll(cfg.LogDirectory(), perms.ReadWriteExecute); err != nil {
		return err
	}
	loggingConfig, err := cfg.LoggingConfig()
	if err != nil {
		return err
	}
	c.logFactory = newLogFactory(loggingConfig)
	c.log, err = c.logFactory.Make("lamportvm")
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.registry = prometheus.NewRegistry()
	c.log.Debug("cli initialized",
		zap.String("dataDir", cfg.DataDir),
		zap.String("endpoint", c.endpoint),
	)
	return nil
}

// openDB opens the pebble database in the data directory. It is only opened
// by commands that need it.
func (c *cli) openDB() (*pebble.Database, error) {
	if c.db != nil {
		return c.db, nil
	}
	dir, err := utils.InitSubDirectory(c.cfg.DataDir, dbFolder)
	if err != nil {
		return nil, err
	}
	db, err := pebble.New(dir, c.cfg.Pebble, c.registry)
	if err != nil {
		return nil, err
	}
	c.db = db
	return db, nil
}

// openKeystore opens the named key database. It is kept apart from the
// ledger database so keys stay usable while a node holds the ledger open.
func (c *cli) openKeystore() (*pebble.Database, error) {
	if c.keystore != nil {
		return c.keystore, nil
	}
	dir, err := utils.InitSubDirectory(c.cfg.DataDir, keystoreFolder)
	if err != nil {
		return nil, err
	}
	db, err := pebble.New(dir, c.cfg.Pebble, prometheus.NewRegistry())
	if err != nil {
		return nil, err
	}
	c.keystore = db
	return db, nil
}

func (c *cli) newVM(rent runtime.Rent) (*vm.VM, error) {
	db, err := c.openDB()
	if err != nil {
		return nil, err
	}
	return vm.New(c.log, db, rent, c.registry)
}

func (c *cli) close() {
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close database: %s\n", err)
		}
		c.db = nil
	}
	if c.keystore != nil {
		if err := c.keystore.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close keystore: %s\n", err)
		}
		c.keystore = nil
	}
	if c.logFactory != nil {
		c.logFactory.Close()
		c.logFactory = nil
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return err
}
