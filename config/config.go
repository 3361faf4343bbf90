// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ava-labs/avalanchego/utils/logging"

	"github.com/ava-labs/lamportvm/pebble"
	"github.com/ava-labs/lamportvm/runtime"
)

const (
	DefaultDataDir = ".lamportvm"
	DefaultRPCAddr = "127.0.0.1:9650"
)

// Config holds node settings. Zero values in a loaded file keep their
// defaults.
type Config struct {
	LogLevel        logging.Level `json:"logLevel"`
	LogDisplayLevel logging.Level `json:"logDisplayLevel"`
	LogFormat       string        `json:"logFormat"`
	LogDir          string        `json:"logDir"`

	DataDir string        `json:"dataDir"`
	RPCAddr string        `json:"rpcAddr"`
	Pebble  pebble.Config `json:"pebble"`

	// Rent is used by every command except genesis apply, which takes it
	// from the genesis file.
	Rent runtime.Rent `json:"rent"`
}

func NewDefaultConfig() *Config {
	return &Config{
		LogLevel:        logging.Info,
		LogDisplayLevel: logging.Warn,
		LogFormat:       "json",
		DataDir:         DefaultDataDir,
		RPCAddr:         DefaultRPCAddr,
		Pebble:          pebble.NewDefaultConfig(),
		Rent:            runtime.DefaultRent(),
	}
}

// Load parses [b] on top of the defaults.
func Load(b []byte) (*Config, error) {
	c := NewDefaultConfig()
	if len(b) == 0 {
		return c, nil
	}
	if err := json.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := logging.ToFormat(c.LogFormat, os.Stdout.Fd()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.Rent.Verify(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return c, nil
}

// LoadFile reads a config from [path]. An empty path returns the defaults.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return NewDefaultConfig(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(b)
}

// LogDirectory returns where log files are written.
func (c *Config) LogDirectory() string {
	if c.LogDir != "" {
		return c.LogDir
	}
	return c.DataDir + "/logs"
}

// LoggingConfig converts [c] into the settings for a log factory.
func (c *Config) LoggingConfig() (logging.Config, error) {
	format, err := logging.ToFormat(c.LogFormat, os.Stdout.Fd())
	if err != nil {
		return logging.Config{}, err
	}
	return logging.Config{
		RotatingWriterConfig: logging.RotatingWriterConfig{
			MaxSize:   8, // MB
			MaxFiles:  4,
			MaxAge:    7, // days
			Directory: c.LogDirectory(),
			Compress:  true,
		},
		LogLevel:     c.LogLevel,
		DisplayLevel: c.LogDisplayLevel,
		LogFormat:    format,
	}, nil
}
