// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package utils

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"
)

func TestLoadBytesAnySize(t *testing.T) {
	require := require.New(t)

	filename := filepath.Join(t.TempDir(), "LoadBytes")
	require.NoError(os.WriteFile(filename, []byte{1, 2, 3}, 0o600))

	b, err := LoadBytes(filename, -1)
	require.NoError(err)
	require.Equal([]byte{1, 2, 3}, b)
}

func TestLoadBytesIncorrectLength(t *testing.T) {
	// Creates dummy file with invalid size
	require := require.New(t)
	invalidBytes := []byte{1, 2, 3, 4, 5}

	// Writes
	f, err := os.CreateTemp("", "TestLoadBytes*")
	require.NoError(err)
	fileName := f.Name()
	require.NoError(os.WriteFile(fileName, invalidBytes, 0o600), "Error writing using OS during tests")
	require.NoError(f.Close(), "Error closing file during tests")

	// Validate
	_, err = LoadBytes(fileName, ids.IDLen)
	require.ErrorIs(err, ErrInvalidSize)

	// Remove file
	_ = os.Remove(fileName)
}

func TestLoadKeyInvalidFile(t *testing.T) {
	require := require.New(t)

	filename := "FileNameDoesntExist"
	_, err := LoadBytes(filename, ids.IDLen)
	require.ErrorIs(err, os.ErrNotExist)
}

func TestLoadBytes(t *testing.T) {
	require := require.New(t)

	// Creates dummy file with valid size
	f, err := os.CreateTemp("", "TestLoadKey*")
	require.NoError(err)
	fileName := f.Name()
	id := ids.GenerateTestID()
	_, err = f.Write(id[:])
	require.NoError(err)
	require.NoError(f.Close())

	// Validate
	lid, err := LoadBytes(fileName, ids.IDLen)
	require.NoError(err)
	require.True(bytes.Equal(lid, id[:]))

	// Remove
	_ = os.Remove(fileName)
}

func TestFormatAndParseBalance(t *testing.T) {
	// this test assumes that the number of decimals is 9
	require := require.New(t)

	testCases := []struct {
		input    uint64
		expected string
	}{
		{1000000000, "1.000000000"},
		{123456789, "0.123456789"},
		{1234567890, "1.234567890"},
		{9876543210, "9.876543210"},
		{0, "0.000000000"},
		{1, "0.000000001"},
		{math.MaxUint64, "18446744073.709551615"},
	}

	for _, tc := range testCases {
		formatted := FormatBalance(tc.input)
		require.Equal(tc.expected, formatted)

		parsed, err := ParseBalance(tc.expected)
		require.NoError(err)
		require.Equal(tc.input, parsed)
	}
}

func TestParseBalance(t *testing.T) {
	tests := []struct {
		input    string
		expected uint64
		err      error
	}{
		{input: "1", expected: 1_000_000_000},
		{input: "0", expected: 0},
		{input: "0.5", expected: 500_000_000},
		{input: ".5", expected: 500_000_000},
		{input: "007.000000001", expected: 7_000_000_001},
		{input: "18446744073", expected: 18_446_744_073_000_000_000},
		{input: "18446744073.709551616", err: ErrInvalidBalance},
		{input: "18446744074", err: ErrInvalidBalance},
		{input: "99999999999999999999", err: ErrInvalidBalance},
		{input: "0.0000000001", err: ErrInvalidBalance},
		{input: "-1", err: ErrInvalidBalance},
		{input: "+1", err: ErrInvalidBalance},
		{input: "NaN", err: ErrInvalidBalance},
		{input: "Inf", err: ErrInvalidBalance},
		{input: "1e9", err: ErrInvalidBalance},
		{input: "0x10", err: ErrInvalidBalance},
		{input: "1_000", err: ErrInvalidBalance},
		{input: "1.", err: ErrInvalidBalance},
		{input: "1.2.3", err: ErrInvalidBalance},
		{input: ".", err: ErrInvalidBalance},
		{input: "", err: ErrInvalidBalance},
		{input: " 1", err: ErrInvalidBalance},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			require := require.New(t)

			lamports, err := ParseBalance(tt.input)
			require.ErrorIs(err, tt.err)
			require.Equal(tt.expected, lamports)
		})
	}
}

func TestToID(t *testing.T) {
	require := require.New(t)

	require.Equal(ToID([]byte("message")), ToID([]byte("message")))
	require.NotEqual(ToID([]byte("message")), ToID([]byte("message2")))
}

func TestInitSubDirectory(t *testing.T) {
	require := require.New(t)

	p, err := InitSubDirectory(t.TempDir(), "db")
	require.NoError(err)
	require.DirExists(p)
}
