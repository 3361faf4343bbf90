// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package utils

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"
	"github.com/ava-labs/avalanchego/utils/perms"

	smath "github.com/ava-labs/avalanchego/utils/math"
)

// NativeDecimals is the number of lamports in one whole token, as a power
// of ten.
const NativeDecimals = 9

const lamportsPerToken uint64 = 1_000_000_000

var (
	ErrInvalidSize    = errors.New("invalid size")
	ErrInvalidBalance = errors.New("invalid balance")
)

func ToID(bytes []byte) ids.ID {
	return ids.ID(hashing.ComputeHash256Array(bytes))
}

func InitSubDirectory(rootPath string, name string) (string, error) {
	p := path.Join(rootPath, name)
	return p, os.MkdirAll(p, perms.ReadWriteExecute)
}

// LoadBytes reads [filename] and errors if it does not hold exactly
// [expectedSize] bytes. A negative [expectedSize] disables the check.
func LoadBytes(filename string, expectedSize int) ([]byte, error) {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	if expectedSize >= 0 && len(bytes) != expectedSize {
		return nil, ErrInvalidSize
	}
	return bytes, nil
}

func FormatBalance(bal uint64) string {
	return fmt.Sprintf("%d.%0*d", bal/lamportsPerToken, NativeDecimals, bal%lamportsPerToken)
}

// ParseBalance converts a decimal token amount such as "1.5" into lamports.
// At most [NativeDecimals] fractional digits are accepted.
func ParseBalance(bal string) (uint64, error) {
	whole, frac, hasPoint := strings.Cut(bal, ".")
	if (whole == "" && frac == "") || (hasPoint && frac == "") {
		return 0, fmt.Errorf("%w: %q", ErrInvalidBalance, bal)
	}
	if len(frac) > NativeDecimals {
		return 0, fmt.Errorf("%w: %q has more than %d decimals", ErrInvalidBalance, bal, NativeDecimals)
	}
	wholeLamports, err := parseDigits(whole)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", err, bal)
	}
	fracLamports, err := parseDigits(frac + strings.Repeat("0", NativeDecimals-len(frac)))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", err, bal)
	}
	wholeLamports, err = smath.Mul(wholeLamports, lamportsPerToken)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidBalance, bal, err)
	}
	lamports, err := smath.Add(wholeLamports, fracLamports)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidBalance, bal, err)
	}
	return lamports, nil
}

// parseDigits parses an unsigned run of ASCII digits. An empty string is zero.
func parseDigits(s string) (uint64, error) {
	if s == "" {
		return 0, nil
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, ErrInvalidBalance
		}
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidBalance, err)
	}
	return v, nil
}
