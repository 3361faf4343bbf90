// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import "errors"

var (
	ErrCorruptAccount = errors.New("corrupt account")
	ErrCorruptResult  = errors.New("corrupt result")
)
