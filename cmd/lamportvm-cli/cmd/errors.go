// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import "errors"

var (
	ErrDuplicateKeyName    = errors.New("duplicate key name")
	ErrNamedKeyNotFound    = errors.New("named key not found")
	ErrMissingKeySource    = errors.New("provide exactly one of a hex key or --file")
	ErrInvalidPlan         = errors.New("invalid plan")
	ErrInvalidStep         = errors.New("invalid step")
	ErrInvalidEndpoint     = errors.New("invalid endpoint")
	ErrInvalidMethod       = errors.New("invalid method")
	ErrInvalidParamType    = errors.New("invalid param type")
	ErrFailedParamTypeCast = errors.New("failed to cast param")
	ErrInvalidConfigFormat = errors.New("invalid config format")
	ErrAssertionFailed     = errors.New("assertion failed")
)
