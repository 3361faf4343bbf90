// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v2"
)

// Plan is a scripted sequence of steps run against a fresh in-memory ledger.
type Plan struct {
	// The name of the plan.
	Name string `json:"name" yaml:"name"`
	// A description of the plan.
	Description string `json:"description" yaml:"description"`
	// Steps to perform.
	Steps []Step `json:"steps" yaml:"steps"`
}

type Step struct {
	// Description of the step.
	Description string `json:"description" yaml:"description"`
	// The endpoint to call. (required)
	Endpoint Endpoint `json:"endpoint" yaml:"endpoint"`
	// The method to call on the endpoint. (required)
	Method string `json:"method" yaml:"method"`
	// The parameters to pass to the method.
	Params []Parameter `json:"params" yaml:"params"`
	// Assertions checked after the step ran.
	Require *Require `json:"require,omitempty" yaml:"require,omitempty"`
}

type Endpoint string

const (
	// Create named keys.
	KeyEndpoint Endpoint = "key"
	// Fund named keys at genesis.
	GenesisEndpoint Endpoint = "genesis"
	// Call the ledger program.
	LedgerEndpoint Endpoint = "ledger"
	// Call the system program.
	SystemEndpoint Endpoint = "system"
	// Read an account.
	AccountEndpoint Endpoint = "account"
)

const (
	MethodCreate     = "create"
	MethodApply      = "apply"
	MethodInitialize = "initialize"
	MethodDeposit    = "deposit"
	MethodWithdraw   = "withdraw"
	MethodState      = "state"
	MethodTransfer   = "transfer"
	MethodLamports   = "lamports"
)

// methods lists the methods of every endpoint with their parameter types.
var methods = map[Endpoint]map[string][]Type{
	KeyEndpoint: {
		MethodCreate: {String},
	},
	GenesisEndpoint: {
		MethodApply: nil,
	},
	LedgerEndpoint: {
		MethodInitialize: {Key, Key},
		MethodDeposit:    {Pubkey, Key, Uint64},
		MethodWithdraw:   {Pubkey, Key},
		MethodState:      {Pubkey},
	},
	SystemEndpoint: {
		MethodTransfer: {Key, Pubkey, Uint64},
	},
	AccountEndpoint: {
		MethodLamports: {Pubkey},
	},
}

type Parameter struct {
	// The optional name of the parameter. This is only used for readability.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	// The type of the parameter. (required)
	Type Type `json:"type" yaml:"type"`
	// The value of the parameter. (required)
	Value interface{} `json:"value" yaml:"value"`
}

type Type string

const (
	String Type = "string"
	// A named key created by an earlier step.
	Key Type = "key"
	// A named key or a base58 public key.
	Pubkey Type = "pubkey"
	Uint64 Type = "u64"
)

type Require struct {
	// Whether the transaction of the step must succeed.
	Success *bool `json:"success,omitempty" yaml:"success,omitempty"`
	// Assertion against the balance reported by the step.
	Result *ResultAssertion `json:"result,omitempty" yaml:"result,omitempty"`
}

type ResultAssertion struct {
	// The operator to use for the assertion.
	Operator string `json:"operator" yaml:"operator"`
	// The value to compare against.
	Value string `json:"value" yaml:"value"`
}

type Operator string

const (
	NumericGt Operator = ">"
	NumericLt Operator = "<"
	NumericGe Operator = ">="
	NumericLe Operator = "<="
	NumericEq Operator = "=="
	NumericNe Operator = "!="
)

// Response is printed for every step.
type Response struct {
	// The index of the step that generated this response.
	ID int `json:"id"`
	// The result of the step.
	Result Result `json:"result"`
	// The error message if available.
	Error string `json:"error,omitempty"`
}

type Result struct {
	// The id of the transaction the step submitted.
	TxID string `json:"txId,omitempty"`
	// Whether the transaction succeeded.
	Success bool `json:"success"`
	// The record balance for ledger steps, lamports otherwise.
	Balance uint64 `json:"balance"`
	// Program logs of the transaction.
	Logs []string `json:"logs,omitempty"`
	// An optional message.
	Msg string `json:"msg,omitempty"`
}

// validateAssertion reports whether [actual] satisfies [assertion].
func validateAssertion(actual uint64, assertion *ResultAssertion) (bool, error) {
	value, err := strconv.ParseUint(assertion.Value, 10, 64)
	if err != nil {
		return false, err
	}

	switch Operator(assertion.Operator) {
	case NumericGt:
		return actual > value, nil
	case NumericLt:
		return actual < value, nil
	case NumericGe:
		return actual >= value, nil
	case NumericLe:
		return actual <= value, nil
	case NumericEq:
		return actual == value, nil
	case NumericNe:
		return actual != value, nil
	default:
		return false, fmt.Errorf("%w: unknown operator %q", ErrInvalidStep, assertion.Operator)
	}
}

func unmarshalPlan(bytes []byte) (*Plan, error) {
	var p Plan
	switch {
	case isJSON(bytes):
		if err := json.Unmarshal(bytes, &p); err != nil {
			return nil, err
		}
	case isYAML(bytes):
		if err := yaml.Unmarshal(bytes, &p); err != nil {
			return nil, err
		}
	default:
		return nil, ErrInvalidConfigFormat
	}
	return &p, nil
}

func isJSON(b []byte) bool {
	var js map[string]interface{}
	return json.Unmarshal(b, &js) == nil
}

func isYAML(b []byte) bool {
	var y map[string]interface{}
	return yaml.Unmarshal(b, &y) == nil
}

// verify checks every step names a known method with well typed parameters.
func (p *Plan) verify() error {
	if len(p.Steps) == 0 {
		return fmt.Errorf("%w: no steps found", ErrInvalidPlan)
	}
	for i, step := range p.Steps {
		endpoint, ok := methods[step.Endpoint]
		if !ok {
			return fmt.Errorf("%w %d %w: %s", ErrInvalidStep, i, ErrInvalidEndpoint, step.Endpoint)
		}
		types, ok := endpoint[step.Method]
		if !ok {
			return fmt.Errorf("%w %d %w: %s", ErrInvalidStep, i, ErrInvalidMethod, step.Method)
		}
		if step.Endpoint == GenesisEndpoint {
			if err := verifyAllocations(step.Params); err != nil {
				return fmt.Errorf("%w %d %w", ErrInvalidStep, i, err)
			}
			continue
		}
		if len(step.Params) < len(types) {
			return fmt.Errorf("%w %d: expected %d params but got %d", ErrInvalidStep, i, len(types), len(step.Params))
		}
		for j, typ := range types {
			if !compatible(typ, step.Params[j].Type) {
				return fmt.Errorf("%w %d %w: param %d is %s, expected %s", ErrInvalidStep, i, ErrInvalidParamType, j, step.Params[j].Type, typ)
			}
		}
	}
	return nil
}

// verifyAllocations checks genesis params are (key, u64) pairs.
func verifyAllocations(params []Parameter) error {
	if len(params) == 0 || len(params)%2 != 0 {
		return fmt.Errorf("%w: genesis takes key and u64 pairs", ErrInvalidParamType)
	}
	for j := 0; j < len(params); j += 2 {
		if params[j].Type != Key || params[j+1].Type != Uint64 {
			return fmt.Errorf("%w: genesis takes key and u64 pairs", ErrInvalidParamType)
		}
	}
	return nil
}

// compatible reports whether a parameter of type [got] can be used where
// [want] is expected. A named key is also a public key.
func compatible(want Type, got Type) bool {
	return want == got || (want == Pubkey && got == Key)
}

func (p *Parameter) asString() (string, error) {
	v, ok := p.Value.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s %v", ErrFailedParamTypeCast, p.Type, p.Value)
	}
	return v, nil
}

// asUint64 converts the value decoded by either the json or the yaml decoder.
func (p *Parameter) asUint64() (uint64, error) {
	switch v := p.Value.(type) {
	case float64:
		if v < 0 || v != float64(uint64(v)) {
			return 0, fmt.Errorf("%w: %s %v", ErrFailedParamTypeCast, p.Type, v)
		}
		return uint64(v), nil
	case int:
		if v < 0 {
			return 0, fmt.Errorf("%w: %s %d", ErrFailedParamTypeCast, p.Type, v)
		}
		return uint64(v), nil
	case int64:
		if v < 0 {
			return 0, fmt.Errorf("%w: %s %d", ErrFailedParamTypeCast, p.Type, v)
		}
		return uint64(v), nil
	case uint64:
		return v, nil
	case string:
		return strconv.ParseUint(v, 10, 64)
	default:
		return 0, fmt.Errorf("%w: %s %v", ErrFailedParamTypeCast, p.Type, p.Value)
	}
}
