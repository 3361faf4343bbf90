// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ava-labs/lamportvm/codec"
	"github.com/ava-labs/lamportvm/crypto/ed25519"
	"github.com/ava-labs/lamportvm/genesis"
	"github.com/ava-labs/lamportvm/ledger"
	"github.com/ava-labs/lamportvm/runtime"
	"github.com/ava-labs/lamportvm/state"
	"github.com/ava-labs/lamportvm/system"
	"github.com/ava-labs/lamportvm/utils"
	"github.com/ava-labs/lamportvm/vm"
)

func newRunCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "run [path]",
		Short: "Run a plan against a fresh in-memory ledger",
		Long:  "Run a plan against a fresh in-memory ledger. A path of - reads the plan from stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				planBytes []byte
				err       error
			)
			if args[0] == "-" {
				planBytes, err = io.ReadAll(cmd.InOrStdin())
			} else {
				planBytes, err = utils.LoadBytes(args[0], -1)
			}
			if err != nil {
				return err
			}
			plan, err := unmarshalPlan(planBytes)
			if err != nil {
				return err
			}
			r, err := newRunner(c.log, c.cfg.Rent, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return r.run(cmd.Context(), plan)
		},
	}
}

type runner struct {
	log  logging.Logger
	rent runtime.Rent
	vm   *vm.VM
	keys *state.SimpleMutable
	out  io.Writer

	nonce uint64
}

func newRunner(log logging.Logger, rent runtime.Rent, out io.Writer) (*runner, error) {
	v, err := vm.New(log, state.NewMemoryDatabase(), rent, prometheus.NewRegistry())
	if err != nil {
		return nil, err
	}
	return &runner{
		log:  log,
		rent: rent,
		vm:   v,
		keys: state.NewSimpleMutable(state.NewMemoryDatabase()),
		out:  out,
	}, nil
}

// run executes every step of [plan] and prints one response per step. It
// stops at the first step that errors or fails its requirements.
func (r *runner) run(ctx context.Context, plan *Plan) error {
	if err := plan.verify(); err != nil {
		return err
	}
	r.log.Info("running plan",
		zap.String("name", plan.Name),
		zap.Int("steps", len(plan.Steps)),
	)
	for i, step := range plan.Steps {
		r.log.Debug("running step",
			zap.Int("step", i),
			zap.String("description", step.Description),
			zap.String("endpoint", string(step.Endpoint)),
			zap.String("method", step.Method),
		)
		resp := &Response{ID: i}
		err := r.runStep(ctx, &step, &resp.Result)
		if err != nil {
			resp.Error = err.Error()
		}
		if err := r.print(resp); err != nil {
			return err
		}
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		if err := checkRequire(step.Require, &resp.Result); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	return nil
}

func checkRequire(req *Require, result *Result) error {
	if req == nil {
		return nil
	}
	if req.Success != nil && *req.Success != result.Success {
		return fmt.Errorf("%w: success is %t", ErrAssertionFailed, result.Success)
	}
	if req.Result == nil {
		return nil
	}
	ok, err := validateAssertion(result.Balance, req.Result)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: balance %d is not %s %s", ErrAssertionFailed, result.Balance, req.Result.Operator, req.Result.Value)
	}
	return nil
}

func (r *runner) print(resp *Response) error {
	b, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(r.out, string(b))
	return err
}

func (r *runner) runStep(ctx context.Context, step *Step, result *Result) error {
	params := step.Params
	switch step.Endpoint {
	case KeyEndpoint:
		name, err := params[0].asString()
		if err != nil {
			return err
		}
		priv, err := keyCreateFunc(ctx, r.keys, name)
		if err != nil {
			return err
		}
		result.Success = true
		result.Msg = fmt.Sprintf("created named key %s with pubkey %s", name, priv.Pubkey())
		return nil
	case GenesisEndpoint:
		return r.applyGenesis(ctx, params, result)
	case AccountEndpoint:
		pk, err := r.pubkey(ctx, &params[0])
		if err != nil {
			return err
		}
		acct, err := r.vm.GetAccount(ctx, pk)
		if err != nil {
			return err
		}
		result.Success = true
		result.Balance = acct.Lamports
		return nil
	case SystemEndpoint:
		from, err := r.key(ctx, &params[0])
		if err != nil {
			return err
		}
		to, err := r.pubkey(ctx, &params[1])
		if err != nil {
			return err
		}
		lamports, err := params[2].asUint64()
		if err != nil {
			return err
		}
		if err := r.submit(ctx, system.NewTransferInstruction(from.Pubkey(), to, lamports), result, from); err != nil {
			return err
		}
		acct, err := r.vm.GetAccount(ctx, to)
		if err != nil {
			return err
		}
		result.Balance = acct.Lamports
		return nil
	case LedgerEndpoint:
		return r.runLedger(ctx, step.Method, params, result)
	default:
		return fmt.Errorf("%w: %s", ErrInvalidEndpoint, step.Endpoint)
	}
}

func (r *runner) runLedger(ctx context.Context, method string, params []Parameter, result *Result) error {
	target, err := r.pubkey(ctx, &params[0])
	if err != nil {
		return err
	}
	if method != MethodState {
		owner, err := r.key(ctx, &params[1])
		if err != nil {
			return err
		}
		var (
			ix      runtime.Instruction
			signers = []ed25519.PrivateKey{owner}
		)
		switch method {
		case MethodInitialize:
			targetKey, err := r.key(ctx, &params[0])
			if err != nil {
				return err
			}
			ix, err = ledger.NewInitializeInstruction(target, owner.Pubkey(), true, 0)
			if err != nil {
				return err
			}
			signers = append(signers, targetKey)
		case MethodDeposit:
			amount, err := params[2].asUint64()
			if err != nil {
				return err
			}
			ix, err = ledger.NewDepositInstruction(target, owner.Pubkey(), amount, 0)
			if err != nil {
				return err
			}
		case MethodWithdraw:
			ix, err = ledger.NewWithdrawInstruction(target, owner.Pubkey(), 0)
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: %s", ErrInvalidMethod, method)
		}
		if err := r.submit(ctx, ix, result, signers...); err != nil {
			return err
		}
	}

	s, err := r.vm.GetLedgerState(ctx, target)
	if err != nil {
		if method == MethodState || result.Success {
			return err
		}
		// The failed transaction left no readable record behind.
		return nil
	}
	if method == MethodState {
		result.Success = true
	}
	result.Balance = s.Balance
	return nil
}

func (r *runner) submit(ctx context.Context, ix runtime.Instruction, result *Result, signers ...ed25519.PrivateKey) error {
	r.nonce++
	tx := runtime.NewTransaction(r.nonce, ix)
	for _, signer := range signers {
		if err := tx.Sign(signer); err != nil {
			return err
		}
	}
	res, err := r.vm.Submit(ctx, tx)
	if err != nil {
		return err
	}
	result.TxID = res.TxID.String()
	result.Success = res.Success
	result.Logs = res.Logs
	if res.Err != nil {
		result.Msg = res.Err.Error()
	}
	return nil
}

func (r *runner) applyGenesis(ctx context.Context, params []Parameter, result *Result) error {
	allocs := make([]*genesis.CustomAllocation, 0, len(params)/2)
	for i := 0; i < len(params); i += 2 {
		priv, err := r.key(ctx, &params[i])
		if err != nil {
			return err
		}
		lamports, err := params[i+1].asUint64()
		if err != nil {
			return err
		}
		allocs = append(allocs, &genesis.CustomAllocation{Pubkey: priv.Pubkey(), Lamports: lamports})
	}
	g := genesis.NewDefaultGenesis(allocs)
	g.Rent = r.rent
	supply, err := r.vm.ApplyGenesis(ctx, g)
	if err != nil {
		return err
	}
	result.Success = true
	result.Balance = supply
	return nil
}

func (r *runner) key(ctx context.Context, p *Parameter) (ed25519.PrivateKey, error) {
	name, err := p.asString()
	if err != nil {
		return ed25519.EmptyPrivateKey, err
	}
	return getKey(ctx, r.keys, name)
}

func (r *runner) pubkey(ctx context.Context, p *Parameter) (codec.Pubkey, error) {
	s, err := p.asString()
	if err != nil {
		return codec.EmptyPubkey, err
	}
	return resolvePubkey(ctx, r.keys, s)
}
