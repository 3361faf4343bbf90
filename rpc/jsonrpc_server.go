// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rpc

import (
	"net/http"

	"github.com/ava-labs/avalanchego/ids"
	"go.uber.org/zap"

	"github.com/ava-labs/lamportvm/codec"
	"github.com/ava-labs/lamportvm/ledger"
	"github.com/ava-labs/lamportvm/server"
)

type JSONRPCServer struct {
	vm VM
}

func NewJSONRPCServer(vm VM) *JSONRPCServer {
	return &JSONRPCServer{vm}
}

// NewJSONRPCHandler returns the HTTP handler serving [vm] under [Name].
func NewJSONRPCHandler(vm VM) (http.Handler, error) {
	return server.NewHandler(NewJSONRPCServer(vm), Name)
}

type PingReply struct {
	Success   bool   `json:"success"`
	Processed uint64 `json:"processed"`
}

func (j *JSONRPCServer) Ping(_ *http.Request, _ *struct{}, reply *PingReply) (err error) {
	j.vm.Logger().Info("ping")
	reply.Success = true
	reply.Processed = j.vm.Processed()
	return nil
}

type RentArgs struct {
	Size uint64 `json:"size"`
}

type RentReply struct {
	MinimumBalance uint64 `json:"minimumBalance"`
}

func (j *JSONRPCServer) Rent(_ *http.Request, args *RentArgs, reply *RentReply) error {
	reply.MinimumBalance = j.vm.Rent().MinimumBalance(args.Size)
	return nil
}

type AccountArgs struct {
	Pubkey codec.Pubkey `json:"pubkey"`
}

type AccountReply struct {
	Lamports   uint64               `json:"lamports"`
	Owner      codec.Pubkey         `json:"owner"`
	Executable bool                 `json:"executable"`
	Data       []byte               `json:"data"`
	Record     *ledger.AccountState `json:"record,omitempty"`
}

func (j *JSONRPCServer) Account(req *http.Request, args *AccountArgs, reply *AccountReply) error {
	ctx := req.Context()
	acct, err := j.vm.GetAccount(ctx, args.Pubkey)
	if err != nil {
		return err
	}
	reply.Lamports = acct.Lamports
	reply.Owner = acct.Owner
	reply.Executable = acct.Executable
	reply.Data = acct.Data
	if acct.Owner != ledger.ID {
		return nil
	}
	record, err := ledger.UnmarshalAccountState(acct.Data)
	if err != nil {
		j.vm.Logger().Debug("unreadable ledger record",
			zap.Stringer("pubkey", args.Pubkey),
			zap.Error(err),
		)
		return nil
	}
	reply.Record = record
	return nil
}

type SubmitTxArgs struct {
	Tx []byte `json:"tx"`
}

type SubmitTxReply struct {
	TxID    ids.ID   `json:"txId"`
	Success bool     `json:"success"`
	Error   string   `json:"error,omitempty"`
	Logs    []string `json:"logs"`
}

func (j *JSONRPCServer) SubmitTx(req *http.Request, args *SubmitTxArgs, reply *SubmitTxReply) error {
	result, err := j.vm.SubmitBytes(req.Context(), args.Tx)
	if err != nil {
		return err
	}
	reply.TxID = result.TxID
	reply.Success = result.Success
	reply.Logs = result.Logs
	if result.Err != nil {
		reply.Error = result.Err.Error()
	}
	return nil
}

type ResultArgs struct {
	TxID ids.ID `json:"txId"`
}

type ResultReply struct {
	Success bool     `json:"success"`
	Error   string   `json:"error,omitempty"`
	Logs    []string `json:"logs"`
}

func (j *JSONRPCServer) Result(req *http.Request, args *ResultArgs, reply *ResultReply) error {
	result, err := j.vm.GetResult(req.Context(), args.TxID)
	if err != nil {
		return err
	}
	reply.Success = result.Success
	reply.Error = result.Error
	reply.Logs = result.Logs
	return nil
}
