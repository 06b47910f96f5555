package rpcapi

import (
	"net/http"

	"github.com/anyswap/soroban-counter/internal/counterapi"
	"github.com/anyswap/soroban-counter/params"
	"github.com/anyswap/soroban-counter/types"
	"github.com/anyswap/soroban-counter/worker"
)

// RPCAPI rpc api handler
type RPCAPI struct{}

// RPCNullArgs null args
type RPCNullArgs struct{}

// RPCHistoryArgs history args
type RPCHistoryArgs struct {
	Limit int `json:"limit"`
}

// GetVersionInfo api
func (s *RPCAPI) GetVersionInfo(r *http.Request, args *RPCNullArgs, result *string) error {
	*result = params.BuildVersion()
	return nil
}

// GetServerInfo api
func (s *RPCAPI) GetServerInfo(r *http.Request, args *RPCNullArgs, result *counterapi.ServerInfo) error {
	res, err := counterapi.GetServerInfo()
	if err == nil && res != nil {
		*result = *res
	}
	return err
}

// GetCount api
func (s *RPCAPI) GetCount(r *http.Request, args *RPCNullArgs, result *counterapi.CounterInfo) error {
	res, err := counterapi.GetCount()
	if err == nil && res != nil {
		*result = *res
	}
	return err
}

func (s *RPCAPI) invoke(r *http.Request, op string, result *counterapi.ActionResult) error {
	res, err := counterapi.Invoke(r.Context(), op)
	if err == nil && res != nil {
		*result = *res
	}
	return err
}

// Increment api
func (s *RPCAPI) Increment(r *http.Request, args *RPCNullArgs, result *counterapi.ActionResult) error {
	return s.invoke(r, types.OpIncrement.String(), result)
}

// Decrement api
func (s *RPCAPI) Decrement(r *http.Request, args *RPCNullArgs, result *counterapi.ActionResult) error {
	return s.invoke(r, types.OpDecrement.String(), result)
}

// Reset api
func (s *RPCAPI) Reset(r *http.Request, args *RPCNullArgs, result *counterapi.ActionResult) error {
	return s.invoke(r, types.OpReset.String(), result)
}

// Refresh api
func (s *RPCAPI) Refresh(r *http.Request, args *RPCNullArgs, result *counterapi.ActionResult) error {
	return s.invoke(r, worker.OpRefresh, result)
}

// Connect api
func (s *RPCAPI) Connect(r *http.Request, args *RPCNullArgs, result *counterapi.ConnectResult) error {
	res, err := counterapi.Connect(r.Context())
	if err == nil && res != nil {
		*result = *res
	}
	return err
}

// Allow api
func (s *RPCAPI) Allow(r *http.Request, args *RPCNullArgs, result *counterapi.AllowResult) error {
	res, err := counterapi.Allow(r.Context())
	if err == nil && res != nil {
		*result = *res
	}
	return err
}

// GetHistory api
func (s *RPCAPI) GetHistory(r *http.Request, args *RPCHistoryArgs, result *[]*counterapi.Record) error {
	res, err := counterapi.GetHistory(args.Limit)
	if err == nil {
		*result = res
	}
	return err
}

// GetHistoryRecord api
func (s *RPCAPI) GetHistoryRecord(r *http.Request, hash *string, result *counterapi.Record) error {
	res, err := counterapi.GetHistoryRecord(*hash)
	if err == nil && res != nil {
		*result = *res
	}
	return err
}
