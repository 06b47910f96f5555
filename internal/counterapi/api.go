package counterapi

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	rpcjson "github.com/gorilla/rpc/v2/json2"

	"github.com/anyswap/soroban-counter/chain"
	"github.com/anyswap/soroban-counter/common"
	"github.com/anyswap/soroban-counter/log"
	"github.com/anyswap/soroban-counter/params"
	"github.com/anyswap/soroban-counter/types"
	"github.com/anyswap/soroban-counter/worker"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100

	actionTimeout = 10 * time.Minute
)

var (
	errNotInitialized = newRPCError(-32099, "counter not initialized")
	errRecordNotFound = newRPCError(-32098, "history record not found")

	counterLock sync.RWMutex
	counter     *worker.Counter
)

// error codes of transaction error kinds
var errorCodes = map[error]rpcjson.ErrorCode{
	chain.ErrInvalidAccountState: -32001,
	chain.ErrSimulation:          -32002,
	chain.ErrUserRejected:        -32003,
	chain.ErrSignerUnavailable:   -32004,
	chain.ErrSubmissionRejected:  -32005,
	chain.ErrEmptyResultMetadata: -32006,
	chain.ErrRemoteExecution:     -32007,
	chain.ErrTimedOut:            -32008,
	chain.ErrUnresolvedResult:    -32009,
	chain.ErrTypeMismatch:        -32010,
	chain.ErrOperationInProgress: -32011,
	chain.ErrAbandoned:           -32012,
}

func newRPCError(ec rpcjson.ErrorCode, message string) error {
	return &rpcjson.Error{
		Code:    ec,
		Message: message,
	}
}

func newRPCInternalError(err error) error {
	return newRPCError(-32000, "rpcError: "+err.Error())
}

// ToRPCError convert action error to rpc error, the error kind is carried
// in the error data
func ToRPCError(err error) error {
	if err == nil {
		return nil
	}
	var rpcErr *rpcjson.Error
	if errors.As(err, &rpcErr) {
		return rpcErr
	}
	if errors.Is(err, types.ErrUnknownOperation) {
		return newRPCError(rpcjson.E_BAD_PARAMS, err.Error())
	}
	kind := chain.KindOf(err)
	code, ok := errorCodes[kind]
	if !ok {
		return newRPCInternalError(err)
	}
	data := map[string]string{"kind": chain.KindName(err)}
	var txErr *chain.TxError
	if errors.As(err, &txErr) {
		if txErr.Hash != "" {
			data["hash"] = txErr.Hash
		}
		if txErr.Detail != "" {
			data["detail"] = txErr.Detail
		}
	}
	return &rpcjson.Error{
		Code:    code,
		Message: err.Error(),
		Data:    data,
	}
}

// SetCounter set the counter served by the api
func SetCounter(c *worker.Counter) {
	counterLock.Lock()
	defer counterLock.Unlock()
	counter = c
}

func getCounter() (*worker.Counter, error) {
	counterLock.RLock()
	defer counterLock.RUnlock()
	if counter == nil {
		return nil, errNotInitialized
	}
	return counter, nil
}

// GetServerInfo api
func GetServerInfo() (*ServerInfo, error) {
	log.Debug("[api] receive GetServerInfo")
	config := params.GetConfig()
	if config == nil {
		return nil, nil
	}
	info := &ServerInfo{
		Identifier: config.Identifier,
		Network:    config.Network.Passphrase,
		ContractID: config.Network.ContractID,
		RPCAddress: config.Network.RPCAddress,
		SignerMode: config.Signer.Mode,
		Version:    params.BuildVersion(),
	}
	if c, err := getCounter(); err == nil {
		info.Address = c.Address()
	}
	return info, nil
}

// GetCount api, returns the last known value
func GetCount() (*CounterInfo, error) {
	c, err := getCounter()
	if err != nil {
		return nil, err
	}
	return &CounterInfo{
		Value:   c.CurrentValue(),
		Busy:    c.IsBusy(),
		Address: c.Address(),
	}, nil
}

// Invoke api, op is increment, decrement, reset or refresh.
// The action runs detached from ctx; ctx only bounds the wait for it.
func Invoke(ctx context.Context, opName string) (*ActionResult, error) {
	log.Debug("[api] receive Invoke", "op", opName)
	c, err := getCounter()
	if err != nil {
		return nil, err
	}
	actionCtx, cancel := context.WithTimeout(context.Background(), actionTimeout)

	var comp *worker.Completion
	if strings.EqualFold(strings.TrimSpace(opName), worker.OpRefresh) {
		comp = c.Refresh(actionCtx)
	} else {
		op, errp := types.ParseOperation(opName)
		if errp != nil {
			cancel()
			return nil, ToRPCError(errp)
		}
		comp = c.Invoke(actionCtx, op)
	}
	go func() {
		<-comp.Done()
		cancel()
	}()

	res, err := comp.Wait(ctx)
	if err != nil {
		return res, ToRPCError(err)
	}
	return res, nil
}

// Connect api
func Connect(ctx context.Context) (*ConnectResult, error) {
	log.Debug("[api] receive Connect")
	c, err := getCounter()
	if err != nil {
		return nil, err
	}
	address, err := c.Connect(ctx)
	if err != nil {
		return nil, ToRPCError(err)
	}
	return &ConnectResult{Address: address, Value: c.CurrentValue()}, nil
}

// Allow api
func Allow(ctx context.Context) (*AllowResult, error) {
	log.Debug("[api] receive Allow")
	c, err := getCounter()
	if err != nil {
		return nil, err
	}
	allowed, err := c.Allow(ctx)
	if err != nil {
		return nil, ToRPCError(err)
	}
	return &AllowResult{Allowed: allowed}, nil
}

// GetHistory api, newest first
func GetHistory(limit int) ([]*Record, error) {
	c, err := getCounter()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	} else if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return c.History().List(limit), nil
}

// GetHistoryRecord api
func GetHistoryRecord(hash string) (*Record, error) {
	c, err := getCounter()
	if err != nil {
		return nil, err
	}
	rec := c.History().Get(common.ToLowerTrim(hash))
	if rec == nil {
		return nil, errRecordNotFound
	}
	return rec, nil
}

// Subscribe api, subscribe counter events
func Subscribe(buffer int) (<-chan *Event, func(), error) {
	c, err := getCounter()
	if err != nil {
		return nil, nil, err
	}
	ch, unsubscribe := c.Subscribe(buffer)
	return ch, unsubscribe, nil
}
