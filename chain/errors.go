package chain

import (
	"errors"
	"fmt"
)

// error kinds, each failure of a counter action wraps exactly one of them
var (
	ErrInvalidAccountState = errors.New("invalid account state")
	ErrSimulation          = errors.New("simulation error")
	ErrUserRejected        = errors.New("user rejected signing")
	ErrSignerUnavailable   = errors.New("signer unavailable")
	ErrSubmissionRejected  = errors.New("submission rejected")
	ErrEmptyResultMetadata = errors.New("empty result metadata")
	ErrRemoteExecution     = errors.New("remote execution failed")
	ErrTimedOut            = errors.New("timed out waiting for confirmation")
	ErrUnresolvedResult    = errors.New("unresolved result")
	ErrTypeMismatch        = errors.New("type mismatch")
	ErrOperationInProgress = errors.New("operation in progress")
	ErrAbandoned           = errors.New("confirmation abandoned")
	ErrNotFound            = errors.New("not found")
	ErrRPCQueryError       = errors.New("rpc query error")
	ErrNoAddress           = errors.New("no signer address")
	ErrWrongResponse       = errors.New("wrong rpc response")
	ErrNetworkMismatch     = errors.New("network passphrase mismatch")
	ErrNoContractID        = errors.New("contract id not configured")
)

var kinds = []error{
	ErrInvalidAccountState,
	ErrSimulation,
	ErrUserRejected,
	ErrSignerUnavailable,
	ErrSubmissionRejected,
	ErrEmptyResultMetadata,
	ErrRemoteExecution,
	ErrTimedOut,
	ErrUnresolvedResult,
	ErrTypeMismatch,
	ErrOperationInProgress,
	ErrAbandoned,
}

// TxError failure of one lifecycle step
type TxError struct {
	Kind   error
	Op     string
	Hash   string
	Detail string // raw node payload, eg. result xdr or simulation error
	Err    error
}

// NewTxError new tx error of kind
func NewTxError(kind error, op, hash, detail string, err error) *TxError {
	return &TxError{Kind: kind, Op: op, Hash: hash, Detail: detail, Err: err}
}

func (e *TxError) Error() string {
	msg := e.Kind.Error()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Hash != "" {
		msg += fmt.Sprintf(" (tx %v)", e.Hash)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the kind, so errors.Is matches on the kind
func (e *TxError) Unwrap() error {
	return e.Kind
}

// Cause underlying error
func (e *TxError) Cause() error {
	return e.Err
}

// KindOf returns the error kind or nil if err is not a known kind
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// KindName short name of error kind, used in api responses
func KindName(err error) string {
	switch KindOf(err) {
	case ErrInvalidAccountState:
		return "InvalidAccountState"
	case ErrSimulation:
		return "SimulationError"
	case ErrUserRejected:
		return "UserRejected"
	case ErrSignerUnavailable:
		return "SignerUnavailable"
	case ErrSubmissionRejected:
		return "SubmissionRejected"
	case ErrEmptyResultMetadata:
		return "EmptyResultMetadata"
	case ErrRemoteExecution:
		return "RemoteExecutionFailed"
	case ErrTimedOut:
		return "TimedOut"
	case ErrUnresolvedResult:
		return "UnresolvedResult"
	case ErrTypeMismatch:
		return "TypeMismatch"
	case ErrOperationInProgress:
		return "OperationInProgress"
	case ErrAbandoned:
		return "Abandoned"
	default:
		if err == nil {
			return ""
		}
		return "Internal"
	}
}

// IsRPCQueryOrNotFoundError is rpc or not found error
func IsRPCQueryOrNotFoundError(err error) bool {
	return errors.Is(err, ErrRPCQueryError) || errors.Is(err, ErrNotFound)
}
