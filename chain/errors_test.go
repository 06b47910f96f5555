package chain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTxErrorKind(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewTxError(ErrRemoteExecution, "increment", "abcd", "AAAAAAAAAGT////7AAAAAA==", cause)

	assert.True(t, errors.Is(err, ErrRemoteExecution))
	assert.False(t, errors.Is(err, ErrTimedOut))
	assert.Equal(t, ErrRemoteExecution, KindOf(err))
	assert.Equal(t, "RemoteExecutionFailed", KindName(err))
	assert.Equal(t, cause, err.Cause())
	assert.Contains(t, err.Error(), "increment: remote execution failed (tx abcd)")
	assert.Contains(t, err.Error(), "AAAAAAAAAGT////7AAAAAA==")

	wrapped := fmt.Errorf("refresh: %w", NewTxError(ErrTimedOut, "reset", "", "", nil))
	assert.Equal(t, ErrTimedOut, KindOf(wrapped))
	assert.Equal(t, "TimedOut", KindName(wrapped))

	var txErr *TxError
	require.True(t, errors.As(wrapped, &txErr))
	assert.Equal(t, "reset", txErr.Op)
}

func TestKindName(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{errors.New("other"), "Internal"},
		{ErrInvalidAccountState, "InvalidAccountState"},
		{ErrSimulation, "SimulationError"},
		{ErrUserRejected, "UserRejected"},
		{ErrSignerUnavailable, "SignerUnavailable"},
		{ErrSubmissionRejected, "SubmissionRejected"},
		{ErrEmptyResultMetadata, "EmptyResultMetadata"},
		{ErrUnresolvedResult, "UnresolvedResult"},
		{ErrTypeMismatch, "TypeMismatch"},
		{ErrOperationInProgress, "OperationInProgress"},
		{ErrAbandoned, "Abandoned"},
	}
	for i, test := range tests {
		assert.Equal(t, test.want, KindName(test.err), "case %v", i)
	}
}

func TestWrapRPCQueryError(t *testing.T) {
	err := WrapRPCQueryError(nil, "getTransaction", "abcd")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, IsRPCQueryOrNotFoundError(err))

	err = WrapRPCQueryError(errors.New("timeout"), "getTransaction", "abcd")
	assert.True(t, errors.Is(err, ErrRPCQueryError))
	assert.Contains(t, err.Error(), "getTransaction")
}

func TestEventInfoValueForms(t *testing.T) {
	var ev EventInfo
	require.NoError(t, json.Unmarshal([]byte(`{"ledger":7,"topic":["AAAADwAAAAVjb3VudAAAAA=="],"value":"AAAAAwAAAAU="}`), &ev))
	assert.Equal(t, uint32(7), ev.Ledger)
	assert.Equal(t, "AAAAAwAAAAU=", ev.Value)
	assert.Len(t, ev.Topic, 1)

	require.NoError(t, json.Unmarshal([]byte(`{"ledger":8,"value":{"xdr":"AAAAAwAAAAY="}}`), &ev))
	assert.Equal(t, uint32(8), ev.Ledger)
	assert.Equal(t, "AAAAAwAAAAY=", ev.Value)
}
