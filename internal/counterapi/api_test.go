package counterapi

import (
	"context"
	"errors"
	"testing"
	"time"

	rpcjson "github.com/gorilla/rpc/v2/json2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anyswap/soroban-counter/chain"
	"github.com/anyswap/soroban-counter/chain/soroban"
	"github.com/anyswap/soroban-counter/chain/soroban/sorobantest"
	"github.com/anyswap/soroban-counter/types"
	"github.com/anyswap/soroban-counter/worker"
)

func TestToRPCError(t *testing.T) {
	assert.Nil(t, ToRPCError(nil))

	err := ToRPCError(chain.NewTxError(chain.ErrRemoteExecution, "increment", "abcd", "AAAA", nil))
	rpcErr, ok := err.(*rpcjson.Error)
	require.True(t, ok)
	assert.Equal(t, rpcjson.ErrorCode(-32007), rpcErr.Code)
	assert.Equal(t, map[string]string{"kind": "RemoteExecutionFailed", "hash": "abcd", "detail": "AAAA"}, rpcErr.Data)

	rpcErr, ok = ToRPCError(types.ErrUnknownOperation).(*rpcjson.Error)
	require.True(t, ok)
	assert.Equal(t, rpcjson.E_BAD_PARAMS, rpcErr.Code)

	rpcErr, ok = ToRPCError(errors.New("boom")).(*rpcjson.Error)
	require.True(t, ok)
	assert.Equal(t, rpcjson.ErrorCode(-32000), rpcErr.Code)

	// already converted errors are kept
	assert.Equal(t, errRecordNotFound, ToRPCError(errRecordNotFound))
}

func TestNotInitialized(t *testing.T) {
	SetCounter(nil)
	_, err := GetCount()
	assert.Equal(t, errNotInitialized, err)
	_, err = Invoke(context.Background(), "increment")
	assert.Equal(t, errNotInitialized, err)
}

func TestInvokeAndHistory(t *testing.T) {
	node := sorobantest.NewFakeNode()
	signer := sorobantest.NewFakeSigner()
	node.AddAccount(signer.Key.Address(), 1)
	client := soroban.NewClient(node, soroban.Config{
		NetworkPassphrase: node.Passphrase,
		ContractID:        node.ContractID,
	})
	counter := worker.NewCounter(client, signer, worker.Settings{
		Poll: soroban.PollOptions{Interval: time.Millisecond, MaxAttempts: 5},
	}, nil)
	SetCounter(counter)
	defer SetCounter(nil)

	connected, err := Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.KnownValue(0), connected.Value)

	res, err := Invoke(context.Background(), " Increment ")
	require.NoError(t, err)
	assert.Equal(t, types.KnownValue(1), res.Value)

	res, err = Invoke(context.Background(), "refresh")
	require.NoError(t, err)
	assert.Equal(t, types.KnownValue(1), res.Value)
	assert.Equal(t, soroban.CarrierStorage, res.Carrier)

	_, err = Invoke(context.Background(), "get_count")
	require.Error(t, err)

	info, err := GetCount()
	require.NoError(t, err)
	assert.Equal(t, signer.Key.Address(), info.Address)
	assert.False(t, info.Busy)

	records, err := GetHistory(0)
	require.NoError(t, err)
	assert.Len(t, records, 3)

	_, err = GetHistoryRecord("missing")
	assert.Equal(t, errRecordNotFound, err)
}
