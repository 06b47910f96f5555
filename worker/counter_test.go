package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anyswap/soroban-counter/chain"
	"github.com/anyswap/soroban-counter/chain/soroban"
	"github.com/anyswap/soroban-counter/chain/soroban/sorobantest"
	"github.com/anyswap/soroban-counter/types"
)

func newTestCounter(t *testing.T) (*Counter, *sorobantest.FakeNode, *sorobantest.FakeSigner) {
	node := sorobantest.NewFakeNode()
	signer := sorobantest.NewFakeSigner()
	node.AddAccount(signer.Key.Address(), 100)
	client := soroban.NewClient(node, soroban.Config{
		NetworkPassphrase: node.Passphrase,
		ContractID:        node.ContractID,
	})
	counter := NewCounter(client, signer, Settings{
		Poll: soroban.PollOptions{Interval: time.Millisecond, MaxAttempts: 10},
	}, nil)
	counter.SetAddress(signer.Key.Address())
	return counter, node, signer
}

func drain(ch <-chan *Event) (events []*Event) {
	for {
		select {
		case ev := <-ch:
			events = append(events, ev)
		default:
			return events
		}
	}
}

func countBusy(events []*Event, busy bool) (count int) {
	for _, ev := range events {
		if ev.Type == EventBusy && ev.Busy == busy {
			count++
		}
	}
	return count
}

func TestIncrementNotFoundThenSuccess(t *testing.T) {
	counter, node, _ := newTestCounter(t)
	node.SetCounter(5)
	node.TxStatuses = []string{"NOT_FOUND", "NOT_FOUND", "SUCCESS"}
	events, unsubscribe := counter.Subscribe(32)
	defer unsubscribe()

	outcome, err := counter.Increment(context.Background()).Result()
	require.NoError(t, err)
	assert.Equal(t, types.KnownValue(6), outcome.Value)
	assert.Equal(t, types.TxStateConfirmed, outcome.State)
	assert.Equal(t, soroban.CarrierGetCount, outcome.Carrier)
	assert.NotEmpty(t, outcome.Hash)
	assert.Equal(t, 3, node.Calls("getTransaction"))

	assert.Equal(t, types.KnownValue(6), counter.CurrentValue())
	assert.False(t, counter.IsBusy())

	got := drain(events)
	assert.Equal(t, 1, countBusy(got, true))
	assert.Equal(t, 1, countBusy(got, false))
	last := got[len(got)-1]
	assert.Equal(t, EventBusy, last.Type)
	assert.False(t, last.Busy)
}

func TestEmptyMetadataKeepsValue(t *testing.T) {
	counter, node, _ := newTestCounter(t)
	node.SetCounter(5)
	_, err := counter.Refresh(context.Background()).Result()
	require.NoError(t, err)

	node.EmptyMeta = true
	outcome, err := counter.Increment(context.Background()).Result()
	assert.ErrorIs(t, err, chain.ErrEmptyResultMetadata)
	assert.Equal(t, types.TxStateRejected, outcome.State)
	// no value is fabricated
	assert.Equal(t, types.KnownValue(5), counter.CurrentValue())
	assert.Equal(t, types.KnownValue(5), outcome.Value)
}

func TestEmptyMetadataFromUnknown(t *testing.T) {
	counter, node, _ := newTestCounter(t)
	node.EmptyMeta = true
	_, err := counter.Increment(context.Background()).Result()
	assert.ErrorIs(t, err, chain.ErrEmptyResultMetadata)
	assert.False(t, counter.CurrentValue().IsKnown())
}

func TestUserRejectedNeverSubmits(t *testing.T) {
	counter, node, signer := newTestCounter(t)
	node.SetCounter(2)
	signer.Reject = true

	outcome, err := counter.Increment(context.Background()).Result()
	assert.ErrorIs(t, err, chain.ErrUserRejected)
	assert.Equal(t, "UserRejected", chain.KindName(err))
	assert.Equal(t, types.TxStateRejected, outcome.State)
	assert.Empty(t, outcome.Hash)
	assert.Equal(t, 1, signer.SignCalls())
	assert.Equal(t, 0, node.Calls("sendTransaction"))
	assert.Equal(t, uint32(2), node.Counter())
	assert.False(t, counter.CurrentValue().IsKnown())
	assert.False(t, counter.IsBusy())
}

func TestSignerUnavailable(t *testing.T) {
	counter, node, signer := newTestCounter(t)
	node.SetCounter(1)
	signer.Unavailable = true

	outcome, err := counter.Decrement(context.Background()).Result()
	assert.ErrorIs(t, err, chain.ErrSignerUnavailable)
	assert.Equal(t, "SignerUnavailable", chain.KindName(err))
	assert.Equal(t, types.TxStateRejected, outcome.State)
	assert.Equal(t, 1, node.Calls("simulateTransaction"))
	assert.Equal(t, 0, node.Calls("sendTransaction"))
	assert.Equal(t, uint32(1), node.Counter())
}

func TestNoAddress(t *testing.T) {
	counter, node, _ := newTestCounter(t)
	counter.SetAddress("")

	_, err := counter.Increment(context.Background()).Result()
	assert.ErrorIs(t, err, chain.ErrSignerUnavailable)
	assert.Equal(t, 0, node.Calls("simulateTransaction"))
}

func TestTimedOutClearsBusy(t *testing.T) {
	counter, node, _ := newTestCounter(t)
	node.TxStatuses = []string{"NOT_FOUND"}
	counter.UpdateSettings(Settings{Poll: soroban.PollOptions{Interval: time.Millisecond, MaxAttempts: 3}})

	outcome, err := counter.Increment(context.Background()).Result()
	assert.ErrorIs(t, err, chain.ErrTimedOut)
	assert.Equal(t, types.TxStateTimedOut, outcome.State)
	assert.Equal(t, 3, node.Calls("getTransaction"))
	assert.False(t, counter.IsBusy())
	assert.False(t, counter.CurrentValue().IsKnown())
}

func TestRemoteExecutionFailed(t *testing.T) {
	counter, node, _ := newTestCounter(t)
	node.TxStatuses = []string{"FAILED"}

	outcome, err := counter.Increment(context.Background()).Result()
	assert.ErrorIs(t, err, chain.ErrRemoteExecution)
	assert.Equal(t, types.TxStateRejected, outcome.State)
	var txErr *chain.TxError
	require.True(t, errors.As(err, &txErr))
	assert.Equal(t, sorobantest.FailedResultXDR, txErr.Detail)

	rec := counter.History().Get(outcome.Hash)
	require.NotNil(t, rec)
	assert.Equal(t, "RemoteExecutionFailed", rec.ErrorKind)
}

func TestSimulationErrorAtZero(t *testing.T) {
	counter, node, signer := newTestCounter(t)

	_, err := counter.Decrement(context.Background()).Result()
	assert.ErrorIs(t, err, chain.ErrSimulation)
	assert.Equal(t, 0, signer.SignCalls())
	assert.Equal(t, uint32(0), node.Counter())
}

func TestSubmissionRejected(t *testing.T) {
	counter, node, _ := newTestCounter(t)
	node.SendStatus = "TRY_AGAIN_LATER"

	outcome, err := counter.Increment(context.Background()).Result()
	assert.ErrorIs(t, err, chain.ErrSubmissionRejected)
	assert.Equal(t, types.TxStateRejected, outcome.State)
	assert.Equal(t, 0, node.Calls("getTransaction"))
}

func TestOperationInProgress(t *testing.T) {
	counter, node, _ := newTestCounter(t)
	node.SetCounter(1)

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	node.GetTransactionHook = func(ctx context.Context, _ string, _ int) error {
		once.Do(func() { close(entered) })
		<-release
		return nil
	}

	first := counter.Increment(context.Background())
	<-entered
	assert.True(t, counter.IsBusy())

	second, err := counter.Decrement(context.Background()).Result()
	assert.Nil(t, second)
	assert.ErrorIs(t, err, chain.ErrOperationInProgress)
	_, err = counter.Refresh(context.Background()).Result()
	assert.ErrorIs(t, err, chain.ErrOperationInProgress)

	close(release)
	outcome, err := first.Result()
	require.NoError(t, err)
	assert.Equal(t, types.KnownValue(2), outcome.Value)
	assert.False(t, counter.IsBusy())

	// a new attempt is accepted once the previous one completed
	outcome, err = counter.Decrement(context.Background()).Result()
	require.NoError(t, err)
	assert.Equal(t, types.KnownValue(1), outcome.Value)
	assert.Equal(t, 2, node.Calls("sendTransaction"))
}

func TestResetResolvedByGetCount(t *testing.T) {
	counter, node, _ := newTestCounter(t)
	node.SetCounter(9)

	outcome, err := counter.Reset(context.Background()).Result()
	require.NoError(t, err)
	assert.Equal(t, types.KnownValue(0), outcome.Value)
	assert.Equal(t, uint32(0), node.Counter())
}

func TestRefreshUntouchedCounterIsZero(t *testing.T) {
	counter, _, _ := newTestCounter(t)

	outcome, err := counter.Refresh(context.Background()).Result()
	require.NoError(t, err)
	assert.Equal(t, types.KnownValue(0), outcome.Value)
	assert.Equal(t, soroban.CarrierGetCount, outcome.Carrier)
	assert.Equal(t, types.KnownValue(0), counter.CurrentValue())
}

func TestRefreshUnresolved(t *testing.T) {
	counter, node, _ := newTestCounter(t)
	node.SetCounter(4)
	_, err := counter.Refresh(context.Background()).Result()
	require.NoError(t, err)

	node.Unavailable = true
	_, err = counter.Refresh(context.Background()).Result()
	assert.ErrorIs(t, err, chain.ErrUnresolvedResult)
	assert.Equal(t, types.KnownValue(4), counter.CurrentValue())
}

func TestCancelledWaitMutationStillLands(t *testing.T) {
	counter, node, _ := newTestCounter(t)
	node.SetCounter(3)
	node.TxStatuses = []string{"NOT_FOUND"}
	counter.UpdateSettings(Settings{Poll: soroban.PollOptions{Interval: time.Millisecond, MaxAttempts: 100}})

	ctx, cancel := context.WithCancel(context.Background())
	node.GetTransactionHook = func(_ context.Context, _ string, attempt int) error {
		if attempt == 2 {
			cancel()
		}
		return nil
	}

	outcome, err := counter.Increment(ctx).Result()
	assert.ErrorIs(t, err, chain.ErrAbandoned)
	assert.Equal(t, types.TxStateAbandoned, outcome.State)
	assert.False(t, counter.CurrentValue().IsKnown())
	assert.Equal(t, uint32(4), node.Counter())

	outcome, err = counter.Refresh(context.Background()).Result()
	require.NoError(t, err)
	assert.Equal(t, types.KnownValue(4), outcome.Value)
}

func TestConnect(t *testing.T) {
	counter, node, signer := newTestCounter(t)
	counter.SetAddress("")
	node.SetCounter(7)

	address, err := counter.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, signer.Key.Address(), address)
	assert.Equal(t, address, counter.Address())
	assert.Equal(t, types.KnownValue(7), counter.CurrentValue())

	allowed, err := counter.Allow(context.Background())
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 0, signer.SetAllowedCalls(), "already allowed")

	signer.Allowed = false
	allowed, err = counter.Allow(context.Background())
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 1, signer.SetAllowedCalls())
	assert.True(t, signer.Allowed)
}

func TestConnectNotConnected(t *testing.T) {
	counter, _, signer := newTestCounter(t)
	counter.SetAddress("")
	signer.Connected = false

	_, err := counter.Connect(context.Background())
	assert.ErrorIs(t, err, chain.ErrSignerUnavailable)
	assert.Empty(t, counter.Address())

	signer.Connected = true
	signer.Allowed = false
	signer.Reject = true
	_, err = counter.Allow(context.Background())
	assert.ErrorIs(t, err, chain.ErrUserRejected)
}

func TestInvokeReadOnlyOperation(t *testing.T) {
	counter, _, _ := newTestCounter(t)
	_, err := counter.Invoke(context.Background(), types.OpGetCount).Result()
	assert.ErrorIs(t, err, types.ErrUnknownOperation)
	assert.False(t, counter.IsBusy())
}

func TestHistoryRecordsActions(t *testing.T) {
	counter, node, signer := newTestCounter(t)
	node.SetCounter(1)

	_, err := counter.Increment(context.Background()).Result()
	require.NoError(t, err)
	signer.Reject = true
	_, err = counter.Increment(context.Background()).Result()
	require.Error(t, err)

	records := counter.History().List(0)
	require.Len(t, records, 2)
	assert.Equal(t, "UserRejected", records[0].ErrorKind)
	assert.Equal(t, types.KnownValue(2), records[0].Value)
	assert.Equal(t, "increment", records[1].Op)
	assert.Equal(t, types.TxStateConfirmed, records[1].State)
	assert.Empty(t, records[1].ErrorKind)
}

func TestSequenceAdvancesAcrossActions(t *testing.T) {
	counter, node, signer := newTestCounter(t)

	for i := 0; i < 3; i++ {
		_, err := counter.Increment(context.Background()).Result()
		require.NoError(t, err)
	}
	assert.Equal(t, int64(103), node.AccountSequence(signer.Key.Address()))
	assert.Equal(t, types.KnownValue(3), counter.CurrentValue())
}
