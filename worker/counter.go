package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/anyswap/soroban-counter/chain"
	"github.com/anyswap/soroban-counter/chain/soroban"
	"github.com/anyswap/soroban-counter/types"
)

// OpRefresh name of the read-only refresh action
const OpRefresh = "refresh"

// Settings tunables applied to the next action
type Settings struct {
	Tx   soroban.TxOptions
	Poll soroban.PollOptions
}

// Counter counter transaction lifecycle controller
type Counter struct {
	client *soroban.Client
	signer chain.Signer

	busy int32

	lock     sync.RWMutex
	value    types.LedgerValue
	address  string
	settings Settings

	history *History
	events  *broadcaster
}

// NewCounter new counter controller
func NewCounter(client *soroban.Client, signer chain.Signer, settings Settings, history *History) *Counter {
	if history == nil {
		history = NewHistory(defaultHistorySize)
	}
	return &Counter{
		client:   client,
		signer:   signer,
		settings: settings,
		history:  history,
		events:   newBroadcaster(),
	}
}

// CurrentValue last known counter value, unknown until first resolved
func (c *Counter) CurrentValue() types.LedgerValue {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.value
}

// IsBusy an action is in flight
func (c *Counter) IsBusy() bool {
	return atomic.LoadInt32(&c.busy) == 1
}

// Address connected signer address
func (c *Counter) Address() string {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.address
}

// SetAddress use address as source account without asking the signer
func (c *Counter) SetAddress(address string) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.address = address
}

// Settings current settings
func (c *Counter) Settings() Settings {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.settings
}

// UpdateSettings takes effect from the next action
func (c *Counter) UpdateSettings(settings Settings) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.settings = settings
	logWorker("counter", "update settings", "feeCeiling", settings.Tx.FeeCeiling,
		"pollInterval", settings.Poll.Interval, "maxAttempts", settings.Poll.MaxAttempts)
}

// History operation history
func (c *Counter) History() *History {
	return c.history
}

// Subscribe receive value, busy and error events
func (c *Counter) Subscribe(buffer int) (<-chan *Event, func()) {
	return c.events.subscribe(buffer)
}

// Connect check the signer and take its address, then refresh the value.
// A failed refresh does not fail the connection.
func (c *Counter) Connect(ctx context.Context) (string, error) {
	connected, err := c.signer.IsConnected(ctx)
	if err != nil {
		return "", signerError("connect", err)
	}
	if !connected {
		return "", chain.NewTxError(chain.ErrSignerUnavailable, "connect", "", "", nil)
	}
	address, err := c.signer.GetAddress(ctx)
	if err != nil {
		return "", signerError("connect", err)
	}
	if !soroban.IsValidAddress(address) {
		return "", chain.NewTxError(chain.ErrSignerUnavailable, "connect", "", address, chain.ErrNoAddress)
	}
	c.SetAddress(address)
	logWorker("counter", "signer connected", "address", address)

	if _, err = c.Refresh(ctx).Wait(ctx); err != nil {
		logWorkerError("counter", "refresh after connect failed", err, "address", address)
	}
	return address, nil
}

// Allow ask the signer holder for permission
func (c *Counter) Allow(ctx context.Context) (bool, error) {
	allowed, err := c.signer.IsAllowed(ctx)
	if err != nil {
		return false, signerError("allow", err)
	}
	if allowed {
		return true, nil
	}
	allowed, err = c.signer.SetAllowed(ctx)
	if err != nil {
		return false, signerError("allow", err)
	}
	return allowed, nil
}

// Increment increment the counter
func (c *Counter) Increment(ctx context.Context) *Completion {
	return c.Invoke(ctx, types.OpIncrement)
}

// Decrement decrement the counter
func (c *Counter) Decrement(ctx context.Context) *Completion {
	return c.Invoke(ctx, types.OpDecrement)
}

// Reset reset the counter to zero
func (c *Counter) Reset(ctx context.Context) *Completion {
	return c.Invoke(ctx, types.OpReset)
}

// Invoke run a mutating contract operation
func (c *Counter) Invoke(ctx context.Context, op types.Operation) *Completion {
	comp := newCompletion(op.String())
	if !op.IsMutation() {
		comp.respond(nil, types.ErrUnknownOperation)
		return comp
	}
	if !c.acquire(comp) {
		return comp
	}
	settings := c.Settings()
	go func() {
		outcome, err := c.invoke(ctx, op, settings)
		c.finish(comp, outcome, err)
	}()
	return comp
}

// Refresh read the current value without a transaction
func (c *Counter) Refresh(ctx context.Context) *Completion {
	comp := newCompletion(OpRefresh)
	if !c.acquire(comp) {
		return comp
	}
	go func() {
		outcome, err := c.refresh(ctx)
		c.finish(comp, outcome, err)
	}()
	return comp
}

func (c *Counter) acquire(comp *Completion) bool {
	if atomic.CompareAndSwapInt32(&c.busy, 0, 1) {
		c.events.publish(&Event{Type: EventBusy, Op: comp.Op, Busy: true, Value: c.CurrentValue(), Timestamp: now()})
		return true
	}
	err := chain.NewTxError(chain.ErrOperationInProgress, comp.Op, "", "", nil)
	c.events.publish(errorEvent(comp.Op, "", c.CurrentValue(), err))
	comp.respond(nil, err)
	return false
}

func (c *Counter) invoke(ctx context.Context, op types.Operation, settings Settings) (*Outcome, error) {
	outcome := &Outcome{Op: op.String()}
	lifecycle := types.NewLifecycle()
	defer func() {
		outcome.State = lifecycle.State()
		outcome.Hash = lifecycle.Hash()
	}()
	reject := func(err error) (*Outcome, error) {
		_ = lifecycle.Transit(types.TxStateRejected)
		return outcome, err
	}

	address := c.Address()
	if address == "" {
		return reject(chain.NewTxError(chain.ErrSignerUnavailable, op.String(), "", "", chain.ErrNoAddress))
	}

	unsigned, err := c.client.Build(ctx, address, op, settings.Tx)
	if err != nil {
		return reject(err)
	}
	simulated, err := c.client.Simulate(ctx, unsigned)
	if err != nil {
		return reject(err)
	}
	envelope, err := simulated.TakeForSigning()
	if err != nil {
		return reject(err)
	}
	signedXDR, err := c.signer.SignTransaction(ctx, envelope, unsigned.NetworkID)
	if err != nil {
		return reject(signerError(op.String(), err))
	}

	handle, err := c.client.Submit(ctx, &types.SignedEnvelope{
		EnvelopeXDR: signedXDR,
		NetworkID:   unsigned.NetworkID,
		Operation:   op,
	})
	if err != nil {
		return reject(err)
	}
	_ = lifecycle.Submitted(handle.Hash)
	logWorker("counter", "transaction submitted", "op", op, "hash", handle.Hash)

	info, err := c.client.AwaitConfirmation(ctx, op, handle, settings.Poll)
	if err != nil {
		switch {
		case errors.Is(err, chain.ErrTimedOut):
			_ = lifecycle.Transit(types.TxStateTimedOut)
		case errors.Is(err, chain.ErrAbandoned):
			_ = lifecycle.Transit(types.TxStateAbandoned)
		default:
			_ = lifecycle.Transit(types.TxStateRejected)
		}
		return outcome, err
	}
	_ = lifecycle.Transit(types.TxStateConfirmed)

	value, carrier, err := c.client.Resolve(ctx, op, info, address)
	if err != nil {
		return outcome, err
	}
	outcome.Value = types.KnownValue(value)
	outcome.Carrier = carrier
	return outcome, nil
}

func (c *Counter) refresh(ctx context.Context) (*Outcome, error) {
	value, carrier, err := c.client.ReadValue(ctx, c.Address())
	if err != nil {
		return &Outcome{Op: OpRefresh}, err
	}
	return &Outcome{Op: OpRefresh, Value: types.KnownValue(value), Carrier: carrier}, nil
}

// finish records the outcome, clears busy, then completes
func (c *Counter) finish(comp *Completion, outcome *Outcome, err error) {
	rec := &Record{
		Op:        outcome.Op,
		Hash:      outcome.Hash,
		State:     outcome.State,
		Carrier:   outcome.Carrier,
		Timestamp: now(),
	}
	if err == nil {
		c.lock.Lock()
		c.value = outcome.Value
		c.lock.Unlock()
		rec.Value = outcome.Value
		logWorker("counter", "action finished", "op", outcome.Op, "hash", outcome.Hash, "value", outcome.Value, "carrier", outcome.Carrier)
		c.events.publish(&Event{Type: EventValue, Op: outcome.Op, Hash: outcome.Hash, Value: outcome.Value, Timestamp: now()})
	} else {
		// keep the last known value
		outcome.Value = c.CurrentValue()
		rec.Value = outcome.Value
		rec.ErrorKind = chain.KindName(err)
		rec.Error = err.Error()
		logWorkerError("counter", "action failed", err, "op", outcome.Op, "hash", outcome.Hash, "state", outcome.State, "kind", rec.ErrorKind)
		c.events.publish(errorEvent(outcome.Op, outcome.Hash, outcome.Value, err))
	}
	c.history.Add(rec)

	atomic.StoreInt32(&c.busy, 0)
	c.events.publish(&Event{Type: EventBusy, Op: outcome.Op, Busy: false, Value: c.CurrentValue(), Timestamp: now()})
	comp.respond(outcome, err)
}

// signerError classify signer failures, anything not a rejection is
// treated as the signer being unavailable
func signerError(op string, err error) error {
	if errors.Is(err, chain.ErrUserRejected) {
		return chain.NewTxError(chain.ErrUserRejected, op, "", "", err)
	}
	return chain.NewTxError(chain.ErrSignerUnavailable, op, "", "", err)
}

func asTxError(err error) (*chain.TxError, bool) {
	var txErr *chain.TxError
	ok := errors.As(err, &txErr)
	return txErr, ok
}
