package worker

import (
	"context"
	"sync"

	"github.com/anyswap/soroban-counter/types"
)

// Outcome result of a finished counter action
type Outcome struct {
	Op      string            `json:"op"`
	Hash    string            `json:"hash,omitempty"`
	State   types.TxState     `json:"state,omitempty"`
	Value   types.LedgerValue `json:"value"`
	Carrier string            `json:"carrier,omitempty"`
}

// Completion completes once with the outcome or the error of an action
type Completion struct {
	Op string

	once    sync.Once
	done    chan struct{}
	outcome *Outcome
	err     error
}

func newCompletion(op string) *Completion {
	return &Completion{Op: op, done: make(chan struct{})}
}

// respond only the first call takes effect
func (c *Completion) respond(outcome *Outcome, err error) {
	c.once.Do(func() {
		c.outcome = outcome
		c.err = err
		close(c.done)
	})
}

// Done closed when the action finished
func (c *Completion) Done() <-chan struct{} {
	return c.done
}

// Wait wait for the action or ctx. Giving up waiting does not stop the action.
func (c *Completion) Wait(ctx context.Context) (*Outcome, error) {
	select {
	case <-c.done:
		return c.outcome, c.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Result block until the action finished
func (c *Completion) Result() (*Outcome, error) {
	<-c.done
	return c.outcome, c.err
}
