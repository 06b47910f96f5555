package types

import (
	"errors"
	"fmt"
	"sync"
)

// TxStatus node reported transaction status
type TxStatus string

// sendTransaction and getTransaction statuses
const (
	TxStatusPending       TxStatus = "PENDING"
	TxStatusNotFound      TxStatus = "NOT_FOUND"
	TxStatusSuccess       TxStatus = "SUCCESS"
	TxStatusFailed        TxStatus = "FAILED"
	TxStatusDuplicate     TxStatus = "DUPLICATE"
	TxStatusTryAgainLater TxStatus = "TRY_AGAIN_LATER"
	TxStatusError         TxStatus = "ERROR"
)

// IsTerminal SUCCESS or FAILED
func (s TxStatus) IsTerminal() bool {
	return s == TxStatusSuccess || s == TxStatusFailed
}

func (s TxStatus) rank() int {
	switch s {
	case TxStatusPending:
		return 0
	case TxStatusNotFound:
		return 1
	case TxStatusSuccess, TxStatusFailed:
		return 2
	default:
		return -1
	}
}

// ErrStatusRegression status can only advance PENDING -> NOT_FOUND -> terminal
var ErrStatusRegression = errors.New("transaction status regression")

// SubmissionHandle is an accepted submission waiting for confirmation
type SubmissionHandle struct {
	Hash string

	mu       sync.Mutex
	status   TxStatus
	attempts int
}

// NewSubmissionHandle new handle in PENDING status
func NewSubmissionHandle(hash string) *SubmissionHandle {
	return &SubmissionHandle{Hash: hash, status: TxStatusPending}
}

// Status current observed status
func (h *SubmissionHandle) Status() TxStatus {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

// Attempts number of status queries recorded
func (h *SubmissionHandle) Attempts() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.attempts
}

// Advance record an observed status, counts one poll attempt
func (h *SubmissionHandle) Advance(status TxStatus) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.attempts++
	newRank := status.rank()
	if newRank < 0 {
		return fmt.Errorf("unknown transaction status %q", status)
	}
	oldRank := h.status.rank()
	if h.status.IsTerminal() {
		if status == h.status {
			return nil
		}
		return fmt.Errorf("%w: %v -> %v", ErrStatusRegression, h.status, status)
	}
	if newRank < oldRank {
		return fmt.Errorf("%w: %v -> %v", ErrStatusRegression, h.status, status)
	}
	h.status = status
	return nil
}

// TxState local lifecycle state of one action
type TxState string

// lifecycle states
const (
	TxStateBuilt     TxState = "BUILT"
	TxStateSubmitted TxState = "SUBMITTED"
	TxStateConfirmed TxState = "CONFIRMED"
	TxStateRejected  TxState = "REJECTED"
	TxStateTimedOut  TxState = "TIMED_OUT"
	TxStateAbandoned TxState = "ABANDONED"
)

// IsFinal no more transitions allowed
func (s TxState) IsFinal() bool {
	switch s {
	case TxStateConfirmed, TxStateRejected, TxStateTimedOut, TxStateAbandoned:
		return true
	default:
		return false
	}
}

var allowedTransitions = map[TxState][]TxState{
	TxStateBuilt:     {TxStateSubmitted, TxStateRejected},
	TxStateSubmitted: {TxStateConfirmed, TxStateRejected, TxStateTimedOut, TxStateAbandoned},
}

// ErrInvalidTransition lifecycle transition not allowed
var ErrInvalidTransition = errors.New("invalid lifecycle transition")

// Lifecycle tracks the state of one transaction action
type Lifecycle struct {
	mu    sync.Mutex
	state TxState
	hash  string
}

// NewLifecycle starts at BUILT
func NewLifecycle() *Lifecycle {
	return &Lifecycle{state: TxStateBuilt}
}

// State current state
func (l *Lifecycle) State() TxState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Hash transaction hash once submitted
func (l *Lifecycle) Hash() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.hash
}

// Submitted move to SUBMITTED with the accepted hash
func (l *Lifecycle) Submitted(hash string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.transit(TxStateSubmitted); err != nil {
		return err
	}
	l.hash = hash
	return nil
}

// Transit move to next state
func (l *Lifecycle) Transit(next TxState) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.transit(next)
}

func (l *Lifecycle) transit(next TxState) error {
	for _, allowed := range allowedTransitions[l.state] {
		if allowed == next {
			l.state = next
			return nil
		}
	}
	return fmt.Errorf("%w: %v -> %v", ErrInvalidTransition, l.state, next)
}
