package sorobantest

import (
	"context"
	"sync"

	"github.com/stellar/go/keypair"
	"github.com/stellar/go/txnbuild"

	"github.com/anyswap/soroban-counter/chain"
)

// FakeSigner signs with an in-memory keypair
type FakeSigner struct {
	mu sync.Mutex

	Key         *keypair.Full
	Connected   bool
	Allowed     bool
	Reject      bool
	Unavailable bool

	signCalls       int
	setAllowedCalls int
}

// NewFakeSigner connected and allowed signer with random key
func NewFakeSigner() *FakeSigner {
	return &FakeSigner{Key: RandomAccount(), Connected: true, Allowed: true}
}

// SignCalls number of sign requests
func (s *FakeSigner) SignCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signCalls
}

// SetAllowedCalls number of permission prompts
func (s *FakeSigner) SetAllowedCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setAllowedCalls
}

// IsConnected impl
func (s *FakeSigner) IsConnected(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Unavailable {
		return false, chain.ErrSignerUnavailable
	}
	return s.Connected, nil
}

// IsAllowed impl
func (s *FakeSigner) IsAllowed(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Unavailable {
		return false, chain.ErrSignerUnavailable
	}
	return s.Allowed, nil
}

// SetAllowed impl
func (s *FakeSigner) SetAllowed(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setAllowedCalls++
	if s.Unavailable {
		return false, chain.ErrSignerUnavailable
	}
	if s.Reject {
		return false, chain.ErrUserRejected
	}
	s.Allowed = true
	return true, nil
}

// GetAddress impl
func (s *FakeSigner) GetAddress(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Unavailable || !s.Connected {
		return "", chain.ErrSignerUnavailable
	}
	return s.Key.Address(), nil
}

// SignTransaction impl
func (s *FakeSigner) SignTransaction(ctx context.Context, envelopeXDR, networkPassphrase string) (string, error) {
	s.mu.Lock()
	s.signCalls++
	unavailable, reject := s.Unavailable || !s.Connected, s.Reject
	s.mu.Unlock()
	if unavailable {
		return "", chain.ErrSignerUnavailable
	}
	if reject {
		return "", chain.ErrUserRejected
	}
	gtx, err := txnbuild.TransactionFromXDR(envelopeXDR)
	if err != nil {
		return "", err
	}
	tx, ok := gtx.Transaction()
	if !ok {
		return "", chain.ErrWrongResponse
	}
	tx, err = tx.Sign(networkPassphrase, s.Key)
	if err != nil {
		return "", err
	}
	return tx.Base64()
}
