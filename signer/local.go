package signer

import (
	"context"
	"errors"

	"github.com/stellar/go/keypair"
	"github.com/stellar/go/txnbuild"

	"github.com/anyswap/soroban-counter/chain"
)

// KeystoreSigner signs with a key loaded from an encrypted keystore.
// It is always connected; permission is implied by unlocking the key.
type KeystoreSigner struct {
	key *keypair.Full
}

// NewKeystoreSigner new keystore signer
func NewKeystoreSigner(key *keypair.Full) *KeystoreSigner {
	return &KeystoreSigner{key: key}
}

// IsConnected impl
func (s *KeystoreSigner) IsConnected(ctx context.Context) (bool, error) {
	return s.key != nil, nil
}

// IsAllowed impl
func (s *KeystoreSigner) IsAllowed(ctx context.Context) (bool, error) {
	return s.key != nil, nil
}

// SetAllowed impl
func (s *KeystoreSigner) SetAllowed(ctx context.Context) (bool, error) {
	return s.key != nil, nil
}

// GetAddress impl
func (s *KeystoreSigner) GetAddress(ctx context.Context) (string, error) {
	if s.key == nil {
		return "", chain.ErrSignerUnavailable
	}
	return s.key.Address(), nil
}

// SignTransaction sign envelope with the loaded key
func (s *KeystoreSigner) SignTransaction(ctx context.Context, envelopeXDR, networkPassphrase string) (string, error) {
	if s.key == nil {
		return "", chain.ErrSignerUnavailable
	}
	if networkPassphrase == "" {
		return "", errors.New("empty network passphrase")
	}
	gtx, err := txnbuild.TransactionFromXDR(envelopeXDR)
	if err != nil {
		return "", err
	}
	tx, ok := gtx.Transaction()
	if !ok {
		return "", errors.New("fee bump transaction not supported")
	}
	if tx.SourceAccount().AccountID != s.key.Address() {
		return "", errors.New("transaction source is not the keystore account")
	}
	tx, err = tx.Sign(networkPassphrase, s.key)
	if err != nil {
		return "", err
	}
	return tx.Base64()
}
