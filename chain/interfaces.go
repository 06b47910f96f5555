package chain

import (
	"context"
)

// Node capability: query and submit against a ledger node
type Node interface {
	GetLatestLedger(ctx context.Context) (*LatestLedger, error)
	GetLedgerEntries(ctx context.Context, keys []string) (*LedgerEntries, error)
	SimulateTransaction(ctx context.Context, envelopeXDR string) (*SimulateResult, error)
	SendTransaction(ctx context.Context, envelopeXDR string) (*SendResult, error)
	GetTransaction(ctx context.Context, hash string) (*TransactionInfo, error)
	GetEvents(ctx context.Context, req *EventsRequest) (*EventsResult, error)
}

// Signer capability: exchange an unsigned envelope for a signed one.
// Sign fails with ErrUserRejected or ErrSignerUnavailable.
type Signer interface {
	IsConnected(ctx context.Context) (bool, error)
	IsAllowed(ctx context.Context) (bool, error)
	SetAllowed(ctx context.Context) (bool, error)
	GetAddress(ctx context.Context) (string, error)
	SignTransaction(ctx context.Context, envelopeXDR, networkPassphrase string) (string, error)
}
