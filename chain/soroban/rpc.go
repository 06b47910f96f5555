package soroban

import (
	"context"

	"github.com/anyswap/soroban-counter/chain"
)

// RPCNode soroban json-rpc node, tries each address in turn
type RPCNode struct {
	URLs []string
}

// NewRPCNode new rpc node
func NewRPCNode(urls ...string) *RPCNode {
	if len(urls) == 0 {
		urls = []string{DefaultRPCAddress}
	}
	return &RPCNode{URLs: urls}
}

// GetLatestLedger call getLatestLedger
func (n *RPCNode) GetLatestLedger(ctx context.Context) (*chain.LatestLedger, error) {
	var result chain.LatestLedger
	err := chain.RPCCall(ctx, &result, n.URLs, "getLatestLedger", nil)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetLedgerEntries call getLedgerEntries
func (n *RPCNode) GetLedgerEntries(ctx context.Context, keys []string) (*chain.LedgerEntries, error) {
	var result chain.LedgerEntries
	params := map[string]interface{}{"keys": keys}
	err := chain.RPCCall(ctx, &result, n.URLs, "getLedgerEntries", params)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// SimulateTransaction call simulateTransaction
func (n *RPCNode) SimulateTransaction(ctx context.Context, envelopeXDR string) (*chain.SimulateResult, error) {
	var result chain.SimulateResult
	params := map[string]interface{}{"transaction": envelopeXDR}
	err := chain.RPCCall(ctx, &result, n.URLs, "simulateTransaction", params)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// SendTransaction call sendTransaction
func (n *RPCNode) SendTransaction(ctx context.Context, envelopeXDR string) (*chain.SendResult, error) {
	var result chain.SendResult
	params := map[string]interface{}{"transaction": envelopeXDR}
	err := chain.RPCCall(ctx, &result, n.URLs, "sendTransaction", params)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetTransaction call getTransaction
func (n *RPCNode) GetTransaction(ctx context.Context, hash string) (*chain.TransactionInfo, error) {
	var result chain.TransactionInfo
	params := map[string]interface{}{"hash": hash}
	err := chain.RPCCall(ctx, &result, n.URLs, "getTransaction", params)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetEvents call getEvents
func (n *RPCNode) GetEvents(ctx context.Context, req *chain.EventsRequest) (*chain.EventsResult, error) {
	var result chain.EventsResult
	err := chain.RPCCall(ctx, &result, n.URLs, "getEvents", req)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
