// Package signer provides the external signer gateway: a remote signer
// service reached over json-rpc, and a local keystore signer.
package signer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pborman/uuid"

	"github.com/anyswap/soroban-counter/chain"
	"github.com/anyswap/soroban-counter/common"
	"github.com/anyswap/soroban-counter/log"
	"github.com/anyswap/soroban-counter/rpc/client"
)

const (
	defaultRPCTimeout         = 10 // seconds
	defaultSignStatusRetry    = 120
	defaultSignStatusInterval = time.Second
)

// RemoteSigner wallet signer service.
// Sign requests may complete asynchronously, the holder approves them out
// of band and the status is queried until it is final.
type RemoteSigner struct {
	RPCAddress string
	Timeout    int // seconds

	SignStatusRetry    int
	SignStatusInterval time.Duration
}

// NewRemoteSigner new remote signer
func NewRemoteSigner(rpcAddress string, timeout int) *RemoteSigner {
	if timeout <= 0 {
		timeout = defaultRPCTimeout
	}
	return &RemoteSigner{
		RPCAddress:         rpcAddress,
		Timeout:            timeout,
		SignStatusRetry:    defaultSignStatusRetry,
		SignStatusInterval: defaultSignStatusInterval,
	}
}

func newWrongStatusError(status, errInfo string) error {
	switch status {
	case StatusRejected:
		return fmt.Errorf("%w: %v", chain.ErrUserRejected, errInfo)
	case StatusNotConnected:
		return fmt.Errorf("%w: %v", chain.ErrSignerUnavailable, errInfo)
	default:
		return fmt.Errorf("wrong status %v, %v", status, errInfo)
	}
}

func (s *RemoteSigner) httpPost(ctx context.Context, result interface{}, method string, params ...interface{}) error {
	err := client.RPCPostWithTimeout(ctx, s.Timeout, result, s.RPCAddress, method, params...)
	if err != nil {
		var rpcErr *client.JSONRPCError
		if errors.As(err, &rpcErr) {
			return fmt.Errorf("call %v failed: %w", method, err)
		}
		return fmt.Errorf("%w: call %v failed: %v", chain.ErrSignerUnavailable, method, err)
	}
	return nil
}

func (s *RemoteSigner) callBool(ctx context.Context, method string, params ...interface{}) (bool, error) {
	var result BoolResp
	err := s.httpPost(ctx, &result, method, params...)
	if err != nil {
		return false, err
	}
	if result.Status != StatusSuccess {
		return false, newWrongStatusError(result.Status, result.Error)
	}
	return result.Data, nil
}

// IsConnected signer is present and connected
func (s *RemoteSigner) IsConnected(ctx context.Context) (bool, error) {
	return s.callBool(ctx, "signer_isConnected")
}

// IsAllowed this application is allowed to request signatures
func (s *RemoteSigner) IsAllowed(ctx context.Context) (bool, error) {
	return s.callBool(ctx, "signer_isAllowed")
}

// SetAllowed ask the holder to grant permission
func (s *RemoteSigner) SetAllowed(ctx context.Context) (bool, error) {
	return s.callBool(ctx, "signer_setAllowed")
}

// GetAddress signer account address
func (s *RemoteSigner) GetAddress(ctx context.Context) (string, error) {
	var result DataResultResp
	err := s.httpPost(ctx, &result, "signer_getAddress")
	if err != nil {
		return "", err
	}
	if result.Status != StatusSuccess {
		return "", newWrongStatusError(result.Status, result.Error)
	}
	if result.Data == nil || result.Data.Result == "" {
		return "", chain.ErrNoAddress
	}
	return result.Data.Result, nil
}

// SignTransaction request signature of envelope, never retried
func (s *RemoteSigner) SignTransaction(ctx context.Context, envelopeXDR, networkPassphrase string) (string, error) {
	signData := SignData{
		TxType:            "SIGN",
		RequestID:         uuid.NewRandom().String(),
		EnvelopeXDR:       envelopeXDR,
		NetworkPassphrase: networkPassphrase,
		TimeStamp:         common.NowMilliStr(),
	}
	log.Debug("remote signer sign transaction", "requestID", signData.RequestID)

	var result DataResultResp
	err := s.httpPost(ctx, &result, "signer_signTransaction", signData)
	if err != nil {
		return "", err
	}
	switch result.Status {
	case StatusSuccess:
		if result.Data == nil || result.Data.Result == "" {
			return "", fmt.Errorf("%w: empty signed envelope", chain.ErrSignerUnavailable)
		}
		return result.Data.Result, nil
	case StatusPending:
		return s.waitSignStatus(ctx, signData.RequestID)
	default:
		return "", newWrongStatusError(result.Status, result.Error)
	}
}

// GetSignStatus query status of sign request
func (s *RemoteSigner) GetSignStatus(ctx context.Context, requestID string) (*SignStatus, error) {
	var result DataResultResp
	err := s.httpPost(ctx, &result, "signer_getSignStatus", requestID)
	if err != nil {
		return nil, err
	}
	if result.Status != StatusSuccess {
		return nil, newWrongStatusError(result.Status, result.Error)
	}
	if result.Data == nil {
		return nil, errors.New("empty sign status")
	}
	var signStatus SignStatus
	err = json.Unmarshal([]byte(result.Data.Result), &signStatus)
	if err != nil {
		return nil, fmt.Errorf("unmarshal sign status failed: %w", err)
	}
	return &signStatus, nil
}

func (s *RemoteSigner) waitSignStatus(ctx context.Context, requestID string) (string, error) {
	for i := 0; i < s.SignStatusRetry; i++ {
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", chain.ErrSignerUnavailable, ctx.Err())
		case <-time.After(s.SignStatusInterval):
		}
		signStatus, err := s.GetSignStatus(ctx, requestID)
		if err != nil {
			if errors.Is(err, chain.ErrUserRejected) || errors.Is(err, chain.ErrSignerUnavailable) {
				return "", err
			}
			log.Debug("get sign status failed", "requestID", requestID, "err", err)
			continue
		}
		switch signStatus.Status {
		case StatusSuccess:
			return signStatus.EnvelopeXDR, nil
		case StatusPending:
			continue
		default:
			return "", newWrongStatusError(signStatus.Status, signStatus.Error)
		}
	}
	log.Warn("sign request not finished", "requestID", requestID, "retry", s.SignStatusRetry)
	return "", fmt.Errorf("%w: sign request %v not finished", chain.ErrSignerUnavailable, requestID)
}
