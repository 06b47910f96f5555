package soroban

import (
	"context"
	"fmt"

	"github.com/stellar/go/xdr"

	"github.com/anyswap/soroban-counter/chain"
	"github.com/anyswap/soroban-counter/log"
	"github.com/anyswap/soroban-counter/types"
)

// DecodeReturnValue decode the counter value returned by the invocation
// from base64 TransactionMeta
func DecodeReturnValue(resultMetaXDR string) (uint32, error) {
	if resultMetaXDR == "" {
		return 0, chain.ErrEmptyResultMetadata
	}
	var meta xdr.TransactionMeta
	if err := xdr.SafeUnmarshalBase64(resultMetaXDR, &meta); err != nil {
		return 0, fmt.Errorf("%w: %v", chain.ErrWrongResponse, err)
	}
	v3, ok := meta.GetV3()
	if !ok {
		return 0, fmt.Errorf("%w: transaction meta version %v", chain.ErrWrongResponse, meta.V)
	}
	if v3.SorobanMeta == nil {
		return 0, fmt.Errorf("%w: no soroban meta", chain.ErrWrongResponse)
	}
	return DecodeU32(v3.SorobanMeta.ReturnValue)
}

// Resolve extract the new counter value of a confirmed invocation and the
// carrier it was read from. It reads the return value from execution
// metadata first, then falls back to simulating get_count with the given
// source account. The counter contract mutations return void, so the
// fallback is the usual path.
func (c *Client) Resolve(ctx context.Context, op types.Operation, info *chain.TransactionInfo, source string) (uint32, string, error) {
	if info == nil || info.ResultMetaXDR == "" {
		return 0, "", chain.NewTxError(chain.ErrEmptyResultMetadata, op.String(), "", "", nil)
	}
	value, primaryErr := DecodeReturnValue(info.ResultMetaXDR)
	if primaryErr == nil {
		return value, CarrierReturnValue, nil
	}
	log.Debug("decode return value failed, read by get_count", "op", op, "err", primaryErr)

	value, fallbackErr := c.SimulateGetCount(ctx, source)
	if fallbackErr == nil {
		return value, CarrierGetCount, nil
	}
	log.Warn("resolve counter value failed", "op", op, "returnValueErr", primaryErr, "getCountErr", fallbackErr)
	return 0, "", chain.NewTxError(chain.ErrUnresolvedResult, op.String(), "",
		fmt.Sprintf("return value: %v", primaryErr), fallbackErr)
}

// value carriers
const (
	CarrierReturnValue = "returnValue"
	CarrierStorage     = "storage"
	CarrierGetCount    = "get_count"
	CarrierEvents      = "events"
)

// ReadValue read current counter value without mutating it.
// Storage is tried first, then get_count simulation (needs source), then
// recent events. All failing gives UnresolvedResult.
func (c *Client) ReadValue(ctx context.Context, source string) (value uint32, carrier string, err error) {
	var errs []error

	value, err = c.ReadStorage(ctx)
	if err == nil {
		return value, CarrierStorage, nil
	}
	errs = append(errs, fmt.Errorf("%v: %w", CarrierStorage, err))

	if source != "" {
		value, err = c.SimulateGetCount(ctx, source)
		if err == nil {
			return value, CarrierGetCount, nil
		}
		errs = append(errs, fmt.Errorf("%v: %w", CarrierGetCount, err))
	}

	value, err = c.ReadEvents(ctx)
	if err == nil {
		return value, CarrierEvents, nil
	}
	errs = append(errs, fmt.Errorf("%v: %w", CarrierEvents, err))

	log.Debug("read counter value failed", "errs", errs)
	return 0, "", chain.NewTxError(chain.ErrUnresolvedResult, "refresh", "", fmt.Sprint(errs), nil)
}
