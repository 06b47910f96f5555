package soroban

import (
	"context"
	"errors"
	"time"

	"github.com/anyswap/soroban-counter/chain"
	"github.com/anyswap/soroban-counter/log"
	"github.com/anyswap/soroban-counter/types"
)

// AwaitConfirmation poll getTransaction until a terminal status.
//
// NOT_FOUND and query errors are retried every opts.Interval, at most
// opts.MaxAttempts queries in total, then TimedOut. A cancelled ctx returns
// ErrAbandoned; the submitted transaction may still be applied on ledger.
// SUCCESS without result meta is EmptyResultMetadata, FAILED is
// RemoteExecutionFailed carrying resultXdr.
func (c *Client) AwaitConfirmation(ctx context.Context, op types.Operation, handle *types.SubmissionHandle, opts PollOptions) (*chain.TransactionInfo, error) {
	opts = opts.withDefaults()
	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		info, err := c.node.GetTransaction(ctx, handle.Hash)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, abandoned(op, handle, ctx.Err())
			}
			log.Warn("query transaction status failed", "op", op, "hash", handle.Hash, "attempt", attempt, "err", err)
			_ = handle.Advance(types.TxStatusNotFound)
		default:
			status := types.TxStatus(info.Status)
			if status == types.TxStatusSuccess || status == types.TxStatusFailed || status == types.TxStatusNotFound {
				if advErr := handle.Advance(status); advErr != nil {
					log.Warn("ignore transaction status", "op", op, "hash", handle.Hash, "status", status, "err", advErr)
				}
			} else {
				log.Warn("unknown transaction status", "op", op, "hash", handle.Hash, "status", info.Status, "attempt", attempt)
				_ = handle.Advance(types.TxStatusNotFound)
			}
			switch handle.Status() {
			case types.TxStatusSuccess:
				if info.ResultMetaXDR == "" {
					return info, chain.NewTxError(chain.ErrEmptyResultMetadata, op.String(), handle.Hash, "", nil)
				}
				log.Info("transaction confirmed", "op", op, "hash", handle.Hash, "ledger", info.Ledger, "attempt", attempt)
				return info, nil
			case types.TxStatusFailed:
				log.Warn("transaction failed", "op", op, "hash", handle.Hash, "resultXdr", info.ResultXDR)
				return info, chain.NewTxError(chain.ErrRemoteExecution, op.String(), handle.Hash, info.ResultXDR, nil)
			}
			log.Trace("transaction not found yet", "op", op, "hash", handle.Hash, "attempt", attempt)
		}

		if attempt >= opts.MaxAttempts {
			log.Warn("transaction confirmation timed out", "op", op, "hash", handle.Hash, "attempts", attempt)
			return nil, chain.NewTxError(chain.ErrTimedOut, op.String(), handle.Hash, "", nil)
		}

		select {
		case <-ctx.Done():
			return nil, abandoned(op, handle, ctx.Err())
		case <-ticker.C:
		}
	}
}

func abandoned(op types.Operation, handle *types.SubmissionHandle, err error) error {
	log.Warn("stop waiting for transaction, it may still be applied", "op", op, "hash", handle.Hash, "err", err)
	kind := chain.ErrAbandoned
	if errors.Is(err, context.DeadlineExceeded) {
		kind = chain.ErrTimedOut
	}
	return chain.NewTxError(kind, op.String(), handle.Hash, "", err)
}
