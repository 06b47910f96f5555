package soroban

import (
	"context"
	"strings"

	"github.com/stellar/go/txnbuild"

	"github.com/anyswap/soroban-counter/chain"
	"github.com/anyswap/soroban-counter/log"
	"github.com/anyswap/soroban-counter/types"
)

// Submit send signed envelope. Any status other than PENDING is a hard
// stop with SubmissionRejected, it is not polled. The handle carries the
// locally computed hash, a node reporting another hash is rejected.
func (c *Client) Submit(ctx context.Context, signed *types.SignedEnvelope) (*types.SubmissionHandle, error) {
	op := signed.Operation.String()
	if signed.NetworkID != "" && signed.NetworkID != c.NetworkPassphrase {
		return nil, chain.NewTxError(chain.ErrSubmissionRejected, op, "", signed.NetworkID, chain.ErrNetworkMismatch)
	}
	txHash, err := c.TransactionHash(signed.EnvelopeXDR)
	if err != nil {
		return nil, chain.NewTxError(chain.ErrSubmissionRejected, op, "", "malformed envelope", err)
	}
	res, err := c.node.SendTransaction(ctx, signed.EnvelopeXDR)
	if err != nil {
		log.Info("SendTransaction failed", "op", op, "hash", txHash, "err", err)
		return nil, chain.NewTxError(chain.ErrSubmissionRejected, op, txHash, "", err)
	}
	if types.TxStatus(res.Status) != types.TxStatusPending {
		log.Info("SendTransaction rejected", "op", op, "hash", txHash, "status", res.Status, "errorResultXdr", res.ErrorResultXDR)
		detail := res.Status
		if res.ErrorResultXDR != "" {
			detail += " " + res.ErrorResultXDR
		}
		return nil, chain.NewTxError(chain.ErrSubmissionRejected, op, txHash, detail, nil)
	}
	if res.Hash != "" && !strings.EqualFold(res.Hash, txHash) {
		log.Warn("SendTransaction hash mismatch", "op", op, "want", txHash, "have", res.Hash)
		return nil, chain.NewTxError(chain.ErrSubmissionRejected, op, txHash, "hash mismatch "+res.Hash, chain.ErrWrongResponse)
	}
	log.Info("SendTransaction success", "op", op, "hash", txHash)
	return types.NewSubmissionHandle(txHash), nil
}

// TransactionHash hex hash of the envelope on the client network,
// fee bump envelopes hash the outer transaction
func (c *Client) TransactionHash(envelopeXDR string) (string, error) {
	gtx, err := txnbuild.TransactionFromXDR(envelopeXDR)
	if err != nil {
		return "", err
	}
	if tx, ok := gtx.Transaction(); ok {
		return tx.HashHex(c.NetworkPassphrase)
	}
	if feeBump, ok := gtx.FeeBump(); ok {
		return feeBump.HashHex(c.NetworkPassphrase)
	}
	return "", chain.ErrWrongResponse
}
