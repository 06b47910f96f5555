package soroban

import (
	"context"
	"fmt"
	"time"

	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"

	"github.com/anyswap/soroban-counter/chain"
	"github.com/anyswap/soroban-counter/common"
	"github.com/anyswap/soroban-counter/log"
	"github.com/anyswap/soroban-counter/types"
)

// BuildInvocation build unsigned contract invocation from a fetched account.
// The transaction uses sequence account.Sequence+1.
func BuildInvocation(account *types.AccountRef, op types.Operation, contractID string, feeCeiling int64, networkID string, timeoutSeconds int64) (*types.UnsignedInvocation, error) {
	if account == nil || account.Address == "" {
		return nil, chain.NewTxError(chain.ErrInvalidAccountState, op.String(), "", "", chain.ErrNoAddress)
	}
	if !op.IsValid() {
		return nil, types.ErrUnknownOperation
	}
	if feeCeiling < txnbuild.MinBaseFee {
		feeCeiling = txnbuild.MinBaseFee
	}
	unsigned := &types.UnsignedInvocation{
		Source:     *account,
		Operation:  op,
		ContractID: contractID,
		FeeCeiling: feeCeiling,
		NetworkID:  networkID,
		Timeout:    timeoutSeconds,
		MaxTime:    time.Now().Add(time.Duration(timeoutSeconds) * time.Second).Unix(),
	}
	tx, err := newInvokeTransaction(unsigned, feeCeiling, nil)
	if err != nil {
		return nil, err
	}
	unsigned.EnvelopeXDR, err = tx.Base64()
	if err != nil {
		return nil, err
	}
	return unsigned, nil
}

// resources is nil before simulation
func newInvokeTransaction(unsigned *types.UnsignedInvocation, fee int64, resources *simulatedResources) (*txnbuild.Transaction, error) {
	contract, err := ContractAddress(unsigned.ContractID)
	if err != nil {
		return nil, err
	}
	invoke := &txnbuild.InvokeHostFunction{
		HostFunction: xdr.HostFunction{
			Type: xdr.HostFunctionTypeHostFunctionTypeInvokeContract,
			InvokeContract: &xdr.InvokeContractArgs{
				ContractAddress: contract,
				FunctionName:    xdr.ScSymbol(unsigned.Operation),
				Args:            xdr.ScVec{},
			},
		},
	}
	if resources != nil {
		invoke.Auth = resources.auth
		invoke.Ext = xdr.TransactionExt{V: 1, SorobanData: &resources.data}
	}
	return txnbuild.NewTransaction(
		txnbuild.TransactionParams{
			SourceAccount: &txnbuild.SimpleAccount{
				AccountID: unsigned.Source.Address,
				Sequence:  unsigned.Source.Sequence,
			},
			IncrementSequenceNum: true,
			BaseFee:              fee,
			Preconditions: txnbuild.Preconditions{
				TimeBounds: txnbuild.NewTimebounds(0, unsigned.MaxTime),
			},
			Operations: []txnbuild.Operation{invoke},
		},
	)
}

type simulatedResources struct {
	data xdr.SorobanTransactionData
	auth []xdr.SorobanAuthorizationEntry
}

// Build fetch a fresh account sequence and build unsigned invocation
func (c *Client) Build(ctx context.Context, address string, op types.Operation, opts TxOptions) (*types.UnsignedInvocation, error) {
	opts = opts.withDefaults()
	account, err := c.GetAccount(ctx, address)
	if err != nil {
		return nil, err
	}
	unsigned, err := BuildInvocation(account, op, c.ContractID, opts.FeeCeiling, c.NetworkPassphrase, opts.TimeoutSeconds)
	if err != nil {
		return nil, err
	}
	log.Debug("build invocation success", "op", op, "source", address, "sequence", account.Sequence+1)
	return unsigned, nil
}

// Simulate simulate and prepare the invocation, fails with SimulationError.
// Simulation errors are surfaced without retry.
func (c *Client) Simulate(ctx context.Context, unsigned *types.UnsignedInvocation) (*types.SimulatedInvocation, error) {
	op := unsigned.Operation.String()
	res, err := c.node.SimulateTransaction(ctx, unsigned.EnvelopeXDR)
	if err != nil {
		return nil, chain.NewTxError(chain.ErrSimulation, op, "", "", err)
	}
	if res.Error != "" {
		return nil, chain.NewTxError(chain.ErrSimulation, op, "", res.Error, nil)
	}
	if len(res.Results) != 1 {
		return nil, chain.NewTxError(chain.ErrSimulation, op, "", fmt.Sprintf("expect 1 host function result, got %v", len(res.Results)), nil)
	}
	resourceFee, err := res.ResourceFee()
	if err != nil {
		return nil, chain.NewTxError(chain.ErrSimulation, op, "", "wrong minResourceFee "+res.MinResourceFee, err)
	}

	resources := &simulatedResources{}
	if err = xdr.SafeUnmarshalBase64(res.TransactionData, &resources.data); err != nil {
		return nil, chain.NewTxError(chain.ErrSimulation, op, "", "wrong transactionData", err)
	}
	for _, authB64 := range res.Results[0].Auth {
		var entry xdr.SorobanAuthorizationEntry
		if err = xdr.SafeUnmarshalBase64(authB64, &entry); err != nil {
			return nil, chain.NewTxError(chain.ErrSimulation, op, "", "wrong auth entry", err)
		}
		resources.auth = append(resources.auth, entry)
	}

	tx, err := newInvokeTransaction(unsigned, unsigned.FeeCeiling+resourceFee, resources)
	if err != nil {
		return nil, chain.NewTxError(chain.ErrSimulation, op, "", "prepare transaction failed", err)
	}
	envelope, err := tx.Base64()
	if err != nil {
		return nil, chain.NewTxError(chain.ErrSimulation, op, "", "encode prepared transaction failed", err)
	}

	sim := &types.SimulatedInvocation{
		Unsigned:        unsigned,
		MinResourceFee:  resourceFee,
		TransactionData: res.TransactionData,
		Auth:            res.Results[0].Auth,
		ResultXDR:       res.Results[0].XDR,
		LatestLedger:    res.LatestLedger,
		EnvelopeXDR:     envelope,
	}
	if res.Cost != nil {
		cpu, _ := common.GetUint64FromStr(res.Cost.CPUInsns)
		mem, _ := common.GetUint64FromStr(res.Cost.MemBytes)
		sim.Cost = &types.SimulationCost{CPUInsns: cpu, MemBytes: mem}
	}
	log.Debug("simulate invocation success", "op", op, "resourceFee", resourceFee, "latestLedger", res.LatestLedger)
	return sim, nil
}

// SimulateGetCount read counter value by simulating get_count
func (c *Client) SimulateGetCount(ctx context.Context, address string) (uint32, error) {
	unsigned, err := c.Build(ctx, address, types.OpGetCount, TxOptions{})
	if err != nil {
		return 0, err
	}
	sim, err := c.Simulate(ctx, unsigned)
	if err != nil {
		return 0, err
	}
	return DecodeU32Base64(sim.ResultXDR)
}
