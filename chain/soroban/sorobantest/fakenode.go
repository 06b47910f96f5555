// Package sorobantest provides an in-memory soroban node and signer for tests.
package sorobantest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/stellar/go/keypair"
	"github.com/stellar/go/network"
	"github.com/stellar/go/strkey"
	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"

	"github.com/anyswap/soroban-counter/chain"
)

// FailedResultXDR result xdr returned for FAILED transactions
const FailedResultXDR = "AAAAAAAAAGT////7AAAAAA=="

// ErrUnavailable returned when the node is switched off
var ErrUnavailable = errors.New("node unavailable")

// ContractID deterministic contract id used by the fake node
func ContractID() string {
	id, err := strkey.Encode(strkey.VersionByteContract, make([]byte, 32))
	if err != nil {
		panic(err)
	}
	return id
}

type pendingTx struct {
	op    string
	value uint32
	polls int
}

// FakeNode in-memory counter contract node.
// The counter mutation is applied when the transaction is accepted.
type FakeNode struct {
	mu sync.Mutex

	Passphrase string
	ContractID string
	StorageKey string

	accounts map[string]int64
	counter  uint32
	written  bool
	events   []chain.EventInfo
	ledger   uint32
	txs      map[string]*pendingTx

	// TxStatuses statuses returned by successive getTransaction calls of a
	// hash, the last one repeats. Defaults to SUCCESS.
	TxStatuses []string
	// SendStatus sendTransaction status, defaults to PENDING
	SendStatus string
	// SendHash hash reported by sendTransaction instead of the real one
	SendHash string
	// SimulateError error text returned by simulation
	SimulateError string
	// EmptyMeta SUCCESS without resultMetaXdr
	EmptyMeta bool
	// ReturnsValue increment and decrement return the new u32 value.
	// The deployed contract returns void like reset does.
	ReturnsValue bool
	// Unavailable all calls fail
	Unavailable bool
	// GetTransactionHook called before each getTransaction
	GetTransactionHook func(ctx context.Context, hash string, attempt int) error

	calls map[string]int
}

// NewFakeNode new node with untouched counter
func NewFakeNode() *FakeNode {
	return &FakeNode{
		Passphrase: network.TestNetworkPassphrase,
		ContractID: ContractID(),
		StorageKey: "COUNTER",
		accounts:   make(map[string]int64),
		txs:        make(map[string]*pendingTx),
		ledger:     1000,
		calls:      make(map[string]int),
	}
}

// AddAccount fund account with sequence
func (n *FakeNode) AddAccount(address string, sequence int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.accounts[address] = sequence
}

// AccountSequence current account sequence
func (n *FakeNode) AccountSequence(address string) int64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.accounts[address]
}

// SetCounter set counter value and write it to storage
func (n *FakeNode) SetCounter(v uint32) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.counter = v
	n.written = true
}

// Counter current counter value on ledger
func (n *FakeNode) Counter() uint32 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.counter
}

// Calls number of calls of method
func (n *FakeNode) Calls(method string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls[method]
}

// Events emitted events
func (n *FakeNode) Events() []chain.EventInfo {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]chain.EventInfo(nil), n.events...)
}

func (n *FakeNode) enter(method string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls[method]++
	if n.Unavailable {
		return ErrUnavailable
	}
	return nil
}

// GetLatestLedger impl
func (n *FakeNode) GetLatestLedger(ctx context.Context) (*chain.LatestLedger, error) {
	if err := n.enter("getLatestLedger"); err != nil {
		return nil, err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return &chain.LatestLedger{Sequence: n.ledger, ProtocolVersion: 21}, nil
}

// GetLedgerEntries impl
func (n *FakeNode) GetLedgerEntries(ctx context.Context, keys []string) (*chain.LedgerEntries, error) {
	if err := n.enter("getLedgerEntries"); err != nil {
		return nil, err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	result := &chain.LedgerEntries{LatestLedger: n.ledger}
	for _, keyB64 := range keys {
		var key xdr.LedgerKey
		if err := xdr.SafeUnmarshalBase64(keyB64, &key); err != nil {
			return nil, err
		}
		var data *xdr.LedgerEntryData
		var err error
		switch key.Type {
		case xdr.LedgerEntryTypeAccount:
			address := key.Account.AccountId.Address()
			seq, exist := n.accounts[address]
			if !exist {
				continue
			}
			data = AccountEntryData(key.Account.AccountId, seq)
		case xdr.LedgerEntryTypeContractData:
			data, err = InstanceEntryData(n.ContractID, n.StorageKey, n.counter, n.written)
			if err != nil {
				return nil, err
			}
		default:
			continue
		}
		entryXDR, err := xdr.MarshalBase64(*data)
		if err != nil {
			return nil, err
		}
		result.Entries = append(result.Entries, chain.LedgerEntry{Key: keyB64, XDR: entryXDR, LastModifiedLedger: n.ledger})
	}
	return result, nil
}

func invokedFunction(envelopeXDR string) (*txnbuild.Transaction, string, error) {
	gtx, err := txnbuild.TransactionFromXDR(envelopeXDR)
	if err != nil {
		return nil, "", err
	}
	tx, ok := gtx.Transaction()
	if !ok || len(tx.Operations()) != 1 {
		return nil, "", errors.New("expect one operation transaction")
	}
	invoke, ok := tx.Operations()[0].(*txnbuild.InvokeHostFunction)
	if !ok || invoke.HostFunction.InvokeContract == nil {
		return nil, "", errors.New("expect invoke contract operation")
	}
	return tx, string(invoke.HostFunction.InvokeContract.FunctionName), nil
}

func apply(fn string, v uint32) (uint32, error) {
	switch fn {
	case "increment":
		return v + 1, nil
	case "decrement":
		if v == 0 {
			return 0, errors.New("HostError: Error(Contract, #1)")
		}
		return v - 1, nil
	case "reset":
		return 0, nil
	case "get_count":
		return v, nil
	default:
		return 0, fmt.Errorf("HostError: Error(WasmVm, MissingValue) function %v not found", fn)
	}
}

// SimulateTransaction impl
func (n *FakeNode) SimulateTransaction(ctx context.Context, envelopeXDR string) (*chain.SimulateResult, error) {
	if err := n.enter("simulateTransaction"); err != nil {
		return nil, err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.SimulateError != "" {
		return &chain.SimulateResult{Error: n.SimulateError, LatestLedger: n.ledger}, nil
	}
	_, fn, err := invokedFunction(envelopeXDR)
	if err != nil {
		return &chain.SimulateResult{Error: err.Error(), LatestLedger: n.ledger}, nil
	}
	value, err := apply(fn, n.counter)
	if err != nil {
		return &chain.SimulateResult{Error: err.Error(), LatestLedger: n.ledger}, nil
	}
	retXDR, err := xdr.MarshalBase64(n.returnValue(fn, value))
	if err != nil {
		return nil, err
	}
	txData, err := xdr.MarshalBase64(xdr.SorobanTransactionData{ResourceFee: 2345})
	if err != nil {
		return nil, err
	}
	return &chain.SimulateResult{
		TransactionData: txData,
		MinResourceFee:  "2345",
		Results:         []chain.SimulateHostFunctionResult{{Auth: []string{}, XDR: retXDR}},
		Cost:            &chain.SimulateCost{CPUInsns: "1200000", MemBytes: "650000"},
		LatestLedger:    n.ledger,
	}, nil
}

func (n *FakeNode) returnValue(fn string, value uint32) xdr.ScVal {
	if fn != "get_count" && (!n.ReturnsValue || fn == "reset") {
		return xdr.ScVal{Type: xdr.ScValTypeScvVoid}
	}
	u := xdr.Uint32(value)
	return xdr.ScVal{Type: xdr.ScValTypeScvU32, U32: &u}
}

// SendTransaction impl, accepted transactions are applied immediately
func (n *FakeNode) SendTransaction(ctx context.Context, envelopeXDR string) (*chain.SendResult, error) {
	if err := n.enter("sendTransaction"); err != nil {
		return nil, err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	tx, fn, err := invokedFunction(envelopeXDR)
	if err != nil {
		return &chain.SendResult{Status: "ERROR", ErrorResultXDR: FailedResultXDR}, nil
	}
	hash, err := tx.HashHex(n.Passphrase)
	if err != nil {
		return nil, err
	}
	status := n.SendStatus
	if status == "" {
		status = "PENDING"
	}
	if status != "PENDING" {
		return &chain.SendResult{Status: status, Hash: hash, ErrorResultXDR: FailedResultXDR, LatestLedger: n.ledger}, nil
	}
	source := tx.SourceAccount()
	if source.Sequence != n.accounts[source.AccountID]+1 {
		return &chain.SendResult{Status: "ERROR", Hash: hash, ErrorResultXDR: FailedResultXDR, LatestLedger: n.ledger}, nil
	}
	n.accounts[source.AccountID] = source.Sequence
	n.ledger++

	value, err := apply(fn, n.counter)
	if err == nil {
		n.counter, n.written = value, true
		n.emit(fn, value, hash)
	}
	n.txs[hash] = &pendingTx{op: fn, value: value}
	if n.SendHash != "" {
		hash = n.SendHash
	}
	return &chain.SendResult{Status: "PENDING", Hash: hash, LatestLedger: n.ledger}, nil
}

func (n *FakeNode) emit(fn string, value uint32, hash string) {
	topic0, _ := xdr.MarshalBase64(symbol("count"))
	topic1, _ := xdr.MarshalBase64(symbol(fn))
	u := xdr.Uint32(value)
	val, _ := xdr.MarshalBase64(xdr.ScVal{Type: xdr.ScValTypeScvU32, U32: &u})
	n.events = append(n.events, chain.EventInfo{
		Type:                     "contract",
		Ledger:                   n.ledger,
		ContractID:               n.ContractID,
		ID:                       fmt.Sprintf("%019d-%010d", n.ledger, len(n.events)),
		Topic:                    []string{topic0, topic1},
		Value:                    val,
		InSuccessfulContractCall: true,
		TxHash:                   hash,
	})
}

func symbol(s string) xdr.ScVal {
	sym := xdr.ScSymbol(s)
	return xdr.ScVal{Type: xdr.ScValTypeScvSymbol, Sym: &sym}
}

// GetTransaction impl
func (n *FakeNode) GetTransaction(ctx context.Context, hash string) (*chain.TransactionInfo, error) {
	if err := n.enter("getTransaction"); err != nil {
		return nil, err
	}
	n.mu.Lock()
	ptx, exist := n.txs[hash]
	if !exist {
		n.mu.Unlock()
		return &chain.TransactionInfo{Status: "NOT_FOUND", LatestLedger: n.ledger}, nil
	}
	ptx.polls++
	attempt := ptx.polls
	hook := n.GetTransactionHook
	n.mu.Unlock()

	if hook != nil {
		if err := hook(ctx, hash, attempt); err != nil {
			return nil, err
		}
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	status := "SUCCESS"
	if len(n.TxStatuses) > 0 {
		idx := attempt - 1
		if idx >= len(n.TxStatuses) {
			idx = len(n.TxStatuses) - 1
		}
		status = n.TxStatuses[idx]
	}
	info := &chain.TransactionInfo{Status: status, LatestLedger: n.ledger}
	switch status {
	case "SUCCESS":
		info.Ledger = n.ledger
		if !n.EmptyMeta {
			meta, err := ResultMeta(n.returnValue(ptx.op, ptx.value))
			if err != nil {
				return nil, err
			}
			info.ResultMetaXDR = meta
		}
	case "FAILED":
		info.Ledger = n.ledger
		info.ResultXDR = FailedResultXDR
	}
	return info, nil
}

// GetEvents impl, filters by contract id and start ledger only.
// Events come back oldest first, a cursor resumes after the event id.
func (n *FakeNode) GetEvents(ctx context.Context, req *chain.EventsRequest) (*chain.EventsResult, error) {
	if err := n.enter("getEvents"); err != nil {
		return nil, err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	var limit uint
	var cursor string
	if req.Pagination != nil {
		limit, cursor = req.Pagination.Limit, req.Pagination.Cursor
	}
	if cursor != "" && req.StartLedger != 0 {
		return nil, errors.New("startLedger and cursor cannot both be set")
	}
	result := &chain.EventsResult{LatestLedger: n.ledger}
	skipping := cursor != ""
	for _, ev := range n.events {
		if skipping {
			if ev.ID == cursor {
				skipping = false
			}
			continue
		}
		if ev.Ledger < req.StartLedger {
			continue
		}
		result.Events = append(result.Events, ev)
		result.Cursor = ev.ID
		if limit > 0 && uint(len(result.Events)) >= limit {
			break
		}
	}
	return result, nil
}

// ResultMeta base64 TransactionMeta V3 with return value
func ResultMeta(ret xdr.ScVal) (string, error) {
	meta := xdr.TransactionMeta{
		V: 3,
		V3: &xdr.TransactionMetaV3{
			SorobanMeta: &xdr.SorobanTransactionMeta{ReturnValue: ret},
		},
	}
	return xdr.MarshalBase64(meta)
}

// AccountEntryData account ledger entry with sequence
func AccountEntryData(aid xdr.AccountId, seq int64) *xdr.LedgerEntryData {
	return &xdr.LedgerEntryData{
		Type: xdr.LedgerEntryTypeAccount,
		Account: &xdr.AccountEntry{
			AccountId: aid,
			Balance:   xdr.Int64(10000 * 10000000),
			SeqNum:    xdr.SequenceNumber(seq),
		},
	}
}

// InstanceEntryData contract instance entry, the storage holds the
// counter under storageKey only if written
func InstanceEntryData(contractID, storageKey string, counter uint32, written bool) (*xdr.LedgerEntryData, error) {
	raw, err := strkey.Decode(strkey.VersionByteContract, contractID)
	if err != nil {
		return nil, err
	}
	var contractHash, wasmHash xdr.Hash
	copy(contractHash[:], raw)
	wasmHash[0] = 1
	storage := xdr.ScMap{}
	if written {
		u := xdr.Uint32(counter)
		storage = append(storage, xdr.ScMapEntry{
			Key: symbol(storageKey),
			Val: xdr.ScVal{Type: xdr.ScValTypeScvU32, U32: &u},
		})
	}
	return &xdr.LedgerEntryData{
		Type: xdr.LedgerEntryTypeContractData,
		ContractData: &xdr.ContractDataEntry{
			Contract: xdr.ScAddress{
				Type:       xdr.ScAddressTypeScAddressTypeContract,
				ContractId: &contractHash,
			},
			Key:        xdr.ScVal{Type: xdr.ScValTypeScvLedgerKeyContractInstance},
			Durability: xdr.ContractDataDurabilityPersistent,
			Val: xdr.ScVal{
				Type: xdr.ScValTypeScvContractInstance,
				Instance: &xdr.ScContractInstance{
					Executable: xdr.ContractExecutable{
						Type:     xdr.ContractExecutableTypeContractExecutableWasm,
						WasmHash: &wasmHash,
					},
					Storage: &storage,
				},
			},
		},
	}, nil
}

// RandomAccount new random keypair
func RandomAccount() *keypair.Full {
	kp, err := keypair.Random()
	if err != nil {
		panic(err)
	}
	return kp
}
