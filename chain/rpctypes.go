package chain

import (
	"encoding/json"

	"github.com/anyswap/soroban-counter/common"
)

// LatestLedger getLatestLedger result
type LatestLedger struct {
	ID              string `json:"id"`
	ProtocolVersion uint32 `json:"protocolVersion"`
	Sequence        uint32 `json:"sequence"`
}

// LedgerEntry base64 xdr encoded ledger entry
type LedgerEntry struct {
	Key                string `json:"key"`
	XDR                string `json:"xdr"`
	LastModifiedLedger uint32 `json:"lastModifiedLedgerSeq"`
	LiveUntilLedger    uint32 `json:"liveUntilLedgerSeq,omitempty"`
}

// LedgerEntries getLedgerEntries result
type LedgerEntries struct {
	Entries      []LedgerEntry `json:"entries"`
	LatestLedger uint32        `json:"latestLedger"`
}

// SimulateHostFunctionResult per host function simulation result
type SimulateHostFunctionResult struct {
	Auth []string `json:"auth"`
	XDR  string   `json:"xdr"`
}

// SimulateCost simulation resource cost
type SimulateCost struct {
	CPUInsns string `json:"cpuInsns"`
	MemBytes string `json:"memBytes"`
}

// SimulateResult simulateTransaction result
type SimulateResult struct {
	Error           string                       `json:"error,omitempty"`
	TransactionData string                       `json:"transactionData"`
	MinResourceFee  string                       `json:"minResourceFee"`
	Events          []string                     `json:"events,omitempty"`
	Results         []SimulateHostFunctionResult `json:"results,omitempty"`
	Cost            *SimulateCost                `json:"cost,omitempty"`
	LatestLedger    uint32                       `json:"latestLedger"`
}

// ResourceFee parse min resource fee
func (r *SimulateResult) ResourceFee() (int64, error) {
	if r.MinResourceFee == "" {
		return 0, nil
	}
	return common.GetInt64FromStr(r.MinResourceFee)
}

// SendResult sendTransaction result
type SendResult struct {
	Status                string `json:"status"`
	Hash                  string `json:"hash"`
	LatestLedger          uint32 `json:"latestLedger"`
	LatestLedgerCloseTime string `json:"latestLedgerCloseTime"`
	ErrorResultXDR        string `json:"errorResultXdr,omitempty"`
}

// TransactionInfo getTransaction result
type TransactionInfo struct {
	Status                string `json:"status"`
	LatestLedger          uint32 `json:"latestLedger"`
	LatestLedgerCloseTime string `json:"latestLedgerCloseTime"`
	OldestLedger          uint32 `json:"oldestLedger"`
	ApplicationOrder      int    `json:"applicationOrder,omitempty"`
	FeeBump               bool   `json:"feeBump,omitempty"`
	EnvelopeXDR           string `json:"envelopeXdr,omitempty"`
	ResultXDR             string `json:"resultXdr,omitempty"`
	ResultMetaXDR         string `json:"resultMetaXdr,omitempty"`
	Ledger                uint32 `json:"ledger,omitempty"`
	CreatedAt             string `json:"createdAt,omitempty"`
}

// EventFilter getEvents filter
type EventFilter struct {
	Type        string     `json:"type,omitempty"`
	ContractIDs []string   `json:"contractIds,omitempty"`
	Topics      [][]string `json:"topics,omitempty"`
}

// EventPagination getEvents pagination
type EventPagination struct {
	Cursor string `json:"cursor,omitempty"`
	Limit  uint   `json:"limit,omitempty"`
}

// EventsRequest getEvents params
type EventsRequest struct {
	StartLedger uint32           `json:"startLedger,omitempty"`
	Filters     []EventFilter    `json:"filters"`
	Pagination  *EventPagination `json:"pagination,omitempty"`
}

// EventInfo contract event, topics and value are base64 xdr ScVal
type EventInfo struct {
	Type                     string   `json:"type"`
	Ledger                   uint32   `json:"ledger"`
	LedgerClosedAt           string   `json:"ledgerClosedAt"`
	ContractID               string   `json:"contractId"`
	ID                       string   `json:"id"`
	PagingToken              string   `json:"pagingToken,omitempty"`
	Topic                    []string `json:"topic"`
	Value                    string   `json:"value"`
	InSuccessfulContractCall bool     `json:"inSuccessfulContractCall"`
	TxHash                   string   `json:"txHash,omitempty"`
}

// UnmarshalJSON accepts value as plain string or legacy {"xdr": "..."} object
func (e *EventInfo) UnmarshalJSON(data []byte) error {
	type plain EventInfo
	var raw struct {
		plain
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = EventInfo(raw.plain)
	if len(raw.Value) == 0 || string(raw.Value) == "null" {
		e.Value = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(raw.Value, &s); err == nil {
		e.Value = s
		return nil
	}
	var obj struct {
		XDR string `json:"xdr"`
	}
	if err := json.Unmarshal(raw.Value, &obj); err != nil {
		return err
	}
	e.Value = obj.XDR
	return nil
}

// EventsResult getEvents result
type EventsResult struct {
	Events       []EventInfo `json:"events"`
	LatestLedger uint32      `json:"latestLedger"`
	Cursor       string      `json:"cursor,omitempty"`
}
