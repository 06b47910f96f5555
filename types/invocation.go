package types

import (
	"errors"
	"sync/atomic"
)

// ErrAlreadySigned a simulated invocation can be handed to the signer only once
var ErrAlreadySigned = errors.New("invocation already consumed by signing")

// AccountRef the signer's on-chain identity record.
// Sequence is the current account sequence; the next transaction uses Sequence+1.
type AccountRef struct {
	Address  string `json:"address"`
	Sequence int64  `json:"sequence"`
}

// UnsignedInvocation a built contract call which is not simulated nor signed
type UnsignedInvocation struct {
	Source     AccountRef `json:"source"`
	Operation  Operation  `json:"operation"`
	ContractID string     `json:"contractId"`
	FeeCeiling int64      `json:"feeCeiling"`
	NetworkID  string     `json:"networkId"`
	Timeout    int64      `json:"timeout"` // seconds
	MaxTime    int64      `json:"maxTime"` // unix seconds, upper time bound

	EnvelopeXDR string `json:"envelopeXdr"`
}

// SimulationCost resource usage reported by simulation
type SimulationCost struct {
	CPUInsns uint64 `json:"cpuInsns"`
	MemBytes uint64 `json:"memBytes"`
}

// SimulatedInvocation unsigned invocation with node computed resources.
// EnvelopeXDR is the prepared envelope (resources attached, fee raised).
// ResultXDR is the candidate return value, only meaningful for read calls.
type SimulatedInvocation struct {
	Unsigned        *UnsignedInvocation `json:"unsigned"`
	MinResourceFee  int64               `json:"minResourceFee"`
	TransactionData string              `json:"transactionData"`
	Auth            []string            `json:"auth,omitempty"`
	ResultXDR       string              `json:"resultXdr,omitempty"`
	Cost            *SimulationCost     `json:"cost,omitempty"`
	LatestLedger    uint32              `json:"latestLedger"`
	EnvelopeXDR     string              `json:"envelopeXdr"`

	signed int32
}

// TakeForSigning returns the prepared envelope and marks it consumed
func (s *SimulatedInvocation) TakeForSigning() (string, error) {
	if !atomic.CompareAndSwapInt32(&s.signed, 0, 1) {
		return "", ErrAlreadySigned
	}
	return s.EnvelopeXDR, nil
}

// IsConsumed has been handed to the signer
func (s *SimulatedInvocation) IsConsumed() bool {
	return atomic.LoadInt32(&s.signed) == 1
}

// TotalFee fee ceiling plus resource fee
func (s *SimulatedInvocation) TotalFee() int64 {
	if s.Unsigned == nil {
		return s.MinResourceFee
	}
	return s.Unsigned.FeeCeiling + s.MinResourceFee
}

// SignedEnvelope signed transaction envelope returned by the signer
type SignedEnvelope struct {
	EnvelopeXDR string    `json:"envelopeXdr"`
	NetworkID   string    `json:"networkId"`
	Operation   Operation `json:"operation"`
}
