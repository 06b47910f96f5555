package counterapi

import (
	"github.com/anyswap/soroban-counter/types"
	"github.com/anyswap/soroban-counter/worker"
)

// ActionResult type alias
type ActionResult = worker.Outcome

// Record type alias
type Record = worker.Record

// Event type alias
type Event = worker.Event

// ServerInfo server info
type ServerInfo struct {
	Identifier string
	Network    string
	ContractID string
	RPCAddress []string
	SignerMode string
	Address    string
	Version    string
}

// CounterInfo counter info
type CounterInfo struct {
	Value   types.LedgerValue `json:"value"`
	Busy    bool              `json:"busy"`
	Address string            `json:"address"`
}

// ConnectResult connect result
type ConnectResult struct {
	Address string            `json:"address"`
	Value   types.LedgerValue `json:"value"`
}

// AllowResult allow result
type AllowResult struct {
	Allowed bool `json:"allowed"`
}
