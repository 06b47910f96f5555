// Package soroban implements the counter transaction lifecycle against a
// Soroban RPC node: build, simulate, submit, confirm and resolve.
package soroban

import (
	"time"

	"github.com/stellar/go/network"

	"github.com/anyswap/soroban-counter/chain"
)

// defaults
const (
	DefaultContractID     = "CBOZO7BFB2YM4AFEYJYPLRMWKOR5NXP2UK7CMP72D7KJQ6TGL27S2TJA"
	DefaultRPCAddress     = "https://soroban-testnet.stellar.org:443"
	DefaultStorageKey     = "COUNTER"
	DefaultFeeCeiling     = 100
	DefaultTimeoutSeconds = 30
	DefaultPollInterval   = time.Second
	DefaultMaxAttempts    = 30
	DefaultEventLookback  = 2000
	DefaultEventLimit     = 20

	// EventTopic first topic of counter contract events
	EventTopic = "count"
)

// DefaultNetworkPassphrase testnet passphrase
var DefaultNetworkPassphrase = network.TestNetworkPassphrase

// Config static settings of the counter contract
type Config struct {
	NetworkPassphrase string
	ContractID        string
	StorageKey        string
	EventLookback     uint32
	EventLimit        uint
}

// TxOptions per invocation build settings
type TxOptions struct {
	FeeCeiling     int64
	TimeoutSeconds int64
}

// PollOptions confirmation polling bounds
type PollOptions struct {
	Interval    time.Duration
	MaxAttempts int
}

// Client counter contract client
type Client struct {
	Config
	node chain.Node
}

// NewClient new client, zero config fields take defaults
func NewClient(node chain.Node, cfg Config) *Client {
	if cfg.NetworkPassphrase == "" {
		cfg.NetworkPassphrase = DefaultNetworkPassphrase
	}
	if cfg.ContractID == "" {
		cfg.ContractID = DefaultContractID
	}
	if cfg.StorageKey == "" {
		cfg.StorageKey = DefaultStorageKey
	}
	if cfg.EventLookback == 0 {
		cfg.EventLookback = DefaultEventLookback
	}
	if cfg.EventLimit == 0 {
		cfg.EventLimit = DefaultEventLimit
	}
	return &Client{Config: cfg, node: node}
}

// Node returns the underlying node
func (c *Client) Node() chain.Node {
	return c.node
}

func (o TxOptions) withDefaults() TxOptions {
	if o.FeeCeiling <= 0 {
		o.FeeCeiling = DefaultFeeCeiling
	}
	if o.TimeoutSeconds <= 0 {
		o.TimeoutSeconds = DefaultTimeoutSeconds
	}
	return o
}

func (o PollOptions) withDefaults() PollOptions {
	if o.Interval <= 0 {
		o.Interval = DefaultPollInterval
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	return o
}
