package params

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/anyswap/soroban-counter/chain/soroban"
	"github.com/anyswap/soroban-counter/common"
	"github.com/anyswap/soroban-counter/log"
)

const (
	defaultAPIPort = 11556

	// SignerModeRemote sign by remote wallet signer service
	SignerModeRemote = "remote"
	// SignerModeKeystore sign by local encrypted keystore
	SignerModeKeystore = "keystore"
)

var (
	counterConfig     *CounterConfig
	configLock        sync.RWMutex
	loadConfigStarter sync.Once
)

// CounterConfig config items (decode from toml file)
type CounterConfig struct {
	Identifier string
	Network    *NetworkConfig
	Fee        *FeeConfig       `toml:",omitempty" json:",omitempty"`
	Poll       *PollConfig      `toml:",omitempty" json:",omitempty"`
	Signer     *SignerConfig    `toml:",omitempty" json:",omitempty"`
	Refresh    *RefreshConfig   `toml:",omitempty" json:",omitempty"`
	APIServer  *APIServerConfig `toml:",omitempty" json:",omitempty"`
	History    *HistoryConfig   `toml:",omitempty" json:",omitempty"`
}

// NetworkConfig ledger network and contract
type NetworkConfig struct {
	Passphrase string
	ContractID string
	RPCAddress []string
	StorageKey string `toml:",omitempty" json:",omitempty"`
}

// FeeConfig invocation fee settings, hot reloadable
type FeeConfig struct {
	FeeCeiling     int64
	TimeoutSeconds int64
}

// PollConfig confirmation polling settings, hot reloadable
type PollConfig struct {
	IntervalMs  uint64
	MaxAttempts int
}

// SignerConfig external signer
type SignerConfig struct {
	Mode         string
	RPCAddress   string `toml:",omitempty" json:",omitempty"`
	RPCTimeout   int    `toml:",omitempty" json:",omitempty"`
	KeyFile      string `toml:",omitempty" json:"-"`
	PasswordFile string `toml:",omitempty" json:"-"`
	Address      string `toml:",omitempty" json:",omitempty"`
}

// RefreshConfig periodic refresh and event scanning
type RefreshConfig struct {
	IntervalSeconds uint64
	EventLookback   uint32
	EventLimit      uint
}

// APIServerConfig api service config
type APIServerConfig struct {
	Port             int
	AllowedOrigins   []string
	MaxRequestsLimit int
}

// HistoryConfig operation history
type HistoryConfig struct {
	Size int
}

// Settings explicit settings passed to the transaction builder
type Settings struct {
	FeeCeiling      int64
	TimeoutSeconds  int64
	NetworkID       string
	NodeEndpoints   []string
	PollIntervalMs  uint64
	MaxPollAttempts int
}

// GetConfig get counter config
func GetConfig() *CounterConfig {
	configLock.RLock()
	defer configLock.RUnlock()
	return counterConfig
}

// SetConfig set counter config
func SetConfig(config *CounterConfig) {
	config.SetDefaults()
	configLock.Lock()
	defer configLock.Unlock()
	counterConfig = config
}

// SetDefaults fill optional sections with defaults
func (c *CounterConfig) SetDefaults() {
	if c.Network == nil {
		c.Network = &NetworkConfig{}
	}
	if c.Network.Passphrase == "" {
		c.Network.Passphrase = soroban.DefaultNetworkPassphrase
	}
	if c.Network.ContractID == "" {
		c.Network.ContractID = soroban.DefaultContractID
	}
	if len(c.Network.RPCAddress) == 0 {
		c.Network.RPCAddress = []string{soroban.DefaultRPCAddress}
	}
	if c.Network.StorageKey == "" {
		c.Network.StorageKey = soroban.DefaultStorageKey
	}
	if c.Fee == nil {
		c.Fee = &FeeConfig{}
	}
	if c.Fee.FeeCeiling == 0 {
		c.Fee.FeeCeiling = soroban.DefaultFeeCeiling
	}
	if c.Fee.TimeoutSeconds == 0 {
		c.Fee.TimeoutSeconds = soroban.DefaultTimeoutSeconds
	}
	if c.Poll == nil {
		c.Poll = &PollConfig{}
	}
	if c.Poll.IntervalMs == 0 {
		c.Poll.IntervalMs = uint64(soroban.DefaultPollInterval.Milliseconds())
	}
	if c.Poll.MaxAttempts == 0 {
		c.Poll.MaxAttempts = soroban.DefaultMaxAttempts
	}
	if c.Signer == nil {
		c.Signer = &SignerConfig{}
	}
	if c.Signer.Mode == "" {
		c.Signer.Mode = SignerModeRemote
	}
	if c.Refresh == nil {
		c.Refresh = &RefreshConfig{}
	}
	if c.Refresh.EventLookback == 0 {
		c.Refresh.EventLookback = soroban.DefaultEventLookback
	}
	if c.Refresh.EventLimit == 0 {
		c.Refresh.EventLimit = soroban.DefaultEventLimit
	}
	if c.APIServer == nil {
		c.APIServer = &APIServerConfig{}
	}
	if c.APIServer.Port == 0 {
		c.APIServer.Port = defaultAPIPort
	}
	if c.History == nil {
		c.History = &HistoryConfig{Size: 100}
	}
}

// GetSettings settings of current config
func GetSettings() Settings {
	return GetConfig().Settings()
}

// Settings settings of config
func (c *CounterConfig) Settings() Settings {
	return Settings{
		FeeCeiling:      c.Fee.FeeCeiling,
		TimeoutSeconds:  c.Fee.TimeoutSeconds,
		NetworkID:       c.Network.Passphrase,
		NodeEndpoints:   c.Network.RPCAddress,
		PollIntervalMs:  c.Poll.IntervalMs,
		MaxPollAttempts: c.Poll.MaxAttempts,
	}
}

// GetAPIPort get api service port
func GetAPIPort() int {
	return GetConfig().APIServer.Port
}

// GetIdentifier get identifier
func GetIdentifier() string {
	return GetConfig().Identifier
}

// LoadConfigFile decode and check config file
func LoadConfigFile(configFile string) (*CounterConfig, error) {
	if configFile == "" {
		return nil, fmt.Errorf("no config file specified")
	}
	if !common.FileExist(configFile) {
		return nil, fmt.Errorf("config file %v not exist", configFile)
	}
	config := &CounterConfig{}
	if _, err := toml.DecodeFile(configFile, config); err != nil {
		return nil, fmt.Errorf("toml DecodeFile: %w", err)
	}
	config.SetDefaults()
	// key files are relative to the config file
	if signer := config.Signer; signer.Mode == SignerModeKeystore && signer.KeyFile != "" && signer.PasswordFile != "" {
		configDir := filepath.Dir(configFile)
		signer.KeyFile = common.AbsolutePath(configDir, signer.KeyFile)
		signer.PasswordFile = common.AbsolutePath(configDir, signer.PasswordFile)
	}
	if err := config.CheckConfig(); err != nil {
		return nil, fmt.Errorf("check config failed: %w", err)
	}
	return config, nil
}

// LoadConfig load config
func LoadConfig(configFile string) *CounterConfig {
	loadConfigStarter.Do(func() {
		log.Println("Config file is", configFile)
		config, err := LoadConfigFile(configFile)
		if err != nil {
			log.Fatalf("LoadConfig error: %v", err)
		}
		SetConfig(config)
		var bs []byte
		if log.JSONFormat {
			bs, _ = json.Marshal(config)
		} else {
			bs, _ = json.MarshalIndent(config, "", "  ")
		}
		log.Println("LoadConfig finished.", string(bs))
		log.Info("Check config success", "configFile", configFile)
	})
	return GetConfig()
}
