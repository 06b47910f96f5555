package params

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anyswap/soroban-counter/chain/soroban"
)

const testConfig = `
Identifier = "counter-test"

[Network]
Passphrase = "Test SDF Network ; September 2015"
ContractID = "CBOZO7BFB2YM4AFEYJYPLRMWKOR5NXP2UK7CMP72D7KJQ6TGL27S2TJA"
RPCAddress = ["https://soroban-testnet.stellar.org:443"]

[Fee]
FeeCeiling = %v
TimeoutSeconds = 30

[Poll]
IntervalMs = 500
MaxAttempts = 20

[Signer]
Mode = "remote"
RPCAddress = "http://127.0.0.1:7500"
`

func writeConfig(t *testing.T, file string, feeCeiling int) {
	content := []byte(fmt.Sprintf(testConfig, feeCeiling))
	require.NoError(t, os.WriteFile(file, content, 0600))
}

func TestLoadConfigFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "counter.toml")
	writeConfig(t, file, 200)

	config, err := LoadConfigFile(file)
	require.NoError(t, err)
	assert.Equal(t, "counter-test", config.Identifier)
	assert.Equal(t, soroban.DefaultStorageKey, config.Network.StorageKey)
	assert.Equal(t, uint32(soroban.DefaultEventLookback), config.Refresh.EventLookback)
	assert.Equal(t, defaultAPIPort, config.APIServer.Port)

	settings := config.Settings()
	assert.Equal(t, int64(200), settings.FeeCeiling)
	assert.Equal(t, uint64(500), settings.PollIntervalMs)
	assert.Equal(t, 20, settings.MaxPollAttempts)
	assert.Equal(t, "Test SDF Network ; September 2015", settings.NetworkID)
	assert.Equal(t, []string{"https://soroban-testnet.stellar.org:443"}, settings.NodeEndpoints)
}

func TestCheckConfig(t *testing.T) {
	newConfig := func() *CounterConfig {
		c := &CounterConfig{
			Identifier: "test",
			Signer:     &SignerConfig{Mode: SignerModeRemote, RPCAddress: "http://127.0.0.1:7500"},
		}
		c.SetDefaults()
		return c
	}
	require.NoError(t, newConfig().CheckConfig())

	tests := []func(c *CounterConfig){
		func(c *CounterConfig) { c.Identifier = "" },
		func(c *CounterConfig) { c.Network.ContractID = "GABC" },
		func(c *CounterConfig) { c.Network.RPCAddress = []string{"::not a url"} },
		func(c *CounterConfig) { c.Fee.FeeCeiling = 10 },
		func(c *CounterConfig) { c.Poll.MaxAttempts = -1 },
		func(c *CounterConfig) { c.Signer.Mode = "ledger" },
		func(c *CounterConfig) { c.Signer.RPCAddress = "" },
		func(c *CounterConfig) { c.Signer.Mode = SignerModeKeystore },
		func(c *CounterConfig) { c.Signer.Address = "not-an-address" },
	}
	for i, mutate := range tests {
		c := newConfig()
		mutate(c)
		assert.Error(t, c.CheckConfig(), "case %v", i)
	}
}

func TestWatchConfigReloadsTunables(t *testing.T) {
	file := filepath.Join(t.TempDir(), "counter.toml")
	writeConfig(t, file, 200)
	config, err := LoadConfigFile(file)
	require.NoError(t, err)
	config.Identifier = "kept"
	SetConfig(config)

	stop := make(chan struct{})
	defer close(stop)
	changed := make(chan *CounterConfig, 4)
	require.NoError(t, WatchConfig(file, stop, func(c *CounterConfig) { changed <- c }))

	writeConfig(t, file, 300)
	select {
	case c := <-changed:
		assert.Equal(t, int64(300), c.Fee.FeeCeiling)
		assert.Equal(t, "kept", c.Identifier, "only tunables are reloaded")
		assert.Equal(t, int64(300), GetSettings().FeeCeiling)
	case <-time.After(5 * time.Second):
		t.Fatal("config change not observed")
	}
}

func TestBuildVersion(t *testing.T) {
	assert.Equal(t, "0.1.0-unstable", Version())
	defer SetBuildInfo("", "")

	SetBuildInfo("", "")
	assert.Equal(t, Version(), BuildVersion())

	SetBuildInfo("0123abcdef", "20260101")
	assert.Equal(t, Version()+"-0123abcd-20260101", BuildVersion())
	info := GetVersionInfo()
	assert.Equal(t, BuildVersion(), info.Version)
	assert.Equal(t, "0123abcdef", info.GitCommit)
	assert.NotEmpty(t, info.GoVersion)
}

func TestKeystorePathsRelativeToConfig(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "counter.toml")
	content := `
Identifier = "counter-test"

[Signer]
Mode = "keystore"
KeyFile = "keys/counter.keystore"
PasswordFile = "/etc/counter/password"
`
	require.NoError(t, os.WriteFile(file, []byte(content), 0600))

	config, err := LoadConfigFile(file)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "keys/counter.keystore"), config.Signer.KeyFile)
	assert.Equal(t, "/etc/counter/password", config.Signer.PasswordFile)
}
