package worker

import (
	"context"
	"time"

	"github.com/anyswap/soroban-counter/chain"
	"github.com/anyswap/soroban-counter/chain/soroban"
	"github.com/anyswap/soroban-counter/log"
	"github.com/anyswap/soroban-counter/params"
	"github.com/anyswap/soroban-counter/signer"
)

// SettingsFromParams action settings of config settings
func SettingsFromParams(s params.Settings) Settings {
	return Settings{
		Tx: soroban.TxOptions{
			FeeCeiling:     s.FeeCeiling,
			TimeoutSeconds: s.TimeoutSeconds,
		},
		Poll: soroban.PollOptions{
			Interval:    time.Duration(s.PollIntervalMs) * time.Millisecond,
			MaxAttempts: s.MaxPollAttempts,
		},
	}
}

// NewSigner signer of config
func NewSigner(cfg *params.SignerConfig) (chain.Signer, error) {
	if cfg.Mode == params.SignerModeKeystore {
		key, err := signer.LoadKeyStore(cfg.KeyFile, cfg.PasswordFile)
		if err != nil {
			return nil, err
		}
		log.Info("load keystore success", "address", key.Address())
		return signer.NewKeystoreSigner(key), nil
	}
	return signer.NewRemoteSigner(cfg.RPCAddress, cfg.RPCTimeout), nil
}

// NewCounterFromConfig counter controller of config
func NewCounterFromConfig(config *params.CounterConfig) (*Counter, error) {
	node := soroban.NewRPCNode(config.Network.RPCAddress...)
	client := soroban.NewClient(node, soroban.Config{
		NetworkPassphrase: config.Network.Passphrase,
		ContractID:        config.Network.ContractID,
		StorageKey:        config.Network.StorageKey,
		EventLookback:     config.Refresh.EventLookback,
		EventLimit:        config.Refresh.EventLimit,
	})
	s, err := NewSigner(config.Signer)
	if err != nil {
		return nil, err
	}
	counter := NewCounter(client, s, SettingsFromParams(config.Settings()), NewHistory(config.History.Size))
	if config.Signer.Address != "" {
		counter.SetAddress(config.Signer.Address)
	}
	return counter, nil
}

// StartWork start background jobs of counter
func StartWork(ctx context.Context, counter *Counter, configFile string) {
	logWorker("worker", "start counter worker")

	if _, err := counter.Connect(ctx); err != nil {
		logWorkerError("worker", "connect signer failed", err)
	}

	config := params.GetConfig()
	if config != nil && config.Refresh.IntervalSeconds > 0 {
		go StartRefreshJob(ctx, counter, time.Duration(config.Refresh.IntervalSeconds)*time.Second)
	}

	if configFile != "" {
		err := params.WatchConfig(configFile, ctx.Done(), func(cfg *params.CounterConfig) {
			counter.UpdateSettings(SettingsFromParams(cfg.Settings()))
		})
		if err != nil {
			logWorkerError("worker", "watch config failed", err, "file", configFile)
		}
	}
}
