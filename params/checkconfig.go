package params

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/anyswap/soroban-counter/chain/soroban"
)

// CheckConfig check config
func (c *CounterConfig) CheckConfig() (err error) {
	if c.Identifier == "" {
		return errors.New("must config non empty 'Identifier'")
	}
	if err = c.Network.CheckConfig(); err != nil {
		return err
	}
	if err = c.Fee.CheckConfig(); err != nil {
		return err
	}
	if err = c.Poll.CheckConfig(); err != nil {
		return err
	}
	if err = c.Signer.CheckConfig(); err != nil {
		return err
	}
	if c.APIServer.MaxRequestsLimit < 0 {
		return errors.New("'APIServer.MaxRequestsLimit' must not be negative")
	}
	if c.History.Size <= 0 {
		return errors.New("'History.Size' must be positive")
	}
	return nil
}

// CheckConfig check network config
func (c *NetworkConfig) CheckConfig() error {
	if c.Passphrase == "" {
		return errors.New("must config 'Network.Passphrase'")
	}
	if !soroban.IsValidContractID(c.ContractID) {
		return fmt.Errorf("wrong 'Network.ContractID' %v", c.ContractID)
	}
	if len(c.RPCAddress) == 0 {
		return errors.New("must config 'Network.RPCAddress'")
	}
	for _, addr := range c.RPCAddress {
		if _, err := url.ParseRequestURI(addr); err != nil {
			return fmt.Errorf("wrong 'Network.RPCAddress' %v: %w", addr, err)
		}
	}
	return nil
}

// CheckConfig check fee config
func (c *FeeConfig) CheckConfig() error {
	if c.FeeCeiling < 100 {
		return fmt.Errorf("'Fee.FeeCeiling' %v is lower than base fee 100", c.FeeCeiling)
	}
	if c.TimeoutSeconds <= 0 {
		return errors.New("'Fee.TimeoutSeconds' must be positive")
	}
	return nil
}

// CheckConfig check poll config
func (c *PollConfig) CheckConfig() error {
	if c.IntervalMs == 0 {
		return errors.New("'Poll.IntervalMs' must be positive")
	}
	if c.MaxAttempts <= 0 {
		return errors.New("'Poll.MaxAttempts' must be positive")
	}
	return nil
}

// CheckConfig check signer config
func (c *SignerConfig) CheckConfig() error {
	switch c.Mode {
	case SignerModeRemote:
		if c.RPCAddress == "" {
			return errors.New("remote signer must config 'Signer.RPCAddress'")
		}
	case SignerModeKeystore:
		if c.KeyFile == "" || c.PasswordFile == "" {
			return errors.New("keystore signer must config 'Signer.KeyFile' and 'Signer.PasswordFile'")
		}
	default:
		return fmt.Errorf("unknown 'Signer.Mode' %v", c.Mode)
	}
	if c.Address != "" && !soroban.IsValidAddress(c.Address) {
		return fmt.Errorf("wrong 'Signer.Address' %v", c.Address)
	}
	return nil
}
