package soroban

import (
	"context"
	"fmt"

	"github.com/stellar/go/xdr"

	"github.com/anyswap/soroban-counter/chain"
	"github.com/anyswap/soroban-counter/log"
	"github.com/anyswap/soroban-counter/types"
)

// AccountKey base64 ledger key of account entry
func AccountKey(address string) (string, error) {
	aid, err := accountID(address)
	if err != nil {
		return "", err
	}
	key := xdr.LedgerKey{
		Type:    xdr.LedgerEntryTypeAccount,
		Account: &xdr.LedgerKeyAccount{AccountId: aid},
	}
	return xdr.MarshalBase64(key)
}

// ContractInstanceKey base64 ledger key of contract instance entry
func ContractInstanceKey(contractID string) (string, error) {
	contract, err := ContractAddress(contractID)
	if err != nil {
		return "", err
	}
	key := xdr.LedgerKey{
		Type: xdr.LedgerEntryTypeContractData,
		ContractData: &xdr.LedgerKeyContractData{
			Contract:   contract,
			Key:        xdr.ScVal{Type: xdr.ScValTypeScvLedgerKeyContractInstance},
			Durability: xdr.ContractDataDurabilityPersistent,
		},
	}
	return xdr.MarshalBase64(key)
}

// GetAccount fetch account sequence, fails with InvalidAccountState
func (c *Client) GetAccount(ctx context.Context, address string) (*types.AccountRef, error) {
	key, err := AccountKey(address)
	if err != nil {
		return nil, chain.NewTxError(chain.ErrInvalidAccountState, "getAccount", "", address, err)
	}
	res, err := c.node.GetLedgerEntries(ctx, []string{key})
	if err != nil {
		return nil, chain.NewTxError(chain.ErrInvalidAccountState, "getAccount", "", address, err)
	}
	for _, entry := range res.Entries {
		var data xdr.LedgerEntryData
		if err = xdr.SafeUnmarshalBase64(entry.XDR, &data); err != nil {
			return nil, chain.NewTxError(chain.ErrInvalidAccountState, "getAccount", "", address, err)
		}
		account, ok := data.GetAccount()
		if !ok {
			continue
		}
		return &types.AccountRef{
			Address:  address,
			Sequence: int64(account.SeqNum),
		}, nil
	}
	return nil, chain.NewTxError(chain.ErrInvalidAccountState, "getAccount", "", address, chain.ErrNotFound)
}

// ReadStorage read counter value from contract instance storage
func (c *Client) ReadStorage(ctx context.Context) (uint32, error) {
	key, err := ContractInstanceKey(c.ContractID)
	if err != nil {
		return 0, err
	}
	res, err := c.node.GetLedgerEntries(ctx, []string{key})
	if err != nil {
		return 0, err
	}
	for _, entry := range res.Entries {
		val, err := DecodeStorageEntry(entry.XDR, c.StorageKey)
		if err != nil {
			log.Debug("read counter from storage failed", "contract", c.ContractID, "key", c.StorageKey, "err", err)
			return 0, err
		}
		return val, nil
	}
	return 0, fmt.Errorf("contract instance %v: %w", c.ContractID, chain.ErrNotFound)
}

// DecodeStorageEntry decode counter value from base64 contract instance entry
func DecodeStorageEntry(entryXDR, storageKey string) (uint32, error) {
	var data xdr.LedgerEntryData
	if err := xdr.SafeUnmarshalBase64(entryXDR, &data); err != nil {
		return 0, fmt.Errorf("%w: %v", chain.ErrWrongResponse, err)
	}
	contractData, ok := data.GetContractData()
	if !ok {
		return 0, fmt.Errorf("%w: entry type %v is not contract data", chain.ErrWrongResponse, data.Type)
	}
	instance, ok := contractData.Val.GetInstance()
	if !ok || instance.Storage == nil {
		return 0, fmt.Errorf("storage key %v: %w", storageKey, chain.ErrNotFound)
	}
	for _, item := range *instance.Storage {
		sym, ok := item.Key.GetSym()
		if !ok || string(sym) != storageKey {
			continue
		}
		return DecodeU32(item.Val)
	}
	return 0, fmt.Errorf("storage key %v: %w", storageKey, chain.ErrNotFound)
}
