package soroban

import (
	"fmt"

	"github.com/stellar/go/strkey"
	"github.com/stellar/go/xdr"
)

// IsValidAddress check account address (G...)
func IsValidAddress(address string) bool {
	return strkey.IsValidEd25519PublicKey(address)
}

// IsValidContractID check contract address (C...)
func IsValidContractID(contractID string) bool {
	_, err := strkey.Decode(strkey.VersionByteContract, contractID)
	return err == nil
}

// ContractAddress convert contract id to sc address
func ContractAddress(contractID string) (xdr.ScAddress, error) {
	raw, err := strkey.Decode(strkey.VersionByteContract, contractID)
	if err != nil {
		return xdr.ScAddress{}, fmt.Errorf("invalid contract id %v: %w", contractID, err)
	}
	var hash xdr.Hash
	copy(hash[:], raw)
	return xdr.ScAddress{
		Type:       xdr.ScAddressTypeScAddressTypeContract,
		ContractId: &hash,
	}, nil
}

// EncodeContractID encode contract hash to C... address
func EncodeContractID(hash xdr.Hash) (string, error) {
	return strkey.Encode(strkey.VersionByteContract, hash[:])
}

func accountID(address string) (xdr.AccountId, error) {
	var aid xdr.AccountId
	if !IsValidAddress(address) {
		return aid, fmt.Errorf("invalid account address %q", address)
	}
	err := aid.SetAddress(address)
	return aid, err
}
