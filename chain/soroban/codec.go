package soroban

import (
	"fmt"

	"github.com/stellar/go/xdr"

	"github.com/anyswap/soroban-counter/chain"
)

// DecodeU32 decode counter value, the one rule every carrier goes through
func DecodeU32(val xdr.ScVal) (uint32, error) {
	u, ok := val.GetU32()
	if !ok || val.Type != xdr.ScValTypeScvU32 {
		return 0, fmt.Errorf("%w: want %v, got %v", chain.ErrTypeMismatch, xdr.ScValTypeScvU32, val.Type)
	}
	return uint32(u), nil
}

// DecodeU32Base64 decode base64 xdr ScVal as counter value
func DecodeU32Base64(b64 string) (uint32, error) {
	val, err := DecodeScVal(b64)
	if err != nil {
		return 0, err
	}
	return DecodeU32(val)
}

// DecodeScVal decode base64 xdr ScVal
func DecodeScVal(b64 string) (val xdr.ScVal, err error) {
	if b64 == "" {
		return val, fmt.Errorf("%w: empty payload", chain.ErrTypeMismatch)
	}
	err = xdr.SafeUnmarshalBase64(b64, &val)
	if err != nil {
		return val, fmt.Errorf("%w: %v", chain.ErrTypeMismatch, err)
	}
	return val, nil
}

// Symbol build symbol ScVal
func Symbol(s string) xdr.ScVal {
	sym := xdr.ScSymbol(s)
	return xdr.ScVal{Type: xdr.ScValTypeScvSymbol, Sym: &sym}
}

// U32 build u32 ScVal
func U32(v uint32) xdr.ScVal {
	u := xdr.Uint32(v)
	return xdr.ScVal{Type: xdr.ScValTypeScvU32, U32: &u}
}

// SymbolBase64 base64 xdr of symbol, used in event topic filters
func SymbolBase64(s string) (string, error) {
	return xdr.MarshalBase64(Symbol(s))
}
