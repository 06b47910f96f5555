package types

import (
	"encoding/json"
	"strconv"
)

// LedgerValue counter value observed on ledger, may be unknown.
// The zero value is unknown, not zero.
type LedgerValue struct {
	value uint32
	known bool
}

// KnownValue ledger value with value
func KnownValue(v uint32) LedgerValue {
	return LedgerValue{value: v, known: true}
}

// UnknownValue not yet observed
func UnknownValue() LedgerValue {
	return LedgerValue{}
}

// Get returns value and whether it is known
func (v LedgerValue) Get() (uint32, bool) {
	return v.value, v.known
}

// IsKnown is value observed
func (v LedgerValue) IsKnown() bool {
	return v.known
}

func (v LedgerValue) String() string {
	if !v.known {
		return "unknown"
	}
	return strconv.FormatUint(uint64(v.value), 10)
}

// MarshalJSON unknown is encoded as null
func (v LedgerValue) MarshalJSON() ([]byte, error) {
	if !v.known {
		return []byte("null"), nil
	}
	return json.Marshal(v.value)
}

// UnmarshalJSON null is decoded as unknown
func (v *LedgerValue) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = UnknownValue()
		return nil
	}
	var u uint32
	if err := json.Unmarshal(data, &u); err != nil {
		return err
	}
	*v = KnownValue(u)
	return nil
}
