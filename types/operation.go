package types

import (
	"errors"

	mapset "github.com/deckarep/golang-set"

	"github.com/anyswap/soroban-counter/common"
)

// ErrUnknownOperation unknown contract operation name
var ErrUnknownOperation = errors.New("unknown operation")

// Operation is a counter contract function name
type Operation string

// Operation constants
const (
	OpIncrement Operation = "increment"
	OpDecrement Operation = "decrement"
	OpReset     Operation = "reset"
	OpGetCount  Operation = "get_count"
)

var (
	allOperations      = mapset.NewSet(string(OpIncrement), string(OpDecrement), string(OpReset), string(OpGetCount))
	mutatingOperations = mapset.NewSet(string(OpIncrement), string(OpDecrement), string(OpReset))
)

// ParseOperation parse operation name (case insensitive)
func ParseOperation(name string) (Operation, error) {
	name = common.ToLowerTrim(name)
	if !allOperations.Contains(name) {
		return "", ErrUnknownOperation
	}
	return Operation(name), nil
}

// IsValid is known contract operation
func (op Operation) IsValid() bool {
	return allOperations.Contains(string(op))
}

// IsMutation the operation changes ledger state and must be signed
func (op Operation) IsMutation() bool {
	return mutatingOperations.Contains(string(op))
}

func (op Operation) String() string {
	return string(op)
}
