package types

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOperation(t *testing.T) {
	tests := []struct {
		in       string
		want     Operation
		mutation bool
		wantErr  bool
	}{
		{"increment", OpIncrement, true, false},
		{" Decrement ", OpDecrement, true, false},
		{"RESET", OpReset, true, false},
		{"get_count", OpGetCount, false, false},
		{"transfer", "", false, true},
		{"", "", false, true},
	}
	for i, test := range tests {
		op, err := ParseOperation(test.in)
		if test.wantErr {
			assert.ErrorIs(t, err, ErrUnknownOperation, "case %v", i)
			continue
		}
		assert.NoError(t, err, "case %v", i)
		assert.Equal(t, test.want, op, "case %v", i)
		assert.Equal(t, test.mutation, op.IsMutation(), "case %v", i)
		assert.True(t, op.IsValid(), "case %v", i)
	}
}

func TestSubmissionHandleAdvance(t *testing.T) {
	h := NewSubmissionHandle("abcd")
	assert.Equal(t, TxStatusPending, h.Status())

	require.NoError(t, h.Advance(TxStatusNotFound))
	require.NoError(t, h.Advance(TxStatusNotFound))
	assert.Equal(t, TxStatusNotFound, h.Status())

	err := h.Advance(TxStatusPending)
	assert.True(t, errors.Is(err, ErrStatusRegression))

	require.NoError(t, h.Advance(TxStatusSuccess))
	assert.Equal(t, TxStatusSuccess, h.Status())

	// terminal status never changes
	err = h.Advance(TxStatusFailed)
	assert.True(t, errors.Is(err, ErrStatusRegression))
	assert.Equal(t, TxStatusSuccess, h.Status())
	assert.NoError(t, h.Advance(TxStatusSuccess))

	assert.Error(t, h.Advance(TxStatus("BOGUS")))
	assert.Equal(t, 7, h.Attempts())
}

func TestLifecycle(t *testing.T) {
	l := NewLifecycle()
	assert.Equal(t, TxStateBuilt, l.State())
	assert.ErrorIs(t, l.Transit(TxStateConfirmed), ErrInvalidTransition)

	require.NoError(t, l.Submitted("hash1"))
	assert.Equal(t, "hash1", l.Hash())
	require.NoError(t, l.Transit(TxStateConfirmed))
	assert.True(t, l.State().IsFinal())
	assert.ErrorIs(t, l.Transit(TxStateRejected), ErrInvalidTransition)

	l = NewLifecycle()
	require.NoError(t, l.Transit(TxStateRejected))
	assert.ErrorIs(t, l.Submitted("hash2"), ErrInvalidTransition)
}

func TestSimulatedInvocationConsumeOnce(t *testing.T) {
	sim := &SimulatedInvocation{
		Unsigned:       &UnsignedInvocation{FeeCeiling: 100},
		MinResourceFee: 2345,
		EnvelopeXDR:    "AAAA",
	}
	assert.Equal(t, int64(2445), sim.TotalFee())

	env, err := sim.TakeForSigning()
	require.NoError(t, err)
	assert.Equal(t, "AAAA", env)
	assert.True(t, sim.IsConsumed())

	_, err = sim.TakeForSigning()
	assert.ErrorIs(t, err, ErrAlreadySigned)
}

func TestLedgerValue(t *testing.T) {
	var v LedgerValue
	assert.False(t, v.IsKnown())
	assert.Equal(t, "unknown", v.String())

	zero := KnownValue(0)
	got, ok := zero.Get()
	assert.True(t, ok)
	assert.Equal(t, uint32(0), got)
	assert.NotEqual(t, v, zero)

	data, err := json.Marshal(struct {
		Count LedgerValue `json:"count"`
	}{v})
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":null}`, string(data))

	data, err = json.Marshal(KnownValue(7))
	require.NoError(t, err)
	assert.Equal(t, "7", string(data))

	var decoded LedgerValue
	require.NoError(t, json.Unmarshal([]byte("42"), &decoded))
	assert.Equal(t, KnownValue(42), decoded)
	require.NoError(t, json.Unmarshal([]byte("null"), &decoded))
	assert.False(t, decoded.IsKnown())
}
