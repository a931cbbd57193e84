package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusProcessing, true},
		// Forward skips are allowed for back-office corrections.
		{StatusPending, StatusShipped, true},
		{StatusPending, StatusDelivered, true},
		{StatusPending, StatusCancelled, true},
		{StatusProcessing, StatusShipped, true},
		{StatusProcessing, StatusCancelled, true},
		{StatusProcessing, StatusPending, false},
		{StatusShipped, StatusDelivered, true},
		{StatusShipped, StatusCancelled, false},
		{StatusShipped, StatusProcessing, false},
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
		{StatusShipped, StatusShipped, true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestStatus_TerminalAndCancellable(t *testing.T) {
	assert.True(t, StatusDelivered.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusShipped.IsTerminal())

	assert.True(t, StatusPending.Cancellable())
	assert.True(t, StatusProcessing.Cancellable())
	assert.False(t, StatusShipped.Cancellable())
	assert.False(t, StatusDelivered.Cancellable())
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("shipped")
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, s)

	_, err = ParseStatus("teleported")
	require.Error(t, err)
}

func TestParsePaymentStatus(t *testing.T) {
	p, err := ParsePaymentStatus("not paid")
	require.NoError(t, err)
	assert.Equal(t, PaymentNotPaid, p)

	_, err = ParsePaymentStatus("unpaid")
	require.Error(t, err)
}

func TestOrder_ShortID(t *testing.T) {
	o := &Order{ID: "0d9b48f2-5f5e-4a1a-9c2b-7f3a21e4c890"}
	assert.Equal(t, "e4c890", o.ShortID())

	short := &Order{ID: "abc"}
	assert.Equal(t, "abc", short.ShortID())
}
