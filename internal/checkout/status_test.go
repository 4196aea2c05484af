package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to State
		want     bool
	}{
		{StateEditing, StateSubmitting, true},
		{StateSubmitting, StateAwaitingPayment, true},
		{StateSubmitting, StateEditing, true},
		{StateAwaitingPayment, StateVerifying, true},
		{StateAwaitingPayment, StateCancelled, true},
		{StateCancelled, StateEditing, true},
		{StateVerifying, StateCompleted, true},
		{StateVerifying, StateEditing, true},

		{StateEditing, StateAwaitingPayment, false},
		{StateAwaitingPayment, StateEditing, false},
		{StateVerifying, StateCancelled, false},
		{StateCompleted, StateEditing, false},
		{StateCancelled, StateSubmitting, false},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransitionTo(tt.from, tt.to))
		})
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, StateCompleted.IsTerminal())
	assert.False(t, StateCancelled.IsTerminal())
	assert.False(t, StateEditing.IsTerminal())
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "Payment cancelled. Your cart has not been changed.",
		(&Error{Stage: StagePayment, Err: ErrPaymentCancelled}).Message())
	assert.Equal(t, "Error placing order: Failed to place order. Please try again.",
		(&Error{Stage: StageCreateOrder, Err: ErrMissingGatewayOrder}).Message())
}
