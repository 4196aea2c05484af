package checkout

import (
	"errors"
	"fmt"

	"github.com/fjod/freshfruit-storefront/internal/backend"
)

var (
	ErrEmptyCart           = errors.New("cart is empty, nothing to checkout")
	ErrIllegalTransition   = errors.New("illegal transition of checkout state")
	ErrMissingGatewayOrder = errors.New("order response has no payment gateway order id")
	ErrPaymentCancelled    = errors.New("payment cancelled")
)

type Stage string

const (
	StageCreateOrder Stage = "create order"
	StagePayment     Stage = "payment"
	StageVerify      Stage = "verify payment"
)

// Error is a user-visible failure of one checkout stage. The workflow is back
// in Editing when it is returned.
type Error struct {
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Message is the text shown to the customer.
func (e *Error) Message() string {
	switch e.Stage {
	case StageCreateOrder:
		return "Error placing order: " + backend.Message(e.Err, "Failed to place order. Please try again.")
	case StagePayment:
		if errors.Is(e.Err, ErrPaymentCancelled) {
			return "Payment cancelled. Your cart has not been changed."
		}
		return "Payment could not be started. Please try again."
	case StageVerify:
		return "Payment verification failed: " + backend.Message(e.Err, "Failed to verify payment. Please try again.")
	default:
		return e.Err.Error()
	}
}
