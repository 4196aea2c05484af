// Package payment hands an order to the payment gateway's checkout widget and
// reports how the customer left it.
package payment

import (
	"context"
	"errors"
)

const (
	CurrencyINR        = "INR"
	MerchantName       = "FreshFruit"
	PaymentDescription = "Fresh Fruit Order Payment"
	ThemeColor         = "#4ade80"
)

type Prefill struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
}

type Theme struct {
	Color string `json:"color"`
}

// Options configures the gateway widget. Amount is in minor units (paise).
type Options struct {
	Key         string            `json:"key"`
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Prefill     Prefill           `json:"prefill"`
	Notes       map[string]string `json:"notes,omitempty"`
	OrderID     string            `json:"order_id"`
	Theme       Theme             `json:"theme"`
}

// NewOptions fills the fixed merchant fields.
func NewOptions(key string, amount int64, orderID string, prefill Prefill, address string) Options {
	return Options{
		Key:         key,
		Amount:      amount,
		Currency:    CurrencyINR,
		Name:        MerchantName,
		Description: PaymentDescription,
		Prefill:     prefill,
		Notes:       map[string]string{"address": address},
		OrderID:     orderID,
		Theme:       Theme{Color: ThemeColor},
	}
}

// Completion is what the gateway hands to the widget's success handler.
type Completion struct {
	PaymentID string `json:"razorpay_payment_id"`
	OrderID   string `json:"razorpay_order_id"`
	Signature string `json:"razorpay_signature"`
}

func (c Completion) Valid() bool {
	return c.PaymentID != "" && c.OrderID != "" && c.Signature != ""
}

// Outcome is either a completed payment or a dismissal (Completed == nil).
type Outcome struct {
	Completed *Completion
}

func (o Outcome) Dismissed() bool {
	return o.Completed == nil
}

func Dismissed() Outcome { return Outcome{} }

func CompletedWith(c Completion) Outcome { return Outcome{Completed: &c} }

type Widget interface {
	// Open shows the widget and blocks until the customer pays or dismisses
	// it. A cancelled ctx is reported as a dismissal.
	Open(ctx context.Context, opts Options) (Outcome, error)
}

var (
	ErrMissingKey     = errors.New("payment key is not configured")
	ErrMissingOrderID = errors.New("gateway order id is required")
)

func (o Options) Validate() error {
	if o.Key == "" {
		return ErrMissingKey
	}
	if o.OrderID == "" {
		return ErrMissingOrderID
	}
	return nil
}
