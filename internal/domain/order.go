package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPreparing OrderStatus = "Preparing"
	OrderStatusShipped   OrderStatus = "Shipped"
	OrderStatusDelivered OrderStatus = "Delivered"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

func (s OrderStatus) IsKnown() bool {
	switch s {
	case OrderStatusPreparing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "Paid"
	PaymentStatusPending PaymentStatus = "Pending"
)

func (s PaymentStatus) IsPaid() bool {
	return s == PaymentStatusPaid
}

// OrderItem is the snapshot of a cart line taken when the order was placed.
// Price is the line total (unit price times quantity).
type OrderItem struct {
	FoodID              string          `json:"foodId,omitempty"`
	Name                string          `json:"name"`
	Quantity            int             `json:"quantity"`
	Price               decimal.Decimal `json:"price"`
	Category            string          `json:"category"`
	ImageURL            string          `json:"imageUrl"`
	Description         string          `json:"description"`
	SpecialInstructions string          `json:"specialInstructions,omitempty"`
}

type Order struct {
	ID              string          `json:"id"`
	RazorpayOrderID string          `json:"razorpayOrderId"`
	Items           []OrderItem     `json:"orderItems"`
	Amount          decimal.Decimal `json:"amount"`
	OrderStatus     OrderStatus     `json:"orderStatus"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus"`
	UserAddress     string          `json:"userAddress"`
	PhoneNumber     string          `json:"phoneNumber"`
	Email           string          `json:"email"`
	OrderedAt       string          `json:"orderDateAndTime"`
}

var orderTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// PlacedAt parses OrderedAt. The backend sends zoned and zone-less timestamps;
// zone-less values are read as UTC.
func (o Order) PlacedAt() (time.Time, bool) {
	for _, layout := range orderTimeLayouts {
		if t, err := time.Parse(layout, o.OrderedAt); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
