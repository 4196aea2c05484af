package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/fjod/freshfruit-storefront/internal/domain"
)

// OrderRequest is the body of POST /api/orders.
type OrderRequest struct {
	UserAddress  string             `json:"userAddress"`
	PhoneNumber  string             `json:"phoneNumber"`
	Email        string             `json:"email"`
	OrderedItems []domain.OrderItem `json:"orderedItems"`
	Amount       string             `json:"amount"`
	OrderStatus  domain.OrderStatus `json:"orderStatus"`
}

// PaymentVerification carries the gateway callback fields to POST /api/orders/verify.
type PaymentVerification struct {
	PaymentID string `json:"razorpay_payment_id"`
	OrderID   string `json:"razorpay_order_id"`
	Signature string `json:"razorpay_signature"`
}

func (c *Client) CreateOrder(ctx context.Context, token string, req OrderRequest) (*domain.Order, error) {
	var order domain.Order
	if err := c.do(ctx, "create order", http.MethodPost, "/api/orders", token, req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) VerifyPayment(ctx context.Context, token string, v PaymentVerification) error {
	return c.do(ctx, "verify payment", http.MethodPost, "/api/orders/verify", token, v, nil)
}

func (c *Client) DeleteOrder(ctx context.Context, token, orderID string) error {
	if orderID == "" {
		return fmt.Errorf("delete order: %w: empty order id", ErrBadRequest)
	}
	path := "/api/orders/" + url.PathEscape(orderID)
	return c.do(ctx, "delete order", http.MethodDelete, path, token, nil, nil)
}

func (c *Client) ListOrders(ctx context.Context, token string) ([]domain.Order, error) {
	var orders []domain.Order
	if err := c.do(ctx, "list orders", http.MethodGet, "/api/orders", token, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}
