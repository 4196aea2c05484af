package backend

import (
	"context"
	"net/http"

	"github.com/fjod/freshfruit-storefront/internal/domain"
)

type cartItemRequest struct {
	FoodID string `json:"foodId"`
}

type cartResponse struct {
	Items domain.QuantityMap `json:"items"`
}

// GetCart returns the server-side quantity map; a missing map is an empty cart.
func (c *Client) GetCart(ctx context.Context, token string) (domain.QuantityMap, error) {
	var resp cartResponse
	if err := c.do(ctx, "get cart", http.MethodGet, "/api/carts", token, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Items == nil {
		return domain.QuantityMap{}, nil
	}
	return resp.Items, nil
}

func (c *Client) AddToCart(ctx context.Context, token, foodID string) error {
	return c.do(ctx, "add to cart", http.MethodPost, "/api/carts", token, cartItemRequest{FoodID: foodID}, nil)
}

func (c *Client) RemoveFromCart(ctx context.Context, token, foodID string) error {
	return c.do(ctx, "remove from cart", http.MethodPost, "/api/carts/remove", token, cartItemRequest{FoodID: foodID}, nil)
}

func (c *Client) ClearCart(ctx context.Context, token string) error {
	return c.do(ctx, "clear cart", http.MethodDelete, "/api/carts", token, nil, nil)
}
