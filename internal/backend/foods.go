package backend

import (
	"context"
	"net/http"

	"github.com/fjod/freshfruit-storefront/internal/domain"
)

func (c *Client) ListFoods(ctx context.Context) ([]domain.CatalogItem, error) {
	var foods []domain.CatalogItem
	if err := c.do(ctx, "list foods", http.MethodGet, "/api/foods", "", nil, &foods); err != nil {
		return nil, err
	}
	return foods, nil
}
