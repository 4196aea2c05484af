package domain

import "github.com/shopspring/decimal"

// CatalogItem is a food item as served by GET /api/foods.
type CatalogItem struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Category       string          `json:"category"`
	Price          decimal.Decimal `json:"price"`
	Description    string          `json:"description"`
	ImageURL       string          `json:"imageUrl"`
	Nutrition      []string        `json:"nutrition,omitempty"`
	IsOrganic      bool            `json:"isOrganic,omitempty"`
	IsSeasonalPick bool            `json:"isSeasonalPick,omitempty"`
}
