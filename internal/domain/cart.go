package domain

import "github.com/shopspring/decimal"

// QuantityMap maps a catalog item id to its cart quantity.
// A missing key and an explicit 0 both mean "not in cart".
type QuantityMap map[string]int

func (q QuantityMap) Get(id string) int {
	if q == nil {
		return 0
	}
	return q[id]
}

func (q QuantityMap) InCart(id string) bool {
	return q.Get(id) > 0
}

// Clone returns an independent copy; nil maps clone to an empty map.
func (q QuantityMap) Clone() QuantityMap {
	out := make(QuantityMap, len(q))
	for id, qty := range q {
		out[id] = qty
	}
	return out
}

// Distinct counts the items with a positive quantity.
func (q QuantityMap) Distinct() int {
	n := 0
	for _, qty := range q {
		if qty > 0 {
			n++
		}
	}
	return n
}

type LineItem struct {
	Item     CatalogItem
	Quantity int
}

func (l LineItem) Total() decimal.Decimal {
	return l.Item.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// LineItems derives the cart from the current catalog, in catalog order.
// Ids present in q but missing from catalog are ignored.
func LineItems(catalog []CatalogItem, q QuantityMap) []LineItem {
	items := make([]LineItem, 0, q.Distinct())
	for _, item := range catalog {
		if qty := q.Get(item.ID); qty > 0 {
			items = append(items, LineItem{Item: item, Quantity: qty})
		}
	}
	return items
}
