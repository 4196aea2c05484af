// Package catalog provides read-only views over the loaded catalog.
package catalog

import (
	"strings"

	"github.com/fjod/freshfruit-storefront/internal/domain"
)

// AllCategories selects every category in Filter.
const AllCategories = "ALL"

const DefaultRelatedLimit = 4

// MenuCategories is the fixed category menu shown on the home view.
var MenuCategories = []string{
	"Apple",
	"Berries",
	"Citrus",
	"Grapes",
	"Exotic",
	"Melons",
	"Tropical",
	"Stonefruits",
}

// Filter returns the items visible for a category and a search query.
//
// With AllCategories, a non-empty query matches items whose name contains it
// or whose category is contained in it. With a specific category, items must
// be in that category and, when a query is given, have a name containing it.
// All comparisons ignore case.
func Filter(items []domain.CatalogItem, category, query string) []domain.CatalogItem {
	q := strings.ToLower(query)

	if category == "" || strings.EqualFold(category, AllCategories) {
		if q == "" {
			return items
		}
		var out []domain.CatalogItem
		for _, item := range items {
			if strings.Contains(strings.ToLower(item.Name), q) ||
				strings.Contains(q, strings.ToLower(item.Category)) {
				out = append(out, item)
			}
		}
		return out
	}

	var out []domain.CatalogItem
	for _, item := range items {
		if item.Category == "" || !strings.EqualFold(item.Category, category) {
			continue
		}
		if q == "" || strings.Contains(strings.ToLower(item.Name), q) {
			out = append(out, item)
		}
	}
	return out
}

func Find(items []domain.CatalogItem, id string) (domain.CatalogItem, bool) {
	for _, item := range items {
		if item.ID == id {
			return item, true
		}
	}
	return domain.CatalogItem{}, false
}

// Related returns up to limit other items from the same category, in catalog order.
func Related(items []domain.CatalogItem, item domain.CatalogItem, limit int) []domain.CatalogItem {
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}
	var out []domain.CatalogItem
	for _, other := range items {
		if len(out) == limit {
			break
		}
		if other.Category == item.Category && other.ID != item.ID {
			out = append(out, other)
		}
	}
	return out
}

// Categories lists the distinct categories in first-seen order.
func Categories(items []domain.CatalogItem) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, item := range items {
		if item.Category == "" {
			continue
		}
		if _, ok := seen[item.Category]; ok {
			continue
		}
		seen[item.Category] = struct{}{}
		out = append(out, item.Category)
	}
	return out
}
