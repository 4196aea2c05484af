// Package pricing computes cart totals.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fjod/freshfruit-storefront/internal/domain"
)

var (
	// FreeShippingThreshold is the subtotal from which shipping is free (inclusive).
	FreeShippingThreshold = decimal.NewFromInt(500)
	FlatShippingCharge    = decimal.NewFromInt(30)
	TaxRate               = decimal.RequireFromString("0.10")

	hundred = decimal.NewFromInt(100)
)

type Totals struct {
	Subtotal       decimal.Decimal
	ShippingCharge decimal.Decimal
	Tax            decimal.Decimal
	Total          decimal.Decimal
}

// Calculate prices the supplied items using their quantities from q.
// Only the supplied items are summed; callers normally pass the cart line items.
func Calculate(items []domain.CatalogItem, q domain.QuantityMap) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(q.Get(item.ID)))))
	}
	return fromSubtotal(subtotal)
}

// ForLineItems prices derived cart lines.
func ForLineItems(lines []domain.LineItem) Totals {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.Total())
	}
	return fromSubtotal(subtotal)
}

func fromSubtotal(subtotal decimal.Decimal) Totals {
	shipping := FlatShippingCharge
	if subtotal.GreaterThanOrEqual(FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	tax := subtotal.Mul(TaxRate)

	return Totals{
		Subtotal:       subtotal,
		ShippingCharge: shipping,
		Tax:            tax,
		Total:          subtotal.Add(shipping).Add(tax),
	}
}

// MinorUnits converts the total to the gateway's minor currency unit (paise).
func (t Totals) MinorUnits() int64 {
	return t.Total.Mul(hundred).Round(0).IntPart()
}

// Amount is the total rendered the way the order endpoint expects it.
func (t Totals) Amount() string {
	return t.Total.StringFixed(2)
}

// FormatINR renders an amount with two decimals and Indian digit grouping,
// e.g. 123456.5 -> "1,23,456.50".
func FormatINR(amount decimal.Decimal) string {
	s := amount.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	if len(intPart) <= 3 {
		return sign + intPart + "." + frac
	}

	head, tail := intPart[:len(intPart)-3], intPart[len(intPart)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	return sign + strings.Join(groups, ",") + "," + tail + "." + frac
}
