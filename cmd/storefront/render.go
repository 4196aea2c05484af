package main

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/fjod/freshfruit-storefront/internal/auth"
	"github.com/fjod/freshfruit-storefront/internal/checkout"
	"github.com/fjod/freshfruit-storefront/internal/domain"
	"github.com/fjod/freshfruit-storefront/internal/forms"
	"github.com/fjod/freshfruit-storefront/internal/orders"
	"github.com/fjod/freshfruit-storefront/internal/pricing"
)

func rupees(d decimal.Decimal) string {
	return "₹" + pricing.FormatINR(d)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func renderFoods(w io.Writer, items []domain.CatalogItem, q domain.QuantityMap) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tIN CART")
	for _, item := range items {
		inCart := "-"
		if n := q.Get(item.ID); n > 0 {
			inCart = fmt.Sprint(n)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", item.ID, item.Name, item.Category, rupees(item.Price), inCart)
	}
	return tw.Flush()
}

func renderFood(w io.Writer, item domain.CatalogItem, qty int, related []domain.CatalogItem) error {
	fmt.Fprintf(w, "%s (%s)\n", item.Name, item.Category)
	fmt.Fprintf(w, "Price: %s\n", rupees(item.Price))
	if item.Description != "" {
		fmt.Fprintln(w, item.Description)
	}
	var tags []string
	if item.IsOrganic {
		tags = append(tags, "organic")
	}
	if item.IsSeasonalPick {
		tags = append(tags, "seasonal pick")
	}
	if len(tags) > 0 {
		fmt.Fprintf(w, "Tags: %s\n", strings.Join(tags, ", "))
	}
	if len(item.Nutrition) > 0 {
		fmt.Fprintf(w, "Nutrition: %s\n", strings.Join(item.Nutrition, ", "))
	}
	fmt.Fprintf(w, "In cart: %d\n", qty)
	if len(related) == 0 {
		return nil
	}
	fmt.Fprintln(w, "\nYou may also like:")
	return renderFoods(w, related, domain.QuantityMap{})
}

func renderCart(w io.Writer, lines []domain.LineItem) error {
	if len(lines) == 0 {
		fmt.Fprintln(w, "Your cart is empty.")
		return nil
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tQTY\tPRICE\tTOTAL")
	for _, line := range lines {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			line.Item.ID, line.Item.Name, line.Quantity, rupees(line.Item.Price), rupees(line.Total()))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	totals := pricing.ForLineItems(lines)
	tw = newTable(w)
	fmt.Fprintf(tw, "\nSubtotal\t%s\n", rupees(totals.Subtotal))
	shipping := rupees(totals.ShippingCharge)
	if totals.ShippingCharge.IsZero() {
		shipping = "Free"
	}
	fmt.Fprintf(tw, "Shipping\t%s\n", shipping)
	fmt.Fprintf(tw, "Tax (10%%)\t%s\n", rupees(totals.Tax))
	fmt.Fprintf(tw, "Total\t%s\n", rupees(totals.Total))
	return tw.Flush()
}

func renderOrders(w io.Writer, list []domain.Order) error {
	for i, o := range list {
		if i > 0 {
			fmt.Fprintln(w)
		}
		info := orders.StatusInfoFor(o.OrderStatus)
		fmt.Fprintf(w, "Order %s  [%s] %s\n", o.ID, o.OrderStatus, info.Message)
		if placed, ok := o.PlacedAt(); ok {
			fmt.Fprintf(w, "Placed:  %s\n", placed.Local().Format("02 Jan 2006, 15:04"))
		}
		fmt.Fprintf(w, "Payment: %s\n", o.PaymentStatus)
		fmt.Fprintf(w, "Deliver: %s\n", o.UserAddress)

		tw := newTable(w)
		for _, item := range o.Items {
			fmt.Fprintf(tw, "  %s\tx%d\t%s\n", item.Name, item.Quantity, rupees(item.Price))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(w, "Total:   %s\n", rupees(o.Amount))
		switch {
		case info.Cancellable:
			fmt.Fprintln(w, "This order can still be cancelled.")
		case info.Reorderable:
			fmt.Fprintln(w, "Reorder any time from the catalog.")
		}
	}
	return nil
}

// describeError turns a command failure into the text shown to the user.
func describeError(err error) string {
	var fieldErrs forms.FieldErrors
	if errors.As(err, &fieldErrs) {
		var b strings.Builder
		b.WriteString("Please fix the following:")
		for _, field := range slices.Sorted(maps.Keys(fieldErrs)) {
			b.WriteString("\n  - ")
			b.WriteString(fieldErrs[field])
		}
		return b.String()
	}

	var checkoutErr *checkout.Error
	if errors.As(err, &checkoutErr) {
		return checkoutErr.Message()
	}

	var formErr *auth.FormError
	if errors.As(err, &formErr) {
		return formErr.Message
	}

	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		return "Please sign in first with `storefront login`."
	case errors.Is(err, checkout.ErrEmptyCart):
		return "Your cart is empty."
	}
	return "Error: " + err.Error()
}
