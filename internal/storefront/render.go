// Package storefront is the customer-facing side of the shop: the cart view
// renderer, the checkout initiator, and the testimonial book. It holds no
// display-technology specifics; renderers produce plain data a UI can paint.
package storefront

import (
	"github.com/shopspring/decimal"

	"github.com/lescrepesdenanou/shop/internal/domain/cart"
)

// Row is one rendered cart line. ItemName doubles as the stable identifier a
// UI hands back to mutation calls; names are unique within a cart, positions
// shift on removal.
type Row struct {
	ItemName  string
	UnitPrice string
	Quantity  int
	LineTotal string
}

// View is the full render description of a cart: one row per line item, the
// formatted grand total, the article counter, and whether the pay control is
// active. It is a pure function of the cart items.
type View struct {
	Rows      []Row
	Total     string
	ItemCount int
	// CheckoutEnabled is false exactly when the cart is empty.
	CheckoutEnabled bool
}

// Render builds the view for the given cart lines.
func Render(items []cart.Item) View {
	v := View{
		Rows:            make([]Row, len(items)),
		CheckoutEnabled: len(items) > 0,
	}

	total := decimal.Zero
	for i, it := range items {
		qty := decimal.NewFromInt(int64(it.Quantity))
		lineTotal := it.UnitPrice.Mul(qty)
		total = total.Add(lineTotal)
		v.ItemCount += it.Quantity

		v.Rows[i] = Row{
			ItemName:  it.Name,
			UnitPrice: FormatPrice(it.UnitPrice),
			Quantity:  it.Quantity,
			LineTotal: FormatPrice(lineTotal),
		}
	}
	v.Total = FormatPrice(total)
	return v
}

// FormatPrice renders a price for display: two decimals and the euro sign,
// "4.50 €".
func FormatPrice(p decimal.Decimal) string {
	return p.StringFixed(2) + " €"
}
