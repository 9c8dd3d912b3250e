package cart

import (
	"github.com/nikolayk812/sqlcpp-cart/internal/domain"
	"golang.org/x/text/currency"
)

// Content returns the cart snapshot. It reports false while the cart has not
// been materialized; a cart without items carries its record only.
func (c *Cart) Content() (domain.CartView, bool) {
	if c.record == nil {
		return domain.CartView{}, false
	}

	view := domain.CartView{
		ID:         c.record.ID,
		Identifier: c.record.Identifier,
		Instance:   c.record.Instance,
		CreatedAt:  c.record.CreatedAt,
		UpdatedAt:  c.record.UpdatedAt,
	}
	if c.cfg.Currency != (currency.Unit{}) {
		view.Currency = c.cfg.Currency.String()
	}

	if len(c.items) == 0 {
		return view, true
	}

	for _, item := range c.Items() {
		view.Items = append(view.Items, item.View())
	}

	f := c.cfg.Pricing.Format
	totals := c.Totals()
	view.Qty = f.String(totals.Quantity)
	view.SubTotal = f.String(totals.SubTotal)
	view.Total = f.String(totals.Total)
	view.Tax = f.String(totals.Tax)
	view.TaxRate = f.String(totals.TaxRate)

	return view, true
}
