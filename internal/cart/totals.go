package cart

import (
	"github.com/nikolayk812/sqlcpp-cart/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Totals are the aggregate numbers of a cart, each rounded with the cart format.
type Totals struct {
	Quantity decimal.Decimal
	SubTotal decimal.Decimal
	Total    decimal.Decimal
	Tax      decimal.Decimal
	TaxRate  decimal.Decimal
}

// Count is the sum of all item quantities.
func (c *Cart) Count() decimal.Decimal {
	return c.sum(func(item *domain.CartItem) decimal.Decimal {
		return item.Quantity
	})
}

func (c *Cart) Subtotal() decimal.Decimal {
	return c.sum(func(item *domain.CartItem) decimal.Decimal {
		return item.SubTotal()
	})
}

func (c *Cart) Total() decimal.Decimal {
	return c.sum(func(item *domain.CartItem) decimal.Decimal {
		return item.Total()
	})
}

// Tax is total minus subtotal. Either may be passed in to reuse a value the
// caller already computed.
func (c *Cart) Tax(total, subtotal *decimal.Decimal) decimal.Decimal {
	t, s := c.totalAndSubtotal(total, subtotal)
	return c.round(t.Sub(s))
}

// TaxRate is the blended tax rate of the whole cart, 100 - (100/total)*subtotal.
// An empty or zero-total cart has a rate of 0.
func (c *Cart) TaxRate(total, subtotal *decimal.Decimal) decimal.Decimal {
	t, s := c.totalAndSubtotal(total, subtotal)
	if t.IsZero() {
		return decimal.Zero
	}
	return c.round(hundred.Sub(hundred.Mul(s).Div(t)))
}

func (c *Cart) Totals() Totals {
	total, subtotal := c.Total(), c.Subtotal()

	return Totals{
		Quantity: c.Count(),
		SubTotal: subtotal,
		Total:    total,
		Tax:      c.Tax(&total, &subtotal),
		TaxRate:  c.TaxRate(&total, &subtotal),
	}
}

func (c *Cart) totalAndSubtotal(total, subtotal *decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	var t, s decimal.Decimal
	if total != nil {
		t = *total
	} else {
		t = c.Total()
	}
	if subtotal != nil {
		s = *subtotal
	} else {
		s = c.Subtotal()
	}
	return t, s
}

func (c *Cart) sum(value func(item *domain.CartItem) decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(value(item))
	}
	return c.round(total)
}

func (c *Cart) round(d decimal.Decimal) decimal.Decimal {
	return c.cfg.Pricing.Format.Round(d)
}
