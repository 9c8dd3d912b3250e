package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemSpec is the caller input for adding a product to a cart.
// Nil Quantity means 1, nil Tax means the configured default tax.
type ItemSpec struct {
	ProductID    string           `json:"productId"`
	ProductTitle string           `json:"productTitle"`
	Price        *decimal.Decimal `json:"price"`
	Quantity     *decimal.Decimal `json:"qty,omitempty"`
	Options      map[string]any   `json:"options,omitempty"`
	OptionPrice  decimal.Decimal  `json:"optionPrice"`
	Tax          *decimal.Decimal `json:"tax,omitempty"`
	SellerID     string           `json:"sellerId,omitempty"`
}

// ItemPatch holds the attributes to overwrite on an existing item. Nil fields
// keep their current value. The owning cart cannot be changed.
type ItemPatch struct {
	ProductID    *string          `json:"productId,omitempty"`
	ProductTitle *string          `json:"productTitle,omitempty"`
	Price        *decimal.Decimal `json:"price,omitempty"`
	Quantity     *decimal.Decimal `json:"qty,omitempty"`
	Options      map[string]any   `json:"options,omitempty"`
	OptionPrice  *decimal.Decimal `json:"optionPrice,omitempty"`
	Tax          *decimal.Decimal `json:"tax,omitempty"`
	SellerID     *string          `json:"sellerId,omitempty"`
}

// QuantityOnly reports whether the patch changes nothing but the quantity.
func (p ItemPatch) QuantityOnly() bool {
	return p.Quantity != nil &&
		p.ProductID == nil && p.ProductTitle == nil && p.Price == nil &&
		p.Options == nil && p.OptionPrice == nil && p.Tax == nil && p.SellerID == nil
}

// CartItem is one priced line of a cart. The derived prices are computed
// whenever the attributes are set, never lazily.
type CartItem struct {
	ID           uuid.UUID
	CartID       uuid.UUID
	ProductID    string
	ProductTitle string
	BasePrice    decimal.Decimal
	Quantity     decimal.Decimal
	Options      Options
	OptionPrice  decimal.Decimal
	Tax          decimal.Decimal
	SellerID     string

	CreatedAt time.Time
	UpdatedAt time.Time

	pricing         Pricing
	priceWithOption decimal.Decimal
	unitPrice       decimal.Decimal
}

func ValidateSpec(spec ItemSpec) error {
	switch {
	case strings.TrimSpace(spec.ProductID) == "":
		return invalid("productID", "is empty")
	case strings.TrimSpace(spec.ProductTitle) == "":
		return invalid("productTitle", "is empty")
	case spec.Price == nil:
		return invalid("price", "is missing")
	case spec.Price.IsNegative():
		return invalid("price", "is negative")
	case spec.OptionPrice.IsNegative():
		return invalid("optionPrice", "is negative")
	case spec.Quantity != nil && !spec.Quantity.IsPositive():
		return invalid("qty", "must be positive")
	}

	return nil
}

func NewCartItem(cartID uuid.UUID, spec ItemSpec, pricing Pricing) (CartItem, error) {
	if err := ValidateSpec(spec); err != nil {
		return CartItem{}, err
	}
	if cartID == uuid.Nil {
		return CartItem{}, invalid("cartID", "is empty")
	}

	options, err := NewOptions(spec.Options)
	if err != nil {
		return CartItem{}, invalid("options", err.Error())
	}

	qty := decimal.NewFromInt(1)
	if spec.Quantity != nil {
		qty = *spec.Quantity
	}

	tax := pricing.DefaultTax
	if spec.Tax != nil {
		tax = *spec.Tax
	}

	item := CartItem{
		CartID:       cartID,
		ProductID:    spec.ProductID,
		ProductTitle: spec.ProductTitle,
		BasePrice:    *spec.Price,
		Quantity:     qty,
		Options:      options,
		OptionPrice:  spec.OptionPrice,
		Tax:          tax,
		SellerID:     spec.SellerID,
	}
	item.Reprice(pricing)

	return item, nil
}

// CartItemFromRecord restores a persisted item. Stored data is trusted, so
// only the options text can make it fail.
func CartItemFromRecord(rec ItemRecord, pricing Pricing) (CartItem, error) {
	options, err := ParseOptions([]byte(rec.Options))
	if err != nil {
		return CartItem{}, fmt.Errorf("item[%s] options: %w", rec.ID, err)
	}

	item := CartItem{
		ID:           rec.ID,
		CartID:       rec.CartID,
		ProductID:    rec.ProductID,
		ProductTitle: rec.ProductTitle,
		BasePrice:    rec.Price,
		Quantity:     rec.Quantity,
		Options:      options,
		OptionPrice:  rec.OptionPrice,
		Tax:          rec.Tax,
		SellerID:     rec.SellerID,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}
	item.Reprice(pricing)

	return item, nil
}

// Reprice derives the unit prices from the current attributes.
func (i *CartItem) Reprice(pricing Pricing) {
	f := pricing.Format
	i.pricing = pricing

	// Attributes hold exactly what Record stores, so a reloaded item prices the same.
	i.BasePrice = f.Round(i.BasePrice)
	i.OptionPrice = f.Round(i.OptionPrice)
	i.Tax = f.Round(i.Tax)

	// Override mode only applies when there is an option price to use.
	price := f.Round(i.BasePrice)
	if !i.OptionPrice.IsZero() {
		if pricing.OptionPriceSum {
			price = f.Round(i.BasePrice.Add(i.OptionPrice))
		} else {
			price = f.Round(i.OptionPrice)
		}
	}
	i.priceWithOption = price

	switch {
	case price.IsZero():
		i.unitPrice = decimal.Zero
	case i.Tax.IsZero():
		i.unitPrice = price
	case pricing.TaxIncluded:
		i.priceWithOption = f.Round(price.Mul(hundred.Sub(i.Tax)).Div(hundred))
		i.unitPrice = price
	default:
		i.unitPrice = f.Round(price.Mul(hundred.Add(i.Tax)).Div(hundred))
	}
}

// Apply returns a copy of the item with the patch merged in and prices
// derived again. The receiver is left untouched.
func (i CartItem) Apply(patch ItemPatch) (CartItem, error) {
	next := i

	if patch.ProductID != nil {
		next.ProductID = *patch.ProductID
	}
	if patch.ProductTitle != nil {
		next.ProductTitle = *patch.ProductTitle
	}
	if patch.Price != nil {
		next.BasePrice = *patch.Price
	}
	if patch.Quantity != nil {
		next.Quantity = *patch.Quantity
	}
	if patch.OptionPrice != nil {
		next.OptionPrice = *patch.OptionPrice
	}
	if patch.Tax != nil {
		next.Tax = *patch.Tax
	}
	if patch.SellerID != nil {
		next.SellerID = *patch.SellerID
	}
	if patch.Options != nil {
		options, err := NewOptions(patch.Options)
		if err != nil {
			return CartItem{}, invalid("options", err.Error())
		}
		next.Options = options
	}

	price := next.BasePrice
	err := ValidateSpec(ItemSpec{
		ProductID:    next.ProductID,
		ProductTitle: next.ProductTitle,
		Price:        &price,
		Quantity:     &next.Quantity,
		OptionPrice:  next.OptionPrice,
	})
	if err != nil {
		return CartItem{}, err
	}

	next.Reprice(i.pricing)

	return next, nil
}

// Price is the unit price without tax, option price included.
func (i CartItem) Price() decimal.Decimal {
	return i.priceWithOption
}

// PriceTax is the unit price with tax.
func (i CartItem) PriceTax() decimal.Decimal {
	return i.unitPrice
}

// UnitTax is the tax amount of a single unit.
func (i CartItem) UnitTax() decimal.Decimal {
	return i.pricing.Format.Round(i.unitPrice.Sub(i.priceWithOption))
}

func (i CartItem) SubTotal() decimal.Decimal {
	return i.pricing.Format.Round(i.Quantity.Mul(i.priceWithOption))
}

func (i CartItem) Total() decimal.Decimal {
	return i.pricing.Format.Round(i.Quantity.Mul(i.unitPrice))
}

func (i CartItem) TaxTotal() decimal.Decimal {
	return i.pricing.Format.Round(i.Quantity.Mul(i.UnitTax()))
}

// Record returns the persisted shape of the item.
func (i CartItem) Record() (ItemRecord, error) {
	options, err := i.Options.Encode()
	if err != nil {
		return ItemRecord{}, fmt.Errorf("options.Encode: %w", err)
	}

	f := i.pricing.Format

	return ItemRecord{
		ID:           i.ID,
		CartID:       i.CartID,
		ProductID:    i.ProductID,
		ProductTitle: i.ProductTitle,
		Price:        f.Round(i.BasePrice),
		Tax:          f.Round(i.Tax),
		Quantity:     i.Quantity,
		SellerID:     i.SellerID,
		Options:      options,
		OptionPrice:  f.Round(i.OptionPrice),
		CreatedAt:    i.CreatedAt,
		UpdatedAt:    i.UpdatedAt,
	}, nil
}

func (i CartItem) View() ItemView {
	f := i.pricing.Format

	return ItemView{
		ID:           i.ID,
		ProductID:    i.ProductID,
		ProductTitle: i.ProductTitle,
		CartID:       i.CartID,
		Options:      i.Options,
		Qty:          i.Quantity.String(),
		SellerID:     i.SellerID,
		Tax:          i.Tax.String() + "%",
		Price:        f.String(i.Price()),
		UnitTax:      f.String(i.UnitTax()),
		PriceWithTax: f.String(i.PriceTax()),
		SubTotal:     f.String(i.SubTotal()),
		TotalTax:     f.String(i.TaxTotal()),
		Total:        f.String(i.Total()),
		OptionPrice:  f.String(i.OptionPrice),
	}
}
