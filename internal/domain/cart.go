package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartRecord is the persisted handle of a cart: one per (identifier, instance).
type CartRecord struct {
	ID         uuid.UUID
	Identifier string
	Instance   string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ItemRecord is the persisted shape of a cart item. Options hold JSON text.
type ItemRecord struct {
	ID           uuid.UUID
	CartID       uuid.UUID
	ProductID    string
	ProductTitle string
	Price        decimal.Decimal
	Tax          decimal.Decimal
	Quantity     decimal.Decimal
	SellerID     string
	Options      string
	OptionPrice  decimal.Decimal

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CartView is the content snapshot of a cart: its record, the display form of
// every item and the aggregate numbers.
type CartView struct {
	ID         uuid.UUID `json:"id"`
	Identifier string    `json:"identifier"`
	Instance   string    `json:"instance"`
	Currency   string    `json:"currency,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	Items    []ItemView `json:"items,omitempty"`
	Qty      string     `json:"qty,omitempty"`
	SubTotal string     `json:"subTotal,omitempty"`
	Total    string     `json:"total,omitempty"`
	Tax      string     `json:"tax,omitempty"`
	TaxRate  string     `json:"taxRate,omitempty"`
}

// ItemView is the display form of a cart item. Amounts are formatted strings.
type ItemView struct {
	ID           uuid.UUID `json:"id"`
	ProductID    string    `json:"productId"`
	ProductTitle string    `json:"productTitle"`
	CartID       uuid.UUID `json:"cartId"`
	Options      Options   `json:"options"`
	Qty          string    `json:"qty"`
	SellerID     string    `json:"sellerId,omitempty"`
	Tax          string    `json:"tax"`

	Price        string `json:"price"`
	UnitTax      string `json:"unitTax"`
	PriceWithTax string `json:"priceWithTax"`
	SubTotal     string `json:"subTotal"`
	TotalTax     string `json:"totalTax"`
	Total        string `json:"total"`
	OptionPrice  string `json:"optionPrice"`
}
