package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Format controls how monetary values are rounded and rendered.
type Format struct {
	Decimals          int32
	DecimalPoint      string
	ThousandSeparator string
}

func DefaultFormat() Format {
	return Format{
		Decimals:          2,
		DecimalPoint:      ".",
		ThousandSeparator: ",",
	}
}

// Round returns the value that every later computation works with.
// Rounding is half away from zero, so rounding twice changes nothing.
func (f Format) Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(f.Decimals)
}

// String renders d with fixed decimals and the configured separators.
func (f Format) String(d decimal.Decimal) string {
	s := f.Round(d).StringFixed(f.Decimals)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	b.WriteString(sign)
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteString(f.ThousandSeparator)
		}
		b.WriteRune(r)
	}
	if fracPart != "" {
		b.WriteString(f.DecimalPoint)
		b.WriteString(fracPart)
	}

	return b.String()
}

// Pricing holds the settings the price derivation depends on.
type Pricing struct {
	DefaultTax decimal.Decimal
	// TaxIncluded means stored prices already contain tax.
	TaxIncluded bool
	// OptionPriceSum adds the option price to the base price; otherwise the
	// option price replaces it.
	OptionPriceSum bool
	Format         Format
}

func DefaultPricing() Pricing {
	return Pricing{
		DefaultTax:     decimal.Zero,
		TaxIncluded:    true,
		OptionPriceSum: true,
		Format:         DefaultFormat(),
	}
}
