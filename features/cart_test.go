package features

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/cucumber/godog"
	"github.com/nikolayk812/sqlcpp-cart/internal/cart"
	"github.com/nikolayk812/sqlcpp-cart/internal/domain"
	"github.com/nikolayk812/sqlcpp-cart/internal/repository"
	"github.com/shopspring/decimal"
)

type cartTestContext struct {
	cfg    cart.Config
	cart   *cart.Cart
	events []string
	err    error
}

func (c *cartTestContext) reset() {
	c.cfg = cart.DefaultConfig()
	c.cart = nil
	c.events = nil
	c.err = nil
}

func (c *cartTestContext) Notify(_ context.Context, event string, _ domain.CartItem) {
	c.events = append(c.events, event)
}

func (c *cartTestContext) pricesExcludeTax() error {
	c.cfg.Pricing.TaxIncluded = false
	return nil
}

func (c *cartTestContext) pricesIncludeTax() error {
	c.cfg.Pricing.TaxIncluded = true
	return nil
}

func (c *cartTestContext) open(ctx context.Context, identifier string) error {
	var err error
	c.cart, err = cart.New(ctx, repository.NewMemoryStore(), c, c.cfg, cart.WithIdentifier(identifier))
	return err
}

func (c *cartTestContext) anEmptyCartFor(ctx context.Context, identifier string) error {
	return c.open(ctx, identifier)
}

func (c *cartTestContext) anAnonymousCart(ctx context.Context) error {
	return c.open(ctx, "")
}

func (c *cartTestContext) add(ctx context.Context, spec domain.ItemSpec, qty int, price string) error {
	p, err := decimal.NewFromString(price)
	if err != nil {
		return fmt.Errorf("price %q: %w", price, err)
	}
	q := decimal.NewFromInt(int64(qty))

	spec.ProductTitle = "Product " + spec.ProductID
	spec.Price = &p
	spec.Quantity = &q

	_, c.err = c.cart.Add(ctx, spec)
	return c.err
}

func (c *cartTestContext) iAdd(ctx context.Context, qty int, productID, price string) error {
	return c.add(ctx, domain.ItemSpec{ProductID: productID}, qty, price)
}

func (c *cartTestContext) iAddWithOptions(ctx context.Context, qty int, productID, price, options string) error {
	var raw map[string]any
	if err := json.Unmarshal([]byte(options), &raw); err != nil {
		return fmt.Errorf("options %q: %w", options, err)
	}

	return c.add(ctx, domain.ItemSpec{ProductID: productID, Options: raw}, qty, price)
}

func (c *cartTestContext) iAddWithTax(ctx context.Context, qty int, productID, price string, tax int) error {
	t := decimal.NewFromInt(int64(tax))
	return c.add(ctx, domain.ItemSpec{ProductID: productID, Tax: &t}, qty, price)
}

func (c *cartTestContext) iAddFromSeller(ctx context.Context, qty int, productID, price, seller string) error {
	return c.add(ctx, domain.ItemSpec{ProductID: productID, SellerID: seller}, qty, price)
}

func (c *cartTestContext) iTryToAddFromSeller(ctx context.Context, qty int, productID, price, seller string) error {
	_ = c.iAddFromSeller(ctx, qty, productID, price, seller)
	return nil
}

func (c *cartTestContext) iSetTheQuantityOf(ctx context.Context, productID string, qty int) error {
	item, err := c.item(productID)
	if err != nil {
		return err
	}

	_, err = c.cart.Update(ctx, item.ID, decimal.NewFromInt(int64(qty)))
	return err
}

func (c *cartTestContext) iDestroyTheCart(ctx context.Context) error {
	return c.cart.Destroy(ctx)
}

func (c *cartTestContext) theCartHasItems(n int) error {
	if got := len(c.cart.Items()); got != n {
		return fmt.Errorf("expected %d items, got %d", n, got)
	}
	return nil
}

func (c *cartTestContext) itemHasQuantity(productID string, qty int) error {
	item, err := c.item(productID)
	if err != nil {
		return err
	}

	if !item.Quantity.Equal(decimal.NewFromInt(int64(qty))) {
		return fmt.Errorf("expected quantity %d, got %s", qty, item.Quantity)
	}
	return nil
}

func (c *cartTestContext) eventsWerePublished(n int, event string) error {
	got := 0
	for _, e := range c.events {
		if e == event {
			got++
		}
	}

	if got != n {
		return fmt.Errorf("expected %d %q events, got %d", n, event, got)
	}
	return nil
}

func (c *cartTestContext) theLastOperationFailsWith(substring string) error {
	if c.err == nil {
		return errors.New("expected the operation to fail but it succeeded")
	}
	if !strings.Contains(c.err.Error(), substring) {
		return fmt.Errorf("expected error to contain %q, got %q", substring, c.err.Error())
	}
	return nil
}

func (c *cartTestContext) theCartHasAnIdentifier() error {
	if c.cart.Identifier() == "" {
		return errors.New("cart identifier is empty")
	}
	if _, ok := c.cart.Record(); !ok {
		return errors.New("cart is not stored")
	}
	return nil
}

func (c *cartTestContext) theCartSubtotalIs(want string) error {
	return equalDecimal("subtotal", want, c.cart.Subtotal())
}

func (c *cartTestContext) theCartTotalIs(want string) error {
	return equalDecimal("total", want, c.cart.Total())
}

func (c *cartTestContext) theCartTaxIs(want string) error {
	return equalDecimal("tax", want, c.cart.Tax(nil, nil))
}

func (c *cartTestContext) item(productID string) (*domain.CartItem, error) {
	for _, item := range c.cart.Items() {
		if item.ProductID == productID {
			return item, nil
		}
	}
	return nil, fmt.Errorf("no item for product %q", productID)
}

func equalDecimal(name, want string, got decimal.Decimal) error {
	w, err := decimal.NewFromString(want)
	if err != nil {
		return fmt.Errorf("%s %q: %w", name, want, err)
	}

	if !w.Equal(got) {
		return fmt.Errorf("expected %s %s, got %s", name, want, got)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &cartTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^prices exclude tax$`, tc.pricesExcludeTax)
	ctx.Step(`^prices include tax$`, tc.pricesIncludeTax)
	ctx.Step(`^an empty cart for "([^"]*)"$`, tc.anEmptyCartFor)
	ctx.Step(`^an anonymous cart$`, tc.anAnonymousCart)

	// When steps
	ctx.Step(`^I add (\d+) of "([^"]*)" at ([\d.]+)$`, tc.iAdd)
	ctx.Step(`^I add (\d+) of "([^"]*)" at ([\d.]+) with options '([^']*)'$`, tc.iAddWithOptions)
	ctx.Step(`^I add (\d+) of "([^"]*)" at ([\d.]+) with tax (\d+)$`, tc.iAddWithTax)
	ctx.Step(`^I add (\d+) of "([^"]*)" at ([\d.]+) from seller "([^"]*)"$`, tc.iAddFromSeller)
	ctx.Step(`^I try to add (\d+) of "([^"]*)" at ([\d.]+) from seller "([^"]*)"$`, tc.iTryToAddFromSeller)
	ctx.Step(`^I set the quantity of "([^"]*)" to (-?\d+)$`, tc.iSetTheQuantityOf)
	ctx.Step(`^I destroy the cart$`, tc.iDestroyTheCart)

	// Then steps
	ctx.Step(`^the cart has (\d+) items?$`, tc.theCartHasItems)
	ctx.Step(`^item "([^"]*)" has quantity (\d+)$`, tc.itemHasQuantity)
	ctx.Step(`^(\d+) "([^"]*)" events? (?:was|were) published$`, tc.eventsWerePublished)
	ctx.Step(`^the last operation fails with "([^"]*)"$`, tc.theLastOperationFailsWith)
	ctx.Step(`^the cart has an identifier$`, tc.theCartHasAnIdentifier)
	ctx.Step(`^the cart subtotal is ([\d.]+)$`, tc.theCartSubtotalIs)
	ctx.Step(`^the cart total is ([\d.]+)$`, tc.theCartTotalIs)
	ctx.Step(`^the cart tax is ([\d.]+)$`, tc.theCartTaxIs)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"cart.feature"},
			TestingT: t,
			Strict:   true,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
