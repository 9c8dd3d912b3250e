// Package cart keeps a user's named cart in memory, persists every change
// through a port.CartStore and derives the cart totals on demand.
//
// A Cart is request scoped and not safe for concurrent use.
package cart

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/nikolayk812/sqlcpp-cart/internal/domain"
	"github.com/nikolayk812/sqlcpp-cart/internal/port"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/currency"
)

const DefaultInstance = "default"

type Config struct {
	Pricing domain.Pricing
	// AllowDifferentSeller lets one cart hold items of several sellers.
	AllowDifferentSeller bool
	// Currency is only reported in the content snapshot.
	Currency currency.Unit
}

func DefaultConfig() Config {
	return Config{
		Pricing: domain.DefaultPricing(),
	}
}

type Option func(*Cart)

// WithIdentifier sets the owner. Without one the cart is anonymous until the
// first Add assigns a random identifier.
func WithIdentifier(identifier string) Option {
	return func(c *Cart) {
		c.identifier = identifier
	}
}

func WithInstance(instance string) Option {
	return func(c *Cart) {
		if instance != "" {
			c.instance = instance
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Cart) {
		if logger != nil {
			c.logger = logger
		}
	}
}

type Cart struct {
	store    port.CartStore
	notifier port.Notifier
	cfg      Config
	logger   *zap.Logger

	identifier string
	instance   string

	// record is nil until the cart has been materialized in the store.
	record *domain.CartRecord
	items  map[uuid.UUID]*domain.CartItem
	order  []uuid.UUID
}

// New resolves the cart of the configured (identifier, instance) and loads its items.
func New(ctx context.Context, store port.CartStore, notifier port.Notifier, cfg Config, opts ...Option) (*Cart, error) {
	if store == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}

	c := &Cart{
		store:    store,
		notifier: notifier,
		cfg:      cfg,
		logger:   zap.NewNop(),
		instance: DefaultInstance,
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.resolve(ctx); err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}

	return c, nil
}

func (c *Cart) Identifier() string {
	return c.identifier
}

func (c *Cart) Instance() string {
	return c.instance
}

// Record returns the persisted cart handle, false while the cart is not materialized.
func (c *Cart) Record() (domain.CartRecord, bool) {
	if c.record == nil {
		return domain.CartRecord{}, false
	}
	return *c.record, true
}

// SetInstance switches to another named cart of the same owner.
func (c *Cart) SetInstance(ctx context.Context, instance string) error {
	if instance == "" {
		instance = DefaultInstance
	}
	c.instance = instance

	return c.resolve(ctx)
}

// SetIdentifier switches to the cart of another owner.
func (c *Cart) SetIdentifier(ctx context.Context, identifier string) error {
	c.identifier = identifier

	return c.resolve(ctx)
}

// Items returns the items in the order they were added.
func (c *Cart) Items() []*domain.CartItem {
	items := make([]*domain.CartItem, 0, len(c.order))
	for _, id := range c.order {
		items = append(items, c.items[id])
	}
	return items
}

func (c *Cart) Get(id uuid.UUID) (*domain.CartItem, error) {
	item, ok := c.items[id]
	if !ok {
		return nil, fmt.Errorf("cart does not contain id %s: %w", id, domain.ErrItemNotFound)
	}
	return item, nil
}

// Add puts a product into the cart. An item with the same product and equal
// options absorbs the quantity and is returned instead of a new one.
func (c *Cart) Add(ctx context.Context, spec domain.ItemSpec) (*domain.CartItem, error) {
	if err := domain.ValidateSpec(spec); err != nil {
		return nil, err
	}

	if !c.cfg.AllowDifferentSeller && c.hasOtherSeller(spec.SellerID) {
		return nil, fmt.Errorf("seller %q: %w", spec.SellerID, domain.ErrSellerConflict)
	}

	if err := c.materialize(ctx); err != nil {
		return nil, fmt.Errorf("materialize: %w", err)
	}

	candidate, err := domain.NewCartItem(c.record.ID, spec, c.cfg.Pricing)
	if err != nil {
		return nil, err
	}

	if existing := c.mergeTarget(candidate); existing != nil {
		c.logger.Debug("merging cart item",
			zap.Stringer("item_id", existing.ID),
			zap.String("product_id", existing.ProductID),
			zap.Stringer("qty", candidate.Quantity))

		if _, err := c.Update(ctx, existing.ID, existing.Quantity.Add(candidate.Quantity)); err != nil {
			return nil, err
		}
		return existing, nil
	}

	if err := c.saveItem(ctx, &candidate); err != nil {
		return nil, err
	}
	c.index(&candidate)

	return &candidate, nil
}

// AddBatch adds every spec in turn. It stops at the first failure and
// returns the items added before it.
func (c *Cart) AddBatch(ctx context.Context, specs []domain.ItemSpec) ([]*domain.CartItem, error) {
	items := make([]*domain.CartItem, 0, len(specs))
	for i, spec := range specs {
		item, err := c.Add(ctx, spec)
		if err != nil {
			return items, fmt.Errorf("item[%d]: %w", i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// Update sets the quantity of an item. A quantity of zero or less removes the
// item, in which case the returned item is nil. When the store does not apply
// the write the item is returned unchanged and no event is sent.
func (c *Cart) Update(ctx context.Context, id uuid.UUID, qty decimal.Decimal) (*domain.CartItem, error) {
	item, ok := c.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidID, id)
	}

	if !qty.IsPositive() {
		return nil, c.Remove(ctx, id)
	}

	updated, err := c.setQuantity(ctx, item, qty)
	if err != nil {
		return nil, err
	}
	if updated {
		c.notifier.Notify(ctx, port.EventItemUpdated, *item)
	}

	return item, nil
}

// UpdateAttributes overwrites the patched attributes of an item. A patched
// quantity of zero or less removes the item, in which case the returned item is nil.
// A write the store does not apply leaves the item as it was.
func (c *Cart) UpdateAttributes(ctx context.Context, id uuid.UUID, patch domain.ItemPatch) (*domain.CartItem, error) {
	item, ok := c.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidID, id)
	}

	if patch.Quantity != nil && !patch.Quantity.IsPositive() {
		return nil, c.Remove(ctx, id)
	}

	updated, err := c.updateFromPatch(ctx, item, patch)
	if err != nil {
		return nil, err
	}
	if updated {
		c.notifier.Notify(ctx, port.EventItemUpdated, *item)
	}

	return item, nil
}

func (c *Cart) Remove(ctx context.Context, id uuid.UUID) error {
	item, ok := c.items[id]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrInvalidID, id)
	}

	deleted, err := c.deleteItem(ctx, item)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: %s", domain.ErrDeleteFailed, id)
	}

	c.unindex(id)
	c.logger.Debug("removed cart item", zap.Stringer("item_id", id))
	c.notifier.Notify(ctx, port.EventItemRemoved, *item)

	return nil
}

// Destroy removes every item, then the cart itself. It stops at the first
// failure; calling it again continues with the items left.
func (c *Cart) Destroy(ctx context.Context) error {
	for _, id := range slices.Clone(c.order) {
		if err := c.Remove(ctx, id); err != nil {
			return err
		}
	}

	if c.record == nil {
		return nil
	}

	if err := c.store.DeleteCart(ctx, c.record.ID); err != nil {
		return fmt.Errorf("store.DeleteCart: %w", err)
	}

	c.logger.Debug("destroyed cart", zap.Stringer("cart_id", c.record.ID))
	c.record = nil

	return nil
}

// resolve looks up the cart handle for the current key and reloads its items.
func (c *Cart) resolve(ctx context.Context) error {
	c.record = nil
	c.items = make(map[uuid.UUID]*domain.CartItem)
	c.order = nil

	// An anonymous owner cannot have a cart before its first Add.
	if c.identifier == "" {
		return nil
	}

	rec, err := c.store.FindCart(ctx, c.identifier, c.instance)
	if errors.Is(err, port.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("store.FindCart: %w", err)
	}
	c.record = &rec

	records, err := c.store.FindItemsByCart(ctx, rec.ID)
	if err != nil {
		return fmt.Errorf("store.FindItemsByCart: %w", err)
	}

	for _, r := range records {
		item, err := domain.CartItemFromRecord(r, c.cfg.Pricing)
		if err != nil {
			return fmt.Errorf("domain.CartItemFromRecord: %w", err)
		}
		c.index(&item)
	}

	return nil
}

func (c *Cart) materialize(ctx context.Context) error {
	if c.record != nil {
		return nil
	}

	if c.identifier == "" {
		c.identifier = uuid.NewString()
	}

	id, err := c.store.InsertCart(ctx, c.identifier, c.instance)
	if err != nil {
		return fmt.Errorf("store.InsertCart: %w", err)
	}

	c.logger.Debug("materialized cart",
		zap.Stringer("cart_id", id),
		zap.String("identifier", c.identifier),
		zap.String("instance", c.instance))

	return c.resolve(ctx)
}

func (c *Cart) hasOtherSeller(sellerID string) bool {
	for _, item := range c.items {
		if item.SellerID != sellerID {
			return true
		}
	}
	return false
}

func (c *Cart) mergeTarget(candidate domain.CartItem) *domain.CartItem {
	for _, id := range c.order {
		item := c.items[id]
		if item.ProductID == candidate.ProductID && item.Options.Equal(candidate.Options) {
			return item
		}
	}
	return nil
}

func (c *Cart) index(item *domain.CartItem) {
	if _, ok := c.items[item.ID]; !ok {
		c.order = append(c.order, item.ID)
	}
	c.items[item.ID] = item
}

func (c *Cart) unindex(id uuid.UUID) {
	delete(c.items, id)
	c.order = slices.DeleteFunc(c.order, func(other uuid.UUID) bool {
		return other == id
	})
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, string, domain.CartItem) {}
