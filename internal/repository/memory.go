package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/sqlcpp-cart/internal/domain"
	"github.com/nikolayk812/sqlcpp-cart/internal/port"
	"github.com/shopspring/decimal"
)

// memoryStore keeps carts in process memory. It backs tests and the server
// when no database is configured.
type memoryStore struct {
	mu sync.Mutex

	carts     map[uuid.UUID]domain.CartRecord
	items     map[uuid.UUID]domain.ItemRecord
	itemOrder []uuid.UUID

	now func() time.Time
}

func NewMemoryStore() port.CartStore {
	return &memoryStore{
		carts: make(map[uuid.UUID]domain.CartRecord),
		items: make(map[uuid.UUID]domain.ItemRecord),
		now:   time.Now,
	}
}

func (s *memoryStore) FindCart(_ context.Context, identifier, instance string) (domain.CartRecord, error) {
	if identifier == "" {
		return domain.CartRecord{}, fmt.Errorf("identifier is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.carts {
		if rec.Identifier == identifier && rec.Instance == instance {
			return rec, nil
		}
	}

	return domain.CartRecord{}, fmt.Errorf("cart[%s/%s]: %w", identifier, instance, port.ErrNotFound)
}

func (s *memoryStore) InsertCart(_ context.Context, identifier, instance string) (uuid.UUID, error) {
	if identifier == "" {
		return uuid.Nil, fmt.Errorf("identifier is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.carts {
		if rec.Identifier == identifier && rec.Instance == instance {
			return uuid.Nil, fmt.Errorf("cart[%s/%s] already exists", identifier, instance)
		}
	}

	now := s.now()
	rec := domain.CartRecord{
		ID:         uuid.New(),
		Identifier: identifier,
		Instance:   instance,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.carts[rec.ID] = rec

	return rec.ID, nil
}

func (s *memoryStore) DeleteCart(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for itemID, item := range s.items {
		if item.CartID == id {
			s.dropItem(itemID)
		}
	}
	delete(s.carts, id)

	return nil
}

func (s *memoryStore) FindItemsByCart(_ context.Context, cartID uuid.UUID) ([]domain.ItemRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var items []domain.ItemRecord
	for _, id := range s.itemOrder {
		if item := s.items[id]; item.CartID == cartID {
			items = append(items, item)
		}
	}

	return items, nil
}

func (s *memoryStore) FindItem(_ context.Context, id uuid.UUID) (domain.ItemRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return domain.ItemRecord{}, fmt.Errorf("item[%s]: %w", id, port.ErrNotFound)
	}

	return item, nil
}

func (s *memoryStore) InsertItem(_ context.Context, item domain.ItemRecord) (uuid.UUID, error) {
	if item.CartID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("cartID is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.carts[item.CartID]; !ok {
		return uuid.Nil, fmt.Errorf("cart[%s]: %w", item.CartID, port.ErrNotFound)
	}

	now := s.now()
	item.ID = uuid.New()
	item.CreatedAt = now
	item.UpdatedAt = now

	s.items[item.ID] = item
	s.itemOrder = append(s.itemOrder, item.ID)

	return item.ID, nil
}

func (s *memoryStore) UpdateItem(_ context.Context, id uuid.UUID, item domain.ItemRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.items[id]
	if !ok {
		return false, nil
	}

	item.ID = id
	item.CartID = current.CartID
	item.CreatedAt = current.CreatedAt
	item.UpdatedAt = s.now()
	s.items[id] = item

	return true, nil
}

func (s *memoryStore) UpdateItemQuantity(_ context.Context, id uuid.UUID, qty decimal.Decimal) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return false, nil
	}

	item.Quantity = qty
	item.UpdatedAt = s.now()
	s.items[id] = item

	return true, nil
}

func (s *memoryStore) DeleteItem(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return false, nil
	}
	s.dropItem(id)

	return true, nil
}

// dropItem expects s.mu to be held.
func (s *memoryStore) dropItem(id uuid.UUID) {
	delete(s.items, id)
	s.itemOrder = slices.DeleteFunc(s.itemOrder, func(other uuid.UUID) bool {
		return other == id
	})
}
