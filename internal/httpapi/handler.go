// Package httpapi exposes carts over HTTP. Every request builds its own Cart.
package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nikolayk812/sqlcpp-cart/internal/cart"
	"github.com/nikolayk812/sqlcpp-cart/internal/domain"
	"github.com/nikolayk812/sqlcpp-cart/internal/port"
	"go.uber.org/zap"
)

// IdentifierHeader carries the cart owner. Anonymous carts get the assigned
// identifier back in the same header.
const IdentifierHeader = "X-Cart-Identifier"

const maxBodyBytes = 1 << 20

type Handler struct {
	store    port.CartStore
	notifier port.Notifier
	cfg      cart.Config
	logger   *zap.Logger
}

func NewHandler(store port.CartStore, notifier port.Notifier, cfg cart.Config, logger *zap.Logger) *Handler {
	return &Handler{
		store:    store,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
	}
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/carts/{instance}", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Delete("/", h.DestroyCart)
		r.Post("/items", h.AddItems)
		r.Get("/items/{id}", h.GetItem)
		r.Put("/items/{id}", h.UpdateItem)
		r.Delete("/items/{id}", h.RemoveItem)
	})

	return r
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	c, ok := h.openCart(w, r)
	if !ok {
		return
	}

	view, ok := c.Content()
	if !ok {
		respondError(w, http.StatusNotFound, "cart_not_found", "cart does not exist")
		return
	}

	respondJSON(w, http.StatusOK, view)
}

func (h *Handler) DestroyCart(w http.ResponseWriter, r *http.Request) {
	c, ok := h.openCart(w, r)
	if !ok {
		return
	}

	if err := c.Destroy(r.Context()); err != nil {
		h.handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddItems accepts a single item object or an array of them. It answers 201
// when a new line was created and 200 when every item merged into an existing one.
func (h *Handler) AddItems(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "cannot read body")
		return
	}
	body = bytes.TrimSpace(body)

	c, ok := h.openCart(w, r)
	if !ok {
		return
	}

	if bytes.HasPrefix(body, []byte("[")) {
		var specs []domain.ItemSpec
		if err := json.Unmarshal(body, &specs); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
			return
		}

		known := itemIDs(c)

		items, err := c.AddBatch(r.Context(), specs)
		if err != nil {
			h.handleError(w, err)
			return
		}

		status := http.StatusOK
		views := make([]domain.ItemView, 0, len(items))
		for _, item := range items {
			if _, ok := known[item.ID]; !ok {
				status = http.StatusCreated
			}
			views = append(views, item.View())
		}

		w.Header().Set(IdentifierHeader, c.Identifier())
		respondJSON(w, status, views)
		return
	}

	var spec domain.ItemSpec
	if err := json.Unmarshal(body, &spec); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	known := itemIDs(c)

	item, err := c.Add(r.Context(), spec)
	if err != nil {
		h.handleError(w, err)
		return
	}

	status := http.StatusCreated
	if _, ok := known[item.ID]; ok {
		status = http.StatusOK
	}

	w.Header().Set(IdentifierHeader, c.Identifier())
	respondJSON(w, status, item.View())
}

func itemIDs(c *cart.Cart) map[uuid.UUID]struct{} {
	ids := make(map[uuid.UUID]struct{})
	for _, item := range c.Items() {
		ids[item.ID] = struct{}{}
	}
	return ids
}

func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	c, ok := h.openCart(w, r)
	if !ok {
		return
	}

	item, err := c.Get(id)
	if err != nil {
		h.handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, item.View())
}

// UpdateItem takes {"qty": n} or any set of item attributes. A quantity of
// zero or less removes the item and answers 204.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	var patch domain.ItemPatch
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	c, ok := h.openCart(w, r)
	if !ok {
		return
	}

	var (
		item *domain.CartItem
		err  error
	)
	if patch.QuantityOnly() {
		item, err = c.Update(r.Context(), id, *patch.Quantity)
	} else {
		item, err = c.UpdateAttributes(r.Context(), id, patch)
	}
	if err != nil {
		h.handleError(w, err)
		return
	}

	if item == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	respondJSON(w, http.StatusOK, item.View())
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	c, ok := h.openCart(w, r)
	if !ok {
		return
	}

	if err := c.Remove(r.Context(), id); err != nil {
		h.handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) openCart(w http.ResponseWriter, r *http.Request) (*cart.Cart, bool) {
	c, err := cart.New(r.Context(), h.store, h.notifier, h.cfg,
		cart.WithIdentifier(r.Header.Get(IdentifierHeader)),
		cart.WithInstance(chi.URLParam(r, "instance")),
		cart.WithLogger(h.logger),
	)
	if err != nil {
		h.handleError(w, err)
		return nil, false
	}

	return c, true
}

func itemID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "item id must be a UUID")
		return uuid.Nil, false
	}

	return id, true
}

func (h *Handler) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		respondError(w, http.StatusBadRequest, "invalid_argument", err.Error())
	case errors.Is(err, domain.ErrItemNotFound), errors.Is(err, domain.ErrInvalidID):
		respondError(w, http.StatusNotFound, "item_not_found", err.Error())
	case errors.Is(err, domain.ErrSellerConflict):
		respondError(w, http.StatusConflict, "seller_conflict", err.Error())
	default:
		h.logger.Error("cart request failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
