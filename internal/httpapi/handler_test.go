package httpapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/nikolayk812/sqlcpp-cart/internal/cart"
	"github.com/nikolayk812/sqlcpp-cart/internal/domain"
	"github.com/nikolayk812/sqlcpp-cart/internal/httpapi"
	"github.com/nikolayk812/sqlcpp-cart/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newRouter(t *testing.T) chi.Router {
	t.Helper()

	cfg := cart.DefaultConfig()
	cfg.Pricing.TaxIncluded = false

	h := httpapi.NewHandler(repository.NewMemoryStore(), nil, cfg, zaptest.NewLogger(t))

	return h.Routes()
}

func do(t *testing.T, router http.Handler, method, path, identifier, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if identifier != "" {
		req.Header.Set(httpapi.IdentifierHeader, identifier)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))

	return v
}

func TestHealth(t *testing.T) {
	rec := do(t, newRouter(t), http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAnonymousAddAssignsIdentifier(t *testing.T) {
	router := newRouter(t)

	rec := do(t, router, http.MethodPost, "/carts/default/items", "",
		`{"productId":"sku-1","productTitle":"Mug","price":"100","qty":2,"tax":18}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	identifier := rec.Header().Get(httpapi.IdentifierHeader)
	require.NotEmpty(t, identifier)

	item := decode[domain.ItemView](t, rec)
	assert.Equal(t, "sku-1", item.ProductID)
	assert.Equal(t, "236.00", item.Total)

	rec = do(t, router, http.MethodGet, "/carts/default", identifier, "")
	require.Equal(t, http.StatusOK, rec.Code)

	view := decode[domain.CartView](t, rec)
	assert.Equal(t, identifier, view.Identifier)
	assert.Equal(t, "default", view.Instance)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "200.00", view.SubTotal)
	assert.Equal(t, "236.00", view.Total)
	assert.Equal(t, "36.00", view.Tax)
}

func TestAddItems(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "single item: created",
			body:       `{"productId":"sku-1","productTitle":"Mug","price":10}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "batch of items: created",
			body:       `[{"productId":"sku-1","productTitle":"Mug","price":10},{"productId":"sku-2","productTitle":"Cup","price":5}]`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing price: bad request",
			body:       `{"productId":"sku-1","productTitle":"Mug"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_argument",
		},
		{
			name:       "broken json: bad request",
			body:       `{"productId":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_request",
		},
		{
			name:       "two sellers: conflict",
			body:       `[{"productId":"sku-1","productTitle":"Mug","price":10,"sellerId":"a"},{"productId":"sku-2","productTitle":"Cup","price":5,"sellerId":"b"}]`,
			wantStatus: http.StatusConflict,
			wantCode:   "seller_conflict",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newRouter(t), http.MethodPost, "/carts/default/items", "owner-1", tt.body)
			require.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantCode != "" {
				resp := decode[httpapi.ErrorResponse](t, rec)
				assert.Equal(t, tt.wantCode, resp.Code)
			}
		})
	}
}

func TestItemLifecycle(t *testing.T) {
	router := newRouter(t)
	const owner = "owner-1"

	rec := do(t, router, http.MethodPost, "/carts/default/items", owner,
		`{"productId":"sku-1","productTitle":"Mug","price":10,"options":{"size":"M"}}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	item := decode[domain.ItemView](t, rec)

	// same product and options merge into one line
	rec = do(t, router, http.MethodPost, "/carts/default/items", owner,
		`{"productId":"sku-1","productTitle":"Mug","price":10,"qty":2,"options":{"size":"M"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	merged := decode[domain.ItemView](t, rec)
	assert.Equal(t, item.ID, merged.ID)
	assert.Equal(t, "3", merged.Qty)

	// a batch that only merges creates nothing either
	rec = do(t, router, http.MethodPost, "/carts/default/items", owner,
		`[{"productId":"sku-1","productTitle":"Mug","price":10,"options":{"size":"M"}}]`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "4", decode[[]domain.ItemView](t, rec)[0].Qty)

	// one new line in the batch is enough for created
	rec = do(t, router, http.MethodPost, "/carts/default/items", owner,
		`[{"productId":"sku-9","productTitle":"Cup","price":1},{"productId":"sku-1","productTitle":"Mug","price":10,"options":{"size":"M"}}]`)
	require.Equal(t, http.StatusCreated, rec.Code)
	batch := decode[[]domain.ItemView](t, rec)
	require.Len(t, batch, 2)
	assert.Equal(t, item.ID, batch[1].ID)
	assert.Equal(t, "5", batch[1].Qty)

	rec = do(t, router, http.MethodPut, "/carts/default/items/"+batch[0].ID.String(), owner, `{"qty":0}`)
	require.Equal(t, http.StatusNoContent, rec.Code)

	itemPath := "/carts/default/items/" + item.ID.String()

	rec = do(t, router, http.MethodGet, itemPath, owner, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodPut, itemPath, owner, `{"qty":5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "5", decode[domain.ItemView](t, rec).Qty)

	rec = do(t, router, http.MethodPut, itemPath, owner, `{"productTitle":"Big mug","price":12}`)
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[domain.ItemView](t, rec)
	assert.Equal(t, "Big mug", updated.ProductTitle)
	assert.Equal(t, "60.00", updated.Total)

	rec = do(t, router, http.MethodPut, itemPath, owner, `{"qty":0}`)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, http.MethodGet, itemPath, owner, "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodDelete, itemPath, owner, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRemoveAndDestroy(t *testing.T) {
	router := newRouter(t)
	const owner = "owner-2"

	rec := do(t, router, http.MethodPost, "/carts/wishlist/items", owner,
		`[{"productId":"sku-1","productTitle":"Mug","price":10},{"productId":"sku-2","productTitle":"Cup","price":5}]`)
	require.Equal(t, http.StatusCreated, rec.Code)
	items := decode[[]domain.ItemView](t, rec)
	require.Len(t, items, 2)

	rec = do(t, router, http.MethodDelete, "/carts/wishlist/items/"+items[0].ID.String(), owner, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	// other instances of the same owner are separate carts
	rec = do(t, router, http.MethodGet, "/carts/default", owner, "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodGet, "/carts/wishlist", owner, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[domain.CartView](t, rec).Items, 1)

	rec = do(t, router, http.MethodDelete, "/carts/wishlist", owner, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, router, http.MethodGet, "/carts/wishlist", owner, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInvalidItemID(t *testing.T) {
	router := newRouter(t)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		rec := do(t, router, method, "/carts/default/items/not-a-uuid", "owner-3", `{"qty":1}`)
		require.Equal(t, http.StatusBadRequest, rec.Code, method)

		resp := decode[httpapi.ErrorResponse](t, rec)
		assert.Equal(t, "invalid_item_id", resp.Code)
	}
}
