package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alageshkumardev-create/FitzdoPoc/internal/cart"
	"github.com/alageshkumardev-create/FitzdoPoc/internal/domain"
	"github.com/alageshkumardev-create/FitzdoPoc/internal/repository"
	"github.com/alageshkumardev-create/FitzdoPoc/internal/repository/memory"
	"github.com/alageshkumardev-create/FitzdoPoc/internal/seed"
	"github.com/alageshkumardev-create/FitzdoPoc/internal/service"
	"github.com/alageshkumardev-create/FitzdoPoc/pkg/health"
	"github.com/alageshkumardev-create/FitzdoPoc/pkg/httputil"
	"github.com/alageshkumardev-create/FitzdoPoc/pkg/middleware"
	"github.com/alageshkumardev-create/FitzdoPoc/pkg/pagination"
)

const (
	treadmillID = "665f1a2b3c4d5e6f70810001"
	dumbbellID  = "665f1a2b3c4d5e6f70810006"
)

// =============================================================================
// Helpers
// =============================================================================

type failingRepo struct{}

func (failingRepo) List(context.Context, domain.ProductQuery) ([]domain.Product, int, error) {
	return nil, 0, errors.New("connection reset by peer")
}

func (failingRepo) GetByID(context.Context, string) (*domain.Product, error) {
	return nil, errors.New("connection reset by peer")
}

type panickingRepo struct{ failingRepo }

func (panickingRepo) List(context.Context, domain.ProductQuery) ([]domain.Product, int, error) {
	panic("driver exploded")
}

func newTestRouter(t *testing.T, repo repository.ProductRepository) http.Handler {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)

	if repo == nil {
		products, err := seed.Load()
		require.NoError(t, err)
		repo = memory.NewProductStore(products...)
	}

	catalog := service.NewCatalogService(repo, "memory", logger)
	carts := cart.NewService(memory.NewCartStore(), catalog, nil, logger, 0)

	return NewRouter(RouterConfig{
		ServiceName: "catalog-test",
		CORS:        middleware.DefaultCORSConfig(),
	}, catalog, carts, health.NewHandler(), logger)
}

func do(t *testing.T, h http.Handler, method, target, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set(middleware.UserHeader, userID)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type listBody struct {
	Items      []domain.Product `json:"items"`
	Pagination pagination.Meta  `json:"pagination"`
}

type cartBody struct {
	Items   []cart.Line `json:"items"`
	Version int         `json:"version"`
	Total   float64     `json:"total"`
	Count   int         `json:"count"`
	Savings float64     `json:"savings"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// =============================================================================
// Products
// =============================================================================

func TestListProducts_Defaults(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := do(t, h, http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	assert.NotEmpty(t, rec.Header().Get(middleware.CorrelationHeader))

	body := decode[listBody](t, rec)
	assert.Len(t, body.Items, 12)
	assert.Equal(t, pagination.Meta{Page: 1, Limit: 12, Total: 15, Pages: 2}, body.Pagination)
	for i := 1; i < len(body.Items); i++ {
		assert.False(t, body.Items[i].CreatedAt.After(body.Items[i-1].CreatedAt))
	}
}

func TestListProducts_CardioPriceWindow(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := do(t, h, http.MethodGet, "/api/products?category=Cardio&minPrice=1000&maxPrice=5000&page=2&limit=2", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[listBody](t, rec)
	assert.Len(t, body.Items, 1)
	assert.Equal(t, 3, body.Pagination.Total)
	assert.Equal(t, 2, body.Pagination.Pages)
}

func TestListProducts_VersionedPrefix(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := do(t, h, http.MethodGet, "/api/v1/products?sponsored=true&sort=price", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[listBody](t, rec)
	require.Len(t, body.Items, 3)
	for _, p := range body.Items {
		assert.Contains(t, p.Tags, domain.SponsoredTag)
	}
	assert.LessOrEqual(t, body.Items[0].Price, body.Items[1].Price)
	assert.LessOrEqual(t, body.Items[1].Price, body.Items[2].Price)
}

func TestListProducts_EmptyResultIsArray(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := do(t, h, http.MethodGet, "/api/products?category=Accessories&sponsored=true", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"items":[]`)

	body := decode[listBody](t, rec)
	assert.Equal(t, pagination.Meta{Page: 1, Limit: 12, Total: 0, Pages: 0}, body.Pagination)
}

func TestListProducts_GarbageParamsAreCoerced(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := do(t, h, http.MethodGet, "/api/products?page=abc&limit=-5&minPrice=x&maxPrice=0&minRating=bad&sort=nope", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[listBody](t, rec)
	assert.Equal(t, 1, body.Pagination.Page)
	assert.Equal(t, 12, body.Pagination.Limit)
	assert.Equal(t, 15, body.Pagination.Total)
}

func TestListProducts_OversizedPaginationIsCoerced(t *testing.T) {
	h := newTestRouter(t, nil)

	tests := []struct {
		name      string
		query     string
		wantPage  int
		wantLimit int
		wantItems int
	}{
		{"page overflows int", "page=9223372036854775807", 1, 12, 12},
		{"limit overflows int", "page=2&limit=9223372036854775807", 2, 12, 3},
		{"largest page kept", "page=2147483647&limit=2147483647", 2147483647, 2147483647, 0},
		{"page beyond last", "page=99999", 99999, 12, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, "/api/products?"+tt.query, "", nil)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			body := decode[listBody](t, rec)
			assert.Len(t, body.Items, tt.wantItems)
			assert.Equal(t, tt.wantPage, body.Pagination.Page)
			assert.Equal(t, tt.wantLimit, body.Pagination.Limit)
			assert.Equal(t, 15, body.Pagination.Total)
		})
	}
}

func TestListProducts_PanicCarriesCorrelationID(t *testing.T) {
	h := newTestRouter(t, panickingRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set(middleware.CorrelationHeader, "corr-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "corr-123", rec.Header().Get(middleware.CorrelationHeader))

	var body struct {
		Error struct {
			Code      string `json:"code"`
			RequestID string `json:"request_id"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
	assert.Equal(t, "corr-123", body.Error.RequestID)
}

func TestListProducts_StoreFailure(t *testing.T) {
	h := newTestRouter(t, failingRepo{})

	rec := do(t, h, http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	body := decode[httputil.Response](t, rec)
	require.NotNil(t, body.Error)
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
	assert.NotEmpty(t, body.Error.RequestID)
	assert.NotContains(t, rec.Body.String(), "items")
}

func TestGetProduct(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := do(t, h, http.MethodGet, "/api/products/"+dumbbellID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	p := decode[domain.Product](t, rec)
	assert.Equal(t, dumbbellID, p.ID)
	assert.Equal(t, "Kore", p.Brand)
}

func TestGetProduct_NotFound(t *testing.T) {
	h := newTestRouter(t, nil)

	for _, id := range []string{"665f1a2b3c4d5e6f70819999", "not-an-object-id"} {
		rec := do(t, h, http.MethodGet, "/api/products/"+id, "", nil)
		require.Equal(t, http.StatusNotFound, rec.Code, id)

		body := decode[httputil.Response](t, rec)
		require.NotNil(t, body.Error)
		assert.Equal(t, "NOT_FOUND", body.Error.Code)
		assert.Equal(t, "product not found", body.Error.Message)
	}
}

// =============================================================================
// Cart
// =============================================================================

func TestCart_RequiresUser(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := do(t, h, http.MethodGet, "/api/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCart_EmptyCart(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := do(t, h, http.MethodGet, "/api/cart", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[cartBody](t, rec)
	assert.Empty(t, body.Items)
	assert.Zero(t, body.Total)
	assert.Zero(t, body.Count)
}

func TestCart_AddMergeUpdateRemove(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := do(t, h, http.MethodPost, "/api/cart/items", "u1", map[string]any{"productId": dumbbellID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[cartBody](t, rec)
	require.Len(t, body.Items, 1)
	assert.Equal(t, cart.DefaultSize, body.Items[0].Size)
	assert.Equal(t, 1, body.Items[0].Quantity)

	rec = do(t, h, http.MethodPost, "/api/cart/items", "u1", map[string]any{"productId": dumbbellID, "quantity": 2, "size": "M"})
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode[cartBody](t, rec)
	require.Len(t, body.Items, 1)
	assert.Equal(t, 3, body.Count)
	assert.InDelta(t, 3*1899.0, body.Total, 0.001)
	assert.InDelta(t, 3*(3499.0-1899.0), body.Savings, 0.001)

	rec = do(t, h, http.MethodPost, "/api/cart/items", "u1", map[string]any{"productId": treadmillID, "size": "L"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[cartBody](t, rec).Items, 2)

	rec = do(t, h, http.MethodPut, "/api/cart/items/"+dumbbellID+"/M", "u1", map[string]any{"quantity": 5})
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode[cartBody](t, rec)
	assert.Equal(t, 6, body.Count)

	rec = do(t, h, http.MethodPut, "/api/cart/items/"+dumbbellID+"/M", "u1", map[string]any{"quantity": 0})
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode[cartBody](t, rec)
	require.Len(t, body.Items, 1)
	assert.Equal(t, treadmillID, body.Items[0].ProductID)

	rec = do(t, h, http.MethodDelete, "/api/cart/items/"+treadmillID+"/L", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[cartBody](t, rec).Items)
}

func TestCart_CartsAreIsolatedPerUser(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := do(t, h, http.MethodPost, "/api/cart/items", "u1", map[string]any{"productId": dumbbellID})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/cart", "u2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[cartBody](t, rec).Items)
}

func TestCart_Clear(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := do(t, h, http.MethodPost, "/api/cart/items", "u1", map[string]any{"productId": dumbbellID})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/cart", "u1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/cart", "u1", nil)
	assert.Empty(t, decode[cartBody](t, rec).Items)
}

func TestCart_UnknownProduct(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := do(t, h, http.MethodPost, "/api/cart/items", "u1", map[string]any{"productId": "665f1a2b3c4d5e6f70819999"})
	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decode[httputil.Response](t, rec)
	assert.Equal(t, "product not found", body.Error.Message)
}

func TestCart_ValidationErrors(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := do(t, h, http.MethodPost, "/api/cart/items", "u1", map[string]any{"quantity": 1})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[httputil.Response](t, rec)
	require.NotNil(t, body.Error)
	assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
	assert.Contains(t, body.Error.Fields, "productId")

	rec = do(t, h, http.MethodPost, "/api/cart/items", "u1", map[string]any{"productId": dumbbellID, "quantity": 101})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", bytes.NewBufferString("{"))
	req.Header.Set(middleware.UserHeader, "u1")
	raw := httptest.NewRecorder()
	h.ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)
	assert.Equal(t, "INVALID_INPUT", decode[httputil.Response](t, raw).Error.Code)
}

func TestCart_UpdateMissingLine(t *testing.T) {
	h := newTestRouter(t, nil)

	rec := do(t, h, http.MethodPut, "/api/cart/items/"+dumbbellID+"/XL", "u1", map[string]any{"quantity": 2})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCart_RejectsNonJSONBody(t *testing.T) {
	h := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/cart/items", bytes.NewBufferString("productId=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(middleware.UserHeader, "u1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

// =============================================================================
// Operational
// =============================================================================

func TestOperationalEndpoints(t *testing.T) {
	h := newTestRouter(t, nil)

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health/live", "", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health/ready", "", nil).Code)

	rec := do(t, h, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")

	// No CIDRs configured, so pprof is closed.
	assert.Equal(t, http.StatusForbidden, do(t, h, http.MethodGet, "/debug/pprof/", "", nil).Code)
}

func TestRouter_WithoutCart(t *testing.T) {
	products, err := seed.Load()
	require.NoError(t, err)
	logger := slog.New(slog.DiscardHandler)
	catalog := service.NewCatalogService(memory.NewProductStore(products...), "memory", logger)

	h := NewRouter(RouterConfig{ServiceName: "catalog-test"}, catalog, nil, health.NewHandler(), logger)

	rec := do(t, h, http.MethodGet, "/api/products", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/cart", "u1", nil).Code)
}

func TestRouter_RateLimitsAPIRoutesOnly(t *testing.T) {
	products, err := seed.Load()
	require.NoError(t, err)
	logger := slog.New(slog.DiscardHandler)
	catalog := service.NewCatalogService(memory.NewProductStore(products...), "memory", logger)

	h := NewRouter(RouterConfig{
		ServiceName: "catalog-test",
		RateLimit:   middleware.RateLimitConfig{RPS: 0.001, Burst: 1},
	}, catalog, nil, health.NewHandler(), logger)

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/products", "", nil).Code)
	rec := do(t, h, http.MethodGet, "/api/products", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "RATE_LIMITED")

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health/live", "", nil).Code)
}
