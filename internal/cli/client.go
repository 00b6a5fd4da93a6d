package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/alageshkumardev-create/FitzdoPoc/internal/domain"
	"github.com/alageshkumardev-create/FitzdoPoc/pkg/httpclient"
)

const apiService = "catalog-api"

// APIClient calls the catalog HTTP API through a retrying client guarded by
// a circuit breaker.
type APIClient struct {
	baseURL string
	doer    httpclient.Doer
}

// NewAPIClient creates a client for the API rooted at baseURL.
func NewAPIClient(baseURL string, logger *slog.Logger) *APIClient {
	return newAPIClient(baseURL, httpclient.New(httpclient.DefaultConfig()), logger)
}

func newAPIClient(baseURL string, next httpclient.Doer, logger *slog.Logger) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		doer:    httpclient.NewCircuitBreakerClient(next, httpclient.DefaultCircuitBreakerConfig(apiService), logger),
	}
}

// ListProducts fetches one page of products. params uses the same names as
// the /api/products query string.
func (c *APIClient) ListProducts(ctx context.Context, params url.Values) (*domain.ProductPage, error) {
	target := c.baseURL + "/api/products"
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := httpclient.NewJSONRequest(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	var page domain.ProductPage
	if err := httpclient.DoJSON(ctx, c.doer, req, apiService, &page); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return &page, nil
}

// GetProduct fetches a single product.
func (c *APIClient) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	req, err := httpclient.NewJSONRequest(ctx, http.MethodGet, c.baseURL+"/api/products/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	var p domain.Product
	if err := httpclient.DoJSON(ctx, c.doer, req, apiService, &p); err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}
