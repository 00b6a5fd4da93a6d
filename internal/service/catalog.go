package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/alageshkumardev-create/FitzdoPoc/internal/domain"
	"github.com/alageshkumardev-create/FitzdoPoc/internal/repository"
	apperrors "github.com/alageshkumardev-create/FitzdoPoc/pkg/errors"
	"github.com/alageshkumardev-create/FitzdoPoc/pkg/tracing"
)

// CatalogService runs product queries against a single store.
type CatalogService struct {
	repo   repository.ProductRepository
	store  string
	logger *slog.Logger
}

// NewCatalogService creates a catalog service. store names the backing
// store in metrics and logs.
func NewCatalogService(repo repository.ProductRepository, store string, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		repo:   repo,
		store:  store,
		logger: logger,
	}
}

// Store returns the name of the backing store.
func (s *CatalogService) Store() string {
	return s.store
}

// List runs the query pipeline. Out-of-range inputs are coerced, never
// rejected; the coerced page and limit are echoed in the result.
func (s *CatalogService) List(ctx context.Context, q domain.ProductQuery) (_ *domain.ProductPage, err error) {
	q = q.Normalize()

	ctx, span := tracing.StartSpan(ctx, "catalog.List",
		attribute.String("catalog.store", s.store),
		attribute.String("catalog.sort", string(q.Sort)),
		attribute.Int("catalog.page", q.Page),
		attribute.Int("catalog.limit", q.Limit),
	)
	defer func() { tracing.End(span, err) }()

	items, total, err := s.repo.List(ctx, q)
	if err != nil {
		storeErrors.WithLabelValues(s.store, "list").Inc()
		return nil, fmt.Errorf("list products: %w", err)
	}
	queryResults.WithLabelValues(s.store).Observe(float64(total))

	s.logger.DebugContext(ctx, "products listed",
		slog.String("store", s.store),
		slog.String("q", q.Q),
		slog.String("category", q.Category),
		slog.Int("total", total),
		slog.Int("page", q.Page),
	)

	return domain.NewProductPage(items, total, q.Pagination()), nil
}

// GetByID returns a single product. Unknown and malformed ids both yield a
// not-found error.
func (s *CatalogService) GetByID(ctx context.Context, id string) (_ *domain.Product, err error) {
	id = strings.TrimSpace(id)

	ctx, span := tracing.StartSpan(ctx, "catalog.GetByID",
		attribute.String("catalog.store", s.store),
		attribute.String("catalog.product_id", id),
	)
	defer func() {
		if errors.Is(err, apperrors.ErrNotFound) {
			tracing.End(span, nil)
			return
		}
		tracing.End(span, err)
	}()

	if id == "" {
		return nil, apperrors.NotFound("product", id)
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("product", id)
		}
		storeErrors.WithLabelValues(s.store, "get").Inc()
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}
