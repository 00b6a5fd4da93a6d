package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/alageshkumardev-create/FitzdoPoc/internal/domain"
	apperrors "github.com/alageshkumardev-create/FitzdoPoc/pkg/errors"
)

// ProductStore is an in-memory product collection. Products are kept in
// insertion order so the shared pipeline functions can use their position
// as the sort tie-break.
// Thread-safe via sync.RWMutex.
type ProductStore struct {
	mu       sync.RWMutex
	products []domain.Product
	byID     map[string]int
}

// NewProductStore creates a store holding a copy of products.
func NewProductStore(products ...domain.Product) *ProductStore {
	s := &ProductStore{}
	s.replace(products)
	return s
}

// List runs the filter, sort and paginate pipeline over the collection.
func (s *ProductStore) List(ctx context.Context, q domain.ProductQuery) ([]domain.Product, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	items, total := domain.Query(s.products, q)
	return items, total, nil
}

// GetByID returns a copy of the product with the given identifier.
func (s *ProductStore) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	p := s.products[i]
	p.Tags = slices.Clone(p.Tags)
	return &p, nil
}

// ReplaceAll swaps the collection for products.
func (s *ProductStore) ReplaceAll(ctx context.Context, products []domain.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.replace(products)
	return nil
}

// Len reports the number of stored products.
func (s *ProductStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

func (s *ProductStore) replace(products []domain.Product) {
	s.products = make([]domain.Product, len(products))
	s.byID = make(map[string]int, len(products))
	for i := range products {
		p := products[i]
		p.Tags = slices.Clone(p.Tags)
		s.products[i] = p
		s.byID[p.ID] = i
	}
}
