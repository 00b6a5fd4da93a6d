package repository

import (
	"context"

	"github.com/alageshkumardev-create/FitzdoPoc/internal/domain"
)

// ProductRepository defines the read operations of the product query pipeline.
// Implementations must agree on inclusion, ordering and pagination for any
// normalized query.
type ProductRepository interface {
	// List returns one page of products matching q along with the total
	// number of matches.
	List(ctx context.Context, q domain.ProductQuery) ([]domain.Product, int, error)

	// GetByID retrieves a product by its identifier. Unknown and malformed
	// identifiers both yield apperrors.ErrNotFound.
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

// ProductSeeder replaces the contents of a product collection.
type ProductSeeder interface {
	// ReplaceAll wipes the collection and inserts products in order. The
	// order is the insertion order used to break sort ties.
	ReplaceAll(ctx context.Context, products []domain.Product) error
}

// ProductStore is a repository that can also be seeded.
type ProductStore interface {
	ProductRepository
	ProductSeeder
}
