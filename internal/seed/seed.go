// Package seed loads the bundled product fixture and writes it to a store.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/alageshkumardev-create/FitzdoPoc/internal/domain"
	"github.com/alageshkumardev-create/FitzdoPoc/internal/repository"
	"github.com/alageshkumardev-create/FitzdoPoc/pkg/validator"
)

// PricingTolerance is the allowed drift, in percentage points, between a
// fixture's discountPercent and the discount implied by its price and mrp.
const PricingTolerance = 2.0

//go:embed products.json
var fixture []byte

// now is swapped in tests.
var now = time.Now

// Load decodes and validates the bundled fixture.
func Load() ([]domain.Product, error) {
	return Decode(bytes.NewReader(fixture))
}

// Decode reads a JSON array of products from r, validates every entry and
// fills in missing identifiers and timestamps. Identifiers that are missing
// are generated as ObjectID hex strings so the fixture stays usable by every
// store.
func Decode(r io.Reader) ([]domain.Product, error) {
	var products []domain.Product
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	if err := validator.ValidateSlice(products); err != nil {
		return nil, fmt.Errorf("validate products: %w", err)
	}

	seen := make(map[string]struct{}, len(products))
	ts := now().UTC()
	for i := range products {
		p := &products[i]
		if p.ID == "" {
			p.ID = primitive.NewObjectID().Hex()
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("validate products: duplicate id %q at index %d", p.ID, i)
		}
		seen[p.ID] = struct{}{}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = ts
		}
		if p.UpdatedAt.IsZero() {
			p.UpdatedAt = p.CreatedAt
		}
	}
	return products, nil
}

// Inconsistent returns the products whose discountPercent disagrees with
// their price and mrp. The values are never rewritten.
func Inconsistent(products []domain.Product) []domain.Product {
	var out []domain.Product
	for i := range products {
		if !products[i].PricingConsistent(PricingTolerance) {
			out = append(out, products[i])
		}
	}
	return out
}

// Result summarises a seeding run.
type Result struct {
	Inserted     int      `json:"inserted"`
	Inconsistent []string `json:"inconsistent"`
}

// Run wipes the store and inserts products.
func Run(ctx context.Context, store repository.ProductSeeder, products []domain.Product, logger *slog.Logger) (*Result, error) {
	start := time.Now()

	res := &Result{Inserted: len(products), Inconsistent: []string{}}
	for _, p := range Inconsistent(products) {
		implied := 0.0
		if p.MRP > 0 {
			implied = (p.MRP - p.Price) / p.MRP * 100
		}
		logger.Warn("inconsistent product pricing",
			slog.String("product_id", p.ID),
			slog.String("title", p.Title),
			slog.Float64("price", p.Price),
			slog.Float64("mrp", p.MRP),
			slog.Float64("discount_percent", p.DiscountPercent),
			slog.Float64("implied_discount_percent", implied),
		)
		res.Inconsistent = append(res.Inconsistent, p.ID)
	}

	if err := store.ReplaceAll(ctx, products); err != nil {
		return nil, fmt.Errorf("seed products: %w", err)
	}

	logger.Info("products seeded",
		slog.Int("inserted", res.Inserted),
		slog.Int("inconsistent", len(res.Inconsistent)),
		slog.Duration("duration", time.Since(start)),
	)
	return res, nil
}
