package postgres

import (
	"context"
	"errors"
	"io/fs"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alageshkumardev-create/FitzdoPoc/internal/domain"
	"github.com/alageshkumardev-create/FitzdoPoc/pkg/database"
	apperrors "github.com/alageshkumardev-create/FitzdoPoc/pkg/errors"
)

var now = time.Date(2024, 5, 3, 10, 0, 0, 0, time.UTC)

var columns = []string{
	"id", "title", "brand", "category", "price", "mrp", "rating", "rating_count", "discount_percent",
	"tags", "image_url", "delivery_info", "description", "in_stock", "created_at", "updated_at",
}

var columnsWithCount = append(append([]string{}, columns...), "total_count")

func sampleProduct() domain.Product {
	return domain.Product{
		ID:              "665f1a2b3c4d5e6f70810003",
		Title:           "Magnetic Exercise Bike",
		Brand:           "Cockatoo",
		Category:        "Cardio",
		Price:           4499,
		MRP:             9999,
		Rating:          4.4,
		RatingCount:     812,
		DiscountPercent: 55,
		Tags:            []string{"Home Gym"},
		ImageURL:        "https://cdn.fitzdo.test/bike.jpg",
		DeliveryInfo:    "Free delivery",
		Description:     "8 level magnetic resistance",
		InStock:         true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func productRow(p domain.Product) []any {
	return []any{
		p.ID, p.Title, p.Brand, p.Category, p.Price, p.MRP, p.Rating, p.RatingCount, p.DiscountPercent,
		p.Tags, p.ImageURL, p.DeliveryInfo, p.Description, p.InStock, p.CreatedAt, p.UpdatedAt,
	}
}

// ============================================================================
// buildListQuery
// ============================================================================

func TestBuildListQuery_Defaults(t *testing.T) {
	lq := buildListQuery(domain.NewProductQuery())

	assert.NotContains(t, lq.SQL, "WHERE")
	assert.Contains(t, lq.SQL, "ORDER BY created_at DESC, seq ASC")
	assert.Equal(t, []any{12, 0}, lq.Args)
	assert.Equal(t, "SELECT count(*) FROM products", lq.CountSQL)
	assert.Empty(t, lq.CountArgs)
}

func TestBuildListQuery_AllFilters(t *testing.T) {
	q := domain.ProductQuery{
		Q:         "50%_off",
		Category:  "cardio",
		MinPrice:  1000,
		MaxPrice:  5000,
		MinRating: 4,
		Sponsored: true,
		Sort:      domain.SortPriceAsc,
		Page:      3,
		Limit:     5,
	}.Normalize()

	lq := buildListQuery(q)

	assert.Contains(t, lq.SQL, "(title ILIKE $1 OR brand ILIKE $1 OR category ILIKE $1)")
	assert.Contains(t, lq.SQL, "lower(category) = lower($2)")
	assert.Contains(t, lq.SQL, "price >= $3")
	assert.Contains(t, lq.SQL, "price <= $4")
	assert.Contains(t, lq.SQL, "rating >= $5")
	assert.Contains(t, lq.SQL, "$6 = ANY(tags)")
	assert.Contains(t, lq.SQL, "ORDER BY price ASC, seq ASC")
	assert.Contains(t, lq.SQL, "LIMIT $7 OFFSET $8")
	assert.Equal(t, []any{`%50\%\_off%`, "cardio", 1000.0, 5000.0, 4.0, domain.SponsoredTag, 5, 10}, lq.Args)
	assert.Len(t, lq.CountArgs, 6)
}

func TestBuildListQuery_SentinelNeverBound(t *testing.T) {
	for _, max := range []float64{domain.MaxPriceUnbounded, 2_000_000, 0} {
		lq := buildListQuery(domain.ProductQuery{MaxPrice: max}.Normalize())
		assert.NotContains(t, lq.SQL, "price <=", "max %v", max)
		assert.NotContains(t, lq.Args, float64(domain.MaxPriceUnbounded))
	}
}

func TestBuildListQuery_SortKeysKeepTieBreak(t *testing.T) {
	tests := map[domain.SortOrder]string{
		domain.SortPriceAsc:     "price ASC",
		domain.SortPriceDesc:    "price DESC",
		domain.SortRatingDesc:   "rating DESC",
		domain.SortDiscountDesc: "discount_percent DESC",
		domain.SortNewest:       "created_at DESC",
	}
	for order, key := range tests {
		lq := buildListQuery(domain.ProductQuery{Sort: order}.Normalize())
		assert.Contains(t, lq.SQL, "ORDER BY "+key+", seq ASC")
	}
}

// ============================================================================
// List
// ============================================================================

func TestProductRepository_List_Success(t *testing.T) {
	mock := database.NewMockPool(t)
	repo := NewProductRepository(mock)

	p := sampleProduct()
	mock.ExpectQuery(`SELECT .+ FROM products\s+WHERE lower\(category\) = lower\(\$1\) AND price >= \$2 AND price <= \$3`).
		WithArgs("Cardio", 1000.0, 5000.0, 2, 2).
		WillReturnRows(pgxmock.NewRows(columnsWithCount).AddRow(append(productRow(p), 3)...))

	q := domain.ProductQuery{Category: "Cardio", MinPrice: 1000, MaxPrice: 5000, Page: 2, Limit: 2}
	products, total, err := repo.List(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, 3, total)
	assert.Equal(t, p, products[0])
}

func TestProductRepository_List_EmptyFirstPage(t *testing.T) {
	mock := database.NewMockPool(t)
	repo := NewProductRepository(mock)

	mock.ExpectQuery(`SELECT .+ FROM products\s+WHERE \$1 = ANY\(tags\)`).
		WithArgs(domain.SponsoredTag, 12, 0).
		WillReturnRows(pgxmock.NewRows(columnsWithCount))

	products, total, err := repo.List(context.Background(), domain.ProductQuery{Sponsored: true})
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
	assert.Zero(t, total)
}

func TestProductRepository_List_PageBeyondEndCounts(t *testing.T) {
	mock := database.NewMockPool(t)
	repo := NewProductRepository(mock)

	mock.ExpectQuery(`SELECT .+ FROM products`).
		WithArgs(12, 108).
		WillReturnRows(pgxmock.NewRows(columnsWithCount))
	mock.ExpectQuery(`SELECT count\(\*\) FROM products`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(15))

	products, total, err := repo.List(context.Background(), domain.ProductQuery{Page: 10})
	require.NoError(t, err)
	assert.Empty(t, products)
	assert.Equal(t, 15, total)
}

func TestProductRepository_List_QueryError(t *testing.T) {
	mock := database.NewMockPool(t)
	repo := NewProductRepository(mock)

	mock.ExpectQuery(`SELECT .+ FROM products`).WillReturnError(errors.New("connection reset"))

	_, _, err := repo.List(context.Background(), domain.NewProductQuery())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list products")
}

// ============================================================================
// GetByID
// ============================================================================

func TestProductRepository_GetByID_Success(t *testing.T) {
	mock := database.NewMockPool(t)
	repo := NewProductRepository(mock)

	p := sampleProduct()
	mock.ExpectQuery(`SELECT .+ FROM products WHERE id = \$1`).
		WithArgs(p.ID).
		WillReturnRows(pgxmock.NewRows(columns).AddRow(productRow(p)...))

	got, err := repo.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, &p, got)
}

func TestProductRepository_GetByID_NotFound(t *testing.T) {
	mock := database.NewMockPool(t)
	repo := NewProductRepository(mock)

	mock.ExpectQuery(`SELECT .+ FROM products WHERE id = \$1`).
		WithArgs("not-an-id").
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.GetByID(context.Background(), "not-an-id")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// ============================================================================
// ReplaceAll
// ============================================================================

func TestProductRepository_ReplaceAll_Success(t *testing.T) {
	mock := database.NewMockPool(t)
	repo := NewProductRepository(mock)

	a, b := sampleProduct(), sampleProduct()
	b.ID = "665f1a2b3c4d5e6f70810004"
	b.Tags = nil

	mock.ExpectBegin()
	mock.ExpectExec(`TRUNCATE products RESTART IDENTITY`).WillReturnResult(pgxmock.NewResult("TRUNCATE", 0))
	mock.ExpectExec(`INSERT INTO products`).WithArgs(productRow(a)...).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	rowB := productRow(b)
	rowB[9] = []string{}
	mock.ExpectExec(`INSERT INTO products`).WithArgs(rowB...).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, repo.ReplaceAll(context.Background(), []domain.Product{a, b}))
}

func TestProductRepository_ReplaceAll_InsertErrorRollsBack(t *testing.T) {
	mock := database.NewMockPool(t)
	repo := NewProductRepository(mock)

	mock.ExpectBegin()
	mock.ExpectExec(`TRUNCATE products`).WillReturnResult(pgxmock.NewResult("TRUNCATE", 0))
	mock.ExpectExec(`INSERT INTO products`).WillReturnError(errors.New("check constraint violated"))
	mock.ExpectRollback()

	err := repo.ReplaceAll(context.Background(), []domain.Product{sampleProduct()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert product")
}

// ============================================================================
// Migrations
// ============================================================================

func TestMigrations_Embedded(t *testing.T) {
	names, err := database.PendingMigrations(Migrations())
	require.NoError(t, err)
	assert.Equal(t, []string{"001_products.up.sql"}, names)

	body, err := fs.ReadFile(Migrations(), names[0])
	require.NoError(t, err)
	assert.Contains(t, string(body), "seq              BIGSERIAL")
}
