package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/alageshkumardev-create/FitzdoPoc/internal/domain"
	"github.com/alageshkumardev-create/FitzdoPoc/pkg/database"
	apperrors "github.com/alageshkumardev-create/FitzdoPoc/pkg/errors"
)

const productColumns = `id, title, brand, category, price, mrp, rating, rating_count, discount_percent,
		tags, image_url, delivery_info, description, in_stock, created_at, updated_at`

// ProductRepository implements repository.ProductStore using PostgreSQL.
type ProductRepository struct {
	db database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(db database.DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

// listQuery is a built SELECT statement with its positional arguments, plus
// the matching count statement used when the page window is empty.
type listQuery struct {
	SQL       string
	Args      []any
	CountSQL  string
	CountArgs []any
}

// buildListQuery translates a normalized query into SQL. The price sentinel
// never reaches the statement, and seq always breaks sort ties.
func buildListQuery(q domain.ProductQuery) listQuery {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if q.Q != "" {
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR brand ILIKE $%d OR category ILIKE $%d)", argIndex, argIndex, argIndex))
		args = append(args, "%"+escapeLike(q.Q)+"%")
		argIndex++
	}

	if q.Category != "" {
		conditions = append(conditions, fmt.Sprintf("lower(category) = lower($%d)", argIndex))
		args = append(args, q.Category)
		argIndex++
	}

	if q.HasMinPrice() {
		conditions = append(conditions, fmt.Sprintf("price >= $%d", argIndex))
		args = append(args, q.MinPrice)
		argIndex++
	}

	if q.HasMaxPrice() {
		conditions = append(conditions, fmt.Sprintf("price <= $%d", argIndex))
		args = append(args, q.MaxPrice)
		argIndex++
	}

	if q.HasMinRating() {
		conditions = append(conditions, fmt.Sprintf("rating >= $%d", argIndex))
		args = append(args, q.MinRating)
		argIndex++
	}

	if q.Sponsored {
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(tags)", argIndex))
		args = append(args, domain.SponsoredTag)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// Use count(*) OVER() for total count in a single query.
	sql := fmt.Sprintf(`
		SELECT %s,
			   count(*) OVER() AS total_count
		FROM products
		%s
		ORDER BY %s, seq ASC
		LIMIT $%d OFFSET $%d`,
		productColumns, whereClause, orderBy(q.Sort), argIndex, argIndex+1,
	)

	countSQL := strings.TrimSpace("SELECT count(*) FROM products " + whereClause)
	countArgs := args[:len(args):len(args)]

	p := q.Pagination()
	args = append(args, p.Limit, p.Offset())
	return listQuery{SQL: sql, Args: args, CountSQL: countSQL, CountArgs: countArgs}
}

func orderBy(order domain.SortOrder) string {
	switch order {
	case domain.SortPriceAsc:
		return "price ASC"
	case domain.SortPriceDesc:
		return "price DESC"
	case domain.SortRatingDesc:
		return "rating DESC"
	case domain.SortDiscountDesc:
		return "discount_percent DESC"
	default:
		return "created_at DESC"
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// List returns one page of matching products and the total match count.
func (r *ProductRepository) List(ctx context.Context, q domain.ProductQuery) (_ []domain.Product, _ int, err error) {
	lq := buildListQuery(q.Normalize())

	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "ListProducts", lq.SQL)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, lq.SQL, lq.Args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var (
		products   = make([]domain.Product, 0)
		totalCount int
	)

	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(append(scanTargets(&p), &totalCount)...); err != nil {
			return nil, 0, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate product rows: %w", err)
	}

	// A page past the end returns no rows, so the window total is lost.
	if len(products) == 0 && q.Normalize().Page > 1 {
		if err := r.db.QueryRow(ctx, lq.CountSQL, lq.CountArgs...).Scan(&totalCount); err != nil {
			return nil, 0, fmt.Errorf("count products: %w", err)
		}
	}

	return products, totalCount, nil
}

// GetByID retrieves a product by its ID.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (_ *domain.Product, err error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "GetProduct", query)
	defer func() {
		if errors.Is(err, apperrors.ErrNotFound) {
			end(nil)
			return
		}
		end(err)
	}()

	var p domain.Product
	if err := r.db.QueryRow(ctx, query, id).Scan(scanTargets(&p)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// ReplaceAll truncates the table and inserts products in order, resetting
// seq so insertion order restarts at 1.
func (r *ProductRepository) ReplaceAll(ctx context.Context, products []domain.Product) (err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemPostgres, "ReplaceProducts", "TRUNCATE products; INSERT INTO products")
	defer func() { end(err) }()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if _, err := tx.Exec(ctx, "TRUNCATE products RESTART IDENTITY"); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("truncate products: %w", err)
	}

	insert := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	for i := range products {
		p := &products[i]
		tags := p.Tags
		if tags == nil {
			tags = []string{}
		}
		_, err := tx.Exec(ctx, insert,
			p.ID,
			p.Title,
			p.Brand,
			p.Category,
			p.Price,
			p.MRP,
			p.Rating,
			p.RatingCount,
			p.DiscountPercent,
			tags,
			p.ImageURL,
			p.DeliveryInfo,
			p.Description,
			p.InStock,
			p.CreatedAt,
			p.UpdatedAt,
		)
		if err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("insert product %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit products: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (r *ProductRepository) Ping(ctx context.Context) error {
	var one int
	return r.db.QueryRow(ctx, "SELECT 1").Scan(&one)
}

func scanTargets(p *domain.Product) []any {
	return []any{
		&p.ID,
		&p.Title,
		&p.Brand,
		&p.Category,
		&p.Price,
		&p.MRP,
		&p.Rating,
		&p.RatingCount,
		&p.DiscountPercent,
		&p.Tags,
		&p.ImageURL,
		&p.DeliveryInfo,
		&p.Description,
		&p.InStock,
		&p.CreatedAt,
		&p.UpdatedAt,
	}
}
