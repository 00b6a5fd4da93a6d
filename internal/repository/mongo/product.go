package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/alageshkumardev-create/FitzdoPoc/internal/domain"
	"github.com/alageshkumardev-create/FitzdoPoc/pkg/database"
	apperrors "github.com/alageshkumardev-create/FitzdoPoc/pkg/errors"
)

// DefaultCollection is the collection products are stored in.
const DefaultCollection = "products"

// ProductRepository implements repository.ProductStore using MongoDB.
type ProductRepository struct {
	coll   *mongo.Collection
	mode   TextMode
	logger *slog.Logger
}

// NewProductRepository creates a MongoDB-backed product repository.
func NewProductRepository(db *mongo.Database, collection string, mode TextMode, logger *slog.Logger) *ProductRepository {
	if collection == "" {
		collection = DefaultCollection
	}
	return &ProductRepository{coll: db.Collection(collection), mode: mode, logger: logger}
}

// EnsureIndexes creates the indexes used by List. It is idempotent.
func (r *ProductRepository) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "title", Value: "text"}, {Key: "brand", Value: "text"}, {Key: "description", Value: "text"}},
			Options: options.Index().SetName("products_text"),
		},
		{Keys: bson.D{{Key: "category", Value: 1}}, Options: options.Index().SetName("products_category")},
		{Keys: bson.D{{Key: "price", Value: 1}}, Options: options.Index().SetName("products_price")},
		{Keys: bson.D{{Key: "createdAt", Value: -1}, {Key: "seq", Value: 1}}, Options: options.Index().SetName("products_created_at")},
	}
	names, err := r.coll.Indexes().CreateMany(ctx, models)
	if err != nil {
		return fmt.Errorf("create product indexes: %w", err)
	}
	r.logger.Info("mongo indexes ensured", slog.String("collection", r.coll.Name()), slog.Any("indexes", names))
	return nil
}

// List returns one page of matching products and the total match count.
func (r *ProductRepository) List(ctx context.Context, q domain.ProductQuery) (_ []domain.Product, _ int, err error) {
	q = q.Normalize()
	filter := buildFilter(q, r.mode)

	ctx, end := database.TraceQuery(ctx, database.SystemMongo, "ListProducts", statement(filter))
	defer func() { end(err) }()

	p := q.Pagination()
	opts := options.Find().
		SetSort(buildSort(q.Sort)).
		SetSkip(int64(p.Offset())).
		SetLimit(int64(p.Limit))

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find products: %w", err)
	}

	var docs []document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode products: %w", err)
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	products := make([]domain.Product, 0, len(docs))
	for i := range docs {
		products = append(products, docs[i].product())
	}
	return products, int(total), nil
}

// GetByID retrieves a product by its hex ObjectID. Malformed ids are
// reported as not found.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (_ *domain.Product, err error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.ErrNotFound
	}

	ctx, end := database.TraceQuery(ctx, database.SystemMongo, "GetProduct", id)
	defer func() {
		if errors.Is(err, apperrors.ErrNotFound) {
			end(nil)
			return
		}
		end(err)
	}()

	var doc document
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	p := doc.product()
	return &p, nil
}

// ReplaceAll deletes every product and inserts products in order. Every id
// must be a hex ObjectID; nothing is deleted when one is not.
func (r *ProductRepository) ReplaceAll(ctx context.Context, products []domain.Product) (err error) {
	docs := make([]any, 0, len(products))
	for i := range products {
		doc, err := toDocument(&products[i], int64(i+1))
		if err != nil {
			return fmt.Errorf("replace products: %w", err)
		}
		docs = append(docs, doc)
	}

	ctx, end := database.TraceQuery(ctx, database.SystemMongo, "ReplaceProducts", r.coll.Name())
	defer func() { end(err) }()

	deleted, err := r.coll.DeleteMany(ctx, bson.D{})
	if err != nil {
		return fmt.Errorf("delete products: %w", err)
	}
	if len(docs) > 0 {
		if _, err := r.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true)); err != nil {
			return fmt.Errorf("insert products: %w", err)
		}
	}

	r.logger.Info("mongo products replaced",
		slog.Int64("deleted", deleted.DeletedCount),
		slog.Int("inserted", len(docs)),
	)
	return nil
}

// Ping checks MongoDB connectivity.
func (r *ProductRepository) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, readpref.Primary())
}

func statement(filter bson.D) string {
	raw, err := bson.MarshalExtJSON(filter, false, false)
	if err != nil {
		return ""
	}
	return string(raw)
}
