package mongo

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/alageshkumardev-create/FitzdoPoc/internal/domain"
)

// document is the stored form of a product. Field names follow the
// storefront's original collection; seq records insertion order.
type document struct {
	ID              primitive.ObjectID `bson:"_id"`
	Seq             int64              `bson:"seq"`
	Title           string             `bson:"title"`
	Brand           string             `bson:"brand"`
	Category        string             `bson:"category"`
	Price           float64            `bson:"price"`
	MRP             float64            `bson:"mrp"`
	Rating          float64            `bson:"rating"`
	RatingCount     int                `bson:"ratingCount"`
	DiscountPercent float64            `bson:"discountPercent"`
	Tags            []string           `bson:"tags"`
	ImageURL        string             `bson:"imageUrl"`
	DeliveryInfo    string             `bson:"deliveryInfo"`
	Description     string             `bson:"description"`
	InStock         bool               `bson:"inStock"`
	CreatedAt       time.Time          `bson:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt"`
}

func toDocument(p *domain.Product, seq int64) (document, error) {
	oid, err := primitive.ObjectIDFromHex(p.ID)
	if err != nil {
		return document{}, fmt.Errorf("product id %q is not an ObjectID: %w", p.ID, err)
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return document{
		ID:              oid,
		Seq:             seq,
		Title:           p.Title,
		Brand:           p.Brand,
		Category:        p.Category,
		Price:           p.Price,
		MRP:             p.MRP,
		Rating:          p.Rating,
		RatingCount:     p.RatingCount,
		DiscountPercent: p.DiscountPercent,
		Tags:            tags,
		ImageURL:        p.ImageURL,
		DeliveryInfo:    p.DeliveryInfo,
		Description:     p.Description,
		InStock:         p.InStock,
		CreatedAt:       p.CreatedAt.UTC(),
		UpdatedAt:       p.UpdatedAt.UTC(),
	}, nil
}

func (d *document) product() domain.Product {
	return domain.Product{
		ID:              d.ID.Hex(),
		Title:           d.Title,
		Brand:           d.Brand,
		Category:        d.Category,
		Price:           d.Price,
		MRP:             d.MRP,
		Rating:          d.Rating,
		RatingCount:     d.RatingCount,
		DiscountPercent: d.DiscountPercent,
		Tags:            d.Tags,
		ImageURL:        d.ImageURL,
		DeliveryInfo:    d.DeliveryInfo,
		Description:     d.Description,
		InStock:         d.InStock,
		CreatedAt:       d.CreatedAt.UTC(),
		UpdatedAt:       d.UpdatedAt.UTC(),
	}
}
