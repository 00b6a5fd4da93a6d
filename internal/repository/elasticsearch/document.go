package elasticsearch

import (
	"time"

	"github.com/alageshkumardev-create/FitzdoPoc/internal/domain"
)

// document is the indexed form of a product. _id is a metadata field in
// Elasticsearch, so the identifier is duplicated into id, and seq records the
// insertion order used to break sort ties.
type document struct {
	ID              string    `json:"id"`
	Seq             int64     `json:"seq"`
	Title           string    `json:"title"`
	Brand           string    `json:"brand"`
	Category        string    `json:"category"`
	Price           float64   `json:"price"`
	MRP             float64   `json:"mrp"`
	Rating          float64   `json:"rating"`
	RatingCount     int       `json:"ratingCount"`
	DiscountPercent float64   `json:"discountPercent"`
	Tags            []string  `json:"tags"`
	ImageURL        string    `json:"imageUrl"`
	DeliveryInfo    string    `json:"deliveryInfo"`
	Description     string    `json:"description"`
	InStock         bool      `json:"inStock"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func toDocument(p *domain.Product, seq int64) document {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return document{
		ID:              p.ID,
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
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func (d *document) product() domain.Product {
	return domain.Product{
		ID:              d.ID,
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
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}
