package domain

import (
	"slices"
	"time"
)

// SponsoredTag marks a product as a paid placement.
const SponsoredTag = "Fitzdo Sponsored"

// Product is a catalog item. Price, MRP and DiscountPercent are stored
// independently; none is derived from the others.
type Product struct {
	ID              string    `json:"_id"`
	Title           string    `json:"title" validate:"required"`
	Brand           string    `json:"brand" validate:"required"`
	Price           float64   `json:"price" validate:"gte=0"`
	MRP             float64   `json:"mrp" validate:"gte=0"`
	Rating          float64   `json:"rating" validate:"gte=0,lte=5"`
	RatingCount     int       `json:"ratingCount" validate:"gte=0"`
	DiscountPercent float64   `json:"discountPercent" validate:"gte=0,lte=100"`
	Tags            []string  `json:"tags"`
	ImageURL        string    `json:"imageUrl" validate:"required"`
	DeliveryInfo    string    `json:"deliveryInfo"`
	Description     string    `json:"description"`
	Category        string    `json:"category" validate:"required"`
	InStock         bool      `json:"inStock"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// IsSponsored reports whether the product carries the sponsorship tag.
func (p *Product) IsSponsored() bool {
	return slices.Contains(p.Tags, SponsoredTag)
}

// Savings is the per-unit difference between MRP and price. It is negative
// when a product is priced above its MRP.
func (p *Product) Savings() float64 {
	return p.MRP - p.Price
}

// PricingConsistent reports whether DiscountPercent agrees with Price and
// MRP to within tolerance percentage points. Products with a zero MRP are
// consistent only when both price and discount are zero.
func (p *Product) PricingConsistent(tolerance float64) bool {
	if p.Price > p.MRP {
		return false
	}
	if p.MRP == 0 {
		return p.Price == 0 && p.DiscountPercent == 0
	}
	implied := (p.MRP - p.Price) / p.MRP * 100
	diff := implied - p.DiscountPercent
	return diff <= tolerance && diff >= -tolerance
}
