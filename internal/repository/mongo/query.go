package mongo

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/alageshkumardev-create/FitzdoPoc/internal/domain"
)

// TextMode selects how the free-text filter is evaluated.
type TextMode int

const (
	// TextSubstring matches case-insensitive substrings of title, brand or
	// category, identical to the other stores.
	TextSubstring TextMode = iota
	// TextIndex uses the collection's $text index. Inclusion follows
	// MongoDB's tokenizer and stemmer rather than substring semantics.
	TextIndex
)

// buildFilter translates a normalized query into a find filter. The price
// sentinel never becomes a $lte bound.
func buildFilter(q domain.ProductQuery, mode TextMode) bson.D {
	filter := bson.D{}

	if q.Q != "" {
		if mode == TextIndex {
			filter = append(filter, bson.E{Key: "$text", Value: bson.D{{Key: "$search", Value: q.Q}}})
		} else {
			re := primitive.Regex{Pattern: regexp.QuoteMeta(q.Q), Options: "i"}
			filter = append(filter, bson.E{Key: "$or", Value: bson.A{
				bson.D{{Key: "title", Value: re}},
				bson.D{{Key: "brand", Value: re}},
				bson.D{{Key: "category", Value: re}},
			}})
		}
	}

	if q.Category != "" {
		filter = append(filter, bson.E{Key: "category", Value: primitive.Regex{
			Pattern: "^" + regexp.QuoteMeta(q.Category) + "$",
			Options: "i",
		}})
	}

	if q.HasMinPrice() || q.HasMaxPrice() {
		price := bson.D{}
		if q.HasMinPrice() {
			price = append(price, bson.E{Key: "$gte", Value: q.MinPrice})
		}
		if q.HasMaxPrice() {
			price = append(price, bson.E{Key: "$lte", Value: q.MaxPrice})
		}
		filter = append(filter, bson.E{Key: "price", Value: price})
	}

	if q.HasMinRating() {
		filter = append(filter, bson.E{Key: "rating", Value: bson.D{{Key: "$gte", Value: q.MinRating}}})
	}

	if q.Sponsored {
		filter = append(filter, bson.E{Key: "tags", Value: domain.SponsoredTag})
	}

	return filter
}

// buildSort returns the sort document with seq and _id as tie-breaks.
func buildSort(order domain.SortOrder) bson.D {
	var primary bson.E
	switch order {
	case domain.SortPriceAsc:
		primary = bson.E{Key: "price", Value: 1}
	case domain.SortPriceDesc:
		primary = bson.E{Key: "price", Value: -1}
	case domain.SortRatingDesc:
		primary = bson.E{Key: "rating", Value: -1}
	case domain.SortDiscountDesc:
		primary = bson.E{Key: "discountPercent", Value: -1}
	default:
		primary = bson.E{Key: "createdAt", Value: -1}
	}
	return bson.D{primary, {Key: "seq", Value: 1}, {Key: "_id", Value: 1}}
}
