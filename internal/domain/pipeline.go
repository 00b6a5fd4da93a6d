package domain

import (
	"cmp"
	"slices"
	"strings"

	"github.com/alageshkumardev-create/FitzdoPoc/pkg/pagination"
)

// Matches reports whether p satisfies every active filter of q. q must be
// normalized.
func (q ProductQuery) Matches(p *Product) bool {
	if q.Q != "" && !matchesText(p, strings.ToLower(q.Q)) {
		return false
	}
	if q.Category != "" && !strings.EqualFold(p.Category, q.Category) {
		return false
	}
	if q.HasMinPrice() && p.Price < q.MinPrice {
		return false
	}
	if q.HasMaxPrice() && p.Price > q.MaxPrice {
		return false
	}
	if q.HasMinRating() && p.Rating < q.MinRating {
		return false
	}
	if q.Sponsored && !p.IsSponsored() {
		return false
	}
	return true
}

func matchesText(p *Product, needle string) bool {
	return strings.Contains(strings.ToLower(p.Title), needle) ||
		strings.Contains(strings.ToLower(p.Brand), needle) ||
		strings.Contains(strings.ToLower(p.Category), needle)
}

// Filter returns the products matching q in their original order.
func Filter(products []Product, q ProductQuery) []Product {
	out := make([]Product, 0, len(products))
	for i := range products {
		if q.Matches(&products[i]) {
			out = append(out, products[i])
		}
	}
	return out
}

// Compare orders a before b (negative), after b (positive) or as equal (zero)
// under order. Equal products keep their insertion order when sorted stably.
func Compare(order SortOrder, a, b *Product) int {
	switch order {
	case SortPriceAsc:
		return cmp.Compare(a.Price, b.Price)
	case SortPriceDesc:
		return cmp.Compare(b.Price, a.Price)
	case SortRatingDesc:
		return cmp.Compare(b.Rating, a.Rating)
	case SortDiscountDesc:
		return cmp.Compare(b.DiscountPercent, a.DiscountPercent)
	default:
		return b.CreatedAt.Compare(a.CreatedAt)
	}
}

// Sort stably sorts products in place.
func Sort(products []Product, order SortOrder) {
	order = ParseSort(string(order))
	slices.SortStableFunc(products, func(a, b Product) int {
		return Compare(order, &a, &b)
	})
}

// Query runs the full filter, sort and paginate pipeline over products,
// which must be in insertion order. It returns the page items and the total
// number of matches.
func Query(products []Product, q ProductQuery) ([]Product, int) {
	q = q.Normalize()
	matched := Filter(products, q)
	Sort(matched, q.Sort)
	return pagination.Slice(matched, q.Pagination()), len(matched)
}
