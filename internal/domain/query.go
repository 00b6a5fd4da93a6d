package domain

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/alageshkumardev-create/FitzdoPoc/pkg/pagination"
)

// MaxPriceUnbounded is the conventional "no upper bound" price. Any MaxPrice
// at or above it disables the upper price filter and is never passed to a
// store as a literal.
const MaxPriceUnbounded = 999999

// SortOrder is the wire value of a sort key.
type SortOrder string

const (
	SortPriceAsc     SortOrder = "price"
	SortPriceDesc    SortOrder = "-price"
	SortRatingDesc   SortOrder = "-rating"
	SortDiscountDesc SortOrder = "-discountPercent"
	SortNewest       SortOrder = "-createdAt"
)

// DefaultSort is used for empty and unrecognised sort values.
const DefaultSort = SortNewest

// ParseSort maps a wire value to a SortOrder, falling back to DefaultSort.
func ParseSort(s string) SortOrder {
	switch o := SortOrder(strings.TrimSpace(s)); o {
	case SortPriceAsc, SortPriceDesc, SortRatingDesc, SortDiscountDesc, SortNewest:
		return o
	default:
		return DefaultSort
	}
}

// ProductQuery describes one listing request. Build it with NewProductQuery
// or ParseProductQuery; stores expect a value that has been through
// Normalize.
type ProductQuery struct {
	Q         string
	Category  string
	MinPrice  float64
	MaxPrice  float64
	MinRating float64
	Sponsored bool
	Sort      SortOrder
	Page      int
	Limit     int
}

// NewProductQuery returns the query with every filter unset.
func NewProductQuery() ProductQuery {
	return ProductQuery{
		MaxPrice: MaxPriceUnbounded,
		Sort:     DefaultSort,
		Page:     pagination.DefaultPage,
		Limit:    pagination.DefaultLimit,
	}
}

// ParseProductQuery reads q, category, minPrice, maxPrice, minRating,
// sponsored, sort, page and limit from v. Malformed values fall back to their
// defaults; nothing is rejected.
func ParseProductQuery(v url.Values) ProductQuery {
	q := NewProductQuery()
	q.Q = v.Get("q")
	q.Category = v.Get("category")
	q.MinPrice = parseNumber(v.Get("minPrice"), 0)
	q.MaxPrice = parseNumber(v.Get("maxPrice"), MaxPriceUnbounded)
	q.MinRating = parseNumber(v.Get("minRating"), 0)
	q.Sponsored = strings.EqualFold(strings.TrimSpace(v.Get("sponsored")), "true")
	q.Sort = ParseSort(v.Get("sort"))

	p := pagination.FromValues(v)
	q.Page, q.Limit = p.Page, p.Limit
	return q.Normalize()
}

func parseNumber(s string, def float64) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return f
}

// Normalize trims text inputs and coerces out-of-range values to defaults:
// non-positive page and limit, an unknown sort, negative MinPrice and
// MinRating, and a non-positive MaxPrice (treated as unset).
func (q ProductQuery) Normalize() ProductQuery {
	q.Q = strings.TrimSpace(q.Q)
	q.Category = strings.TrimSpace(q.Category)
	if q.MinPrice < 0 {
		q.MinPrice = 0
	}
	if q.MaxPrice <= 0 || q.MaxPrice > MaxPriceUnbounded {
		q.MaxPrice = MaxPriceUnbounded
	}
	if q.MinRating < 0 {
		q.MinRating = 0
	}
	q.Sort = ParseSort(string(q.Sort))
	p := pagination.New(q.Page, q.Limit)
	q.Page, q.Limit = p.Page, p.Limit
	return q
}

// Pagination returns the page window of the query.
func (q ProductQuery) Pagination() pagination.Params {
	return pagination.New(q.Page, q.Limit)
}

// HasMinPrice reports whether a lower price bound applies.
func (q ProductQuery) HasMinPrice() bool { return q.MinPrice > 0 }

// HasMaxPrice reports whether an upper price bound applies.
func (q ProductQuery) HasMaxPrice() bool { return q.MaxPrice < MaxPriceUnbounded }

// HasMinRating reports whether the rating filter applies.
func (q ProductQuery) HasMinRating() bool { return q.MinRating > 0 }

// ProductPage is one page of listing results.
type ProductPage struct {
	Items      []Product       `json:"items"`
	Pagination pagination.Meta `json:"pagination"`
}

// NewProductPage assembles a page, substituting an empty slice for nil.
func NewProductPage(items []Product, total int, p pagination.Params) *ProductPage {
	if items == nil {
		items = []Product{}
	}
	return &ProductPage{Items: items, Pagination: pagination.NewMeta(total, p)}
}
