package elasticsearch

import (
	"strings"

	"github.com/alageshkumardev-create/FitzdoPoc/internal/domain"
	"github.com/alageshkumardev-create/FitzdoPoc/pkg/pagination"
)

// textFields are matched by the free-text filter.
var textFields = []string{"title.keyword", "brand.keyword", "category.keyword"}

// maxResultWindow is the index.max_result_window default. from+size beyond
// it is rejected by the cluster.
const maxResultWindow = 10000

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

// buildSearchQuery constructs the Elasticsearch query DSL for a normalized
// query. Every predicate is a non-scoring filter so inclusion matches the
// other stores exactly.
func buildSearchQuery(q domain.ProductQuery) map[string]any {
	filters := buildFilters(q)

	boolQuery := map[string]any{
		"must": []any{map[string]any{"match_all": map[string]any{}}},
	}
	if len(filters) > 0 {
		boolQuery["filter"] = filters
	}

	from, size := resultWindow(q.Pagination())
	return map[string]any{
		"query": map[string]any{
			"bool": boolQuery,
		},
		"from":             from,
		"size":             size,
		"track_total_hits": true,
		"sort":             buildSort(q.Sort),
	}
}

// resultWindow clips a page to maxResultWindow. A page starting past the
// window asks for no hits, so the caller still gets the total with an empty
// page.
func resultWindow(p pagination.Params) (from, size int) {
	from = p.Offset()
	if from >= maxResultWindow {
		return 0, 0
	}
	return from, min(p.Limit, maxResultWindow-from)
}

// buildFilters constructs the filter clauses. The price sentinel never
// becomes a range bound.
func buildFilters(q domain.ProductQuery) []any {
	var filters []any

	if q.Q != "" {
		pattern := "*" + wildcardEscaper.Replace(q.Q) + "*"
		should := make([]any, 0, len(textFields))
		for _, f := range textFields {
			should = append(should, map[string]any{
				"wildcard": map[string]any{
					f: map[string]any{"value": pattern, "case_insensitive": true},
				},
			})
		}
		filters = append(filters, map[string]any{
			"bool": map[string]any{"should": should, "minimum_should_match": 1},
		})
	}

	if q.Category != "" {
		filters = append(filters, map[string]any{
			"term": map[string]any{
				"category.keyword": map[string]any{"value": q.Category, "case_insensitive": true},
			},
		})
	}

	if q.HasMinPrice() || q.HasMaxPrice() {
		rangeFilter := map[string]any{}
		if q.HasMinPrice() {
			rangeFilter["gte"] = q.MinPrice
		}
		if q.HasMaxPrice() {
			rangeFilter["lte"] = q.MaxPrice
		}
		filters = append(filters, map[string]any{
			"range": map[string]any{"price": rangeFilter},
		})
	}

	if q.HasMinRating() {
		filters = append(filters, map[string]any{
			"range": map[string]any{"rating": map[string]any{"gte": q.MinRating}},
		})
	}

	if q.Sponsored {
		filters = append(filters, map[string]any{
			"term": map[string]any{"tags": domain.SponsoredTag},
		})
	}

	return filters
}

// buildSort constructs the sort clause with seq as the final tie-break.
func buildSort(order domain.SortOrder) []any {
	var primary map[string]any
	switch order {
	case domain.SortPriceAsc:
		primary = map[string]any{"price": "asc"}
	case domain.SortPriceDesc:
		primary = map[string]any{"price": "desc"}
	case domain.SortRatingDesc:
		primary = map[string]any{"rating": "desc"}
	case domain.SortDiscountDesc:
		primary = map[string]any{"discountPercent": "desc"}
	default:
		primary = map[string]any{"createdAt": "desc"}
	}
	return []any{primary, map[string]any{"seq": "asc"}}
}
