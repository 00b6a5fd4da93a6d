package pagination

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Defaults applied when page or limit are missing, non-numeric, or non-positive.
const (
	DefaultPage  = 1
	DefaultLimit = 12

	// MaxValue bounds page and limit; anything larger is coerced to the default.
	MaxValue = math.MaxInt32
)

// Params holds 1-indexed pagination parameters.
type Params struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// DefaultParams returns page 1 with the default page size.
func DefaultParams() Params {
	return Params{Page: DefaultPage, Limit: DefaultLimit}
}

// New coerces page and limit into a valid Params value.
func New(page, limit int) Params {
	p := DefaultParams()
	if page > 0 && page <= MaxValue {
		p.Page = page
	}
	if limit > 0 && limit <= MaxValue {
		p.Limit = limit
	}
	return p
}

// FromValues extracts page and limit from query values, coercing anything
// that is not a positive number to the defaults.
func FromValues(v url.Values) Params {
	return New(parsePositive(v.Get("page")), parsePositive(v.Get("limit")))
}

// parsePositive returns the integer part of s, or 0 when s is not a finite
// number within MaxValue.
func parsePositive(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n > MaxValue {
			return 0
		}
		return n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f > MaxValue {
		return 0
	}
	return int(f)
}

// Offset returns the number of items to skip before the page starts. It
// saturates at math.MaxInt instead of overflowing.
func (p Params) Offset() int {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

// Bounds returns the half-open slice range of the page within a sequence of
// total items. A page past the end yields an empty range at total.
func (p Params) Bounds(total int) (start, end int) {
	start = min(p.Offset(), total)
	switch {
	case p.Limit <= 0:
		end = start
	case p.Limit < total-start:
		end = start + p.Limit
	default:
		end = total
	}
	return start, end
}

// Slice returns the page of items. The result is never nil.
func Slice[T any](items []T, p Params) []T {
	start, end := p.Bounds(len(items))
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out
}

// Meta is the pagination block returned alongside a page of results.
type Meta struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// NewMeta builds the pagination block for total matching items.
func NewMeta(total int, p Params) Meta {
	return Meta{
		Page:  p.Page,
		Limit: p.Limit,
		Total: total,
		Pages: TotalPages(total, p.Limit),
	}
}

// TotalPages returns ceil(total/limit), and 0 when there is nothing to page.
func TotalPages(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	pages := total / limit
	if total%limit > 0 {
		pages++
	}
	return pages
}
