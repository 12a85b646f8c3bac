// Package paging turns page/per_page query parameters into LIMIT/OFFSET
// windows and computes page counts.
//
// Parameters are clamped rather than rejected: a missing or non-numeric value
// falls back to its default, page < 1 becomes 1, per_page < 1 becomes
// DefaultPerPage and per_page > MaxPerPage becomes MaxPerPage. A page past the
// end is valid and simply yields no rows.
package paging

import (
	"math"
	"net/url"
	"strconv"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 10
	MaxPerPage     = 100
)

type Params struct {
	Page    int
	PerPage int
}

// FromQuery reads "page" and "per_page" from q.
func FromQuery(q url.Values) Params {
	return Normalize(atoi(q.Get("page"), DefaultPage), atoi(q.Get("per_page"), DefaultPerPage))
}

func Normalize(page, perPage int) Params {
	if page < 1 {
		page = DefaultPage
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return Params{Page: page, PerPage: perPage}
}

func (p Params) Limit() int {
	return p.PerPage
}

// Offset saturates at math.MaxInt so a huge page stays past the end instead
// of wrapping around to a negative window.
func (p Params) Offset() int {
	if p.Page <= 1 || p.PerPage <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.PerPage {
		return math.MaxInt
	}
	return (p.Page - 1) * p.PerPage
}

// TotalPages is ceil(total / perPage); zero items means zero pages.
func TotalPages(total, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

func atoi(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
