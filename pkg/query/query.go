// Package query filters and paginates catalog snapshots. All operations
// are pure: for an identical snapshot, filter set, and pagination
// parameters the output is always identical.
package query

import (
	"strconv"
	"strings"

	"github.com/gacz1998/Proxy-API/pkg/catalog"
)

const (
	// DefaultPageSize is used when page_size is absent or not numeric.
	DefaultPageSize = 24

	// MaxPageSize is the upper clamp for page_size.
	MaxPageSize = 1000
)

// Filters holds the equality predicates applied to the snapshot. Empty
// values mean "no filter". Predicates compose with logical AND and match
// case-insensitively; a product missing a filtered field is excluded.
type Filters struct {
	Family   string
	Category string
}

// Active reports whether any predicate is set.
func (f Filters) Active() bool {
	return f.Family != "" || f.Category != ""
}

// Match reports whether p satisfies every active predicate.
func (f Filters) Match(p catalog.Product) bool {
	if f.Family != "" && !strings.EqualFold(p.FamilyName(), f.Family) {
		return false
	}
	if f.Category != "" && !strings.EqualFold(p.Category(), f.Category) {
		return false
	}
	return true
}

// Result is one page of filtered products plus the pagination echo the
// client needs to render further pages.
type Result struct {
	Items      []catalog.Product
	Total      int
	PageSize   int
	PageNumber int
}

// ParsePageSize parses a raw page_size parameter, applying the default and
// clamping to [1, MaxPageSize].
func ParsePageSize(raw string) int {
	n, err := strconv.Atoi(raw)
	if raw == "" || err != nil {
		n = DefaultPageSize
	}
	if n < 1 {
		n = 1
	}
	if n > MaxPageSize {
		n = MaxPageSize
	}
	return n
}

// ParsePageNumber parses a raw page_number parameter, applying the default
// and clamping to >= 1.
func ParsePageNumber(raw string) int {
	n, err := strconv.Atoi(raw)
	if raw == "" || err != nil {
		n = 1
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Run filters snap and returns the requested page. Total is always the
// full filtered count, independent of the requested window; requesting a
// window past the end yields an empty page, not an error.
func Run(snap *catalog.Snapshot, f Filters, pageSizeRaw, pageNumberRaw string) Result {
	pageSize := ParsePageSize(pageSizeRaw)
	pageNumber := ParsePageNumber(pageNumberRaw)

	filtered := snap.Products
	if f.Active() {
		filtered = make([]catalog.Product, 0, len(snap.Products))
		for _, p := range snap.Products {
			if f.Match(p) {
				filtered = append(filtered, p)
			}
		}
	}

	// (pageNumber-1)*pageSize overflows for very large page numbers, so
	// detect a window past the end before multiplying.
	start := len(filtered)
	if pageNumber-1 <= len(filtered)/pageSize {
		start = (pageNumber - 1) * pageSize
	}
	end := start + pageSize
	if end > len(filtered) {
		end = len(filtered)
	}

	return Result{
		Items:      filtered[start:end],
		Total:      len(filtered),
		PageSize:   pageSize,
		PageNumber: pageNumber,
	}
}
