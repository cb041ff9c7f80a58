// Package listutil parses list screen parameters and computes page metadata.
package listutil

import (
	"net/url"
	"slices"
	"strconv"

	"coachdesk/internal/domain/advisor"
)

// Rows per page follow the bounds of the advisor's ItemsPerPage setting, so
// a saved preference is always a valid per_page value.
const (
	DefaultPerPage = advisor.DefaultItemsPerPage
	MinPerPage     = advisor.MinItemsPerPage
	MaxPerPage     = advisor.MaxItemsPerPage
)

// Sort directions.
const (
	Asc  = "asc"
	Desc = "desc"
)

// PageParams carries pagination parameters parsed from a request.
type PageParams struct {
	Page    int // 1-indexed
	PerPage int
}

// SortParams carries sorting parameters parsed from a request.
type SortParams struct {
	Sort string // empty keeps the list's natural order
	Dir  string // Asc or Desc
}

// FilterParams carries search and filter parameters.
type FilterParams struct {
	Search  string
	Filters map[string]string // exact-match filters such as status=paused or mine=1
}

// ListParams combines all list view parameters.
type ListParams struct {
	PageParams
	SortParams
	FilterParams
}

// PageInfo carries pagination metadata for rendering.
type PageInfo struct {
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// ClampPerPage forces n into [MinPerPage, MaxPerPage]. Zero or less means DefaultPerPage.
func ClampPerPage(n int) int {
	switch {
	case n <= 0:
		return DefaultPerPage
	case n < MinPerPage:
		return MinPerPage
	case n > MaxPerPage:
		return MaxPerPage
	}
	return n
}

// ParsePageParams extracts page and per_page from URL query values.
// fallback is used when per_page is missing or not a number.
// POST: Page >= 1; MinPerPage <= PerPage <= MaxPerPage
func ParsePageParams(q url.Values, fallback int) PageParams {
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, err := strconv.Atoi(q.Get("per_page"))
	if err != nil {
		perPage = fallback
	}
	return PageParams{Page: page, PerPage: ClampPerPage(perPage)}
}

// ParseSortParams extracts sort and dir from URL query values.
// POST: Sort is empty or one of allowedColumns; Dir is Asc or Desc
func ParseSortParams(q url.Values, allowedColumns []string) SortParams {
	sort := q.Get("sort")
	if !slices.Contains(allowedColumns, sort) {
		sort = ""
	}
	dir := q.Get("dir")
	if dir != Desc {
		dir = Asc
	}
	return SortParams{Sort: sort, Dir: dir}
}

// ParseFilterParams extracts the q search and the named filters.
// POST: Filters holds only non-empty values of filterKeys
func ParseFilterParams(q url.Values, filterKeys []string) FilterParams {
	fp := FilterParams{
		Search:  q.Get("q"),
		Filters: make(map[string]string),
	}
	for _, key := range filterKeys {
		if v := q.Get(key); v != "" {
			fp.Filters[key] = v
		}
	}
	return fp
}

// ParseListParams parses all list parameters from URL query values.
func ParseListParams(q url.Values, perPageFallback int, allowedSortCols, filterKeys []string) ListParams {
	return ListParams{
		PageParams:   ParsePageParams(q, perPageFallback),
		SortParams:   ParseSortParams(q, allowedSortCols),
		FilterParams: ParseFilterParams(q, filterKeys),
	}
}

// Encode renders the parameters as a query string for the given page.
// Every filter, the search, the sort and per_page survive.
func (lp ListParams) Encode(page int) string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(max(page, 1)))
	q.Set("per_page", strconv.Itoa(lp.PerPage))
	if lp.Search != "" {
		q.Set("q", lp.Search)
	}
	for k, v := range lp.Filters {
		q.Set(k, v)
	}
	if lp.Sort != "" {
		q.Set("sort", lp.Sort)
		q.Set("dir", lp.Dir)
	}
	return q.Encode()
}

// SortedBy returns the parameters re-sorted by column from the first page.
// Picking the current column again flips the direction.
func (lp ListParams) SortedBy(column string) ListParams {
	dir := Asc
	if lp.Sort == column && lp.Dir == Asc {
		dir = Desc
	}
	lp.SortParams = SortParams{Sort: column, Dir: dir}
	lp.Page = 1
	return lp
}

// NewPageInfo computes pagination metadata.
// PRE: total >= 0
// POST: TotalPages >= 1; Page clamped to [1, TotalPages]
func NewPageInfo(page, perPage, total int) PageInfo {
	perPage = ClampPerPage(perPage)
	totalPages := max((total+perPage-1)/perPage, 1)
	return PageInfo{
		Page:       min(max(page, 1), totalPages),
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}

// Offset returns the SQL OFFSET for the current page.
func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// StartRow returns the 1-indexed first row on the page, or 0 for an empty list.
func (p PageInfo) StartRow() int {
	if p.Total == 0 {
		return 0
	}
	return p.Offset() + 1
}

// EndRow returns the 1-indexed last row on the page.
func (p PageInfo) EndRow() int {
	return min(p.Offset()+p.PerPage, p.Total)
}

// HasPrev reports whether a previous page exists.
func (p PageInfo) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a next page exists.
func (p PageInfo) HasNext() bool { return p.Page < p.TotalPages }
