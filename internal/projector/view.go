package projector

import (
	"errors"
	"fmt"
	"slices"
)

// PageSizes are the accepted page sizes.
var PageSizes = []int{5, 10, 20}

const DefaultPageSize = 10

var ErrInvalidPageSize = errors.New("page size must be 5, 10 or 20")

// View is the user-controlled state of the meal list.
type View struct {
	Filters  Filters `json:"filters"`
	Sort     SortKey `json:"sort"`
	PageSize int     `json:"pageSize"`
	Page     int     `json:"page"`
}

// NewView returns the initial view: newest first, ten days per page.
func NewView() View {
	return View{Sort: SortDateDesc, PageSize: DefaultPageSize, Page: 1}
}

// SetFilters replaces the filters and returns to the first page.
func (v *View) SetFilters(f Filters) error {
	if err := f.Validate(); err != nil {
		return err
	}
	v.Filters = f
	v.Page = 1
	return nil
}

// SetSort changes the sort key. The page is kept.
func (v *View) SetSort(k SortKey) error {
	if !slices.Contains(SortKeys, k) {
		return fmt.Errorf("%w: %q", ErrUnknownSortKey, k)
	}
	v.Sort = k
	return nil
}

// SetPageSize changes the page size and returns to the first page.
func (v *View) SetPageSize(n int) error {
	if !slices.Contains(PageSizes, n) {
		return ErrInvalidPageSize
	}
	v.PageSize = n
	v.Page = 1
	return nil
}

// GoTo moves to page when it is within [1, totalPages] and reports whether it moved.
// Out-of-range requests leave the view unchanged.
func (v *View) GoTo(page, totalPages int) bool {
	if page < 1 || page > totalPages {
		return false
	}
	v.Page = page
	return true
}

// normalized fills zero fields of a view decoded from storage.
func (v View) normalized() View {
	if !slices.Contains(SortKeys, v.Sort) {
		v.Sort = SortDateDesc
	}
	if !slices.Contains(PageSizes, v.PageSize) {
		v.PageSize = DefaultPageSize
	}
	if v.Page < 1 {
		v.Page = 1
	}
	return v
}
