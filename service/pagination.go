package service

import "math"

const (
	defaultPageLimit = 10
	maxPageLimit     = 50

	// maxPageOffset keeps (page-1)*limit representable as a postgres
	// integer OFFSET on every platform.
	maxPageOffset = math.MaxInt32
)

// normalizePage defaults page to 1 and limit to 10, clamps limit to [1,50]
// and caps page so the resulting offset never exceeds maxPageOffset.
func normalizePage(page, limit int) (int, int) {
	switch {
	case limit == 0:
		limit = defaultPageLimit
	case limit < 1:
		limit = 1
	case limit > maxPageLimit:
		limit = maxPageLimit
	}

	if page < 1 {
		page = 1
	}
	if maxPage := maxPageOffset/limit + 1; page > maxPage {
		page = maxPage
	}
	return page, limit
}

// pageOffset is the number of rows skipped before page.
func pageOffset(page, limit int) int {
	return (page - 1) * limit
}
