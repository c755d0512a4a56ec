package utils

import "strconv"

// Pagination is the validated page/pageSize pair used by list endpoints.
type Pagination struct {
    Page     int
    PageSize int
}

// Offset returns the SQL offset for the page.
func (p Pagination) Offset() int { return (p.Page - 1) * p.PageSize }

// ParsePagination validates the raw page and page_size query values.
// Empty strings take the defaults (page 1, pageSize defaultSize).  A
// non-numeric, zero or negative value is invalid and returns ok=false
// so the caller responds 400; a pageSize above maxSize is not an error,
// it is clamped down to maxSize.
func ParsePagination(rawPage, rawSize string, defaultSize, maxSize int) (Pagination, bool) {
    p := Pagination{Page: 1, PageSize: defaultSize}
    if rawPage != "" {
        n, err := strconv.Atoi(rawPage)
        if err != nil || n < 1 {
            return Pagination{}, false
        }
        p.Page = n
    }
    if rawSize != "" {
        n, err := strconv.Atoi(rawSize)
        if err != nil || n < 1 {
            return Pagination{}, false
        }
        p.PageSize = n
    }
    if p.PageSize > maxSize {
        p.PageSize = maxSize
    }
    return p, true
}
