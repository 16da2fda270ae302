// Package pagination slices an already ordered, already filtered sequence into pages.
package pagination

import (
	"strconv"
	"strings"

	"github.com/DavidPARK0417/draiger-sub002/cmd/api/dto"
)

// DefaultPageSize is used when a caller passes a non-positive page size.
const DefaultPageSize = 12

// Request is a normalized page request.
type Request struct {
	Page     int
	PageSize int
}

// NewRequest defaults a non-positive page to 1 and a non-positive size to pageSize,
// then to DefaultPageSize.
func NewRequest(page, pageSize, fallbackSize int) Request {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = fallbackSize
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return Request{Page: page, PageSize: pageSize}
}

// ParsePage reads a page query parameter. Missing, non-numeric or non-positive → 1.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// TotalPages is ceil(total/pageSize), computed without overflowing on huge sizes.
func TotalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	pages := total / pageSize
	if total%pageSize != 0 {
		pages++
	}
	return pages
}

// Paginate returns the window [(p-1)*size, p*size) of items.
//
// CurrentPage is clamped to [1, max(TotalPages,1)]; a page past the end yields no
// items while the counts stay accurate.
func Paginate[T any](items []T, req Request) dto.Pagination[T] {
	req = NewRequest(req.Page, req.PageSize, DefaultPageSize)

	total := len(items)
	totalPages := TotalPages(total, req.PageSize)

	current := req.Page
	if current > totalPages {
		current = max(totalPages, 1)
	}

	// page-1 < totalPages 일 때만 곱셈을 하므로 start 는 total 보다 작고 넘치지 않는다.
	window := []T{}
	if req.Page-1 < totalPages {
		start := (req.Page - 1) * req.PageSize
		end := start + min(req.PageSize, total-start)
		window = make([]T, end-start)
		copy(window, items[start:end])
	}

	return dto.Pagination[T]{
		Items:       window,
		TotalCount:  total,
		CurrentPage: current,
		TotalPages:  totalPages,
		HasNextPage: current < totalPages,
		HasPrevPage: current > 1,
	}
}
