package dto

import "github.com/DavidPARK0417/draiger-sub002/models"

// Pagination is the page envelope returned by every listing and search endpoint.
//
// TotalCount counts the filtered sequence (active query/category), not the whole corpus.
// CurrentPage is 1-based and clamped to [1, max(TotalPages,1)].
// Error is filled only when the page is a degraded fallback or the request was rejected.
type Pagination[T any] struct {
	Items       []T    `json:"items"`
	TotalCount  int    `json:"totalCount"`
	CurrentPage int    `json:"currentPage"`
	TotalPages  int    `json:"totalPages"`
	HasNextPage bool   `json:"hasNextPage"`
	HasPrevPage bool   `json:"hasPrevPage"`
	Error       string `json:"error,omitempty"`
}

// PageResult is a concrete swagger-friendly page of content items
// swagger:model PageResult
type PageResult = Pagination[models.ContentItem]

// EmptyPage is the well-formed zero result: no items, page 1 of 0.
func EmptyPage[T any]() Pagination[T] {
	return Pagination[T]{Items: []T{}, CurrentPage: 1}
}
