package controller

import (
	"refetch/pkg/model"
)

// Result is the unified view a consumer renders from: exactly one of
// the pending / error / success branches is active, and the pagination,
// sort, filter and selection state is present regardless of branch.
type Result struct {
	// Data is the flattened ordered sequence of all loaded pages'
	// records; nil while pending or on error.
	Data []model.Record

	// Total is the first page's reported total, or -1 when the
	// transport never reported one or nothing is loaded.
	Total int64

	// Error is the transport error of the last settle, nil otherwise.
	Error error

	// IsPending is true until the first resolution is available, and
	// while the query is disabled because the owner is not loaded.
	IsPending bool

	// IsFetching is true whenever any page fetch is in flight.
	IsFetching bool

	Page    int
	PerPage int
	Sort    model.Sort

	FilterValues     model.Filter
	DisplayedFilters []string

	SelectedIDs []string

	HasNextPage            *bool
	HasPreviousPage        *bool
	IsFetchingNextPage     bool
	IsFetchingPreviousPage bool
}

// PaginationContext is the slice of controller state a dedicated
// pagination-control widget needs, and nothing else.
type PaginationContext struct {
	HasNextPage            *bool
	HasPreviousPage        *bool
	IsFetchingNextPage     bool
	IsFetchingPreviousPage bool
	FetchNextPage          func()
	FetchPreviousPage      func()
}
