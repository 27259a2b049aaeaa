// Package provider defines the page-fetch primitive the query cache is
// built on, plus the in-memory implementation used by tests and the demo
// binary. A MongoDB-backed implementation lives in the mongo subpackage.
package provider

import (
	"context"

	"refetch/pkg/model"
)

// PageFetcher fetches one page of records related to an owner record.
// Implementations must reject with an error (optionally a
// *model.RequestError carrying a message) on failure; they never retry
// internally.
type PageFetcher interface {
	FetchPage(ctx context.Context, req model.PageRequest) (*model.PageResult, error)
}

// FetchFunc adapts a plain function to the PageFetcher interface.
type FetchFunc func(ctx context.Context, req model.PageRequest) (*model.PageResult, error)

// FetchPage implements PageFetcher.
func (f FetchFunc) FetchPage(ctx context.Context, req model.PageRequest) (*model.PageResult, error) {
	return f(ctx, req)
}
