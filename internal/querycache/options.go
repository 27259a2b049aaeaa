package querycache

import "time"

// Status is the flattened state of a query.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Options is the per-resolve configuration surface passed through to the
// engine. The zero value is a plain enabled query with no callbacks and
// no retries.
type Options struct {
	// Enabled gates fetching. When it returns false the query stays in
	// the pending state and no fetch is issued. Nil means enabled.
	Enabled func() bool

	// RetryCount is the number of times a failed page fetch is retried
	// before the error is surfaced. Zero means no retries.
	RetryCount int

	// StaleTime overrides the store-wide staleness window for this
	// query when positive. A resolve of a query settled longer ago than
	// the window serves cached pages and refreshes in the background.
	StaleTime time.Duration

	// OnSuccess fires after every successful settle, once record
	// promotion has run, with the full page sequence.
	OnSuccess func(Snapshot)

	// OnError fires once per transition into the error state. It does
	// not re-fire while a refetch is in progress and the same error
	// persists.
	OnError func(error)

	// OnSettled fires after every settle, success or error.
	OnSettled func(Snapshot, error)
}

func (o Options) enabled() bool {
	return o.Enabled == nil || o.Enabled()
}
