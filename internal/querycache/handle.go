package querycache

import (
	"context"

	"refetch/pkg/model"
)

// Snapshot is the flattened, immutable view of a query's state at one
// point in time.
type Snapshot struct {
	Status Status
	Error  error

	// Pages is the loaded page sequence in display order; backward
	// fetches appear before the pages loaded earlier.
	Pages []Page

	// Records is the flattened record sequence across all loaded pages.
	Records []model.Record

	// Total is the first loaded page's reported total, or -1 when the
	// transport never reported one.
	Total int64

	// HasNextPage / HasPreviousPage are nil while unresolved.
	HasNextPage     *bool
	HasPreviousPage *bool

	IsFetching             bool
	IsFetchingNextPage     bool
	IsFetchingPreviousPage bool
}

// Settled reports whether the query has concluded (success or error)
// with no fetch in flight.
func (s Snapshot) Settled() bool {
	return s.Status != StatusPending && !s.IsFetching
}

// Handle is a caller's view onto one query entry. Handles are cheap and
// stateless; the shared state lives in the store.
type Handle struct {
	store         *Store
	key           Key
	keyStr        string
	initialCursor int
}

// Key returns the query key this handle resolves.
func (h *Handle) Key() Key {
	return h.key
}

// Snapshot returns the current state of the query.
func (h *Handle) Snapshot() Snapshot {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	q, ok := h.store.queries[h.keyStr]
	if !ok {
		return Snapshot{Status: StatusPending, Total: -1}
	}
	return h.store.snapshotLocked(q)
}

// FetchNextPage fetches the page after the last loaded one. It is a
// no-op while the next-page existence is unknown or false, or while a
// forward fetch is already in flight.
func (h *Handle) FetchNextPage(ctx context.Context) {
	s := h.store
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.queries[h.keyStr]
	if !ok || !q.opts.enabled() {
		return
	}
	if len(q.pages) == 0 || q.fetchingNext {
		return
	}
	if q.hasNext == nil || !*q.hasNext {
		return
	}
	cursor := q.pages[len(q.pages)-1].Cursor + 1
	s.startFetchLocked(ctx, q, cursor, dirNext)
}

// FetchPreviousPage fetches the page before the first loaded one and
// prepends it. Symmetric to FetchNextPage.
func (h *Handle) FetchPreviousPage(ctx context.Context) {
	s := h.store
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.queries[h.keyStr]
	if !ok || !q.opts.enabled() {
		return
	}
	if len(q.pages) == 0 || q.fetchingPrev {
		return
	}
	if q.hasPrev == nil || !*q.hasPrev {
		return
	}
	cursor := q.pages[0].Cursor - 1
	s.startFetchLocked(ctx, q, cursor, dirPrevious)
}

// WaitSettled blocks until the query settles or the context is done,
// and returns the snapshot observed last. A disabled query never
// settles; callers gate on their own enablement before waiting.
func (h *Handle) WaitSettled(ctx context.Context) (Snapshot, error) {
	for {
		h.store.mu.Lock()
		q, ok := h.store.queries[h.keyStr]
		if !ok {
			h.store.mu.Unlock()
			return Snapshot{Status: StatusPending, Total: -1}, nil
		}
		snap := h.store.snapshotLocked(q)
		changed := q.changed
		h.store.mu.Unlock()

		if snap.Settled() {
			return snap, nil
		}
		select {
		case <-ctx.Done():
			return snap, ctx.Err()
		case <-changed:
		}
	}
}

// snapshotLocked builds an immutable snapshot of q. Callers hold s.mu.
func (s *Store) snapshotLocked(q *query) Snapshot {
	snap := Snapshot{
		Status:                 q.status,
		Error:                  q.err,
		Total:                  -1,
		IsFetching:             q.isFetching(),
		IsFetchingNextPage:     q.fetchingNext,
		IsFetchingPreviousPage: q.fetchingPrev,
	}
	snap.Pages = append([]Page(nil), q.pages...)
	for _, p := range q.pages {
		snap.Records = append(snap.Records, p.Result.Records...)
	}
	if len(q.pages) > 0 {
		snap.Total = q.pages[0].Result.TotalValue()
	}
	if q.hasNext != nil {
		snap.HasNextPage = boolPtr(*q.hasNext)
	}
	if q.hasPrev != nil {
		snap.HasPreviousPage = boolPtr(*q.hasPrev)
	}
	return snap
}
