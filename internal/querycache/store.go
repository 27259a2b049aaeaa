package querycache

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"refetch/internal/provider"
	"refetch/internal/records"
	"refetch/pkg/model"
)

// Config holds the store-wide cache settings.
type Config struct {
	// StaleTime is the staleness window for cached page sequences. Zero
	// disables background refreshes: cached pages are served until the
	// key changes or the query is invalidated.
	StaleTime time.Duration `yaml:"staleTime"`

	// PromotionCeiling bounds the cost of warming the record cache: a
	// settle whose cumulative record count exceeds the ceiling skips
	// promotion entirely.
	PromotionCeiling int `yaml:"promotionCeiling"`
}

// DefaultConfig returns the default cache settings.
func DefaultConfig() Config {
	return Config{
		StaleTime:        0,
		PromotionCeiling: DefaultPromotionCeiling,
	}
}

type direction string

const (
	dirInitial  direction = "initial"
	dirNext     direction = "next"
	dirPrevious direction = "previous"
	dirRefresh  direction = "refresh"
)

// Page is one fetched page of a query, tagged with its cursor.
type Page struct {
	Cursor int
	Result model.PageResult
}

// query is the per-key InfiniteQueryState: the growable page sequence in
// display order plus status flags. All fields are guarded by Store.mu.
type query struct {
	key    Key
	keyStr string

	// gen is bumped whenever the entry is invalidated; in-flight fetches
	// carry the generation they started under and results from an older
	// generation are discarded.
	gen uint64

	pages       []Page
	status      Status
	err         error
	settledAt   time.Time
	invalidated bool

	inflight        map[int]struct{}
	fetchingInitial bool
	fetchingNext    bool
	fetchingPrev    bool

	hasNext *bool
	hasPrev *bool

	opts Options

	// changed is closed and replaced on every state transition so
	// waiters can observe progress without polling.
	changed chan struct{}
}

func newQuery(key Key, keyStr string) *query {
	return &query{
		key:      key,
		keyStr:   keyStr,
		status:   StatusPending,
		inflight: make(map[int]struct{}),
		changed:  make(chan struct{}),
	}
}

func (q *query) bump() {
	close(q.changed)
	q.changed = make(chan struct{})
}

func (q *query) isFetching() bool {
	return q.fetchingInitial || q.fetchingNext || q.fetchingPrev
}

func (q *query) hasCursor(cursor int) bool {
	for _, p := range q.pages {
		if p.Cursor == cursor {
			return true
		}
	}
	return false
}

// applyPage merges a completed fetch into the page sequence. Backward
// fetches prepend, forward fetches append, and a page whose cursor is
// already present is replaced in place (refresh).
func (q *query) applyPage(cursor int, res model.PageResult, dir direction) {
	if dir == dirInitial {
		q.pages = []Page{{Cursor: cursor, Result: res}}
		return
	}
	for i := range q.pages {
		if q.pages[i].Cursor == cursor {
			q.pages[i].Result = res
			return
		}
	}
	if dir == dirPrevious {
		q.pages = append([]Page{{Cursor: cursor, Result: res}}, q.pages...)
		return
	}
	q.pages = append(q.pages, Page{Cursor: cursor, Result: res})
}

// recomputeBounds re-derives the directional cursor hints from the
// boundary pages of the sequence.
func (q *query) recomputeBounds(perPage int) {
	if len(q.pages) == 0 {
		q.hasNext, q.hasPrev = nil, nil
		return
	}
	first, last := q.pages[0], q.pages[len(q.pages)-1]
	q.hasNext = nextPageExists(last.Cursor, &last.Result, perPage)
	q.hasPrev = prevPageExists(first.Cursor, &first.Result, perPage)
}

// nextPageExists applies the dual advancement policy for the forward
// direction: pageInfo is authoritative when present, otherwise the
// reported total decides, otherwise the answer is unknown.
func nextPageExists(cursor int, r *model.PageResult, perPage int) *bool {
	if r.PageInfo != nil {
		return boolPtr(r.PageInfo.HasNextPage)
	}
	if r.Total != nil && perPage > 0 {
		totalPages := (*r.Total + int64(perPage) - 1) / int64(perPage)
		return boolPtr(int64(cursor) < totalPages)
	}
	return nil
}

// prevPageExists is the backward counterpart of nextPageExists.
func prevPageExists(cursor int, r *model.PageResult, perPage int) *bool {
	if r.PageInfo != nil {
		return boolPtr(r.PageInfo.HasPreviousPage)
	}
	if r.Total != nil {
		return boolPtr(cursor != 1)
	}
	return nil
}

func boolPtr(v bool) *bool {
	return &v
}

// Store is the process-wide query cache, shared across all list
// controller instances. It owns one query entry per canonical key.
type Store struct {
	mu      sync.Mutex
	queries map[string]*query

	fetcher provider.PageFetcher
	records *records.Store
	group   singleflight.Group
	cfg     Config
}

// NewStore creates a query cache on top of the given fetch primitive and
// record cache.
func NewStore(fetcher provider.PageFetcher, recs *records.Store, cfg Config) *Store {
	if cfg.PromotionCeiling <= 0 {
		cfg.PromotionCeiling = DefaultPromotionCeiling
	}
	return &Store{
		queries: make(map[string]*query),
		fetcher: fetcher,
		records: recs,
		cfg:     cfg,
	}
}

// Resolve returns a handle for the query identified by key, creating the
// entry and issuing the initial page fetch when needed. Resolving an
// already-cached key is a cache hit and issues no fetch unless the entry
// was invalidated or went stale.
func (s *Store) Resolve(ctx context.Context, key Key, initialCursor int, opts Options) *Handle {
	if initialCursor < 1 {
		initialCursor = 1
	}
	keyStr := key.canonical()

	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.queries[keyStr]
	if !ok {
		cacheMisses.Inc()
		q = newQuery(key, keyStr)
		s.queries[keyStr] = q
		activeQueries.Set(float64(len(s.queries)))
	} else {
		cacheHits.Inc()
	}
	q.opts = opts

	h := &Handle{store: s, key: key, keyStr: keyStr, initialCursor: initialCursor}
	if !opts.enabled() {
		return h
	}

	switch {
	case len(q.pages) == 0 && q.status == StatusPending && len(q.inflight) == 0:
		s.startFetchLocked(ctx, q, initialCursor, dirInitial)
	case q.invalidated && len(q.inflight) == 0:
		q.invalidated = false
		if len(q.pages) == 0 {
			s.startFetchLocked(ctx, q, initialCursor, dirInitial)
		} else {
			s.startFetchLocked(ctx, q, q.pages[0].Cursor, dirRefresh)
		}
	case q.status == StatusError && len(q.inflight) == 0:
		// Errors are not cached across resolves: a fresh resolve retries
		// so one transport failure cannot poison the key for the process
		// lifetime.
		if len(q.pages) == 0 {
			s.startFetchLocked(ctx, q, initialCursor, dirInitial)
		} else {
			s.startFetchLocked(ctx, q, q.pages[0].Cursor, dirRefresh)
		}
	case len(q.pages) > 0 && !q.hasCursor(initialCursor) && len(q.inflight) == 0:
		// The caller jumped to a cursor outside the loaded sequence
		// (e.g. setPage): restart the sequence there.
		s.startFetchLocked(ctx, q, initialCursor, dirInitial)
	case q.status == StatusSuccess && len(q.inflight) == 0 && s.staleTime(opts) > 0 &&
		time.Since(q.settledAt) > s.staleTime(opts) && len(q.pages) > 0:
		s.startFetchLocked(ctx, q, q.pages[0].Cursor, dirRefresh)
	}
	return h
}

// Invalidate marks the entry for key so the next resolve refetches it.
// In-flight fetches for the entry are logically abandoned: their results
// are discarded when they settle.
func (s *Store) Invalidate(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.queries[key.canonical()]
	if !ok {
		return
	}
	q.gen++
	// Detach in-flight network calls so a later refetch of the same
	// cursor does not join a superseded one.
	for cursor := range q.inflight {
		s.group.Forget(q.keyStr + "#" + strconv.Itoa(cursor))
	}
	q.inflight = make(map[int]struct{})
	q.fetchingInitial, q.fetchingNext, q.fetchingPrev = false, false, false
	q.invalidated = true
	q.bump()
}

func (s *Store) staleTime(opts Options) time.Duration {
	if opts.StaleTime > 0 {
		return opts.StaleTime
	}
	return s.cfg.StaleTime
}

// startFetchLocked issues a page fetch unless one for the same cursor is
// already in flight, in which case the request attaches to it.
func (s *Store) startFetchLocked(ctx context.Context, q *query, cursor int, dir direction) {
	if _, inflight := q.inflight[cursor]; inflight {
		fetchesDeduplicated.Inc()
		return
	}
	q.inflight[cursor] = struct{}{}
	switch dir {
	case dirNext:
		q.fetchingNext = true
	case dirPrevious:
		q.fetchingPrev = true
	default:
		q.fetchingInitial = true
	}
	fetchesIssued.WithLabelValues(string(dir)).Inc()
	q.bump()

	// The fetch outlives the resolver that triggered it: its result is
	// shared cache state, and deduplicated callers attached to the same
	// cursor must not be stranded when the first caller goes away.
	go s.runFetch(context.WithoutCancel(ctx), q.keyStr, q.gen, q.key, cursor, dir, q.opts.RetryCount)
}

// runFetch performs the network fetch off the store lock and applies the
// settled result, unless the query was superseded in the meantime.
func (s *Store) runFetch(ctx context.Context, keyStr string, gen uint64, key Key, cursor int, dir direction, retries int) {
	res, err := s.dedupFetch(ctx, keyStr, key, cursor, retries)

	s.mu.Lock()
	q, ok := s.queries[keyStr]
	if !ok || q.gen != gen {
		staleResultsDiscarded.Inc()
		s.mu.Unlock()
		slog.Debug("Discarded superseded fetch result", "resource", key.Resource, "cursor", cursor)
		return
	}

	delete(q.inflight, cursor)
	switch dir {
	case dirNext:
		q.fetchingNext = false
	case dirPrevious:
		q.fetchingPrev = false
	default:
		q.fetchingInitial = false
	}

	if err != nil && model.IsCanceled(err) {
		// An abandoned fetch, not a transport failure. Absorb it.
		q.bump()
		s.mu.Unlock()
		slog.Debug("Fetch canceled", "resource", key.Resource, "cursor", cursor)
		return
	}

	prev := q.status
	if err != nil {
		fetchErrors.Inc()
		q.err = err
		q.status = StatusError
		q.settledAt = time.Now()
		slog.Warn("Page fetch failed",
			"resource", key.Resource,
			"cursor", cursor,
			"direction", string(dir),
			"error", err,
		)
	} else {
		q.applyPage(cursor, *res, dir)
		q.recomputeBounds(key.PerPage)
		q.err = nil
		q.status = StatusSuccess
		q.settledAt = time.Now()
		s.promoteLocked(q)
	}
	q.bump()
	snap := s.snapshotLocked(q)
	hooks := q.opts
	s.mu.Unlock()

	if err != nil {
		if prev != StatusError && hooks.OnError != nil {
			hooks.OnError(err)
		}
		if hooks.OnSettled != nil {
			hooks.OnSettled(snap, err)
		}
		return
	}
	if hooks.OnSuccess != nil {
		hooks.OnSuccess(snap)
	}
	if hooks.OnSettled != nil {
		hooks.OnSettled(snap, nil)
	}
}

// dedupFetch funnels identical (key, cursor) fetches through one
// underlying network operation and retries per the configured count.
func (s *Store) dedupFetch(ctx context.Context, keyStr string, key Key, cursor int, retries int) (*model.PageResult, error) {
	v, err, _ := s.group.Do(keyStr+"#"+strconv.Itoa(cursor), func() (interface{}, error) {
		req := model.PageRequest{
			Resource:    key.Resource,
			TargetField: key.TargetField,
			OwnerID:     key.OwnerID,
			Pagination:  model.Pagination{Page: cursor, PerPage: key.PerPage},
			Sort:        key.Sort,
			Filter:      key.Filter,
			Meta:        key.Meta,
		}
		var lastErr error
		for attempt := 0; attempt <= retries; attempt++ {
			res, fetchErr := s.fetcher.FetchPage(ctx, req)
			if fetchErr == nil {
				return res, nil
			}
			lastErr = fetchErr
			if model.IsCanceled(fetchErr) {
				break
			}
			if attempt < retries {
				slog.Debug("Retrying page fetch",
					"resource", key.Resource,
					"cursor", cursor,
					"attempt", attempt+1,
					"error", fetchErr,
				)
			}
		}
		return nil, lastErr
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.PageResult), nil
}
