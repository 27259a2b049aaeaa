// Package controller implements the list controller for one related
// collection of an owner record: it owns pagination, sort, filter and
// selection state, derives the query key, re-resolves on every
// parameter change and exposes a uniform result shape for rendering.
package controller

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"refetch/internal/notify"
	"refetch/internal/querycache"
	"refetch/pkg/model"
)

const (
	defaultPerPage  = 25
	defaultDebounce = 500 * time.Millisecond
)

// Params configures a Controller.
type Params struct {
	// Resource is the owning resource name (e.g. "posts"). Used for the
	// default selection store key.
	Resource string

	// Record is the owner record. Its identifying field may still be
	// absent while the owner itself is loading; the controller then
	// reports a pending state and fetches nothing.
	Record model.Record

	// Source is the identifying field on the owner record, "id" by
	// default.
	Source string

	// Target is the foreign-key field on the referenced resource that
	// equals the owner's identifying value.
	Target string

	// Reference is the referenced resource name (e.g. "comments").
	Reference string

	// Filter is the caller-supplied default filter. The controller
	// resynchronizes its live filter state whenever this value changes
	// structurally (see ReconcileDefaultFilter).
	Filter model.Filter

	Sort    model.Sort
	Page    int
	PerPage int
	Meta    map[string]interface{}

	// Debounce is the window for debounced filter commits.
	Debounce time.Duration

	// StoreKey scopes the selection state. Defaults to
	// "{resource}.{ownerId}.{reference}" so distinct owners never share
	// selections; callers may override it to share or isolate.
	StoreKey string

	// Query is forwarded to the query cache. Its OnSuccess / OnError /
	// OnSettled hooks are wrapped, not replaced: the controller adds
	// error notification on top of whatever the caller installed.
	Query querycache.Options
}

func (p *Params) applyDefaults() {
	if p.Source == "" {
		p.Source = "id"
	}
	if p.Sort.Field == "" {
		p.Sort = model.Sort{Field: "id", Order: model.OrderDesc}
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = defaultPerPage
	}
	if p.Debounce <= 0 {
		p.Debounce = defaultDebounce
	}
}

// Controller drives one related-collection view.
type Controller struct {
	mu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc

	params     Params
	store      *querycache.Store
	selections *SelectionStore
	notifier   notify.Notifier

	page             int
	perPage          int
	sort             model.Sort
	filterValues     model.Filter
	displayedFilters map[string]bool
	observedDefault  model.Filter

	debouncer *coalescer
	handle    *querycache.Handle
}

// New creates a controller and issues the initial fetch when the owner
// record is ready.
func New(store *querycache.Store, selections *SelectionStore, notifier notify.Notifier, params Params) *Controller {
	params.applyDefaults()
	if notifier == nil {
		notifier = notify.NopNotifier{}
	}
	if selections == nil {
		selections = NewSelectionStore()
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		ctx:              ctx,
		cancel:           cancel,
		params:           params,
		store:            store,
		selections:       selections,
		notifier:         notifier,
		page:             params.Page,
		perPage:          params.PerPage,
		sort:             params.Sort,
		filterValues:     params.Filter.Clone(),
		displayedFilters: make(map[string]bool),
		observedDefault:  params.Filter.Clone(),
		debouncer:        newCoalescer(params.Debounce),
	}

	c.mu.Lock()
	c.resolve()
	c.mu.Unlock()
	return c
}

// Close abandons in-flight fetches and pending debounced commits.
func (c *Controller) Close() {
	c.debouncer.Cancel()
	c.cancel()
}

// ownerValue returns the owner's identifying value, or "" while absent.
func (c *Controller) ownerValue() string {
	if c.params.Record == nil {
		return ""
	}
	return model.StringID(c.params.Record.Get(c.params.Source))
}

// resolve derives the query key from the current state and resolves it.
// Callers hold c.mu. While the owner value is absent the controller
// stays disabled: no key, no fetch.
func (c *Controller) resolve() {
	owner := c.ownerValue()
	if owner == "" {
		c.handle = nil
		return
	}

	key := querycache.Key{
		Resource:    c.params.Reference,
		OwnerID:     owner,
		TargetField: c.params.Target,
		PerPage:     c.perPage,
		Sort:        c.sort,
		Filter:      c.filterValues.Sanitize(),
		Meta:        c.params.Meta,
	}

	opts := c.params.Query
	userError := opts.OnError
	opts.OnError = func(err error) {
		c.notifier.Notify(notify.Event{
			Message: model.ErrorText(err),
			Type:    notify.TypeError,
			Args:    map[string]interface{}{"_": model.ErrorText(err)},
		})
		if userError != nil {
			userError(err)
		}
	}

	c.handle = c.store.Resolve(c.ctx, key, c.page, opts)
}

// UpdateOwner replaces the owner record, e.g. once it finishes loading,
// and re-resolves.
func (c *Controller) UpdateOwner(record model.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.params.Record = record
	c.resolve()
}

// SetPage moves to the given page of the current query.
func (c *Controller) SetPage(page int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if page < 1 {
		page = 1
	}
	c.page = page
	c.resolve()
}

// SetPerPage changes the page size, which starts a fresh sequence.
func (c *Controller) SetPerPage(perPage int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if perPage < 1 {
		return
	}
	c.perPage = perPage
	c.resolve()
}

// SetSort changes the sort and always restarts pagination from the
// first page. Filters are untouched.
func (c *Controller) SetSort(s model.Sort) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sort = s
	c.page = 1
	c.resolve()
}

// SetFilters commits new filter values and displayed-filter state. A
// debounced call delays the commit by the configured window; calls
// within the window collapse to one commit using the last arguments.
// Every commit sanitizes the values and resets the page to 1.
func (c *Controller) SetFilters(values model.Filter, displayed map[string]bool, debounced bool) {
	commit := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.filterValues = values.Sanitize()
		if displayed != nil {
			c.displayedFilters = displayed
		}
		c.page = 1
		c.resolve()
	}

	if debounced {
		c.debouncer.Do(commit)
		return
	}
	c.debouncer.Cancel()
	commit()
}

// ShowFilter marks a filter as displayed and installs its default value
// when the live value for the field is still empty.
func (c *Controller) ShowFilter(field string, defaultValue interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.displayedFilters[field] = true
	if _, ok := c.filterValues[field]; !ok && defaultValue != nil {
		if c.filterValues == nil {
			c.filterValues = model.Filter{}
		}
		c.filterValues[field] = defaultValue
		c.resolve()
	}
}

// HideFilter hides a displayed filter and drops its constraint.
func (c *Controller) HideFilter(field string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.displayedFilters, field)
	if _, ok := c.filterValues[field]; ok {
		delete(c.filterValues, field)
		c.resolve()
	}
}

// ReconcileDefaultFilter compares the caller-supplied default filter
// against the last observed default by deep structural equality; on
// change it overwrites the live filter values, debounced edits
// included. Consumers call this on every render tick.
func (c *Controller) ReconcileDefaultFilter(def model.Filter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cmp.Equal(def, c.observedDefault, cmpopts.EquateEmpty()) {
		return
	}
	c.debouncer.Cancel()
	c.observedDefault = def.Clone()
	c.filterValues = def.Clone()
	c.page = 1
	c.resolve()
}

// selectionKey returns the effective selection store key.
func (c *Controller) selectionKey() string {
	if c.params.StoreKey != "" {
		return c.params.StoreKey
	}
	return fmt.Sprintf("%s.%s.%s", c.params.Resource, c.ownerValue(), c.params.Reference)
}

// Select replaces the selection with the given record ids.
func (c *Controller) Select(ids []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selections.Select(c.selectionKey(), ids)
}

// ToggleSelection flips one record id in the selection.
func (c *Controller) ToggleSelection(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selections.Toggle(c.selectionKey(), id)
}

// ClearSelection empties the selection.
func (c *Controller) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selections.Clear(c.selectionKey())
}

// FetchNextPage loads the page after the last loaded one.
func (c *Controller) FetchNextPage() {
	c.mu.Lock()
	h := c.handle
	ctx := c.ctx
	c.mu.Unlock()
	if h != nil {
		h.FetchNextPage(ctx)
	}
}

// FetchPreviousPage loads the page before the first loaded one.
func (c *Controller) FetchPreviousPage() {
	c.mu.Lock()
	h := c.handle
	ctx := c.ctx
	c.mu.Unlock()
	if h != nil {
		h.FetchPreviousPage(ctx)
	}
}

// Refresh invalidates the current query so its pages are refetched.
func (c *Controller) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handle == nil {
		return
	}
	c.store.Invalidate(c.handle.Key())
	c.resolve()
}

// Snapshot returns the current unified result.
func (c *Controller) Snapshot() Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	res := Result{
		Total:            -1,
		Page:             c.page,
		PerPage:          c.perPage,
		Sort:             c.sort,
		FilterValues:     c.filterValues.Clone(),
		DisplayedFilters: c.displayedFilterList(),
		SelectedIDs:      c.selections.Selected(c.selectionKey()),
	}

	if c.handle == nil {
		// Owner not ready: disabled, pending, not an error.
		res.IsPending = true
		return res
	}

	snap := c.handle.Snapshot()
	res.IsFetching = snap.IsFetching
	res.HasNextPage = snap.HasNextPage
	res.HasPreviousPage = snap.HasPreviousPage
	res.IsFetchingNextPage = snap.IsFetchingNextPage
	res.IsFetchingPreviousPage = snap.IsFetchingPreviousPage

	switch snap.Status {
	case querycache.StatusError:
		res.Error = snap.Error
	case querycache.StatusSuccess:
		res.Data = snap.Records
		res.Total = snap.Total
	default:
		res.IsPending = true
	}
	return res
}

// Pagination returns the companion context for a dedicated
// pagination-control widget.
func (c *Controller) Pagination() PaginationContext {
	c.mu.Lock()
	h := c.handle
	c.mu.Unlock()

	pc := PaginationContext{
		FetchNextPage:     c.FetchNextPage,
		FetchPreviousPage: c.FetchPreviousPage,
	}
	if h == nil {
		return pc
	}
	snap := h.Snapshot()
	pc.HasNextPage = snap.HasNextPage
	pc.HasPreviousPage = snap.HasPreviousPage
	pc.IsFetchingNextPage = snap.IsFetchingNextPage
	pc.IsFetchingPreviousPage = snap.IsFetchingPreviousPage
	return pc
}

// WaitSettled blocks until the current query settles or the context is
// done. A disabled controller returns its pending result immediately.
func (c *Controller) WaitSettled(ctx context.Context) (Result, error) {
	c.mu.Lock()
	h := c.handle
	c.mu.Unlock()

	if h == nil {
		return c.Snapshot(), nil
	}
	if _, err := h.WaitSettled(ctx); err != nil {
		return c.Snapshot(), err
	}
	return c.Snapshot(), nil
}

func (c *Controller) displayedFilterList() []string {
	fields := make([]string, 0, len(c.displayedFilters))
	for field, shown := range c.displayedFilters {
		if shown {
			fields = append(fields, field)
		}
	}
	sort.Strings(fields)
	return fields
}
