package provider

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"refetch/pkg/model"
)

// MemoryProvider serves pages from records held in memory. It supports
// equality filters (plus substring match on the conventional "q" field),
// single-field sorting and offset pagination. When WithPageInfo is set
// it reports cursor hints instead of a total, which exercises the
// pageInfo-driven advancement policy of the query cache.
type MemoryProvider struct {
	mu           sync.RWMutex
	data         map[string][]model.Record
	withPageInfo bool
}

// NewMemoryProvider creates an empty in-memory provider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		data: make(map[string][]model.Record),
	}
}

// WithPageInfo makes results carry PageInfo cursor hints and omit totals.
func (p *MemoryProvider) WithPageInfo() *MemoryProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.withPageInfo = true
	return p
}

// Seed registers records under a resource name. Records without an ID
// get one assigned.
func (p *MemoryProvider) Seed(resource string, recs ...model.Record) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, rec := range recs {
		rec.GenerateIDIfEmpty()
		p.data[resource] = append(p.data[resource], rec)
	}
}

// FetchPage implements PageFetcher.
func (p *MemoryProvider) FetchPage(ctx context.Context, req model.PageRequest) (*model.PageResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, model.WrapError(err)
	}
	if req.Pagination.Page < 1 || req.Pagination.PerPage < 1 {
		return nil, &model.RequestError{Message: fmt.Sprintf("invalid pagination: page=%d perPage=%d", req.Pagination.Page, req.Pagination.PerPage), Status: 400}
	}

	p.mu.RLock()
	source := p.data[req.Resource]
	withPageInfo := p.withPageInfo
	p.mu.RUnlock()

	filter := req.Filter.Clone()
	if filter == nil {
		filter = model.Filter{}
	}
	if req.TargetField != "" {
		filter[req.TargetField] = req.OwnerID
	}

	matched := make([]model.Record, 0, len(source))
	for _, rec := range source {
		if matches(rec, filter) {
			matched = append(matched, rec)
		}
	}

	sortRecords(matched, req.Sort)

	total := int64(len(matched))
	start := (req.Pagination.Page - 1) * req.Pagination.PerPage
	end := start + req.Pagination.PerPage
	if start > len(matched) {
		start = len(matched)
	}
	if end > len(matched) {
		end = len(matched)
	}

	page := make([]model.Record, 0, end-start)
	for _, rec := range matched[start:end] {
		page = append(page, rec.Clone())
	}

	result := &model.PageResult{Records: page}
	if withPageInfo {
		result.PageInfo = &model.PageInfo{
			HasNextPage:     int64(end) < total,
			HasPreviousPage: req.Pagination.Page > 1,
		}
	} else {
		result.Total = model.Int64(total)
	}
	return result, nil
}

func matches(rec model.Record, filter model.Filter) bool {
	for field, want := range filter {
		got := rec.Get(field)
		if field == "q" {
			if !fullTextMatch(rec, want) {
				return false
			}
			continue
		}
		if model.StringID(got) != model.StringID(want) {
			return false
		}
	}
	return true
}

// fullTextMatch implements the conventional "q" filter: a case
// insensitive substring search across all string fields.
func fullTextMatch(rec model.Record, want interface{}) bool {
	needle := strings.ToLower(fmt.Sprintf("%v", want))
	for _, v := range rec {
		if s, ok := v.(string); ok && strings.Contains(strings.ToLower(s), needle) {
			return true
		}
	}
	return false
}

func sortRecords(recs []model.Record, s model.Sort) {
	if s.Field == "" {
		return
	}
	desc := strings.EqualFold(s.Order, model.OrderDesc)
	sort.SliceStable(recs, func(i, j int) bool {
		less := compareValues(recs[i].Get(s.Field), recs[j].Get(s.Field))
		if desc {
			return less > 0
		}
		return less < 0
	})
}

func compareValues(a, b interface{}) int {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(fmt.Sprintf("%v", a), fmt.Sprintf("%v", b))
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}
