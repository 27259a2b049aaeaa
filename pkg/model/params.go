package model

// SortOrder is the direction of a sort.
const (
	OrderAsc  = "ASC"
	OrderDesc = "DESC"
)

// Sort represents a single-field sort directive.
type Sort struct {
	Field string `json:"field" yaml:"field"`
	Order string `json:"order" yaml:"order"` // "ASC" or "DESC"
}

// Pagination identifies one page of a query. Page is 1-based.
type Pagination struct {
	Page    int `json:"page" yaml:"page"`
	PerPage int `json:"perPage" yaml:"perPage"`
}

// Filter is a set of field constraints applied to a query. Values are
// matched structurally; an empty filter matches everything.
type Filter map[string]interface{}

// Clone returns a shallow copy of the filter.
func (f Filter) Clone() Filter {
	if f == nil {
		return nil
	}
	out := make(Filter, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Sanitize strips entries whose values are empty (nil, empty string,
// empty slice or empty map) so cleared filter fields do not persist as
// constraints.
func (f Filter) Sanitize() Filter {
	out := make(Filter, len(f))
	for k, v := range f {
		if isEmptyValue(v) {
			continue
		}
		out[k] = v
	}
	return out
}

func isEmptyValue(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case []interface{}:
		return len(val) == 0
	case map[string]interface{}:
		return len(val) == 0
	case Filter:
		return len(val) == 0
	}
	return false
}

// PageRequest identifies exactly one page of one logical query against
// a referenced resource. Two requests belong to the same query iff all
// fields except Pagination.Page are equal.
type PageRequest struct {
	Resource    string                 `json:"resource"`
	TargetField string                 `json:"targetField"`
	OwnerID     interface{}            `json:"ownerId"`
	Pagination  Pagination             `json:"pagination"`
	Sort        Sort                   `json:"sort"`
	Filter      Filter                 `json:"filter"`
	Meta        map[string]interface{} `json:"meta,omitempty"`
}

// PageInfo carries authoritative cursor advancement hints. When present
// on a PageResult it overrides any total-based derivation.
type PageInfo struct {
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

// PageResult is one fetched page of records. Total is nil when the
// transport does not report a collection size.
type PageResult struct {
	Records  []Record               `json:"records"`
	Total    *int64                 `json:"total,omitempty"`
	PageInfo *PageInfo              `json:"pageInfo,omitempty"`
	Meta     map[string]interface{} `json:"meta,omitempty"`
}

// TotalValue returns the reported total, or -1 when none was reported.
func (r *PageResult) TotalValue() int64 {
	if r == nil || r.Total == nil {
		return -1
	}
	return *r.Total
}

// Int64 returns a pointer to v, for populating optional totals.
func Int64(v int64) *int64 {
	return &v
}
