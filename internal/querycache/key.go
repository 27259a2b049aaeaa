// Package querycache implements the memoized asynchronous page-fetch
// cache behind list controllers: one ordered, growable page sequence per
// query key, bidirectional cursor advancement, per-(key,cursor) fetch
// deduplication and opportunistic promotion of fetched records into the
// shared record-by-id cache.
package querycache

import (
	"encoding/json"

	"refetch/pkg/model"
)

// Key identifies one query: a resumable, growable sequence of pages.
// It deliberately excludes the page cursor; changing any field starts a
// fresh sequence at the initial cursor.
type Key struct {
	Resource    string                 `json:"resource"`
	OwnerID     string                 `json:"ownerId"`
	TargetField string                 `json:"targetField"`
	PerPage     int                    `json:"perPage"`
	Sort        model.Sort             `json:"sort"`
	Filter      model.Filter           `json:"filter"`
	Meta        map[string]interface{} `json:"meta,omitempty"`
}

// canonical returns the stable string form of the key. Map fields are
// serialized with sorted keys, so structurally equal keys always map to
// the same cache entry regardless of construction order.
func (k Key) canonical() string {
	raw, err := json.Marshal(k)
	if err != nil {
		// Key fields come from JSON-compatible values; a marshal failure
		// here means a programming error upstream.
		panic("querycache: unencodable key: " + err.Error())
	}
	return string(raw)
}
