package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/schema"

	"refetch/internal/controller"
	"refetch/internal/querycache"
	"refetch/pkg/model"
)

// MaxPerPage caps client-requested page sizes so one request cannot ask
// the backend for an unbounded result set.
const MaxPerPage = 1000

// ListQuery holds the decoded URL query parameters of a list request.
type ListQuery struct {
	Target    string `schema:"target"`
	Page      int    `schema:"page"`
	PerPage   int    `schema:"perPage"`
	SortField string `schema:"sortField"`
	SortOrder string `schema:"sortOrder"`

	// Filter is a JSON object of field -> value restrictions applied on
	// top of the owner linkage.
	Filter string `schema:"filter"`
}

// ListResponse is the rendered controller result.
type ListResponse struct {
	Data                   []model.Record `json:"data"`
	Total                  int64          `json:"total"`
	Page                   int            `json:"page"`
	PerPage                int            `json:"perPage"`
	SortField              string         `json:"sortField"`
	SortOrder              string         `json:"sortOrder"`
	FilterValues           model.Filter   `json:"filterValues,omitempty"`
	DisplayedFilters       []string       `json:"displayedFilters,omitempty"`
	SelectedIDs            []string       `json:"selectedIds,omitempty"`
	HasNextPage            *bool          `json:"hasNextPage,omitempty"`
	HasPreviousPage        *bool          `json:"hasPreviousPage,omitempty"`
	IsFetchingNextPage     bool           `json:"isFetchingNextPage"`
	IsFetchingPreviousPage bool           `json:"isFetchingPreviousPage"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	resource := r.PathValue("resource")
	ownerID := r.PathValue("ownerId")
	reference := r.PathValue("reference")

	var q ListQuery
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	if err := decoder.Decode(&q, r.URL.Query()); err != nil {
		slog.Warn("List: invalid query parameters", "error", err)
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "Invalid query parameters")
		return
	}

	if q.Target == "" {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "target is required")
		return
	}
	if q.PerPage > MaxPerPage {
		q.PerPage = MaxPerPage
	}

	var filter model.Filter
	if q.Filter != "" {
		if err := json.Unmarshal([]byte(q.Filter), &filter); err != nil {
			slog.Warn("List: invalid filter", "error", err)
			writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "Invalid filter: must be a JSON object")
			return
		}
	}

	var sort model.Sort
	if q.SortField != "" {
		order := model.OrderDesc
		if q.SortOrder == model.OrderAsc {
			order = model.OrderAsc
		}
		sort = model.Sort{Field: q.SortField, Order: order}
	}

	ctrl := controller.New(h.store, h.selections, h.notifier, controller.Params{
		Resource:  resource,
		Record:    model.Record{"id": ownerID},
		Target:    q.Target,
		Reference: reference,
		Filter:    filter,
		Sort:      sort,
		Page:      q.Page,
		PerPage:   q.PerPage,
		Debounce:  h.debounce,
		Query:     querycache.Options{RetryCount: h.retryCount},
	})
	defer ctrl.Close()

	res, err := ctrl.WaitSettled(r.Context())
	if err != nil {
		writeInternalError(w, err, "List request did not settle")
		return
	}

	if res.Error != nil {
		writeListError(w, res.Error)
		return
	}

	slog.Debug("List: completed",
		"resource", resource,
		"owner", ownerID,
		"reference", reference,
		"returned", len(res.Data),
	)
	writeJSON(w, http.StatusOK, renderList(res))
}

func renderList(res controller.Result) ListResponse {
	data := res.Data
	if data == nil {
		data = []model.Record{}
	}
	return ListResponse{
		Data:                   data,
		Total:                  res.Total,
		Page:                   res.Page,
		PerPage:                res.PerPage,
		SortField:              res.Sort.Field,
		SortOrder:              res.Sort.Order,
		FilterValues:           res.FilterValues,
		DisplayedFilters:       res.DisplayedFilters,
		SelectedIDs:            res.SelectedIDs,
		HasNextPage:            res.HasNextPage,
		HasPreviousPage:        res.HasPreviousPage,
		IsFetchingNextPage:     res.IsFetchingNextPage,
		IsFetchingPreviousPage: res.IsFetchingPreviousPage,
	}
}

// writeListError maps an upstream fetch error to an HTTP response. A
// RequestError keeps its upstream status; everything else becomes 502.
func writeListError(w http.ResponseWriter, err error) {
	var reqErr *model.RequestError
	if errors.As(err, &reqErr) && reqErr.Status >= 400 {
		writeError(w, reqErr.Status, ErrCodeUpstreamError, model.ErrorText(err))
		return
	}
	if model.IsCanceled(err) {
		w.WriteHeader(499)
		return
	}
	writeError(w, http.StatusBadGateway, ErrCodeUpstreamError, model.ErrorText(err))
}
