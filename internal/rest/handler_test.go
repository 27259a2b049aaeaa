package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"refetch/internal/controller"
	"refetch/internal/notify"
	"refetch/internal/provider"
	"refetch/internal/querycache"
	"refetch/internal/records"
	"refetch/pkg/model"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	prov := provider.NewMemoryProvider()
	prov.Seed("comments",
		model.Record{"id": "c1", "post_id": "p1", "body": "first"},
		model.Record{"id": "c2", "post_id": "p1", "body": "second"},
		model.Record{"id": "c3", "post_id": "p2", "body": "other owner"},
	)

	recs := records.NewStore()
	store := querycache.NewStore(prov, recs, querycache.DefaultConfig())
	h := NewHandler(store, recs, controller.NewSelectionStore(), notify.NopNotifier{}, 0, 0)

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, out interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func TestListReturnsOwnerScopedRecords(t *testing.T) {
	srv := newTestServer(t)

	var body ListResponse
	status := getJSON(t, srv.URL+"/api/v1/posts/p1/comments?target=post_id&sortField=id&sortOrder=ASC", &body)

	require.Equal(t, http.StatusOK, status)
	require.Len(t, body.Data, 2)
	assert.Equal(t, "c1", body.Data[0].GetID())
	assert.Equal(t, "c2", body.Data[1].GetID())
	assert.Equal(t, int64(2), body.Total)
	assert.Equal(t, 1, body.Page)
	assert.Equal(t, 25, body.PerPage)
	require.NotNil(t, body.HasNextPage)
	assert.False(t, *body.HasNextPage)
}

func TestListAppliesFilterParameter(t *testing.T) {
	srv := newTestServer(t)

	filter := url.QueryEscape(`{"body":"first"}`)
	var body ListResponse
	status := getJSON(t, srv.URL+"/api/v1/posts/p1/comments?target=post_id&filter="+filter, &body)

	require.Equal(t, http.StatusOK, status)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "c1", body.Data[0].GetID())
	assert.Equal(t, model.Filter{"body": "first"}, body.FilterValues)
}

func TestListRequiresTarget(t *testing.T) {
	srv := newTestServer(t)

	var apiErr APIError
	status := getJSON(t, srv.URL+"/api/v1/posts/p1/comments", &apiErr)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, ErrCodeBadRequest, apiErr.Code)
}

func TestListRejectsMalformedFilter(t *testing.T) {
	srv := newTestServer(t)

	var apiErr APIError
	status := getJSON(t, srv.URL+"/api/v1/posts/p1/comments?target=post_id&filter=notjson", &apiErr)

	assert.Equal(t, http.StatusBadRequest, status)
}

func TestListPropagatesUpstreamStatus(t *testing.T) {
	failing := provider.FetchFunc(func(ctx context.Context, req model.PageRequest) (*model.PageResult, error) {
		return nil, &model.RequestError{Message: "backend unavailable", Status: http.StatusServiceUnavailable}
	})
	recs := records.NewStore()
	store := querycache.NewStore(failing, recs, querycache.DefaultConfig())
	h := NewHandler(store, recs, controller.NewSelectionStore(), notify.NopNotifier{}, 0, 0)

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	var apiErr APIError
	status := getJSON(t, srv.URL+"/api/v1/posts/p1/comments?target=post_id", &apiErr)

	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, ErrCodeUpstreamError, apiErr.Code)
	assert.Equal(t, "backend unavailable", apiErr.Message)
}

func TestListClampsPerPage(t *testing.T) {
	srv := newTestServer(t)

	var body ListResponse
	status := getJSON(t, srv.URL+"/api/v1/posts/p1/comments?target=post_id&perPage=100000", &body)

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, MaxPerPage, body.PerPage)
}

func TestGetRecordFromPromotedCache(t *testing.T) {
	srv := newTestServer(t)

	// Warm the record cache through a list fetch.
	var list ListResponse
	require.Equal(t, http.StatusOK,
		getJSON(t, srv.URL+"/api/v1/posts/p1/comments?target=post_id", &list))

	var rec model.Record
	status := getJSON(t, srv.URL+"/api/v1/records/comments/c1", &rec)

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "first", rec["body"])
}

func TestGetRecordNotFound(t *testing.T) {
	srv := newTestServer(t)

	var apiErr APIError
	status := getJSON(t, srv.URL+"/api/v1/records/comments/missing", &apiErr)

	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, ErrCodeNotFound, apiErr.Code)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	var body map[string]string
	status := getJSON(t, srv.URL+"/healthz", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}
