package backend

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	mu      sync.Mutex
	paths   []string
	queries []string
	bearers []string
}

func (r *recorded) handler(respond func(w http.ResponseWriter, req *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		r.mu.Lock()
		r.paths = append(r.paths, req.URL.Path)
		r.queries = append(r.queries, req.URL.RawQuery)
		r.bearers = append(r.bearers, req.Header.Get("Authorization"))
		r.mu.Unlock()
		respond(w, req)
	}
}

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	client, err := NewClient(srv.URL+"/", 5*time.Second, nil)
	require.NoError(t, err)
	return client
}

func TestClientForwardsBearerToBackend(t *testing.T) {
	rec := &recorded{}
	client := newTestClient(t, rec.handler(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success": true}`))
	}))

	ctx := WithToken(context.Background(), " abc.def.ghi ")
	body, err := client.GetSubmissionDetails(ctx, 42)
	require.NoError(t, err)

	assert.JSONEq(t, `{"success": true}`, string(body))
	assert.Equal(t, []string{"/api/v1/submissions/42/details"}, rec.paths)
	assert.Equal(t, []string{"Bearer abc.def.ghi"}, rec.bearers)
}

func TestClientKeepsBearerFromForeignHosts(t *testing.T) {
	foreign := &recorded{}
	other := httptest.NewServer(foreign.handler(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("%PDF"))
	}))
	defer other.Close()

	rec := &recorded{}
	client := newTestClient(t, rec.handler(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("%PDF"))
	}))
	ctx := WithToken(context.Background(), "secret")

	_, err := client.FetchByPath(ctx, other.URL+"/files/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, []string{""}, foreign.bearers)

	_, err = client.FetchByPath(ctx, `uploads\users\1\a.pdf`)
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/users/1/a.pdf"}, rec.paths)
	assert.Equal(t, []string{"Bearer secret"}, rec.bearers)
}

func TestClientMapsNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
	}))

	_, err := client.FetchByFileID(context.Background(), 7)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, "/api/v1/files/managed/7/download", statusErr.Path)

	_, err = client.FetchByFileID(context.Background(), 0)
	assert.Error(t, err)
}

func TestClientServerErrorIsNotNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := client.ListSubmissions(context.Background(), ListQuery{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestListDeptHeadSubmissionsQuery(t *testing.T) {
	rec := &recorded{}
	client := newTestClient(t, rec.handler(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))

	_, err := client.ListDeptHeadSubmissions(context.Background(), 6, ListQuery{Status: "0", YearID: "3", Page: 2, Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, []string{"/api/v1/dept-head/submissions"}, rec.paths)
	assert.Equal(t, "limit=50&page=2&status_id=6&year_id=3", rec.queries[0])
}

func TestNewClientRejectsRelativeURL(t *testing.T) {
	_, err := NewClient("localhost:8080", time.Second, nil)
	assert.Error(t, err)
}

func TestGetStatusesAndLookups(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/application-status", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data": [
			{"application_status_id": 1, "status_code": "0", "status_name": "อยู่ระหว่างการพิจารณา"},
			{"ApplicationStatusID": 2, "StatusCode": "1", "StatusName": "อนุมัติ"},
			{"status_code": "x"}
		]}`))
	})
	mux.HandleFunc("/api/v1/categories", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"categories": [{"category_id": 1, "category_name": "ทุนส่งเสริมการวิจัย"}]}`))
	})
	mux.HandleFunc("/api/v1/subcategories", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"subcategory_id": 4, "subcategory_name": "ทุนนำเสนอผลงาน"}, {"subcategory_id": 5, "subcategory_name": " "}]`))
	})
	client := newTestClient(t, mux)

	statuses, err := client.GetStatuses(context.Background())
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.Equal(t, "อนุมัติ", statuses[1].StatusName)

	lookups, err := client.GetLookups(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ทุนส่งเสริมการวิจัย", lookups.Categories[1])
	assert.Equal(t, map[int]string{4: "ทุนนำเสนอผลงาน"}, lookups.Subcategories)
}

func TestClientRejectsOversizedBody(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(bytes.Repeat([]byte("x"), 17))
	}))
	client.maxBody = 16

	_, err := client.FetchByFileID(context.Background(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrResponseTooLarge)

	client.maxBody = 17
	body, err := client.FetchByFileID(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, body, 17)
}
