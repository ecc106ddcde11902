package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdholdren/readstatus/internal/database"
	"github.com/jdholdren/readstatus/internal/readstatus"
	"github.com/jdholdren/readstatus/internal/sqlite"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	dbx, err := database.Open(context.Background(), database.Location{
		Path: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { dbx.Close() })

	return NewServer(ServerConfig{Port: 0, CorsOrigins: []string{"*"}}, sqlite.New(dbx))
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)

	return rec
}

func TestGetStatus_UnknownArticleDefaultsToRead(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/articles/missing-article/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"article_id":"missing-article","status":"to_read"}`, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	rec = do(t, s, http.MethodGet, "/articles/missing-article/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"article_id":"missing-article","status":"to_read"}`, rec.Body.String())
}

func TestPutStatus_CreatesAndPersists(t *testing.T) {
	s := newTestServer(t)

	for _, st := range []string{"to_read", "reading", "read"} {
		t.Run(st, func(t *testing.T) {
			id := "article-" + st
			want := fmt.Sprintf(`{"article_id":%q,"status":%q}`, id, st)

			rec := do(t, s, http.MethodPut, "/articles/"+id+"/status", fmt.Sprintf(`{"status":%q}`, st))
			require.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, want, rec.Body.String())

			rec = do(t, s, http.MethodGet, "/articles/"+id+"/status", "")
			require.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, want, rec.Body.String())
		})
	}
}

func TestPutStatus_UpdatesExisting(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPut, "/articles/article-update/status", `{"status":"to_read"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodPut, "/articles/article-update/status", `{"status":"read"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"article_id":"article-update","status":"read"}`, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/articles/article-update/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"article_id":"article-update","status":"read"}`, rec.Body.String())
}

func TestReadWriteRead(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/articles/abc-1/status", "")
	assert.JSONEq(t, `{"article_id":"abc-1","status":"to_read"}`, rec.Body.String())

	rec = do(t, s, http.MethodPut, "/articles/abc-1/status", `{"status":"reading"}`)
	assert.JSONEq(t, `{"article_id":"abc-1","status":"reading"}`, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/articles/abc-1/status", "")
	assert.JSONEq(t, `{"article_id":"abc-1","status":"reading"}`, rec.Body.String())
}

func TestPutStatus_InvalidInput(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{name: "unknown status", body: `{"status":"done"}`, wantCode: http.StatusUnprocessableEntity},
		{name: "another unknown status", body: `{"status":"invalid_status"}`, wantCode: http.StatusUnprocessableEntity},
		{name: "wrong case", body: `{"status":"READ"}`, wantCode: http.StatusUnprocessableEntity},
		{name: "number", body: `{"status":2}`, wantCode: http.StatusUnprocessableEntity},
		{name: "null", body: `{"status":null}`, wantCode: http.StatusUnprocessableEntity},
		{name: "missing", body: `{}`, wantCode: http.StatusUnprocessableEntity},
		{name: "not json", body: `status=read`, wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)

			rec := do(t, s, http.MethodPut, "/articles/x/status", tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)

			// The article was left alone
			rec = do(t, s, http.MethodGet, "/articles/x/status", "")
			require.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"article_id":"x","status":"to_read"}`, rec.Body.String())
		})
	}
}

func TestPutStatus_InvalidDoesNotTouchExisting(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPut, "/articles/x/status", `{"status":"reading"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodPut, "/articles/x/status", `{"status":"archived"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, s, http.MethodGet, "/articles/x/status", "")
	assert.JSONEq(t, `{"article_id":"x","status":"reading"}`, rec.Body.String())
}

func TestStatuses_AreIsolated(t *testing.T) {
	s := newTestServer(t)

	require.Equal(t, http.StatusOK, do(t, s, http.MethodPut, "/articles/article-a/status", `{"status":"to_read"}`).Code)
	require.Equal(t, http.StatusOK, do(t, s, http.MethodPut, "/articles/article-b/status", `{"status":"reading"}`).Code)

	var a, b StatusResponse
	require.NoError(t, json.Unmarshal(do(t, s, http.MethodGet, "/articles/article-a/status", "").Body.Bytes(), &a))
	require.NoError(t, json.Unmarshal(do(t, s, http.MethodGet, "/articles/article-b/status", "").Body.Bytes(), &b))

	assert.Equal(t, readstatus.StatusToRead, a.Status)
	assert.Equal(t, readstatus.StatusReading, b.Status)
}

func TestGetStatus_EscapedArticleID(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPut, "/articles/hello%20world/status", `{"status":"read"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"article_id":"hello world","status":"read"}`, rec.Body.String())
}

func TestStatuses_EncodedArticleIDs(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{path: "a%2Fb", want: "a/b"},
		{path: "%2E%2E", want: ".."},
		{path: "caf%C3%A9", want: "café"},
		{path: "a.b", want: "a.b"},
		{path: "100%25", want: "100%"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			s := newTestServer(t)
			path := "/articles/" + tt.path + "/status"

			rec := do(t, s, http.MethodPut, path, `{"status":"reading"}`)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var got StatusResponse
			require.NoError(t, json.Unmarshal(do(t, s, http.MethodGet, path, "").Body.Bytes(), &got))
			assert.Equal(t, tt.want, got.ArticleID)
			assert.Equal(t, readstatus.StatusReading, got.Status)
		})
	}
}

func TestPutStatus_TrailingBody(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPut, "/articles/x/status", `{"status":"read"} trailing`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodGet, "/articles/x/status", "")
	assert.JSONEq(t, `{"article_id":"x","status":"to_read"}`, rec.Body.String())
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodDelete, "/articles/x/status", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"message":"method DELETE not allowed","details":null,"status":405}`, rec.Body.String())
}

func TestNotFound(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/nope", "/articles/x", "/articles/x/status/extra"} {
		rec := do(t, s, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.JSONEq(t, `{"message":"not found","details":null,"status":404}`, rec.Body.String(), path)
	}
}

// A repository whose every call fails in the configured way.
type failingRepo struct {
	err error
}

func (f failingRepo) GetOrCreateDefault(context.Context, string) (readstatus.Status, bool, error) {
	return 0, false, f.err
}

func (f failingRepo) Upsert(context.Context, string, readstatus.Status) (readstatus.Status, error) {
	return 0, f.err
}

func (f failingRepo) Record(context.Context, string) (readstatus.Record, error) {
	return readstatus.Record{}, f.err
}

func (f failingRepo) Ping(context.Context) error {
	return f.err
}

func TestStorageErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		method string
		body   string
	}{
		{name: "read storage error", err: errors.New("disk I/O error"), method: http.MethodGet},
		{name: "read corrupt status", err: fmt.Errorf("scan: %w", readstatus.ErrCorruptStatus), method: http.MethodGet},
		{name: "write storage error", err: errors.New("database is locked"), method: http.MethodPut, body: `{"status":"read"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewServer(ServerConfig{CorsOrigins: []string{"*"}}, failingRepo{err: tt.err})

			rec := do(t, s, tt.method, "/articles/x/status", tt.body)
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.NotContains(t, rec.Body.String(), tt.err.Error())
		})
	}
}
