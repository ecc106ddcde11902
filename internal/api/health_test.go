package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHealth(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestGetHealth_DatabaseDown(t *testing.T) {
	s := NewServer(ServerConfig{CorsOrigins: []string{"*"}}, failingRepo{err: errors.New("database is closed")})

	rec := do(t, s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsExposed(t *testing.T) {
	s := newTestServer(t)

	do(t, s, http.MethodGet, "/articles/m-1/status", "")
	do(t, s, http.MethodPut, "/articles/m-1/status", `{"status":"read"}`)

	rec := do(t, s, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `reading_status_writes_total{status="read"}`)
	assert.Contains(t, body, "reading_status_defaults_created_total")
	assert.Contains(t, body, `route="/articles/{articleID}/status"`)
}
