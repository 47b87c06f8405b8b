package httpx

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthHandler(t *testing.T) {
	router := NewRouter(RouterServices{Logger: slog.New(slog.NewJSONHandler(io.Discard, nil))})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHealthHandlerHead(t *testing.T) {
	router := NewRouter(RouterServices{Logger: slog.New(slog.NewJSONHandler(io.Discard, nil))})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, rec.Body.Len())
}

func TestReadyHandlerAllHealthy(t *testing.T) {
	router := NewRouter(RouterServices{
		Logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
		ReadyChecks: []ReadyCheck{
			{Name: "postgres", Check: func(ctx context.Context) error { return nil }},
			{Name: "redis", Check: func(ctx context.Context) error { return nil }},
		},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestReadyHandlerFailingCheck(t *testing.T) {
	router := NewRouter(RouterServices{
		Logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
		ReadyChecks: []ReadyCheck{
			{Name: "postgres", Check: func(ctx context.Context) error { return nil }},
			{Name: "redis", Check: func(ctx context.Context) error { return errors.New("dial tcp: refused") }},
		},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "redis")
	assert.NotContains(t, rec.Body.String(), "postgres")
}
