package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestMux(t *testing.T) {
	t.Run("health", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newMux(false).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "OK", rec.Body.String())
	})

	t.Run("ready fails when a dependency is down", func(t *testing.T) {
		down := pingFunc(func(context.Context) error { return errors.New("db down") })
		rec := httptest.NewRecorder()
		newMux(false, down).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "db down")
	})

	t.Run("metrics only when enabled", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newMux(false).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = httptest.NewRecorder()
		newMux(true).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
