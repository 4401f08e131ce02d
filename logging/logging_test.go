package logging

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"wardrobeapi/metrics"
)

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", StatusClass(204))
	assert.Equal(t, "4xx", StatusClass(404))
	assert.Equal(t, "5xx", StatusClass(503))
	assert.Equal(t, "0", StatusClass(0))
}

func TestRequestLoggerCountsAndTagsRequests(t *testing.T) {
	Setup("test")
	reg := metrics.NewRegistry()
	e := echo.New()
	e.Use(RequestLogger(reg))

	var sawLogger bool
	e.GET("/ok", func(c echo.Context) error {
		sawLogger = zerolog.Ctx(c.Request().Context()).GetLevel() != zerolog.Disabled
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/boom", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "down")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
	assert.True(t, sawLogger)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set(RequestIDHeader, "fixed-id")
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "fixed-id", rec.Header().Get(RequestIDHeader))

	snapshot := reg.SnapshotJSON()
	assert.Equal(t, int64(1), snapshot["http_requests_total{method=GET,path=/ok,status=2xx}"])
	assert.Equal(t, int64(1), snapshot["http_requests_errors_total{method=GET,path=/boom,status=5xx}"])
}
