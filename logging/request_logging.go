package logging

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"wardrobeapi/metrics"
)

const RequestIDHeader = "X-Request-ID"

// RequestLogger attaches a request scoped logger to the request context and
// counts served requests in reg.
func RequestLogger(reg *metrics.Registry) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			rid := req.Header.Get(RequestIDHeader)
			if rid == "" {
				rid = uuid.NewString()
			}
			c.Response().Header().Set(RequestIDHeader, rid)

			logger := log.With().
				Str("request_id", rid).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Str("remote_ip", c.RealIP()).
				Logger()
			c.SetRequest(req.WithContext(logger.WithContext(req.Context())))

			err := next(c)
			if err != nil {
				// let echo render the error so the status below is final
				c.Error(err)
			}

			status := c.Response().Status
			labels := map[string]string{
				"method": req.Method,
				"path":   c.Path(),
				"status": StatusClass(status),
			}
			if reg != nil {
				reg.Inc(c.Request().Context(), "http_requests_total", labels, 1)
			}

			if status >= 500 {
				if reg != nil {
					reg.Inc(c.Request().Context(), "http_requests_errors_total", labels, 1)
				}
				logger.Error().Err(err).Int("status", status).Dur("duration", time.Since(start)).Msg("http request failed")
			} else {
				logger.Info().Int("status", status).Dur("duration", time.Since(start)).Msg("http request served")
			}
			return nil
		}
	}
}

func StatusClass(code int) string {
	switch {
	case code >= 100 && code < 200:
		return "1xx"
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500 && code < 600:
		return "5xx"
	default:
		return "0"
	}
}
