package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nurpe/aterrozero-consultancy/internal/metrics"
)

// RequestLogger logs every request and records its duration. Routes are
// labelled by their pattern so ids do not explode metric cardinality.
func RequestLogger(log zerolog.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		if m != nil {
			m.ObserveRequest(c.Request.Method, route, strconv.Itoa(status), elapsed)
		}

		event := log.Info()
		if status >= 500 {
			event = log.Error()
		}
		event = event.
			Str("method", c.Request.Method).
			Str("route", route).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("duration", elapsed)
		if principal, ok := PrincipalFrom(c); ok {
			event = event.Str("subject", principal.Subject)
		}
		event.Msg("request handled")
	}
}
