package middleware

import (
	"log"
	"time"

	"github.com/labstack/echo/v4"
)

// RequestLogging logs one line per request with status, size and latency.
func RequestLogging() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := c.Response()
			start := time.Now()

			err := next(c)

			log.Printf("%s %s %d %dB %s (%s)",
				req.Method,
				req.RequestURI,
				res.Status,
				res.Size,
				req.RemoteAddr,
				time.Since(start),
			)

			return err
		}
	}
}
