package middleware

import (
	"github.com/labstack/echo/v4"
)

const (
	hstsValue = "max-age=31536000; includeSubDomains"

	// Responses carry short-lived signed URLs and must never be cached.
	cacheControlNoStore = "no-store"
)

// SecurityHeaders adds security headers to all responses. HSTS is only sent
// when enableHSTS is set, since local deployments usually serve plain HTTP.
func SecurityHeaders(enableHSTS bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()

			h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			if enableHSTS {
				h.Set("Strict-Transport-Security", hstsValue)
			}
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "no-referrer")
			h.Set(echo.HeaderCacheControl, cacheControlNoStore)

			h.Del("Server")
			h.Del("X-Powered-By")

			return next(c)
		}
	}
}
