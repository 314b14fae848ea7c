package middleware

import (
	"github.com/NomadCrew/nomad-weather/config"
	"github.com/gin-gonic/gin"
)

// SecurityHeadersMiddleware sets browser hardening headers on every
// response. Views are live state, so nothing may be cached. HSTS is only
// sent in production.
func SecurityHeadersMiddleware(cfg *config.ServerConfig) gin.HandlerFunc {
	hsts := cfg.Environment == config.EnvProduction

	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Cache-Control", "no-store")
		if hsts {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
