package middleware

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/okwareddevnest/movie-discovery-app/internal/config"
)

var (
	defaultCORSMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
	defaultCORSHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", requestIDHeader}
)

// CORS builds the cross-origin middleware from server.cors. An empty origin
// list or "*" allows every origin; with credentials enabled the caller's
// origin is echoed instead of "*".
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	return cors.New(corsOptions(cfg))
}

func corsOptions(cfg config.CORSConfig) cors.Config {
	opts := cors.Config{
		AllowMethods:     cfg.AllowMethods,
		AllowHeaders:     cfg.AllowHeaders,
		ExposeHeaders:    []string{requestIDHeader},
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           config.MustDuration(cfg.MaxAge, 12*time.Hour),
	}
	if len(opts.AllowMethods) == 0 {
		opts.AllowMethods = defaultCORSMethods
	}
	if len(opts.AllowHeaders) == 0 {
		opts.AllowHeaders = defaultCORSHeaders
	}

	switch {
	case !allowsAnyOrigin(cfg.AllowOrigins):
		opts.AllowOrigins = cfg.AllowOrigins
	case cfg.AllowCredentials:
		opts.AllowOriginFunc = func(string) bool { return true }
	default:
		opts.AllowAllOrigins = true
	}
	return opts
}

func allowsAnyOrigin(origins []string) bool {
	if len(origins) == 0 {
		return true
	}
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
