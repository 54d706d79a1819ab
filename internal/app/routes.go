package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/okwareddevnest/movie-discovery-app/internal/pkg"
)

const healthCheckTimeout = time.Second

// HealthCheck reports whether one dependency is reachable.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// RouteDeps holds all dependencies needed to register routes.
type RouteDeps struct {
	Modules []Module
	// Gate guards the protected group.
	Gate   gin.HandlerFunc
	Checks []HealthCheck
}

// RegisterRoutes registers all application routes on the given gin.Engine.
func RegisterRoutes(r *gin.Engine, deps *RouteDeps) error {
	if r == nil {
		return errors.New("router is nil")
	}
	if deps == nil {
		return errors.New("route dependencies are nil")
	}
	if len(deps.Modules) == 0 {
		return errors.New("at least one module is required")
	}
	if deps.Gate == nil {
		return errors.New("auth gate is required")
	}

	r.GET("/health", healthHandler(deps.Checks))

	api := r.Group("/api")
	protected := api.Group("", deps.Gate)

	for i, m := range deps.Modules {
		if m == nil {
			return fmt.Errorf("module at index %d is nil", i)
		}
		m.RegisterRoutes(api, protected)
	}

	r.NoRoute(noRouteHandler())
	return nil
}

// healthHandler runs every check and answers 200 when all pass, 503 otherwise.
//
//	{"code":200,"message":"ok","data":{"status":"ok","components":{"database":"ok","cache":"ok"}}}
func healthHandler(checks []HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "ok"
		code := http.StatusOK
		components := make(gin.H, len(checks))

		for _, hc := range checks {
			ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
			err := hc.Check(ctx)
			cancel()

			if err != nil {
				components[hc.Name] = "error"
				status = "degraded"
				code = http.StatusServiceUnavailable
				continue
			}
			components[hc.Name] = "ok"
		}

		c.JSON(code, pkg.Response{
			Code:    code,
			Message: status,
			Data: gin.H{
				"status":     status,
				"components": components,
			},
		})
	}
}

func noRouteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, pkg.Response{Code: http.StatusNotFound, Message: "not found"})
	}
}
