package auth

import "github.com/gin-gonic/gin"

// AuthModule implements the app.Module interface for the auth domain.
type AuthModule struct {
	handler *AuthHandler
}

// NewModule creates a new AuthModule with the given handler.
// Panics if h is nil.
func NewModule(h *AuthHandler) *AuthModule {
	if h == nil {
		panic("auth.NewModule: handler must not be nil")
	}
	return &AuthModule{handler: h}
}

// RegisterRoutes registers the public sign-up and sign-in routes.
func (m *AuthModule) RegisterRoutes(public, _ *gin.RouterGroup) {
	users := public.Group("/users")
	users.POST("/register", m.handler.Register)
	users.POST("/login", m.handler.Login)
}
