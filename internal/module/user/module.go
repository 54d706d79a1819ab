package user

import "github.com/gin-gonic/gin"

// UserModule implements the app.Module interface for the user domain.
type UserModule struct {
	handler       *UserHandler
	avatarEnabled bool
}

// NewModule creates a new UserModule with the given handler. The avatar
// upload route is mounted only when avatarEnabled is set.
// Panics if h is nil.
func NewModule(h *UserHandler, avatarEnabled bool) *UserModule {
	if h == nil {
		panic("user.NewModule: handler must not be nil")
	}
	return &UserModule{handler: h, avatarEnabled: avatarEnabled}
}

// RegisterRoutes registers the profile routes. All of them require a signed-in user.
func (m *UserModule) RegisterRoutes(_, protected *gin.RouterGroup) {
	profile := protected.Group("/users/profile")
	profile.GET("", m.handler.GetProfile)
	profile.PUT("", m.handler.UpdateProfile)
	if m.avatarEnabled {
		profile.POST("/avatar", m.handler.UploadAvatar)
	}
}
