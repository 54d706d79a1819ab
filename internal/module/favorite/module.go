package favorite

import "github.com/gin-gonic/gin"

// FavoriteModule implements the app.Module interface for favorites.
type FavoriteModule struct {
	handler *FavoriteHandler
}

// NewModule creates a new FavoriteModule with the given handler.
// Panics if h is nil.
func NewModule(h *FavoriteHandler) *FavoriteModule {
	if h == nil {
		panic("favorite.NewModule: handler must not be nil")
	}
	return &FavoriteModule{handler: h}
}

// RegisterRoutes registers the favorites routes, all behind the auth gate.
func (m *FavoriteModule) RegisterRoutes(_, protected *gin.RouterGroup) {
	favs := protected.Group("/favorites")
	favs.GET("", m.handler.List)
	favs.POST("", m.handler.Add)
	favs.DELETE("/:movieId", m.handler.Remove)
}
