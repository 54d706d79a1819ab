package movie

import "github.com/gin-gonic/gin"

// MovieModule implements the app.Module interface for the catalog proxy.
type MovieModule struct {
	handler *MovieHandler
}

// NewModule creates a new MovieModule with the given handler.
// Panics if h is nil.
func NewModule(h *MovieHandler) *MovieModule {
	if h == nil {
		panic("movie.NewModule: handler must not be nil")
	}
	return &MovieModule{handler: h}
}

// RegisterRoutes registers the public catalog routes.
func (m *MovieModule) RegisterRoutes(public, _ *gin.RouterGroup) {
	movies := public.Group("/movies")
	movies.GET("/trending", m.handler.Trending)
	movies.GET("/search", m.handler.Search)
	movies.GET("/:id", m.handler.Details)
	movies.GET("/:id/credits", m.handler.Credits)
	movies.GET("/:id/videos", m.handler.Videos)
	movies.GET("/:id/similar", m.handler.Similar)
}
