package review

import "github.com/gin-gonic/gin"

// ReviewModule implements the app.Module interface for reviews.
type ReviewModule struct {
	handler *ReviewHandler
}

// NewModule creates a new ReviewModule with the given handler.
// Panics if h is nil.
func NewModule(h *ReviewHandler) *ReviewModule {
	if h == nil {
		panic("review.NewModule: handler must not be nil")
	}
	return &ReviewModule{handler: h}
}

// RegisterRoutes registers the public per-movie listing and the
// authenticated write and "my reviews" routes.
func (m *ReviewModule) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/reviews/:movieId", m.handler.ListByMovie)

	reviews := protected.Group("/reviews")
	reviews.POST("", m.handler.Upsert)
	reviews.GET("/user/me", m.handler.ListMine)
	reviews.DELETE("/:id", m.handler.Delete)
}
