package favorite

import (
	"github.com/gin-gonic/gin"

	"github.com/okwareddevnest/movie-discovery-app/internal/domain"
	"github.com/okwareddevnest/movie-discovery-app/internal/middleware"
	"github.com/okwareddevnest/movie-discovery-app/internal/pkg"
)

// FavoriteHandler handles REST API requests for the caller's favorites.
type FavoriteHandler struct {
	svc domain.FavoriteService
}

// NewFavoriteHandler creates a new FavoriteHandler with the given service.
func NewFavoriteHandler(svc domain.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{svc: svc}
}

// List handles GET /api/favorites.
func (h *FavoriteHandler) List(c *gin.Context) {
	favs, err := h.svc.List(c.Request.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, favs)
}

// Add handles POST /api/favorites.
func (h *FavoriteHandler) Add(c *gin.Context) {
	var req AddFavoriteRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	fav, err := h.svc.Add(c.Request.Context(), middleware.CurrentUser(c).ID, req.snapshot())
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Created(c, fav)
}

// Remove handles DELETE /api/favorites/:movieId.
func (h *FavoriteHandler) Remove(c *gin.Context) {
	if err := h.svc.Remove(c.Request.Context(), middleware.CurrentUser(c).ID, c.Param("movieId")); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Message(c, "movie removed from favorites")
}
