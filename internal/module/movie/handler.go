package movie

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/okwareddevnest/movie-discovery-app/internal/domain"
	"github.com/okwareddevnest/movie-discovery-app/internal/pkg"
)

// SearchQuery is the query string of GET /api/movies/search.
type SearchQuery struct {
	Query string `form:"query" binding:"required,max=200"`
}

// MovieHandler proxies catalog reads so the API key never leaves the server.
type MovieHandler struct {
	catalog Catalog
}

// NewMovieHandler creates a new MovieHandler reading from catalog.
func NewMovieHandler(catalog Catalog) *MovieHandler {
	return &MovieHandler{catalog: catalog}
}

// Trending handles GET /api/movies/trending?page=N.
func (h *MovieHandler) Trending(c *gin.Context) {
	page, err := h.catalog.Trending(c.Request.Context(), pkg.ParsePage(c))
	respond(c, page, err)
}

// Search handles GET /api/movies/search?query=...&page=N.
func (h *MovieHandler) Search(c *gin.Context) {
	var q SearchQuery
	if !pkg.BindQuery(c, &q) {
		return
	}
	query := strings.TrimSpace(q.Query)
	if query == "" {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, "query is required", nil))
		return
	}

	page, err := h.catalog.Search(c.Request.Context(), query, pkg.ParsePage(c))
	respond(c, page, err)
}

// Details handles GET /api/movies/:id.
func (h *MovieHandler) Details(c *gin.Context) {
	id, ok := movieID(c)
	if !ok {
		return
	}
	details, err := h.catalog.Details(c.Request.Context(), id)
	respond(c, details, err)
}

// Credits handles GET /api/movies/:id/credits.
func (h *MovieHandler) Credits(c *gin.Context) {
	id, ok := movieID(c)
	if !ok {
		return
	}
	credits, err := h.catalog.Credits(c.Request.Context(), id)
	respond(c, credits, err)
}

// Videos handles GET /api/movies/:id/videos.
func (h *MovieHandler) Videos(c *gin.Context) {
	id, ok := movieID(c)
	if !ok {
		return
	}
	videos, err := h.catalog.Videos(c.Request.Context(), id)
	respond(c, videos, err)
}

// Similar handles GET /api/movies/:id/similar?page=N.
func (h *MovieHandler) Similar(c *gin.Context) {
	id, ok := movieID(c)
	if !ok {
		return
	}
	page, err := h.catalog.Similar(c.Request.Context(), id, pkg.ParsePage(c))
	respond(c, page, err)
}

func respond(c *gin.Context, data any, err error) {
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, data)
}

// movieID parses the :id path parameter, answering 400 when it is not a
// positive integer.
func movieID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, "invalid movie id", err))
		return 0, false
	}
	return id, true
}
