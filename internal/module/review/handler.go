package review

import (
	"github.com/gin-gonic/gin"

	"github.com/okwareddevnest/movie-discovery-app/internal/domain"
	"github.com/okwareddevnest/movie-discovery-app/internal/middleware"
	"github.com/okwareddevnest/movie-discovery-app/internal/pkg"
)

// ReviewHandler handles REST API requests for reviews.
type ReviewHandler struct {
	svc domain.ReviewService
}

// NewReviewHandler creates a new ReviewHandler with the given service.
func NewReviewHandler(svc domain.ReviewService) *ReviewHandler {
	return &ReviewHandler{svc: svc}
}

// Upsert handles POST /api/reviews. It answers 201 when the review is new
// and 200 when an existing one was overwritten.
func (h *ReviewHandler) Upsert(c *gin.Context) {
	var req UpsertReviewRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	review, created, err := h.svc.Upsert(c.Request.Context(), middleware.CurrentUser(c).ID, req.input())
	if err != nil {
		pkg.Error(c, err)
		return
	}
	if created {
		pkg.Created(c, review)
		return
	}
	pkg.Success(c, review)
}

// ListByMovie handles GET /api/reviews/:movieId. No sign-in required.
func (h *ReviewHandler) ListByMovie(c *gin.Context) {
	reviews, err := h.svc.ListByMovie(c.Request.Context(), c.Param("movieId"))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, reviews)
}

// ListMine handles GET /api/reviews/user/me.
func (h *ReviewHandler) ListMine(c *gin.Context) {
	reviews, err := h.svc.ListByUser(c.Request.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, reviews)
}

// Delete handles DELETE /api/reviews/:id.
func (h *ReviewHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), middleware.CurrentUser(c).ID); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Message(c, "review deleted")
}
